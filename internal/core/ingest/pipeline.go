// Package ingest streams upload sets into a scratch directory while feeding
// every byte, in upload order, into one running digest.
package ingest

import (
	"context"
	"crypto/sha1" //nolint:gosec // content addressing, not authentication.
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"

	"vessel-registry/internal/core/domain"
)

const (
	DefaultChunkSize  = 8 * 1024
	DefaultHashLength = 16
	MinHashLength     = 8

	AlgorithmSHA1   = "sha1"
	AlgorithmSHA256 = "sha256"

	maxFileNameLength = 255
)

var (
	ErrInvalidChunkSize     = errors.New("ingest: chunk size must be positive")
	ErrInvalidHashLength    = errors.New("ingest: hash length out of range")
	ErrUnsupportedAlgorithm = errors.New("ingest: unsupported hash algorithm")
)

type Config struct {
	ChunkSize int
	Algorithm string
	// HashLength is the number of hex characters kept as the content hash.
	// Zero keeps the full digest.
	HashLength int
}

// Digest is the result of a successful ingest.
type Digest struct {
	// ContentHash is the truncated hex identifier used for addressing.
	ContentHash string
	// Full is the untruncated hex digest.
	Full  string
	Bytes int64
	Files []string
}

type Pipeline struct {
	chunkSize  int
	hashLength int
	algorithm  string
	newHash    func() hash.Hash
}

func New(cfg Config) (*Pipeline, error) {
	if cfg.ChunkSize <= 0 {
		return nil, ErrInvalidChunkSize
	}

	var newHash func() hash.Hash
	switch strings.ToLower(cfg.Algorithm) {
	case "", AlgorithmSHA1:
		newHash = sha1.New
		cfg.Algorithm = AlgorithmSHA1
	case AlgorithmSHA256:
		newHash = sha256.New
		cfg.Algorithm = AlgorithmSHA256
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, cfg.Algorithm)
	}

	hexLen := newHash().Size() * 2
	if cfg.HashLength != 0 && (cfg.HashLength < MinHashLength || cfg.HashLength > hexLen) {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidHashLength, cfg.HashLength, MinHashLength, hexLen)
	}
	if cfg.HashLength == 0 {
		cfg.HashLength = hexLen
	}

	return &Pipeline{
		chunkSize:  cfg.ChunkSize,
		hashLength: cfg.HashLength,
		algorithm:  cfg.Algorithm,
		newHash:    newHash,
	}, nil
}

func (p *Pipeline) Algorithm() string { return p.algorithm }

func (p *Pipeline) HashLength() int { return p.hashLength }

// Run writes every file of the set into dir and returns the digest of the
// concatenated streams. On error nothing is returned and dir may hold
// partially written files; cleaning it up is the caller's job.
func (p *Pipeline) Run(ctx context.Context, dir string, files domain.FileIterator) (*Digest, error) {
	h := p.newHash()
	buf := make([]byte, p.chunkSize)
	seen := make(map[string]struct{})
	d := &Digest{}

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrIngest, err)
		}

		f, err := files.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: next file: %w", domain.ErrIngest, err)
		}

		if err := ValidateFileName(f.Name); err != nil {
			return nil, err
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateFileName, f.Name)
		}
		seen[f.Name] = struct{}{}

		n, err := p.writeFile(ctx, filepath.Join(dir, f.Name), f.Content, h, buf)
		if err != nil {
			return nil, fmt.Errorf("%w: write %s: %w", domain.ErrIngest, f.Name, err)
		}
		d.Bytes += n
		d.Files = append(d.Files, f.Name)
	}

	if len(d.Files) == 0 {
		return nil, domain.ErrNoFiles
	}

	d.Full = hex.EncodeToString(h.Sum(nil))
	d.ContentHash = d.Full[:p.hashLength]
	return d, nil
}

func (p *Pipeline) writeFile(ctx context.Context, path string, r io.Reader, h hash.Hash, buf []byte) (n int64, err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	// MultiWriter hides os.File's ReaderFrom, so CopyBuffer really reads in
	// chunkSize pieces.
	n, err = io.CopyBuffer(io.MultiWriter(f, h), &contextReader{ctx: ctx, r: r}, buf)
	if err != nil {
		return n, err
	}
	return n, f.Sync()
}

// ValidateFileName accepts only names that stay inside the scratch directory.
func ValidateFileName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", domain.ErrInvalidFileName, name)
	case len(name) > maxFileNameLength:
		return fmt.Errorf("%w: longer than %d bytes", domain.ErrInvalidFileName, maxFileNameLength)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: %q", domain.ErrInvalidFileName, name)
	}
	return nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
