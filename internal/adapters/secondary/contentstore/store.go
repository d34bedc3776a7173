// Package contentstore keeps published model content on the local filesystem,
// one directory per content hash, next to a scratch area for in-flight
// uploads.
package contentstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"vessel-registry/internal/core/domain"
	"vessel-registry/internal/core/ingest"
	"vessel-registry/internal/core/ports/output"
)

// ScratchDirName is the directory under the root that holds workspaces.
const ScratchDirName = ".tmp"

const compareChunkSize = 32 * 1024

// errExists is returned by renameNoReplace when the target is already there.
var errExists = errors.New("target exists")

type Options struct {
	// VerifyDedup compares bytes before treating an existing directory as a
	// dedup hit.
	VerifyDedup bool
	Clock       clockwork.Clock
}

type Store struct {
	root    string
	scratch string
	verify  bool
	clock   clockwork.Clock
}

var _ ports.ContentStore = (*Store)(nil)

// New prepares root and its scratch area.
func New(root string, opts Options) (*Store, error) {
	if root == "" {
		return nil, errors.New("content store root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve content root: %w", err)
	}
	scratch := filepath.Join(abs, ScratchDirName)
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch area: %w", err)
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Store{root: abs, scratch: scratch, verify: opts.VerifyDedup, clock: opts.Clock}, nil
}

func (s *Store) Root() string { return s.root }

func (s *Store) AllocateScratch(ctx context.Context) (*ports.Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: allocate scratch: %w", domain.ErrIngest, err)
	}
	id := uuid.NewString()
	path := filepath.Join(s.scratch, id)
	if err := os.Mkdir(path, 0o755); err != nil {
		return nil, fmt.Errorf("%w: allocate scratch: %w", domain.ErrStorage, err)
	}
	return &ports.Workspace{ID: id, Path: path}, nil
}

func (s *Store) Publish(ctx context.Context, ws *ports.Workspace, contentHash string) (ports.PublishOutcome, string, error) {
	if ws == nil {
		return 0, "", fmt.Errorf("%w: publish: no workspace", domain.ErrStorage)
	}
	if !validHash(contentHash) {
		return 0, "", fmt.Errorf("%w: publish: malformed content hash %q", domain.ErrStorage, contentHash)
	}
	if err := ctx.Err(); err != nil {
		return 0, "", fmt.Errorf("%w: publish: %w", domain.ErrIngest, err)
	}

	target := s.path(contentHash)
	err := renameNoReplace(ws.Path, target)
	if err == nil {
		return ports.Published, target, nil
	}
	if !errors.Is(err, errExists) {
		return 0, "", fmt.Errorf("%w: publish %s: %w", domain.ErrStorage, contentHash, err)
	}

	if s.verify {
		same, err := sameContent(ws, target)
		if err != nil {
			return 0, "", fmt.Errorf("%w: verify %s: %w", domain.ErrStorage, contentHash, err)
		}
		if !same {
			return 0, "", fmt.Errorf("%w: %s", domain.ErrContentCollision, contentHash)
		}
	}

	if err := s.Discard(ws); err != nil {
		log.WithError(err).WithField("workspace", ws.ID).Warn("failed to discard deduplicated scratch")
	}
	return ports.AlreadyPublished, target, nil
}

func (s *Store) Discard(ws *ports.Workspace) error {
	if ws == nil {
		return nil
	}
	if err := os.RemoveAll(ws.Path); err != nil {
		return fmt.Errorf("%w: discard %s: %w", domain.ErrStorage, ws.ID, err)
	}
	return nil
}

func (s *Store) Open(ctx context.Context, contentHash, name string) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if !validHash(contentHash) {
		return nil, 0, domain.ErrFileNotFound
	}
	if err := ingest.ValidateFileName(name); err != nil {
		return nil, 0, domain.ErrFileNotFound
	}

	f, err := os.Open(filepath.Join(s.path(contentHash), name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, domain.ErrFileNotFound
		}
		return nil, 0, fmt.Errorf("%w: open %s/%s: %w", domain.ErrStorage, contentHash, name, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("%w: stat %s/%s: %w", domain.ErrStorage, contentHash, name, err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, 0, domain.ErrFileNotFound
	}
	return f, info.Size(), nil
}

func (s *Store) List(ctx context.Context, contentHash string) ([]domain.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validHash(contentHash) {
		return nil, fmt.Errorf("%w: malformed content hash %q", domain.ErrStorage, contentHash)
	}

	entries, err := os.ReadDir(s.path(contentHash))
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", domain.ErrStorage, contentHash, err)
	}
	artifacts := make([]domain.Artifact, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("%w: stat %s/%s: %w", domain.ErrStorage, contentHash, e.Name(), err)
		}
		artifacts = append(artifacts, domain.Artifact{Name: e.Name(), Size: info.Size()})
	}
	return artifacts, nil
}

// Sweep removes workspaces older than maxAge and returns how many were
// removed. A workspace's age runs from the newest write to it or any of its
// files, so a long upload that keeps streaming is left alone.
func (s *Store) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.scratch)
	if err != nil {
		return 0, fmt.Errorf("read scratch area: %w", err)
	}

	var result *multierror.Error
	removed := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			result = multierror.Append(result, err)
			break
		}
		dir := filepath.Join(s.scratch, e.Name())
		modified, err := lastModified(dir)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				result = multierror.Append(result, err)
			}
			continue
		}
		if s.clock.Since(modified) <= maxAge {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		removed++
	}
	return removed, result.ErrorOrNil()
}

func (s *Store) path(contentHash string) string {
	return filepath.Join(s.root, contentHash)
}

func validHash(h string) bool {
	if len(h) < ingest.MinHashLength {
		return false
	}
	for _, c := range h {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// lastModified returns the newest mtime of dir and its direct entries.
func lastModified(dir string) (time.Time, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return time.Time{}, err
	}
	newest := info.ModTime()
	if !info.IsDir() {
		return newest, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return time.Time{}, err
	}
	for _, e := range entries {
		fi, err := e.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return time.Time{}, err
		}
		if fi.ModTime().After(newest) {
			newest = fi.ModTime()
		}
	}
	return newest, nil
}

// sameContent reports whether the bytes in ws, read in upload order, equal
// the bytes published at target. Only bytes feed the content hash, so file
// names and boundaries may differ between the two.
func sameContent(ws *ports.Workspace, target string) (bool, error) {
	scratchOrder := ws.Files
	if len(scratchOrder) == 0 {
		var err error
		if scratchOrder, err = writeOrder(ws.Path); err != nil {
			return false, err
		}
	}
	targetOrder, err := writeOrder(target)
	if err != nil {
		return false, err
	}
	if sameNames(scratchOrder, targetOrder) {
		targetOrder = scratchOrder
	}

	a := &dirStream{dir: ws.Path, names: scratchOrder}
	defer a.Close()
	b := &dirStream{dir: target, names: targetOrder}
	defer b.Close()
	return sameStream(a, b)
}

// writeOrder lists the regular files of dir oldest first, by name on ties.
// Ingest writes and syncs files one after another, so this follows upload
// order for published content.
func writeOrder(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	type entry struct {
		name string
		mod  time.Time
	}
	files := make([]entry, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		files = append(files, entry{name: e.Name(), mod: info.ModTime()})
	}
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].mod.Equal(files[j].mod) {
			return files[i].mod.Before(files[j].mod)
		}
		return files[i].name < files[j].name
	})
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.name
	}
	return names, nil
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]struct{}, len(a))
	for _, n := range a {
		seen[n] = struct{}{}
	}
	for _, n := range b {
		if _, ok := seen[n]; !ok {
			return false
		}
	}
	return true
}

// dirStream reads the named files of dir back to back.
type dirStream struct {
	dir   string
	names []string
	cur   *os.File
}

func (d *dirStream) Read(p []byte) (int, error) {
	for {
		if d.cur == nil {
			if len(d.names) == 0 {
				return 0, io.EOF
			}
			f, err := os.Open(filepath.Join(d.dir, d.names[0]))
			if err != nil {
				return 0, err
			}
			d.cur, d.names = f, d.names[1:]
		}
		n, err := d.cur.Read(p)
		if errors.Is(err, io.EOF) {
			cerr := d.cur.Close()
			d.cur = nil
			if cerr != nil {
				return n, cerr
			}
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (d *dirStream) Close() error {
	if d.cur == nil {
		return nil
	}
	err := d.cur.Close()
	d.cur = nil
	return err
}

func sameStream(a, b io.Reader) (bool, error) {
	bufA := make([]byte, compareChunkSize)
	bufB := make([]byte, compareChunkSize)
	for {
		na, errA := io.ReadFull(a, bufA)
		nb, errB := io.ReadFull(b, bufB)
		doneA := errors.Is(errA, io.EOF) || errors.Is(errA, io.ErrUnexpectedEOF)
		doneB := errors.Is(errB, io.EOF) || errors.Is(errB, io.ErrUnexpectedEOF)
		if errA != nil && !doneA {
			return false, errA
		}
		if errB != nil && !doneB {
			return false, errB
		}
		if !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}
		if doneA || doneB {
			return doneA && doneB, nil
		}
	}
}
