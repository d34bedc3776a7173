package ports

import (
	"context"
	"io"

	"vessel-registry/internal/core/domain"
)

// Workspace is a per-request scratch location.
type Workspace struct {
	ID   string
	Path string

	// Files lists the ingested names in upload order once ingest is done.
	Files []string
}

type PublishOutcome int

const (
	// Published means this call created the canonical location.
	Published PublishOutcome = iota
	// AlreadyPublished means the canonical location existed; the scratch copy
	// has been discarded.
	AlreadyPublished
)

func (o PublishOutcome) String() string {
	switch o {
	case Published:
		return "published"
	case AlreadyPublished:
		return "already_published"
	default:
		return "unknown"
	}
}

// ContentStore owns the hash-addressed content area.
type ContentStore interface {
	AllocateScratch(ctx context.Context) (*Workspace, error)
	// Publish moves ws to the canonical location for contentHash and returns
	// that location. The move is a single atomic operation; its failure is
	// the only existence check.
	Publish(ctx context.Context, ws *Workspace, contentHash string) (PublishOutcome, string, error)
	// Discard removes ws. Safe to call after a successful Publish or twice.
	Discard(ws *Workspace) error
	// Open streams one file of published content.
	Open(ctx context.Context, contentHash, name string) (io.ReadCloser, int64, error)
	// List returns the files of published content sorted by name.
	List(ctx context.Context, contentHash string) ([]domain.Artifact, error)
}
