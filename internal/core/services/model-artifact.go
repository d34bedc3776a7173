package services

import (
	"context"
	"io"

	"vessel-registry/internal/core/domain"
)

// ListFiles returns the files published for a version.
func (s *VersionService) ListFiles(ctx context.Context, modelID int64, tag string) ([]domain.Artifact, error) {
	v, err := s.Get(ctx, modelID, tag)
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, v.ContentHash)
}

// OpenFile streams one file of a version's published content. Archived
// versions stay readable.
func (s *VersionService) OpenFile(ctx context.Context, modelID int64, tag, name string) (io.ReadCloser, int64, error) {
	v, err := s.Get(ctx, modelID, tag)
	if err != nil {
		return nil, 0, err
	}
	return s.store.Open(ctx, v.ContentHash, name)
}
