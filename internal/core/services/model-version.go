package services

import (
	"context"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"vessel-registry/internal/core/domain"
	"vessel-registry/internal/core/ingest"
	"vessel-registry/internal/core/ports/output"
)

type VersionService struct {
	versions ports.VersionRepository
	models   ports.ModelRepository
	store    ports.ContentStore
	pipeline *ingest.Pipeline
	clock    clockwork.Clock
	metrics  ports.RegistrationMetrics
}

type VersionServiceOption func(*VersionService)

// WithClock sets the clock that stamps new versions.
func WithClock(c clockwork.Clock) VersionServiceOption {
	return func(s *VersionService) { s.clock = c }
}

func WithMetrics(m ports.RegistrationMetrics) VersionServiceOption {
	return func(s *VersionService) { s.metrics = m }
}

func NewVersionService(
	versions ports.VersionRepository,
	models ports.ModelRepository,
	store ports.ContentStore,
	pipeline *ingest.Pipeline,
	opts ...VersionServiceOption,
) *VersionService {
	s := &VersionService{
		versions: versions,
		models:   models,
		store:    store,
		pipeline: pipeline,
		clock:    clockwork.NewRealClock(),
		metrics:  ports.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *VersionService) Get(ctx context.Context, modelID int64, tag string) (*domain.Version, error) {
	if modelID <= 0 {
		return nil, domain.ErrInvalidModelID
	}
	return s.versions.GetByTag(ctx, modelID, tag)
}

// List returns the versions of an existing model, oldest first.
func (s *VersionService) List(ctx context.Context, filter ports.VersionListFilter) ([]*domain.Version, int, error) {
	if filter.ModelID <= 0 {
		return nil, 0, domain.ErrInvalidModelID
	}
	if _, err := s.models.GetByID(ctx, filter.ModelID); err != nil {
		return nil, 0, err
	}
	filter.Limit = PageLimit(filter.Limit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.versions.ListByModel(ctx, filter)
}

// Archive marks the version archived. Archiving twice is not an error.
func (s *VersionService) Archive(ctx context.Context, modelID int64, tag string) (*domain.Version, error) {
	return s.SetArchived(ctx, modelID, tag, true)
}

// SetArchived moves the version into or out of the archived state and
// returns the stored row.
func (s *VersionService) SetArchived(ctx context.Context, modelID int64, tag string, archived bool) (*domain.Version, error) {
	if modelID <= 0 {
		return nil, domain.ErrInvalidModelID
	}
	if err := s.versions.SetArchived(ctx, modelID, tag, archived); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"model_id": modelID,
		"tag":      tag,
		"state":    domain.ArchiveStateOf(archived),
	}).Info("version archive state set")
	return s.versions.GetByTag(ctx, modelID, tag)
}
