package ports

import (
	"context"

	"vessel-registry/internal/core/domain"
)

type ModelListFilter struct {
	IncludeArchived bool
	Limit           int
	Offset          int
}

type VersionListFilter struct {
	ModelID         int64
	IncludeArchived bool
	Limit           int
	Offset          int
}

// ModelRepository is the Model half of the catalog. Name uniqueness is
// enforced by the store itself and surfaces as domain.ErrDuplicateModelName.
type ModelRepository interface {
	Create(ctx context.Context, model *domain.Model) error
	GetByID(ctx context.Context, id int64) (*domain.Model, error)
	List(ctx context.Context, filter ModelListFilter) ([]*domain.Model, int, error)
	SetArchived(ctx context.Context, id int64, archived bool) error
}

// VersionRepository is the Version half of the catalog. Create must fail with
// domain.ErrDuplicateVersion when (model_id, tag) already exists, even if a
// concurrent caller inserted it after the registrar's pre-check.
type VersionRepository interface {
	Create(ctx context.Context, version *domain.Version) error
	GetByTag(ctx context.Context, modelID int64, tag string) (*domain.Version, error)
	ListByModel(ctx context.Context, filter VersionListFilter) ([]*domain.Version, int, error)
	SetArchived(ctx context.Context, modelID int64, tag string, archived bool) error
}
