package sqlite

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vessel-registry/internal/core/domain"
	"vessel-registry/internal/core/ports/output"
)

type versionRepo struct {
	db *gorm.DB
}

func NewVersionRepository(db *gorm.DB) ports.VersionRepository {
	return &versionRepo{db: db}
}

func (r *versionRepo) Create(ctx context.Context, version *domain.Version) error {
	row := toVersionRow(version)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error; err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrDuplicateVersion
		case isForeignKeyViolation(err):
			return domain.ErrModelNotFound
		}
		return fmt.Errorf("create version: %w", err)
	}
	version.ID = row.ID
	return nil
}

func (r *versionRepo) GetByTag(ctx context.Context, modelID int64, tag string) (*domain.Version, error) {
	var row versionRow
	err := r.db.WithContext(ctx).
		Where("model_id = ? AND tag = ?", modelID, tag).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVersionNotFound
		}
		return nil, fmt.Errorf("get version by tag: %w", err)
	}
	return row.toDomain(), nil
}

func (r *versionRepo) ListByModel(ctx context.Context, filter ports.VersionListFilter) ([]*domain.Version, int, error) {
	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&versionRow{}).Where("model_id = ?", filter.ModelID)
		if !filter.IncludeArchived {
			q = q.Where("archived = ?", false)
		}
		return q
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count versions: %w", err)
	}

	var rows []versionRow
	err := scope().
		Order("created ASC").
		Order("id ASC").
		Limit(limitArg(filter.Limit)).
		Offset(filter.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list versions: %w", err)
	}

	versions := make([]*domain.Version, 0, len(rows))
	for i := range rows {
		versions = append(versions, rows[i].toDomain())
	}
	return versions, int(total), nil
}

func (r *versionRepo) SetArchived(ctx context.Context, modelID int64, tag string, archived bool) error {
	result := r.db.WithContext(ctx).
		Model(&versionRow{}).
		Where("model_id = ? AND tag = ?", modelID, tag).
		Update("archived", archived)
	if result.Error != nil {
		return fmt.Errorf("set version archived: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrVersionNotFound
	}
	return nil
}
