package sqlite

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"vessel-registry/internal/core/domain"
	"vessel-registry/internal/core/ports/output"
)

type modelRepo struct {
	db *gorm.DB
}

func NewModelRepository(db *gorm.DB) ports.ModelRepository {
	return &modelRepo{db: db}
}

func (r *modelRepo) Create(ctx context.Context, model *domain.Model) error {
	row := toModelRow(model)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateModelName
		}
		return fmt.Errorf("create model: %w", err)
	}
	model.ID = row.ID
	return nil
}

func (r *modelRepo) GetByID(ctx context.Context, id int64) (*domain.Model, error) {
	var row modelRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrModelNotFound
		}
		return nil, fmt.Errorf("get model by id: %w", err)
	}
	return row.toDomain(), nil
}

func (r *modelRepo) List(ctx context.Context, filter ports.ModelListFilter) ([]*domain.Model, int, error) {
	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&modelRow{})
		if !filter.IncludeArchived {
			q = q.Where("archived = ?", false)
		}
		return q
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count models: %w", err)
	}

	var rows []modelRow
	err := scope().
		Order("id ASC").
		Limit(limitArg(filter.Limit)).
		Offset(filter.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list models: %w", err)
	}

	models := make([]*domain.Model, 0, len(rows))
	for i := range rows {
		models = append(models, rows[i].toDomain())
	}
	return models, int(total), nil
}

func (r *modelRepo) SetArchived(ctx context.Context, id int64, archived bool) error {
	result := r.db.WithContext(ctx).Model(&modelRow{}).Where("id = ?", id).Update("archived", archived)
	if result.Error != nil {
		return fmt.Errorf("set model archived: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrModelNotFound
	}
	return nil
}

// limitArg maps "no limit" onto gorm's -1.
func limitArg(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
