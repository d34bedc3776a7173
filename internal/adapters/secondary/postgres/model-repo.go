package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/guregu/null.v3"

	"vessel-registry/internal/core/domain"
	"vessel-registry/internal/core/ports/output"
)

type modelRepo struct {
	pool *pgxpool.Pool
}

func NewModelRepository(pool *pgxpool.Pool) ports.ModelRepository {
	return &modelRepo{pool: pool}
}

func (r *modelRepo) Create(ctx context.Context, model *domain.Model) error {
	query := `
		INSERT INTO models (name, description, archived)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		model.Name, model.Description.Ptr(), model.Archived(),
	).Scan(&model.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
			return domain.ErrDuplicateModelName
		}
		return fmt.Errorf("create model: %w", err)
	}
	return nil
}

func (r *modelRepo) GetByID(ctx context.Context, id int64) (*domain.Model, error) {
	query := `
		SELECT id, name, description, archived
		FROM models
		WHERE id = $1
	`

	m, err := scanModel(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrModelNotFound
		}
		return nil, fmt.Errorf("get model by id: %w", err)
	}
	return m, nil
}

func (r *modelRepo) List(ctx context.Context, filter ports.ModelListFilter) ([]*domain.Model, int, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	if !filter.IncludeArchived {
		conditions = append(conditions, "archived = FALSE")
	}

	whereClause := "1=1"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM models WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count models: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, description, archived
		FROM models
		WHERE %s
		ORDER BY id ASC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)

	args = append(args, limitArg(filter.Limit), filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list models: %w", err)
	}
	defer rows.Close()

	models := []*domain.Model{}
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan model row: %w", err)
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate model rows: %w", err)
	}

	return models, total, nil
}

func (r *modelRepo) SetArchived(ctx context.Context, id int64, archived bool) error {
	result, err := r.pool.Exec(ctx, `UPDATE models SET archived = $1 WHERE id = $2`, archived, id)
	if err != nil {
		return fmt.Errorf("set model archived: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrModelNotFound
	}
	return nil
}

func scanModel(row pgx.Row) (*domain.Model, error) {
	m := &domain.Model{}
	var description *string
	var archived bool

	if err := row.Scan(&m.ID, &m.Name, &description, &archived); err != nil {
		return nil, err
	}
	m.Description = null.StringFromPtr(description)
	m.State = domain.ArchiveStateOf(archived)
	return m, nil
}
