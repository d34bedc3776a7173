package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/guregu/null.v3"

	"vessel-registry/internal/core/domain"
	"vessel-registry/internal/core/ports/output"
)

type versionRepo struct {
	pool *pgxpool.Pool
}

func NewVersionRepository(pool *pgxpool.Pool) ports.VersionRepository {
	return &versionRepo{pool: pool}
}

const versionColumns = `id, model_id, tag, hash, path, data_set, pipeline, created, archived`

func (r *versionRepo) Create(ctx context.Context, version *domain.Version) error {
	query := `
		INSERT INTO versions
			(model_id, tag, hash, path, data_set, pipeline, created, archived)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		version.ModelID, version.Tag, version.ContentHash, version.StoragePath,
		version.DataSet.Ptr(), version.Pipeline.Ptr(), version.Created, version.Archived(),
	).Scan(&version.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case codeUniqueViolation:
				return domain.ErrDuplicateVersion
			case codeForeignKeyViolation:
				return domain.ErrModelNotFound
			}
		}
		return fmt.Errorf("create version: %w", err)
	}
	return nil
}

func (r *versionRepo) GetByTag(ctx context.Context, modelID int64, tag string) (*domain.Version, error) {
	query := `SELECT ` + versionColumns + `
		FROM versions
		WHERE model_id = $1 AND tag = $2
	`

	v, err := scanVersion(r.pool.QueryRow(ctx, query, modelID, tag))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVersionNotFound
		}
		return nil, fmt.Errorf("get version by tag: %w", err)
	}
	return v, nil
}

func (r *versionRepo) ListByModel(ctx context.Context, filter ports.VersionListFilter) ([]*domain.Version, int, error) {
	whereClause := "model_id = $1"
	if !filter.IncludeArchived {
		whereClause += " AND archived = FALSE"
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM versions WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, filter.ModelID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count versions: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s
		FROM versions
		WHERE %s
		ORDER BY created ASC, id ASC
		LIMIT $2 OFFSET $3
	`, versionColumns, whereClause)

	rows, err := r.pool.Query(ctx, query, filter.ModelID, limitArg(filter.Limit), filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	versions := []*domain.Version{}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan version row: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate version rows: %w", err)
	}

	return versions, total, nil
}

func (r *versionRepo) SetArchived(ctx context.Context, modelID int64, tag string, archived bool) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE versions SET archived = $1 WHERE model_id = $2 AND tag = $3`,
		archived, modelID, tag,
	)
	if err != nil {
		return fmt.Errorf("set version archived: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrVersionNotFound
	}
	return nil
}

func scanVersion(row pgx.Row) (*domain.Version, error) {
	v := &domain.Version{}
	var dataSet, pipeline *string
	var archived bool

	err := row.Scan(
		&v.ID, &v.ModelID, &v.Tag, &v.ContentHash, &v.StoragePath,
		&dataSet, &pipeline, &v.Created, &archived,
	)
	if err != nil {
		return nil, err
	}
	v.DataSet = null.StringFromPtr(dataSet)
	v.Pipeline = null.StringFromPtr(pipeline)
	v.State = domain.ArchiveStateOf(archived)
	return v, nil
}
