package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangoesafterplay/customer-onboarding/internal/domain"
)

// ParameterRepository reads and updates configuration flags in the
// authoritative store.
type ParameterRepository interface {
	GetByKey(ctx context.Context, key string) (*domain.Parameter, error)
	GetAll(ctx context.Context) ([]domain.Parameter, error)
	Update(ctx context.Context, key, value string) (*domain.Parameter, error)
}

type parameterRepository struct {
	pool *pgxpool.Pool
}

// NewParameterRepository returns a Postgres-backed implementation.
func NewParameterRepository(pool *pgxpool.Pool) ParameterRepository {
	return &parameterRepository{pool: pool}
}

func (r *parameterRepository) GetByKey(ctx context.Context, key string) (*domain.Parameter, error) {
	const query = `
        SELECT key, value, description, updated_at
        FROM parameters WHERE key=$1`

	var param domain.Parameter
	if err := r.pool.QueryRow(ctx, query, key).Scan(
		&param.Key,
		&param.Value,
		&param.Description,
		&param.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &param, nil
}

func (r *parameterRepository) GetAll(ctx context.Context) ([]domain.Parameter, error) {
	const query = `
        SELECT key, value, description, updated_at FROM parameters`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var params []domain.Parameter
	for rows.Next() {
		var param domain.Parameter
		if err := rows.Scan(&param.Key, &param.Value, &param.Description, &param.UpdatedAt); err != nil {
			return nil, err
		}
		params = append(params, param)
	}
	return params, rows.Err()
}

func (r *parameterRepository) Update(ctx context.Context, key, value string) (*domain.Parameter, error) {
	const query = `
        UPDATE parameters SET value=$1, updated_at=NOW()
        WHERE key=$2
        RETURNING key, value, description, updated_at`

	var param domain.Parameter
	if err := r.pool.QueryRow(ctx, query, value, key).Scan(
		&param.Key,
		&param.Value,
		&param.Description,
		&param.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &param, nil
}
