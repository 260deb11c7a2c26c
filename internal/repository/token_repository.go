package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangoesafterplay/customer-onboarding/internal/domain"
)

// ErrDuplicateToken signals a uniqueness conflict on insert; the caller may
// retry with a freshly generated value.
var ErrDuplicateToken = errors.New("token value already exists")

// ErrTokenNotConsumable signals that the conditional consume update affected
// zero rows: the token was already consumed, never existed, or is invalid.
var ErrTokenNotConsumable = errors.New("token not valid or already used")

const uniqueViolationCode = "23505"

// TokenRepository manages registration token persistence.
type TokenRepository interface {
	Create(ctx context.Context, value string, ttl time.Duration) (*domain.Token, error)
	GetByValue(ctx context.Context, value string) (*domain.Token, error)
	Consume(ctx context.Context, value string) (*domain.Token, error)
	Stats(ctx context.Context) (*domain.TokenStats, error)
}

type tokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository returns a Postgres-backed implementation.
func NewTokenRepository(pool *pgxpool.Pool) TokenRepository {
	return &tokenRepository{pool: pool}
}

func (r *tokenRepository) Create(ctx context.Context, value string, ttl time.Duration) (*domain.Token, error) {
	const query = `
        INSERT INTO tokens (token, is_valid, expires_at)
        VALUES ($1, true, NOW() + make_interval(secs => $2))
        RETURNING id, token, is_valid, created_at, expires_at`

	var token domain.Token
	err := r.pool.QueryRow(ctx, query, value, ttl.Seconds()).Scan(
		&token.ID,
		&token.Token,
		&token.IsValid,
		&token.CreatedAt,
		&token.ExpiresAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, ErrDuplicateToken
		}
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) GetByValue(ctx context.Context, value string) (*domain.Token, error) {
	const query = `
        SELECT id, token, is_valid, created_at, expires_at, used_at
        FROM tokens WHERE token=$1`

	var token domain.Token
	if err := r.pool.QueryRow(ctx, query, value).Scan(
		&token.ID,
		&token.Token,
		&token.IsValid,
		&token.CreatedAt,
		&token.ExpiresAt,
		&token.UsedAt,
	); err != nil {
		return nil, err
	}
	return &token, nil
}

// Consume flips the validity flag with a conditional update. The WHERE clause
// on is_valid is the sole concurrency control: of N racing callers, exactly
// one sees a row returned; the rest get ErrTokenNotConsumable.
func (r *tokenRepository) Consume(ctx context.Context, value string) (*domain.Token, error) {
	const query = `
        UPDATE tokens SET is_valid=false, used_at=NOW()
        WHERE token=$1 AND is_valid=true
        RETURNING id, token, is_valid, created_at, expires_at, used_at`

	var token domain.Token
	err := r.pool.QueryRow(ctx, query, value).Scan(
		&token.ID,
		&token.Token,
		&token.IsValid,
		&token.CreatedAt,
		&token.ExpiresAt,
		&token.UsedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTokenNotConsumable
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) Stats(ctx context.Context) (*domain.TokenStats, error) {
	const query = `
        SELECT
            COUNT(*) AS total,
            COUNT(*) FILTER (WHERE is_valid = true AND expires_at > NOW()) AS valid,
            COUNT(*) FILTER (WHERE is_valid = false) AS used,
            COUNT(*) FILTER (WHERE expires_at < NOW()) AS expired
        FROM tokens`

	var stats domain.TokenStats
	if err := r.pool.QueryRow(ctx, query).Scan(
		&stats.Total,
		&stats.Valid,
		&stats.Used,
		&stats.Expired,
	); err != nil {
		return nil, err
	}
	return &stats, nil
}
