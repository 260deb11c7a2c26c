package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangoesafterplay/customer-onboarding/internal/domain"
)

// EmailRepository persists delivery outcome rows for the mailer worker.
type EmailRepository interface {
	Create(ctx context.Context, record *domain.EmailRecord) error
	List(ctx context.Context, limit, offset int) ([]domain.EmailRecord, error)
	Stats(ctx context.Context) (*domain.EmailStats, error)
}

type emailRepository struct {
	pool *pgxpool.Pool
}

// NewEmailRepository returns a Postgres-backed implementation.
func NewEmailRepository(pool *pgxpool.Pool) EmailRepository {
	return &emailRepository{pool: pool}
}

func (r *emailRepository) Create(ctx context.Context, record *domain.EmailRecord) error {
	const query = `
        INSERT INTO sent_emails
            (recipient_email, recipient_name, subject, message, customer_id, status, metadata)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`

	metadata, err := json.Marshal(record.Metadata)
	if err != nil {
		return err
	}

	return r.pool.QueryRow(ctx, query,
		record.RecipientEmail,
		record.RecipientName,
		record.Subject,
		record.Message,
		record.CustomerID,
		record.Status,
		metadata,
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *emailRepository) List(ctx context.Context, limit, offset int) ([]domain.EmailRecord, error) {
	const query = `
        SELECT id, recipient_email, recipient_name, subject, message,
               customer_id, status, metadata, created_at
        FROM sent_emails ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.EmailRecord, 0, limit)
	for rows.Next() {
		var record domain.EmailRecord
		var metadata []byte
		if err := rows.Scan(
			&record.ID,
			&record.RecipientEmail,
			&record.RecipientName,
			&record.Subject,
			&record.Message,
			&record.CustomerID,
			&record.Status,
			&metadata,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &record.Metadata); err != nil {
				return nil, err
			}
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *emailRepository) Stats(ctx context.Context) (*domain.EmailStats, error) {
	const query = `
        SELECT
            COUNT(*) AS total,
            COUNT(*) FILTER (WHERE status = 'sent') AS sent,
            COUNT(*) FILTER (WHERE status = 'failed') AS failed
        FROM sent_emails`

	var stats domain.EmailStats
	if err := r.pool.QueryRow(ctx, query).Scan(
		&stats.Total,
		&stats.Sent,
		&stats.Failed,
	); err != nil {
		return nil, err
	}
	return &stats, nil
}
