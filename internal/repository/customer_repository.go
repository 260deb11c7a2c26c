package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangoesafterplay/customer-onboarding/internal/domain"
)

// CustomerRepository defines persistence access for registered customers.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	ExistsByDocument(ctx context.Context, docType domain.DocumentType, docNumber string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]domain.Customer, error)
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a Postgres-backed implementation.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers
            (tipo_documento, numero_documento, nombres, apellidos,
             fecha_nacimiento, email, telefono, bono_bienvenida, token_usado)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		customer.DocumentType,
		customer.DocumentNumber,
		customer.GivenNames,
		customer.Surname,
		customer.BirthDate,
		customer.Email,
		customer.Phone,
		customer.WelcomeBonus,
		customer.TokenUsed,
	).Scan(&customer.ID, &customer.CreatedAt)
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	const query = `
        SELECT id, tipo_documento, numero_documento, nombres, apellidos,
               fecha_nacimiento, email, telefono, bono_bienvenida, token_usado, created_at
        FROM customers WHERE id=$1`

	var customer domain.Customer
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&customer.ID,
		&customer.DocumentType,
		&customer.DocumentNumber,
		&customer.GivenNames,
		&customer.Surname,
		&customer.BirthDate,
		&customer.Email,
		&customer.Phone,
		&customer.WelcomeBonus,
		&customer.TokenUsed,
		&customer.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) ExistsByDocument(ctx context.Context, docType domain.DocumentType, docNumber string) (bool, error) {
	const query = `
        SELECT id FROM customers WHERE tipo_documento=$1 AND numero_documento=$2`

	var id int64
	err := r.pool.QueryRow(ctx, query, docType, docNumber).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *customerRepository) List(ctx context.Context, limit, offset int) ([]domain.Customer, error) {
	const query = `
        SELECT id, tipo_documento, numero_documento, nombres, apellidos,
               fecha_nacimiento, email, telefono, bono_bienvenida, token_usado, created_at
        FROM customers ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, limit)
	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(
			&customer.ID,
			&customer.DocumentType,
			&customer.DocumentNumber,
			&customer.GivenNames,
			&customer.Surname,
			&customer.BirthDate,
			&customer.Email,
			&customer.Phone,
			&customer.WelcomeBonus,
			&customer.TokenUsed,
			&customer.CreatedAt,
		); err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}
