package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/petalmart/storefront/internal/domain"
)

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// CreateCustomer inserts the customer and their starting Bronze loyalty
// account in one transaction.
func (r *CustomerRepository) CreateCustomer(ctx context.Context, name, email, passwordHash string) (*domain.Customer, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin register transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	customer := &domain.Customer{}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO customers (name, email, password_hash) VALUES ($1, $2, $3)
		 RETURNING id, name, email`,
		name, email, passwordHash).Scan(&customer.ID, &customer.Name, &customer.Email)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert customer: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO loyalty_accounts (user_id, points, level, total_spent)
		 VALUES ($1, 0, 'Bronze', 0)`,
		customer.ID)
	if err != nil {
		return nil, fmt.Errorf("insert loyalty account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit register transaction: %w", err)
	}

	return customer, nil
}

// GetCredentialsByEmail returns the customer id and stored password hash for
// login verification.
func (r *CustomerRepository) GetCredentialsByEmail(ctx context.Context, email string) (int64, string, error) {
	var (
		id   int64
		hash string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM customers WHERE email = $1`, email).
		Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", ErrCustomerNotFound
	}
	if err != nil {
		return 0, "", fmt.Errorf("query customer credentials: %w", err)
	}
	return id, hash, nil
}

// GetProfile joins the customer with their loyalty account, falling back to
// Bronze defaults when no loyalty row exists.
func (r *CustomerRepository) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	query := `SELECT c.id, c.name, c.email,
	                 COALESCE(c.phone, ''), COALESCE(c.address, ''),
	                 COALESCE(l.points, 0), COALESCE(l.total_spent, 0),
	                 COALESCE(l.level, 'Bronze'),
	                 COALESCE(lv.color_hex, '#CD7F32')
	          FROM customers c
	          LEFT JOIN loyalty_accounts l ON l.user_id = c.id
	          LEFT JOIN loyalty_levels lv ON lv.name = l.level
	          WHERE c.id = $1`

	var p domain.Profile
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.Address,
		&p.LoyaltyPoints,
		&p.TotalSpent,
		&p.LoyaltyLevel,
		&p.LoyaltyColor,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return &p, nil
}

func (r *CustomerRepository) UpdateProfile(ctx context.Context, userID int64, name, email, phone, address string) (*domain.Customer, error) {
	query := `UPDATE customers SET name = $1, email = $2, phone = $3, address = $4
	          WHERE id = $5
	          RETURNING id, name, email, phone, address`

	var c domain.Customer
	err := r.db.QueryRowContext(ctx, query, name, email, phone, address, userID).Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Address,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &c, nil
}
