package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new account and returns it.
func (r *Repository) Create(ctx context.Context, email, passwordHash, displayName string) (*Account, error) {
	var acc Account
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (email, password_hash, display_name)
		VALUES ($1, $2, $3)
		RETURNING id, email, display_name, created_at
	`, email, passwordHash, displayName)
	if err := row.Scan(&acc.ID, &acc.Email, &acc.DisplayName, &acc.CreatedAt); err != nil {
		return nil, err
	}
	return &acc, nil
}

// GetByEmail returns the account and password hash for login. Returns nil if
// not found.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Account, string, error) {
	var acc Account
	var passwordHash string
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash, created_at
		FROM accounts WHERE email = $1
	`, email)
	if err := row.Scan(&acc.ID, &acc.Email, &acc.DisplayName, &passwordHash, &acc.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", nil
		}
		return nil, "", err
	}
	return &acc, passwordHash, nil
}
