package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the Postgres-backed Ledger. Balances live on ledger_accounts
// rows and every movement is journalled into ledger_transactions.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Ledger = (*Repository)(nil)

func (r *Repository) Deposit(ctx context.Context, account uuid.UUID, amountCents int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	_, err = tx.Exec(ctx, `
		INSERT INTO ledger_accounts (id, balance_cents) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET balance_cents = ledger_accounts.balance_cents + $2
	`, account, amountCents)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO ledger_transactions (tx_type, credit_account_id, amount_cents)
		VALUES ('DEPOSIT', $1, $2)
	`, account, amountCents)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Transfer debits `from` with an atomic conditional UPDATE so an overdraft can
// never be written, credits `to`, and journals the movement.
func (r *Repository) Transfer(ctx context.Context, from, to uuid.UUID, amountCents int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	result, err := tx.Exec(ctx, `
		UPDATE ledger_accounts SET balance_cents = balance_cents - $1
		WHERE id = $2 AND balance_cents >= $1
	`, amountCents, from)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrInsufficientFunds
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO ledger_accounts (id, balance_cents) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET balance_cents = ledger_accounts.balance_cents + $2
	`, to, amountCents)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO ledger_transactions (tx_type, debit_account_id, credit_account_id, amount_cents)
		VALUES ('TRANSFER', $1, $2, $3)
	`, from, to, amountCents)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) Balance(ctx context.Context, account uuid.UUID) (int64, error) {
	var balance int64
	row := r.pool.QueryRow(ctx, `
		SELECT COALESCE((SELECT balance_cents FROM ledger_accounts WHERE id = $1), 0)
	`, account)
	if err := row.Scan(&balance); err != nil {
		return 0, err
	}
	return balance, nil
}
