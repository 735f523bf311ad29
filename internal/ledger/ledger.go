package ledger

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrInsufficientFunds is returned when the source account balance is too low
// for the requested transfer.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Ledger holds value per account and moves it between accounts. The
// marketplace treats it as an external collaborator: it only learns
// success/failure of a transfer.
type Ledger interface {
	Deposit(ctx context.Context, account uuid.UUID, amountCents int64) error
	Transfer(ctx context.Context, from, to uuid.UUID, amountCents int64) error
	Balance(ctx context.Context, account uuid.UUID) (int64, error)
}

// Memory is an in-process Ledger used in standalone mode and tests.
type Memory struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int64
}

func NewMemory() *Memory {
	return &Memory{balances: make(map[uuid.UUID]int64)}
}

var _ Ledger = (*Memory)(nil)

func (m *Memory) Deposit(_ context.Context, account uuid.UUID, amountCents int64) error {
	if amountCents <= 0 {
		return errors.New("deposit amount must be positive")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[account] += amountCents
	return nil
}

func (m *Memory) Transfer(_ context.Context, from, to uuid.UUID, amountCents int64) error {
	if amountCents <= 0 {
		return errors.New("transfer amount must be positive")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[from] < amountCents {
		return ErrInsufficientFunds
	}
	m.balances[from] -= amountCents
	m.balances[to] += amountCents
	return nil
}

func (m *Memory) Balance(_ context.Context, account uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[account], nil
}
