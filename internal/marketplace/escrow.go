package marketplace

import "github.com/google/uuid"

// EscrowPoolAccount is the ledger account backing pending escrow balances.
// Value credited to an account's pending balance sits here until withdrawn.
var EscrowPoolAccount = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// escrowAccounts tracks per-account pending withdrawal balances. Its lifecycle
// is independent of jobs and proposals: balances are credited by refund and
// fallback paths and zeroed on withdrawal. The Service serializes all access.
type escrowAccounts struct {
	pending map[uuid.UUID]int64
}

func newEscrowAccounts() *escrowAccounts {
	return &escrowAccounts{pending: make(map[uuid.UUID]int64)}
}

func (e *escrowAccounts) credit(account uuid.UUID, amountCents int64) {
	if amountCents <= 0 {
		return
	}
	e.pending[account] += amountCents
}

func (e *escrowAccounts) balance(account uuid.UUID) int64 {
	return e.pending[account]
}

// clear zeroes the account's pending balance and returns what it held. The
// caller must invoke this before the external ledger transfer so a reentrant
// withdraw observes a zero balance.
func (e *escrowAccounts) clear(account uuid.UUID) int64 {
	amount := e.pending[account]
	if amount > 0 {
		delete(e.pending, account)
	}
	return amount
}

// restore puts a cleared balance back after a failed ledger transfer.
func (e *escrowAccounts) restore(account uuid.UUID, amountCents int64) {
	e.credit(account, amountCents)
}
