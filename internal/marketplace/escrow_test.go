package marketplace

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestWithdrawEscrow_ZeroBalance(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.WithdrawEscrow(context.Background(), uuid.New()); err != ErrNothingToWithdraw {
		t.Errorf("got %v, want ErrNothingToWithdraw", err)
	}
}

func TestWithdrawEscrow_PaysOutAndZeroes(t *testing.T) {
	svc, l, _ := newTestService(t)
	account := uuid.New()
	l.balances[EscrowPoolAccount] = 500

	svc.CreditEscrow(account, 300)
	svc.CreditEscrow(account, 200)
	if got := svc.EscrowBalance(account); got != 500 {
		t.Fatalf("pending balance: got %d, want 500", got)
	}

	amount, err := svc.WithdrawEscrow(context.Background(), account)
	if err != nil {
		t.Fatalf("WithdrawEscrow: %v", err)
	}
	if amount != 500 {
		t.Errorf("withdrawn: got %d, want 500", amount)
	}
	if got := l.balance(account); got != 500 {
		t.Errorf("ledger balance: got %d, want 500", got)
	}
	if got := svc.EscrowBalance(account); got != 0 {
		t.Errorf("pending balance after withdraw: got %d, want 0", got)
	}

	// A repeat withdrawal finds nothing.
	if _, err := svc.WithdrawEscrow(context.Background(), account); err != ErrNothingToWithdraw {
		t.Errorf("repeat withdraw: got %v, want ErrNothingToWithdraw", err)
	}
}

// The pending balance must be cleared before the external transfer is
// attempted, so a reentrant withdraw during the transfer sees zero.
func TestWithdrawEscrow_ZeroesBeforeTransfer(t *testing.T) {
	svc, l, _ := newTestService(t)
	account := uuid.New()
	l.balances[EscrowPoolAccount] = 400
	svc.CreditEscrow(account, 400)

	var pendingDuringTransfer int64 = -1
	l.onTransfer = func(_, _ uuid.UUID, _ int64) {
		pendingDuringTransfer = svc.escrow.balance(account)
	}
	if _, err := svc.WithdrawEscrow(context.Background(), account); err != nil {
		t.Fatalf("WithdrawEscrow: %v", err)
	}
	if pendingDuringTransfer != 0 {
		t.Errorf("pending balance during external transfer: got %d, want 0", pendingDuringTransfer)
	}
}

func TestWithdrawEscrow_TransferFailureRestoresBalance(t *testing.T) {
	svc, l, _ := newTestService(t)
	account := uuid.New()
	l.balances[EscrowPoolAccount] = 400
	svc.CreditEscrow(account, 400)

	l.failTransfer = true
	if _, err := svc.WithdrawEscrow(context.Background(), account); err != ErrTransferFailed {
		t.Fatalf("got %v, want ErrTransferFailed", err)
	}
	// The balance is not lost.
	if got := svc.EscrowBalance(account); got != 400 {
		t.Errorf("pending balance after failed transfer: got %d, want 400", got)
	}
	if got := l.balance(account); got != 0 {
		t.Errorf("ledger balance after failed transfer: got %d, want 0", got)
	}

	l.failTransfer = false
	amount, err := svc.WithdrawEscrow(context.Background(), account)
	if err != nil {
		t.Fatalf("WithdrawEscrow after recovery: %v", err)
	}
	if amount != 400 || l.balance(account) != 400 {
		t.Errorf("payout after recovery: amount=%d balance=%d, want 400/400", amount, l.balance(account))
	}
}

func TestCreditEscrow_IgnoresNonPositiveAmounts(t *testing.T) {
	svc, _, _ := newTestService(t)
	account := uuid.New()
	svc.CreditEscrow(account, 0)
	svc.CreditEscrow(account, -50)
	if got := svc.EscrowBalance(account); got != 0 {
		t.Errorf("pending balance: got %d, want 0", got)
	}
}
