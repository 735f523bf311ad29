package marketplace

import "errors"

// Sentinel errors for every failure the marketplace can surface. Handlers map
// these to HTTP status codes with errors.Is; nothing else crosses the boundary.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrAmountMismatch    = errors.New("attached amount does not match budget")
	ErrNotFound          = errors.New("job not found")
	ErrUnauthorized      = errors.New("caller is not the job poster")
	ErrInvalidState      = errors.New("operation not allowed in current job status")
	ErrCapacityExceeded  = errors.New("proposal limit reached for job")
	ErrBidTooHigh        = errors.New("bid exceeds job budget")
	ErrProposalNotFound  = errors.New("no pending proposal from freelancer")
	ErrNothingToWithdraw = errors.New("escrow balance is zero")
	ErrTransferFailed    = errors.New("ledger transfer failed")
)
