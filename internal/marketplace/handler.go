package marketplace

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/Adamsbite/XionXWork/internal/ledger"
	"github.com/Adamsbite/XionXWork/internal/middleware"
)

// Request/response structs use snake_case JSON.

type PostJobRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	BudgetCents   int64  `json:"budget_cents"`
	AttachedCents int64  `json:"attached_cents"`
}

type PostJobResponse struct {
	JobID  uint64 `json:"job_id"`
	Status string `json:"status"`
}

type SubmitProposalRequest struct {
	BidCents    int64  `json:"bid_cents"`
	CoverLetter string `json:"cover_letter"`
}

type AcceptProposalRequest struct {
	Freelancer string `json:"freelancer"`
}

type CompleteJobResponse struct {
	JobID         uint64 `json:"job_id"`
	ReleasedCents int64  `json:"released_cents"`
	Status        string `json:"status"`
}

type WithdrawResponse struct {
	WithdrawnCents int64 `json:"withdrawn_cents"`
}

type BalanceResponse struct {
	BalanceCents int64 `json:"balance_cents"`
}

type DepositRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

// Handler serves the marketplace HTTP surface. Caller identity comes from the
// TokenAuth middleware; the wallet endpoints talk to the ledger directly.
type Handler struct {
	Svc    *Service
	Ledger ledger.Ledger
	Log    *slog.Logger
}

func NewHandler(svc *Service, l ledger.Ledger, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{Svc: svc, Ledger: l, Log: log}
}

// PostJob handles POST /api/v1/jobs.
func (h *Handler) PostJob(w http.ResponseWriter, r *http.Request) {
	caller := middleware.AccountIDFromCtx(r.Context())
	if caller == uuid.Nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req PostJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	jobID, err := h.Svc.PostJob(r.Context(), caller, req.Title, req.Description, req.BudgetCents, req.AttachedCents)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, PostJobResponse{JobID: jobID, Status: JobStatusOpen})
}

// GetJob handles GET /api/v1/jobs/{id}.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(r)
	if !ok {
		http.Error(w, `{"error":"invalid job id"}`, http.StatusBadRequest)
		return
	}
	job, err := h.Svc.GetJobDetails(jobID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// ListProposals handles GET /api/v1/jobs/{id}/proposals.
func (h *Handler) ListProposals(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(r)
	if !ok {
		http.Error(w, `{"error":"invalid job id"}`, http.StatusBadRequest)
		return
	}
	proposals, err := h.Svc.GetJobProposals(jobID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proposals)
}

// SubmitProposal handles POST /api/v1/jobs/{id}/proposals.
func (h *Handler) SubmitProposal(w http.ResponseWriter, r *http.Request) {
	caller := middleware.AccountIDFromCtx(r.Context())
	if caller == uuid.Nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	jobID, ok := jobIDFromPath(r)
	if !ok {
		http.Error(w, `{"error":"invalid job id"}`, http.StatusBadRequest)
		return
	}
	var req SubmitProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if err := h.Svc.SubmitProposal(r.Context(), jobID, caller, req.BidCents, req.CoverLetter); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": ProposalStatusPending})
}

// AcceptProposal handles POST /api/v1/jobs/{id}/accept.
func (h *Handler) AcceptProposal(w http.ResponseWriter, r *http.Request) {
	caller := middleware.AccountIDFromCtx(r.Context())
	if caller == uuid.Nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	jobID, ok := jobIDFromPath(r)
	if !ok {
		http.Error(w, `{"error":"invalid job id"}`, http.StatusBadRequest)
		return
	}
	var req AcceptProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	freelancer, err := uuid.Parse(req.Freelancer)
	if err != nil {
		http.Error(w, `{"error":"invalid freelancer"}`, http.StatusBadRequest)
		return
	}
	if err := h.Svc.AcceptProposal(r.Context(), jobID, freelancer, caller); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": JobStatusInProgress})
}

// CompleteJob handles POST /api/v1/jobs/{id}/complete.
func (h *Handler) CompleteJob(w http.ResponseWriter, r *http.Request) {
	caller := middleware.AccountIDFromCtx(r.Context())
	if caller == uuid.Nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	jobID, ok := jobIDFromPath(r)
	if !ok {
		http.Error(w, `{"error":"invalid job id"}`, http.StatusBadRequest)
		return
	}
	released, err := h.Svc.CompleteJob(r.Context(), jobID, caller)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CompleteJobResponse{JobID: jobID, ReleasedCents: released, Status: JobStatusCompleted})
}

// ListUserJobs handles GET /api/v1/users/{id}/jobs.
func (h *Handler) ListUserJobs(w http.ResponseWriter, r *http.Request) {
	user, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid user id"}`, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.Svc.GetUserJobs(user))
}

// WithdrawEscrow handles POST /api/v1/escrow/withdraw.
func (h *Handler) WithdrawEscrow(w http.ResponseWriter, r *http.Request) {
	caller := middleware.AccountIDFromCtx(r.Context())
	if caller == uuid.Nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	amount, err := h.Svc.WithdrawEscrow(r.Context(), caller)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WithdrawResponse{WithdrawnCents: amount})
}

// EscrowBalance handles GET /api/v1/escrow/balance.
func (h *Handler) EscrowBalance(w http.ResponseWriter, r *http.Request) {
	caller := middleware.AccountIDFromCtx(r.Context())
	if caller == uuid.Nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{BalanceCents: h.Svc.EscrowBalance(caller)})
}

// Deposit handles POST /api/v1/wallet/deposit — the dev faucet crediting the
// caller's ledger account.
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	caller := middleware.AccountIDFromCtx(r.Context())
	if caller == uuid.Nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.AmountCents <= 0 {
		http.Error(w, `{"error":"amount_cents must be > 0"}`, http.StatusBadRequest)
		return
	}
	if err := h.Ledger.Deposit(r.Context(), caller, req.AmountCents); err != nil {
		h.Log.Error("deposit failed", "account", caller, "error", err)
		http.Error(w, `{"error":"deposit failed"}`, http.StatusInternalServerError)
		return
	}
	balance, err := h.Ledger.Balance(r.Context(), caller)
	if err != nil {
		h.Log.Error("balance lookup failed", "account", caller, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{BalanceCents: balance})
}

// WalletBalance handles GET /api/v1/wallet/balance.
func (h *Handler) WalletBalance(w http.ResponseWriter, r *http.Request) {
	caller := middleware.AccountIDFromCtx(r.Context())
	if caller == uuid.Nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	balance, err := h.Ledger.Balance(r.Context(), caller)
	if err != nil {
		h.Log.Error("balance lookup failed", "account", caller, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{BalanceCents: balance})
}

// writeError maps marketplace sentinel errors to HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrAmountMismatch):
		status = http.StatusBadRequest
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrProposalNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrCapacityExceeded), errors.Is(err, ErrNothingToWithdraw):
		status = http.StatusConflict
	case errors.Is(err, ErrBidTooHigh):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ErrTransferFailed):
		status = http.StatusPaymentRequired
	default:
		h.Log.Error("marketplace operation failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func jobIDFromPath(r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
