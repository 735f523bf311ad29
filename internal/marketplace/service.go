package marketplace

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Adamsbite/XionXWork/internal/ledger"
)

// Service is the only externally exposed entry point of the marketplace. It
// validates caller identity and job state before touching the registries, and
// serializes every mutation behind a single write lock so that exactly one
// state-mutating operation runs at a time. Reads take the shared lock and see
// the state as of the last committed mutation.
//
// Operations that move value commit all internal state before calling the
// ledger: a reentrant call triggered by the transfer observes the already
// final state and cannot produce a second payout.
type Service struct {
	mu        sync.RWMutex
	jobs      *jobRegistry
	proposals *proposalRegistry
	escrow    *escrowAccounts
	ledger    ledger.Ledger
	events    EventSink
	log       *slog.Logger
	now       func() time.Time
}

func NewService(l ledger.Ledger, events EventSink, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	if events == nil {
		events = &LogSink{Log: log}
	}
	return &Service{
		jobs:      newJobRegistry(),
		proposals: newProposalRegistry(),
		escrow:    newEscrowAccounts(),
		ledger:    l,
		events:    events,
		log:       log,
		now:       time.Now,
	}
}

// PostJob creates an OPEN job and moves attachedCents from the poster into a
// fresh custody account. The attached amount must equal the declared budget;
// an under- or over-funded job is never created. Funding and job creation are
// atomic to observers: the write lock is held across both.
func (s *Service) PostJob(ctx context.Context, poster uuid.UUID, title, description string, budgetCents, attachedCents int64) (uint64, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" || budgetCents <= 0 {
		return 0, ErrInvalidInput
	}
	if attachedCents != budgetCents {
		return 0, ErrAmountMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	custody := uuid.New()
	if err := s.ledger.Transfer(ctx, poster, custody, budgetCents); err != nil {
		s.log.Warn("job funding transfer failed", "poster", poster, "budget_cents", budgetCents, "error", err)
		return 0, ErrTransferFailed
	}
	job := s.jobs.add(poster, title, description, budgetCents, custody, s.now())

	s.events.Publish(ctx, Event{Kind: EventJobPosted, JobID: job.ID, Account: poster, AmountCents: budgetCents})
	s.log.Info("job posted", "job_id", job.ID, "poster", poster, "budget_cents", budgetCents)
	return job.ID, nil
}

// SubmitProposal appends a PENDING proposal in arrival order. The same
// freelancer may submit more than once; the earliest submission is the one an
// accept can ever match.
func (s *Service) SubmitProposal(ctx context.Context, jobID uint64, freelancer uuid.UUID, bidCents int64, coverLetter string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs.get(jobID)
	if !ok {
		return ErrNotFound
	}
	if job.Status != JobStatusOpen {
		return ErrInvalidState
	}
	if s.proposals.count(jobID) >= MaxProposalsPerJob {
		return ErrCapacityExceeded
	}
	if bidCents > job.BudgetCents {
		return ErrBidTooHigh
	}
	s.proposals.add(jobID, freelancer, bidCents, coverLetter, s.now())

	s.events.Publish(ctx, Event{Kind: EventProposalSubmitted, JobID: jobID, Account: freelancer, AmountCents: bidCents})
	return nil
}

// AcceptProposal marks the freelancer's earliest pending proposal ACCEPTED and
// moves the job to IN_PROGRESS. Sibling proposals are left PENDING; they are
// inert once the job has left OPEN.
func (s *Service) AcceptProposal(ctx context.Context, jobID uint64, freelancer, caller uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs.get(jobID)
	if !ok {
		return ErrNotFound
	}
	if caller != job.Poster {
		return ErrUnauthorized
	}
	if job.Status != JobStatusOpen {
		return ErrInvalidState
	}
	p := s.proposals.firstPending(jobID, freelancer)
	if p == nil {
		return ErrProposalNotFound
	}
	p.Status = ProposalStatusAccepted
	job.Status = JobStatusInProgress
	f := freelancer
	job.AssignedFreelancer = &f

	s.events.Publish(ctx, Event{Kind: EventProposalAccepted, JobID: jobID, Account: caller, Freelancer: &f, AmountCents: p.BidCents})
	s.log.Info("proposal accepted", "job_id", jobID, "freelancer", freelancer)
	return nil
}

// CompleteJob settles the job: the platform fee is withheld and the remainder
// of the budget is released from custody to the assigned freelancer. The
// COMPLETED status is committed before the external transfer and rolled back
// if the ledger reports failure, so a job is never COMPLETED without its
// payout and never pays twice.
func (s *Service) CompleteJob(ctx context.Context, jobID uint64, caller uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs.get(jobID)
	if !ok {
		return 0, ErrNotFound
	}
	if caller != job.Poster {
		return 0, ErrUnauthorized
	}
	if job.Status != JobStatusInProgress {
		return 0, ErrInvalidState
	}

	fee := platformFee(job.BudgetCents)
	releaseCents := job.BudgetCents - fee
	freelancer := *job.AssignedFreelancer

	// Commit first, transfer second. The fee stays in custody: there is no
	// fee-sink withdrawal path.
	job.Status = JobStatusCompleted
	if err := s.ledger.Transfer(ctx, job.CustodyAccount, freelancer, releaseCents); err != nil {
		job.Status = JobStatusInProgress
		s.log.Error("fund release failed", "job_id", jobID, "freelancer", freelancer, "error", err)
		return 0, ErrTransferFailed
	}

	s.events.Publish(ctx, Event{Kind: EventJobCompleted, JobID: jobID, Account: caller, Freelancer: &freelancer})
	s.events.Publish(ctx, Event{Kind: EventFundReleased, JobID: jobID, Account: freelancer, AmountCents: releaseCents})
	s.log.Info("job completed", "job_id", jobID, "released_cents", releaseCents, "fee_cents", fee)
	return releaseCents, nil
}

// CreditEscrow adds to an account's pending withdrawal balance. Reserved for
// refund and fallback paths; the primary completion flow pays out directly.
func (s *Service) CreditEscrow(account uuid.UUID, amountCents int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.escrow.credit(account, amountCents)
}

// WithdrawEscrow pays out the caller's entire pending balance. The balance is
// zeroed before the ledger transfer is attempted and restored only if the
// transfer fails.
func (s *Service) WithdrawEscrow(ctx context.Context, caller uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	amount := s.escrow.clear(caller)
	if amount == 0 {
		return 0, ErrNothingToWithdraw
	}
	if err := s.ledger.Transfer(ctx, EscrowPoolAccount, caller, amount); err != nil {
		s.escrow.restore(caller, amount)
		s.log.Error("escrow withdrawal transfer failed", "account", caller, "amount_cents", amount, "error", err)
		return 0, ErrTransferFailed
	}
	return amount, nil
}

// EscrowBalance returns the caller's pending withdrawal balance.
func (s *Service) EscrowBalance(caller uuid.UUID) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.escrow.balance(caller)
}

// GetJobDetails returns a copy of the job.
func (s *Service) GetJobDetails(jobID uint64) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs.get(jobID)
	if !ok {
		return nil, ErrNotFound
	}
	cp := *job
	if job.AssignedFreelancer != nil {
		f := *job.AssignedFreelancer
		cp.AssignedFreelancer = &f
	}
	return &cp, nil
}

// GetJobProposals returns the job's proposals in insertion order.
func (s *Service) GetJobProposals(jobID uint64) ([]Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.jobs.get(jobID); !ok {
		return nil, ErrNotFound
	}
	return s.proposals.list(jobID), nil
}

// GetUserJobs returns the IDs of jobs posted by the account, oldest first.
func (s *Service) GetUserJobs(poster uuid.UUID) []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs.idsByPoster(poster)
}
