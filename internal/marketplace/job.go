package marketplace

import (
	"time"

	"github.com/google/uuid"
)

// Job status values. Cancelled is declared for parity with clients that
// display it, but no operation currently produces it.
const (
	JobStatusOpen       = "OPEN"
	JobStatusInProgress = "IN_PROGRESS"
	JobStatusCompleted  = "COMPLETED"
	JobStatusCancelled  = "CANCELLED"
)

const (
	// PlatformFeePercent is withheld from the freelancer payout on completion.
	PlatformFeePercent = 5
	// MaxProposalsPerJob caps the proposal list of a single job.
	MaxProposalsPerJob = 10
)

type Job struct {
	ID                 uint64     `json:"id"`
	Poster             uuid.UUID  `json:"poster"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	BudgetCents        int64      `json:"budget_cents"`
	Status             string     `json:"status"`
	AssignedFreelancer *uuid.UUID `json:"assigned_freelancer,omitempty"`
	CustodyAccount     uuid.UUID  `json:"-"`
	CreatedAt          time.Time  `json:"created_at"`
}

// jobRegistry owns the job records. IDs are sequential and never reused;
// terminal jobs are retained for history. Not safe for concurrent use on its
// own: the Service serializes all access.
type jobRegistry struct {
	jobs   map[uint64]*Job
	byUser map[uuid.UUID][]uint64
	nextID uint64
}

func newJobRegistry() *jobRegistry {
	return &jobRegistry{
		jobs:   make(map[uint64]*Job),
		byUser: make(map[uuid.UUID][]uint64),
	}
}

// add allocates the next job ID, stores the job as OPEN and indexes it under
// the poster.
func (r *jobRegistry) add(poster uuid.UUID, title, description string, budgetCents int64, custody uuid.UUID, now time.Time) *Job {
	j := &Job{
		ID:             r.nextID,
		Poster:         poster,
		Title:          title,
		Description:    description,
		BudgetCents:    budgetCents,
		Status:         JobStatusOpen,
		CustodyAccount: custody,
		CreatedAt:      now,
	}
	r.nextID++
	r.jobs[j.ID] = j
	r.byUser[poster] = append(r.byUser[poster], j.ID)
	return j
}

func (r *jobRegistry) get(id uint64) (*Job, bool) {
	j, ok := r.jobs[id]
	return j, ok
}

func (r *jobRegistry) idsByPoster(poster uuid.UUID) []uint64 {
	ids := r.byUser[poster]
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}

// platformFee truncates toward zero, so the freelancer always receives at
// least 95% of the budget.
func platformFee(budgetCents int64) int64 {
	return budgetCents * PlatformFeePercent / 100
}
