package marketplace

import (
	"time"

	"github.com/google/uuid"
)

// Proposal status values.
const (
	ProposalStatusPending  = "PENDING"
	ProposalStatusAccepted = "ACCEPTED"
	ProposalStatusRejected = "REJECTED"
)

type Proposal struct {
	JobID       uint64    `json:"job_id"`
	Freelancer  uuid.UUID `json:"freelancer"`
	BidCents    int64     `json:"bid_cents"`
	CoverLetter string    `json:"cover_letter"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// proposalRegistry stores each job's proposals in arrival order. Order is
// externally visible and is the tie-break when a freelancer submitted more
// than one proposal to the same job.
type proposalRegistry struct {
	byJob map[uint64][]*Proposal
}

func newProposalRegistry() *proposalRegistry {
	return &proposalRegistry{byJob: make(map[uint64][]*Proposal)}
}

func (r *proposalRegistry) count(jobID uint64) int {
	return len(r.byJob[jobID])
}

func (r *proposalRegistry) add(jobID uint64, freelancer uuid.UUID, bidCents int64, coverLetter string, now time.Time) *Proposal {
	p := &Proposal{
		JobID:       jobID,
		Freelancer:  freelancer,
		BidCents:    bidCents,
		CoverLetter: coverLetter,
		Status:      ProposalStatusPending,
		SubmittedAt: now,
	}
	r.byJob[jobID] = append(r.byJob[jobID], p)
	return p
}

// firstPending returns the earliest pending proposal from the given
// freelancer, or nil.
func (r *proposalRegistry) firstPending(jobID uint64, freelancer uuid.UUID) *Proposal {
	for _, p := range r.byJob[jobID] {
		if p.Freelancer == freelancer && p.Status == ProposalStatusPending {
			return p
		}
	}
	return nil
}

// list returns an insertion-ordered snapshot of the job's proposals.
func (r *proposalRegistry) list(jobID uint64) []Proposal {
	src := r.byJob[jobID]
	out := make([]Proposal, 0, len(src))
	for _, p := range src {
		out = append(out, *p)
	}
	return out
}
