package marketplace

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Event kinds emitted on successful mutations, consumed by external indexers
// and UIs.
const (
	EventJobPosted         = "job_posted"
	EventProposalSubmitted = "proposal_submitted"
	EventProposalAccepted  = "proposal_accepted"
	EventJobCompleted      = "job_completed"
	EventFundReleased      = "fund_released"
)

type Event struct {
	Kind        string     `json:"kind"`
	JobID       uint64     `json:"job_id"`
	Account     uuid.UUID  `json:"account"`
	Freelancer  *uuid.UUID `json:"freelancer,omitempty"`
	AmountCents int64      `json:"amount_cents,omitempty"`
}

// EventSink receives events after the originating mutation has committed.
// Delivery is best-effort; sinks must not call back into the Service.
type EventSink interface {
	Publish(ctx context.Context, e Event)
}

// LogSink writes events to the structured log. Used when no queue-backed sink
// is configured.
type LogSink struct {
	Log *slog.Logger
}

func (s *LogSink) Publish(_ context.Context, e Event) {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("marketplace event", "kind", e.Kind, "job_id", e.JobID, "account", e.Account, "amount_cents", e.AmountCents)
}
