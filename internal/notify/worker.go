package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"

	"github.com/Adamsbite/XionXWork/internal/marketplace"
)

// DeliverEventArgs carries one marketplace event to the indexer webhook.
type DeliverEventArgs struct {
	Event marketplace.Event `json:"event"`
}

func (DeliverEventArgs) Kind() string { return "deliver_event" }

// DeliverEventWorker POSTs the event JSON to the configured indexer webhook.
// Non-2xx responses and network errors are returned so River retries.
type DeliverEventWorker struct {
	river.WorkerDefaults[DeliverEventArgs]
	webhookURL string
	httpClient *http.Client
}

func NewDeliverEventWorker(webhookURL string) *DeliverEventWorker {
	return &DeliverEventWorker{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (w *DeliverEventWorker) Work(ctx context.Context, job *river.Job[DeliverEventArgs]) error {
	body, err := json.Marshal(job.Args.Event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver event to indexer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("indexer returned status %d", resp.StatusCode)
	}
	return nil
}

// RiverSink enqueues marketplace events as deliver_event jobs. Delivery is
// best-effort: an enqueue failure is logged, never surfaced to the caller.
type RiverSink struct {
	Client *river.Client[pgx.Tx]
	Log    *slog.Logger
}

var _ marketplace.EventSink = (*RiverSink)(nil)

func (s *RiverSink) Publish(ctx context.Context, e marketplace.Event) {
	if _, err := s.Client.Insert(ctx, DeliverEventArgs{Event: e}, nil); err != nil {
		log := s.Log
		if log == nil {
			log = slog.Default()
		}
		log.Error("enqueue event delivery failed", "kind", e.Kind, "job_id", e.JobID, "error", err)
	}
}
