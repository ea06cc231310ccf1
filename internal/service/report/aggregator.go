// Package report accumulates per-item outcomes into a run summary.
package report

import (
	"context"
	"sync"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
)

// Aggregator is safe for concurrent use by pool workers.
type Aggregator struct {
	mu       sync.Mutex
	outcomes []models.Outcome
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

func (a *Aggregator) Add(outcomes ...models.Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.outcomes = append(a.outcomes, outcomes...)
}

// Outcomes returns a copy of everything recorded so far.
func (a *Aggregator) Outcomes() []models.Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]models.Outcome, len(a.outcomes))
	copy(out, a.outcomes)
	return out
}

func (a *Aggregator) Summary() models.Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	var s models.Summary
	for _, o := range a.outcomes {
		s.Total++
		s.Rows += o.Rows
		s.Bytes += o.Bytes

		switch o.Status {
		case models.StatusDone:
			s.Done++
		case models.StatusSkipped:
			s.Skipped++
			s.Issues = append(s.Issues, o)
		case models.StatusFailed:
			s.Failed++
			s.Issues = append(s.Issues, o)
		}
	}
	return s
}

// Log writes the summary as one line, plus one warning per skipped or failed item.
func (a *Aggregator) Log(ctx context.Context, log logger.Logger) models.Summary {
	s := a.Summary()

	for _, o := range s.Issues {
		log.Warn(ctx, "item not processed",
			"item", o.Item,
			"stage", o.Stage,
			"status", o.Status,
			"reason", o.Reason,
			"attempts", o.Attempts,
		)
	}

	log.Info(ctx, "run summary",
		"total", s.Total,
		"done", s.Done,
		"skipped", s.Skipped,
		"failed", s.Failed,
		"rows", s.Rows,
		"bytes", s.Bytes,
	)
	return s
}
