package categorize

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"tandem/internal/metrics"
)

// Pending is a pantry row that was stored with the fallback placement.
type Pending struct {
	ID          string
	HouseholdID string
	Name        string
}

// RepairStore is the slice of the pantry store the worker needs.
// ClaimFallback marks the returned rows as in progress so concurrent
// workers do not pick the same rows.
type RepairStore interface {
	ClaimFallback(ctx context.Context, limit int) ([]Pending, error)
	SetPlacement(ctx context.Context, id string, p Placement) error
	ReleaseFallback(ctx context.Context, id string) error
}

// Worker re-runs the categorizer for rows created while it was failing.
type Worker struct {
	store       RepairStore
	categorizer Categorizer
	batch       int
	interval    time.Duration
	metrics     *metrics.Metrics
	log         *zap.Logger
}

func NewWorker(
	store RepairStore,
	categorizer Categorizer,
	batch int,
	interval time.Duration,
	m *metrics.Metrics,
	log *zap.Logger,
) *Worker {
	if batch <= 0 {
		batch = 20
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Worker{
		store:       store,
		categorizer: categorizer,
		batch:       batch,
		interval:    interval,
		metrics:     m,
		log:         log,
	}
}

// BatchResult counts what one ProcessBatch did.
type BatchResult struct {
	Claimed int `json:"claimed"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// ProcessBatch claims up to one batch of fallback rows and tries to place
// each one. Rows the categorizer still cannot place go back to the queue.
func (w *Worker) ProcessBatch(ctx context.Context) (BatchResult, error) {
	var res BatchResult

	pending, err := w.store.ClaimFallback(ctx, w.batch)
	if err != nil {
		return res, err
	}
	res.Claimed = len(pending)

	for _, row := range pending {
		p, err := w.categorizer.Categorize(ctx, row.Name)
		if err == nil {
			err = w.store.SetPlacement(ctx, row.ID, p)
		}

		if err != nil {
			res.Failed++
			w.metrics.Recategorized(false)
			w.log.Warn("recategorize failed",
				zap.String("item_id", row.ID),
				zap.String("name", row.Name),
				zap.Error(err),
			)
			if relErr := w.store.ReleaseFallback(context.WithoutCancel(ctx), row.ID); relErr != nil {
				w.log.Error("release fallback row", zap.String("item_id", row.ID), zap.Error(relErr))
			}
			continue
		}

		res.Updated++
		w.metrics.Recategorized(true)
	}

	if res.Claimed > 0 {
		w.log.Info("recategorize batch done",
			zap.Int("claimed", res.Claimed),
			zap.Int("updated", res.Updated),
			zap.Int("failed", res.Failed),
		)
	}
	return res, nil
}

// Run processes a batch every interval until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("categorize worker started", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("categorize worker stopped")
			return nil
		case <-ticker.C:
			if _, err := w.ProcessBatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.log.Error("categorize batch", zap.Error(err))
			}
		}
	}
}
