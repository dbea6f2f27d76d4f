package pantry

import (
	"context"
	"time"

	"tandem/internal/categorize"
)

// Store persists pantry rows and order records.
//
// WithinTx runs fn as one atomic unit of work. Units of work for the same
// household never interleave, so read-then-increment cannot lose updates.
// If fn returns an error nothing it did is kept.
type Store interface {
	WithinTx(ctx context.Context, householdID string, fn func(tx Tx) error) error
	List(ctx context.Context, householdID string) ([]Item, error)

	categorize.RepairStore
}

// Tx is the view of the store inside one unit of work.
type Tx interface {
	// FindByKey returns the oldest row whose normalized name equals key,
	// or ErrNotFound.
	FindByKey(ctx context.Context, householdID, key string) (*Item, error)
	Increment(ctx context.Context, inc Increment) error
	Create(ctx context.Context, item Item) error

	// FindOrder returns the order recorded for key at or after since, or ErrNotFound.
	FindOrder(ctx context.Context, householdID, key string, since time.Time) (*OrderRecord, error)
	// SaveOrder records the key, replacing an expired record for the same key.
	SaveOrder(ctx context.Context, rec OrderRecord) error
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
