package categorize

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memRepairStore struct {
	mu       sync.Mutex
	fallback map[string]Pending
	claimed  map[string]Pending
	placed   map[string]Placement
	claimErr error
}

func newMemRepairStore(rows ...Pending) *memRepairStore {
	s := &memRepairStore{
		fallback: make(map[string]Pending),
		claimed:  make(map[string]Pending),
		placed:   make(map[string]Placement),
	}
	for _, r := range rows {
		s.fallback[r.ID] = r
	}
	return s
}

func (s *memRepairStore) ClaimFallback(ctx context.Context, limit int) ([]Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimErr != nil {
		return nil, s.claimErr
	}

	var out []Pending
	for id, row := range s.fallback {
		if len(out) == limit {
			break
		}
		delete(s.fallback, id)
		s.claimed[id] = row
		out = append(out, row)
	}
	return out, nil
}

func (s *memRepairStore) SetPlacement(ctx context.Context, id string, p Placement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claimed, id)
	s.placed[id] = p
	return nil
}

func (s *memRepairStore) ReleaseFallback(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.claimed[id]
	delete(s.claimed, id)
	s.fallback[id] = row
	return nil
}

func TestWorkerProcessBatch(t *testing.T) {
	store := newMemRepairStore(
		Pending{ID: "1", Name: "Milk"},
		Pending{ID: "2", Name: "dish soap"},
		Pending{ID: "3", Name: "Rice"},
	)
	w := NewWorker(store, Keywords{}, 10, time.Minute, nil, zaptest.NewLogger(t))

	res, err := w.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Claimed: 3, Updated: 2, Failed: 1}, res)

	assert.Equal(t, Placement{"Dairy", "Fridge"}, store.placed["1"])
	assert.Equal(t, Placement{"Grains", "Pantry"}, store.placed["3"])
	assert.Contains(t, store.fallback, "2", "unplaced rows return to the queue")
	assert.Empty(t, store.claimed)
}

func TestWorkerBatchLimit(t *testing.T) {
	store := newMemRepairStore(Pending{ID: "1", Name: "Milk"}, Pending{ID: "2", Name: "Rice"})
	w := NewWorker(store, Keywords{}, 1, time.Minute, nil, zaptest.NewLogger(t))

	res, err := w.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Claimed)
}

func TestWorkerClaimError(t *testing.T) {
	store := newMemRepairStore()
	store.claimErr = errors.New("db down")
	w := NewWorker(store, Keywords{}, 1, time.Minute, nil, zaptest.NewLogger(t))

	_, err := w.ProcessBatch(context.Background())
	assert.Error(t, err)
}

func TestWorkerRunStopsOnCancel(t *testing.T) {
	store := newMemRepairStore(Pending{ID: "1", Name: "Milk"})
	w := NewWorker(store, Keywords{}, 10, 5*time.Millisecond, nil, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		_, ok := store.placed["1"]
		return ok
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
