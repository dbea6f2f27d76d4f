package pantry

import (
	"context"
	"sort"
	"sync"
	"time"

	"tandem/internal/categorize"
	"tandem/internal/names"
)

type orderKey struct {
	householdID string
	key         string
}

type memoryState struct {
	items  map[string]Item
	orders map[orderKey]OrderRecord
}

func (s memoryState) clone() memoryState {
	c := memoryState{
		items:  make(map[string]Item, len(s.items)),
		orders: make(map[orderKey]OrderRecord, len(s.orders)),
	}
	for id, item := range s.items {
		c.items[id] = item
	}
	for k, rec := range s.orders {
		c.orders[k] = rec
	}
	return c
}

// InMemoryStore keeps everything in maps. A unit of work runs against a
// copy of the state under the store lock and is swapped in on success.
type InMemoryStore struct {
	mu    sync.Mutex
	state memoryState
	now   func() time.Time
}

var _ Store = (*InMemoryStore)(nil)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		state: memoryState{
			items:  make(map[string]Item),
			orders: make(map[orderKey]OrderRecord),
		},
		now: time.Now,
	}
}

// Put inserts or replaces a row directly, for seeding.
func (s *InMemoryStore) Put(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.items[item.ID] = item
}

func (s *InMemoryStore) WithinTx(ctx context.Context, householdID string, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.state.clone()
	if err := fn(&memoryTx{state: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.state = work
	return nil
}

func (s *InMemoryStore) List(ctx context.Context, householdID string) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Item
	for _, item := range s.state.items {
		if item.HouseholdID == householdID {
			out = append(out, item)
		}
	}
	sortItems(out)
	return out, nil
}

func (s *InMemoryStore) ClaimFallback(ctx context.Context, limit int) ([]categorize.Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	var candidates []Item
	for _, item := range s.state.items {
		if claimable(item, now) {
			candidates = append(candidates, item)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]categorize.Pending, 0, len(candidates))
	for _, item := range candidates {
		item.CategorySource = SourceRepairing
		item.UpdatedAt = now
		s.state.items[item.ID] = item
		out = append(out, categorize.Pending{ID: item.ID, HouseholdID: item.HouseholdID, Name: item.Name})
	}
	return out, nil
}

func (s *InMemoryStore) SetPlacement(ctx context.Context, id string, p categorize.Placement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.state.items[id]
	if !ok {
		return ErrNotFound
	}
	if item.CategorySource != SourceRepairing {
		return nil
	}
	item.Category = p.Category
	item.Location = p.Location
	item.CategorySource = SourceCategorizer
	item.UpdatedAt = s.now().UTC()
	s.state.items[id] = item
	return nil
}

func (s *InMemoryStore) ReleaseFallback(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.state.items[id]
	if !ok {
		return ErrNotFound
	}
	if item.CategorySource == SourceRepairing {
		item.CategorySource = SourceFallback
		s.state.items[id] = item
	}
	return nil
}

func claimable(item Item, now time.Time) bool {
	switch item.CategorySource {
	case SourceFallback:
		return true
	case SourceRepairing:
		return item.UpdatedAt.Before(now.Add(-staleClaim))
	}
	return false
}

type memoryTx struct {
	state memoryState
}

func (tx *memoryTx) FindByKey(ctx context.Context, householdID, key string) (*Item, error) {
	var found *Item
	for _, item := range tx.state.items {
		if item.HouseholdID != householdID || names.Key(item.Name) != key {
			continue
		}
		if found == nil || item.CreatedAt.Before(found.CreatedAt) {
			item := item
			found = &item
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (tx *memoryTx) Increment(ctx context.Context, inc Increment) error {
	item, ok := tx.state.items[inc.ID]
	if !ok {
		return ErrNotFound
	}

	item.Quantity = item.Quantity.Add(inc.By)
	if inc.ActorID != "" {
		actor := inc.ActorID
		item.UpdatedByUserID = &actor
	}
	if item.ExpiryDate == nil {
		expiry := dateOnly(inc.ExpiryIfNull)
		item.ExpiryDate = &expiry
	}
	item.UpdatedAt = inc.Now
	tx.state.items[item.ID] = item
	return nil
}

func (tx *memoryTx) Create(ctx context.Context, item Item) error {
	tx.state.items[item.ID] = item
	return nil
}

func (tx *memoryTx) FindOrder(ctx context.Context, householdID, key string, since time.Time) (*OrderRecord, error) {
	rec, ok := tx.state.orders[orderKey{householdID, key}]
	if !ok || rec.CreatedAt.Before(since) {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (tx *memoryTx) SaveOrder(ctx context.Context, rec OrderRecord) error {
	tx.state.orders[orderKey{rec.HouseholdID, rec.IdempotencyKey}] = rec
	return nil
}

func sortItems(items []Item) {
	sort.Slice(items, func(i, j int) bool {
		ki, kj := names.Key(items[i].Name), names.Key(items[j].Name)
		if ki != kj {
			return ki < kj
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
