package shopping

import "github.com/google/uuid"

// Session is one user's planning view of the list. It is owned by a single
// goroutine and is not safe for concurrent use.
type Session struct {
	ids      []ItemID
	optOuts  OptOuts
	items    []Item
	orderKey string
}

func NewSession() *Session {
	return &Session{optOuts: make(OptOuts)}
}

// Recompute installs a freshly matched list, carrying opt-outs over, and
// returns the list with Needed applied.
func (s *Session) Recompute(items []Item) []Item {
	current := IDs(items)
	s.optOuts = Reconcile(s.ids, s.optOuts, current)
	s.ids = current
	s.items = Apply(items, s.optOuts)
	return s.Items()
}

// SetNeeded records (false) or clears (true) an opt-out. Ids not in the
// current list are ignored and reported as false.
func (s *Session) SetNeeded(id ItemID, needed bool) bool {
	found := false
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Needed = needed
			found = true
		}
	}
	if !found {
		return false
	}

	if needed {
		delete(s.optOuts, id)
	} else {
		s.optOuts[id] = struct{}{}
	}
	return true
}

func (s *Session) Items() []Item {
	return append([]Item(nil), s.items...)
}

// Selected returns the items currently marked needed.
func (s *Session) Selected() []Item {
	var out []Item
	for _, item := range s.items {
		if item.Needed {
			out = append(out, item)
		}
	}
	return out
}

func (s *Session) OptOuts() OptOuts {
	out := make(OptOuts, len(s.optOuts))
	for id := range s.optOuts {
		out[id] = struct{}{}
	}
	return out
}

// OrderKey is the idempotency key for the next order submission. It stays
// the same across retries until OrderCompleted is called.
func (s *Session) OrderKey() string {
	if s.orderKey == "" {
		s.orderKey = uuid.NewString()
	}
	return s.orderKey
}

// OrderCompleted releases the key after the server confirmed the order.
func (s *Session) OrderCompleted() {
	s.orderKey = ""
}
