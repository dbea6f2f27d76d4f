package shopping

// OptOuts holds the items explicitly marked "not needed". Items not in the
// set are needed by default; a default is never stored.
type OptOuts map[ItemID]struct{}

func (o OptOuts) Has(id ItemID) bool {
	_, ok := o[id]
	return ok
}

// Map renders the opt-outs in the wire form: id -> false.
func (o OptOuts) Map() map[string]bool {
	out := make(map[string]bool, len(o))
	for id := range o {
		out[string(id)] = false
	}
	return out
}

// OptOutsFromMap reads the wire override map. Only explicit false values
// are opt-outs; true entries are the default and are dropped.
func OptOutsFromMap(overrides map[string]bool) OptOuts {
	out := make(OptOuts)
	for id, needed := range overrides {
		if !needed {
			out[ItemID(id)] = struct{}{}
		}
	}
	return out
}

// Reconcile carries opt-outs across a recomputation. When the id set is
// unchanged the same map is returned untouched; otherwise only opt-outs
// for ids still present survive.
func Reconcile(previous []ItemID, optOuts OptOuts, current []ItemID) OptOuts {
	if sameIDs(previous, current) {
		return optOuts
	}

	present := make(map[ItemID]bool, len(current))
	for _, id := range current {
		present[id] = true
	}

	next := make(OptOuts)
	for id := range optOuts {
		if present[id] {
			next[id] = struct{}{}
		}
	}
	return next
}

// IDs returns the ids of items in list order.
func IDs(items []Item) []ItemID {
	ids := make([]ItemID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// Apply sets Needed on a copy of items according to the opt-outs.
func Apply(items []Item, optOuts OptOuts) []Item {
	out := make([]Item, len(items))
	for i, item := range items {
		item.Needed = !optOuts.Has(item.ID)
		out[i] = item
	}
	return out
}

func sameIDs(a, b []ItemID) bool {
	set := make(map[ItemID]bool, len(a))
	for _, id := range a {
		set[id] = true
	}

	other := make(map[ItemID]bool, len(b))
	for _, id := range b {
		if !set[id] {
			return false
		}
		other[id] = true
	}
	return len(other) == len(set)
}
