package shopping

import (
	"sort"

	"github.com/shopspring/decimal"

	"tandem/internal/names"
	"tandem/internal/pantry"
	"tandem/internal/quantity"
)

// Item is a rendered shopping list entry.
type Item struct {
	ID       ItemID `json:"id"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit,omitempty"`
	Needed   bool   `json:"needed"`
	InPantry bool   `json:"inPantry"`
}

type stock struct {
	compatible decimal.Decimal
	any        bool
}

// Match subtracts pantry stock from demand. Fully covered and
// non-positive lines are dropped; the result is ordered by name key.
func Match(demand Demand, items []pantry.Item) []Item {
	byKey := make(map[string][]pantry.Item)
	for _, row := range items {
		key := names.Key(row.Name)
		byKey[key] = append(byKey[key], row)
	}

	keys := make([]string, 0, len(demand))
	for key := range demand {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]Item, 0, len(keys))
	for _, key := range keys {
		line := demand[key]
		if item, ok := classify(line, stockFor(line, byKey[key])); ok {
			out = append(out, item)
		}
	}
	return out
}

func stockFor(line DemandLine, rows []pantry.Item) stock {
	s := stock{compatible: decimal.Zero}
	for _, row := range rows {
		if !row.Quantity.IsPositive() {
			continue
		}
		s.any = true
		if quantity.SameUnit(row.Unit, line.Unit) {
			s.compatible = s.compatible.Add(row.Quantity)
		}
	}
	return s
}

func classify(line DemandLine, s stock) (Item, bool) {
	item := Item{
		ID:       idForKey(line.Key),
		Name:     line.Name,
		Quantity: line.Text,
		Unit:     line.Unit,
		Needed:   true,
	}

	if !line.Numeric {
		// no number means the default amount, the same one an order of
		// this line would add to the pantry
		if item.Quantity == "" {
			item.Quantity = quantity.Format(quantity.DefaultAmount, quantity.DefaultUnit)
		}
		if s.compatible.GreaterThanOrEqual(quantity.DefaultAmount) {
			return Item{}, false
		}
		item.InPantry = s.any
		return item, true
	}

	if !line.Amount.IsPositive() {
		return Item{}, false
	}

	switch {
	case s.compatible.GreaterThanOrEqual(line.Amount):
		return Item{}, false
	case s.compatible.IsPositive():
		item.InPantry = true
		item.Quantity = quantity.Format(line.Amount.Sub(s.compatible), line.Unit)
	case s.any:
		// stock exists but in a unit we cannot compare
		item.InPantry = true
	}

	return item, true
}
