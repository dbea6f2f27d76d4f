package categorize

import (
	"context"
	"errors"
	"strings"
)

// Placement is where an item belongs: a grocery category and a storage location.
type Placement struct {
	Category string `json:"category"`
	Location string `json:"location"`
}

// Fallback is used whenever the categorizer cannot answer.
var Fallback = Placement{Category: "Other", Location: "Pantry"}

var (
	Categories = []string{
		"Produce", "Dairy", "Meat", "Seafood", "Bakery", "Grains",
		"Canned Goods", "Spices", "Beverages", "Snacks", "Frozen", "Other",
	}
	Locations = []string{"Pantry", "Fridge", "Freezer"}
)

var ErrUnknownPlacement = errors.New("placement outside allowed values")

type Categorizer interface {
	Categorize(ctx context.Context, itemName string) (Placement, error)
}

// Func adapts a plain function to Categorizer.
type Func func(ctx context.Context, itemName string) (Placement, error)

func (f Func) Categorize(ctx context.Context, itemName string) (Placement, error) {
	return f(ctx, itemName)
}

// Resolve always returns a usable placement. A non-nil error means the
// fallback was substituted and the caller should record that.
func Resolve(ctx context.Context, c Categorizer, itemName string, fallback Placement) (Placement, error) {
	if c == nil {
		return fallback, errors.New("no categorizer configured")
	}

	p, err := c.Categorize(ctx, itemName)
	if err != nil {
		return fallback, err
	}
	if p.Category == "" || p.Location == "" {
		return fallback, ErrUnknownPlacement
	}
	return p, nil
}

// canonical maps a model answer onto the allowed spelling, case-insensitively.
func canonical(value string, allowed []string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, a := range allowed {
		if strings.EqualFold(a, value) {
			return a, true
		}
	}
	return "", false
}
