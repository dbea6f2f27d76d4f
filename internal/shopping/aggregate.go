package shopping

import (
	"github.com/shopspring/decimal"

	"tandem/internal/meals"
	"tandem/internal/names"
	"tandem/internal/quantity"
)

// DemandLine is the aggregated requirement for one ingredient.
type DemandLine struct {
	Key     string
	Name    string
	Amount  decimal.Decimal
	Unit    string
	Text    string
	Numeric bool
}

// Demand maps a name key to its aggregated line.
type Demand map[string]DemandLine

// RecipesForSlots resolves the recipes of the given slots in slot order.
// A recipe used by several slots is returned once; slots whose recipe is
// gone are skipped.
func RecipesForSlots(slots []meals.MealSlot, recipes map[string]meals.Recipe) []meals.Recipe {
	var out []meals.Recipe
	for _, id := range meals.RecipeIDs(slots) {
		recipe, ok := recipes[id]
		if !ok {
			continue
		}
		out = append(out, recipe)
	}
	return out
}

// Aggregate builds the week's demand from distinct recipes.
func Aggregate(recipes []meals.Recipe) Demand {
	demand := make(Demand)
	seen := make(map[string]bool)

	for _, recipe := range recipes {
		if recipe.ID != "" {
			if seen[recipe.ID] {
				continue
			}
			seen[recipe.ID] = true
		}

		for _, line := range splitEntries(recipe.Ingredients) {
			name, qty := splitLine(line)
			key := names.Key(name)
			if key == "" {
				continue
			}

			next := newDemandLine(key, names.Clean(name), qty)
			if prev, ok := demand[key]; ok {
				next = merge(prev, next)
			}
			demand[key] = next
		}
	}

	return demand
}

func newDemandLine(key, name, qty string) DemandLine {
	line := DemandLine{Key: key, Name: name, Text: qty}

	amount, unit, ok := quantity.ParseAmount(qty)
	if ok {
		// a negative amount asks for nothing; Match drops non-positive lines
		if amount.IsNegative() {
			amount = decimal.Zero
		}
		line.Amount = amount
		line.Unit = unit
		line.Numeric = true
		line.Text = quantity.Format(amount, unit)
	}
	return line
}

// merge sums compatible numeric lines; anything else keeps the newer text.
func merge(prev, next DemandLine) DemandLine {
	if !prev.Numeric || !next.Numeric || !quantity.SameUnit(prev.Unit, next.Unit) {
		next.Name = prev.Name
		return next
	}

	unit := prev.Unit
	if unit == "" {
		unit = next.Unit
	}

	sum := prev.Amount.Add(next.Amount)
	return DemandLine{
		Key:     prev.Key,
		Name:    prev.Name,
		Amount:  sum,
		Unit:    unit,
		Text:    quantity.Format(sum, unit),
		Numeric: true,
	}
}
