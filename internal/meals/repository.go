package meals

import (
	"context"
	"time"
)

// Repository is the read side of the meal plan. Recipe and slot editing
// belongs to the planner screens and writes the same tables.
type Repository interface {
	// Slots with from <= date < to
	ListSlots(ctx context.Context, householdID string, from, to time.Time) ([]MealSlot, error)

	// Missing ids are simply absent from the result
	GetRecipes(ctx context.Context, householdID string, ids []string) (map[string]Recipe, error)
}

// RecipeIDs returns the distinct recipe ids referenced by slots, in slot order.
func RecipeIDs(slots []MealSlot) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, slot := range slots {
		if slot.RecipeID == nil || *slot.RecipeID == "" {
			continue
		}
		if seen[*slot.RecipeID] {
			continue
		}
		seen[*slot.RecipeID] = true
		ids = append(ids, *slot.RecipeID)
	}
	return ids
}
