package meals

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type InMemoryRepository struct {
	mu      sync.RWMutex
	recipes map[string]Recipe
	slots   map[string]MealSlot
}

var _ Repository = (*InMemoryRepository)(nil)

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		recipes: make(map[string]Recipe),
		slots:   make(map[string]MealSlot),
	}
}

// SaveRecipe inserts or replaces a recipe, assigning an id when empty.
func (r *InMemoryRepository) SaveRecipe(recipe Recipe) Recipe {
	r.mu.Lock()
	defer r.mu.Unlock()

	if recipe.ID == "" {
		recipe.ID = uuid.New().String()
	}
	recipe.Ingredients = append([]string(nil), recipe.Ingredients...)
	r.recipes[recipe.ID] = recipe
	return recipe
}

// DeleteRecipe removes the recipe but leaves slots pointing at it, the
// same dangling state a concurrent delete can produce.
func (r *InMemoryRepository) DeleteRecipe(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.recipes, id)
}

// SetSlot assigns recipeID to (date, mealType); an empty recipeID clears it.
func (r *InMemoryRepository) SetSlot(householdID string, date time.Time, mealType string, recipeID string) MealSlot {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := householdID + "|" + FormatDate(date) + "|" + mealType
	slot, ok := r.slots[key]
	if !ok {
		slot = MealSlot{
			ID:          uuid.New().String(),
			HouseholdID: householdID,
			Date:        WeekDay(date),
			MealType:    mealType,
		}
	}

	if recipeID == "" {
		slot.RecipeID = nil
	} else {
		id := recipeID
		slot.RecipeID = &id
	}

	r.slots[key] = slot
	return slot
}

func (r *InMemoryRepository) ListSlots(
	ctx context.Context,
	householdID string,
	from, to time.Time,
) ([]MealSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []MealSlot
	for _, slot := range r.slots {
		if slot.HouseholdID != householdID {
			continue
		}
		if slot.Date.Before(from) || !slot.Date.Before(to) {
			continue
		}
		out = append(out, slot)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].MealType < out[j].MealType
	})
	return out, nil
}

func (r *InMemoryRepository) GetRecipes(
	ctx context.Context,
	householdID string,
	ids []string,
) (map[string]Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Recipe, len(ids))
	for _, id := range ids {
		recipe, ok := r.recipes[id]
		if !ok || recipe.HouseholdID != householdID {
			continue
		}
		out[id] = recipe
	}
	return out, nil
}

// WeekDay truncates t to its UTC calendar day.
func WeekDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
