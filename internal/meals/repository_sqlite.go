package meals

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SQLiteRepository reads the plan from the local development store.
// Ingredients are stored as a JSON array of strings.
type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) ListSlots(
	ctx context.Context,
	householdID string,
	from, to time.Time,
) ([]MealSlot, error) {

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, household_id, slot_date, meal_type, recipe_id
		FROM meal_slots
		WHERE household_id = ?
		  AND slot_date >= ?
		  AND slot_date < ?
		ORDER BY slot_date, meal_type
	`, householdID, FormatDate(from), FormatDate(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []MealSlot
	for rows.Next() {
		var (
			s        MealSlot
			date     string
			recipeID sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.HouseholdID, &date, &s.MealType, &recipeID); err != nil {
			return nil, err
		}
		s.Date, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("slot %s: bad date %q: %w", s.ID, date, err)
		}
		if recipeID.Valid && recipeID.String != "" {
			id := recipeID.String
			s.RecipeID = &id
		}
		slots = append(slots, s)
	}

	return slots, rows.Err()
}

func (r *SQLiteRepository) GetRecipes(
	ctx context.Context,
	householdID string,
	ids []string,
) (map[string]Recipe, error) {

	out := make(map[string]Recipe, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, householdID)
	for _, id := range ids {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, household_id, title, ingredients
		FROM recipes
		WHERE household_id = ?
		  AND id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec Recipe
			raw string
		)
		if err := rows.Scan(&rec.ID, &rec.HouseholdID, &rec.Title, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &rec.Ingredients); err != nil {
			return nil, fmt.Errorf("recipe %s: decode ingredients: %w", rec.ID, err)
		}
		out[rec.ID] = rec
	}

	return out, rows.Err()
}

// SaveRecipe upserts a recipe. Used by the CLI seed command and tests.
func (r *SQLiteRepository) SaveRecipe(ctx context.Context, rec Recipe) error {
	raw, err := json.Marshal(rec.Ingredients)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO recipes (id, household_id, title, ingredients)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			ingredients = excluded.ingredients
	`, rec.ID, rec.HouseholdID, rec.Title, string(raw))
	return err
}

// SetSlot assigns a recipe to (date, meal type). An empty recipeID clears the slot.
func (r *SQLiteRepository) SetSlot(ctx context.Context, slot MealSlot) error {
	var recipeID any
	if slot.RecipeID != nil && *slot.RecipeID != "" {
		recipeID = *slot.RecipeID
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO meal_slots (id, household_id, slot_date, meal_type, recipe_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (household_id, slot_date, meal_type) DO UPDATE SET
			recipe_id = excluded.recipe_id
	`, slot.ID, slot.HouseholdID, FormatDate(slot.Date), slot.MealType, recipeID)
	return err
}
