package meals

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// --------------------------------------------------
// LIST SLOTS FOR A DATE RANGE
// --------------------------------------------------

func (r *PostgresRepository) ListSlots(
	ctx context.Context,
	householdID string,
	from, to time.Time,
) ([]MealSlot, error) {

	rows, err := r.db.Query(ctx, `
		SELECT id::text, household_id::text, slot_date, meal_type, recipe_id::text
		FROM meal_slots
		WHERE household_id = $1
		  AND slot_date >= $2
		  AND slot_date < $3
		ORDER BY slot_date, meal_type
	`, householdID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []MealSlot
	for rows.Next() {
		var s MealSlot
		if err := rows.Scan(&s.ID, &s.HouseholdID, &s.Date, &s.MealType, &s.RecipeID); err != nil {
			return nil, err
		}
		s.Date = WeekDay(s.Date)
		slots = append(slots, s)
	}

	return slots, rows.Err()
}

// --------------------------------------------------
// FETCH RECIPES BY ID
// --------------------------------------------------

func (r *PostgresRepository) GetRecipes(
	ctx context.Context,
	householdID string,
	ids []string,
) (map[string]Recipe, error) {

	out := make(map[string]Recipe, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT id::text, household_id::text, title, ingredients
		FROM recipes
		WHERE household_id = $1
		  AND id::text = ANY($2::text[])
	`, householdID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rec Recipe
		if err := rows.Scan(&rec.ID, &rec.HouseholdID, &rec.Title, &rec.Ingredients); err != nil {
			return nil, err
		}
		out[rec.ID] = rec
	}

	return out, rows.Err()
}
