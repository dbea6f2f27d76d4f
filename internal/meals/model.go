package meals

import "time"

// Recipe is owned by a household. Each ingredient entry is free text and
// may hold several newline-separated lines.
type Recipe struct {
	ID          string   `json:"id"`
	HouseholdID string   `json:"household_id"`
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
}

// MealSlot assigns a recipe to one (date, meal type) of the plan.
// RecipeID is nil for an empty slot.
type MealSlot struct {
	ID          string    `json:"id"`
	HouseholdID string    `json:"household_id"`
	Date        time.Time `json:"date"`
	MealType    string    `json:"meal_type"`
	RecipeID    *string   `json:"recipe_id,omitempty"`
}

const dateLayout = "2006-01-02"

// WeekStart returns the Monday 00:00 UTC of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// ParseWeek reads a YYYY-MM-DD date and returns the start of its week.
// An empty string means the current week.
func ParseWeek(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return WeekStart(now), nil
	}
	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	return WeekStart(day), nil
}

// FormatDate renders a plan date the way the API and stores expect.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
