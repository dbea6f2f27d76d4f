package shopping

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tandem/internal/meals"
	"tandem/internal/metrics"
	"tandem/internal/pantry"
)

// PantrySource is the read side of the pantry the list is matched against.
type PantrySource interface {
	List(ctx context.Context, householdID string) ([]pantry.Item, error)
}

type Service struct {
	meals   meals.Repository
	pantry  PantrySource
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewService(mealRepo meals.Repository, pantrySource PantrySource, m *metrics.Metrics, log *zap.Logger) *Service {
	return &Service{
		meals:   mealRepo,
		pantry:  pantrySource,
		metrics: m,
		log:     log,
	}
}

// BuildList computes the shopping list for the week starting at weekStart.
// All items come back needed; opt-outs are applied by the caller.
func (s *Service) BuildList(ctx context.Context, householdID string, weekStart time.Time) ([]Item, error) {
	items, err := s.build(ctx, householdID, weekStart)
	s.metrics.ListBuilt(err == nil)
	if err != nil {
		s.log.Error("shopping list build failed",
			zap.String("household_id", householdID),
			zap.Time("week_start", weekStart),
			zap.Error(err),
		)
		return nil, err
	}
	return items, nil
}

func (s *Service) build(ctx context.Context, householdID string, weekStart time.Time) ([]Item, error) {
	from := meals.WeekStart(weekStart)
	to := from.AddDate(0, 0, 7)

	slots, err := s.meals.ListSlots(ctx, householdID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list meal slots: %w", err)
	}

	recipes, err := s.meals.GetRecipes(ctx, householdID, meals.RecipeIDs(slots))
	if err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}

	stock, err := s.pantry.List(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("load pantry: %w", err)
	}

	demand := Aggregate(RecipesForSlots(slots, recipes))
	items := Match(demand, stock)

	s.log.Debug("shopping list built",
		zap.String("household_id", householdID),
		zap.Int("slots", len(slots)),
		zap.Int("demand_lines", len(demand)),
		zap.Int("items", len(items)),
	)
	return items, nil
}

// ReconcileResult is the server-side equivalent of a Session recompute.
type ReconcileResult struct {
	Items   []Item
	OptOuts OptOuts
	IDs     []ItemID
}

// Reconcile rebuilds the list and carries the client's previous opt-outs
// over it, for clients that keep no session of their own.
func (s *Service) Reconcile(
	ctx context.Context,
	householdID string,
	weekStart time.Time,
	previousIDs []ItemID,
	overrides map[string]bool,
) (*ReconcileResult, error) {

	items, err := s.BuildList(ctx, householdID, weekStart)
	if err != nil {
		return nil, err
	}

	current := IDs(items)
	optOuts := Reconcile(previousIDs, OptOutsFromMap(overrides), current)

	return &ReconcileResult{
		Items:   Apply(items, optOuts),
		OptOuts: optOuts,
		IDs:     current,
	}, nil
}
