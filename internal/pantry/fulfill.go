package pantry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tandem/internal/categorize"
	"tandem/internal/metrics"
	"tandem/internal/names"
	"tandem/internal/quantity"
)

// ReceiptArchiver stores a copy of each receipt. Optional.
type ReceiptArchiver interface {
	PutJSON(ctx context.Context, key string, v any) error
}

type FulfillmentConfig struct {
	DefaultExpiryDays int
	Fallback          categorize.Placement
	IdempotencyWindow time.Duration
}

func DefaultFulfillmentConfig() FulfillmentConfig {
	return FulfillmentConfig{
		DefaultExpiryDays: 7,
		Fallback:          categorize.Fallback,
		IdempotencyWindow: 24 * time.Hour,
	}
}

type FulfillmentService struct {
	store       Store
	categorizer categorize.Categorizer
	archiver    ReceiptArchiver
	cfg         FulfillmentConfig
	metrics     *metrics.Metrics
	log         *zap.Logger
	now         func() time.Time
}

func NewFulfillmentService(
	store Store,
	categorizer categorize.Categorizer,
	archiver ReceiptArchiver,
	cfg FulfillmentConfig,
	m *metrics.Metrics,
	log *zap.Logger,
) *FulfillmentService {
	if cfg.Fallback.Category == "" || cfg.Fallback.Location == "" {
		cfg.Fallback = categorize.Fallback
	}
	return &FulfillmentService{
		store:       store,
		categorizer: categorizer,
		archiver:    archiver,
		cfg:         cfg,
		metrics:     m,
		log:         log,
		now:         time.Now,
	}
}

// line is an order line after normalization and parsing.
type line struct {
	name string
	key  string
	qty  quantity.Quantity
}

type placement struct {
	categorize.Placement
	fallback bool
}

// Fulfill applies the needed lines of an order to the household pantry as
// one atomic unit: existing rows are incremented, missing rows created.
// A repeated idempotency key inside the window returns the first receipt
// without touching the pantry.
func (s *FulfillmentService) Fulfill(ctx context.Context, req FulfillRequest) (*Receipt, error) {
	var needed []OrderLine
	for _, item := range req.Items {
		if item.Needed {
			needed = append(needed, item)
		}
	}
	if len(needed) == 0 {
		s.metrics.OrderResult("empty")
		return nil, ErrEmptyOrder
	}

	now := s.now().UTC()
	lines := s.parseLines(req.HouseholdID, needed)

	// Categorize up front so the model is not called while the household is locked.
	placements := s.prefetchPlacements(ctx, req.HouseholdID, lines)

	receipt := &Receipt{
		OrderID:   uuid.NewString(),
		PartnerID: req.PartnerID,
		CreatedAt: now,
	}
	var actions []string

	err := s.store.WithinTx(ctx, req.HouseholdID, func(tx Tx) error {
		actions = actions[:0]
		receipt.ItemsAdded = 0

		if req.IdempotencyKey != "" {
			prev, err := tx.FindOrder(ctx, req.HouseholdID, req.IdempotencyKey, now.Add(-s.cfg.IdempotencyWindow))
			if err == nil {
				receipt.OrderID = prev.OrderID
				receipt.PartnerID = prev.PartnerID
				receipt.ItemsAdded = prev.ItemsAdded
				receipt.CreatedAt = prev.CreatedAt
				receipt.Replayed = true
				return nil
			}
			if !errors.Is(err, ErrNotFound) {
				return fmt.Errorf("check idempotency key: %w", err)
			}
		}

		for _, l := range lines {
			action, err := s.apply(ctx, tx, req, l, placements, now)
			if err != nil {
				return fmt.Errorf("apply %q: %w", l.name, err)
			}
			actions = append(actions, action)
			receipt.ItemsAdded++
		}

		if req.IdempotencyKey == "" {
			return nil
		}
		return tx.SaveOrder(ctx, OrderRecord{
			HouseholdID:    req.HouseholdID,
			IdempotencyKey: req.IdempotencyKey,
			OrderID:        receipt.OrderID,
			PartnerID:      receipt.PartnerID,
			ItemsAdded:     receipt.ItemsAdded,
			CreatedAt:      now,
		})
	})
	if err != nil {
		s.metrics.OrderResult("failed")
		s.log.Error("order fulfillment rolled back",
			zap.String("household_id", req.HouseholdID),
			zap.String("order_id", receipt.OrderID),
			zap.Int("lines", len(lines)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if receipt.Replayed {
		s.metrics.OrderResult("replayed")
		s.log.Info("order replayed",
			zap.String("household_id", req.HouseholdID),
			zap.String("order_id", receipt.OrderID),
		)
		return receipt, nil
	}

	s.metrics.OrderResult("created")
	for _, action := range actions {
		s.metrics.PantryLine(action)
	}
	s.log.Info("order fulfilled",
		zap.String("household_id", req.HouseholdID),
		zap.String("order_id", receipt.OrderID),
		zap.String("partner_id", receipt.PartnerID),
		zap.Int("items_added", receipt.ItemsAdded),
	)

	s.archive(ctx, req, receipt, lines)
	return receipt, nil
}

func (s *FulfillmentService) parseLines(householdID string, items []OrderLine) []line {
	out := make([]line, 0, len(items))
	for _, item := range items {
		name := names.Clean(item.Name)
		if name == "" {
			s.log.Debug("skipping order line without a name", zap.String("item_id", item.ID))
			s.metrics.PantryLine("skipped")
			continue
		}

		q := quantity.Parse(item.Quantity, item.Unit)
		if q.Defaulted() {
			s.log.Debug("quantity defaulted",
				zap.String("household_id", householdID),
				zap.String("name", name),
				zap.String("raw", item.Quantity),
				zap.Stringer("parsed", q),
			)
		}

		out = append(out, line{name: name, key: names.Key(name), qty: q})
	}
	return out
}

// prefetchPlacements categorizes names that have no pantry row yet. A
// failed lookup of existing rows only means more names get categorized.
func (s *FulfillmentService) prefetchPlacements(ctx context.Context, householdID string, lines []line) map[string]placement {
	existing := make(map[string]bool)
	items, err := s.store.List(ctx, householdID)
	if err != nil {
		s.log.Warn("pantry snapshot for categorization failed", zap.Error(err))
	}
	for _, item := range items {
		existing[names.Key(item.Name)] = true
	}

	out := make(map[string]placement)
	for _, l := range lines {
		if existing[l.key] {
			continue
		}
		if _, ok := out[l.key]; ok {
			continue
		}
		out[l.key] = s.resolve(ctx, l.name)
	}
	return out
}

func (s *FulfillmentService) resolve(ctx context.Context, name string) placement {
	p, err := categorize.Resolve(ctx, s.categorizer, name, s.cfg.Fallback)
	if err != nil {
		s.metrics.CategorizerFallback()
		s.log.Warn("categorizer failed, using fallback placement",
			zap.String("name", name),
			zap.String("category", p.Category),
			zap.String("location", p.Location),
			zap.Error(err),
		)
		return placement{Placement: p, fallback: true}
	}
	return placement{Placement: p}
}

func (s *FulfillmentService) apply(
	ctx context.Context,
	tx Tx,
	req FulfillRequest,
	l line,
	placements map[string]placement,
	now time.Time,
) (string, error) {

	expiry := dateOnly(now.AddDate(0, 0, s.cfg.DefaultExpiryDays))

	existing, err := tx.FindByKey(ctx, req.HouseholdID, l.key)
	if err == nil {
		err = tx.Increment(ctx, Increment{
			ID:           existing.ID,
			By:           l.qty.Amount,
			ActorID:      req.ActorID,
			ExpiryIfNull: expiry,
			Now:          now,
		})
		return "incremented", err
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	p, ok := placements[l.key]
	if !ok {
		// row disappeared between the snapshot and the lock
		p = s.resolve(ctx, l.name)
		placements[l.key] = p
	}

	source := SourceCategorizer
	if p.fallback {
		source = SourceFallback
	}

	item := Item{
		ID:             uuid.NewString(),
		HouseholdID:    req.HouseholdID,
		Name:           l.name,
		Quantity:       l.qty.Amount,
		Unit:           l.qty.Unit,
		ExpiryDate:     &expiry,
		Location:       p.Location,
		Category:       p.Category,
		CategorySource: source,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.ActorID != "" {
		actor := req.ActorID
		item.UpdatedByUserID = &actor
	}

	return "created", tx.Create(ctx, item)
}

type archivedReceipt struct {
	OrderID     string    `json:"order_id"`
	PartnerID   string    `json:"partner_id"`
	HouseholdID string    `json:"household_id"`
	ActorID     string    `json:"actor_id,omitempty"`
	ItemsAdded  int       `json:"items_added"`
	Lines       []string  `json:"lines"`
	CreatedAt   time.Time `json:"created_at"`
}

// archive is best effort: the order is already committed.
func (s *FulfillmentService) archive(ctx context.Context, req FulfillRequest, r *Receipt, lines []line) {
	if s.archiver == nil {
		return
	}

	doc := archivedReceipt{
		OrderID:     r.OrderID,
		PartnerID:   r.PartnerID,
		HouseholdID: req.HouseholdID,
		ActorID:     req.ActorID,
		ItemsAdded:  r.ItemsAdded,
		CreatedAt:   r.CreatedAt,
	}
	for _, l := range lines {
		doc.Lines = append(doc.Lines, l.name+": "+l.qty.String())
	}

	key := fmt.Sprintf("receipts/%s/%s.json", req.HouseholdID, r.OrderID)
	if err := s.archiver.PutJSON(context.WithoutCancel(ctx), key, doc); err != nil {
		s.log.Warn("receipt archive failed", zap.String("key", key), zap.Error(err))
	}
}
