package pantry

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Values for Item.CategorySource.
const (
	SourceManual      = "manual"
	SourceCategorizer = "categorizer"
	SourceFallback    = "fallback"
	SourceRepairing   = "repairing"
)

// staleClaim is how long a row may stay claimed by the repair worker
// before another worker may take it over.
const staleClaim = 10 * time.Minute

var (
	ErrEmptyOrder  = errors.New("no items selected")
	ErrPersistence = errors.New("could not complete order")
	ErrNotFound    = errors.New("pantry item not found")
)

// Item is one pantry row. Quantity only ever grows through fulfillment.
type Item struct {
	ID              string          `json:"id"`
	HouseholdID     string          `json:"household_id"`
	Name            string          `json:"name"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	Location        string          `json:"location"`
	Category        string          `json:"category"`
	CategorySource  string          `json:"category_source"`
	UpdatedByUserID *string         `json:"updated_by_user_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderLine is a shopping list entry as submitted by the client.
type OrderLine struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit,omitempty"`
	Needed   bool   `json:"needed"`
	InPantry bool   `json:"inPantry"`
}

type FulfillRequest struct {
	HouseholdID    string
	ActorID        string
	PartnerID      string
	IdempotencyKey string
	Items          []OrderLine
}

// Receipt is the response of a fulfillment. Replayed is set when the
// idempotency key had already been used inside the window.
type Receipt struct {
	OrderID    string    `json:"orderId"`
	PartnerID  string    `json:"partnerId"`
	ItemsAdded int       `json:"itemsAdded"`
	CreatedAt  time.Time `json:"-"`
	Replayed   bool      `json:"-"`
}

// Increment is an additive update of an existing row.
type Increment struct {
	ID           string
	By           decimal.Decimal
	ActorID      string
	ExpiryIfNull time.Time
	Now          time.Time
}

// OrderRecord is what is remembered per idempotency key.
type OrderRecord struct {
	HouseholdID    string
	IdempotencyKey string
	OrderID        string
	PartnerID      string
	ItemsAdded     int
	CreatedAt      time.Time
}
