package quantity

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultUnit = "pcs"

var (
	// DefaultAmount is used when the text carries no number at all.
	DefaultAmount = decimal.NewFromInt(1)

	// MinAmount is the floor for any matched number.
	MinAmount = decimal.RequireFromString("0.01")
)

// numberPattern matches an optionally signed integer or decimal, with or
// without a leading zero ("2", "1.5", ".5", "-2"). Fractions such as "1/2"
// are not numbers here: only the "1" is taken.
var numberPattern = regexp.MustCompile(`-?(?:\d+(?:\.\d+)?|\.\d+)`)

// Quantity is a parsed "<number> <unit>" pair.
// The flags record which parts were substituted with defaults.
type Quantity struct {
	Amount          decimal.Decimal
	Unit            string
	AmountDefaulted bool
	UnitDefaulted   bool
}

// Defaulted reports whether any part of the text fell back to a default.
func (q Quantity) Defaulted() bool {
	return q.AmountDefaulted || q.UnitDefaulted
}

func (q Quantity) String() string {
	return Format(q.Amount, q.Unit)
}

// Parse never fails: missing or unusable parts are replaced by defaults.
func Parse(raw string, fallbackUnit string) Quantity {
	q := Quantity{}

	amount, rest, ok := split(raw)
	if ok {
		if amount.LessThan(MinAmount) {
			amount = MinAmount
		}
		q.Amount = amount
	} else {
		q.Amount = DefaultAmount
		q.AmountDefaulted = true
	}

	q.Unit = rest
	if q.Unit == "" {
		q.UnitDefaulted = true
		q.Unit = strings.TrimSpace(fallbackUnit)
		if q.Unit == "" {
			q.Unit = DefaultUnit
		}
	}

	return q
}

// ParseAmount returns the first number in raw without clamping (it may be
// zero or negative), the trimmed text after it, and whether a number was
// found at all.
func ParseAmount(raw string) (decimal.Decimal, string, bool) {
	return split(raw)
}

func split(raw string) (decimal.Decimal, string, bool) {
	loc := numberPattern.FindStringIndex(raw)
	if loc == nil {
		return decimal.Zero, "", false
	}

	amount, err := decimal.NewFromString(raw[loc[0]:loc[1]])
	if err != nil {
		return decimal.Zero, "", false
	}

	return amount, strings.TrimSpace(raw[loc[1]:]), true
}

// Format renders an amount and unit the way quantity text is written
// everywhere else ("1.5 kg", "12 pieces").
func Format(amount decimal.Decimal, unit string) string {
	text := amount.String()
	if unit == "" {
		return text
	}
	return text + " " + unit
}

// SameUnit reports whether two unit tokens may be summed or compared.
// An empty unit is compatible with anything.
func SameUnit(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return true
	}
	return a == b
}
