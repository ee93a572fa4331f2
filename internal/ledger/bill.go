package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Category says which side of the ledger a bill sits on. Fixed at creation.
type Category string

const (
	CategorySale     Category = "sale"     // customer-facing
	CategoryPurchase Category = "purchase" // vendor-facing
)

// State is a bill's lifecycle state. The only legal transition is
// staging -> final; final is terminal.
type State string

const (
	StateStaging State = "staging"
	StateFinal   State = "final"
)

// BillRecord is the sole persisted entity: one logged sale or purchase.
type BillRecord struct {
	ID        string
	PartyName string
	Amount    decimal.Decimal
	Date      time.Time // calendar date, midnight UTC
	Items     []string
	ImageRef  string // source image reference, never used in computation
	CreatedAt time.Time
	Category  Category
	State     State
}

// Day truncates t to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey renders a date the way it is compared and stored: YYYY-MM-DD.
func DateKey(t time.Time) string { return t.UTC().Format(time.DateOnly) }

// SameDay reports whether two instants fall on the same calendar date.
func SameDay(a, b time.Time) bool { return DateKey(a) == DateKey(b) }

func (r BillRecord) clone() BillRecord {
	out := r
	if r.Items != nil {
		out.Items = append([]string(nil), r.Items...)
	}
	return out
}

// ValidationError reports a field that blocks a save. The draft stays around
// for the user to correct; nothing is created or mutated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Draft is a partial bill built up during the capture pipeline. It becomes a
// BillRecord only at the confirm boundary, after Validate passes.
type Draft struct {
	PartyName string
	Amount    decimal.Decimal
	Date      time.Time
	Items     []string
	ImageRef  string
}

// Validate checks the required fields once, at confirm time.
func (d Draft) Validate() error {
	if d.PartyName == "" {
		return &ValidationError{Field: "party name", Reason: "must not be empty"}
	}
	if d.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	return nil
}

// Record converts a validated draft into a staging record for the given
// category. Callers must have run Validate first.
func (d Draft) Record(id string, category Category, now time.Time) BillRecord {
	date := d.Date
	if date.IsZero() {
		date = Day(now)
	}
	return BillRecord{
		ID:        id,
		PartyName: d.PartyName,
		Amount:    d.Amount,
		Date:      Day(date),
		Items:     append([]string(nil), d.Items...),
		ImageRef:  d.ImageRef,
		CreatedAt: now,
		Category:  category,
		State:     StateStaging,
	}
}
