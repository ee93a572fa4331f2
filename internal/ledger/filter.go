package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Filter is the archive search predicate: a pure conjunction of an optional
// date range, a case-insensitive party-name substring, and an inclusive
// amount range. Zero fields match everything.
type Filter struct {
	From      *time.Time
	To        *time.Time
	Name      string
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// Match reports whether a record satisfies every predicate independently.
func (f Filter) Match(r BillRecord) bool {
	key := DateKey(r.Date)
	if f.From != nil && key < DateKey(*f.From) {
		return false
	}
	if f.To != nil && key > DateKey(*f.To) {
		return false
	}
	if f.Name != "" && !strings.Contains(strings.ToLower(r.PartyName), strings.ToLower(f.Name)) {
		return false
	}
	if f.MinAmount != nil && r.Amount.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && r.Amount.GreaterThan(*f.MaxAmount) {
		return false
	}
	return true
}

// Apply filters a record set, preserving order.
func (f Filter) Apply(records []BillRecord) []BillRecord {
	var out []BillRecord
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
