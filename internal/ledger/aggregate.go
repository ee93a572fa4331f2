package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Weekdays labels the seven buckets, Monday first.
var Weekdays = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekStats is the weekly sales-vs-purchases series plus its totals.
//
// Records are bucketed by the weekday of their date regardless of which
// calendar week they fall in, so data from different weeks sharing a weekday
// is merged. That matches the shipped behavior; a true this-week report would
// need a week-boundary filter and is a stakeholder question, not a code fix.
type WeekStats struct {
	Sales     [7]decimal.Decimal
	Purchases [7]decimal.Decimal
}

// TotalSales sums the sales buckets.
func (w WeekStats) TotalSales() decimal.Decimal {
	total := decimal.Zero
	for _, v := range w.Sales {
		total = total.Add(v)
	}
	return total
}

// TotalPurchases sums the purchase buckets.
func (w WeekStats) TotalPurchases() decimal.Decimal {
	total := decimal.Zero
	for _, v := range w.Purchases {
		total = total.Add(v)
	}
	return total
}

// WeeklyStats recomputes the weekday series from the full record set. Pure
// function: no cached state, correctness follows from List reflecting the
// latest mutation.
func WeeklyStats(records []BillRecord) WeekStats {
	var w WeekStats
	for i := range w.Sales {
		w.Sales[i] = decimal.Zero
		w.Purchases[i] = decimal.Zero
	}
	for _, r := range records {
		idx := weekdayIndex(r.Date)
		if r.Category == CategorySale {
			w.Sales[idx] = w.Sales[idx].Add(r.Amount)
		} else {
			w.Purchases[idx] = w.Purchases[idx].Add(r.Amount)
		}
	}
	return w
}

// weekdayIndex maps a date to its Monday-first bucket.
func weekdayIndex(t time.Time) int {
	return (int(t.UTC().Weekday()) + 6) % 7
}

// DayRecords selects one category's records for one calendar date, ordered by
// creation time ascending. This is the daily log view.
func DayRecords(records []BillRecord, category Category, date time.Time) []BillRecord {
	var out []BillRecord
	for _, r := range records {
		if r.Category == category && SameDay(r.Date, date) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// DailyTotal sums amounts for one category and date, regardless of lifecycle
// state.
func DailyTotal(records []BillRecord, category Category, date time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if r.Category == category && SameDay(r.Date, date) {
			total = total.Add(r.Amount)
		}
	}
	return total
}

// PendingCount counts staging records for one category and date.
func PendingCount(records []BillRecord, category Category, date time.Time) int {
	n := 0
	for _, r := range records {
		if r.Category == category && SameDay(r.Date, date) && r.State == StateStaging {
			n++
		}
	}
	return n
}

// FinalCount counts finalized records across the whole set, shown on the
// overview footer.
func FinalCount(records []BillRecord) int {
	n := 0
	for _, r := range records {
		if r.State == StateFinal {
			n++
		}
	}
	return n
}
