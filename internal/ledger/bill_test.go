package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/merchanthub/merchantbook/internal/ledger"
)

func TestDraftValidate(t *testing.T) {
	t.Parallel()

	ok := ledger.Draft{PartyName: "Ravi", Amount: decimal.NewFromInt(500)}
	require.NoError(t, ok.Validate())

	var verr *ledger.ValidationError

	noName := ledger.Draft{Amount: decimal.NewFromInt(500)}
	require.ErrorAs(t, noName.Validate(), &verr)
	require.Equal(t, "party name", verr.Field)

	negative := ledger.Draft{PartyName: "Ravi", Amount: decimal.NewFromInt(-1)}
	require.ErrorAs(t, negative.Validate(), &verr)
	require.Equal(t, "amount", verr.Field)

	zero := ledger.Draft{PartyName: "Ravi", Amount: decimal.Zero}
	require.NoError(t, zero.Validate(), "zero amount is allowed")
}

func TestDraftRecordDefaultsDateToToday(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)

	d := ledger.Draft{PartyName: "Ravi", Amount: decimal.NewFromInt(500)}
	r := d.Record("id-1", ledger.CategorySale, now)
	require.Equal(t, day(2026, 8, 28), r.Date)
	require.Equal(t, now, r.CreatedAt)
	require.Equal(t, ledger.CategorySale, r.Category)
	require.Equal(t, ledger.StateStaging, r.State)

	d.Date = day(2026, 8, 20)
	r = d.Record("id-2", ledger.CategoryPurchase, now)
	require.Equal(t, day(2026, 8, 20), r.Date)
}

func TestDayHelpers(t *testing.T) {
	t.Parallel()
	afternoon := time.Date(2026, 8, 28, 16, 45, 12, 0, time.UTC)
	require.Equal(t, day(2026, 8, 28), ledger.Day(afternoon))
	require.Equal(t, "2026-08-28", ledger.DateKey(afternoon))
	require.True(t, ledger.SameDay(afternoon, day(2026, 8, 28)))
	require.False(t, ledger.SameDay(afternoon, day(2026, 8, 29)))
}
