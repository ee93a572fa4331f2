package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/merchanthub/merchantbook/internal/config"
	"github.com/merchanthub/merchantbook/internal/extract"
	"github.com/merchanthub/merchantbook/internal/ledger"
	"github.com/merchanthub/merchantbook/internal/logger"
	"github.com/merchanthub/merchantbook/internal/storage"
	"github.com/merchanthub/merchantbook/internal/workflow"
)

var testNow = time.Date(2026, 8, 28, 11, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) (*App, *ledger.Store) {
	t.Helper()
	ctx := context.Background()
	store := ledger.NewStore(ctx, storage.NewMemory(nil), logger.Nop())

	cfg := config.Config{}
	cfg.Archive.PIN = "1234"
	cfg.UI.CurrencySymbol = "₹"

	sales := workflow.NewDailyLog(store, extract.Unavailable{}, ledger.CategorySale, logger.Nop())
	purchases := workflow.NewDailyLog(store, extract.Unavailable{}, ledger.CategoryPurchase, logger.Nop())
	archive := workflow.NewArchive(store, cfg.Archive.PIN, logger.Nop())

	a := New(ctx, cfg, store, sales, purchases, archive, logger.Nop(), func() time.Time { return testNow })
	return a, store
}

func press(t *testing.T, a *App, keys ...string) {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ := a.Update(msg)
		require.Same(t, a, m)
	}
}

func typeText(t *testing.T, a *App, s string) {
	t.Helper()
	for _, r := range s {
		press(t, a, string(r))
	}
}

func seedRecord(t *testing.T, store *ledger.Store, id, party string, amount int64, cat ledger.Category, date time.Time) {
	t.Helper()
	err := store.Create(context.Background(), ledger.BillRecord{
		ID:        id,
		PartyName: party,
		Amount:    decimal.NewFromInt(amount),
		Date:      ledger.Day(date),
		CreatedAt: date,
		Category:  cat,
		State:     ledger.StateStaging,
	})
	require.NoError(t, err)
}

func TestMenuRendersAllEntries(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t)

	out := ansi.Strip(a.View())
	for _, label := range []string{"Customer Daily Log", "Vendor Ledger", "Edit Bills", "Fetch History", "Business Overview"} {
		require.Contains(t, out, label)
	}
}

func TestManualEntryCreatesStagingRecord(t *testing.T) {
	t.Parallel()
	a, store := newTestApp(t)

	press(t, a, "enter") // open daily sale log
	require.Equal(t, viewDailySale, a.active)

	press(t, a, "m")
	require.Equal(t, dailyDraft, a.daily.mode)

	typeText(t, a, "Sharma Fabrics")
	press(t, a, "tab")
	typeText(t, a, "2500")
	press(t, a, "enter")

	records := store.List()
	require.Len(t, records, 1)
	require.Equal(t, "Sharma Fabrics", records[0].PartyName)
	require.Equal(t, ledger.StateStaging, records[0].State)
	require.Equal(t, ledger.CategorySale, records[0].Category)
	require.True(t, decimal.NewFromInt(2500).Equal(records[0].Amount))

	out := ansi.Strip(a.View())
	require.Contains(t, out, "Sharma Fabrics")
	require.Contains(t, out, "PENDING")
}

func TestDailyFinalizeUpdatesRow(t *testing.T) {
	t.Parallel()
	a, store := newTestApp(t)
	seedRecord(t, store, "b1", "Ravi Textiles", 1800, ledger.CategorySale, testNow)

	a.openView(viewDailySale)
	press(t, a, "f")

	rec, err := store.Get("b1")
	require.NoError(t, err)
	require.Equal(t, ledger.StateFinal, rec.State)
	require.Contains(t, ansi.Strip(a.View()), "FINAL")
}

func TestDailyCursorClampsWhenDayRollsOver(t *testing.T) {
	t.Parallel()
	a, store := newTestApp(t)
	seedRecord(t, store, "b1", "Ravi Textiles", 500, ledger.CategorySale, testNow)
	seedRecord(t, store, "b2", "Sharma Fabrics", 300, ledger.CategorySale, testNow)

	a.openView(viewDailySale)
	press(t, a, "j")
	require.Equal(t, 1, a.daily.cursor)

	// midnight passes mid-session: today's set is suddenly empty
	a.clock = func() time.Time { return testNow.AddDate(0, 0, 1) }
	press(t, a, "f", "x")
	require.Equal(t, 0, a.daily.cursor)

	for _, id := range []string{"b1", "b2"} {
		rec, err := store.Get(id)
		require.NoError(t, err)
		require.Equal(t, ledger.StateStaging, rec.State)
	}
}

func TestArchiveGateHidesDataUntilUnlocked(t *testing.T) {
	t.Parallel()
	a, store := newTestApp(t)
	seedRecord(t, store, "b1", "Gupta Mills", 900, ledger.CategoryPurchase, testNow)

	a.openView(viewArchive)
	require.False(t, a.archive.Unlocked())

	typeText(t, a, "9999")
	press(t, a, "enter")
	require.Equal(t, archiveLocked, a.archiveV.mode)
	require.NotContains(t, ansi.Strip(a.View()), "Gupta Mills")

	typeText(t, a, "1234")
	press(t, a, "enter")
	require.Equal(t, archiveFilter, a.archiveV.mode)

	press(t, a, "enter") // empty filter matches everything
	require.Equal(t, archiveBrowse, a.archiveV.mode)
	require.Contains(t, ansi.Strip(a.View()), "Gupta Mills")
}

func TestArchiveGateRearmsOnReentry(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t)

	a.openView(viewArchive)
	typeText(t, a, "1234")
	press(t, a, "enter")
	require.True(t, a.archive.Unlocked())

	press(t, a, "esc") // back to menu
	a.openView(viewArchive)
	require.False(t, a.archive.Unlocked())
	require.Equal(t, archiveLocked, a.archiveV.mode)
}

func TestArchiveSuggestsClosestPartyName(t *testing.T) {
	t.Parallel()
	a, store := newTestApp(t)
	seedRecord(t, store, "b1", "Ravi Textiles", 1200, ledger.CategorySale, testNow)

	a.openView(viewArchive)
	typeText(t, a, "1234")
	press(t, a, "enter")

	press(t, a, "tab", "tab") // to the name field
	typeText(t, a, "Ravi Textlies")
	press(t, a, "enter")

	out := ansi.Strip(a.View())
	require.Contains(t, out, "No records match")
	require.Contains(t, out, "Did you mean Ravi Textiles?")
}

func TestOverviewShowsTotalsAndFinalCount(t *testing.T) {
	t.Parallel()
	a, store := newTestApp(t)
	seedRecord(t, store, "b1", "Sharma Fabrics", 2000, ledger.CategorySale, testNow)
	seedRecord(t, store, "b2", "Gupta Mills", 500, ledger.CategoryPurchase, testNow)
	require.NoError(t, store.SetFinal(context.Background(), "b1"))

	a.openView(viewOverview)
	out := ansi.Strip(a.View())
	require.Contains(t, out, "Total Sales")
	require.Contains(t, out, "₹2000")
	require.Contains(t, out, "Total Purchases")
	require.Contains(t, out, "₹500")
	require.Contains(t, out, "1 finalized of 2 records")
	require.Contains(t, out, strings.Repeat("█", barWidth)) // tallest bar at full width
}

func TestEditViewFiltersByDateAndName(t *testing.T) {
	t.Parallel()
	a, store := newTestApp(t)
	seedRecord(t, store, "b1", "Sharma Fabrics", 2000, ledger.CategorySale, testNow)
	seedRecord(t, store, "b2", "Gupta Mills", 500, ledger.CategoryPurchase, testNow)
	seedRecord(t, store, "b3", "Old Bill", 100, ledger.CategorySale, testNow.AddDate(0, 0, -3))

	a.openView(viewEdit)
	out := ansi.Strip(a.View())
	require.Contains(t, out, "Sharma Fabrics")
	require.Contains(t, out, "Gupta Mills")
	require.NotContains(t, out, "Old Bill")

	press(t, a, "/")
	typeText(t, a, "gupta")
	press(t, a, "enter")
	out = ansi.Strip(a.View())
	require.Contains(t, out, "Gupta Mills")
	require.NotContains(t, out, "Sharma Fabrics")
}

func TestScanWithoutAPIKeyFailsSoft(t *testing.T) {
	t.Parallel()
	a, store := newTestApp(t)

	a.openView(viewDailySale)
	press(t, a, "c")
	require.Equal(t, dailyCapture, a.daily.mode)

	typeText(t, a, "/tmp/nonexistent-bill.jpg")
	press(t, a, "enter")
	require.Equal(t, dailyWaiting, a.daily.mode)

	// run the returned command synchronously
	cmd := a.submitImage(a.sales, "/tmp/nonexistent-bill.jpg")
	msg := cmd()
	m, _ := a.Update(msg)
	require.Same(t, a, m)
	require.Equal(t, dailyBrowse, a.daily.mode)
	require.Contains(t, a.status, "could not read the bill")
	require.Empty(t, store.List())
}
