package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/merchanthub/merchantbook/internal/ledger"
	"github.com/merchanthub/merchantbook/internal/logger"
	"github.com/merchanthub/merchantbook/internal/storage"
)

func openTestAdapter(t *testing.T) *storage.SQLite {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, storage.Migrate(db))
	return storage.NewSQLite(db, logger.Nop())
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s := openTestAdapter(t)

	created := time.Date(2026, 8, 28, 10, 15, 0, 0, time.UTC)
	records := []ledger.BillRecord{
		{
			ID:        "a",
			PartyName: "Ravi Textiles",
			Amount:    decimal.RequireFromString("512.50"),
			Date:      time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
			Items:     []string{"Cotton Silk", "2m Fabric"},
			ImageRef:  "bills/ravi.jpg",
			CreatedAt: created,
			Category:  ledger.CategorySale,
			State:     ledger.StateStaging,
		},
		{
			ID:        "b",
			PartyName: "Vendor Co",
			Amount:    decimal.NewFromInt(120),
			Date:      time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC),
			CreatedAt: created.Add(time.Minute),
			Category:  ledger.CategoryPurchase,
			State:     ledger.StateFinal,
		},
	}

	require.NoError(t, s.SaveAll(ctx, records))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, records, got)

	// SaveAll is a full resync: the stored set is replaced, not appended to
	require.NoError(t, s.SaveAll(ctx, records[:1]))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "a", got[0].ID)

	// saveAll(load()) then load() preserves every field
	reloaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.SaveAll(ctx, reloaded))
	again, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, reloaded, again)
}

func TestSQLiteEmptyLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestAdapter(t)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, got)

	require.NoError(t, s.SaveAll(ctx, nil))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, storage.Migrate(db))
	require.NoError(t, storage.Migrate(db))
}
