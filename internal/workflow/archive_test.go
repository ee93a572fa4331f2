package workflow_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/merchanthub/merchantbook/internal/ledger"
	"github.com/merchanthub/merchantbook/internal/logger"
	"github.com/merchanthub/merchantbook/internal/storage"
	"github.com/merchanthub/merchantbook/internal/workflow"
)

func seededArchive(t *testing.T) (*workflow.Archive, *ledger.Store) {
	t.Helper()
	day := func(d int) ledger.BillRecord {
		return ledger.BillRecord{
			ID:        string(rune('a' + d)),
			PartyName: []string{"Ravi Textiles", "Meena Fabrics", "Vendor Co"}[d%3],
			Amount:    decimal.NewFromInt(int64(100 * (d + 1))),
			Date:      now.AddDate(0, 0, -d),
			CreatedAt: now,
			Category:  []ledger.Category{ledger.CategorySale, ledger.CategoryPurchase}[d%2],
			State:     ledger.StateStaging,
		}
	}
	store := ledger.NewStore(context.Background(),
		storage.NewMemory([]ledger.BillRecord{day(0), day(1), day(2)}), logger.Nop())
	return workflow.NewArchive(store, "1234", logger.Nop()), store
}

func TestArchiveGate(t *testing.T) {
	t.Parallel()
	a, _ := seededArchive(t)

	_, err := a.Search(ledger.Filter{})
	require.ErrorIs(t, err, workflow.ErrLocked)
	require.ErrorIs(t, a.Edit(context.Background(), "a", ledger.Patch{}), workflow.ErrLocked)
	require.ErrorIs(t, a.Delete(context.Background(), "a"), workflow.ErrLocked)

	require.False(t, a.Unlock("0000"))
	require.False(t, a.Unlocked())

	require.True(t, a.Unlock("1234"))
	got, err := a.Search(ledger.Filter{})
	require.NoError(t, err)
	require.Len(t, got, 3, "both categories are browsable together")

	a.Lock()
	_, err = a.Search(ledger.Filter{})
	require.ErrorIs(t, err, workflow.ErrLocked)
}

func TestArchiveSearchAndEdit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a, store := seededArchive(t)
	require.True(t, a.Unlock("1234"))

	got, err := a.Search(ledger.Filter{Name: "meena"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	name := "Meena & Sons"
	require.NoError(t, a.Edit(ctx, got[0].ID, ledger.Patch{PartyName: &name}))
	edited, err := store.Get(got[0].ID)
	require.NoError(t, err)
	require.Equal(t, name, edited.PartyName)

	require.NoError(t, a.Delete(ctx, got[0].ID))
	require.Len(t, store.List(), 2)
	require.ErrorIs(t, a.Delete(ctx, got[0].ID), ledger.ErrNotFound)
}

func TestArchiveSuggest(t *testing.T) {
	t.Parallel()
	a, _ := seededArchive(t)
	require.Empty(t, a.Suggest("Ravi"), "no suggestions while locked")

	require.True(t, a.Unlock("1234"))
	require.Equal(t, "Ravi Textiles", a.Suggest("Ravi Textlies"))
	require.Empty(t, a.Suggest("Completely Unrelated Query"))
	require.Empty(t, a.Suggest(""))
}
