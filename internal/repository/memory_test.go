package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazarlab/marketplace-admin/internal/domain/catalog"
)

func seedStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &catalog.Shop{
		ID:   "s1",
		Name: "Harbor Goods",
		Products: []catalog.Product{
			{ID: "p1", Name: "Tote", Price: decimal.NewFromInt(24), StockLevel: 12, Description: "bag"},
		},
	}))
	require.NoError(t, store.Create(ctx, &catalog.Shop{
		ID:       "s2",
		Name:     "Pixel Parts",
		Products: []catalog.Product{},
	}))
	return store
}

func TestMemoryStore_ListPreservesInsertionOrder(t *testing.T) {
	store := seedStore(t)

	shops, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, shops, 2)
	assert.Equal(t, "s1", shops[0].ID)
	assert.Equal(t, "s2", shops[1].ID)
}

func TestMemoryStore_SnapshotDoesNotAliasStore(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	shops, err := store.List(ctx)
	require.NoError(t, err)
	shops[0].Name = "mutated"
	shops[0].Products[0].StockLevel = 999

	again, err := store.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Harbor Goods", again.Name)
	assert.Equal(t, 12, again.Products[0].StockLevel)
}

func TestMemoryStore_UpdateReplacesProducts(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	products := []catalog.Product{
		{ID: "p9", Name: "Compass", Price: decimal.NewFromInt(89), StockLevel: 3, Description: "brass"},
	}
	updated, err := store.Update(ctx, "s1", catalog.ShopPatch{Products: &products})
	require.NoError(t, err)
	require.Len(t, updated.Products, 1)
	assert.Equal(t, "p9", updated.Products[0].ID)
}

func TestMemoryStore_DeletePrecondition(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	err := store.Delete(ctx, "s1")
	assert.ErrorIs(t, err, catalog.ErrShopNotEmpty)

	// The failed delete changed nothing.
	shops, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, shops, 2)

	require.NoError(t, store.Delete(ctx, "s2"))
	_, err = store.GetByID(ctx, "s2")
	assert.ErrorIs(t, err, catalog.ErrShopNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "nope"), catalog.ErrShopNotFound)
}
