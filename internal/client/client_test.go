package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazarlab/marketplace-admin/internal/api"
	"github.com/bazarlab/marketplace-admin/internal/domain/catalog"
	"github.com/bazarlab/marketplace-admin/internal/repository"
)

// newStoreAndClient spins up the real API over the in-memory repository so
// client behavior is tested against actual handler semantics.
func newStoreAndClient(t *testing.T, shops ...catalog.Shop) *Client {
	t.Helper()

	store := repository.NewMemoryStore()
	for i := range shops {
		require.NoError(t, store.Create(context.Background(), &shops[i]))
	}

	h := api.NewHandler(api.HandlerConfig{}, catalog.NewService(store))
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func seedShop() catalog.Shop {
	return catalog.Shop{
		ID:          "s1",
		Name:        "Harbor Goods",
		Description: "waterfront",
		Products: []catalog.Product{
			{ID: "p1", Name: "Tote", Price: decimal.RequireFromString("24.50"), StockLevel: 12, Description: "bag"},
			{ID: "p2", Name: "Compass", Price: decimal.NewFromInt(89), StockLevel: 3, Description: "brass"},
		},
	}
}

func TestClientShopLifecycle(t *testing.T) {
	c := newStoreAndClient(t)
	ctx := context.Background()

	created, err := c.CreateShop(ctx, ShopFields{Name: "Pixel Parts", Description: "electronics"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Empty(t, created.Products)

	updated, err := c.UpdateShop(ctx, created.ID, ShopFields{Name: "Pixel Parts Co", Description: "electronics"})
	require.NoError(t, err)
	assert.Equal(t, "Pixel Parts Co", updated.Name)

	shops, err := c.ListShops(ctx)
	require.NoError(t, err)
	require.Len(t, shops, 1)

	require.NoError(t, c.DeleteShop(ctx, created.ID))

	_, err = c.GetShop(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientDeleteShop_Precondition(t *testing.T) {
	c := newStoreAndClient(t, seedShop())

	err := c.DeleteShop(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	// Store unchanged after the failed delete.
	shop, err := c.GetShop(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, shop.Products, 2)
}

func TestClientAddProduct_ReadModifyWrite(t *testing.T) {
	c := newStoreAndClient(t, seedShop())

	shop, err := c.AddProduct(context.Background(), "s1", Product{
		Name:        "Rope Coil",
		Price:       15.75,
		StockLevel:  0,
		Description: "rope",
	})
	require.NoError(t, err)
	require.Len(t, shop.Products, 3)
	assert.Equal(t, "p1", shop.Products[0].ID, "existing products keep their order")
	assert.NotEmpty(t, shop.Products[2].ID)
}

func TestClientUpdateProduct(t *testing.T) {
	c := newStoreAndClient(t, seedShop())

	shop, err := c.UpdateProduct(context.Background(), "s1", Product{
		ID:          "p2",
		Name:        "Brass Compass",
		Price:       79,
		StockLevel:  6,
		Description: "brass, polished",
	})
	require.NoError(t, err)
	require.Len(t, shop.Products, 2)
	assert.Equal(t, "Brass Compass", shop.Products[1].Name)
	assert.Equal(t, 6, shop.Products[1].StockLevel)

	_, err = c.UpdateProduct(context.Background(), "s1", Product{ID: "missing", Name: "x", Description: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientDeleteProduct(t *testing.T) {
	c := newStoreAndClient(t, seedShop())

	shop, err := c.DeleteProduct(context.Background(), "s1", "p1")
	require.NoError(t, err)
	require.Len(t, shop.Products, 1)
	assert.Equal(t, "p2", shop.Products[0].ID)

	_, err = c.DeleteProduct(context.Background(), "s1", "p1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuildProduct(t *testing.T) {
	img := "https://cdn.example.com/rope.jpg"
	p, err := BuildProduct(ProductForm{
		Name:        " Rope Coil ",
		Price:       "15.75",
		StockLevel:  "4",
		Description: "rope",
		Image:       &img,
	})
	require.NoError(t, err)
	assert.Equal(t, "Rope Coil", p.Name)
	assert.Equal(t, 15.75, p.Price)
	assert.Equal(t, 4, p.StockLevel)

	// Permissive numerics default to zero instead of rejecting.
	p, err = BuildProduct(ProductForm{Name: "x", Price: "oops", StockLevel: "-3", Description: "y"})
	require.NoError(t, err)
	assert.Zero(t, p.Price)
	assert.Zero(t, p.StockLevel)

	_, err = BuildProduct(ProductForm{Name: " ", Price: "1", StockLevel: "1", Description: "y"})
	var verr *catalog.ValidationError
	assert.True(t, errors.As(err, &verr))
}
