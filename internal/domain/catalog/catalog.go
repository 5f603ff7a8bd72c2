// Package catalog holds the marketplace domain model: shops owning ordered
// product collections, the derived stock/statistics views computed over a
// fetched snapshot, and the mutation service in front of the repository.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors surfaced by repositories and the service.
var (
	ErrShopNotFound    = errors.New("shop not found")
	ErrProductNotFound = errors.New("product not found")

	// ErrShopNotEmpty is the delete precondition failure: a shop that still
	// owns products cannot be removed.
	ErrShopNotEmpty = errors.New("shop still owns products")
)

// Shop is a top-level catalog entity owning zero or more products.
// Products are kept in insertion order.
type Shop struct {
	ID          string
	Name        string
	Description string
	Logo        *string
	Products    []Product
}

// Product is a catalog item owned by exactly one shop. It has no independent
// lifecycle: it is created, mutated and deleted through the owning shop's
// product collection.
type Product struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	StockLevel  int
	Description string
	Image       *string
}

// LowStockThreshold is the fixed policy constant separating low stock from
// healthy stock.
const LowStockThreshold = 5

// StockStatus classifies a product's stock level.
type StockStatus string

const (
	OutOfStock StockStatus = "outOfStock"
	LowStock   StockStatus = "lowStock"
	InStock    StockStatus = "inStock"
)

// StatusOf maps a stock level to its status. The three buckets are mutually
// exclusive and jointly exhaustive over stockLevel >= 0.
func StatusOf(stockLevel int) StockStatus {
	switch {
	case stockLevel <= 0:
		return OutOfStock
	case stockLevel <= LowStockThreshold:
		return LowStock
	default:
		return InStock
	}
}

// ProductWithShop is a row of the flattened cross-shop product view.
type ProductWithShop struct {
	Product

	ShopID   string
	ShopName string
}

// DashboardMetrics are aggregate counts and sums over the whole catalog.
type DashboardMetrics struct {
	TotalShops    int
	TotalProducts int
	// TotalValue is the exact sum of price * stockLevel over all products.
	TotalValue decimal.Decimal
	TotalStock int
}

// StockDistribution counts products per stock status bucket.
type StockDistribution struct {
	InStock    int
	LowStock   int
	OutOfStock int
}

// ShopStockInfo summarizes one shop's inventory for ranking.
type ShopStockInfo struct {
	ID           string
	Name         string
	TotalStock   int
	ProductCount int
}

// ShopPatch is a partial shop update. Nil fields are left unchanged.
// Products, when set, replaces the whole product collection: product
// mutations arrive as a read-modify-write of the owning shop.
type ShopPatch struct {
	Name        *string
	Description *string
	Logo        **string
	Products    *[]Product
}

// Repository defines persistence operations for shops and their products.
type Repository interface {
	List(ctx context.Context) ([]Shop, error)
	GetByID(ctx context.Context, id string) (*Shop, error)
	Create(ctx context.Context, shop *Shop) error
	Update(ctx context.Context, id string, patch ShopPatch) (*Shop, error)
	// Delete removes a shop. It returns ErrShopNotEmpty when the shop still
	// owns at least one product, leaving the store unchanged.
	Delete(ctx context.Context, id string) error
}
