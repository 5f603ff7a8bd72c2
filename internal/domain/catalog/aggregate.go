package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the ordering of the flattened product view.
type SortKey string

const (
	// SortByName orders by product name, locale-aware, case-insensitive,
	// ascending.
	SortByName SortKey = "name"
	// SortByPrice orders by price, ascending.
	SortByPrice SortKey = "price"
	// SortByStock orders by stock level, DESCENDING: highest stock first.
	// The asymmetry with name/price is carried over from observed behavior.
	SortByStock SortKey = "stock"
)

// StockFilter narrows the product view to one stock status bucket.
type StockFilter string

const (
	StockAll        StockFilter = "all"
	StockInStock    StockFilter = "inStock"
	StockLowStock   StockFilter = "lowStock"
	StockOutOfStock StockFilter = "outOfStock"
)

// ShopAll matches products of every shop.
const ShopAll = "all"

// Criteria are the conjunctive predicates of FilterProducts. The zero value
// (empty search, empty or "all" shop, empty or "all" stock) is the identity.
type Criteria struct {
	// Search is matched case-insensitively as a substring of the product
	// name, product description, or owning shop name.
	Search string
	// ShopID restricts to one shop; empty or ShopAll matches all shops.
	ShopID string
	// Stock restricts to one stock bucket; empty or StockAll matches all.
	Stock StockFilter
}

// FlattenProducts turns the nested shops snapshot into a flat product view,
// preserving shop order and product order within each shop. Absent product
// collections are treated as empty. The input is never mutated.
func FlattenProducts(shops []Shop) []ProductWithShop {
	var out []ProductWithShop
	for _, s := range shops {
		for _, p := range s.Products {
			out = append(out, ProductWithShop{
				Product:  p,
				ShopID:   s.ID,
				ShopName: s.Name,
			})
		}
	}
	return out
}

func (c Criteria) matches(row ProductWithShop) bool {
	if c.Search != "" {
		needle := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(row.Name), needle) &&
			!strings.Contains(strings.ToLower(row.Description), needle) &&
			!strings.Contains(strings.ToLower(row.ShopName), needle) {
			return false
		}
	}
	if c.ShopID != "" && c.ShopID != ShopAll && c.ShopID != row.ShopID {
		return false
	}
	if c.Stock != "" && c.Stock != StockAll && StockFilter(StatusOf(row.StockLevel)) != c.Stock {
		return false
	}
	return true
}

// FilterProducts applies the criteria conjunctively, preserving order.
func FilterProducts(rows []ProductWithShop, c Criteria) []ProductWithShop {
	out := make([]ProductWithShop, 0, len(rows))
	for _, row := range rows {
		if c.matches(row) {
			out = append(out, row)
		}
	}
	return out
}

// SortProducts returns a new slice ordered by the given key. Ties preserve
// the original relative order. An unknown key returns a copy in input order.
func SortProducts(rows []ProductWithShop, key SortKey) []ProductWithShop {
	out := make([]ProductWithShop, len(rows))
	copy(out, rows)

	switch key {
	case SortByName:
		// Collators keep internal buffers, so build one per call rather
		// than sharing across goroutines.
		col := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(out[i].Name, out[j].Name) < 0
		})
	case SortByPrice:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Price.LessThan(out[j].Price)
		})
	case SortByStock:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].StockLevel > out[j].StockLevel
		})
	}
	return out
}

// Paginate returns the 1-indexed page of the given size, clipped to the
// sequence bounds. Pages past the end are empty, never an error.
func Paginate(rows []ProductWithShop, pageSize, page int) []ProductWithShop {
	if pageSize <= 0 || page <= 0 {
		return nil
	}
	start := (page - 1) * pageSize
	if start >= len(rows) {
		return nil
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// PageCount is ceil(total/pageSize), with a minimum of 1 so an empty list
// still renders as page 1 of 1.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	n := (total + pageSize - 1) / pageSize
	if n < 1 {
		return 1
	}
	return n
}

// ComputeDashboardMetrics aggregates counts and the exact inventory value
// (sum of price * stockLevel, no intermediate rounding) over all shops.
func ComputeDashboardMetrics(shops []Shop) DashboardMetrics {
	m := DashboardMetrics{
		TotalShops: len(shops),
		TotalValue: decimal.Zero,
	}
	for _, s := range shops {
		for _, p := range s.Products {
			m.TotalProducts++
			m.TotalStock += p.StockLevel
			m.TotalValue = m.TotalValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.StockLevel))))
		}
	}
	return m
}

// ComputeStockDistribution buckets every product of every shop by its stock
// status. Bucket counts always sum to the flattened product count.
func ComputeStockDistribution(shops []Shop) StockDistribution {
	var d StockDistribution
	for _, s := range shops {
		for _, p := range s.Products {
			switch StatusOf(p.StockLevel) {
			case OutOfStock:
				d.OutOfStock++
			case LowStock:
				d.LowStock++
			case InStock:
				d.InStock++
			}
		}
	}
	return d
}

// DefaultTopShopsLimit bounds TopShopsByStock when callers pass no limit.
const DefaultTopShopsLimit = 5

// TopShopsByStock ranks shops by total stock, descending, ties preserving
// input order, and returns at most limit entries.
func TopShopsByStock(shops []Shop, limit int) []ShopStockInfo {
	if limit <= 0 {
		limit = DefaultTopShopsLimit
	}

	infos := make([]ShopStockInfo, len(shops))
	for i, s := range shops {
		info := ShopStockInfo{
			ID:           s.ID,
			Name:         s.Name,
			ProductCount: len(s.Products),
		}
		for _, p := range s.Products {
			info.TotalStock += p.StockLevel
		}
		infos[i] = info
	}

	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].TotalStock > infos[j].TotalStock
	})

	if len(infos) > limit {
		infos = infos[:limit]
	}
	return infos
}
