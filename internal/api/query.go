package api

import (
	"net/http"
	"strconv"

	"github.com/bazarlab/marketplace-admin/internal/domain/catalog"
)

type productRowDTO struct {
	productDTO

	ShopID      string `json:"shopId"`
	ShopName    string `json:"shopName"`
	StockStatus string `json:"stockStatus"`
}

type productPageDTO struct {
	Items      []productRowDTO `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

type metricsDTO struct {
	TotalShops    int     `json:"totalShops"`
	TotalProducts int     `json:"totalProducts"`
	TotalValue    float64 `json:"totalValue"`
	TotalStock    int     `json:"totalStock"`
}

type stockDistributionDTO struct {
	InStock    int `json:"inStock"`
	LowStock   int `json:"lowStock"`
	OutOfStock int `json:"outOfStock"`
}

type shopStockInfoDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	TotalStock   int    `json:"totalStock"`
	ProductCount int    `json:"productCount"`
}

// QueryProducts serves the flattened, filtered, sorted, paginated cross-shop
// product view. Query parameters: search, shop, stock, sort, page, pageSize.
func (h *Handler) QueryProducts(w http.ResponseWriter, r *http.Request) {
	shops, err := h.service.ListShops(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := queryStateFromRequest(r).Apply(shops)

	items := make([]productRowDTO, len(res.Rows))
	for i, row := range res.Rows {
		items[i] = productRowDTO{
			productDTO:  h.toProductDTO(row.Product),
			ShopID:      row.ShopID,
			ShopName:    row.ShopName,
			StockStatus: string(catalog.StatusOf(row.StockLevel)),
		}
	}

	writeJSON(w, http.StatusOK, productPageDTO{
		Items:      items,
		Total:      res.TotalRows,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: res.TotalPages,
	})
}

// DashboardMetrics serves the catalog-wide aggregate counts and the total
// inventory value.
func (h *Handler) DashboardMetrics(w http.ResponseWriter, r *http.Request) {
	shops, err := h.service.ListShops(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	m := catalog.ComputeDashboardMetrics(shops)
	writeJSON(w, http.StatusOK, metricsDTO{
		TotalShops:    m.TotalShops,
		TotalProducts: m.TotalProducts,
		TotalValue:    m.TotalValue.InexactFloat64(),
		TotalStock:    m.TotalStock,
	})
}

// StockDistribution serves the per-bucket product counts.
func (h *Handler) StockDistribution(w http.ResponseWriter, r *http.Request) {
	shops, err := h.service.ListShops(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	d := catalog.ComputeStockDistribution(shops)
	writeJSON(w, http.StatusOK, stockDistributionDTO{
		InStock:    d.InStock,
		LowStock:   d.LowStock,
		OutOfStock: d.OutOfStock,
	})
}

// TopShops serves the shops ranked by total stock, highest first.
func (h *Handler) TopShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.service.ListShops(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	top := catalog.TopShopsByStock(shops, limit)

	out := make([]shopStockInfoDTO, len(top))
	for i, s := range top {
		out[i] = shopStockInfoDTO{
			ID:           s.ID,
			Name:         s.Name,
			TotalStock:   s.TotalStock,
			ProductCount: s.ProductCount,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// queryStateFromRequest builds the immutable query state record from request
// parameters, falling back to the view defaults for anything absent.
func queryStateFromRequest(r *http.Request) catalog.QueryState {
	q := r.URL.Query()
	state := catalog.NewQueryState()

	if v := q.Get("search"); v != "" {
		state = state.WithSearch(v)
	}
	if v := q.Get("shop"); v != "" {
		state = state.WithShop(v)
	}
	switch catalog.StockFilter(q.Get("stock")) {
	case catalog.StockInStock, catalog.StockLowStock, catalog.StockOutOfStock:
		state = state.WithStock(catalog.StockFilter(q.Get("stock")))
	}
	switch catalog.SortKey(q.Get("sort")) {
	case catalog.SortByName, catalog.SortByPrice, catalog.SortByStock:
		state = state.WithSort(catalog.SortKey(q.Get("sort")))
	}
	if v, err := strconv.Atoi(q.Get("pageSize")); err == nil && v > 0 {
		state.PageSize = v
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		state = state.WithPage(v)
	}
	return state
}
