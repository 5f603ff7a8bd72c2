package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/bazarlab/marketplace-admin/internal/domain/catalog"
)

// shopDTO is the wire shape of a shop, matching the collaborator contract:
// nested products, nullable logo.
type shopDTO struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Logo        *string      `json:"logo"`
	Products    []productDTO `json:"products"`
}

type productDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	StockLevel  int     `json:"stockLevel"`
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

type createShopReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Logo        *string `json:"logo"`
}

// optString distinguishes an absent JSON field from an explicit null, so a
// PATCH can clear the logo without clobbering it on unrelated updates.
type optString struct {
	Set   bool
	Value *string
}

func (o *optString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

type patchShopReq struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Logo        optString     `json:"logo"`
	Products    *[]productDTO `json:"products"`
}

// ListShops returns every shop with its nested products.
func (h *Handler) ListShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.service.ListShops(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]shopDTO, len(shops))
	for i, s := range shops {
		out[i] = h.toShopDTO(s)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetShop returns a single shop by ID.
func (h *Handler) GetShop(w http.ResponseWriter, r *http.Request) {
	shop, err := h.service.GetShop(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toShopDTO(*shop))
}

// CreateShop creates a shop with a server-assigned ID and no products.
func (h *Handler) CreateShop(w http.ResponseWriter, r *http.Request) {
	var req createShopReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	shop, err := h.service.CreateShop(r.Context(), catalog.ShopInput{
		Name:        req.Name,
		Description: req.Description,
		Logo:        req.Logo,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toShopDTO(*shop))
}

// UpdateShop applies a partial update. A products field replaces the whole
// collection; this is the only product mutation path.
func (h *Handler) UpdateShop(w http.ResponseWriter, r *http.Request) {
	var req patchShopReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := catalog.ShopPatch{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Logo.Set {
		patch.Logo = &req.Logo.Value
	}
	if req.Products != nil {
		products := make([]catalog.Product, len(*req.Products))
		for i, p := range *req.Products {
			products[i] = fromProductDTO(p)
		}
		patch.Products = &products
	}

	shop, err := h.service.UpdateShop(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toShopDTO(*shop))
}

// DeleteShop removes an empty shop; deleting a shop that still owns products
// is a precondition failure (409).
func (h *Handler) DeleteShop(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteShop(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toShopDTO(s catalog.Shop) shopDTO {
	products := make([]productDTO, len(s.Products))
	for i, p := range s.Products {
		products[i] = h.toProductDTO(p)
	}
	return shopDTO{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Logo:        h.withBase(s.Logo),
		Products:    products,
	}
}

func (h *Handler) toProductDTO(p catalog.Product) productDTO {
	return productDTO{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price.InexactFloat64(),
		StockLevel:  p.StockLevel,
		Description: p.Description,
		Image:       h.withBase(p.Image),
	}
}

// withBase prefixes relative image references with the configured base URL.
// Absolute URLs and nulls pass through unchanged.
func (h *Handler) withBase(ref *string) *string {
	if ref == nil || h.imageBaseURL == "" {
		return ref
	}
	if strings.HasPrefix(*ref, "http://") || strings.HasPrefix(*ref, "https://") {
		return ref
	}
	full := strings.TrimSuffix(h.imageBaseURL, "/") + "/" + strings.TrimPrefix(*ref, "/")
	return &full
}

func fromProductDTO(p productDTO) catalog.Product {
	price := decimal.NewFromFloat(p.Price)
	if price.IsNegative() {
		price = decimal.Zero
	}
	stock := p.StockLevel
	if stock < 0 {
		stock = 0
	}
	return catalog.Product{
		ID:          p.ID,
		Name:        p.Name,
		Price:       price,
		StockLevel:  stock,
		Description: p.Description,
		Image:       p.Image,
	}
}
