// Package api exposes the shop resource endpoints and the read-only catalog
// query endpoints over a chi router.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/bazarlab/marketplace-admin/internal/domain/catalog"
)

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// ImageBaseURL is prepended to relative image and logo paths in
	// responses. When empty, paths are returned as stored.
	ImageBaseURL string
}

// Handler serves the HTTP API, delegating business logic to the catalog
// service and computing derived views with the aggregator.
type Handler struct {
	service      *catalog.Service
	imageBaseURL string
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(cfg HandlerConfig, service *catalog.Service) *Handler {
	return &Handler{
		service:      service,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Routes builds the chi router for all API endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/shops", func(r chi.Router) {
		r.Get("/", h.ListShops)
		r.Post("/", h.CreateShop)
		r.Get("/{id}", h.GetShop)
		r.Patch("/{id}", h.UpdateShop)
		r.Delete("/{id}", h.DeleteShop)
	})

	r.Get("/catalog/products", h.QueryProducts)

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/metrics", h.DashboardMetrics)
		r.Get("/stock-distribution", h.StockDistribution)
		r.Get("/top-shops", h.TopShops)
	})

	return r
}

// errorResponse is the single error body shape of the API.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Code: status, Message: message})
}

// writeDomainError maps domain errors onto the HTTP error taxonomy:
// validation -> 400, not found -> 404, delete precondition -> 409,
// everything else -> 500 with the detail kept out of the response.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, catalog.ErrShopNotFound):
		writeError(w, http.StatusNotFound, "shop not found")
	case errors.Is(err, catalog.ErrShopNotEmpty):
		writeError(w, http.StatusConflict, "shop still owns products and cannot be deleted")
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
