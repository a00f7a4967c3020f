package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/makahco2025-svg/test3/internal/catalog"
	"github.com/makahco2025-svg/test3/internal/domain"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	repo    catalog.Repository
	timeout time.Duration
	logger  *zap.Logger
}

func NewCatalogHandler(repo catalog.Repository, timeout time.Duration, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		repo:    repo,
		timeout: timeout,
		logger:  logger,
	}
}

func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories := make([]string, len(domain.Categories))
	copy(categories, domain.Categories)
	respondJSON(w, http.StatusOK, CategoriesResponse{Categories: categories})
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := catalog.Filter{
		Category: r.URL.Query().Get("category"),
		Query:    r.URL.Query().Get("q"),
	}
	h.list(w, r, filter)
}

func (h *CatalogHandler) Offers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, catalog.Filter{OffersOnly: true})
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	p, err := h.repo.Get(ctx, productID)
	if err != nil {
		h.handleCatalogError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request, filter catalog.Filter) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.repo.List(ctx, filter)
	if err != nil {
		h.handleCatalogError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductsResponse(products))
}

func (h *CatalogHandler) handleCatalogError(w http.ResponseWriter, err error) {
	handleCatalogError(w, h.logger, err)
}

func handleCatalogError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "not_found", "product not found")
	case errors.Is(err, domain.ErrNameRequired),
		errors.Is(err, domain.ErrDescriptionRequired),
		errors.Is(err, domain.ErrCategoryRequired),
		errors.Is(err, domain.ErrNegativePrice),
		errors.Is(err, domain.ErrInvalidDiscount):
		respondError(w, http.StatusBadRequest, "invalid_product", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "catalog did not respond in time")
	default:
		logger.Error("catalog request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}
