package http

import (
	"context"
	"net/http"
	"time"

	"github.com/makahco2025-svg/test3/internal/cart"
	"github.com/makahco2025-svg/test3/internal/catalog"
	"github.com/makahco2025-svg/test3/internal/domain"
	"go.uber.org/zap"
)

// CartHandler serves the session's cart. The cart itself comes from the
// request context; every access runs inside the session's Do.
type CartHandler struct {
	repo    catalog.Repository
	timeout time.Duration
	logger  *zap.Logger
}

func NewCartHandler(repo catalog.Repository, timeout time.Duration, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		repo:    repo,
		timeout: timeout,
		logger:  logger,
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.mutate(r, nil))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	p, err := h.repo.Get(ctx, req.ProductID)
	if err != nil {
		handleCatalogError(w, h.logger, err)
		return
	}

	resp := h.mutate(r, func(s *cart.Store) { s.AddToCart(p) })
	respondJSON(w, http.StatusCreated, resp)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}

	resp := h.mutate(r, func(s *cart.Store) { s.UpdateQuantity(productID, *req.Quantity) })
	respondJSON(w, http.StatusOK, resp)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	resp := h.mutate(r, func(s *cart.Store) { s.RemoveFromCart(productID) })
	respondJSON(w, http.StatusOK, resp)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	resp := h.mutate(r, (*cart.Store).ClearCart)
	respondJSON(w, http.StatusOK, resp)
}

// mutate applies fn to the session cart and returns the resulting view.
func (h *CartHandler) mutate(r *http.Request, fn func(*cart.Store)) CartResponse {
	sess := sessionFromContext(r.Context())

	var lines []domain.CartLine
	sess.Do(func() {
		store := cart.FromContext(r.Context())
		if fn != nil {
			fn(store)
		}
		lines = store.Lines()
	})
	return toCartResponse(lines)
}
