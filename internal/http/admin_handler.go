package http

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/makahco2025-svg/test3/internal/catalog"
	"go.uber.org/zap"
)

// AdminHandler manages the product list. Admin access is a per-session flag
// granted by logging in with the configured password.
type AdminHandler struct {
	repo     catalog.Repository
	password string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewAdminHandler builds the admin endpoints; an empty password disables
// login.
func NewAdminHandler(repo catalog.Repository, password string, timeout time.Duration, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		repo:     repo,
		password: password,
		timeout:  timeout,
		logger:   logger,
	}
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.password == "" {
		respondError(w, http.StatusForbidden, "admin_disabled", "admin access is not configured")
		return
	}

	var req LoginRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sess := sessionFromContext(r.Context())
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) != 1 {
		h.logger.Warn("admin login rejected", zap.String("session_id", sess.ID))
		respondError(w, http.StatusUnauthorized, "invalid_credentials", "wrong password")
		return
	}

	sess.Do(func() { sess.SetAdmin(true) })
	h.logger.Info("admin logged in", zap.String("session_id", sess.ID))
	respondNoContent(w)
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	sess.Do(func() { sess.SetAdmin(false) })
	respondNoContent(w)
}

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.repo.List(ctx, catalog.Filter{})
	if err != nil {
		handleCatalogError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductsResponse(products))
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ProductRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	p, err := h.repo.Create(ctx, req.toProduct(0))
	if err != nil {
		handleCatalogError(w, h.logger, err)
		return
	}

	h.logger.Info("product created", zap.Int64("product_id", p.ID))
	respondJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req ProductRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	p, err := h.repo.Update(ctx, req.toProduct(productID))
	if err != nil {
		handleCatalogError(w, h.logger, err)
		return
	}

	h.logger.Info("product updated", zap.Int64("product_id", p.ID))
	respondJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	if err := h.repo.Delete(ctx, productID); err != nil {
		handleCatalogError(w, h.logger, err)
		return
	}

	h.logger.Info("product deleted", zap.Int64("product_id", productID))
	respondNoContent(w)
}
