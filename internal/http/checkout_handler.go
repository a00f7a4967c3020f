package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/makahco2025-svg/test3/internal/checkout"
	"github.com/makahco2025-svg/test3/internal/domain"
	"github.com/makahco2025-svg/test3/internal/orders"
	"go.uber.org/zap"
)

var errLocationDenied = errors.New("location lookup failed on the device")

// OrderHistory reads back the orders sessions have handed off. Get returns
// orders.ErrOrderNotFound for an unknown id.
type OrderHistory interface {
	Get(ctx context.Context, id uuid.UUID) (domain.SubmittedOrder, error)
	ListBySession(ctx context.Context, sessionID string) ([]domain.SubmittedOrder, error)
}

type CheckoutHandler struct {
	history OrderHistory
	timeout time.Duration
	logger  *zap.Logger
}

// NewCheckoutHandler builds the checkout endpoints; history may be nil.
func NewCheckoutHandler(history OrderHistory, timeout time.Duration, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		history: history,
		timeout: timeout,
		logger:  logger,
	}
}

func (h *CheckoutHandler) GetState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.state(r, nil))
}

func (h *CheckoutHandler) Open(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.state(r, (*checkout.Composer).Open))
}

func (h *CheckoutHandler) Close(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.state(r, (*checkout.Composer).CloseSurface))
}

// FetchLocation runs a location request with the position the device
// reported and waits for it to resolve. The session lock is not held while
// waiting, since the resolution is delivered through the session itself.
func (h *CheckoutHandler) FetchLocation(w http.ResponseWriter, r *http.Request) {
	var req LocationRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	var provider checkout.PositionProvider
	switch {
	case req.Error == locationUnsupported:
	case req.Error != "":
		provider = checkout.PositionProviderFunc(func(context.Context) (checkout.Position, error) {
			return checkout.Position{}, errLocationDenied
		})
	case req.Latitude == nil || req.Longitude == nil:
		respondError(w, http.StatusBadRequest, "invalid_position", "latitude and longitude are required")
		return
	default:
		pos := checkout.Position{Latitude: *req.Latitude, Longitude: *req.Longitude}
		provider = checkout.PositionProviderFunc(func(context.Context) (checkout.Position, error) {
			return pos, nil
		})
	}

	sess := sessionFromContext(r.Context())
	var (
		done <-chan struct{}
		err  error
	)
	sess.Do(func() {
		done, err = sess.Checkout().FetchLocation(r.Context(), provider)
	})
	if err != nil {
		h.handleCheckoutError(w, err)
		return
	}

	select {
	case <-done:
	case <-r.Context().Done():
		respondError(w, http.StatusGatewayTimeout, "timeout", "location request did not resolve in time")
		return
	}

	resp := h.state(r, nil)
	if resp.Location.State == checkout.LocationFailed {
		h.logger.Debug("location request failed",
			zap.String("session_id", sess.ID),
			zap.Error(resp.Location.Cause))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var in checkout.Input
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sess := sessionFromContext(r.Context())
	var (
		order *domain.SubmittedOrder
		err   error
	)
	sess.Do(func() {
		order, err = sess.Checkout().Submit(ctx, in)
	})
	if err != nil {
		h.handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toOrderResponse(*order))
}

func (h *CheckoutHandler) Orders(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondJSON(w, http.StatusOK, OrdersResponse{Orders: []OrderResponse{}})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFromContext(r.Context())
	submitted, err := h.history.ListBySession(ctx, sess.ID)
	if err != nil {
		h.logger.Error("failed to list orders", zap.String("session_id", sess.ID), zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "order history is unavailable")
		return
	}

	resp := OrdersResponse{Orders: make([]OrderResponse, len(submitted))}
	for i, o := range submitted {
		resp.Orders[i] = toOrderResponse(o)
	}
	respondJSON(w, http.StatusOK, resp)
}

// Order returns one order of the session. Orders of other sessions are
// reported as not found.
func (h *CheckoutHandler) Order(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}
	if h.history == nil {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFromContext(r.Context())
	order, err := h.history.Get(ctx, orderID)
	switch {
	case errors.Is(err, orders.ErrOrderNotFound), err == nil && order.SessionID != sess.ID:
		respondError(w, http.StatusNotFound, "not_found", "order not found")
	case err != nil:
		h.logger.Error("failed to get order",
			zap.String("session_id", sess.ID),
			zap.String("order_id", orderID.String()),
			zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "order history is unavailable")
	default:
		respondJSON(w, http.StatusOK, toOrderResponse(order))
	}
}

func (h *CheckoutHandler) state(r *http.Request, fn func(*checkout.Composer)) CheckoutStateResponse {
	sess := sessionFromContext(r.Context())

	var resp CheckoutStateResponse
	sess.Do(func() {
		c := sess.Checkout()
		if fn != nil {
			fn(c)
		}
		resp = toCheckoutStateResponse(c)
	})
	return resp
}

func (h *CheckoutHandler) handleCheckoutError(w http.ResponseWriter, err error) {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "checkout form is invalid",
			Code:   "validation_failed",
			Fields: verr.Fields,
		})
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", "the cart is empty")
	case errors.Is(err, checkout.ErrLocationPending):
		respondError(w, http.StatusConflict, "location_pending", "a location request is already in progress")
	case errors.Is(err, checkout.ErrComposerClosed):
		respondError(w, http.StatusGone, "session_closed", "the session has ended")
	default:
		h.logger.Error("checkout failed", zap.Error(err))
		respondError(w, http.StatusBadGateway, "handoff_failed", "the order could not be handed off")
	}
}
