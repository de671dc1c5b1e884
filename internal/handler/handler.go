// Package handler exposes the checkout service over HTTP.
package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/microshop/checkout-service/internal/checkout"
	"github.com/microshop/checkout-service/internal/money"
)

// maxBodySize caps checkout request bodies. Requests are small; anything
// bigger is malformed or hostile.
const maxBodySize = 1 << 20

// Handler routes checkout HTTP requests to the saga service.
type Handler struct {
	svc *checkout.Service
}

// NewHandler constructs a Handler around the checkout service.
func NewHandler(svc *checkout.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the checkout routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/checkout", func(r chi.Router) {
		r.Post("/", h.placeOrder)
		r.Get("/orders/{userID}", h.getOrderHistory)
	})
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return
	}

	req, err := decodePlaceOrderRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.UserID == "" || req.UserCurrency == "" {
		writeError(w, http.StatusBadRequest, "userId and userCurrency are required")
		return
	}

	order, err := h.svc.PlaceOrder(r.Context(), req)
	if err != nil {
		h.writeSagaError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, encodePlaceOrderResponse(order))
}

func (h *Handler) getOrderHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	orders, err := h.svc.GetOrderHistory(r.Context(), userID)
	if err != nil {
		zctx.From(r.Context()).Error("Order history lookup failed",
			zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, encodeOrderHistoryResponse(orders))
}

// writeSagaError maps saga failures onto the HTTP surface. Pre-charge
// validation problems are the client's fault; a declined charge gets 402; a
// post-charge shipping failure is a gateway-side fault and reports 502 so the
// caller knows the saga did not complete cleanly.
func (h *Handler) writeSagaError(w http.ResponseWriter, r *http.Request, err error) {
	var pnf *checkout.ProductNotFoundError

	switch {
	case errors.As(err, &pnf):
		writeError(w, http.StatusUnprocessableEntity, pnf.Error())
	case errors.Is(err, money.ErrMismatchingCurrency), errors.Is(err, money.ErrInvalidValue):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, checkout.ErrPaymentFailed):
		writeError(w, http.StatusPaymentRequired, "payment failed")
	case errors.Is(err, checkout.ErrShippingFailed):
		zctx.From(r.Context()).Error("Shipping failed after charge", zap.Error(err))
		writeError(w, http.StatusBadGateway, "shipping failed")
	default:
		zctx.From(r.Context()).Error("Order placement failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, encodeError(status, message))
}
