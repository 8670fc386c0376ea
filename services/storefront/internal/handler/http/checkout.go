package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/utafrali/EcommerceGo/pkg/httputil"
	"github.com/utafrali/EcommerceGo/pkg/validator"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/service"
)

// OrderPlacer places simulated orders.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, input service.PlaceOrderInput) (*domain.Receipt, error)
}

// CheckoutHandler handles HTTP requests for checkout.
type CheckoutHandler struct {
	orders OrderPlacer
	logger *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(orders OrderPlacer, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		orders: orders,
		logger: logger,
	}
}

// ReceiptResponse is a placed order with formatted totals.
type ReceiptResponse struct {
	*domain.Receipt
	Display TotalsDisplay `json:"display"`
}

// PlaceOrder handles POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)

	var req service.PlaceOrderInput
	if err := validator.Decode(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	receipt, err := h.orders.PlaceOrder(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: ReceiptResponse{
		Receipt: receipt,
		Display: newTotalsDisplay(receipt.Totals),
	}})
}
