package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/EcommerceGo/pkg/httputil"
	"github.com/utafrali/EcommerceGo/pkg/validator"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/money"
)

// CartService is the cart surface the cart handler needs.
type CartService interface {
	Add(ctx context.Context, productID string, qty int, size domain.Size) error
	RemoveAt(ctx context.Context, i int) error
	IncrementAt(ctx context.Context, i int) error
	DecrementAt(ctx context.Context, i int) error
	Clear(ctx context.Context) error
	TotalItemCount(ctx context.Context) (int, error)
}

// Quoter builds the priced cart view.
type Quoter interface {
	Quote(ctx context.Context) (domain.Quote, error)
}

// CountSubscriber streams cart count changes.
type CountSubscriber interface {
	Subscribe() (<-chan int, func())
}

// keepAliveInterval is how often an idle count stream sends a comment line.
const keepAliveInterval = 15 * time.Second

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	cart      CartService
	quoter    Quoter
	counts    CountSubscriber
	logger    *slog.Logger
	keepAlive time.Duration
}

// NewCartHandler creates a new cart HTTP handler. counts may be nil, in which
// case the count stream is unavailable.
func NewCartHandler(cart CartService, quoter Quoter, counts CountSubscriber, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		cart:      cart,
		quoter:    quoter,
		counts:    counts,
		logger:    logger,
		keepAlive: keepAliveInterval,
	}
}

// --- Request / response DTOs ---

// AddItemRequest is the JSON request body for adding an item to the cart.
// Size is a number, a string, or omitted for products without sizes.
type AddItemRequest struct {
	ProductID string      `json:"product_id" validate:"required"`
	Quantity  int         `json:"quantity" validate:"required,gte=1"`
	Size      domain.Size `json:"size"`
}

// TotalsDisplay holds the formatted cart totals.
type TotalsDisplay struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

func newTotalsDisplay(t domain.Totals) TotalsDisplay {
	return TotalsDisplay{
		Subtotal: money.Format(t.Subtotal),
		Shipping: money.FormatShipping(t.Shipping),
		Tax:      money.Format(t.Tax),
		Total:    money.Format(t.Total),
	}
}

// CartResponse is the priced cart view.
type CartResponse struct {
	domain.Quote
	Display TotalsDisplay `json:"display"`
}

// CountResponse carries the total item count.
type CountResponse struct {
	Count int `json:"count"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r, http.StatusOK)
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)

	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.cart.Add(r.Context(), req.ProductID, req.Quantity, req.Size); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeCart(w, r, http.StatusOK)
}

// RemoveItem handles DELETE /api/v1/cart/items/{index}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.mutateLine(w, r, h.cart.RemoveAt)
}

// IncrementItem handles POST /api/v1/cart/items/{index}/increment
func (h *CartHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	h.mutateLine(w, r, h.cart.IncrementAt)
}

// DecrementItem handles POST /api/v1/cart/items/{index}/decrement
func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	h.mutateLine(w, r, h.cart.DecrementAt)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeCart(w, r, http.StatusOK)
}

// GetCount handles GET /api/v1/cart/count
func (h *CartHandler) GetCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.cart.TotalItemCount(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: CountResponse{Count: n}})
}

// StreamCount handles GET /api/v1/cart/count/stream. It sends the current
// count immediately, then one server-sent event per change until the client
// disconnects.
func (h *CartHandler) StreamCount(w http.ResponseWriter, r *http.Request) {
	if h.counts == nil {
		httputil.WriteJSON(w, http.StatusNotImplemented, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: "count stream is not enabled"},
		})
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "STREAMING_UNSUPPORTED", Message: "streaming is not supported"},
		})
		return
	}

	// Subscribe before reading the current count so no change is missed.
	updates, cancel := h.counts.Subscribe()
	defer cancel()

	n, err := h.cart.TotalItemCount(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeCountEvent(w, n); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case n, open := <-updates:
			if !open {
				return
			}
			if err := writeCountEvent(w, n); err != nil {
				h.logger.DebugContext(r.Context(), "count stream closed", slog.String("error", err.Error()))
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// --- Helpers ---

func writeCountEvent(w http.ResponseWriter, n int) error {
	data, err := json.Marshal(CountResponse{Count: n})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: cart_count\ndata: %s\n\n", data)
	return err
}

func (h *CartHandler) mutateLine(w http.ResponseWriter, r *http.Request, fn func(context.Context, int) error) {
	i, ok := httputil.ParseIndex(w, chi.URLParam(r, "index"))
	if !ok {
		return
	}

	if err := fn(r.Context(), i); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeCart(w, r, http.StatusOK)
}

func (h *CartHandler) writeCart(w http.ResponseWriter, r *http.Request, status int) {
	q, err := h.quoter.Quote(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, status, httputil.Response{Data: CartResponse{
		Quote:   q,
		Display: newTotalsDisplay(q.Totals),
	}})
}
