package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/pkg/tracing"
	"github.com/utafrali/EcommerceGo/pkg/validator"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/pricing"
)

// OrderEvents publishes placed orders. A nil OrderEvents disables publishing.
type OrderEvents interface {
	PublishOrderPlaced(ctx context.Context, receipt domain.Receipt) error
}

// PlaceOrderInput holds the checkout form.
type PlaceOrderInput struct {
	FullName      string `json:"full_name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required"`
	Address       string `json:"address" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=card gcash paypal"`
}

// Checkout prices the cart and places simulated orders.
type Checkout struct {
	cart    *CartStore
	pricing *pricing.Engine
	events  OrderEvents
	logger  *slog.Logger

	now     func() time.Time
	orderID func() string
}

// NewCheckout creates a new checkout service.
func NewCheckout(cart *CartStore, engine *pricing.Engine, events OrderEvents, logger *slog.Logger) *Checkout {
	return &Checkout{
		cart:    cart,
		pricing: engine,
		events:  events,
		logger:  logger,
		now:     time.Now,
		orderID: uuid.NewString,
	}
}

// Quote returns the current cart joined with live product data and totals.
func (c *Checkout) Quote(ctx context.Context) (domain.Quote, error) {
	cart, err := c.cart.Load(ctx)
	if err != nil {
		return domain.Quote{}, err
	}
	return c.pricing.Quote(ctx, cart)
}

// PlaceOrder validates the checkout form, prices the cart, clears it and
// returns the receipt. Pricing and clearing happen under one cart lock, so the
// receipt covers exactly the lines that were cleared. Payment is simulated and
// the order is not stored.
func (c *Checkout) PlaceOrder(ctx context.Context, input PlaceOrderInput) (_ *domain.Receipt, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "Checkout.PlaceOrder",
		attribute.String("order.payment_method", input.PaymentMethod),
	)
	defer tracing.End(span, &err)

	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Address = strings.TrimSpace(input.Address)
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	var receipt *domain.Receipt
	err = c.cart.Checkout(ctx, func(cart domain.Cart) error {
		if len(cart) == 0 {
			return apperrors.InvalidInput("cart is empty")
		}

		quote, err := c.pricing.Quote(ctx, cart)
		if err != nil {
			return err
		}
		if quote.Totals.HasDangling() {
			return apperrors.Conflict(fmt.Sprintf(
				"%d cart line(s) reference products that are no longer sold", len(quote.Totals.Dangling)))
		}

		lines := make([]domain.ReceiptLine, 0, len(quote.Lines))
		for _, ql := range quote.Lines {
			lines = append(lines, domain.ReceiptLine{
				ProductID: ql.Line.ProductID,
				Name:      ql.Product.Name,
				Brand:     ql.Product.Brand,
				Size:      ql.Line.Size,
				Qty:       ql.Line.Qty,
				UnitPrice: ql.Product.Price,
				LineTotal: ql.LineTotal,
			})
		}

		receipt = &domain.Receipt{
			OrderID:  c.orderID(),
			PlacedAt: c.now().UTC(),
			ShipTo: domain.ShippingInfo{
				FullName: input.FullName,
				Email:    input.Email,
				Phone:    input.Phone,
				Address:  input.Address,
			},
			PaymentMethod: input.PaymentMethod,
			Lines:         lines,
			Totals:        quote.Totals,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ordersPlacedTotal.WithLabelValues(receipt.PaymentMethod).Inc()
	if c.events != nil {
		if err := c.events.PublishOrderPlaced(ctx, *receipt); err != nil {
			c.logger.ErrorContext(ctx, "failed to publish order placed event",
				slog.String("order_id", receipt.OrderID),
				slog.String("error", err.Error()),
			)
		}
	}

	c.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", receipt.OrderID),
		slog.String("payment_method", receipt.PaymentMethod),
		slog.Int64("total", receipt.Totals.Total),
	)
	return receipt, nil
}
