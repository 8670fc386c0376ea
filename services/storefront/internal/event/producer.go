package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/utafrali/EcommerceGo/pkg/kafka"
	"github.com/utafrali/EcommerceGo/pkg/logger"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
)

// Kafka topics for storefront events.
var (
	TopicCartCountChanged      = pkgkafka.Topic("cart", "count_changed")
	TopicCatalogProductCreated = pkgkafka.Topic("catalog", "product_created")
	TopicCatalogProductDeleted = pkgkafka.Topic("catalog", "product_deleted")
	TopicOrderPlaced           = pkgkafka.Topic("order", "placed")
)

// Aggregate types.
const (
	AggregateTypeCart    = "cart"
	AggregateTypeProduct = "product"
	AggregateTypeOrder   = "order"
)

// SourceStorefront identifies events emitted by this service.
const SourceStorefront = "storefront"

// cartAggregateID keys count events so they stay ordered on one partition.
const cartAggregateID = "stride_cart_v1"

// CartCountChangedData is the payload for a cart.count_changed event.
type CartCountChangedData struct {
	Count int `json:"count"`
}

// ProductCreatedData is the payload for a catalog.product_created event.
type ProductCreatedData struct {
	Product domain.Product `json:"product"`
}

// ProductDeletedData is the payload for a catalog.product_deleted event.
type ProductDeletedData struct {
	ProductID string `json:"product_id"`
}

// OrderPlacedData is the payload for an order.placed event.
type OrderPlacedData struct {
	OrderID       string               `json:"order_id"`
	PaymentMethod string               `json:"payment_method"`
	Email         string               `json:"email"`
	Lines         []domain.ReceiptLine `json:"lines"`
	Totals        domain.Totals        `json:"totals"`
}

// Publisher sends an event envelope to a topic. *pkgkafka.Producer
// implements it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the storefront.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	evt, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}
	if id := logger.SessionIDFromContext(ctx); id != "" {
		evt.WithMetadata("session_id", id)
	}

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}

// NotifyCartCount publishes a cart.count_changed event. Failures are logged
// and dropped; the cart write already succeeded.
func (p *Producer) NotifyCartCount(ctx context.Context, count int) {
	if err := p.publish(ctx, TopicCartCountChanged, cartAggregateID, AggregateTypeCart, CartCountChangedData{Count: count}); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish cart count",
			slog.Int("count", count),
			slog.String("error", err.Error()),
		)
		return
	}
	p.logger.DebugContext(ctx, "published cart.count_changed event", slog.Int("count", count))
}

// PublishProductCreated publishes a catalog.product_created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product domain.Product) error {
	if err := p.publish(ctx, TopicCatalogProductCreated, product.ID, AggregateTypeProduct, ProductCreatedData{Product: product}); err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "published catalog.product_created event", slog.String("product_id", product.ID))
	return nil
}

// PublishProductDeleted publishes a catalog.product_deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, productID string) error {
	if err := p.publish(ctx, TopicCatalogProductDeleted, productID, AggregateTypeProduct, ProductDeletedData{ProductID: productID}); err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "published catalog.product_deleted event", slog.String("product_id", productID))
	return nil
}

// PublishOrderPlaced publishes an order.placed event.
func (p *Producer) PublishOrderPlaced(ctx context.Context, receipt domain.Receipt) error {
	data := OrderPlacedData{
		OrderID:       receipt.OrderID,
		PaymentMethod: receipt.PaymentMethod,
		Email:         receipt.ShipTo.Email,
		Lines:         receipt.Lines,
		Totals:        receipt.Totals,
	}
	if err := p.publish(ctx, TopicOrderPlaced, receipt.OrderID, AggregateTypeOrder, data); err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "published order.placed event", slog.String("order_id", receipt.OrderID))
	return nil
}
