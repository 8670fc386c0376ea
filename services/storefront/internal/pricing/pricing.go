// Package pricing derives cart totals from cart lines and live catalog prices.
// Totals are never stored; they are recomputed on every read.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
)

// ErrAmountOverflow is returned when a line total or cart total does not fit
// in an int64.
var ErrAmountOverflow = errors.New("amount exceeds supported range")

const (
	// FreeShippingThreshold is the subtotal above which shipping is free.
	// A subtotal of exactly this amount still pays the flat fee.
	FreeShippingThreshold int64 = 5000

	// FlatShippingFee is charged when the subtotal does not exceed the threshold.
	FlatShippingFee int64 = 200
)

// TaxRate is applied to the subtotal. Shipping is not taxed.
var TaxRate = decimal.RequireFromString("0.08")

// Lookup resolves a product id to the current catalog product.
type Lookup func(id string) (domain.Product, bool)

// CatalogLookup returns a Lookup over a catalog snapshot.
func CatalogLookup(c domain.Catalog) Lookup {
	index := make(map[string]domain.Product, len(c))
	for _, p := range c {
		index[p.ID] = p
	}
	return func(id string) (domain.Product, bool) {
		p, ok := index[id]
		return p, ok
	}
}

// Shipping returns the shipping fee for a subtotal.
func Shipping(subtotal int64) int64 {
	if subtotal > FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

// Tax returns the tax on a subtotal rounded to the nearest whole unit, with
// halves rounded away from zero.
func Tax(subtotal int64) int64 {
	return decimal.NewFromInt(subtotal).Mul(TaxRate).Round(0).IntPart()
}

// Compute prices the given lines. Lines whose product cannot be resolved are
// left out of the subtotal and reported in Totals.Dangling. When no line
// resolves, every amount is zero and no shipping is charged. Amounts that
// would overflow return ErrAmountOverflow.
func Compute(lines domain.Cart, lookup Lookup) (domain.Totals, error) {
	totals, _, err := quote(lines, lookup)
	return totals, err
}

// Quote prices the cart and returns each line joined with its product.
func Quote(lines domain.Cart, lookup Lookup) (domain.Quote, error) {
	totals, quoted, err := quote(lines, lookup)
	if err != nil {
		return domain.Quote{}, err
	}
	return domain.Quote{
		Lines:     quoted,
		ItemCount: lines.ItemCount(),
		Totals:    totals,
	}, nil
}

// mulAmount returns a*b for non-negative a and b.
func mulAmount(a, b int64) (int64, bool) {
	if a != 0 && b > math.MaxInt64/a {
		return 0, false
	}
	return a * b, true
}

// addAmount returns a+b for non-negative a and b.
func addAmount(a, b int64) (int64, bool) {
	if a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}

func quote(lines domain.Cart, lookup Lookup) (domain.Totals, []domain.QuotedLine, error) {
	var (
		totals   domain.Totals
		resolved int
	)
	quoted := make([]domain.QuotedLine, 0, len(lines))

	for i, line := range lines {
		ql := domain.QuotedLine{Index: i, Line: line}
		p, ok := lookup(line.ProductID)
		if !ok {
			totals.Dangling = append(totals.Dangling, domain.DanglingLine{Index: i, ProductID: line.ProductID})
			quoted = append(quoted, ql)
			continue
		}
		lineTotal, ok := mulAmount(p.Price, int64(line.Qty))
		if !ok {
			return domain.Totals{}, nil, fmt.Errorf("line %d (%s x%d): %w", i, p.ID, line.Qty, ErrAmountOverflow)
		}
		if totals.Subtotal, ok = addAmount(totals.Subtotal, lineTotal); !ok {
			return domain.Totals{}, nil, fmt.Errorf("subtotal: %w", ErrAmountOverflow)
		}
		product := p
		ql.Product = &product
		ql.LineTotal = lineTotal
		resolved++
		quoted = append(quoted, ql)
	}

	if resolved == 0 {
		return domain.Totals{Dangling: totals.Dangling}, quoted, nil
	}

	totals.Shipping = Shipping(totals.Subtotal)
	tax := decimal.NewFromInt(totals.Subtotal).Mul(TaxRate).Round(0)
	total := decimal.NewFromInt(totals.Subtotal).Add(decimal.NewFromInt(totals.Shipping)).Add(tax)
	if total.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return domain.Totals{}, nil, fmt.Errorf("total: %w", ErrAmountOverflow)
	}
	totals.Tax = tax.IntPart()
	totals.Total = total.IntPart()
	return totals, quoted, nil
}

// rejectOverflow maps ErrAmountOverflow to a client error.
func rejectOverflow(err error) error {
	if errors.Is(err, ErrAmountOverflow) {
		return apperrors.InvalidInput("cart total is too large: " + err.Error())
	}
	return err
}

// CatalogLoader supplies the current catalog.
type CatalogLoader interface {
	Load(ctx context.Context) (domain.Catalog, error)
}

// Engine prices carts against the live catalog.
type Engine struct {
	catalog CatalogLoader
}

// NewEngine creates a new pricing engine.
func NewEngine(catalog CatalogLoader) *Engine {
	return &Engine{catalog: catalog}
}

// Compute loads the current catalog and prices the cart against it.
func (e *Engine) Compute(ctx context.Context, cart domain.Cart) (domain.Totals, error) {
	c, err := e.catalog.Load(ctx)
	if err != nil {
		return domain.Totals{}, err
	}
	totals, err := Compute(cart, CatalogLookup(c))
	if err != nil {
		return domain.Totals{}, rejectOverflow(err)
	}
	return totals, nil
}

// Quote loads the current catalog and builds the cart view.
func (e *Engine) Quote(ctx context.Context, cart domain.Cart) (domain.Quote, error) {
	c, err := e.catalog.Load(ctx)
	if err != nil {
		return domain.Quote{}, err
	}
	q, err := Quote(cart, CatalogLookup(c))
	if err != nil {
		return domain.Quote{}, rejectOverflow(err)
	}
	return q, nil
}
