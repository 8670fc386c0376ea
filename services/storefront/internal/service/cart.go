package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/pkg/tracing"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/event"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository"
)

// ProductFinder resolves product ids. *CatalogStore implements it.
type ProductFinder interface {
	FindByID(ctx context.Context, id string) (domain.Product, error)
}

// CartStore owns the persisted cart. Every successful write is followed by a
// count-changed notification carrying the new total item count. Notifications
// are sent after the cart lock is released and a stale count is never sent
// after a newer one.
type CartStore struct {
	mu       sync.Mutex
	seq      uint64 // guarded by mu; bumped on every successful write
	store    repository.RecordStore
	catalog  ProductFinder
	notifier event.CountNotifier
	logger   *slog.Logger

	notifyMu    sync.Mutex
	notifiedSeq uint64 // guarded by notifyMu
}

// countUpdate is a pending count-changed notification. The zero value means
// nothing was written.
type countUpdate struct {
	seq   uint64
	count int
}

// NewCartStore creates a new cart store. notifier may be nil.
func NewCartStore(store repository.RecordStore, catalog ProductFinder, notifier event.CountNotifier, logger *slog.Logger) *CartStore {
	return &CartStore{
		store:    store,
		catalog:  catalog,
		notifier: notifier,
		logger:   logger,
	}
}

// Load returns the persisted cart. An absent or corrupt record yields an
// empty cart.
func (s *CartStore) Load(ctx context.Context) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *CartStore) load(ctx context.Context) (domain.Cart, error) {
	data, err := s.store.Get(ctx, repository.CartKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Cart{}, nil
		}
		return nil, fmt.Errorf("read cart: %w", err)
	}

	cart, err := domain.DecodeCart(data)
	if err != nil {
		corruptRecordsTotal.WithLabelValues(repository.CartKey).Inc()
		s.logger.WarnContext(ctx, "stored cart is corrupt, starting empty",
			slog.String("key", repository.CartKey),
			slog.String("error", err.Error()),
		)
		return domain.Cart{}, nil
	}
	return cart, nil
}

// Save replaces the whole cart.
func (s *CartStore) Save(ctx context.Context, cart domain.Cart) error {
	_, err := s.apply(ctx, func() (countUpdate, error) {
		return s.save(ctx, cart)
	})
	return err
}

func (s *CartStore) save(ctx context.Context, cart domain.Cart) (countUpdate, error) {
	if err := domain.ValidateCart(cart); err != nil {
		return countUpdate{}, apperrors.InvalidInput(err.Error())
	}
	data, err := domain.EncodeCart(cart)
	if err != nil {
		return countUpdate{}, fmt.Errorf("encode cart: %w", err)
	}
	if err := s.store.Put(ctx, repository.CartKey, data); err != nil {
		storageWriteFailuresTotal.WithLabelValues(repository.CartKey).Inc()
		return countUpdate{}, apperrors.StorageWrite("cart", err)
	}
	s.seq++
	return countUpdate{seq: s.seq, count: cart.ItemCount()}, nil
}

func (s *CartStore) clear(ctx context.Context) (countUpdate, error) {
	if err := s.store.Delete(ctx, repository.CartKey); err != nil {
		storageWriteFailuresTotal.WithLabelValues(repository.CartKey).Inc()
		return countUpdate{}, apperrors.StorageWrite("cart", err)
	}
	s.seq++
	return countUpdate{seq: s.seq}, nil
}

// apply runs fn under the cart lock and sends the resulting count update once
// the lock is released. It reports whether fn wrote anything.
func (s *CartStore) apply(ctx context.Context, fn func() (countUpdate, error)) (bool, error) {
	u, err := func() (countUpdate, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn()
	}()
	if err != nil {
		return false, err
	}
	if u.seq == 0 {
		return false, nil
	}
	s.notify(ctx, u)
	return true, nil
}

func (s *CartStore) notify(ctx context.Context, u countUpdate) {
	if s.notifier == nil {
		return
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	// A concurrent writer already reported a newer count.
	if u.seq <= s.notifiedSeq {
		return
	}
	s.notifiedSeq = u.seq
	s.notifier.NotifyCartCount(ctx, u.count)
}

// Add puts qty items of the product in the given size into the cart, merging
// with an existing line for the same product and size.
func (s *CartStore) Add(ctx context.Context, productID string, qty int, size domain.Size) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CartStore.Add",
		attribute.String("product.id", productID),
		attribute.Int("cart.quantity", qty),
	)
	defer tracing.End(span, &err)

	if productID == "" {
		return apperrors.InvalidInput("product id is required")
	}
	if qty < 1 {
		return apperrors.InvalidInput("quantity must be at least 1")
	}
	if _, err := s.catalog.FindByID(ctx, productID); err != nil {
		return err
	}

	_, err = s.apply(ctx, func() (countUpdate, error) {
		cart, err := s.load(ctx)
		if err != nil {
			return countUpdate{}, err
		}
		if i := cart.FindLineIndex(productID, size); i >= 0 {
			cart[i].Qty += qty
		} else {
			cart = append(cart, domain.CartLine{ProductID: productID, Qty: qty, Size: size})
		}
		return s.save(ctx, cart)
	})
	if err != nil {
		return err
	}

	cartMutationsTotal.WithLabelValues("add").Inc()
	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("product_id", productID),
		slog.String("size", size.String()),
		slog.Int("quantity", qty),
	)
	return nil
}

// RemoveAt removes the line at index i. An out-of-range index is ignored.
func (s *CartStore) RemoveAt(ctx context.Context, i int) error {
	return s.mutateAt(ctx, "remove", i, func(cart domain.Cart) (domain.Cart, bool) {
		return append(cart[:i], cart[i+1:]...), true
	})
}

// IncrementAt adds one to the quantity of the line at index i.
func (s *CartStore) IncrementAt(ctx context.Context, i int) error {
	return s.mutateAt(ctx, "increment", i, func(cart domain.Cart) (domain.Cart, bool) {
		cart[i].Qty++
		return cart, true
	})
}

// DecrementAt subtracts one from the quantity of the line at index i. A
// quantity never drops below 1; use RemoveAt to drop a line.
func (s *CartStore) DecrementAt(ctx context.Context, i int) error {
	return s.mutateAt(ctx, "decrement", i, func(cart domain.Cart) (domain.Cart, bool) {
		if cart[i].Qty <= 1 {
			return cart, false
		}
		cart[i].Qty--
		return cart, true
	})
}

// mutateAt applies fn to the freshly loaded cart when i is in range and
// persists the result if fn reports a change.
func (s *CartStore) mutateAt(ctx context.Context, op string, i int, fn func(domain.Cart) (domain.Cart, bool)) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CartStore."+op,
		attribute.Int("cart.line_index", i),
	)
	defer tracing.End(span, &err)

	var line domain.CartLine
	written, err := s.apply(ctx, func() (countUpdate, error) {
		cart, err := s.load(ctx)
		if err != nil {
			return countUpdate{}, err
		}
		if !cart.InRange(i) {
			return countUpdate{}, nil
		}
		line = cart[i]
		next, changed := fn(cart)
		if !changed {
			return countUpdate{}, nil
		}
		return s.save(ctx, next)
	})
	if err != nil || !written {
		return err
	}

	cartMutationsTotal.WithLabelValues(op).Inc()
	s.logger.InfoContext(ctx, "cart line updated",
		slog.String("operation", op),
		slog.Int("index", i),
		slog.String("product_id", line.ProductID),
	)
	return nil
}

// Clear deletes the persisted cart.
func (s *CartStore) Clear(ctx context.Context) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CartStore.Clear")
	defer tracing.End(span, &err)

	if _, err := s.apply(ctx, func() (countUpdate, error) {
		return s.clear(ctx)
	}); err != nil {
		return err
	}

	cartMutationsTotal.WithLabelValues("clear").Inc()
	s.logger.InfoContext(ctx, "cart cleared")
	return nil
}

// Checkout hands the current cart to fn and deletes the cart once fn returns
// nil. The cart lock is held from the read until the delete, so a concurrent
// write lands either before fn sees the cart or after it has been cleared.
// When fn fails the cart is left untouched.
func (s *CartStore) Checkout(ctx context.Context, fn func(domain.Cart) error) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CartStore.Checkout")
	defer tracing.End(span, &err)

	if _, err := s.apply(ctx, func() (countUpdate, error) {
		cart, err := s.load(ctx)
		if err != nil {
			return countUpdate{}, err
		}
		if err := fn(cart); err != nil {
			return countUpdate{}, err
		}
		return s.clear(ctx)
	}); err != nil {
		return err
	}

	cartMutationsTotal.WithLabelValues("checkout").Inc()
	s.logger.InfoContext(ctx, "cart checked out")
	return nil
}

// TotalItemCount returns the number of items in the cart.
func (s *CartStore) TotalItemCount(ctx context.Context) (int, error) {
	cart, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}
	return cart.ItemCount(), nil
}
