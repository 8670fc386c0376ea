package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/pkg/tracing"
	"github.com/utafrali/EcommerceGo/pkg/validator"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository"
)

// CatalogEvents publishes catalog changes. A nil CatalogEvents disables
// publishing.
type CatalogEvents interface {
	PublishProductCreated(ctx context.Context, product domain.Product) error
	PublishProductDeleted(ctx context.Context, productID string) error
}

// CreateProductInput holds the admin form fields for a new product. Name,
// brand and image are trimmed before validation; a zero price counts as
// missing.
type CreateProductInput struct {
	Name  string `json:"name" validate:"required"`
	Brand string `json:"brand" validate:"required"`
	Price int64  `json:"price" validate:"required,gt=0,lte=100000000"`
	Image string `json:"image"`
	Sizes string `json:"sizes"`
}

// CatalogStore owns the persisted product catalog.
type CatalogStore struct {
	mu     sync.Mutex
	store  repository.RecordStore
	events CatalogEvents
	logger *slog.Logger

	now        func() time.Time
	lastMillis int64
}

// NewCatalogStore creates a new catalog store.
func NewCatalogStore(store repository.RecordStore, events CatalogEvents, logger *slog.Logger) *CatalogStore {
	return &CatalogStore{
		store:  store,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// Load returns the current catalog. On first use the default catalog is
// seeded and persisted; if that write fails the defaults are returned along
// with the storage error and seeding is retried on the next call. A corrupt
// record yields the defaults for this call and is left untouched in storage.
func (s *CatalogStore) Load(ctx context.Context) (domain.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *CatalogStore) load(ctx context.Context) (domain.Catalog, error) {
	data, err := s.store.Get(ctx, repository.CatalogKey)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		seed := domain.DefaultCatalog()
		if err := s.save(ctx, seed); err != nil {
			s.logger.WarnContext(ctx, "failed to persist seeded catalog",
				slog.String("error", err.Error()),
			)
			return seed, fmt.Errorf("seed catalog: %w", err)
		}
		s.logger.InfoContext(ctx, "catalog seeded with defaults", slog.Int("products", len(seed)))
		return seed, nil
	}

	catalog, err := domain.DecodeCatalog(data)
	if err != nil {
		corruptRecordsTotal.WithLabelValues(repository.CatalogKey).Inc()
		s.logger.WarnContext(ctx, "stored catalog is corrupt, serving defaults",
			slog.String("key", repository.CatalogKey),
			slog.String("error", err.Error()),
		)
		return domain.DefaultCatalog(), nil
	}
	return catalog, nil
}

// Save replaces the whole catalog.
func (s *CatalogStore) Save(ctx context.Context, catalog domain.Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, catalog)
}

func (s *CatalogStore) save(ctx context.Context, catalog domain.Catalog) error {
	if err := domain.ValidateCatalog(catalog); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	data, err := domain.EncodeCatalog(catalog)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := s.store.Put(ctx, repository.CatalogKey, data); err != nil {
		storageWriteFailuresTotal.WithLabelValues(repository.CatalogKey).Inc()
		return apperrors.StorageWrite("catalog", err)
	}
	return nil
}

// FindByID returns the product with the given id.
func (s *CatalogStore) FindByID(ctx context.Context, id string) (domain.Product, error) {
	catalog, err := s.Load(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	p, ok := catalog.FindByID(id)
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", id)
	}
	return p, nil
}

// Featured returns the products shown first on the home page.
func (s *CatalogStore) Featured(ctx context.Context) (domain.Catalog, error) {
	catalog, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Featured(), nil
}

// BestSellers returns the products flagged as best sellers.
func (s *CatalogStore) BestSellers(ctx context.Context) (domain.Catalog, error) {
	catalog, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.BestSellers(), nil
}

// Offers returns the discounted products.
func (s *CatalogStore) Offers(ctx context.Context) (domain.Catalog, error) {
	catalog, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Offers(), nil
}

// Create adds a product at the front of the catalog and returns it.
func (s *CatalogStore) Create(ctx context.Context, input CreateProductInput) (_ domain.Product, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CatalogStore.Create")
	defer tracing.End(span, &err)

	input.Name = strings.TrimSpace(input.Name)
	input.Brand = strings.TrimSpace(input.Brand)
	input.Image = strings.TrimSpace(input.Image)
	if err := validator.Validate(input); err != nil {
		return domain.Product{}, err
	}

	image := input.Image
	if image == "" {
		image = domain.PlaceholderImage
	}

	s.mu.Lock()
	catalog, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return domain.Product{}, err
	}

	product := domain.Product{
		ID:     s.nextID(catalog),
		Name:   input.Name,
		Brand:  input.Brand,
		Price:  input.Price,
		Images: []string{image},
		Sizes:  domain.ParseSizes(input.Sizes),
	}

	next := make(domain.Catalog, 0, len(catalog)+1)
	next = append(next, product)
	next = append(next, catalog...)
	err = s.save(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return domain.Product{}, err
	}

	catalogMutationsTotal.WithLabelValues("create").Inc()
	if s.events != nil {
		if err := s.events.PublishProductCreated(ctx, product); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish product created event",
				slog.String("product_id", product.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("name", product.Name),
		slog.Int64("price", product.Price),
	)

	return product, nil
}

// Delete removes the product with the given id. Deleting an unknown id
// succeeds without writing. Cart lines referencing the product are kept.
func (s *CatalogStore) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CatalogStore.Delete",
		attribute.String("product.id", id),
	)
	defer tracing.End(span, &err)

	s.mu.Lock()
	catalog, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	next, removed := catalog.Without(id)
	if !removed {
		s.mu.Unlock()
		return nil
	}
	err = s.save(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	catalogMutationsTotal.WithLabelValues("delete").Inc()
	if s.events != nil {
		if err := s.events.PublishProductDeleted(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish product deleted event",
				slog.String("product_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))
	return nil
}

// nextID derives a product id from the current unix milliseconds. Ids are
// strictly increasing within a process and never collide with the catalog.
// Must be called with s.mu held.
func (s *CatalogStore) nextID(catalog domain.Catalog) string {
	ms := s.now().UnixMilli()
	if ms <= s.lastMillis {
		ms = s.lastMillis + 1
	}
	for {
		id := "p" + strconv.FormatInt(ms, 10)
		if _, taken := catalog.FindByID(id); !taken {
			s.lastMillis = ms
			return id
		}
		ms++
	}
}
