package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/pkg/validator"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository/memory"
)

func newTestCatalog(store *memory.Store, events CatalogEvents) *CatalogStore {
	s := NewCatalogStore(store, events, newTestLogger())
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s
}

// ============================================================================
// Load Tests
// ============================================================================

func TestCatalogLoad_SeedsDefaultsOnFirstUse(t *testing.T) {
	store := memory.New()
	s := newTestCatalog(store, nil)

	c, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCatalog(), c)

	data, err := store.Get(context.Background(), repository.CatalogKey)
	require.NoError(t, err)
	persisted, err := domain.DecodeCatalog(data)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCatalog(), persisted)
}

func TestCatalogLoad_CorruptRecordServesDefaultsWithoutOverwrite(t *testing.T) {
	store := memory.New()
	store.Raw(repository.CatalogKey, []byte("{{{"))
	s := newTestCatalog(store, nil)

	c, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCatalog(), c)

	data, err := store.Get(context.Background(), repository.CatalogKey)
	require.NoError(t, err)
	assert.Equal(t, "{{{", string(data))
	assert.Equal(t, 0, store.Puts())
}

func TestCatalogLoad_EmptyListIsValid(t *testing.T) {
	store := memory.New()
	store.Raw(repository.CatalogKey, []byte("[]"))
	s := newTestCatalog(store, nil)

	c, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, c)
}

func TestCatalogLoad_SeedWriteFailureReturnsDefaultsAndError(t *testing.T) {
	store := memory.New()
	store.SetWriteError(errors.New("quota exceeded"))
	s := newTestCatalog(store, nil)
	ctx := context.Background()

	c, err := s.Load(ctx)
	assert.ErrorIs(t, err, apperrors.ErrStorageWrite)
	assert.Len(t, c, 4)

	_, err = s.FindByID(ctx, "p1")
	assert.ErrorIs(t, err, apperrors.ErrStorageWrite)

	store.SetWriteError(nil)
	c, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, c, 4)
	_, err = store.Get(ctx, repository.CatalogKey)
	assert.NoError(t, err)
}

// ============================================================================
// Save / Views Tests
// ============================================================================

func TestCatalogSave_RoundTrip(t *testing.T) {
	s := newTestCatalog(memory.New(), nil)
	ctx := context.Background()

	want := domain.Catalog{
		{ID: "x1", Name: "One", Brand: "A", Price: 100, Images: []string{"i"}, Sizes: []float64{8}},
	}
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCatalogSave_RejectsInvalidCatalog(t *testing.T) {
	store := memory.New()
	s := newTestCatalog(store, nil)

	err := s.Save(context.Background(), domain.Catalog{{ID: "a", Price: 1}, {ID: "a", Price: 2}})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, 0, store.Puts())
}

func TestCatalogSave_WriteFailure(t *testing.T) {
	store := memory.New()
	cause := errors.New("disk full")
	store.SetWriteError(cause)
	s := newTestCatalog(store, nil)

	err := s.Save(context.Background(), domain.DefaultCatalog())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStorageWrite)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 507, apperrors.HTTPStatus(err))
}

func TestCatalogViews(t *testing.T) {
	s := newTestCatalog(memory.New(), nil)
	ctx := context.Background()

	featured, err := s.Featured(ctx)
	require.NoError(t, err)
	assert.Len(t, featured, 4)

	best, err := s.BestSellers(ctx)
	require.NoError(t, err)
	require.Len(t, best, 2)
	assert.Equal(t, "p2", best[0].ID)

	offers, err := s.Offers(ctx)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "p3", offers[0].ID)
}

func TestCatalogFindByID(t *testing.T) {
	s := newTestCatalog(memory.New(), nil)
	ctx := context.Background()

	p, err := s.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Columbia", p.Brand)

	_, err = s.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ============================================================================
// Create Tests
// ============================================================================

func TestCatalogCreate_PrependsAndPersists(t *testing.T) {
	events := new(mockEvents)
	events.On("PublishProductCreated", mock.Anything, mock.AnythingOfType("domain.Product")).Return(nil)
	s := newTestCatalog(memory.New(), events)
	ctx := context.Background()

	p, err := s.Create(ctx, CreateProductInput{
		Name:  "  Trail Runner ",
		Brand: "Acme",
		Price: 2599,
		Sizes: "8, 9, 10",
	})
	require.NoError(t, err)

	assert.Equal(t, "p1700000000000", p.ID)
	assert.Equal(t, "Trail Runner", p.Name)
	assert.Equal(t, []string{domain.PlaceholderImage}, p.Images)
	assert.Equal(t, []float64{8, 9, 10}, p.Sizes)
	assert.False(t, p.IsNew)
	assert.Zero(t, p.Discount)

	c, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, c, 5)
	assert.Equal(t, p.ID, c[0].ID)
	assert.Equal(t, "p1", c[1].ID)

	events.AssertCalled(t, "PublishProductCreated", mock.Anything, p)
}

func TestCatalogCreate_KeepsGivenImage(t *testing.T) {
	s := newTestCatalog(memory.New(), nil)

	p, err := s.Create(context.Background(), CreateProductInput{
		Name: "Boot", Brand: "Acme", Price: 100, Image: "https://img.example/boot.png",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img.example/boot.png"}, p.Images)
	assert.Empty(t, p.Sizes)
}

func TestCatalogCreate_IdsAreUniqueWithinSameMillisecond(t *testing.T) {
	s := newTestCatalog(memory.New(), nil)
	ctx := context.Background()
	in := CreateProductInput{Name: "A", Brand: "B", Price: 1}

	first, err := s.Create(ctx, in)
	require.NoError(t, err)
	second, err := s.Create(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, "p1700000000000", first.ID)
	assert.Equal(t, "p1700000000001", second.ID)
}

func TestCatalogCreate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input CreateProductInput
		field string
	}{
		{"missing name", CreateProductInput{Name: "   ", Brand: "B", Price: 1}, "name"},
		{"missing brand", CreateProductInput{Name: "A", Price: 1}, "brand"},
		{"zero price", CreateProductInput{Name: "A", Brand: "B"}, "price"},
		{"negative price", CreateProductInput{Name: "A", Brand: "B", Price: -5}, "price"},
		{"price above maximum", CreateProductInput{Name: "A", Brand: "B", Price: domain.MaxPrice + 1}, "price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			s := newTestCatalog(store, nil)

			_, err := s.Create(context.Background(), tt.input)
			require.Error(t, err)

			var verr *validator.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields(), tt.field)
			assert.Equal(t, 0, store.Puts())
		})
	}
}

func TestCatalogCreate_WriteFailureSkipsEvent(t *testing.T) {
	store := memory.New()
	events := new(mockEvents)
	s := newTestCatalog(store, events)
	ctx := context.Background()

	_, err := s.Load(ctx)
	require.NoError(t, err)
	store.SetWriteError(errors.New("quota exceeded"))

	_, err = s.Create(ctx, CreateProductInput{Name: "A", Brand: "B", Price: 1})
	assert.ErrorIs(t, err, apperrors.ErrStorageWrite)
	events.AssertNotCalled(t, "PublishProductCreated", mock.Anything, mock.Anything)
}

func TestCatalogCreate_EventFailureIsNotFatal(t *testing.T) {
	events := new(mockEvents)
	events.On("PublishProductCreated", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	s := newTestCatalog(memory.New(), events)

	_, err := s.Create(context.Background(), CreateProductInput{Name: "A", Brand: "B", Price: 1})
	assert.NoError(t, err)
}

// ============================================================================
// Delete Tests
// ============================================================================

func TestCatalogDelete_RemovesProduct(t *testing.T) {
	events := new(mockEvents)
	events.On("PublishProductDeleted", mock.Anything, "p2").Return(nil)
	s := newTestCatalog(memory.New(), events)
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, "p2"))

	c, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, c, 3)
	_, ok := c.FindByID("p2")
	assert.False(t, ok)
	events.AssertExpectations(t)
}

func TestCatalogDelete_UnknownIDDoesNotWrite(t *testing.T) {
	store := memory.New()
	s := newTestCatalog(store, nil)
	ctx := context.Background()

	_, err := s.Load(ctx)
	require.NoError(t, err)
	puts := store.Puts()

	require.NoError(t, s.Delete(ctx, "missing"))
	assert.Equal(t, puts, store.Puts())
}

func TestCatalogDelete_LastProductLeavesEmptyCatalog(t *testing.T) {
	s := newTestCatalog(memory.New(), nil)
	ctx := context.Background()

	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		require.NoError(t, s.Delete(ctx, id))
	}

	c, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, c)

	featured, err := s.Featured(ctx)
	require.NoError(t, err)
	assert.Empty(t, featured)
}
