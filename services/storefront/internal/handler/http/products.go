package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/EcommerceGo/pkg/httputil"
	"github.com/utafrali/EcommerceGo/pkg/pagination"
	"github.com/utafrali/EcommerceGo/pkg/validator"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/money"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/service"
)

// CatalogService is the catalog surface the product handler needs.
type CatalogService interface {
	Load(ctx context.Context) (domain.Catalog, error)
	FindByID(ctx context.Context, id string) (domain.Product, error)
	Featured(ctx context.Context) (domain.Catalog, error)
	BestSellers(ctx context.Context) (domain.Catalog, error)
	Offers(ctx context.Context) (domain.Catalog, error)
	Create(ctx context.Context, input service.CreateProductInput) (domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// Product list views selected with ?view=.
const (
	ViewAll         = "all"
	ViewFeatured    = "featured"
	ViewBestSellers = "bestsellers"
	ViewOffers      = "offers"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	catalog CatalogService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(catalog CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// --- Request / response DTOs ---

// CreateProductRequest is the JSON request body for the admin product form.
// Sizes is the raw comma-separated list as typed.
type CreateProductRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Brand string `json:"brand" validate:"required,max=100"`
	Price int64  `json:"price" validate:"required,gt=0,lte=100000000"`
	Image string `json:"image" validate:"omitempty,url"`
	Sizes string `json:"sizes"`
}

// ProductResponse is a product with its display prices.
type ProductResponse struct {
	domain.Product
	PriceDisplay         string `json:"price_display"`
	OriginalPrice        int64  `json:"original_price"`
	OriginalPriceDisplay string `json:"original_price_display"`
}

func newProductResponse(p domain.Product) ProductResponse {
	original := p.OriginalPrice()
	return ProductResponse{
		Product:              p,
		PriceDisplay:         money.Format(p.Price),
		OriginalPrice:        original,
		OriginalPriceDisplay: money.Format(original),
	}
}

func newProductResponses(c domain.Catalog) []ProductResponse {
	out := make([]ProductResponse, 0, len(c))
	for _, p := range c {
		out = append(out, newProductResponse(p))
	}
	return out
}

// --- Handlers ---

// ListProducts handles GET /api/v1/products?view=all|featured|bestsellers|offers
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var (
		products domain.Catalog
		err      error
	)

	switch view := r.URL.Query().Get("view"); view {
	case "", ViewAll:
		products, err = h.catalog.Load(r.Context())
	case ViewFeatured:
		products, err = h.catalog.Featured(r.Context())
	case ViewBestSellers:
		products, err = h.catalog.BestSellers(r.Context())
	case ViewOffers:
		products, err = h.catalog.Offers(r.Context())
	default:
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "view must be one of: all, featured, bestsellers, offers"},
		})
		return
	}
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	params := pagination.FromRequest(r)
	page := pagination.Slice(products, params)

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(
		newProductResponses(page), len(products), params.Page, params.PerPage))
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.catalog.FindByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newProductResponse(product)})
}

// CreateProduct handles POST /api/v1/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	product, err := h.catalog.Create(r.Context(), service.CreateProductInput{
		Name:  req.Name,
		Brand: req.Brand,
		Price: req.Price,
		Image: req.Image,
		Sizes: req.Sizes,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: newProductResponse(product)})
}

// DeleteProduct handles DELETE /api/v1/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
