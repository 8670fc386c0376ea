package domain

import (
	"math"
	"strconv"
	"strings"
)

// PlaceholderImage is used when a product is created without an image URL.
const PlaceholderImage = "https://via.placeholder.com/400"

// MaxPrice is the largest price, in minor units, a product may carry.
const MaxPrice int64 = 100_000_000

// FeaturedCount is how many leading catalog products the home page features.
const FeaturedCount = 4

// Product represents a sellable item in the catalog.
type Product struct {
	ID           string    `json:"id" validate:"required"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand"`
	Price        int64     `json:"price" validate:"gte=0,lte=100000000"`
	Images       []string  `json:"images"`
	IsNew        bool      `json:"isNew"`
	IsBestSeller bool      `json:"isBestSeller"`
	Discount     int       `json:"discount" validate:"gte=0,lte=100"`
	Sizes        []float64 `json:"sizes"`
}

// OriginalPrice returns the pre-discount price shown struck through next to
// the selling price. Price is already the selling price, so the discount is
// never applied to totals.
func (p Product) OriginalPrice() int64 {
	if p.Discount <= 0 || p.Discount >= 100 {
		return p.Price
	}
	return int64(math.Round(float64(p.Price) / (1 - float64(p.Discount)/100)))
}

// HasOffer reports whether the product carries a discount.
func (p Product) HasOffer() bool {
	return p.Discount > 0
}

// Catalog is the ordered product list. Order drives the featured selection
// and the admin listing.
type Catalog []Product

// FindByID returns the product with the given id.
func (c Catalog) FindByID(id string) (Product, bool) {
	for _, p := range c {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Featured returns the first FeaturedCount products.
func (c Catalog) Featured() Catalog {
	if len(c) <= FeaturedCount {
		return append(Catalog{}, c...)
	}
	return append(Catalog{}, c[:FeaturedCount]...)
}

// BestSellers returns the products flagged as best sellers, in catalog order.
func (c Catalog) BestSellers() Catalog {
	out := Catalog{}
	for _, p := range c {
		if p.IsBestSeller {
			out = append(out, p)
		}
	}
	return out
}

// Offers returns the discounted products, in catalog order.
func (c Catalog) Offers() Catalog {
	out := Catalog{}
	for _, p := range c {
		if p.HasOffer() {
			out = append(out, p)
		}
	}
	return out
}

// Without returns a copy of the catalog minus the product with the given id
// and whether anything was removed.
func (c Catalog) Without(id string) (Catalog, bool) {
	out := make(Catalog, 0, len(c))
	removed := false
	for _, p := range c {
		if p.ID == id {
			removed = true
			continue
		}
		out = append(out, p)
	}
	return out, removed
}

// ParseSizes turns an admin-entered list such as "7, 8, 9.5" into sizes.
// Blank entries, zeros and anything that is not a number are dropped.
func ParseSizes(raw string) []float64 {
	sizes := []float64{}
	for _, part := range strings.Split(raw, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sizes = append(sizes, v)
	}
	return sizes
}

// DefaultCatalog returns a fresh copy of the catalog seeded on first run.
func DefaultCatalog() Catalog {
	return Catalog{
		{
			ID:           "p1",
			Name:         "Columbia Trail Shoes",
			Brand:        "Columbia",
			Price:        3499,
			Images:       []string{"https://columbiasportswear.ph/cdn/shop/files/1000490548_01_2048x.jpg?v=1727060244"},
			IsNew:        true,
			IsBestSeller: false,
			Discount:     0,
			Sizes:        []float64{7, 8, 9, 10},
		},
		{
			ID:           "p2",
			Name:         "Nike Blazer Low '77 Vintage",
			Brand:        "Nike",
			Price:        4299,
			Images:       []string{"https://static.nike.com/a/images/c_limit,w_592,f_auto/t_product_v1/83aad9de-aa49-48d9-9c1e-9f89e3d87eb9/BLAZER+LOW+%2777+VNTG.png"},
			IsNew:        true,
			IsBestSeller: true,
			Discount:     0,
			Sizes:        []float64{7, 8, 9, 10, 11},
		},
		{
			ID:           "p3",
			Name:         "Professor Oxford Leather",
			Brand:        "The Jacket Maker",
			Price:        4899,
			Images:       []string{"https://www.thejacketmaker.lu/cdn/shop/products/01_Professor_Oxford_Black_Leather_Shoes_Front_Tilted-2-1674261796520_60495991-804b-41f3-a1d2-407ae54c86dc_2048x.webp?v=1756909998"},
			IsNew:        true,
			IsBestSeller: false,
			Discount:     25,
			Sizes:        []float64{7, 8, 9, 10, 11},
		},
		{
			ID:           "p4",
			Name:         "Adidas Forum Low",
			Brand:        "Adidas",
			Price:        3799,
			Images:       []string{"https://www.footlocker.ph/media/catalog/product/cache/f57d6f7ebc711fc328170f0ddc174b08/0/8/0803-ADIJH620800W06H-1.jpg"},
			IsNew:        true,
			IsBestSeller: true,
			Discount:     0,
			Sizes:        []float64{7, 8, 9, 10},
		},
	}
}
