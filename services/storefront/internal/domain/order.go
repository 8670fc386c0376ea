package domain

import "time"

// Payment methods offered at checkout. Payment is simulated.
const (
	PaymentCard   = "card"
	PaymentGCash  = "gcash"
	PaymentPayPal = "paypal"
)

// DanglingLine identifies a cart line whose product no longer exists.
type DanglingLine struct {
	Index     int    `json:"index"`
	ProductID string `json:"id"`
}

// Totals is the priced summary of a cart. All amounts are whole currency units.
type Totals struct {
	Subtotal int64          `json:"subtotal"`
	Shipping int64          `json:"shipping"`
	Tax      int64          `json:"tax"`
	Total    int64          `json:"total"`
	Dangling []DanglingLine `json:"dangling,omitempty"`
}

// HasDangling reports whether any cart line could not be priced.
func (t Totals) HasDangling() bool {
	return len(t.Dangling) > 0
}

// QuotedLine is a cart line joined with its product. Product is nil for a
// dangling line.
type QuotedLine struct {
	Index     int      `json:"index"`
	Line      CartLine `json:"line"`
	Product   *Product `json:"product,omitempty"`
	LineTotal int64    `json:"line_total"`
}

// Quote is the cart view shown on the cart and checkout pages.
type Quote struct {
	Lines     []QuotedLine `json:"lines"`
	ItemCount int          `json:"item_count"`
	Totals    Totals       `json:"totals"`
}

// ShippingInfo is the delivery contact captured at checkout.
type ShippingInfo struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// ReceiptLine is a purchased line frozen at order time.
type ReceiptLine struct {
	ProductID string `json:"id"`
	Name      string `json:"name"`
	Brand     string `json:"brand"`
	Size      Size   `json:"size"`
	Qty       int    `json:"qty"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

// Receipt confirms a simulated order. Orders are not persisted.
type Receipt struct {
	OrderID       string        `json:"order_id"`
	PlacedAt      time.Time     `json:"placed_at"`
	ShipTo        ShippingInfo  `json:"ship_to"`
	PaymentMethod string        `json:"payment_method"`
	Lines         []ReceiptLine `json:"lines"`
	Totals        Totals        `json:"totals"`
}
