package domain

// CartLine is one (product, size) selection with a quantity. ProductID is a
// weak reference: the product may be deleted from the catalog afterwards.
type CartLine struct {
	ProductID string `json:"id" validate:"required"`
	Qty       int    `json:"qty" validate:"gte=1"`
	Size      Size   `json:"size"`
}

// Cart is the ordered list of cart lines, in first-insertion order.
type Cart []CartLine

// ItemCount returns the total number of items in the cart.
func (c Cart) ItemCount() int {
	var count int
	for _, line := range c {
		count += line.Qty
	}
	return count
}

// FindLineIndex returns the index of the line matching the given product and
// size, or -1 if not found.
func (c Cart) FindLineIndex(productID string, size Size) int {
	for i := range c {
		if c[i].ProductID == productID && c[i].Size == size {
			return i
		}
	}
	return -1
}

// InRange reports whether i addresses an existing line.
func (c Cart) InRange(i int) bool {
	return i >= 0 && i < len(c)
}

// Clone returns a copy that can be mutated without touching c.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}
