package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/utafrali/EcommerceGo/pkg/validator"
)

// ErrCorruptRecord marks a persisted record that exists but does not match
// the expected schema.
var ErrCorruptRecord = errors.New("corrupt persisted record")

// ValidateCatalog checks every product against its schema and that ids are
// unique.
func ValidateCatalog(c Catalog) error {
	seen := make(map[string]struct{}, len(c))
	for i, p := range c {
		if err := validator.Validate(p); err != nil {
			return fmt.Errorf("product %d: %w", i, err)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("product %d: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// ValidateCart checks every line against its schema and that no (id, size)
// pair appears twice.
func ValidateCart(c Cart) error {
	type lineKey struct {
		id   string
		size Size
	}
	seen := make(map[lineKey]struct{}, len(c))
	for i, line := range c {
		if err := validator.Validate(line); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
		k := lineKey{id: line.ProductID, size: line.Size}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("line %d: duplicate line for %s size %s", i, line.ProductID, line.Size)
		}
		seen[k] = struct{}{}
	}
	return nil
}

// DecodeCatalog parses and validates a persisted catalog record. Any shape
// mismatch is reported as ErrCorruptRecord.
func DecodeCatalog(data []byte) (Catalog, error) {
	if isJSONNull(data) {
		return nil, fmt.Errorf("%w: catalog is null", ErrCorruptRecord)
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if err := ValidateCatalog(c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return c, nil
}

// EncodeCatalog serializes a catalog record. A nil catalog is written as an
// empty list.
func EncodeCatalog(c Catalog) ([]byte, error) {
	if c == nil {
		c = Catalog{}
	}
	return json.Marshal(c)
}

// DecodeCart parses and validates a persisted cart record.
func DecodeCart(data []byte) (Cart, error) {
	if isJSONNull(data) {
		return nil, fmt.Errorf("%w: cart is null", ErrCorruptRecord)
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if err := ValidateCart(c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return c, nil
}

// EncodeCart serializes a cart record. A nil cart is written as an empty list.
func EncodeCart(c Cart) ([]byte, error) {
	if c == nil {
		c = Cart{}
	}
	return json.Marshal(c)
}

func isJSONNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
