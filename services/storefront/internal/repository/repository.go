package repository

import (
	"context"
)

// Record keys. The version suffix lets a future schema change start from
// fresh records instead of misreading old ones.
const (
	CatalogKey = "stride_products_v1"
	CartKey    = "stride_cart_v1"
)

// RecordStore is a durable key-value store of opaque records. It is the
// storefront's only persistence dependency.
type RecordStore interface {
	// Get returns the record stored under key. An absent record is reported
	// as an apperrors.ErrNotFound error.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores data under key, replacing any previous record.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes the record under key. Deleting an absent record succeeds.
	Delete(ctx context.Context, key string) error
}
