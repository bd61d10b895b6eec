package app

import (
	"context"

	"github.com/shopspring/decimal"
)

// Slot is the key-value persistence backend holding serialized carts. An
// absent key reads as (nil, false, nil); that is the empty cart.
type Slot interface {
	Read(ctx context.Context, key string) (value []byte, ok bool, err error)
	Write(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// ProductInfo is the catalog snapshot the store copies into a new line item.
type ProductInfo struct {
	ID    int
	Name  string
	Price decimal.Decimal
	Image string
}

// CatalogReader supplies read-only product lookups. The catalog is never
// mutated by the cart.
type CatalogReader interface {
	Product(ctx context.Context, id int) (ProductInfo, error)
}
