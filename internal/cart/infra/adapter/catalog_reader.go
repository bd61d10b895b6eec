package adapter

import (
	"context"
	"errors"
	"fmt"

	cartapp "softhub/internal/cart/app"
	catalogapp "softhub/internal/catalog/app"
)

// CatalogServiceReader bridges the catalog service into the cart's
// CatalogReader port, translating catalog errors into the cart's taxonomy.
type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

func (r *CatalogServiceReader) Product(ctx context.Context, id int) (cartapp.ProductInfo, error) {
	p, err := r.svc.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, catalogapp.ErrNotFound) || errors.Is(err, catalogapp.ErrInvalidInput) {
			return cartapp.ProductInfo{}, cartapp.ErrNotFound
		}
		return cartapp.ProductInfo{}, fmt.Errorf("catalog lookup: %w", err)
	}

	return cartapp.ProductInfo{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		Image: p.Image,
	}, nil
}
