// Package static serves the product catalog from data embedded at build time.
package static

import (
	"context"
	"encoding/json"
	"fmt"

	_ "embed"

	"softhub/internal/catalog/app"
	"softhub/internal/catalog/domain"
)

//go:embed products.json
var productsJSON []byte

// Catalog is an immutable, in-memory product repository. It satisfies
// app.ProductRepo; the context parameters exist for interface symmetry only,
// no call ever blocks.
type Catalog struct {
	products []domain.Product
	byID     map[int]domain.Product
}

// New decodes the embedded product data. Called once at startup.
func New() (*Catalog, error) {
	return FromJSON(productsJSON)
}

// FromJSON builds a catalog from a JSON product array.
func FromJSON(data []byte) (*Catalog, error) {
	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	byID := make(map[int]domain.Product, len(products))
	for _, p := range products {
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("decode catalog: duplicate product id %d", p.ID)
		}
		byID[p.ID] = p
	}

	return &Catalog{products: products, byID: byID}, nil
}

func (c *Catalog) GetByID(ctx context.Context, id int) (domain.Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return domain.Product{}, app.ErrNotFound
	}
	return p, nil
}

func (c *Catalog) List(ctx context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out, nil
}

func (c *Catalog) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range c.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

// Categories returns the distinct category names in first-seen order.
func (c *Catalog) Categories(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{}, len(c.products))
	var out []string
	for _, p := range c.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out, nil
}
