package static

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"softhub/internal/catalog/app"
)

func TestEmbeddedCatalog(t *testing.T) {
	ctx := context.Background()

	c, err := New()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	t.Run("lists all products", func(t *testing.T) {
		products, err := c.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(products) != 6 {
			t.Fatalf("expected 6 products, got %d", len(products))
		}
	})

	t.Run("lookup by id", func(t *testing.T) {
		p, err := c.GetByID(ctx, 3)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if p.Name != "CRM de Ventas Pro" {
			t.Fatalf("unexpected product: %+v", p)
		}
		if !p.Price.Equal(decimal.NewFromInt(899)) {
			t.Fatalf("unexpected price: %s", p.Price)
		}
	})

	t.Run("missing id -> not found", func(t *testing.T) {
		_, err := c.GetByID(ctx, 42)
		if !errors.Is(err, app.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("category filter is an equality match", func(t *testing.T) {
		products, err := c.ListByCategory(ctx, "Recursos Humanos")
		if err != nil {
			t.Fatalf("list by category: %v", err)
		}
		if len(products) != 2 {
			t.Fatalf("expected 2 products, got %d", len(products))
		}
		for _, p := range products {
			if p.Category != "Recursos Humanos" {
				t.Fatalf("wrong category: %s", p.Category)
			}
		}
	})

	t.Run("categories are unique and ordered", func(t *testing.T) {
		cats, err := c.Categories(ctx)
		if err != nil {
			t.Fatalf("categories: %v", err)
		}
		want := []string{
			"Gestión de Archivos",
			"Gestión Empresarial",
			"Customer Relationship",
			"Finanzas",
			"Recursos Humanos",
		}
		if len(cats) != len(want) {
			t.Fatalf("expected %d categories, got %d: %v", len(want), len(cats), cats)
		}
		for i := range want {
			if cats[i] != want[i] {
				t.Fatalf("category %d: expected %q, got %q", i, want[i], cats[i])
			}
		}
	})
}

func TestFromJSONRejectsDuplicates(t *testing.T) {
	_, err := FromJSON([]byte(`[{"id":1,"name":"a","price":1},{"id":1,"name":"b","price":2}]`))
	if err == nil {
		t.Fatal("expected error for duplicate ids")
	}
}

func TestFromJSONRejectsGarbage(t *testing.T) {
	_, err := FromJSON([]byte(`{not json`))
	if err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
