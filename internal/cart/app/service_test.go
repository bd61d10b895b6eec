package app_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"softhub/internal/cart/app"
	"softhub/internal/cart/infra/memory"
)

type fakeCatalog struct {
	products map[int]app.ProductInfo
}

func (f *fakeCatalog) Product(ctx context.Context, id int) (app.ProductInfo, error) {
	p, ok := f.products[id]
	if !ok {
		return app.ProductInfo{}, app.ErrNotFound
	}
	return p, nil
}

// brokenSlot fails writes and deletes while keeping reads working, so the
// persisted state visible to Load stays whatever it was before.
type brokenSlot struct {
	*memory.Slot
}

func (b brokenSlot) Write(ctx context.Context, key string, value []byte) error {
	return errors.New("quota exceeded")
}

func (b brokenSlot) Delete(ctx context.Context, key string) error {
	return errors.New("quota exceeded")
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{products: map[int]app.ProductInfo{
		1: {ID: 1, Name: "Sistema de Gestión Documental", Price: price("1299"), Image: "https://img.test/1.jpg"},
		3: {ID: 3, Name: "CRM de Ventas Pro", Price: price("899"), Image: "https://img.test/3.jpg"},
	}}
}

func newStore(slot app.Slot) *app.Store {
	return app.NewStore(slot, testCatalog(), app.Options{})
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("quantities accumulate into one line per product", func(t *testing.T) {
		store := newStore(memory.New())

		for _, add := range []struct{ id, qty int }{
			{1, 1}, {3, 2}, {1, 4}, {3, 1},
		} {
			if _, err := store.AddItem(ctx, add.id, add.qty); err != nil {
				t.Fatalf("add %d x%d: %v", add.id, add.qty, err)
			}
		}

		cart := store.Load(ctx)
		if len(cart.Items) != 2 {
			t.Fatalf("expected 2 line items, got %d", len(cart.Items))
		}
		if cart.Items[0].ProductID != 1 || cart.Items[0].Quantity != 5 {
			t.Fatalf("line 0: %+v", cart.Items[0])
		}
		if cart.Items[1].ProductID != 3 || cart.Items[1].Quantity != 3 {
			t.Fatalf("line 1: %+v", cart.Items[1])
		}
	})

	t.Run("unknown product -> not found, cart untouched", func(t *testing.T) {
		slot := memory.New()
		store := newStore(slot)

		_, err := store.AddItem(ctx, 42, 1)
		if !errors.Is(err, app.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if slot.Has(app.DefaultKey) {
			t.Fatal("failed add must not create the slot")
		}
	})

	t.Run("zero quantity -> invalid, cart untouched", func(t *testing.T) {
		slot := memory.New()
		store := newStore(slot)

		for _, qty := range []int{0, -3} {
			_, err := store.AddItem(ctx, 1, qty)
			if !errors.Is(err, app.ErrInvalidQuantity) {
				t.Fatalf("qty %d: expected ErrInvalidQuantity, got %v", qty, err)
			}
		}
		if slot.Has(app.DefaultKey) {
			t.Fatal("invalid add must not create the slot")
		}
	})

	t.Run("snapshot is taken once, not refreshed", func(t *testing.T) {
		catalog := testCatalog()
		store := app.NewStore(memory.New(), catalog, app.Options{})

		if _, err := store.AddItem(ctx, 1, 1); err != nil {
			t.Fatalf("add: %v", err)
		}

		catalog.products[1] = app.ProductInfo{ID: 1, Name: "Renamed", Price: price("9999")}
		if _, err := store.AddItem(ctx, 1, 1); err != nil {
			t.Fatalf("second add: %v", err)
		}

		cart := store.Load(ctx)
		if cart.Items[0].Name != "Sistema de Gestión Documental" || !cart.Items[0].Price.Equal(price("1299")) {
			t.Fatalf("snapshot was refreshed: %+v", cart.Items[0])
		}
		if cart.Items[0].Quantity != 2 {
			t.Fatalf("expected quantity 2, got %d", cart.Items[0].Quantity)
		}
	})

	t.Run("round-trip preserves the snapshot", func(t *testing.T) {
		store := newStore(memory.New())

		if _, err := store.AddItem(ctx, 3, 7); err != nil {
			t.Fatalf("add: %v", err)
		}

		cart := store.Load(ctx)
		if len(cart.Items) != 1 {
			t.Fatalf("expected 1 line item, got %d", len(cart.Items))
		}
		it := cart.Items[0]
		if it.ProductID != 3 || it.Quantity != 7 {
			t.Fatalf("line: %+v", it)
		}
		if it.Name != "CRM de Ventas Pro" || !it.Price.Equal(price("899")) || it.Image != "https://img.test/3.jpg" {
			t.Fatalf("snapshot mismatch: %+v", it)
		}
	})
}

func TestAggregates(t *testing.T) {
	ctx := context.Background()

	t.Run("empty cart counts zero", func(t *testing.T) {
		store := newStore(memory.New())
		if n := store.ItemCount(ctx); n != 0 {
			t.Fatalf("expected 0, got %d", n)
		}
		if !store.Subtotal(ctx).IsZero() || !store.Total(ctx).IsZero() {
			t.Fatal("expected zero totals for absent cart")
		}
	})

	t.Run("subtotal, tax and total at 19%", func(t *testing.T) {
		store := newStore(memory.New())
		if _, err := store.AddItem(ctx, 1, 2); err != nil { // 1299 x 2
			t.Fatalf("add: %v", err)
		}
		if _, err := store.AddItem(ctx, 3, 1); err != nil { // 899 x 1
			t.Fatalf("add: %v", err)
		}

		sum := store.Summary(ctx)
		if sum.ItemCount != 3 {
			t.Fatalf("item count: expected 3, got %d", sum.ItemCount)
		}
		for _, check := range []struct {
			name string
			got  decimal.Decimal
			want string
		}{
			{"subtotal", sum.Subtotal, "3497"},
			{"tax", sum.Tax, "664.43"},
			{"total", sum.Total, "4161.43"},
		} {
			if !check.got.Equal(price(check.want)) {
				t.Fatalf("%s: expected %s, got %s", check.name, check.want, check.got)
			}
		}
	})

	t.Run("configured tax rate is honored", func(t *testing.T) {
		store := app.NewStore(memory.New(), testCatalog(), app.Options{TaxRate: price("0.07")})
		if _, err := store.AddItem(ctx, 3, 1); err != nil {
			t.Fatalf("add: %v", err)
		}
		if tax := store.Tax(ctx); !tax.Equal(price("62.93")) {
			t.Fatalf("expected 62.93, got %s", tax)
		}
	})
}

func TestSetQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("sets absolute quantity", func(t *testing.T) {
		store := newStore(memory.New())
		if _, err := store.AddItem(ctx, 1, 5); err != nil {
			t.Fatalf("add: %v", err)
		}

		cart, err := store.SetQuantity(ctx, 1, 2)
		if err != nil {
			t.Fatalf("set: %v", err)
		}
		if cart.Items[0].Quantity != 2 {
			t.Fatalf("expected quantity 2, got %d", cart.Items[0].Quantity)
		}
	})

	t.Run("missing line item -> not found", func(t *testing.T) {
		store := newStore(memory.New())
		if _, err := store.SetQuantity(ctx, 1, 2); !errors.Is(err, app.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("zero and negative delegate to removal", func(t *testing.T) {
		for _, qty := range []int{0, -1} {
			t.Run(fmt.Sprintf("qty=%d", qty), func(t *testing.T) {
				store := newStore(memory.New())
				if _, err := store.AddItem(ctx, 1, 3); err != nil {
					t.Fatalf("add: %v", err)
				}

				cart, err := store.SetQuantity(ctx, 1, qty)
				if err != nil {
					t.Fatalf("set: %v", err)
				}
				if len(cart.Items) != 0 {
					t.Fatalf("expected empty cart, got %+v", cart.Items)
				}
				if store.ItemCount(ctx) != 0 {
					t.Fatal("removal did not persist")
				}
			})
		}
	})
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()

	t.Run("removes exactly the matching line", func(t *testing.T) {
		store := newStore(memory.New())
		if _, err := store.AddItem(ctx, 1, 1); err != nil {
			t.Fatalf("add: %v", err)
		}
		if _, err := store.AddItem(ctx, 3, 2); err != nil {
			t.Fatalf("add: %v", err)
		}

		cart, err := store.RemoveItem(ctx, 1)
		if err != nil {
			t.Fatalf("remove: %v", err)
		}
		if len(cart.Items) != 1 || cart.Items[0].ProductID != 3 {
			t.Fatalf("unexpected cart: %+v", cart.Items)
		}
	})

	t.Run("missing line item -> not found, persisted bytes unchanged", func(t *testing.T) {
		slot := memory.New()
		store := app.NewStore(slot, testCatalog(), app.Options{})
		if _, err := store.AddItem(ctx, 1, 2); err != nil {
			t.Fatalf("add: %v", err)
		}

		before, _, err := slot.Read(ctx, app.DefaultKey)
		if err != nil {
			t.Fatalf("read: %v", err)
		}

		if _, err := store.RemoveItem(ctx, 42); !errors.Is(err, app.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}

		after, _, err := slot.Read(ctx, app.DefaultKey)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if !bytes.Equal(before, after) {
			t.Fatalf("persisted cart changed:\nbefore: %s\nafter:  %s", before, after)
		}
	})

	t.Run("removing the last line persists an empty list, not an absent key", func(t *testing.T) {
		slot := memory.New()
		store := app.NewStore(slot, testCatalog(), app.Options{})
		if _, err := store.AddItem(ctx, 1, 1); err != nil {
			t.Fatalf("add: %v", err)
		}
		if _, err := store.RemoveItem(ctx, 1); err != nil {
			t.Fatalf("remove: %v", err)
		}
		if !slot.Has(app.DefaultKey) {
			t.Fatal("remove must keep the slot; only Clear deletes it")
		}
		if store.ItemCount(ctx) != 0 {
			t.Fatal("expected empty cart")
		}
	})
}

func TestClear(t *testing.T) {
	ctx := context.Background()

	slot := memory.New()
	store := app.NewStore(slot, testCatalog(), app.Options{})
	if _, err := store.AddItem(ctx, 1, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if slot.Has(app.DefaultKey) {
		t.Fatal("clear must delete the slot key entirely")
	}
	if cart := store.Load(ctx); len(cart.Items) != 0 {
		t.Fatalf("expected empty cart after clear, got %+v", cart.Items)
	}

	// Clearing an already absent cart still succeeds.
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestLoadDegradesCorruptPayload(t *testing.T) {
	ctx := context.Background()

	slot := memory.New()
	if err := slot.Write(ctx, app.DefaultKey, []byte(`{definitely not a cart`)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	store := app.NewStore(slot, testCatalog(), app.Options{})
	if cart := store.Load(ctx); len(cart.Items) != 0 {
		t.Fatalf("corrupt payload must read as empty, got %+v", cart.Items)
	}
	if store.ItemCount(ctx) != 0 {
		t.Fatal("expected count 0 for corrupt payload")
	}
}

func TestPersistFailureExposesNoPartialState(t *testing.T) {
	ctx := context.Background()

	slot := memory.New()
	good := app.NewStore(slot, testCatalog(), app.Options{})
	if _, err := good.AddItem(ctx, 1, 2); err != nil {
		t.Fatalf("seed: %v", err)
	}

	broken := app.NewStore(brokenSlot{slot}, testCatalog(), app.Options{})

	if _, err := broken.AddItem(ctx, 3, 1); !errors.Is(err, app.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if _, err := broken.SetQuantity(ctx, 1, 9); !errors.Is(err, app.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if _, err := broken.RemoveItem(ctx, 1); !errors.Is(err, app.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if err := broken.Clear(ctx); !errors.Is(err, app.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}

	cart := broken.Load(ctx)
	if len(cart.Items) != 1 || cart.Items[0].ProductID != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("partial state leaked: %+v", cart.Items)
	}
}

func TestEvents(t *testing.T) {
	ctx := context.Background()

	store := newStore(memory.New())

	var events []app.Event
	store.Subscribe(func(ev app.Event) {
		events = append(events, ev)
	})

	if _, err := store.AddItem(ctx, 1, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := store.SetQuantity(ctx, 1, 4); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := store.RemoveItem(ctx, 1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	// Failed mutations must stay silent.
	if _, err := store.AddItem(ctx, 42, 1); err == nil {
		t.Fatal("expected error")
	}

	want := []app.EventKind{app.EventItemAdded, app.EventQuantitySet, app.EventItemRemoved, app.EventCleared}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d: %+v", len(want), len(events), events)
	}
	for i, kind := range want {
		if events[i].Kind != kind {
			t.Fatalf("event %d: expected %s, got %s", i, kind, events[i].Kind)
		}
	}
	if events[2].Name != "Sistema de Gestión Documental" {
		t.Fatalf("removal event must carry the product name, got %q", events[2].Name)
	}
}
