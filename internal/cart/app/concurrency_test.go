package app_test

import (
	"context"
	"testing"

	"golang.org/x/sync/errgroup"

	"softhub/internal/cart/infra/memory"
)

// The original client ran single-threaded; the store here is called from
// concurrent HTTP handlers, so load-modify-persist must hold under contention.
func TestConcurrentAddItemIncrement(t *testing.T) {
	ctx := context.Background()
	store := newStore(memory.New())

	const N = 100
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < N; i++ {
		g.Go(func() error {
			_, err := store.AddItem(ctx, 1, 1)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent AddItem failed: %v", err)
	}

	cart := store.Load(ctx)
	if len(cart.Items) != 1 {
		t.Fatalf("expected a single line item, got %d", len(cart.Items))
	}
	if got := cart.Items[0].Quantity; got != N {
		t.Fatalf("expected quantity=%d, got=%d", N, got)
	}
}
