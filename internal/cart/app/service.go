package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"softhub/internal/cart/domain"
)

var (
	// ErrNotFound covers a product id absent from the catalog on AddItem and a
	// line item absent from the cart on SetQuantity/RemoveItem.
	ErrNotFound = errors.New("not found")

	// ErrInvalidQuantity rejects AddItem calls with quantity < 1. SetQuantity
	// treats the same range as a removal instead.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrPersistence reports a slot read or write failure during a mutator.
	// The persisted cart is left exactly as it was before the call.
	ErrPersistence = errors.New("persistence failure")
)

// DefaultKey is the persisted slot name carried over from the web client.
const DefaultKey = "softhub_cart"

// DefaultTaxRate is the flat VAT rate applied to the subtotal.
var DefaultTaxRate = decimal.New(19, -2)

type Options struct {
	// Key names the slot this store owns. Defaults to DefaultKey.
	Key string
	// TaxRate overrides DefaultTaxRate when positive.
	TaxRate decimal.Decimal
	Logger  *slog.Logger
}

// Store owns one persisted cart slot. Every mutator runs load-modify-persist
// as a single step under the store's mutex, so a failed persist never leaves
// state behind that a later Load would see. Listeners are notified only after
// a successful persist and must not call back into the store.
type Store struct {
	slot    Slot
	catalog CatalogReader
	key     string
	taxRate decimal.Decimal
	log     *slog.Logger

	mu        sync.Mutex
	listeners []Listener
}

func NewStore(slot Slot, catalog CatalogReader, opts Options) *Store {
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}
	rate := opts.TaxRate
	if !rate.IsPositive() {
		rate = DefaultTaxRate
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Store{
		slot:    slot,
		catalog: catalog,
		key:     key,
		taxRate: rate,
		log:     log,
	}
}

// Subscribe registers a cart-change listener.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Load returns the persisted cart. An absent slot, an unreadable backend, or
// an unparsable payload all read as an empty cart; Load never fails upward.
func (s *Store) Load(ctx context.Context) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx)
	if err != nil {
		s.log.Warn("cart slot unreadable, treating as empty",
			slog.String("key", s.key), slog.Any("err", err))
		return domain.Cart{}
	}
	return cart
}

// AddItem puts quantity units of the product into the cart. An existing line
// item has its quantity incremented, otherwise a snapshot of the catalog
// product is appended. The store imposes no upper bound on quantity.
func (s *Store) AddItem(ctx context.Context, productID, quantity int) (domain.Cart, error) {
	if quantity < 1 {
		return domain.Cart{}, fmt.Errorf("add item %d: %w", productID, ErrInvalidQuantity)
	}

	s.mu.Lock()
	cart, ev, err := s.addItem(ctx, productID, quantity)
	s.mu.Unlock()
	if err != nil {
		return domain.Cart{}, err
	}

	s.emit(ev)
	return cart, nil
}

func (s *Store) addItem(ctx context.Context, productID, quantity int) (domain.Cart, Event, error) {
	product, err := s.catalog.Product(ctx, productID)
	if err != nil {
		return domain.Cart{}, Event{}, fmt.Errorf("add item: product %d: %w", productID, err)
	}

	cart, err := s.load(ctx)
	if err != nil {
		return domain.Cart{}, Event{}, err
	}

	if i := cart.Find(productID); i >= 0 {
		cart.Items[i].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, domain.LineItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
			Quantity:  quantity,
		})
	}

	if err := s.save(ctx, cart); err != nil {
		return domain.Cart{}, Event{}, err
	}

	return cart, Event{Kind: EventItemAdded, ProductID: productID, Name: product.Name, Cart: cart}, nil
}

// SetQuantity sets a line item's quantity to exactly newQuantity. A value
// below 1 removes the item instead, mirroring a spinner stepped down to zero.
func (s *Store) SetQuantity(ctx context.Context, productID, newQuantity int) (domain.Cart, error) {
	if newQuantity < 1 {
		return s.RemoveItem(ctx, productID)
	}

	s.mu.Lock()
	cart, ev, err := s.setQuantity(ctx, productID, newQuantity)
	s.mu.Unlock()
	if err != nil {
		return domain.Cart{}, err
	}

	s.emit(ev)
	return cart, nil
}

func (s *Store) setQuantity(ctx context.Context, productID, newQuantity int) (domain.Cart, Event, error) {
	cart, err := s.load(ctx)
	if err != nil {
		return domain.Cart{}, Event{}, err
	}

	i := cart.Find(productID)
	if i < 0 {
		return domain.Cart{}, Event{}, fmt.Errorf("set quantity: product %d not in cart: %w", productID, ErrNotFound)
	}

	cart.Items[i].Quantity = newQuantity
	if err := s.save(ctx, cart); err != nil {
		return domain.Cart{}, Event{}, err
	}

	return cart, Event{Kind: EventQuantitySet, ProductID: productID, Name: cart.Items[i].Name, Cart: cart}, nil
}

// RemoveItem drops the line item for the given product.
func (s *Store) RemoveItem(ctx context.Context, productID int) (domain.Cart, error) {
	s.mu.Lock()
	cart, ev, err := s.removeItem(ctx, productID)
	s.mu.Unlock()
	if err != nil {
		return domain.Cart{}, err
	}

	s.emit(ev)
	return cart, nil
}

func (s *Store) removeItem(ctx context.Context, productID int) (domain.Cart, Event, error) {
	cart, err := s.load(ctx)
	if err != nil {
		return domain.Cart{}, Event{}, err
	}

	i := cart.Find(productID)
	if i < 0 {
		return domain.Cart{}, Event{}, fmt.Errorf("remove item: product %d not in cart: %w", productID, ErrNotFound)
	}

	removed := cart.Items[i]
	cart.Items = append(cart.Items[:i:i], cart.Items[i+1:]...)

	if err := s.save(ctx, cart); err != nil {
		return domain.Cart{}, Event{}, err
	}

	return cart, Event{Kind: EventItemRemoved, ProductID: productID, Name: removed.Name, Cart: cart}, nil
}

// Clear deletes the persisted slot entirely. The next Load sees no key at all,
// not an empty list.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	err := s.slot.Delete(ctx, s.key)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("clear cart: %w: %v", ErrPersistence, err)
	}

	s.emit(Event{Kind: EventCleared})
	return nil
}

// ItemCount is the sum of quantities in the persisted cart, 0 when absent.
func (s *Store) ItemCount(ctx context.Context) int {
	return s.Load(ctx).ItemCount()
}

// Subtotal is the sum of price x quantity over the persisted cart.
func (s *Store) Subtotal(ctx context.Context) decimal.Decimal {
	return s.Load(ctx).Subtotal()
}

// Tax is the subtotal times the configured tax rate.
func (s *Store) Tax(ctx context.Context) decimal.Decimal {
	return s.Summary(ctx).Tax
}

// Total is subtotal plus tax.
func (s *Store) Total(ctx context.Context) decimal.Decimal {
	return s.Summary(ctx).Total
}

// Summary computes all aggregates against the persisted cart in one load.
func (s *Store) Summary(ctx context.Context) domain.Summary {
	return s.Load(ctx).Summarize(s.taxRate)
}

// load reads and decodes the slot. Absent key or corrupt payload is an empty
// cart; only a backend read error is returned, for mutators to surface.
func (s *Store) load(ctx context.Context) (domain.Cart, error) {
	raw, ok, err := s.slot.Read(ctx, s.key)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("read cart: %w: %v", ErrPersistence, err)
	}
	if !ok {
		return domain.Cart{}, nil
	}

	var items []domain.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		s.log.Warn("corrupt cart payload, treating as empty",
			slog.String("key", s.key), slog.Any("err", err))
		return domain.Cart{}, nil
	}
	return domain.Cart{Items: items}, nil
}

func (s *Store) save(ctx context.Context, cart domain.Cart) error {
	raw, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("encode cart: %w: %v", ErrPersistence, err)
	}
	if err := s.slot.Write(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write cart: %w: %v", ErrPersistence, err)
	}
	return nil
}

func (s *Store) emit(ev Event) {
	s.mu.Lock()
	listeners := s.listeners
	s.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}
}
