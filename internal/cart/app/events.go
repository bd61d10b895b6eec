package app

import "softhub/internal/cart/domain"

type EventKind string

const (
	EventItemAdded   EventKind = "item_added"
	EventQuantitySet EventKind = "quantity_set"
	EventItemRemoved EventKind = "item_removed"
	EventCleared     EventKind = "cleared"
)

// Event describes one successful cart mutation. Listeners receive it after the
// new state has been persisted; a failed mutation emits nothing.
type Event struct {
	Kind      EventKind
	ProductID int
	Name      string
	Cart      domain.Cart
}

// Listener observes cart changes. The store calls listeners synchronously and
// ignores anything they do; delivery is fire-and-forget.
type Listener func(Event)
