// Package notify keeps short-lived, severity-tagged toast notifications.
// Delivery is fire-and-forget: toasts expire after a fixed delay whether or
// not anyone read them.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	cartapp "softhub/internal/cart/app"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// DefaultTTL matches the original auto-dismiss delay.
const DefaultTTL = 3 * time.Second

type Notification struct {
	ID        uuid.UUID `json:"id"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type Center struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items []Notification
}

type Option func(*Center)

func WithTTL(d time.Duration) Option {
	return func(c *Center) { c.ttl = d }
}

// WithClock injects the time source; tests use it to step past the TTL.
func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

func NewCenter(opts ...Option) *Center {
	c := &Center{ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Push records a toast.
func (c *Center) Push(sev Severity, message string) Notification {
	n := Notification{
		ID:        uuid.New(),
		Severity:  sev,
		Message:   message,
		CreatedAt: c.now(),
	}

	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()
	return n
}

// Active returns the unexpired toasts, oldest first, pruning the rest.
func (c *Center) Active() []Notification {
	cutoff := c.now().Add(-c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.items[:0]
	for _, n := range c.items {
		if n.CreatedAt.After(cutoff) {
			kept = append(kept, n)
		}
	}
	c.items = kept

	out := make([]Notification, len(kept))
	copy(out, kept)
	return out
}

// CartChanged is the cart listener producing the user-facing toasts the web
// client used to render inline.
func (c *Center) CartChanged(ev cartapp.Event) {
	switch ev.Kind {
	case cartapp.EventItemAdded:
		c.Push(SeveritySuccess, fmt.Sprintf("%s agregado al carrito", ev.Name))
	case cartapp.EventItemRemoved:
		c.Push(SeverityInfo, fmt.Sprintf("%s eliminado del carrito", ev.Name))
	case cartapp.EventCleared:
		c.Push(SeverityInfo, "Carrito vaciado")
	}
}
