package events

import (
	"context"
	"sync"
	"time"
)

// Type identifies a kind of catalog event.
type Type string

const (
	// OfferCreated is emitted after a new offer is persisted.
	OfferCreated Type = "offer.created"
	// OfferUpdated is emitted after a partial update, including the
	// single-field is_active toggle.
	OfferUpdated Type = "offer.updated"
	// OfferDeleted is emitted after a hard delete.
	OfferDeleted Type = "offer.deleted"
	// OffersReordered is emitted after an adjacent-swap reorder commits.
	OffersReordered Type = "offers.reordered"
	// ContactReceived is emitted when the contact form is submitted; the
	// store-notification mail hook subscribes to it.
	ContactReceived Type = "contact.received"
	// NewsletterSubscribed is emitted on a new or reactivated subscription.
	NewsletterSubscribed Type = "newsletter.subscribed"
)

// Event is a single occurrence published to subscribers.
type Event struct {
	Type      Type
	Timestamp time.Time
	Data      interface{}
}

// Handler processes a published event. Handlers must not block for long; they
// run synchronously on the publishing goroutine.
type Handler func(ctx context.Context, event Event)

// Manager is a minimal in-process pub/sub hub. There is deliberately no
// stored "campaign ended" event: an offer leaves the current-offers
// projection purely by wall-clock passage, with nothing published.
type Manager struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
	enabled  bool
}

// NewManager creates an enabled event manager with no subscribers.
func NewManager() *Manager {
	return &Manager{
		handlers: make(map[Type][]Handler),
		enabled:  true,
	}
}

// SetEnabled turns event delivery on or off globally.
func (m *Manager) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// Subscribe registers a handler for one event type.
func (m *Manager) Subscribe(t Type, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[t] = append(m.handlers[t], h)
}

// Publish delivers an event to every subscriber of its type.
func (m *Manager) Publish(ctx context.Context, t Type, data interface{}) {
	m.mu.RLock()
	enabled := m.enabled
	handlers := m.handlers[t]
	m.mu.RUnlock()

	if !enabled || len(handlers) == 0 {
		return
	}

	event := Event{Type: t, Timestamp: time.Now().UTC(), Data: data}
	for _, h := range handlers {
		h(ctx, event)
	}
}
