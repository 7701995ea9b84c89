package events

import (
	"context"
	"sync"
	"time"

	"raffler/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeTicketsReserved   EventType = "tickets_reserved"
	EventTypeTicketsConfirmed  EventType = "tickets_confirmed"
	EventTypeRaffleDrawn       EventType = "raffle_drawn"
	EventTypeDonationConfirmed EventType = "donation_confirmed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// TicketsReservedEvent represents a purchase batch entering pending state
type TicketsReservedEvent struct {
	RaffleID      int64
	PurchaseID    uuid.UUID
	TicketNumbers []int
	BuyerName     string
	BuyerEmail    string
	TotalAmount   float64
}

func (e TicketsReservedEvent) Type() EventType {
	return EventTypeTicketsReserved
}

// TicketsConfirmedEvent represents tickets whose payment resolved
type TicketsConfirmedEvent struct {
	RaffleID      int64
	TicketNumbers []int
	NewStatus     models.PaymentStatus
	BuyerEmail    string
}

func (e TicketsConfirmedEvent) Type() EventType {
	return EventTypeTicketsConfirmed
}

// RaffleDrawnEvent represents a raffle that was sealed with a winner
type RaffleDrawnEvent struct {
	RaffleID     int64
	RaffleTitle  string
	WinnerNumber int
	WinnerName   string
	WinnerEmail  string
	DrawnAt      time.Time
}

func (e RaffleDrawnEvent) Type() EventType {
	return EventTypeRaffleDrawn
}

// DonationConfirmedEvent represents a donation whose payment resolved
type DonationConfirmedEvent struct {
	DonationID int64
	DonorName  string
	DonorEmail string
	Amount     float64
	NewStatus  models.PaymentStatus
}

func (e DonationConfirmedEvent) Type() EventType {
	return EventTypeDonationConfirmed
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus stashes events raised inside a unit of work and forwards
// them to the real bus only after the transaction commits. Notifications are
// never sent for rolled-back state.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing pending events")

	// Use a background context so event handlers outlive the request
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard is called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
