// Package events implements the in-process publish/subscribe dispatcher that
// decouples domain actions from notification creation. The bus is an
// explicitly constructed value handed to the services that need it; listener
// registration happens once during wiring, reads dominate afterwards.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Domain event types published on the bus.
const (
	ContactRequestCreated  = "contact_request.created"
	ContactRequestAssigned = "contact_request.assigned"
	AppointmentCreated     = "appointment.created"
	AppointmentCancelled   = "appointment.cancelled"
	CustomerCreated        = "customer.created"
	PasswordResetRequested = "auth.password_reset_requested"
	PasswordResetDone      = "auth.password_reset"
)

// Event is the envelope handlers receive. Payload is event-type specific.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Handler processes one event. Errors are logged by the bus and never reach
// the emitter.
type Handler func(ctx context.Context, ev Event) error

// Relay mirrors events to an external channel (message broker). Optional.
type Relay interface {
	Publish(ctx context.Context, ev Event) error
}

type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	relay    Relay
	lg       *zap.SugaredLogger
	inflight sync.WaitGroup
}

func NewBus(lg *zap.SugaredLogger) *Bus {
	return &Bus{handlers: make(map[string][]Handler), lg: lg}
}

// SetRelay attaches an outbound relay. Call during wiring, before traffic.
func (b *Bus) SetRelay(r Relay) { b.relay = r }

// On registers a handler for an event type.
func (b *Bus) On(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

// Emit dispatches the payload to every registered handler. Handlers run
// asynchronously and independently: one failing or panicking neither blocks
// the others nor propagates to the emitter.
func (b *Bus) Emit(ctx context.Context, eventType string, payload any) {
	ev := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now(),
		Payload:    payload,
	}
	b.mu.RLock()
	hs := b.handlers[eventType]
	b.mu.RUnlock()

	for _, h := range hs {
		h := h
		b.inflight.Add(1)
		go func() {
			defer b.inflight.Done()
			defer func() {
				if rec := recover(); rec != nil {
					b.lg.Errorw("event handler panicked", "event", ev.Type, "id", ev.ID, "panic", rec)
				}
			}()
			if err := h(withoutCancel(ctx), ev); err != nil {
				b.lg.Errorw("event handler failed", "event", ev.Type, "id", ev.ID, "error", err)
			}
		}()
	}

	if b.relay != nil {
		b.inflight.Add(1)
		go func() {
			defer b.inflight.Done()
			if err := b.relay.Publish(withoutCancel(ctx), ev); err != nil {
				b.lg.Warnw("event relay failed", "event", ev.Type, "id", ev.ID, "error", err)
			}
		}()
	}
}

// Wait blocks until all in-flight handlers have finished. Intended for
// shutdown and tests.
func (b *Bus) Wait() { b.inflight.Wait() }

// Handlers outlive the emitting request, so they must not die with its
// context.
func withoutCancel(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
