package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/events"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/ports"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/logging"
)

// EventType is an alias to the domain type
type EventType = events.EventType

// RecordEventPayload is the payload of record events
type RecordEventPayload struct {
	ModuleID string               `json:"moduleId"`
	Record   *models.ModuleRecord `json:"record"`
	ActorID  string               `json:"actorId"`
}

// SchemaEventPayload is the payload of module and field events
type SchemaEventPayload struct {
	ModuleID string `json:"moduleId"`
	OwnerID  string `json:"ownerId,omitempty"`
	FieldKey string `json:"fieldKey,omitempty"`
	// Affected counts rows touched by cascades and scrubs
	Affected int64 `json:"affected,omitempty"`
}

// EventHandler is a function that handles an event.
// Using the type from ports to ensure interface compatibility.
type EventHandler = ports.EventHandler

type subscription struct {
	id      uint64
	handler EventHandler
}

// EventBus is an in-process publish-subscribe bus for lifecycle events.
// It implements ports.EventPublisher.
type EventBus struct {
	handlers map[EventType][]subscription
	nextID   uint64
	mu       sync.RWMutex
	log      *logrus.Entry
}

// Ensure EventBus implements ports.EventPublisher at compile time
var _ ports.EventPublisher = (*EventBus)(nil)

// NewEventBus creates a new EventBus instance
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]subscription),
		log:      logging.Component("event_bus"),
	}
}

// Subscribe registers a handler for a specific event type.
// Returns an unsubscribe function.
func (eb *EventBus) Subscribe(eventType EventType, handler EventHandler) func() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.nextID++
	id := eb.nextID
	eb.handlers[eventType] = append(eb.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()

		subs := eb.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				eb.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Publish runs every handler of the event type in subscription order and
// stops at the first failure.
func (eb *EventBus) Publish(ctx context.Context, eventType EventType, payload interface{}) error {
	eb.mu.RLock()
	subs := eb.handlers[eventType]
	eb.mu.RUnlock()

	for _, s := range subs {
		if err := s.handler(ctx, payload); err != nil {
			return fmt.Errorf("EventBus handler error for %s: %w", eventType, err)
		}
	}
	return nil
}

// notify publishes an event whose mutation has already committed. Handler
// failures cannot undo it, so they are logged instead of returned.
func (eb *EventBus) notify(ctx context.Context, eventType EventType, payload interface{}) {
	if eb == nil {
		return
	}
	started := time.Now()
	if err := eb.Publish(ctx, eventType, payload); err != nil {
		eb.log.WithError(err).WithField("event", eventType.String()).Warn("⚠️  Event handler failed")
		return
	}
	eb.log.WithFields(logrus.Fields{
		"event":   eventType.String(),
		"elapsed": time.Since(started),
	}).Debug("📣 Event published")
}

// Clear removes all handlers (useful for testing)
func (eb *EventBus) Clear() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers = make(map[EventType][]subscription)
}
