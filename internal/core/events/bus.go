package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Event interface {
	EventType() string
	EventID() string
	OccurredAt() time.Time
	Payload() interface{}
}

type BaseEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) EventID() string {
	return e.ID
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

func (e BaseEvent) Payload() interface{} {
	return e.Data
}

type Handler func(ctx context.Context, event Event) error

// Publisher is what services depend on to emit domain events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type EventBus struct {
	handlers map[string][]Handler
	logger   zerolog.Logger
	mu       sync.RWMutex
	wg       sync.WaitGroup
}

func NewEventBus(logger zerolog.Logger) *EventBus {
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   logger.With().Str("component", "event_bus").Logger(),
	}
}

func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	eb.logger.Info().
		Str("event_type", eventType).
		Int("total_handlers", len(eb.handlers[eventType])).
		Msg("event handler registered")
}

// Publish fans the event out to its handlers on separate goroutines. The
// handlers run on a context detached from the request so they outlive it.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	eb.mu.RLock()
	handlers, exists := eb.handlers[event.EventType()]
	eb.mu.RUnlock()

	if !exists || len(handlers) == 0 {
		eb.logger.Debug().Str("event_type", event.EventType()).Msg("no handlers for event type")
		return nil
	}

	eb.logger.Info().
		Str("event_type", event.EventType()).
		Str("event_id", event.EventID()).
		Int("handlers_count", len(handlers)).
		Msg("publishing event")

	detached := context.WithoutCancel(ctx)
	for _, handler := range handlers {
		eb.wg.Add(1)
		go func(h Handler) {
			defer eb.wg.Done()
			if err := h(detached, event); err != nil {
				eb.logger.Error().Err(err).
					Str("event_type", event.EventType()).
					Str("event_id", event.EventID()).
					Msg("event handler failed")
			}
		}(handler)
	}

	return nil
}

func (eb *EventBus) PublishSync(ctx context.Context, event Event) error {
	eb.mu.RLock()
	handlers, exists := eb.handlers[event.EventType()]
	eb.mu.RUnlock()

	if !exists || len(handlers) == 0 {
		eb.logger.Debug().Str("event_type", event.EventType()).Msg("no handlers for event type")
		return nil
	}

	eb.logger.Info().
		Str("event_type", event.EventType()).
		Str("event_id", event.EventID()).
		Int("handlers_count", len(handlers)).
		Msg("publishing event synchronously")

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			eb.logger.Error().Err(err).
				Str("event_type", event.EventType()).
				Str("event_id", event.EventID()).
				Msg("event handler failed")
			return fmt.Errorf("handler failed for event %s: %w", event.EventType(), err)
		}
	}

	return nil
}

// Wait blocks until every handler started by Publish has returned.
func (eb *EventBus) Wait() {
	eb.wg.Wait()
}
