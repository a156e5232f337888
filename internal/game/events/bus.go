package events

import (
	"slices"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EventBus delivers world events synchronously, on the publishing goroutine.
// Subscribers are notified in the order they subscribed, then the function
// handlers registered for the event's type. A panicking receiver is logged
// and skipped.
type EventBus struct {
	mu           sync.RWMutex
	subscribers  []Subscriber
	funcHandlers map[string][]EventHandler
	logger       zerolog.Logger
}

var _ Bus = (*EventBus)(nil)

// NewEventBus creates a bus logging through the global logger
func NewEventBus() *EventBus {
	return NewEventBusWithLogger(log.Logger)
}

func NewEventBusWithLogger(logger zerolog.Logger) *EventBus {
	return &EventBus{
		funcHandlers: make(map[string][]EventHandler),
		logger:       logger.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers subscriber, replacing any earlier subscriber with the same ID
func (eb *EventBus) Subscribe(subscriber Subscriber) {
	eb.mu.Lock()
	eb.subscribers = slices.DeleteFunc(eb.subscribers, func(s Subscriber) bool { return s.ID() == subscriber.ID() })
	eb.subscribers = append(eb.subscribers, subscriber)
	eb.mu.Unlock()

	eb.logger.Debug().Str("subscriber_id", subscriber.ID()).Msg("Subscribed")
}

func (eb *EventBus) Unsubscribe(subscriberID string) {
	eb.mu.Lock()
	eb.subscribers = slices.DeleteFunc(eb.subscribers, func(s Subscriber) bool { return s.ID() == subscriberID })
	eb.mu.Unlock()

	eb.logger.Debug().Str("subscriber_id", subscriberID).Msg("Unsubscribed")
}

// SubscribeFunc registers handler for one event type and returns a label for it
func (eb *EventBus) SubscribeFunc(eventType string, handler EventHandler) string {
	eb.mu.Lock()
	eb.funcHandlers[eventType] = append(eb.funcHandlers[eventType], handler)
	label := eventType + "#" + strconv.Itoa(len(eb.funcHandlers[eventType]))
	eb.mu.Unlock()

	eb.logger.Debug().Str("event_type", eventType).Str("handler", label).Msg("Handler registered")
	return label
}

// Publish hands event to every interested receiver before returning.
// Receivers may subscribe or unsubscribe while handling it; the change
// applies from the next event.
func (eb *EventBus) Publish(event Event) {
	eventType := event.Type()

	eb.mu.RLock()
	subscribers := slices.Clone(eb.subscribers)
	handlers := slices.Clone(eb.funcHandlers[eventType])
	eb.mu.RUnlock()

	eb.logger.Trace().
		Str("event_type", eventType).
		Str("world_id", event.WorldID()).
		Msg("Publishing")

	for _, s := range subscribers {
		if s.InterestedIn(eventType) {
			eb.deliver(event, "subscriber", s.ID(), s.HandleEvent)
		}
	}
	for i, h := range handlers {
		eb.deliver(event, "handler", eventType+"#"+strconv.Itoa(i+1), h)
	}
}

func (eb *EventBus) deliver(event Event, kind, name string, receive EventHandler) {
	defer func() {
		if r := recover(); r != nil {
			eb.logger.Error().
				Str("event_type", event.Type()).
				Str(kind, name).
				Interface("panic", r).
				Msg("Event receiver panicked")
		}
	}()
	receive(event)
}

// GetSubscriberCount returns the number of registered subscribers
func (eb *EventBus) GetSubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// GetFuncHandlerCount returns the number of function handlers for eventType
func (eb *EventBus) GetFuncHandlerCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.funcHandlers[eventType])
}
