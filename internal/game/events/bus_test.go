package events

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/fogcast/internal/game/core"
	"github.com/mitchelldurbincs/fogcast/internal/game/shadowcast"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	// Test function handler
	received := false
	var receivedEvent Event

	bus.SubscribeFunc(TypeObserverAdded, func(e Event) {
		received = true
		receivedEvent = e
	})

	event := NewObserverAddedEvent("test-world", "obs-1", "scout", core.Coordinate{X: 2, Y: 3}, 8)
	bus.Publish(event)

	assert.True(t, received, "Event handler should have been called")
	require.NotNil(t, receivedEvent, "Event should have been received")
	assert.Equal(t, TypeObserverAdded, receivedEvent.Type())
	assert.Equal(t, "test-world", receivedEvent.WorldID())
	assert.False(t, receivedEvent.Timestamp().IsZero())

	added, ok := receivedEvent.(*ObserverAddedEvent)
	require.True(t, ok)
	assert.Equal(t, "scout", added.Name)
	assert.Equal(t, uint32(8), added.Distance)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()

	handler1Called := false
	handler2Called := false

	id1 := bus.SubscribeFunc(TypeTickCompleted, func(e Event) {
		handler1Called = true
	})
	id2 := bus.SubscribeFunc(TypeTickCompleted, func(e Event) {
		handler2Called = true
	})
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, 2, bus.GetFuncHandlerCount(TypeTickCompleted))

	bus.Publish(NewTickCompletedEvent("test-world", 1, 2, time.Millisecond))

	assert.True(t, handler1Called, "Handler 1 should have been called")
	assert.True(t, handler2Called, "Handler 2 should have been called")
}

// TestSubscriber is a test implementation of Subscriber
type TestSubscriber struct {
	id              string
	interestedTypes map[string]bool
	receivedEvents  []Event
}

func (ts *TestSubscriber) ID() string {
	return ts.id
}

func (ts *TestSubscriber) HandleEvent(e Event) {
	ts.receivedEvents = append(ts.receivedEvents, e)
}

func (ts *TestSubscriber) InterestedIn(eventType string) bool {
	if ts.interestedTypes == nil {
		return true
	}
	return ts.interestedTypes[eventType]
}

func TestEventBusSubscriber(t *testing.T) {
	bus := NewEventBus()

	subscriber := &TestSubscriber{
		id: "test-subscriber",
		interestedTypes: map[string]bool{
			TypeObserverMoved:        true,
			TypeObservationCompleted: true,
		},
	}

	bus.Subscribe(subscriber)
	assert.Equal(t, 1, bus.GetSubscriberCount())

	bus.Publish(NewObserverMovedEvent("test-world", "obs-1", core.Coordinate{X: 1, Y: 1}, core.Coordinate{X: 2, Y: 1}))
	bus.Publish(NewCellsDiscoveredEvent("test-world", "obs-1", 1, []core.Coordinate{{X: 3, Y: 1}}))
	bus.Publish(NewObservationCompletedEvent("test-world", "obs-1", 1, shadowcast.NewlySeen, 12, 30, time.Microsecond))

	// Should only receive the moved and completed events
	require.Len(t, subscriber.receivedEvents, 2)
	assert.Equal(t, TypeObserverMoved, subscriber.receivedEvents[0].Type())
	assert.Equal(t, TypeObservationCompleted, subscriber.receivedEvents[1].Type())

	bus.Unsubscribe(subscriber.ID())
	assert.Equal(t, 0, bus.GetSubscriberCount())
	bus.Publish(NewObserverMovedEvent("test-world", "obs-1", core.Coordinate{X: 2, Y: 1}, core.Coordinate{X: 3, Y: 1}))

	assert.Len(t, subscriber.receivedEvents, 2)
}

type panickingSubscriber struct{}

func (panickingSubscriber) ID() string               { return "panicker" }
func (panickingSubscriber) HandleEvent(Event)        { panic("boom") }
func (panickingSubscriber) InterestedIn(string) bool { return true }

func TestEventBusRecoversFromPanics(t *testing.T) {
	var buf bytes.Buffer
	bus := NewEventBusWithLogger(zerolog.New(&buf))

	bus.Subscribe(panickingSubscriber{})
	bus.SubscribeFunc(TypeObserverAdded, func(Event) { panic("handler boom") })

	called := false
	bus.SubscribeFunc(TypeObserverAdded, func(Event) { called = true })

	assert.NotPanics(t, func() {
		bus.Publish(NewObserverAddedEvent("w", "o", "n", core.Coordinate{}, 1))
	})
	assert.True(t, called, "later handlers still run")
	assert.Contains(t, buf.String(), "Event receiver panicked")
	assert.Contains(t, buf.String(), `"subscriber":"panicker"`)
	assert.Contains(t, buf.String(), `"handler":"`+TypeObserverAdded+`#1"`)
}

type orderSubscriber struct {
	id  string
	log *[]string
}

func (s orderSubscriber) ID() string                       { return s.id }
func (s orderSubscriber) HandleEvent(Event)                { *s.log = append(*s.log, s.id) }
func (orderSubscriber) InterestedIn(eventType string) bool { return true }

func TestEventBusDeliveryOrder(t *testing.T) {
	bus := NewEventBusWithLogger(zerolog.Nop())
	var got []string

	bus.Subscribe(orderSubscriber{id: "b", log: &got})
	bus.Subscribe(orderSubscriber{id: "a", log: &got})
	bus.SubscribeFunc(TypeTickCompleted, func(Event) { got = append(got, "func") })
	bus.Subscribe(orderSubscriber{id: "c", log: &got})

	// Re-subscribing an ID moves it to the back instead of adding a duplicate
	bus.Subscribe(orderSubscriber{id: "b", log: &got})
	assert.Equal(t, 3, bus.GetSubscriberCount())

	bus.Publish(NewTickCompletedEvent("w", 1, 0, time.Millisecond))
	assert.Equal(t, []string{"a", "c", "b", "func"}, got)
}

func TestEventBusSubscribeWhilePublishing(t *testing.T) {
	bus := NewEventBusWithLogger(zerolog.Nop())
	late := 0
	bus.SubscribeFunc(TypeTickCompleted, func(Event) {
		bus.SubscribeFunc(TypeTickCompleted, func(Event) { late++ })
	})

	bus.Publish(NewTickCompletedEvent("w", 1, 0, time.Millisecond))
	assert.Equal(t, 0, late, "handlers added during delivery wait for the next event")
	assert.Equal(t, 2, bus.GetFuncHandlerCount(TypeTickCompleted))

	bus.Publish(NewTickCompletedEvent("w", 2, 0, time.Millisecond))
	assert.Equal(t, 1, late)
}
