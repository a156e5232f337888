package events

import (
	"time"

	"github.com/mitchelldurbincs/fogcast/internal/game/core"
	"github.com/mitchelldurbincs/fogcast/internal/game/shadowcast"
)

// Event type constants
const (
	TypeObserverAdded        = "observer.added"
	TypeObserverMoved        = "observer.moved"
	TypeObservationCompleted = "observation.completed"
	TypeCellsDiscovered      = "cells.discovered"
	TypeTickCompleted        = "tick.completed"
)

// ObserverAddedEvent is published when an observer is placed in the world
type ObserverAddedEvent struct {
	BaseEvent
	ObserverID string
	Name       string
	Position   core.Coordinate
	Distance   uint32
}

// NewObserverAddedEvent creates a new ObserverAddedEvent
func NewObserverAddedEvent(worldID, observerID, name string, pos core.Coordinate, distance uint32) *ObserverAddedEvent {
	return &ObserverAddedEvent{
		BaseEvent:  newBase(TypeObserverAdded, worldID),
		ObserverID: observerID,
		Name:       name,
		Position:   pos,
		Distance:   distance,
	}
}

// ObserverMovedEvent is published when an observer changes position
type ObserverMovedEvent struct {
	BaseEvent
	ObserverID string
	From       core.Coordinate
	To         core.Coordinate
}

// NewObserverMovedEvent creates a new ObserverMovedEvent
func NewObserverMovedEvent(worldID, observerID string, from, to core.Coordinate) *ObserverMovedEvent {
	return &ObserverMovedEvent{
		BaseEvent:  newBase(TypeObserverMoved, worldID),
		ObserverID: observerID,
		From:       from,
		To:         to,
	}
}

// ObservationCompletedEvent is published after an observer's field of view is recomputed
type ObservationCompletedEvent struct {
	BaseEvent
	ObserverID   string
	Step         uint64
	Changes      shadowcast.Metadata
	VisibleCells int
	KnownCells   int
	Duration     time.Duration
}

// NewObservationCompletedEvent creates a new ObservationCompletedEvent
func NewObservationCompletedEvent(worldID, observerID string, step uint64, changes shadowcast.Metadata, visible, known int, duration time.Duration) *ObservationCompletedEvent {
	return &ObservationCompletedEvent{
		BaseEvent:    newBase(TypeObservationCompleted, worldID),
		ObserverID:   observerID,
		Step:         step,
		Changes:      changes,
		VisibleCells: visible,
		KnownCells:   known,
		Duration:     duration,
	}
}

// CellsDiscoveredEvent is published when an observation reveals cells the
// observer had never seen before.
type CellsDiscoveredEvent struct {
	BaseEvent
	ObserverID string
	Step       uint64
	Cells      []core.Coordinate
}

// NewCellsDiscoveredEvent creates a new CellsDiscoveredEvent
func NewCellsDiscoveredEvent(worldID, observerID string, step uint64, cells []core.Coordinate) *CellsDiscoveredEvent {
	return &CellsDiscoveredEvent{
		BaseEvent:  newBase(TypeCellsDiscovered, worldID),
		ObserverID: observerID,
		Step:       step,
		Cells:      cells,
	}
}

// TickCompletedEvent is published once every observer has been updated for a step
type TickCompletedEvent struct {
	BaseEvent
	Step      uint64
	Observers int
	Duration  time.Duration
}

// NewTickCompletedEvent creates a new TickCompletedEvent
func NewTickCompletedEvent(worldID string, step uint64, observers int, duration time.Duration) *TickCompletedEvent {
	return &TickCompletedEvent{
		BaseEvent: newBase(TypeTickCompleted, worldID),
		Step:      step,
		Observers: observers,
		Duration:  duration,
	}
}
