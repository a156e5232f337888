package subscribers

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/fogcast/internal/game/events"
)

// LoggerSubscriber logs events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	eventLogger := ls.logger.With().
		Str("event_type", event.Type()).
		Str("world_id", event.WorldID()).
		Time("timestamp", event.Timestamp()).
		Logger()

	var logEvent *zerolog.Event
	switch ls.logLevel {
	case zerolog.DebugLevel:
		logEvent = eventLogger.Debug()
	case zerolog.InfoLevel:
		logEvent = eventLogger.Info()
	case zerolog.WarnLevel:
		logEvent = eventLogger.Warn()
	case zerolog.ErrorLevel:
		logEvent = eventLogger.Error()
	default:
		logEvent = eventLogger.Info()
	}

	// Add event-specific fields based on type
	switch e := event.(type) {
	case *events.ObserverAddedEvent:
		logEvent.
			Str("observer_id", e.ObserverID).
			Str("name", e.Name).
			Int("x", e.Position.X).
			Int("y", e.Position.Y).
			Uint32("distance", e.Distance)

	case *events.ObserverMovedEvent:
		logEvent.
			Str("observer_id", e.ObserverID).
			Int("from_x", e.From.X).
			Int("from_y", e.From.Y).
			Int("to_x", e.To.X).
			Int("to_y", e.To.Y)

	case *events.ObservationCompletedEvent:
		logEvent.
			Str("observer_id", e.ObserverID).
			Uint64("step", e.Step).
			Stringer("changes", e.Changes).
			Int("visible_cells", e.VisibleCells).
			Int("known_cells", e.KnownCells).
			Dur("duration", e.Duration)

	case *events.CellsDiscoveredEvent:
		logEvent.
			Str("observer_id", e.ObserverID).
			Uint64("step", e.Step).
			Int("discovered", len(e.Cells))

	case *events.TickCompletedEvent:
		logEvent.
			Uint64("step", e.Step).
			Int("observers", e.Observers).
			Dur("duration", e.Duration)
	}

	// In dev mode, also log the full event as JSON
	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	logEvent.Msg("World event")
}
