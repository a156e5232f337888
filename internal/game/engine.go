package game

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/fogcast/internal/game/core"
	"github.com/mitchelldurbincs/fogcast/internal/game/events"
	"github.com/mitchelldurbincs/fogcast/internal/game/knowledge"
	"github.com/mitchelldurbincs/fogcast/internal/game/shadowcast"
)

// MaxViewDistance is the largest view distance an observer may be given.
const MaxViewDistance = math.MaxUint16

// EngineConfig holds the settings an Engine is created with
type EngineConfig struct {
	WorldID         string // generated when empty
	DefaultDistance uint32
	RememberContent bool
	OccupantOpacity float64
	EventBus        *events.EventBus // created when nil
	Logger          zerolog.Logger
}

// Observer is an entity that sees the board and remembers what it saw
type Observer struct {
	ID       string
	Name     string
	Position core.Coordinate
	Distance uint32

	occupantID uint64
	knowledge  *knowledge.Grid
}

// Engine owns a board and the observers moving around on it. Each observer
// has its own knowledge grid, refreshed by shadowcasting from its position.
// Engine methods are safe for concurrent use. Events are published while the
// engine is locked, so handlers must not call back into it.
type Engine struct {
	mu sync.Mutex

	worldID   string
	board     *core.Board
	observers map[string]*Observer
	order     []string
	step      uint64

	env          *shadowcast.Env
	config       EngineConfig
	eventBus     *events.EventBus
	logger       zerolog.Logger
	nextOccupant uint64
}

// NewEngine creates an engine over board
func NewEngine(board *core.Board, cfg EngineConfig) *Engine {
	if cfg.WorldID == "" {
		cfg.WorldID = uuid.NewString()
	}
	if cfg.EventBus == nil {
		cfg.EventBus = events.NewEventBusWithLogger(cfg.Logger)
	}
	cfg.OccupantOpacity = core.ClampUnit(cfg.OccupantOpacity)

	e := &Engine{
		worldID:   cfg.WorldID,
		board:     board,
		observers: make(map[string]*Observer),
		env:       shadowcast.NewEnv(),
		config:    cfg,
		eventBus:  cfg.EventBus,
		logger: cfg.Logger.With().
			Str("component", "engine").
			Str("world_id", cfg.WorldID).
			Logger(),
	}

	e.logger.Info().
		Int("width", board.W).
		Int("height", board.H).
		Uint32("default_distance", cfg.DefaultDistance).
		Msg("Engine created")
	return e
}

// WorldID returns the identifier stamped on every event the engine publishes
func (e *Engine) WorldID() string { return e.worldID }

// EventBus returns the bus the engine publishes to
func (e *Engine) EventBus() *events.EventBus { return e.eventBus }

// Board returns the board. Callers must not modify it while the engine is in use.
func (e *Engine) Board() *core.Board { return e.board }

// Step returns the current time step
func (e *Engine) Step() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step
}

// AddObserver places a new observer at pos and returns its ID. A zero
// distance selects the engine's default view distance.
func (e *Engine) AddObserver(name string, pos core.Coordinate, distance uint32) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if distance == 0 {
		distance = e.config.DefaultDistance
	}
	if distance > MaxViewDistance {
		return "", fmt.Errorf("observer %q distance %d: %w", name, distance, core.ErrInvalidDistance)
	}
	for _, o := range e.observers {
		if o.Name == name {
			return "", fmt.Errorf("observer %q: %w", name, core.ErrDuplicateObserver)
		}
	}
	if err := e.checkDestination(pos); err != nil {
		return "", fmt.Errorf("observer %q: %w", name, err)
	}

	e.nextOccupant++
	o := &Observer{
		ID:         uuid.NewString(),
		Name:       name,
		Position:   pos,
		Distance:   distance,
		occupantID: e.nextOccupant,
		knowledge:  knowledge.NewGrid(e.board.W, e.board.H, e.logger),
	}
	occupant := core.Occupant{ID: o.occupantID, Kind: core.OccupantObserver, Opacity: e.config.OccupantOpacity}
	if err := e.board.AddOccupant(pos, occupant); err != nil {
		return "", fmt.Errorf("observer %q: %w", name, err)
	}

	e.observers[o.ID] = o
	e.order = append(e.order, o.ID)

	e.logger.Info().
		Str("observer_id", o.ID).
		Str("name", name).
		Str("position", pos.String()).
		Uint32("distance", distance).
		Msg("Observer added")
	e.eventBus.Publish(events.NewObserverAddedEvent(e.worldID, o.ID, name, pos, distance))

	return o.ID, nil
}

// RemoveObserver takes an observer off the board and forgets its knowledge
func (e *Engine) RemoveObserver(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, err := e.observer(id)
	if err != nil {
		return err
	}
	if _, err := e.board.RemoveOccupant(o.Position, o.occupantID); err != nil {
		return fmt.Errorf("remove observer %s: %w", id, err)
	}
	delete(e.observers, id)
	e.order = slices.DeleteFunc(e.order, func(other string) bool { return other == id })

	e.logger.Info().Str("observer_id", id).Msg("Observer removed")
	return nil
}

// MoveObserver moves an observer to pos and refreshes what it can see
func (e *Engine) MoveObserver(id string, pos core.Coordinate) (shadowcast.Metadata, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, err := e.observer(id)
	if err != nil {
		return 0, err
	}
	return e.moveObserver(o, pos)
}

// moveObserver expects e.mu to be held
func (e *Engine) moveObserver(o *Observer, pos core.Coordinate) (shadowcast.Metadata, error) {
	if err := e.checkDestination(pos); err != nil {
		return 0, fmt.Errorf("move observer %s: %w", o.ID, err)
	}

	from := o.Position
	if err := e.board.MoveOccupant(from, pos, o.occupantID); err != nil {
		return 0, fmt.Errorf("move observer %s: %w", o.ID, err)
	}
	o.Position = pos

	e.logger.Debug().
		Str("observer_id", o.ID).
		Str("from", from.String()).
		Str("to", pos.String()).
		Msg("Observer moved")
	e.eventBus.Publish(events.NewObserverMovedEvent(e.worldID, o.ID, from, pos))

	return e.observe(o)
}

// Observe refreshes one observer's knowledge for the current time step
func (e *Engine) Observe(id string) (shadowcast.Metadata, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, err := e.observer(id)
	if err != nil {
		return 0, err
	}
	return e.observe(o)
}

// Tick advances time by one step and refreshes every observer, in the order
// they were added. The merged changes of all observers are returned.
func (e *Engine) Tick(ctx context.Context) (shadowcast.Metadata, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	e.step++

	var merged shadowcast.Metadata
	for _, id := range e.order {
		if err := ctx.Err(); err != nil {
			e.logger.Warn().Err(err).Uint64("step", e.step).Msg("Tick cancelled")
			return merged, err
		}
		m, err := e.observe(e.observers[id])
		merged = merged.Merge(m)
		if err != nil {
			return merged, err
		}
	}

	duration := time.Since(start)
	e.logger.Debug().
		Uint64("step", e.step).
		Int("observers", len(e.order)).
		Stringer("changes", merged).
		Dur("duration", duration).
		Msg("Tick completed")
	e.eventBus.Publish(events.NewTickCompletedEvent(e.worldID, e.step, len(e.order), duration))

	return merged, nil
}

// Observer returns a copy of an observer's public state
func (e *Engine) Observer(id string) (Observer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, err := e.observer(id)
	if err != nil {
		return Observer{}, err
	}
	return *o, nil
}

// Observers returns copies of all observers in the order they were added
func (e *Engine) Observers() []Observer {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Observer, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, *e.observers[id])
	}
	return out
}

// Knowledge returns the knowledge grid of an observer
func (e *Engine) Knowledge(id string) (*knowledge.Grid, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, err := e.observer(id)
	if err != nil {
		return nil, err
	}
	return o.knowledge, nil
}

func (e *Engine) observer(id string) (*Observer, error) {
	o, ok := e.observers[id]
	if !ok {
		return nil, fmt.Errorf("observer %s: %w", id, core.ErrUnknownObserver)
	}
	return o, nil
}

func (e *Engine) checkDestination(pos core.Coordinate) error {
	tile := e.board.GetTile(pos.X, pos.Y)
	if tile == nil {
		return fmt.Errorf("position %s: %w", pos, core.ErrInvalidCoordinates)
	}
	if !tile.IsPassable() {
		return fmt.Errorf("position %s is %s: %w", pos, tile.Type, core.ErrBlocked)
	}
	return nil
}
