package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/fogcast/internal/game/core"
	"github.com/mitchelldurbincs/fogcast/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/fogcast/internal/game/mapfile"
	"github.com/mitchelldurbincs/fogcast/internal/game/mapgen"
)

// WorldConfig describes how to build a ready-to-run engine
type WorldConfig struct {
	WorldID string

	// Map source: MapFile wins over generation when set
	MapFile string
	Width   int
	Height  int
	MapGen  *mapgen.MapConfig // nil uses mapgen defaults for Width x Height
	Terrain mapgen.TerrainOpacity

	DefaultDistance uint32
	RememberContent bool
	OccupantOpacity float64

	// RandomObservers are spawned on open cells in addition to any the map places
	RandomObservers int
	// VerboseEvents subscribes an event logger to the engine's bus
	VerboseEvents bool

	Rng    *rand.Rand
	Logger zerolog.Logger
}

// EngineInitializer handles building a world and its engine
type EngineInitializer struct {
	config WorldConfig
	logger zerolog.Logger
}

// NewEngineInitializer creates a new engine initializer
func NewEngineInitializer(cfg WorldConfig) *EngineInitializer {
	logger := cfg.Logger.With().Str("component", "initializer").Logger()
	return &EngineInitializer{
		config: cfg,
		logger: logger,
	}
}

// Initialize builds the board, creates the engine, spawns observers and runs
// the first tick so every observer starts with a view.
func (ei *EngineInitializer) Initialize(ctx context.Context) (*Engine, error) {
	select {
	case <-ctx.Done():
		ei.logger.Error().Err(ctx.Err()).Msg("Engine creation cancelled before start")
		return nil, ctx.Err()
	default:
	}

	ei.setupDefaults()

	board, spawns, err := ei.loadBoard()
	if err != nil {
		return nil, fmt.Errorf("board setup failed: %w", err)
	}

	engine := NewEngine(board, EngineConfig{
		WorldID:         ei.config.WorldID,
		DefaultDistance: ei.config.DefaultDistance,
		RememberContent: ei.config.RememberContent,
		OccupantOpacity: ei.config.OccupantOpacity,
		Logger:          ei.config.Logger,
	})

	if ei.config.VerboseEvents {
		sub := subscribers.NewLoggerSubscriber("event-logger", ei.config.Logger, zerolog.DebugLevel)
		engine.EventBus().Subscribe(sub)
	}

	if err := ei.spawnObservers(engine, spawns); err != nil {
		return nil, fmt.Errorf("observer setup failed: %w", err)
	}

	if _, err := engine.Tick(ctx); err != nil {
		return nil, fmt.Errorf("initial observation failed: %w", err)
	}

	ei.logger.Info().
		Str("world_id", engine.WorldID()).
		Int("width", board.W).
		Int("height", board.H).
		Int("observers", len(engine.Observers())).
		Msg("Engine created successfully")

	return engine, nil
}

func (ei *EngineInitializer) setupDefaults() {
	if ei.config.Rng == nil {
		ei.logger.Debug().Msg("No RNG provided, creating new seeded RNG")
		ei.config.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if ei.config.Terrain == (mapgen.TerrainOpacity{}) {
		ei.config.Terrain = mapgen.DefaultTerrainOpacity()
	}
}

func (ei *EngineInitializer) loadBoard() (*core.Board, []mapfile.ObserverSpawn, error) {
	if ei.config.MapFile != "" {
		m, err := mapfile.Load(ei.config.MapFile, ei.config.Terrain)
		if err != nil {
			return nil, nil, err
		}
		return m.Board, m.Observers, nil
	}

	if ei.config.Width <= 0 || ei.config.Height <= 0 {
		return nil, nil, fmt.Errorf("map size %dx%d: %w", ei.config.Width, ei.config.Height, core.ErrInvalidMap)
	}
	mapCfg := mapgen.DefaultMapConfig(ei.config.Width, ei.config.Height)
	if ei.config.MapGen != nil {
		mapCfg = *ei.config.MapGen
		mapCfg.Width, mapCfg.Height = ei.config.Width, ei.config.Height
	}
	mapCfg.Opacity = ei.config.Terrain
	return mapgen.NewGenerator(mapCfg, ei.config.Rng).GenerateMap(), nil, nil
}

func (ei *EngineInitializer) spawnObservers(engine *Engine, spawns []mapfile.ObserverSpawn) error {
	for _, s := range spawns {
		if _, err := engine.AddObserver(s.Name, s.Position(), s.Distance); err != nil {
			return err
		}
	}

	for i := 0; i < ei.config.RandomObservers; i++ {
		pos, ok := mapgen.RandomOpenCoordinate(engine.Board(), ei.config.Rng)
		if !ok {
			return fmt.Errorf("no open cell for random observer: %w", core.ErrInvalidMap)
		}
		name := fmt.Sprintf("scout-%d", i+1)
		if _, err := engine.AddObserver(name, pos, 0); err != nil {
			return err
		}
	}
	return nil
}
