package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/fogcast/internal/config"
	"github.com/mitchelldurbincs/fogcast/internal/game"
	"github.com/mitchelldurbincs/fogcast/internal/game/mapfile"
	"github.com/mitchelldurbincs/fogcast/internal/logging"
	"github.com/mitchelldurbincs/fogcast/internal/monitoring"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	env := flag.String("env", "", "Environment overlay to merge (loads config.<env>.yaml)")
	mapPath := flag.String("map", "", "YAML map file (empty to use config or generate one)")
	steps := flag.Int("steps", 10, "Number of steps to simulate")
	seed := flag.Int64("seed", 0, "Random seed (0 to use config, then the clock)")
	observers := flag.Int("observers", 1, "Random observers to add when the map places none")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	noColor := flag.Bool("no-color", false, "Disable ANSI colors in rendered views")
	delay := flag.Duration("delay", 0, "Pause between steps")
	exportPath := flag.String("export", "", "Write the world map as YAML to this path before simulating")
	watch := flag.Bool("watch", false, "Reload the config file when it changes")
	flag.Parse()

	// Initialize configuration
	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if err := config.LoadEnvironmentConfig(*env); err != nil {
		log.Fatal().Err(err).Str("env", *env).Msg("Failed to load environment config")
	}
	cfg := config.Get()

	// Use config defaults if not overridden by flags
	if *logLevel == "" {
		*logLevel = cfg.Logging.Level
	}
	if *mapPath != "" {
		config.Set("map.file", *mapPath)
	}
	if *seed == 0 {
		*seed = cfg.Map.Seed
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	logger, err := logging.Setup(os.Stderr, *logLevel, cfg.Logging.Format)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	if *watch {
		config.WatchConfig(func(e fsnotify.Event, next *config.Config, err error) {
			if err != nil {
				log.Warn().Err(err).Str("file", e.Name).Msg("Ignoring invalid config change")
				return
			}
			log.Info().
				Str("file", e.Name).
				Int("distance", next.FOV.Distance).
				Msg("Config reloaded; the running world keeps its settings until restart")
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	rng := rand.New(rand.NewSource(*seed))
	worldCfg := game.WorldConfigFromSettings(logger)
	worldCfg.Rng = rng
	if worldCfg.MapFile == "" {
		worldCfg.RandomObservers = *observers
	}

	log.Info().
		Int64("seed", *seed).
		Str("map", worldCfg.MapFile).
		Int("steps", *steps).
		Uint32("distance", worldCfg.DefaultDistance).
		Msg("Starting fogcast simulation")

	monitor := monitoring.NewObservationMonitor(logger)
	engine, err := game.NewEngineInitializer(worldCfg).Initialize(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create world")
	}
	engine.EventBus().Subscribe(monitor)
	monitor.Start(10 * time.Second)
	defer monitor.Stop()

	if *exportPath != "" {
		if err := exportMap(engine, *exportPath); err != nil {
			log.Fatal().Err(err).Str("path", *exportPath).Msg("Failed to export map")
		}
		log.Info().Str("path", *exportPath).Msg("Map exported")
	}

	if len(engine.Observers()) == 0 {
		log.Warn().Msg("World has no observers; nothing to show")
		return
	}

	opts := game.RenderOptions{Color: !*noColor, ShowVisibility: cfg.Development.ShowVisibility}
	if err := run(ctx, engine, rng, *steps, *delay, opts); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Simulation failed")
	}

	monitor.Report()
	log.Info().Uint64("step", engine.Step()).Msg("Simulation finished")
}

// run wanders every observer one cell per step and prints what the first
// observer knows after each step.
func run(ctx context.Context, engine *game.Engine, rng *rand.Rand, steps int, delay time.Duration, opts game.RenderOptions) error {
	viewer := engine.Observers()[0]
	if err := printView(engine, viewer.ID, viewer.Name, opts); err != nil {
		return err
	}

	for i := 0; i < steps; i++ {
		for _, o := range engine.Observers() {
			if _, _, err := engine.Wander(o.ID, rng); err != nil {
				return fmt.Errorf("wander %s: %w", o.Name, err)
			}
		}

		changes, err := engine.Tick(ctx)
		if err != nil {
			return err
		}
		log.Debug().Uint64("step", engine.Step()).Stringer("changes", changes).Msg("Step completed")

		if err := printView(engine, viewer.ID, viewer.Name, opts); err != nil {
			return err
		}

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

func printView(engine *game.Engine, id, name string, opts game.RenderOptions) error {
	view, err := engine.Render(id, opts)
	if err != nil {
		return err
	}
	fmt.Printf("View of %s:\n%s\n", name, view)
	return nil
}

func exportMap(engine *game.Engine, path string) error {
	observers := engine.Observers()
	spawns := make([]mapfile.ObserverSpawn, 0, len(observers))
	for _, o := range observers {
		spawns = append(spawns, mapfile.ObserverSpawn{Name: o.Name, X: o.Position.X, Y: o.Position.Y, Distance: o.Distance})
	}

	raw, err := mapfile.Marshal(engine.WorldID(), engine.Board(), spawns, game.TerrainOpacity())
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
