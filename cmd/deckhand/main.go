// Deckhand - Stream Deck key controller daemon
//
// Deckhand drives an Elgato Stream Deck as a programmable key panel:
// it renders configured layouts onto the keys, runs the bound action when
// a key is pressed, and injects synthetic keyboard input into the host.
//
// The daemon is built to survive the messy cases: the device being plugged
// in after boot, actions that fail or panic, and shutdown paths that must
// never leave a synthetic key held down.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/deckhand/migrations"

	"github.com/nerrad567/deckhand/internal/actions"
	"github.com/nerrad567/deckhand/internal/controller"
	"github.com/nerrad567/deckhand/internal/deck"
	"github.com/nerrad567/deckhand/internal/history"
	"github.com/nerrad567/deckhand/internal/infrastructure/config"
	"github.com/nerrad567/deckhand/internal/infrastructure/database"
	"github.com/nerrad567/deckhand/internal/infrastructure/logging"
	"github.com/nerrad567/deckhand/internal/input"
	"github.com/nerrad567/deckhand/internal/layout"
	"github.com/nerrad567/deckhand/internal/lifecycle"
	"github.com/nerrad567/deckhand/internal/process"
	"github.com/nerrad567/deckhand/internal/render"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting deckhand",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// The lifecycle manager exists before anything it cleans up, so every
	// exit path below can call Cleanup unconditionally.
	lc := lifecycle.New(log)
	defer func() {
		if cleanupErr := lc.Cleanup(context.Background()); cleanupErr != nil {
			log.Error("cleanup errors on exit", "error", cleanupErr)
		}
	}()

	// Press history (optional)
	recorder, closeDB, err := openHistory(ctx, cfg, log)
	if err != nil {
		return err
	}
	if closeDB != nil {
		defer closeDB()
	}

	// Managed injection daemon (ydotoold), if configured
	if cfg.Input.Backend == "exec" && cfg.Input.Daemon.Managed {
		daemon := process.NewManager(process.Config{
			Name:               "injection daemon",
			Binary:             cfg.Input.Daemon.Binary,
			Args:               cfg.Input.Daemon.Args,
			RestartOnFailure:   true,
			MaxRestartAttempts: cfg.Input.Daemon.MaxRestartAttempts,
		})
		daemon.SetLogger(log)
		if err := daemon.Start(ctx); err != nil {
			return fmt.Errorf("starting injection daemon: %w", err)
		}
		// Stopped by Cleanup after the release batch, never before it.
		lc.SetDaemon(daemon)
	}

	// Input injector
	injector, err := buildInjector(cfg.Input)
	if err != nil {
		return fmt.Errorf("creating input injector: %w", err)
	}
	lc.SetInjector(injector)
	log.Info("input injector ready", "backend", cfg.Input.Backend)

	// Find and open the device. This blocks while nothing is plugged in.
	device, err := deck.Acquire(ctx, deck.Options{
		Timeout:      cfg.Deck.Discovery.GetTimeout(),
		PollInterval: cfg.Deck.Discovery.GetPollInterval(),
		Logger:       log,
	})
	if err != nil {
		return fmt.Errorf("acquiring device: %w", err)
	}
	lc.SetSurface(device)

	// Bind layouts against the physical key count
	binder := actions.NewBinder(injector, cfg.Paths)
	layouts, err := layout.Build(device.KeyCount(), cfg.Layouts, binder.Bind)
	if err != nil {
		return fmt.Errorf("building layouts: %w", err)
	}
	log.Info("layouts built", "count", len(layouts), "keys", device.KeyCount())

	// Render engine and dispatch loop
	engine := render.NewEngine(cfg.Render, cfg.Deck.Brightness, log)
	ctrl := controller.New(device, engine, layouts, recorder, log)

	log.Info("initialisation complete, dispatching key events")
	if err := ctrl.Run(ctx, cfg.Deck.InitialLayout); err != nil {
		return fmt.Errorf("dispatch loop: %w", err)
	}

	log.Info("shutdown signal received")
	return nil
}

// openHistory opens the press-history store when the database is enabled.
// Returns a no-op recorder otherwise.
func openHistory(ctx context.Context, cfg *config.Config, log *logging.Logger) (history.Recorder, func(), error) {
	if !cfg.Database.Enabled {
		log.Info("press history disabled")
		return history.NopRecorder{}, nil, nil
	}

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	closeDB := func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}

	if err := db.Migrate(ctx); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	repo := history.NewSQLiteRepository(db)
	if retention := cfg.RetentionDuration(); retention > 0 {
		removed, pruneErr := repo.Prune(ctx, retention)
		if pruneErr != nil {
			log.Warn("press history prune failed", "error", pruneErr)
		} else if removed > 0 {
			log.Info("pruned old press history", "removed", removed)
		}
	}

	return repo, closeDB, nil
}

// buildInjector creates the configured input backend.
func buildInjector(cfg config.InputConfig) (input.Injector, error) {
	switch cfg.Backend {
	case "exec":
		return input.NewExecInjector(cfg.ToolPath), nil
	case "uinput":
		return input.NewUinputInjector(cfg.DeviceName)
	default:
		return nil, fmt.Errorf("unknown input backend %q", cfg.Backend)
	}
}

// getConfigPath returns the configuration file path.
// Uses DECKHAND_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("DECKHAND_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
