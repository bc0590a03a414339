// deckhand-reset is the standalone recovery tool.
//
// When the daemon dies uncleanly it can leave two kinds of wreckage: a
// synthetic key still held down on the host, and a deck frozen on its last
// image. This tool fixes both without the daemon: it releases every known
// key and resets any connected device. Run it from a hotkey or a terminal
// when the keyboard feels stuck.
//
// It reads the daemon's config for the input backend when available and
// falls back to defaults otherwise, so it works even when the config is
// the thing that broke.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nerrad567/deckhand/internal/infrastructure/config"
	"github.com/nerrad567/deckhand/internal/infrastructure/logging"
	"github.com/nerrad567/deckhand/internal/input"

	"github.com/muesli/streamdeck"
)

// Default configuration file path, shared with the daemon.
const defaultConfigPath = "configs/config.yaml"

// opTimeout bounds the whole recovery run.
const opTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log := logging.Default()
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	inputCfg := loadInputConfig(log)

	injector, err := buildInjector(inputCfg)
	if err != nil {
		return fmt.Errorf("creating input injector: %w", err)
	}
	defer injector.Close() //nolint:errcheck // Best effort on a recovery path

	// Release first. A stuck key is worse than a frozen display.
	if err := input.ReleaseAll(ctx, injector); err != nil {
		log.Error("key release failed", "error", err)
	} else {
		log.Info("all keys released", "backend", inputCfg.Backend)
	}

	resetDevices(log)
	return nil
}

// loadInputConfig reads the daemon config, falling back to defaults when
// it is missing or broken.
func loadInputConfig(log *logging.Logger) config.InputConfig {
	path := os.Getenv("DECKHAND_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Warn("config unavailable, using default input backend", "path", path, "error", err)
		return config.InputConfig{Backend: "exec", ToolPath: "ydotool", DeviceName: "deckhand"}
	}
	return cfg.Input
}

func buildInjector(cfg config.InputConfig) (input.Injector, error) {
	switch cfg.Backend {
	case "uinput":
		return input.NewUinputInjector(cfg.DeviceName)
	default:
		return input.NewExecInjector(cfg.ToolPath), nil
	}
}

// resetDevices resets every connected deck. Failures are logged and the
// remaining devices still get reset.
func resetDevices(log *logging.Logger) {
	devices, err := streamdeck.Devices()
	if err != nil {
		log.Error("device enumeration failed", "error", err)
		return
	}
	if len(devices) == 0 {
		log.Info("no devices connected")
		return
	}

	for i := range devices {
		dev := &devices[i]
		if err := dev.Open(); err != nil {
			log.Error("device open failed", "serial", dev.Serial, "error", err)
			continue
		}
		if err := dev.Reset(); err != nil {
			log.Error("device reset failed", "serial", dev.Serial, "error", err)
		} else {
			log.Info("device reset", "serial", dev.Serial)
		}
		if err := dev.Close(); err != nil {
			log.Error("device close failed", "serial", dev.Serial, "error", err)
		}
	}
}
