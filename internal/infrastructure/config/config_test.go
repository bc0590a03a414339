package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
layouts:
  main:
    keys:
      0:
        label: hello
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Deck.InitialLayout != "main" {
		t.Errorf("Deck.InitialLayout = %q, want %q", cfg.Deck.InitialLayout, "main")
	}
	if cfg.Deck.Brightness != 100 {
		t.Errorf("Deck.Brightness = %d, want 100", cfg.Deck.Brightness)
	}
	if got := cfg.Deck.Discovery.GetTimeout(); got != 5*time.Minute {
		t.Errorf("Discovery.GetTimeout() = %v, want 5m", got)
	}
	if got := cfg.Deck.Discovery.GetPollInterval(); got != 5*time.Second {
		t.Errorf("Discovery.GetPollInterval() = %v, want 5s", got)
	}
	if cfg.Input.Backend != "exec" {
		t.Errorf("Input.Backend = %q, want %q", cfg.Input.Backend, "exec")
	}
	if !cfg.Database.Enabled {
		t.Error("Database.Enabled = false, want true")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
deck:
  initial_layout: media
  brightness: 60
  discovery:
    timeout_seconds: 60
    poll_interval_seconds: 2
input:
  backend: uinput
layouts:
  media:
    keys:
      0:
        label: play
        action:
          type: hotkey
          keys: [SPACE]
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Deck.InitialLayout != "media" {
		t.Errorf("Deck.InitialLayout = %q, want %q", cfg.Deck.InitialLayout, "media")
	}
	if cfg.Deck.Brightness != 60 {
		t.Errorf("Deck.Brightness = %d, want 60", cfg.Deck.Brightness)
	}
	if got := cfg.Deck.Discovery.GetTimeout(); got != time.Minute {
		t.Errorf("Discovery.GetTimeout() = %v, want 1m", got)
	}
	if cfg.Input.Backend != "uinput" {
		t.Errorf("Input.Backend = %q, want %q", cfg.Input.Backend, "uinput")
	}

	key, ok := cfg.Layouts["media"].Keys[0]
	if !ok {
		t.Fatal("layout media key 0 not parsed")
	}
	if key.Action == nil || key.Action.Type != "hotkey" {
		t.Fatalf("key action = %+v, want hotkey", key.Action)
	}
	if len(key.Action.Keys) != 1 || key.Action.Keys[0] != "SPACE" {
		t.Errorf("action keys = %v, want [SPACE]", key.Action.Keys)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DECKHAND_DECK_BRIGHTNESS", "40")
	t.Setenv("DECKHAND_DATABASE_PATH", "/tmp/other.db")
	t.Setenv("DECKHAND_INPUT_TOOL_PATH", "/usr/local/bin/ydotool")

	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Deck.Brightness != 40 {
		t.Errorf("Deck.Brightness = %d, want 40", cfg.Deck.Brightness)
	}
	if cfg.Database.Path != "/tmp/other.db" {
		t.Errorf("Database.Path = %q, want /tmp/other.db", cfg.Database.Path)
	}
	if cfg.Input.ToolPath != "/usr/local/bin/ydotool" {
		t.Errorf("Input.ToolPath = %q, want /usr/local/bin/ydotool", cfg.Input.ToolPath)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() with missing file should return error")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "deck: [not a map")); err == nil {
		t.Error("Load() with invalid YAML should return error")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := defaultConfig()
	cfg.Deck.Brightness = 150
	cfg.Deck.Discovery.PollIntervalSeconds = 0
	cfg.Input.Backend = "telepathy"
	// no layouts defined either

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should return error")
	}

	for _, want := range []string{
		"deck.brightness",
		"deck.discovery.poll_interval_seconds",
		"input.backend",
		"at least one layout",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error missing %q: %v", want, err)
		}
	}
}

func TestValidate_InitialLayoutMustExist(t *testing.T) {
	cfg := defaultConfig()
	cfg.Deck.InitialLayout = "ghost"
	cfg.Layouts = map[string]LayoutConfig{
		"main": {Keys: map[int]KeyConfig{0: {Label: "a"}}},
	}

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Errorf("Validate() = %v, want initial layout error", err)
	}
}

func TestValidate_NegativeKeyIndex(t *testing.T) {
	cfg := defaultConfig()
	cfg.Layouts = map[string]LayoutConfig{
		"main": {Keys: map[int]KeyConfig{-1: {Label: "a"}}},
	}

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "negative") {
		t.Errorf("Validate() = %v, want negative index error", err)
	}
}
