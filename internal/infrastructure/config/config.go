package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for deckhand.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Deck     DeckConfig              `yaml:"deck"`
	Render   RenderConfig            `yaml:"render"`
	Input    InputConfig             `yaml:"input"`
	Database DatabaseConfig          `yaml:"database"`
	Logging  LoggingConfig           `yaml:"logging"`
	Paths    map[string]string       `yaml:"paths"`
	Layouts  map[string]LayoutConfig `yaml:"layouts"`
}

// DeckConfig contains hardware device settings.
type DeckConfig struct {
	// InitialLayout is the layout displayed after startup. Default: "main"
	InitialLayout string `yaml:"initial_layout"`

	// Brightness is the display brightness applied on every full render (0-100).
	// Default: 100
	Brightness int `yaml:"brightness"`

	// Discovery bounds the startup retry loop while waiting for the device
	// to be plugged in.
	Discovery DiscoveryConfig `yaml:"discovery"`
}

// DiscoveryConfig bounds the device discovery retry loop.
// Values are in seconds; use the Get* accessors for Durations.
type DiscoveryConfig struct {
	// TimeoutSeconds is the total time to keep polling for a device
	// before giving up. Default: 300
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// PollIntervalSeconds is the delay between enumeration attempts.
	// Default: 5
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
}

// GetTimeout returns the discovery window as a Duration.
func (d DiscoveryConfig) GetTimeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// GetPollInterval returns the enumeration delay as a Duration.
func (d DiscoveryConfig) GetPollInterval() time.Duration {
	return time.Duration(d.PollIntervalSeconds) * time.Second
}

// RenderConfig contains key rendering settings.
type RenderConfig struct {
	// FontPath is the path to a TTF font used for key labels.
	// If empty or unloadable, a built-in bitmap font is used.
	FontPath string `yaml:"font_path"`

	// FontSize is the label font size in points. Default: 16
	FontSize float64 `yaml:"font_size"`

	// IconsDir is the directory containing key icon images (PNG).
	IconsDir string `yaml:"icons_dir"`
}

// InputConfig contains synthetic keyboard input settings.
type InputConfig struct {
	// Backend selects the injection mechanism: "exec" (external tool,
	// ydotool-style CLI) or "uinput" (virtual keyboard device).
	// Default: "exec"
	Backend string `yaml:"backend"`

	// ToolPath is the path to the injection tool binary for the exec backend.
	ToolPath string `yaml:"tool_path"`

	// DeviceName is the virtual keyboard name for the uinput backend.
	// Default: "deckhand"
	DeviceName string `yaml:"device_name"`

	// Daemon optionally runs the injection tool's daemon half under
	// deckhand's supervision. Only meaningful for the exec backend.
	Daemon DaemonConfig `yaml:"daemon"`
}

// DaemonConfig supervises the injection daemon (e.g. ydotoold).
type DaemonConfig struct {
	// Managed starts and restarts the daemon from within deckhand.
	Managed bool `yaml:"managed"`

	// Binary is the daemon executable. Default: "ydotoold"
	Binary string `yaml:"binary"`

	// Args are extra command-line arguments for the daemon.
	Args []string `yaml:"args"`

	// MaxRestartAttempts limits restarts after crashes. 0 is unlimited.
	MaxRestartAttempts int `yaml:"max_restart_attempts"`
}

// DatabaseConfig contains SQLite press-history settings.
type DatabaseConfig struct {
	// Enabled turns press-history recording on. Default: true
	Enabled bool `yaml:"enabled"`

	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// RetentionDays is how long press-history rows are kept before the
	// startup prune removes them. 0 disables pruning. Default: 30
	RetentionDays int `yaml:"retention_days"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// LayoutConfig defines one named layout: a mapping of key index to key spec.
type LayoutConfig struct {
	Keys map[int]KeyConfig `yaml:"keys"`
}

// KeyConfig defines the visual spec and action binding for a single key.
type KeyConfig struct {
	// Icon is an image filename resolved against render.icons_dir.
	Icon string `yaml:"icon"`

	// Label is the text rendered on the key.
	Label string `yaml:"label"`

	// Color is the background colour (name or #hex). Default: black
	Color string `yaml:"color"`

	// LabelColor is the label text colour (name or #hex). Default: white
	LabelColor string `yaml:"label_color"`

	// Action binds the key to an action executed on press.
	Action *ActionConfig `yaml:"action"`
}

// ActionConfig describes an action binding. Type selects the action kind;
// the remaining fields are interpreted per type by the actions package.
type ActionConfig struct {
	// Type is one of: exec, open_url, type_text, hotkey, switch_layout.
	Type string `yaml:"type"`

	// Command and Args are used by the exec type. Args may contain
	// {path:name} placeholders resolved against the paths section.
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`

	// URL is used by the open_url type.
	URL string `yaml:"url"`

	// Text is used by the type_text type.
	Text string `yaml:"text"`

	// Keys is used by the hotkey type (key names from the keycode table).
	Keys []string `yaml:"keys"`

	// Layout is used by the switch_layout type.
	Layout string `yaml:"layout"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: DECKHAND_SECTION_KEY
// For example: DECKHAND_DATABASE_PATH, DECKHAND_INPUT_TOOL_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Deck: DeckConfig{
			InitialLayout: "main",
			Brightness:    100,
			Discovery: DiscoveryConfig{
				TimeoutSeconds:      300,
				PollIntervalSeconds: 5,
			},
		},
		Render: RenderConfig{
			FontSize: 16,
		},
		Input: InputConfig{
			Backend:    "exec",
			ToolPath:   "ydotool",
			DeviceName: "deckhand",
			Daemon: DaemonConfig{
				Binary: "ydotoold",
			},
		},
		Database: DatabaseConfig{
			Enabled:       true,
			Path:          "./data/deckhand.db",
			WALMode:       true,
			BusyTimeout:   5,
			RetentionDays: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: DECKHAND_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Deck
	if v := os.Getenv("DECKHAND_DECK_INITIAL_LAYOUT"); v != "" {
		cfg.Deck.InitialLayout = v
	}
	if v := os.Getenv("DECKHAND_DECK_BRIGHTNESS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Deck.Brightness = n
		}
	}

	// Render
	if v := os.Getenv("DECKHAND_RENDER_FONT_PATH"); v != "" {
		cfg.Render.FontPath = v
	}
	if v := os.Getenv("DECKHAND_RENDER_ICONS_DIR"); v != "" {
		cfg.Render.IconsDir = v
	}

	// Input
	if v := os.Getenv("DECKHAND_INPUT_BACKEND"); v != "" {
		cfg.Input.Backend = v
	}
	if v := os.Getenv("DECKHAND_INPUT_TOOL_PATH"); v != "" {
		cfg.Input.ToolPath = v
	}

	// Database
	if v := os.Getenv("DECKHAND_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
}

// Validate checks the configuration for errors.
//
// All problems are collected and reported together so a broken config
// can be fixed in one pass.
//
// Returns:
//   - error: Description of validation failures, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Deck validation
	if c.Deck.InitialLayout == "" {
		errs = append(errs, "deck.initial_layout is required")
	}
	if c.Deck.Brightness < 0 || c.Deck.Brightness > 100 {
		errs = append(errs, "deck.brightness must be between 0 and 100")
	}
	if c.Deck.Discovery.TimeoutSeconds <= 0 {
		errs = append(errs, "deck.discovery.timeout_seconds must be positive")
	}
	if c.Deck.Discovery.PollIntervalSeconds <= 0 {
		errs = append(errs, "deck.discovery.poll_interval_seconds must be positive")
	}

	// Render validation
	if c.Render.FontSize <= 0 {
		errs = append(errs, "render.font_size must be positive")
	}

	// Input validation
	switch c.Input.Backend {
	case "exec":
		if c.Input.ToolPath == "" {
			errs = append(errs, "input.tool_path is required for the exec backend")
		}
		if c.Input.Daemon.Managed && c.Input.Daemon.Binary == "" {
			errs = append(errs, "input.daemon.binary is required when input.daemon.managed is true")
		}
	case "uinput":
		if c.Input.DeviceName == "" {
			errs = append(errs, "input.device_name is required for the uinput backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("input.backend %q is not recognised (use exec or uinput)", c.Input.Backend))
	}

	// Database validation
	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when database.enabled is true")
	}

	// Layout validation (structural only; key bounds and action bindings
	// are checked at layout build time against the open device)
	if len(c.Layouts) == 0 {
		errs = append(errs, "at least one layout is required")
	} else {
		if _, ok := c.Layouts[c.Deck.InitialLayout]; !ok {
			errs = append(errs, fmt.Sprintf("deck.initial_layout %q is not a defined layout", c.Deck.InitialLayout))
		}
		for name, l := range c.Layouts {
			if len(l.Keys) == 0 {
				errs = append(errs, fmt.Sprintf("layout %q has no keys", name))
			}
			for idx := range l.Keys {
				if idx < 0 {
					errs = append(errs, fmt.Sprintf("layout %q key index %d is negative", name, idx))
				}
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// RetentionDuration returns the press-history retention as a Duration.
func (c *Config) RetentionDuration() time.Duration {
	return time.Duration(c.Database.RetentionDays) * 24 * time.Hour
}
