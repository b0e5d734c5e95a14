// Package config handles TOML configuration loading with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/setevik/logbridge/internal/source"
	"github.com/setevik/logbridge/internal/target"
)

// Config is the top-level configuration for logbridge.
type Config struct {
	Bridge  BridgeConfig  `toml:"bridge"`
	Target  TargetConfig  `toml:"target"`
	Control ControlConfig `toml:"control"`
	Log     LogConfig     `toml:"log"`
}

// BridgeConfig controls the bridge handler itself.
type BridgeConfig struct {
	// Level is the initial minimum severity, one of the eight severity
	// names, "all", or "none".
	Level string `toml:"level"`

	// UTC renders record timestamps with UTC calendar rules instead of
	// local wall-clock rules.
	UTC bool `toml:"utc"`
}

// TargetConfig controls the target subsystem's per-level behavior and sinks.
type TargetConfig struct {
	// DefaultMode is the dispatch mode for levels without an override.
	DefaultMode string `toml:"default_mode"`

	// SyncLevels lists levels delivered synchronously (backpressured).
	SyncLevels []string `toml:"sync_levels"`

	// DiscardLevels lists levels accepted but thrown away.
	DiscardLevels []string `toml:"discard_levels"`

	Journal JournalConfig `toml:"journal"`
}

// JournalConfig controls the optional SQLite journal sink.
type JournalConfig struct {
	Enabled   bool     `toml:"enabled"`
	Path      string   `toml:"path"`
	Retention Duration `toml:"retention"`
}

// ControlConfig controls the HTTP control surface.
type ControlConfig struct {
	Addr string `toml:"addr"`
}

// LogConfig controls the daemon's own logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration wraps time.Duration for TOML string parsing (e.g. "5m", "1h").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Bridge: BridgeConfig{
			Level: "all",
		},
		Target: TargetConfig{
			DefaultMode: "async",
			SyncLevels:  []string{"error"},
			Journal: JournalConfig{
				Retention: Duration{30 * 24 * time.Hour},
			},
		},
		Control: ControlConfig{
			Addr: "127.0.0.1:9321",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "logbridge", "config.toml")
}

// JournalPath returns the journal database path, defaulting under the XDG
// data directory.
func (c *Config) JournalPath() string {
	if c.Target.Journal.Path != "" {
		return c.Target.Journal.Path
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "logbridge", "journal.db")
}

// Load reads configuration from the given path, falling back to defaults
// for any unset fields. If the file does not exist, returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks level and mode names.
func (c *Config) Validate() error {
	if _, err := source.CompileMask(c.Bridge.Level); err != nil {
		return fmt.Errorf("bridge.level: %w", err)
	}
	if _, ok := target.ParseMode(c.Target.DefaultMode); !ok {
		return fmt.Errorf("target.default_mode: unknown mode %q", c.Target.DefaultMode)
	}
	for _, name := range c.Target.SyncLevels {
		if _, ok := target.ParseLevel(name); !ok {
			return fmt.Errorf("target.sync_levels: unknown level %q", name)
		}
	}
	for _, name := range c.Target.DiscardLevels {
		if _, ok := target.ParseLevel(name); !ok {
			return fmt.Errorf("target.discard_levels: unknown level %q", name)
		}
	}
	return nil
}

// BuildGate assembles the target's per-level behavior table from the
// configuration.
func (c *Config) BuildGate() (target.Gate, error) {
	mode, ok := target.ParseMode(c.Target.DefaultMode)
	if !ok {
		return nil, fmt.Errorf("unknown dispatch mode %q", c.Target.DefaultMode)
	}

	gate := target.NewTableGate(target.Deliver(mode))
	for _, name := range c.Target.SyncLevels {
		lvl, ok := target.ParseLevel(name)
		if !ok {
			return nil, fmt.Errorf("unknown level %q in sync_levels", name)
		}
		gate.Set(lvl, target.Deliver(target.ModeSync))
	}
	for _, name := range c.Target.DiscardLevels {
		lvl, ok := target.ParseLevel(name)
		if !ok {
			return nil, fmt.Errorf("unknown level %q in discard_levels", name)
		}
		gate.Set(lvl, target.Discard())
	}
	return gate, nil
}
