// Package config loads the tuning of the network view from TOML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/OFFIS-RIT/dramaturgy/internal/util"
	"github.com/OFFIS-RIT/dramaturgy/pkg/interaction"
	"github.com/OFFIS-RIT/dramaturgy/pkg/layout"
	"github.com/OFFIS-RIT/dramaturgy/pkg/logger"
	"github.com/OFFIS-RIT/dramaturgy/pkg/network"
)

// Config holds network view configuration.
type Config struct {
	Layout  layout.Config `toml:"layout"`
	Poll    PollConfig    `toml:"poll"`
	Palette PaletteConfig `toml:"palette"`
	Session SessionConfig `toml:"session"`
}

// PollConfig controls how long a view waits for line data.
type PollConfig struct {
	Interval    time.Duration `toml:"interval"`
	MaxInterval time.Duration `toml:"max_interval"`
	Multiplier  float64       `toml:"multiplier"`
	MaxAttempts int           `toml:"max_attempts"`
}

// PaletteConfig sets the fill color per importance group.
type PaletteConfig struct {
	Major      string `toml:"major"`
	Supporting string `toml:"supporting"`
	Minor      string `toml:"minor"`
	Background string `toml:"background"`
}

// SessionConfig controls live view sessions.
type SessionConfig struct {
	TickInterval time.Duration `toml:"tick_interval"`
	IdleTimeout  time.Duration `toml:"idle_timeout"`
	WarmupTicks  int           `toml:"warmup_ticks"`
	MaxSessions  int           `toml:"max_sessions"`
	HideLabels   bool          `toml:"hide_labels"`
}

// Default returns the default configuration.
func Default() *Config {
	p := interaction.DefaultPalette()
	return &Config{
		Layout: layout.DefaultConfig(),
		Poll: PollConfig{
			Interval:    util.DefaultPollPolicy.Interval,
			MaxInterval: util.DefaultPollPolicy.MaxInterval,
			Multiplier:  util.DefaultPollPolicy.Multiplier,
			MaxAttempts: util.DefaultPollPolicy.MaxAttempts,
		},
		Palette: PaletteConfig{
			Major:      p[network.GroupMajor],
			Supporting: p[network.GroupSupporting],
			Minor:      p[network.GroupMinor],
			Background: p[network.GroupBackground],
		},
		Session: SessionConfig{
			TickInterval: 50 * time.Millisecond,
			IdleTimeout:  30 * time.Minute,
			WarmupTicks:  100,
			MaxSessions:  256,
		},
	}
}

// PollPolicy converts the poll section.
func (c *Config) PollPolicy() util.PollPolicy {
	return util.PollPolicy{
		Interval:    c.Poll.Interval,
		MaxInterval: c.Poll.MaxInterval,
		Multiplier:  c.Poll.Multiplier,
		MaxAttempts: c.Poll.MaxAttempts,
	}
}

// InteractionPalette converts the palette section. Empty entries fall back
// to the default colors.
func (c *Config) InteractionPalette() interaction.Palette {
	p := interaction.DefaultPalette()
	set := func(g network.Group, color string) {
		if color != "" {
			p[g] = color
		}
	}
	set(network.GroupMajor, c.Palette.Major)
	set(network.GroupSupporting, c.Palette.Supporting)
	set(network.GroupMinor, c.Palette.Minor)
	set(network.GroupBackground, c.Palette.Background)
	return p
}

// Parse decodes TOML on top of the defaults. Unknown keys are logged and
// ignored.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	for _, key := range md.Undecoded() {
		logger.Warn("[Config] Unknown config key", "key", key.String())
	}
	return cfg, nil
}

// Load reads the config file at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("[Config] No config file, using defaults", "path", path)
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// LoadFromEnv reads the file named by NETWORK_CONFIG.
func LoadFromEnv() (*Config, error) {
	return Load(util.GetEnvString("NETWORK_CONFIG", ""))
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
