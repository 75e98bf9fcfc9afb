// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Play  PlayConfig  `toml:"play"`
	Stats StatsConfig `toml:"stats"`
}

// PlayConfig maps game settings.
type PlayConfig struct {
	Variant    *string  `toml:"variant"`
	Tick       *string  `toml:"tick"`
	Seed       *int64   `toml:"seed"`
	Audio      *bool    `toml:"audio"`
	Log        *string  `toml:"log"`
	FocusWeak  *bool    `toml:"focus-weak"`
	WeakTop    *int     `toml:"weak-top"`
	WeakFactor *float64 `toml:"weak-factor"`
	WeakWindow *int     `toml:"weak-window"`
}

// StatsConfig maps stats defaults.
type StatsConfig struct {
	Window *int `toml:"window"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Sample returns a commented config file with every key at its default.
func Sample() string {
	return `# tuibeat configuration

[play]
# variant = "single"      # single | multi
# tick = "16ms"           # frame period
# seed = 0                # 0 seeds from the clock
# audio = true            # bundle tracks and hit/miss cues
# log = ""                # debug log file
# focus-weak = false      # bias procedural notes toward weak directions
# weak-top = 2
# weak-factor = 2.0
# weak-window = 20

[stats]
# window = 10             # moving average window for curves
`
}
