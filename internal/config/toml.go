// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Catalog CatalogConfig `toml:"catalog"`
	Search  SearchConfig  `toml:"search"`
	Log     LogConfig     `toml:"log"`
}

// CatalogConfig maps catalog source and cache settings.
type CatalogConfig struct {
	BaseURL     *string   `toml:"base-url"`
	Dir         *string   `toml:"dir"`
	Majors      *string   `toml:"majors"`
	LiberalArts *string   `toml:"liberal-arts"`
	CacheTTL    *Duration `toml:"cache-ttl"`
	Timeout     *Duration `toml:"timeout"`
}

// SearchConfig maps search dialog settings.
type SearchConfig struct {
	PageSize *int `toml:"page-size"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
}

// Duration is a time.Duration written as a Go duration string ("24h", "90s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
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
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
