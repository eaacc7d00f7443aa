// Package config loads the service configuration from an optional TOML
// or YAML file plus FEDSYNC_ environment overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/mkarlsen/fedsync/internal/logger"
)

// Config is the full service configuration.
type Config struct {
	Listen   string        `mapstructure:"listen"`
	Database Database      `mapstructure:"database"`
	Scrape   Scrape        `mapstructure:"scrape"`
	Sync     Sync          `mapstructure:"sync"`
	Log      logger.Config `mapstructure:"log"`
}

// Database locates the SQLite document store.
type Database struct {
	Path string `mapstructure:"path"`
}

// Scrape tunes the upstream calendar client.
type Scrape struct {
	BaseURL           string `mapstructure:"base_url"`
	UserAgent         string `mapstructure:"user_agent"`
	FetchConcurrency  int    `mapstructure:"fetch_concurrency"`
	DetailConcurrency int    `mapstructure:"detail_concurrency"`
}

// Sync holds the background scheduling knobs. The per-run policy
// (interval, horizon, disciplines) lives in the document store and is
// managed over the API, not here.
type Sync struct {
	// Schedule is a cron expression for the periodic sync check.
	Schedule string `mapstructure:"schedule"`
}

// Load reads the configuration. path may be empty, in which case only
// defaults and FEDSYNC_ environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("listen", ":8085")
	v.SetDefault("database.path", "fedsync.db")
	v.SetDefault("scrape.base_url", "")
	v.SetDefault("scrape.user_agent", "")
	v.SetDefault("scrape.fetch_concurrency", 0)
	v.SetDefault("scrape.detail_concurrency", 0)
	v.SetDefault("sync.schedule", "@every 1h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix("FEDSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}
