// Package config loads buffer pool tuning parameters (capacity and
// replacement strategy) from a YAML file, grounded on the pack's
// tuannm99/novasql internal/config.go (spf13/viper, SetConfigType("yaml"),
// mapstructure tags).
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// BufferPoolConfig names the capacity and replacement strategy a table's
// buffer pool should be initialized with.
type BufferPoolConfig struct {
	Capacity int    `mapstructure:"capacity"`
	Strategy string `mapstructure:"strategy"` // "fifo" | "lru" | "clock" | "lfu"
}

// Config is the top-level tuning configuration for a table.
type Config struct {
	BufferPool BufferPoolConfig `mapstructure:"buffer_pool"`
}

// Default returns the configuration spec.md §4.3 hard-codes for
// CreateTable: a 100-page pool using LRU.
func Default() *Config {
	return &Config{BufferPool: BufferPoolConfig{Capacity: 100, Strategy: "lru"}}
}

// Load reads a YAML file at path and unmarshals it into a Config. Fields
// absent from the file keep their Default() value.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("buffer_pool.capacity", cfg.BufferPool.Capacity)
	v.SetDefault("buffer_pool.strategy", cfg.BufferPool.Strategy)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return cfg, nil
}
