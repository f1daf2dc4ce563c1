// Package config defines limitbook's process configuration. Config is
// loaded from a YAML file with env var overrides, the same pattern the
// pack's market-making services use (viper + mapstructure tags, a
// LIMITBOOK_ env prefix).
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level configuration for the clobd server process.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Book    BookConfig    `mapstructure:"book"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls the TCP transport (internal/transport).
type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Workers int    `mapstructure:"workers"`
}

// BookConfig binds the core engine's only configurable knobs: the depth
// snapshot size cap and an optional symbol whitelist.
type BookConfig struct {
	MaxLevelsPerDepth int      `mapstructure:"max_levels_per_depth"`
	Symbols           []string `mapstructure:"symbols"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Defaults returns the configuration used when no file is supplied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Address: "0.0.0.0",
			Port:    9001,
			Workers: 10,
		},
		Book: BookConfig{
			MaxLevelsPerDepth: 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads config from a YAML file at path, falling back to Defaults
// for anything the file does not set, with LIMITBOOK_* environment
// variables overriding both.
func Load(path string) (Config, error) {
	v := viper.New()
	cfg := Defaults()
	v.SetDefault("server.address", cfg.Server.Address)
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.workers", cfg.Server.Workers)
	v.SetDefault("book.max_levels_per_depth", cfg.Book.MaxLevelsPerDepth)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetEnvPrefix("LIMITBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the fields the engine and transport actually rely on.
func (c Config) Validate() error {
	if c.Book.MaxLevelsPerDepth < 1 {
		return fmt.Errorf("book.max_levels_per_depth must be >= 1")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid TCP port")
	}
	if c.Server.Workers < 1 {
		return fmt.Errorf("server.workers must be >= 1")
	}
	return nil
}
