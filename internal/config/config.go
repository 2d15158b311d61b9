// Package config provides configuration management for the dashboard.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	apperrors "deribit-dashboard/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Deribit DeribitConfig `mapstructure:"deribit"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Enrich  EnrichConfig  `mapstructure:"enrich"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds the API server configuration.
type ServerConfig struct {
	Listen          string        `mapstructure:"listen"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DeribitConfig holds upstream exchange configuration.
type DeribitConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds memoization cache configuration. Backend "memory"
// is the process-local default; "redis" shares the cache between
// dashboard replicas.
type CacheConfig struct {
	Backend  string        `mapstructure:"backend"`
	RedisURL string        `mapstructure:"redis_url"`
	SpotTTL  time.Duration `mapstructure:"spot_ttl"`
	ChainTTL time.Duration `mapstructure:"chain_ttl"`
}

// EnrichConfig holds chain-enrichment configuration. Workers=1 keeps
// the per-instrument quote and Greeks calls fully sequential.
type EnrichConfig struct {
	Workers int `mapstructure:"workers"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/deribit-dashboard"
	}
	return filepath.Join(home, ".config", "deribit-dashboard")
}

// Load loads configuration from the specified directory, with
// environment overrides under the DERIBIT_DASH prefix. A missing
// config file is fine: every knob has a default.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	setDefaults(v, configDir)

	v.SetEnvPrefix("DERIBIT_DASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.yaml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("deribit.base_url", "https://www.deribit.com/api/v2")
	v.SetDefault("deribit.timeout", 10*time.Second)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.spot_ttl", 60*time.Second)
	v.SetDefault("cache.chain_ttl", 300*time.Second)

	v.SetDefault("enrich.workers", 4)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("log.file", true)
	v.SetDefault("log.file_path", filepath.Join(configDir, "logs", "dashboard.log"))
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age", 30)
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "server.listen must not be empty")
	}
	if c.Deribit.BaseURL == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "deribit.base_url must not be empty")
	}
	if c.Deribit.Timeout <= 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "deribit.timeout must be positive")
	}
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.RedisURL == "" {
			return apperrors.Wrap(apperrors.ErrConfigInvalid, "cache.redis_url required for redis backend")
		}
	default:
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "cache.backend %q (expected memory or redis)", c.Cache.Backend)
	}
	if c.Cache.SpotTTL <= 0 || c.Cache.ChainTTL <= 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "cache TTLs must be positive")
	}
	if c.Enrich.Workers < 1 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "enrich.workers must be at least 1")
	}
	return nil
}
