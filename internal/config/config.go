// Package config holds the route optimizer's YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"route-optimizer/internal/routing"
)

// Cache backends
const (
	CacheBackendSQLite = "sqlite"
	CacheBackendFile   = "file"
	CacheBackendMemory = "memory"
)

// Config is the top-level configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Solver  SolverConfig  `yaml:"solver"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP service
type ServerConfig struct {
	Addr             string `yaml:"addr"`
	BatchConcurrency int    `yaml:"batch_concurrency"`
	ShutdownTimeout  string `yaml:"shutdown_timeout"`
}

// SolverConfig configures the tour solver
type SolverConfig struct {
	MaxStops int    `yaml:"max_stops"`
	Strategy string `yaml:"strategy"` // dense, sparse
}

// CacheConfig configures the optimized route cache.
// An empty Path resolves to the backend's file under ~/.route-optimizer.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Backend string `yaml:"backend"` // sqlite, file, memory
	Path    string `yaml:"path"`
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:             "127.0.0.1:8080",
			BatchConcurrency: 4,
			ShutdownTimeout:  "10s",
		},
		Solver: SolverConfig{
			MaxStops: 20,
			Strategy: "dense",
		},
		Cache: CacheConfig{
			Enabled: true,
			Backend: CacheBackendSQLite,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Marshal renders the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

func (c *Config) applyEnvOverrides() error {
	if addr := os.Getenv("ROUTEOPT_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if v := os.Getenv("ROUTEOPT_MAX_STOPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ROUTEOPT_MAX_STOPS %q: %w", v, err)
		}
		c.Solver.MaxStops = n
	}
	if path := os.Getenv("ROUTEOPT_CACHE_PATH"); path != "" {
		c.Cache.Path = path
	}
	if v := os.Getenv("ROUTEOPT_CACHE_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid ROUTEOPT_CACHE_ENABLED %q: %w", v, err)
		}
		c.Cache.Enabled = enabled
	}
	if level := os.Getenv("ROUTEOPT_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
	return nil
}

// GetShutdownTimeout returns the graceful shutdown timeout as a duration
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

var (
	validStrategies    = []string{"dense", "sparse"}
	validCacheBackends = []string{CacheBackendSQLite, CacheBackendFile, CacheBackendMemory}
	validLogLevels     = []string{"debug", "info", "warn", "error"}
	validLogFormats    = []string{"json", "text"}
)

func oneOf(v string, valid []string) bool {
	for _, s := range valid {
		if v == s {
			return true
		}
	}
	return false
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server address is required")
	}
	if c.Server.BatchConcurrency < 1 {
		return fmt.Errorf("batch_concurrency must be at least 1, got %d", c.Server.BatchConcurrency)
	}
	if c.Solver.MaxStops < 1 {
		return fmt.Errorf("max_stops must be at least 1, got %d", c.Solver.MaxStops)
	}
	if c.Solver.MaxStops > routing.MaxSupportedStops {
		return fmt.Errorf("max_stops must be at most %d, got %d", routing.MaxSupportedStops, c.Solver.MaxStops)
	}
	if !oneOf(c.Solver.Strategy, validStrategies) {
		return fmt.Errorf("invalid solver strategy: %s (valid: %v)", c.Solver.Strategy, validStrategies)
	}
	if c.Cache.Enabled && !oneOf(c.Cache.Backend, validCacheBackends) {
		return fmt.Errorf("invalid cache backend: %s (valid: %v)", c.Cache.Backend, validCacheBackends)
	}
	if !oneOf(c.Logging.Level, validLogLevels) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, validLogLevels)
	}
	if !oneOf(c.Logging.Format, validLogFormats) {
		return fmt.Errorf("invalid log format: %s (valid: %v)", c.Logging.Format, validLogFormats)
	}
	return nil
}
