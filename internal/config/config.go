package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/geolog-mcp/internal/cascade"
	"github.com/dshills/geolog-mcp/internal/geotech"
	"github.com/dshills/geolog-mcp/internal/report"
)

// DefaultDBPath is the database file used when none is configured
const DefaultDBPath = "~/.geolog/geolog.db"

// Environment variables read by Load
const (
	EnvConfig        = "GEOLOG_CONFIG"
	EnvDBPath        = "GEOLOG_DB_PATH"
	EnvHTTPAddr      = "GEOLOG_HTTP_ADDR"
	EnvLogMode       = "GEOLOG_LOG_MODE"
	EnvCoreNumbering = "GEOLOG_CORE_NUMBERING"
	EnvIDMaxAttempts = "GEOLOG_ID_MAX_ATTEMPTS"
)

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type HTTPConfig struct {
	// Addr is the listen address of the REST API; empty disables it
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Mode string `yaml:"mode"`
}

type IDConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
	Multiplier  float64       `yaml:"multiplier"`
}

type NumberingConfig struct {
	CoreRuns string `yaml:"core_runs"`
}

type PermeabilityConfig struct {
	DescriptionThreshold float64 `yaml:"description_threshold"`
	DisplayThreshold     float64 `yaml:"display_threshold"`
}

// Config is the full server configuration
type Config struct {
	Database     DatabaseConfig     `yaml:"database"`
	HTTP         HTTPConfig         `yaml:"http"`
	Log          LogConfig          `yaml:"log"`
	IDs          IDConfig           `yaml:"ids"`
	Numbering    NumberingConfig    `yaml:"numbering"`
	Permeability PermeabilityConfig `yaml:"permeability"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	retry := cascade.DefaultRetryConfig()
	return &Config{
		Database: DatabaseConfig{Path: DefaultDBPath},
		HTTP:     HTTPConfig{AllowedOrigins: []string{"*"}},
		Log:      LogConfig{Mode: "development"},
		IDs: IDConfig{
			MaxAttempts: retry.MaxRetries,
			BaseDelay:   retry.BaseDelay,
			MaxDelay:    retry.MaxDelay,
			Multiplier:  retry.Multiplier,
		},
		Numbering: NumberingConfig{CoreRuns: string(cascade.NumberByCount)},
		Permeability: PermeabilityConfig{
			DescriptionThreshold: cascade.DefaultDescriptionThreshold,
			DisplayThreshold:     report.DefaultDisplayThreshold,
		},
	}
}

// Load reads the optional YAML file named by GEOLOG_CONFIG, applies the
// environment overrides and validates the result.
func Load() (*Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv(EnvConfig)); path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvDBPath)); v != "" {
		c.Database.Path = v
	}
	if v, ok := os.LookupEnv(EnvHTTPAddr); ok {
		c.HTTP.Addr = strings.TrimSpace(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogMode)); v != "" {
		c.Log.Mode = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCoreNumbering)); v != "" {
		c.Numbering.CoreRuns = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvIDMaxAttempts)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvIDMaxAttempts, err)
		}
		c.IDs.MaxAttempts = n
	}
	return nil
}

// Validate rejects values the engine cannot run with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database.path is required")
	}
	switch cascade.NumberingPolicy(c.Numbering.CoreRuns) {
	case cascade.NumberByCount, cascade.NumberByMax:
	default:
		return fmt.Errorf("numbering.core_runs must be %q or %q, got %q",
			cascade.NumberByCount, cascade.NumberByMax, c.Numbering.CoreRuns)
	}
	if c.IDs.MaxAttempts <= 0 {
		return fmt.Errorf("ids.max_attempts must be positive, got %d", c.IDs.MaxAttempts)
	}
	if c.IDs.BaseDelay < 0 || c.IDs.MaxDelay < c.IDs.BaseDelay {
		return fmt.Errorf("ids delays must satisfy 0 <= base_delay <= max_delay (%s, %s)", c.IDs.BaseDelay, c.IDs.MaxDelay)
	}
	if c.IDs.Multiplier < 1 {
		return fmt.Errorf("ids.multiplier must be at least 1, got %g", c.IDs.Multiplier)
	}
	if c.Permeability.DescriptionThreshold < 0 || c.Permeability.DisplayThreshold < 0 {
		return errors.New("permeability thresholds must not be negative")
	}
	return nil
}

// DBFile expands ~ in the database path and creates its directory
func (c *Config) DBFile() (string, error) {
	path := c.Database.Path
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	if path == ":memory:" {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return path, nil
}

// Engine returns the cascade policies
func (c *Config) Engine() cascade.Config {
	return cascade.Config{
		CoreNumbering: cascade.NumberingPolicy(c.Numbering.CoreRuns),
		Permeability:  geotech.PermeabilityPolicy{Threshold: c.Permeability.DescriptionThreshold},
		IDRetry: cascade.RetryConfig{
			MaxRetries: c.IDs.MaxAttempts,
			BaseDelay:  c.IDs.BaseDelay,
			MaxDelay:   c.IDs.MaxDelay,
			Multiplier: c.IDs.Multiplier,
		},
		IDCacheSize: cascade.DefaultIssuedCacheSize,
	}
}

// Display returns the permeability policy used by reports
func (c *Config) Display() geotech.PermeabilityPolicy {
	return geotech.PermeabilityPolicy{Threshold: c.Permeability.DisplayThreshold}
}
