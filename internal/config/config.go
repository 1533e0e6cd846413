// Package config loads the wordtex configuration from YAML with
// environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/wordtex/wordtex/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidValue   = errors.New("invalid config value")
)

// Defaults applied by Default and for zero-valued fields after loading.
const (
	DefaultAddr            = "127.0.0.1:8377"
	DefaultMaxBodyBytes    = 4 << 20 // clipboard payloads from Word run to a few MB
	DefaultFragmentTimeout = 10 * time.Second
	DefaultDocumentTimeout = 30 * time.Second
	DefaultHistoryPath     = "wordtex-history.db"
	DefaultHistoryMax      = 50
)

// Config holds all wordtex settings.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Engine  EngineConfig  `yaml:"engine"`
	History HistoryConfig `yaml:"history"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr         string `yaml:"addr"`         // listen address (default 127.0.0.1:8377)
	MaxBodyBytes int64  `yaml:"maxBodyBytes"` // request body cap in bytes
}

// EngineConfig configures the Pandoc engine.
type EngineConfig struct {
	Binary          string `yaml:"binary"`          // executable name or path (default "pandoc")
	FragmentTimeout int    `yaml:"fragmentTimeout"` // per-equation timeout in seconds
	DocumentTimeout int    `yaml:"documentTimeout"` // whole-document timeout in seconds
}

// FragmentTimeoutDuration returns the equation timeout as a Duration.
func (e EngineConfig) FragmentTimeoutDuration() time.Duration {
	return time.Duration(e.FragmentTimeout) * time.Second
}

// DocumentTimeoutDuration returns the document timeout as a Duration.
func (e EngineConfig) DocumentTimeoutDuration() time.Duration {
	return time.Duration(e.DocumentTimeout) * time.Second
}

// HistoryConfig configures the recent-items cache.
type HistoryConfig struct {
	Path     string `yaml:"path"`     // SQLite file path, empty disables history
	MaxItems int    `yaml:"maxItems"` // rows kept per tab
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         DefaultAddr,
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
		Engine: EngineConfig{
			Binary:          "pandoc",
			FragmentTimeout: int(DefaultFragmentTimeout / time.Second),
			DocumentTimeout: int(DefaultDocumentTimeout / time.Second),
		},
		History: HistoryConfig{
			Path:     DefaultHistoryPath,
			MaxItems: DefaultHistoryMax,
		},
	}
}

// Load reads a YAML config file, fills unset fields with defaults, applies
// environment overrides and validates the result. An empty path yields the
// defaults with overrides applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}

	cfg.applyEnv()
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Environment overrides, applied after the file so deployments can adjust
// a shared config without editing it.
func (c *Config) applyEnv() {
	if v := os.Getenv("WORDTEX_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("WORDTEX_PANDOC"); v != "" {
		c.Engine.Binary = v
	}
	if v := os.Getenv("WORDTEX_HISTORY"); v != "" {
		c.History.Path = v
	}
	if v := os.Getenv("WORDTEX_FRAGMENT_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Engine.FragmentTimeout = n
		}
	}
	if v := os.Getenv("WORDTEX_DOCUMENT_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Engine.DocumentTimeout = n
		}
	}
}

func (c *Config) fillDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Engine.Binary == "" {
		c.Engine.Binary = "pandoc"
	}
	if c.Engine.FragmentTimeout == 0 {
		c.Engine.FragmentTimeout = int(DefaultFragmentTimeout / time.Second)
	}
	if c.Engine.DocumentTimeout == 0 {
		c.Engine.DocumentTimeout = int(DefaultDocumentTimeout / time.Second)
	}
	if c.History.MaxItems == 0 {
		c.History.MaxItems = DefaultHistoryMax
	}
}

// Validate checks value ranges. Nil receivers validate clean so optional
// configs need no guard at the call site.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("%w: server.maxBodyBytes must not be negative, got %d", ErrInvalidValue, c.Server.MaxBodyBytes)
	}
	if c.Engine.FragmentTimeout < 0 {
		return fmt.Errorf("%w: engine.fragmentTimeout must not be negative, got %d", ErrInvalidValue, c.Engine.FragmentTimeout)
	}
	if c.Engine.DocumentTimeout < 0 {
		return fmt.Errorf("%w: engine.documentTimeout must not be negative, got %d", ErrInvalidValue, c.Engine.DocumentTimeout)
	}
	if c.History.MaxItems < 0 {
		return fmt.Errorf("%w: history.maxItems must not be negative, got %d", ErrInvalidValue, c.History.MaxItems)
	}
	return nil
}
