// Package config implements the YAML-backed process configuration.
// Grounded on kestfor-in-memorydb's pkg/config (Default/PopulateDefaults/
// Validate per-section), adapted to SarychDB's own sections.
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration document.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Storage     StorageConfig     `yaml:"storage"`
	FileCache   FileCacheConfig   `yaml:"file_cache"`
	SearchCache SearchCacheConfig `yaml:"search_cache"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port         int    `yaml:"port"`
	DataDir      string `yaml:"data_dir"`
	LogLevel     string `yaml:"log_level"`
	ShutdownSecs int    `yaml:"shutdown_secs"`
}

// StorageConfig configures the Database File Store.
type StorageConfig struct {
	// Reserved for future on-disk format knobs; empty today.
}

// FileCacheConfig configures the File Cache (C3).
type FileCacheConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

// SearchCacheConfig configures the Search Cache (C7).
type SearchCacheConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"`
	MaxEntries int `yaml:"max_entries"`
}

// RateLimitConfig configures the ambient per-username token bucket.
type RateLimitConfig struct {
	RequestsPerWindow int `yaml:"requests_per_window"`
	WindowSeconds     int `yaml:"window_seconds"`
	Burst             int `yaml:"burst"`
}

var (
	ErrInvalidPort       = errors.New("config: server.port must be between 1 and 65535")
	ErrInvalidCacheTTL   = errors.New("config: cache ttl_seconds must be positive")
	ErrInvalidRateWindow = errors.New("config: rate_limit.window_seconds must be positive")
)

// Default returns the built-in configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         3030,
			DataDir:      "./data",
			LogLevel:     "info",
			ShutdownSecs: 10,
		},
		FileCache: FileCacheConfig{TTLSeconds: 300},
		SearchCache: SearchCacheConfig{
			TTLSeconds: 300,
			MaxEntries: 100,
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: 100,
			WindowSeconds:     60,
			Burst:             20,
		},
	}
}

// Load reads a YAML config file at path, applying defaults for any field
// left unset and validating the result. A missing file is not an error:
// Load returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, err
	}
	loaded.populateDefaults()
	if err := loaded.Validate(); err != nil {
		return nil, err
	}
	return loaded, nil
}

func (c *Config) populateDefaults() {
	d := Default()
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.DataDir == "" {
		c.Server.DataDir = d.Server.DataDir
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = d.Server.LogLevel
	}
	if c.Server.ShutdownSecs == 0 {
		c.Server.ShutdownSecs = d.Server.ShutdownSecs
	}
	if c.FileCache.TTLSeconds == 0 {
		c.FileCache.TTLSeconds = d.FileCache.TTLSeconds
	}
	if c.SearchCache.TTLSeconds == 0 {
		c.SearchCache.TTLSeconds = d.SearchCache.TTLSeconds
	}
	if c.SearchCache.MaxEntries == 0 {
		c.SearchCache.MaxEntries = d.SearchCache.MaxEntries
	}
	if c.RateLimit.RequestsPerWindow == 0 {
		c.RateLimit.RequestsPerWindow = d.RateLimit.RequestsPerWindow
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = d.RateLimit.WindowSeconds
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = d.RateLimit.Burst
	}
}

// Validate checks the configuration for internally-inconsistent values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}
	if c.FileCache.TTLSeconds <= 0 || c.SearchCache.TTLSeconds <= 0 {
		return ErrInvalidCacheTTL
	}
	if c.RateLimit.WindowSeconds <= 0 {
		return ErrInvalidRateWindow
	}
	return nil
}
