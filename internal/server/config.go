package server

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration so TOML values like "15s" decode.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config holds the full server configuration, loaded from a TOML file with
// environment variable overrides.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Cache   CacheConfig   `toml:"cache"`
	Store   StoreConfig   `toml:"store"`
	Dataset DatasetConfig `toml:"dataset"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	IdleTimeout     Duration `toml:"idle_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// CacheConfig selects and configures the label cache backend.
type CacheConfig struct {
	Backend  string `toml:"backend"` // none, file, redis
	Dir      string `toml:"dir"`     // file backend
	Addr     string `toml:"addr"`    // redis backend
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"` // optional key namespace
}

// StoreConfig selects and configures the record store backend.
type StoreConfig struct {
	Backend  string `toml:"backend"` // memory, mongo
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// DatasetConfig points at an optional GeoJSON dataset that is labeled and
// indexed at startup for spatial queries.
type DatasetConfig struct {
	Path      string  `toml:"path"`
	Precision float64 `toml:"precision"`
}

// DefaultConfig returns a config suitable for local development.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     Duration{15 * time.Second},
			WriteTimeout:    Duration{15 * time.Second},
			IdleTimeout:     Duration{60 * time.Second},
			ShutdownTimeout: Duration{30 * time.Second},
		},
		Cache: CacheConfig{Backend: "none"},
		Store: StoreConfig{Backend: "memory", Database: "polylabel"},
	}
}

// LoadConfig reads a TOML config file and applies environment overrides.
// An empty path loads defaults plus environment overrides only.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, cfg.validate()
}

// applyEnv overrides file settings with POLYLABEL_* environment variables.
// Secrets like the redis password and mongo URI are expected to arrive this
// way rather than in the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("POLYLABEL_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("POLYLABEL_CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("POLYLABEL_REDIS_ADDR"); v != "" {
		c.Cache.Addr = v
	}
	if v := os.Getenv("POLYLABEL_REDIS_PASSWORD"); v != "" {
		c.Cache.Password = v
	}
	if v := os.Getenv("POLYLABEL_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Cache.DB = db
		}
	}
	if v := os.Getenv("POLYLABEL_STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("POLYLABEL_MONGO_URI"); v != "" {
		c.Store.URI = v
	}
	if v := os.Getenv("POLYLABEL_MONGO_DATABASE"); v != "" {
		c.Store.Database = v
	}
	if v := os.Getenv("POLYLABEL_DATASET"); v != "" {
		c.Dataset.Path = v
	}
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case "", "none", "file", "redis":
	default:
		return fmt.Errorf("invalid cache backend: %q (must be one of: none, file, redis)", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case "", "memory", "mongo":
	default:
		return fmt.Errorf("invalid store backend: %q (must be one of: memory, mongo)", c.Store.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.Addr == "" {
		return fmt.Errorf("cache backend redis requires addr")
	}
	if c.Store.Backend == "mongo" && c.Store.URI == "" {
		return fmt.Errorf("store backend mongo requires uri")
	}
	return nil
}
