// Package config handles loading and parsing application configuration.
// Values come from (later sources win):
//  1. The env-default tags below, so the service runs with no config at all
//  2. An optional YAML file (--config flag or CONFIG_PATH)
//  3. Environment variables, including ones loaded from a .env file
//
// The parsed values are returned as a *Config pointer so the struct is
// shared by reference rather than copied everywhere.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Storage backends accepted in storage.backend.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity: "dev", "staging", "prod".
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	// Version is reported by the app_info metric and the startup log.
	Version string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`

	Storage       Storage       `yaml:"storage"`
	HTTPServer    HTTPServer    `yaml:"http_server"`
	MetricsServer MetricsServer `yaml:"metrics_server"`
}

// Storage selects and configures the record store.
type Storage struct {
	Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"memory"`
	// Path is only used by the sqlite backend.
	Path string `yaml:"path" env:"STORAGE_PATH" env-default:":memory:"`
}

// HTTPServer holds settings for the main API server.
type HTTPServer struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            int           `yaml:"port" env:"HTTP_PORT" env-default:"5000"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Addr is the host:port the API server listens on.
func (h HTTPServer) Addr() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
}

// MetricsServer holds settings for the standalone metrics listener.
// It binds to the same host as the API server.
type MetricsServer struct {
	Port int `yaml:"port" env:"METRICS_PORT" env-default:"8000"`
}

// MetricsAddr is the host:port the metrics server listens on.
func (c *Config) MetricsAddr() string {
	return net.JoinHostPort(c.HTTPServer.Host, strconv.Itoa(c.MetricsServer.Port))
}

// Load builds a Config. configPath may be empty, in which case CONFIG_PATH
// is consulted and, failing that, only defaults and the environment apply.
func Load(configPath string) (*Config, error) {
	// A missing .env is normal; anything else (bad syntax) is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	var cfg Config
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load that exits the process on failure.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %s", err.Error())
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend)
	}
	if c.HTTPServer.Port == c.MetricsServer.Port {
		return fmt.Errorf("http_server.port and metrics_server.port must differ (both %d)", c.HTTPServer.Port)
	}
	return nil
}
