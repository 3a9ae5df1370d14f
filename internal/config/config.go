// Package config provides unified configuration loading for docpulse.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the docpulse servers and CLI.
type Config struct {
	API           APIConfig           `yaml:"api"`
	WS            WSConfig            `yaml:"ws"`
	Redis         RedisConfig         `yaml:"redis"`
	Upload        UploadConfig        `yaml:"upload"`
	Detection     DetectionConfig     `yaml:"detection"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// APIConfig holds upload/status HTTP server settings.
type APIConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// WSConfig holds WebSocket delivery server settings.
type WSConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	OutboxSize       int           `yaml:"outbox_size"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// RedisConfig holds Redis connection settings for the event bus.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// UploadConfig holds document upload settings.
type UploadConfig struct {
	Dir       string `yaml:"dir"`
	MaxSizeMB int64  `yaml:"max_size_mb"`
}

// DetectionConfig holds analysis job settings. PageDelay throttles the run
// between phases and pages; set to zero to disable.
type DetectionConfig struct {
	PageDelay time.Duration `yaml:"page_delay"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the default configuration values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			Host:             "0.0.0.0",
			Port:             8080,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     30 * time.Second,
			IdleTimeout:      60 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		WS: WSConfig{
			Host:             "0.0.0.0",
			Port:             8081,
			OutboxSize:       32,
			GracefulShutdown: 10 * time.Second,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			DB:       0,
			PoolSize: 10,
		},
		Upload: UploadConfig{
			Dir:       "uploads",
			MaxSizeMB: 50,
		},
		Detection: DetectionConfig{
			PageDelay: time.Second,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
	}
}

// Load reads configuration from an optional YAML file and applies
// environment overrides on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for obvious misconfiguration.
func (c *Config) Validate() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api port: %d", c.API.Port)
	}
	if c.WS.Port <= 0 || c.WS.Port > 65535 {
		return fmt.Errorf("invalid ws port: %d", c.WS.Port)
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}
	if c.WS.OutboxSize <= 0 {
		return fmt.Errorf("ws outbox size must be positive, got %d", c.WS.OutboxSize)
	}
	if c.Upload.Dir == "" {
		return fmt.Errorf("upload dir is required")
	}
	return nil
}

// applyEnvOverrides applies DOCPULSE_* environment variables over the
// loaded configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DOCPULSE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("DOCPULSE_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}
	if v := os.Getenv("DOCPULSE_WS_HOST"); v != "" {
		cfg.WS.Host = v
	}
	if v := os.Getenv("DOCPULSE_WS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.WS.Port = port
		}
	}
	if v := os.Getenv("DOCPULSE_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("DOCPULSE_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("DOCPULSE_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("DOCPULSE_UPLOAD_DIR"); v != "" {
		cfg.Upload.Dir = v
	}
	if v := os.Getenv("DOCPULSE_PAGE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Detection.PageDelay = d
		}
	}
	if v := os.Getenv("DOCPULSE_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("DOCPULSE_LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}
