package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the clipboard server.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Clipboard  ClipboardConfig  `mapstructure:"clipboard"`
	TTL        TTLConfig        `mapstructure:"ttl"`
	Logs       LogsConfig       `mapstructure:"logs"`
	API        APIConfig        `mapstructure:"api"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	LogLevel        string        `mapstructure:"log_level"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ClipboardConfig controls entry lifetime.
type ClipboardConfig struct {
	Retention time.Duration `mapstructure:"retention"`
}

// TTLConfig controls the background cleaner.
type TTLConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// LogsConfig sizes the in-memory log buffer.
type LogsConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}

// APIConfig limits request handling.
type APIConfig struct {
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// MonitoringConfig toggles the Prometheus endpoint.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// Load reads configuration from defaults, an optional config.yaml and
// CLIPBOARD_* environment variables, in increasing priority.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("CLIPBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "5s")

	v.SetDefault("clipboard.retention", "5m")
	v.SetDefault("ttl.interval", "1s")
	v.SetDefault("logs.buffer_size", 1000)
	v.SetDefault("api.max_body_bytes", 1<<20)

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.namespace", "")
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Server.Address == "":
		return errors.New("config: server.address is required")
	case c.Clipboard.Retention <= 0:
		return fmt.Errorf("config: clipboard.retention must be positive, got %s", c.Clipboard.Retention)
	case c.TTL.Interval <= 0:
		return fmt.Errorf("config: ttl.interval must be positive, got %s", c.TTL.Interval)
	case c.Logs.BufferSize <= 0:
		return fmt.Errorf("config: logs.buffer_size must be positive, got %d", c.Logs.BufferSize)
	case c.API.MaxBodyBytes <= 0:
		return fmt.Errorf("config: api.max_body_bytes must be positive, got %d", c.API.MaxBodyBytes)
	case c.Server.ShutdownTimeout <= 0:
		return fmt.Errorf("config: server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout)
	}
	return nil
}
