package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Monitor  MonitorConfig
	Sources  SourcesConfig
	Forecast ForecastConfig
	Redis    RedisConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Host                    string
	Port                    int
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	IdleTimeout             time.Duration
	GracefulShutdownTimeout time.Duration
}

type MonitorConfig struct {
	RefreshInterval time.Duration
	SourceDelay     time.Duration
	Workers         int
	RequestTimeout  time.Duration
	Dedup           bool
}

type SourcesConfig struct {
	// File names a JSON registry overriding the compiled-in default set.
	File string
}

type ForecastConfig struct {
	BaseURL string
	// LocationsJSON maps location id -> "lat,lon".
	LocationsJSON string
	CacheTTL      time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string // json or text
}

type MetricsConfig struct {
	Enabled bool
	Port    int
	Path    string
}

type RedisConfig struct {
	URL string
}

// Load loads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:                    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:                    getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:             getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:            getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:             getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			GracefulShutdownTimeout: getEnvDuration("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Monitor: MonitorConfig{
			RefreshInterval: time.Duration(getEnvInt("REFRESH_MINUTES", 10)) * time.Minute,
			SourceDelay:     getEnvDuration("SOURCE_DELAY", 500*time.Millisecond),
			Workers:         getEnvInt("MONITOR_WORKERS", 1),
			RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
			Dedup:           getEnvBool("MONITOR_DEDUP", false),
		},
		Sources: SourcesConfig{
			File: getEnv("SOURCES_FILE", ""),
		},
		Forecast: ForecastConfig{
			BaseURL:       getEnv("FORECAST_BASE_URL", "https://api.open-meteo.com/v1/forecast"),
			LocationsJSON: getEnv("FORECAST_LOCATIONS", ""),
			CacheTTL:      getEnvDuration("FORECAST_CACHE_TTL", 10*time.Minute),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Port:    getEnvInt("METRICS_PORT", 9090),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Monitor.RefreshInterval < time.Minute {
		return fmt.Errorf("refresh interval must be at least one minute")
	}
	if c.Monitor.Workers < 1 {
		return fmt.Errorf("monitor worker count must be at least 1")
	}
	if c.Monitor.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
