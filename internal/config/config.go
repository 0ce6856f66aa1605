package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spacefarm/agrorisk/internal/climate"
)

type Config struct {
	Server    ServerConfig
	Scheduler SchedulerConfig
	Power     PowerConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	RateLimitRPS int
}

type SchedulerConfig struct {
	Interval          time.Duration
	Jitter            time.Duration
	DisableDemoFields bool
}

// PowerConfig holds the NASA POWER API settings.
type PowerConfig struct {
	BaseURL   string
	Parameter string
	Community string
	Timeout   time.Duration
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "localhost"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS: getEnvInt("RATE_LIMIT_RPS", 5),
		},
		Scheduler: SchedulerConfig{
			Interval:          time.Duration(getEnvInt("SCHEDULER_INTERVAL_SECONDS", 900)) * time.Second,
			Jitter:            time.Duration(getEnvInt("SCHEDULER_JITTER_SECONDS", 10)) * time.Second,
			DisableDemoFields: getEnvBool("DISABLE_DEMO_FIELDS", false),
		},
		Power: PowerConfig{
			BaseURL:   getEnv("POWER_BASE_URL", climate.DefaultBaseURL),
			Parameter: getEnv("POWER_PARAMETER", "PRECTOTCORR"),
			Community: getEnv("POWER_COMMUNITY", "AG"),
			Timeout:   getEnvDuration("POWER_TIMEOUT", 20*time.Second),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimitRPS < 1 {
		return fmt.Errorf("invalid rate limit: %d", c.Server.RateLimitRPS)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Scheduler.Interval < time.Second {
		return fmt.Errorf("scheduler interval must be at least 1 second")
	}
	if c.Scheduler.Jitter < 0 {
		return fmt.Errorf("scheduler jitter must not be negative")
	}

	if c.Power.BaseURL == "" {
		return fmt.Errorf("POWER_BASE_URL must not be empty")
	}
	if c.Power.Parameter == "" {
		return fmt.Errorf("POWER_PARAMETER must not be empty")
	}
	if c.Power.Community == "" {
		return fmt.Errorf("POWER_COMMUNITY must not be empty")
	}
	if c.Power.Timeout <= 0 {
		return fmt.Errorf("POWER_TIMEOUT must be positive")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
