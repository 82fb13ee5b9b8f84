package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hasirciogluhq/xsquare/cmd/square/internal/core"
	"github.com/hasirciogluhq/xsquare/cmd/square/internal/protocol"
)

// Config holds all server configuration
type Config struct {
	// Core
	Debug bool

	// Server
	Port             int
	Mode             core.DispatchMode
	IdleTimeout      time.Duration
	HealthServerPort string // empty disables the health server
}

// ClientConfig holds the demo client configuration
type ClientConfig struct {
	Host         string
	Port         int
	RequestCount int
}

// LoadFromEnv loads server configuration from environment variables
func LoadFromEnv() (*Config, error) {
	mode, err := core.ParseDispatchMode(getEnv("SERVER_MODE", string(core.DispatchConcurrent)))
	if err != nil {
		return nil, err
	}

	idle, err := getEnvDuration("IDLE_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Debug:            getEnvBool("DEBUG", false),
		Port:             getEnvInt("SQUARE_PORT", protocol.DefaultPort),
		Mode:             mode,
		IdleTimeout:      idle,
		HealthServerPort: os.Getenv("HEALTH_SERVER_PORT"),
	}
	if _, ok := os.LookupEnv("HEALTH_SERVER_PORT"); !ok {
		cfg.HealthServerPort = "8080"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate ensures configuration is coherent
func (c *Config) validate() error {
	if err := validatePort("SQUARE_PORT", c.Port); err != nil {
		return err
	}

	if c.IdleTimeout < 0 {
		return fmt.Errorf("IDLE_TIMEOUT must not be negative: %s", c.IdleTimeout)
	}

	if c.HealthServerPort != "" {
		port, err := strconv.Atoi(c.HealthServerPort)
		if err != nil {
			return fmt.Errorf("invalid HEALTH_SERVER_PORT: %s", c.HealthServerPort)
		}
		if err := validatePort("HEALTH_SERVER_PORT", port); err != nil {
			return err
		}
		if port != 0 && port == c.Port {
			return fmt.Errorf("HEALTH_SERVER_PORT and SQUARE_PORT must differ (both %d)", port)
		}
	}

	return nil
}

// LoadClientFromEnv loads the demo client configuration
func LoadClientFromEnv() (*ClientConfig, error) {
	cfg := &ClientConfig{
		Host:         getEnv("SQUARE_HOST", "localhost"),
		Port:         getEnvInt("SQUARE_PORT", protocol.DefaultPort),
		RequestCount: getEnvInt("REQUEST_COUNT", 100),
	}

	if err := validatePort("SQUARE_PORT", cfg.Port); err != nil {
		return nil, err
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("SQUARE_PORT must be set to the server port")
	}
	if cfg.RequestCount < 0 {
		return nil, fmt.Errorf("REQUEST_COUNT must not be negative: %d", cfg.RequestCount)
	}

	return cfg, nil
}

// Helper functions

func validatePort(name string, port int) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("%s out of range: %d (expected 0-65535)", name, port)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
