package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	HTTP     HTTPConfig
	Health   HealthConfig
	Plan     PlanConfig
}

// DatabaseConfig contains store settings.
type DatabaseConfig struct {
	Name string // name of the in-memory SQLite database
}

// HTTPConfig contains REST server settings.
type HTTPConfig struct {
	Address        string   // listen address (e.g., ":3333")
	AllowedOrigins []string // CORS origins
}

// HealthConfig contains gRPC health server settings.
type HealthConfig struct {
	Address string // empty disables the health server
}

// PlanConfig contains plan quota settings.
type PlanConfig struct {
	FreeLimit int // max to-dos a free user may own when creating a new one
}

// LoadDotEnv reads a .env file into the process environment if one exists.
// Variables already set are not overridden.
func LoadDotEnv(paths ...string) {
	_ = godotenv.Load(paths...) // ignore error if no .env
}

// Load loads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	limit, err := getEnvInt("FREE_PLAN_LIMIT", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Name: getEnv("DB_NAME", "todos"),
		},
		HTTP: HTTPConfig{
			Address:        getEnv("HTTP_ADDRESS", ":3333"),
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Health: HealthConfig{
			Address: getEnv("HEALTH_ADDRESS", ":50051"),
		},
		Plan: PlanConfig{
			FreeLimit: limit,
		},
	}

	if cfg.Plan.FreeLimit <= 0 {
		return nil, fmt.Errorf("FREE_PLAN_LIMIT must be positive, got %d", cfg.Plan.FreeLimit)
	}
	if cfg.HTTP.Address == "" {
		return nil, fmt.Errorf("HTTP_ADDRESS must not be empty")
	}
	if cfg.Database.Name == "" {
		return nil, fmt.Errorf("DB_NAME must not be empty")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// getEnvInt retrieves an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultVal int) (int, error) {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return intVal, nil
	}
	return defaultVal, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// String returns a string representation of the config.
func (c *Config) String() string {
	health := c.Health.Address
	if health == "" {
		health = "disabled"
	}
	return fmt.Sprintf("Config{DB: %s, HTTP: %s, Health: %s, FreeLimit: %d, Origins: %v}",
		c.Database.Name, c.HTTP.Address, health, c.Plan.FreeLimit, c.HTTP.AllowedOrigins)
}
