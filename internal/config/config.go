package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	OpenAI   OpenAIConfig
	Advisor  AdvisorConfig
	Crypto   CryptoConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// OpenAIConfig holds settings for the LLM intent router and narration calls.
// An empty APIKey disables the router; the orchestrator then falls back to
// keyword routing and canned narration.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// AdvisorConfig holds narration pacing and the per-step timeout for the
// streaming advisor. PacingDelay is cosmetic only and safe to set to zero.
type AdvisorConfig struct {
	PacingDelay time.Duration
	StepTimeout time.Duration
}

// CryptoConfig holds the optional fernet key used to encrypt stored
// questionnaire payloads at rest. Empty means plaintext storage.
type CryptoConfig struct {
	SessionKey string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio_advisor.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		OpenAI: OpenAIConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature: getEnvFloat32("OPENAI_TEMPERATURE", 0.2),
			Timeout:     getEnvDuration("OPENAI_TIMEOUT", 60*time.Second),
		},
		Advisor: AdvisorConfig{
			PacingDelay: getEnvDuration("ADVISOR_PACING_DELAY", 400*time.Millisecond),
			StepTimeout: getEnvDuration("ADVISOR_STEP_TIMEOUT", 90*time.Second),
		},
		Crypto: CryptoConfig{
			SessionKey: getEnv("SESSION_ENCRYPTION_KEY", ""),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvDuration parses an environment variable as a time.Duration or returns the default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// getEnvFloat32 parses an environment variable as a float32 or returns the default
func getEnvFloat32(key string, defaultValue float32) float32 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return defaultValue
	}
	return float32(f)
}
