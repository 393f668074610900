package config

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port    string
		Env     string
		Timeout time.Duration
	}

	// Storage configuration
	Storage struct {
		Backend  string // "memory" or "postgres"
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	// JWT configuration
	JWT struct {
		Secret string
		Expiry time.Duration
	}

	// AI generation configuration
	AI struct {
		GeminiAPIKey string
		Model        string
		Timeout      time.Duration
	}

	// Security configuration
	Security struct {
		RateLimit      float64
		RateLimitBurst int
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}
}

var (
	instance *Config
	once     sync.Once
)

// New creates a new Config instance with values from environment variables.
// Uses singleton pattern to ensure only one instance exists.
func New() *Config {
	once.Do(func() {
		// Load .env file if exists
		godotenv.Load()

		instance = &Config{}

		// Server config
		instance.Server.Port = getEnvString("PORT", "8081")
		instance.Server.Env = getEnvString("APP_ENV", "development")
		instance.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 30*time.Second)

		// Storage config
		instance.Storage.Backend = getEnvString("STORAGE_BACKEND", "memory")
		instance.Storage.Host = getEnvString("DB_HOST", "localhost")
		instance.Storage.Port = getEnvString("DB_PORT", "5432")
		instance.Storage.User = getEnvString("DB_USER", "postgres")
		instance.Storage.Password = getEnvString("DB_PASSWORD", "postgres")
		instance.Storage.Name = getEnvString("DB_NAME", "companion-chat")
		instance.Storage.SSLMode = getEnvString("DB_SSL_MODE", "disable")

		// JWT config
		instance.JWT.Secret = getEnvString("JWT_SECRET", "default-jwt-secret-do-not-use-in-production")
		instance.JWT.Expiry = getEnvDuration("JWT_EXPIRY", 24*time.Hour)

		// AI config
		instance.AI.GeminiAPIKey = getEnvString("GEMINI_API_KEY", "")
		instance.AI.Model = getEnvString("GEMINI_MODEL", "gemini-pro")
		instance.AI.Timeout = getEnvDuration("AI_TIMEOUT", 30*time.Second)

		// Security config
		instance.Security.RateLimit = float64(getEnvInt("RATE_LIMIT", 5))
		instance.Security.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 10)

		// Logging config
		instance.Logging.Level = getEnvString("LOG_LEVEL", "info")
		instance.Logging.Format = getEnvString("LOG_FORMAT", "json")
	})

	return instance
}

// Get returns the singleton Config instance
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
