package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the service needs at startup.
type Config struct {
	Port string

	// DatabaseURL is the Postgres DSN for users/wallets. Empty selects the
	// in-memory store (local development only).
	DatabaseURL string

	// RedisURL backs the revocation store and the event stream. Empty
	// selects in-memory revocation and disables event publishing.
	RedisURL string

	AccessSecret  string
	RefreshSecret string

	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	ChallengeWindow time.Duration
}

// Load reads .env files and the process environment.
func Load(logger *logrus.Logger) Config {
	for _, file := range []string{".env", ".env.dev"} {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Overload(file); err != nil && logger != nil {
			logger.WithError(err).Warnf("Failed to load %s", file)
		}
	}

	return Config{
		Port:            GetEnv("PORT", "9000"),
		DatabaseURL:     GetEnv("DATABASE_URL", ""),
		RedisURL:        GetEnv("REDIS_URL", ""),
		AccessSecret:    GetEnv("ACCESS_TOKEN_SECRET", ""),
		RefreshSecret:   GetEnv("REFRESH_TOKEN_SECRET", ""),
		AccessTTL:       GetEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL:      GetEnvDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		ChallengeWindow: GetEnvDuration("CHALLENGE_WINDOW", 5*time.Minute),
	}
}

// GetEnv gets an environment variable with a default value.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt gets an integer environment variable with a default value.
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetEnvDuration gets a duration environment variable with a default value.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
