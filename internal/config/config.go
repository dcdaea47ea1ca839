package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Network sources accepted by NETWORK_SOURCE
const (
	SourceBuiltin  = "builtin"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

// Config holds all configuration for the dashboard service
type Config struct {
	// HTTP
	Port           string
	AllowedOrigins []string
	StaticDir      string

	// Simulation
	TickInterval  time.Duration
	TickIncrement float64
	ConflictDelay time.Duration
	RandomSeed    int64

	// Network source
	NetworkSource string
	DatabasePath  string
	DatabaseURL   string

	// Logging
	LogLevel string
	LogDir   string

	// GTFS-RT export frame
	FeedOriginLat     float64
	FeedOriginLon     float64
	FeedMetersPerUnit float64
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		// HTTP
		Port:           getEnv("PORT", "8081"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		StaticDir:      getEnv("STATIC_DIR", ""),

		// Simulation
		TickInterval:  time.Duration(getEnvInt("TICK_INTERVAL_MS", 500)) * time.Millisecond,
		TickIncrement: getEnvFloat("TICK_INCREMENT", 0.005),
		ConflictDelay: time.Duration(getEnvInt("CONFLICT_DELAY_MS", 8000)) * time.Millisecond,
		RandomSeed:    int64(getEnvInt("RANDOM_SEED", 0)),

		// Network source
		NetworkSource: getEnv("NETWORK_SOURCE", SourceBuiltin),
		DatabasePath:  getEnv("SQLITE_DATABASE", "data/network.db"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogDir:   getEnv("LOG_DIR", "logs"),

		// Chennai Central (MAS) by default
		FeedOriginLat:     getEnvFloat("FEED_ORIGIN_LAT", 13.0827),
		FeedOriginLon:     getEnvFloat("FEED_ORIGIN_LON", 80.2707),
		FeedMetersPerUnit: getEnvFloat("FEED_METERS_PER_UNIT", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping empty entries
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
