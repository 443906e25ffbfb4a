package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	ReadOnly    bool
	// Pacing is the delay applied between external-bound calls in bulk
	// operations, purely to respect downstream rate limits.
	Pacing time.Duration
}

func Load() Config {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		ReadOnly:    getEnv("READ_ONLY", "") == "true",
		Pacing:      getDurationMS("PACING_MS", 100),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDurationMS(key string, fallbackMS int) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return time.Duration(fallbackMS) * time.Millisecond
}
