package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DatabaseURL   string
	SessionSecret string
	// IdleTimeout destroys a session after this much inactivity.
	// Zero disables the idle check.
	IdleTimeout time.Duration
}

// Load reads configuration from the environment, with a .env file as
// fallback for local development.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading env vars from system")
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=tsubame port=5432 sslmode=disable"),
		SessionSecret: getEnv("SESSION_SECRET", "secret_key_change_me"),
		IdleTimeout:   30 * time.Minute,
	}

	if v := os.Getenv("IDLE_TIMEOUT_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("Invalid IDLE_TIMEOUT_MINUTES %q, keeping default", v)
		} else {
			cfg.IdleTimeout = time.Duration(minutes) * time.Minute
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
