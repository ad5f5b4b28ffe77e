package config

import (
	"errors"
	"os"
)

// Config holds process-level settings read from the environment.
type Config struct {
	DatabaseURL string
	Port        string
}

// Load reads configuration from environment variables. DATABASE_URL is
// required; everything else has a default.
func Load() (*Config, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable not set")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		DatabaseURL: databaseURL,
		Port:        port,
	}, nil
}
