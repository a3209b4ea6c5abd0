// Package config loads client configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// ServerURL is the base URL of the game service.
	ServerURL string `env:"CATAN_SERVER_URL" envDefault:"http://localhost:5001"`
	LogLevel  string `env:"CATAN_LOG_LEVEL" envDefault:"info"`
	// PacingDelay is the wait before automated primary moves.
	PacingDelay time.Duration `env:"CATAN_PACING_DELAY" envDefault:"600ms"`
	// PollInterval is the PvP snapshot poll period.
	PollInterval time.Duration `env:"CATAN_POLL_INTERVAL" envDefault:"2s"`
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %v", err)
	}
	return cfg, nil
}
