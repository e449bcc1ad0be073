package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config aggregates all application configuration
type Config struct {
	SerpAPI SerpAPIConfig `yaml:"serpapi"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// SerpAPIConfig controls the upstream flight-search client.
//
// The API key itself is deliberately absent: it is read from the
// environment at call time so a missing credential only fails searches,
// not startup or server_status.
type SerpAPIConfig struct {
	BaseURL        string `yaml:"base_url" env:"SERPAPI_BASE_URL" env-default:"https://serpapi.com"`
	Currency       string `yaml:"currency" env:"SERPAPI_CURRENCY" env-default:"USD"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"SERPAPI_TIMEOUT_SECONDS" env-default:"30"`
	FlightLimit    int    `yaml:"flight_limit" env:"SERPAPI_FLIGHT_LIMIT" env-default:"5"`
}

// ServerConfig holds settings for the HTTP transport
type ServerConfig struct {
	Port int `yaml:"port" env:"PORT" env-default:"3001"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// Load reads configuration from config.yaml and environment variables
// Priority: Env Vars > Config File > Defaults
func Load() (*Config, error) {
	var cfg Config

	// Read config.yaml if present, then override with envs
	err := cleanenv.ReadConfig("config.yaml", &cfg)
	if err != nil {
		// If file doesn't exist, just read env vars
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env config: %w", err)
		}
	}

	return &cfg, nil
}
