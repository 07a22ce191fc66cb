// Package server provides configuration loading with environment overrides,
// runtime defaults, and validation for the chat relay.
package server

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the server configuration settings including security controls.
type Config struct {
	Port            string        `envconfig:"SERVER_PORT" default:":8080"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	MaxMessageSize  int64         `envconfig:"MAX_MESSAGE_SIZE" default:"512"`
	JokeURL         string        `envconfig:"JOKE_URL" default:"https://icanhazdadjoke.com"`
	JokeTimeout     time.Duration `envconfig:"JOKE_TIMEOUT" default:"5s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func defaultConfig() Config {
	return Config{
		Port:            ":8080",
		AllowedOrigins:  []string{"http://localhost:8080"},
		MaxMessageSize:  512,
		JokeURL:         "https://icanhazdadjoke.com",
		JokeTimeout:     5 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func sanitizeConfig(cfg Config) Config {
	if cfg.Port == "" {
		cfg.Port = ":8080"
	}

	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 512
	}

	if cfg.JokeURL == "" {
		cfg.JokeURL = "https://icanhazdadjoke.com"
	}

	if cfg.JokeTimeout <= 0 {
		cfg.JokeTimeout = 5 * time.Second
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	return cfg
}

// NewConfig creates a Config instance populated with default values for all
// settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

// LoadConfig creates a Config instance from environment variables, loading a
// .env file first when one is present. Unset variables keep their defaults.
func LoadConfig() (*Config, error) {
	// A missing .env file is the normal case outside development.
	_ = godotenv.Load()

	cfg := defaultConfig()
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	cfg = sanitizeConfig(cfg)
	return &cfg, nil
}
