// Package config reads the process configuration from the environment, after
// loading a .env file when one is present.
package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"3333"`
	DatabaseURL string `env:"DATABASE_URL"`

	ClerkSecretKey string `env:"CLERK_SECRET_KEY"`

	RedisURL string `env:"REDIS_URL"`

	Neo4jURI      string `env:"NEO4J_URI"`
	Neo4jUser     string `env:"NEO4J_USER" envDefault:"neo4j"`
	Neo4jPassword string `env:"NEO4J_PASSWORD"`
	Neo4jDatabase string `env:"NEO4J_DATABASE" envDefault:"neo4j"`

	PostmarkToken   string `env:"POSTMARK_TOKEN"`
	ReportEmailFrom string `env:"REPORT_EMAIL_FROM" envDefault:"catch-upreporting@bloompass.io"`
	ReportEmailTo   string `env:"REPORT_EMAIL_TO"`

	FCMCredentialsFile string `env:"FCM_CREDENTIALS_FILE" envDefault:"./serviceAccountKey.json"`

	MaxChainLength   int `env:"MAX_CHAIN_LENGTH" envDefault:"512"`
	ScheduleAttempts int `env:"SCHEDULE_ATTEMPTS" envDefault:"5"`

	NotificationWorkers int `env:"NOTIFICATION_WORKERS" envDefault:"10"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"30"`

	MetricsUser string `env:"METRICS_USER"`
	MetricsPass string `env:"METRICS_PASS"`
}

// Load reads .env (if any) and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	return Parse()
}

// Parse reads the environment without touching .env.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxChainLength <= 0 {
		return Config{}, errors.New("MAX_CHAIN_LENGTH must be positive")
	}
	return cfg, nil
}

// RequireAPI checks the settings the HTTP server cannot start without.
func (c Config) RequireAPI() error {
	if c.ClerkSecretKey == "" {
		return errors.New("CLERK_SECRET_KEY environment variable is not set")
	}
	return c.RequireDatabase()
}

func (c Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable is not set")
	}
	return nil
}

func (c Config) HasNeo4j() bool {
	return c.Neo4jURI != ""
}

func (c Config) HasPostmark() bool {
	return c.PostmarkToken != "" && c.ReportEmailTo != ""
}
