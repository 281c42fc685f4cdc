package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	ServerPort      string        `yaml:"server_port"`
	DatabaseType    string        `yaml:"database_type"` // sqlite (default), postgres, mysql
	DatabasePath    string        `yaml:"database_path"` // sqlite only
	DatabaseURL     string        `yaml:"database_url"`  // postgres/mysql DSN
	MigrationsPath  string        `yaml:"migrations_path"`
	SessionDuration time.Duration `yaml:"session_duration"`
	Timezone        string        `yaml:"timezone"` // calendar day boundaries, default Local

	// Sign in with Apple
	AppleClientID     string `yaml:"apple_client_id"`
	AppleClientSecret string `yaml:"apple_client_secret"`
	AppleRedirectURL  string `yaml:"apple_redirect_url"`

	// Invite e-mail delivery (Amazon SES); disabled when FromEmail is empty
	AWSRegion    string `yaml:"aws_region"`
	SESFromEmail string `yaml:"ses_from_email"`
	SESFromName  string `yaml:"ses_from_name"`
	AppBaseURL   string `yaml:"app_base_url"`
}

// Load reads configuration from an optional YAML file (CONFIG_PATH), then
// overrides from environment variables. A .env file is honored if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:      "8080",
		DatabaseType:    "sqlite",
		DatabasePath:    "./familycal.db",
		MigrationsPath:  "./migrations",
		SessionDuration: 24 * time.Hour,
		AWSRegion:       "us-east-1",
		SESFromName:     "Family Calendar",
		AppBaseURL:      "http://localhost:8080",
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setEnv(&cfg.ServerPort, "PORT")
	setEnv(&cfg.DatabaseType, "DB_TYPE")
	setEnv(&cfg.DatabasePath, "DB_PATH")
	setEnv(&cfg.DatabaseURL, "DATABASE_URL")
	setEnv(&cfg.MigrationsPath, "MIGRATIONS_PATH")
	setEnv(&cfg.Timezone, "TIMEZONE")
	setEnv(&cfg.AppleClientID, "APPLE_CLIENT_ID")
	setEnv(&cfg.AppleClientSecret, "APPLE_CLIENT_SECRET")
	setEnv(&cfg.AppleRedirectURL, "APPLE_REDIRECT_URL")
	setEnv(&cfg.AWSRegion, "AWS_REGION")
	setEnv(&cfg.SESFromEmail, "SES_FROM_EMAIL")
	setEnv(&cfg.SESFromName, "SES_FROM_NAME")
	setEnv(&cfg.AppBaseURL, "APP_BASE_URL")

	if v := os.Getenv("SESSION_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SessionDuration = d
		}
	}
}

// setEnv overrides dst with the environment value when set
func setEnv(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

// Location resolves the configured timezone, falling back to the process
// local zone when unset or unknown.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
