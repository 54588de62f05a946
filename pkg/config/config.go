package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Storage   StorageConfig   `yaml:"storage" envconfig:"STORAGE"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	JWT       JWTConfig       `yaml:"jwt" envconfig:"JWT"`
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host string `yaml:"host" envconfig:"HOST"`
	Port int    `yaml:"port" envconfig:"PORT"`
	// CORSOrigins lists allowed origins for the browser frontend
	CORSOrigins []string `yaml:"cors_origins" envconfig:"CORS_ORIGINS"`
}

// StorageConfig contains storage configuration
type StorageConfig struct {
	Type    string        `yaml:"type" envconfig:"TYPE"` // memory, mongodb
	MongoDB MongoDBConfig `yaml:"mongodb" envconfig:"MONGODB"`
}

// MongoDBConfig contains MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string `yaml:"uri" envconfig:"URI"`
	Database string `yaml:"database" envconfig:"DATABASE"`
	Timeout  int    `yaml:"timeout" envconfig:"TIMEOUT"` // seconds
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" envconfig:"FORMAT"` // json, text
}

// JWTConfig contains JWT configuration.
// Team and admin sessions have independent lifetimes: team tokens are short
// lived, admin tokens cover a whole competition weekend.
type JWTConfig struct {
	Secret           string `yaml:"secret" envconfig:"SECRET"`
	Issuer           string `yaml:"issuer" envconfig:"ISSUER"`
	TeamExpiryHours  int    `yaml:"team_expiry_hours" envconfig:"TEAM_EXPIRY_HOURS"`
	AdminExpiryHours int    `yaml:"admin_expiry_hours" envconfig:"ADMIN_EXPIRY_HOURS"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Submission SubmissionLimitConfig `yaml:"submission" envconfig:"SUBMISSION"`
	Login      LoginLimitConfig      `yaml:"login" envconfig:"LOGIN"`
}

// SubmissionLimitConfig bounds flag submission attempts per caller.
// The window is a strict trailing window: an attempt is forgotten exactly
// WindowSeconds after it was made.
type SubmissionLimitConfig struct {
	Enabled       bool `yaml:"enabled" envconfig:"ENABLED"`
	MaxAttempts   int  `yaml:"max_attempts" envconfig:"MAX_ATTEMPTS"`
	WindowSeconds int  `yaml:"window_seconds" envconfig:"WINDOW_SECONDS"`
}

// LoginLimitConfig bounds login attempts per identifier
type LoginLimitConfig struct {
	Enabled        bool `yaml:"enabled" envconfig:"ENABLED"`
	MaxAttempts    int  `yaml:"max_attempts" envconfig:"MAX_ATTEMPTS"`
	WindowSeconds  int  `yaml:"window_seconds" envconfig:"WINDOW_SECONDS"`
	LockoutSeconds int  `yaml:"lockout_seconds" envconfig:"LOCKOUT_SECONDS"`
}

// Load loads configuration from file and environment variables
func Load(configFile string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Load from YAML file if provided (overrides defaults)
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// File doesn't exist, that's ok - we'll use defaults and env vars
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables (highest priority)
	if err := envconfig.Process("CTF", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible default values
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Type: "memory",
			MongoDB: MongoDBConfig{
				URI:      "mongodb://localhost:27017",
				Database: "ctf_playground",
				Timeout:  10,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		JWT: JWTConfig{
			Issuer:           "ctf-playground",
			TeamExpiryHours:  1,
			AdminExpiryHours: 50,
		},
		RateLimit: RateLimitConfig{
			Submission: SubmissionLimitConfig{
				Enabled:       true,
				MaxAttempts:   5,
				WindowSeconds: 60,
			},
			Login: LoginLimitConfig{
				Enabled:        true,
				MaxAttempts:    10,
				WindowSeconds:  60,
				LockoutSeconds: 300,
			},
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Storage.Type != "memory" && c.Storage.Type != "mongodb" {
		return fmt.Errorf("invalid storage type: %s (must be memory or mongodb)", c.Storage.Type)
	}

	if c.Storage.Type == "mongodb" && c.Storage.MongoDB.URI == "" {
		return fmt.Errorf("mongodb uri is required when using mongodb storage")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}

	if c.JWT.TeamExpiryHours < 1 {
		return fmt.Errorf("invalid team token expiry: %d hours", c.JWT.TeamExpiryHours)
	}

	if c.RateLimit.Submission.Enabled {
		if c.RateLimit.Submission.MaxAttempts < 1 || c.RateLimit.Submission.WindowSeconds < 1 {
			return fmt.Errorf("invalid submission rate limit: %d attempts / %d seconds",
				c.RateLimit.Submission.MaxAttempts, c.RateLimit.Submission.WindowSeconds)
		}
	}

	return nil
}

// Address returns the server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
