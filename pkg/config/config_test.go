package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CTF_JWT_SECRET", "env-secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.Type != "memory" {
		t.Errorf("Storage.Type = %q, want memory", cfg.Storage.Type)
	}
	if cfg.JWT.TeamExpiryHours != 1 {
		t.Errorf("JWT.TeamExpiryHours = %d, want 1", cfg.JWT.TeamExpiryHours)
	}
	if cfg.JWT.AdminExpiryHours != 50 {
		t.Errorf("JWT.AdminExpiryHours = %d, want 50", cfg.JWT.AdminExpiryHours)
	}
	if !cfg.RateLimit.Submission.Enabled || cfg.RateLimit.Submission.MaxAttempts != 5 || cfg.RateLimit.Submission.WindowSeconds != 60 {
		t.Errorf("submission limit = %+v, want 5 attempts / 60 s", cfg.RateLimit.Submission)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CTF_JWT_SECRET", "env-secret")

	cfg, err := Load("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	t.Setenv("CTF_JWT_SECRET", "env-secret")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
storage:
  type: mongodb
  mongodb:
    uri: mongodb://db.example:27017
    database: contest
jwt:
  team_expiry_hours: 2
rate_limit:
  submission:
    enabled: true
    max_attempts: 3
    window_seconds: 30
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Storage.Type != "mongodb" || cfg.Storage.MongoDB.Database != "contest" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.JWT.TeamExpiryHours != 2 {
		t.Errorf("JWT.TeamExpiryHours = %d, want 2", cfg.JWT.TeamExpiryHours)
	}
	if cfg.RateLimit.Submission.MaxAttempts != 3 {
		t.Errorf("submission max attempts = %d, want 3", cfg.RateLimit.Submission.MaxAttempts)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("CTF_JWT_SECRET", "env-secret")
	t.Setenv("CTF_SERVER_PORT", "7070")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, env must win over file", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := defaultConfig()
		cfg.JWT.Secret = "secret"
		return cfg
	}

	if err := base().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad storage type", func(c *Config) { c.Storage.Type = "postgres" }},
		{"missing mongo uri", func(c *Config) { c.Storage.Type = "mongodb"; c.Storage.MongoDB.URI = "" }},
		{"missing jwt secret", func(c *Config) { c.JWT.Secret = "" }},
		{"zero team expiry", func(c *Config) { c.JWT.TeamExpiryHours = 0 }},
		{"bad submission limit", func(c *Config) { c.RateLimit.Submission.MaxAttempts = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestServerConfig_Address(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 9999}
	if got := cfg.Address(); got != "127.0.0.1:9999" {
		t.Errorf("Address() = %q, want 127.0.0.1:9999", got)
	}
}
