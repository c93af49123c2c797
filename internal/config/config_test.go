package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Vault.Enabled {
		t.Errorf("Vault should be disabled by default")
	}
	if cfg.Scheduler.BacklogThreshold != 72*time.Hour {
		t.Errorf("BacklogThreshold = %v, want 72h", cfg.Scheduler.BacklogThreshold)
	}
	if cfg.Events.DeliveryTimeout != 10*time.Second {
		t.Errorf("DeliveryTimeout = %v, want 10s", cfg.Events.DeliveryTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("RATE_LIMIT_REQUESTS", "7")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("SCHEDULER_BACKLOG_THRESHOLD", "36h")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.RateLimit.Requests != 7 || cfg.RateLimit.Enabled {
		t.Errorf("unexpected rate limit config: %+v", cfg.RateLimit)
	}
	if cfg.Scheduler.BacklogThreshold != 36*time.Hour {
		t.Errorf("BacklogThreshold = %v, want 36h", cfg.Scheduler.BacklogThreshold)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.Database.MaxOpenConns)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			JWT:       JWTConfig{Secret: "s"},
			Scheduler: SchedulerConfig{BacklogThreshold: time.Hour},
			App:       AppConfig{Env: "development", LogFormat: "json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing jwt secret", func(c *Config) { c.JWT.Secret = "" }, true},
		{"production without db password", func(c *Config) { c.App.Env = "production" }, true},
		{"vault without token", func(c *Config) { c.Vault.Enabled = true }, true},
		{"vault with token", func(c *Config) { c.Vault.Enabled = true; c.Vault.Token = "t" }, false},
		{"non-positive threshold", func(c *Config) { c.Scheduler.BacklogThreshold = 0 }, true},
		{"text log format", func(c *Config) { c.App.LogFormat = "TEXT" }, false},
		{"unknown log format", func(c *Config) { c.App.LogFormat = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// unsetEnv clears key for the test and restores it afterwards
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset %s: %v", key, err)
	}
}

func TestLoadReadsLocalThenParentEnvFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	unsetEnv(t, "SERVER_PORT")
	unsetEnv(t, "SERVER_HOST")
	unsetEnv(t, "LOG_LEVEL")

	root := t.TempDir()
	service := filepath.Join(root, "service")
	if err := os.Mkdir(service, 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	writeFile := func(path, content string) {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
	writeFile(filepath.Join(service, ".env"), "SERVER_PORT=9090\nLOG_LEVEL=debug\n")
	writeFile(filepath.Join(root, ".env"), "SERVER_HOST=0.0.0.0\nLOG_LEVEL=warn\n")
	t.Chdir(service)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, want 9090 from .env", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 from ../.env", cfg.Server.Host)
	}
	if cfg.App.LogLevel != "debug" {
		t.Errorf("App.LogLevel = %q, the local .env should win", cfg.App.LogLevel)
	}
}

func TestLoadEnvFilesKeepsProcessEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "7000")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SERVER_PORT=9090\n"), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	loadEnvFiles(path, filepath.Join(dir, "missing.env"))
	if got := os.Getenv("SERVER_PORT"); got != "7000" {
		t.Errorf("SERVER_PORT = %q, process environment should win", got)
	}
}
