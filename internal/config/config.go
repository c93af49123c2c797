package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Vault     VaultConfig
	Scheduler SchedulerConfig
	Events    EventsConfig
	Topics    TopicsConfig
	App       AppConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host            string
	Port            string
	TimeoutRead     time.Duration
	TimeoutWrite    time.Duration
	TimeoutIdle     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// JWTConfig holds the settings used to verify bearer tokens
type JWTConfig struct {
	Secret string
	Issuer string
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Duration time.Duration
}

// VaultConfig holds Vault-related configuration
type VaultConfig struct {
	Enabled      bool
	Address      string
	Token        string
	TransitMount string
	KeyName      string
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	EnableHashChainValidation bool
	HashChainValidationCron   string // e.g. "0 2 * * *" (daily 2 AM)
	EnableBacklogReport       bool
	BacklogReportCron         string
	BacklogThreshold          time.Duration
}

// EventsConfig holds event dispatch configuration
type EventsConfig struct {
	DeliveryTimeout time.Duration
}

// TopicsConfig points at an optional topic registry file.
// The embedded registry is used when Path is empty.
type TopicsConfig struct {
	Path string
}

// AppConfig holds general application configuration
type AppConfig struct {
	Env       string
	Name      string
	Version   string
	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	loadEnvFiles(".env", "../.env")

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "localhost"),
			Port:            getEnv("SERVER_PORT", "8080"),
			TimeoutRead:     getDurationEnv("SERVER_TIMEOUT_READ", 15*time.Second),
			TimeoutWrite:    getDurationEnv("SERVER_TIMEOUT_WRITE", 15*time.Second),
			TimeoutIdle:     getDurationEnv("SERVER_TIMEOUT_IDLE", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "planreview"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "planreview_db"),
			SSLMode:         getEnv("DB_SSLMODE", "prefer"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Issuer: getEnv("JWT_ISSUER", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowedMethods:   getSliceEnv("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getSliceEnv("CORS_ALLOWED_HEADERS", []string{"Accept", "Authorization", "Content-Type"}),
			ExposedHeaders:   getSliceEnv("CORS_EXPOSED_HEADERS", []string{"Link"}),
			AllowCredentials: getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
			MaxAge:           getIntEnv("CORS_MAX_AGE", 300),
		},
		RateLimit: RateLimitConfig{
			Enabled:  getBoolEnv("RATE_LIMIT_ENABLED", true),
			Requests: getIntEnv("RATE_LIMIT_REQUESTS", 100),
			Duration: getDurationEnv("RATE_LIMIT_DURATION", 1*time.Minute),
		},
		Vault: VaultConfig{
			Enabled:      getBoolEnv("VAULT_ENABLED", false),
			Address:      getEnv("VAULT_ADDR", "http://localhost:8200"),
			Token:        getEnv("VAULT_TOKEN", ""),
			TransitMount: getEnv("VAULT_TRANSIT_MOUNT", "transit"),
			KeyName:      getEnv("VAULT_COMMENT_KEY", "review-comments"),
		},
		Scheduler: SchedulerConfig{
			EnableHashChainValidation: getBoolEnv("SCHEDULER_ENABLE_HASH_CHAIN_VALIDATION", true),
			HashChainValidationCron:   getEnv("SCHEDULER_HASH_CHAIN_VALIDATION_CRON", "0 2 * * *"), // Daily 2 AM
			EnableBacklogReport:       getBoolEnv("SCHEDULER_ENABLE_BACKLOG_REPORT", true),
			BacklogReportCron:         getEnv("SCHEDULER_BACKLOG_REPORT_CRON", "0 8 * * 1"), // Monday 8 AM
			BacklogThreshold:          getDurationEnv("SCHEDULER_BACKLOG_THRESHOLD", 72*time.Hour),
		},
		Events: EventsConfig{
			DeliveryTimeout: getDurationEnv("EVENTS_DELIVERY_TIMEOUT", 10*time.Second),
		},
		Topics: TopicsConfig{
			Path: getEnv("TOPICS_FILE", ""),
		},
		App: AppConfig{
			Env:       getEnv("APP_ENV", "development"),
			Name:      getEnv("APP_NAME", "PlanReview"),
			Version:   getEnv("APP_VERSION", "1.0.0"),
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Database.Password == "" && c.App.Env == "production" {
		return fmt.Errorf("DB_PASSWORD is required in production")
	}
	if c.Vault.Enabled && c.Vault.Token == "" {
		return fmt.Errorf("VAULT_TOKEN is required when VAULT_ENABLED is set")
	}
	if c.Scheduler.BacklogThreshold <= 0 {
		return fmt.Errorf("SCHEDULER_BACKLOG_THRESHOLD must be positive")
	}
	switch strings.ToLower(c.App.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.App.LogFormat)
	}
	return nil
}

// Helper functions

// loadEnvFiles reads each file that exists. Variables already set win,
// so earlier files take precedence over later ones.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		// Missing files are fine
		_ = godotenv.Load(path)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, v := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
