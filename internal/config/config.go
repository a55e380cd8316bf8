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
	Email     EmailConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	App       AppConfig
	Log       LogConfig
	Retry     RetryConfig
	Ingest    IngestConfig
	Vault     VaultConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host         string
	Port         string
	TimeoutRead  time.Duration
	TimeoutWrite time.Duration
	TimeoutIdle  time.Duration
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

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
	InviteExpiration  time.Duration
}

// EmailConfig holds email-related configuration
type EmailConfig struct {
	SMTPHost  string
	SMTPPort  string
	SMTPUser  string
	SMTPPass  string
	SMTPFrom  string
	InviteURL string
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

// AppConfig holds general application configuration
type AppConfig struct {
	Env     string
	Name    string
	Version string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// RetryConfig bounds the retry applied to role updates that race the user
// store's metadata sync. One original failure plus MaxAttempts-1 retries.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

// IngestConfig holds configuration for the document-processing callback.
type IngestConfig struct {
	CallbackToken string
}

// VaultConfig holds Vault-related configuration. When enabled, sensitive
// settings are read from a KV v2 secret at startup and override their
// environment counterparts.
type VaultConfig struct {
	Enabled    bool
	Address    string
	Token      string
	SecretPath string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// .env lookup from most to least specific; godotenv never overrides
	// variables that are already set.
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "localhost"),
			Port:         getEnv("SERVER_PORT", "8080"),
			TimeoutRead:  getDurationEnv("SERVER_TIMEOUT_READ", 15*time.Second),
			TimeoutWrite: getDurationEnv("SERVER_TIMEOUT_WRITE", 15*time.Second),
			TimeoutIdle:  getDurationEnv("SERVER_TIMEOUT_IDLE", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "rfphub"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "rfphub_db"),
			SSLMode:         getEnv("DB_SSLMODE", "prefer"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			Expiration:        getDurationEnv("JWT_EXPIRATION", 24*time.Hour),
			RefreshExpiration: getDurationEnv("JWT_REFRESH_EXPIRATION", 168*time.Hour),
			InviteExpiration:  getDurationEnv("JWT_INVITE_EXPIRATION", 72*time.Hour),
		},
		Email: EmailConfig{
			SMTPHost:  getEnv("SMTP_HOST", ""),
			SMTPPort:  getEnv("SMTP_PORT", "587"),
			SMTPUser:  getEnv("SMTP_USERNAME", ""),
			SMTPPass:  getEnv("SMTP_PASSWORD", ""),
			SMTPFrom:  getEnv("SMTP_FROM", "noreply@example.com"),
			InviteURL: getEnv("EMAIL_INVITE_URL", "http://localhost:3000/accept-invite"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowedMethods:   getSliceEnv("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getSliceEnv("CORS_ALLOWED_HEADERS", []string{"Accept", "Authorization", "Content-Type", "X-Callback-Token"}),
			ExposedHeaders:   getSliceEnv("CORS_EXPOSED_HEADERS", []string{"Link"}),
			AllowCredentials: getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
			MaxAge:           getIntEnv("CORS_MAX_AGE", 300),
		},
		RateLimit: RateLimitConfig{
			Enabled:  getBoolEnv("RATE_LIMIT_ENABLED", true),
			Requests: getIntEnv("RATE_LIMIT_REQUESTS", 100),
			Duration: getDurationEnv("RATE_LIMIT_DURATION", 1*time.Minute),
		},
		App: AppConfig{
			Env:     getEnv("APP_ENV", "development"),
			Name:    getEnv("APP_NAME", "RFP Response Hub"),
			Version: getEnv("APP_VERSION", "1.0.0"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Retry: RetryConfig{
			MaxAttempts: getIntEnv("ROLE_UPDATE_MAX_ATTEMPTS", 2),
			Delay:       getDurationEnv("ROLE_UPDATE_RETRY_DELAY", 1*time.Second),
		},
		Ingest: IngestConfig{
			CallbackToken: getEnv("INGEST_CALLBACK_TOKEN", ""),
		},
		Vault: VaultConfig{
			Enabled:    getBoolEnv("VAULT_ENABLED", false),
			Address:    getEnv("VAULT_ADDR", "http://localhost:8200"),
			Token:      getEnv("VAULT_TOKEN", ""),
			SecretPath: getEnv("VAULT_SECRET_PATH", "rfp-hub/api"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplySecrets overlays sensitive settings from a Vault secret's key/value
// data. Recognized keys override their environment-sourced counterparts;
// unknown keys and non-string values are ignored.
func (c *Config) ApplySecrets(data map[string]interface{}) {
	secret := func(key string) string {
		if v, ok := data[key].(string); ok {
			return v
		}
		return ""
	}

	if v := secret("jwt_secret"); v != "" {
		c.JWT.Secret = v
	}
	if v := secret("smtp_password"); v != "" {
		c.Email.SMTPPass = v
	}
	if v := secret("ingest_callback_token"); v != "" {
		c.Ingest.CallbackToken = v
	}
	if v := secret("db_password"); v != "" {
		c.Database.Password = v
	}
}

// Validate validates the configuration. With Vault enabled the JWT secret
// may arrive via ApplySecrets after load, so its presence is checked again
// in main once the overlay has run.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" && !c.Vault.Enabled {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Database.Password == "" && c.App.Env == "production" && !c.Vault.Enabled {
		return fmt.Errorf("DB_PASSWORD is required in production")
	}
	if c.Ingest.CallbackToken == "" && c.App.Env == "production" && !c.Vault.Enabled {
		return fmt.Errorf("INGEST_CALLBACK_TOKEN is required in production")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("ROLE_UPDATE_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

// Helper functions

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
		parts := strings.Split(value, ",")
		var result []string
		for _, v := range parts {
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
