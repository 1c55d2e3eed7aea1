package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
)

// Source kinds
const (
	SourceSpreadsheet = "spreadsheet"
	SourcePostgres    = "postgres"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Dataset locations and column schema
	Source SourceConfig

	// SLA thresholds
	SLA SLAConfig

	// Database configuration
	Database DatabaseConfig

	// Viewer login and JWT configuration
	Auth AuthConfig
	JWT  JWTConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// CORS configuration
	CORS CORSConfig

	// WebSocket configuration
	WebSocket WebSocketConfig

	// Breach alert configuration
	Alerts AlertConfig

	// Logging configuration
	Logging LoggingConfig

	// Application metadata
	App AppConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
}

// SourceConfig says where tickets and indicators are read from
type SourceConfig struct {
	Kind           string // spreadsheet, postgres
	Dataset        string // dataset key used for postgres rows
	SLAFile        string
	IndicatorsFile string
	SchemaFile     string
}

// SLAConfig holds the default SLA computation settings
type SLAConfig struct {
	ThresholdHours float64
	TargetPercent  float64
	MeanScope      string // filtered, dataset
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	RunMigrations   bool
	MigrationsPath  string
}

// AuthConfig holds the single viewer account
type AuthConfig struct {
	Enabled            bool
	ViewerUsername     string
	ViewerPasswordHash string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
	AuthRPS           float64 // Stricter limit for auth endpoints
	AuthBurst         int
	UploadRPS         float64 // Per-viewer limit for spreadsheet uploads
	UploadBurst       int
}

// CORSConfig holds cross-origin configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// WebSocketConfig holds WebSocket configuration
type WebSocketConfig struct {
	AllowedOrigins  []string
	ReadBufferSize  int
	WriteBufferSize int
	PingInterval    time.Duration
	PongWait        time.Duration
}

// AlertConfig holds who is told about SLA breaches
type AlertConfig struct {
	Recipients []string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv reads the configuration from the process environment without
// validating it.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", ":8080"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			MaxUploadBytes:  getInt64OrDefault("MAX_UPLOAD_BYTES", 10<<20),
		},
		Source: SourceConfig{
			Kind:           strings.ToLower(getEnvOrDefault("TICKET_SOURCE", SourceSpreadsheet)),
			Dataset:        getEnvOrDefault("TICKET_DATASET", "geoti"),
			SLAFile:        getEnvOrDefault("SLA_FILE", "geoti_sla.xlsx"),
			IndicatorsFile: getEnvOrDefault("INDICATORS_FILE", "indicadoresGeoTI_20dez2024.xlsx"),
			SchemaFile:     os.Getenv("SCHEMA_FILE"),
		},
		SLA: SLAConfig{
			ThresholdHours: getFloatOrDefault("SLA_THRESHOLD_HOURS", 24),
			TargetPercent:  getFloatOrDefault("SLA_TARGET_PERCENT", 80),
			MeanScope:      getEnvOrDefault("MEAN_SCOPE", "filtered"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntOrDefault("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationOrDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getDurationOrDefault("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			RunMigrations:   getBoolOrDefault("DB_RUN_MIGRATIONS", false),
			MigrationsPath:  getEnvOrDefault("MIGRATIONS_PATH", "migrations"),
		},
		Auth: AuthConfig{
			Enabled:            getBoolOrDefault("AUTH_ENABLED", false),
			ViewerUsername:     getEnvOrDefault("AUTH_VIEWER_USERNAME", "gestao"),
			ViewerPasswordHash: os.Getenv("AUTH_VIEWER_PASSWORD_HASH"),
		},
		JWT: JWTConfig{
			Secret:         os.Getenv("JWT_SECRET"),
			AccessTokenTTL: getDurationOrDefault("JWT_ACCESS_TOKEN_TTL", 8*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBoolOrDefault("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getFloatOrDefault("RATE_LIMIT_RPS", 10),
			BurstSize:         getIntOrDefault("RATE_LIMIT_BURST", 20),
			AuthRPS:           getFloatOrDefault("RATE_LIMIT_AUTH_RPS", 1),
			AuthBurst:         getIntOrDefault("RATE_LIMIT_AUTH_BURST", 5),
			UploadRPS:         getFloatOrDefault("RATE_LIMIT_UPLOAD_RPS", 0.2),
			UploadBurst:       getIntOrDefault("RATE_LIMIT_UPLOAD_BURST", 3),
		},
		CORS: CORSConfig{
			AllowedOrigins: getStringSliceOrDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins:  getStringSliceOrDefault("WS_ALLOWED_ORIGINS", []string{}),
			ReadBufferSize:  getIntOrDefault("WS_READ_BUFFER_SIZE", 1024),
			WriteBufferSize: getIntOrDefault("WS_WRITE_BUFFER_SIZE", 1024),
			PingInterval:    getDurationOrDefault("WS_PING_INTERVAL", 54*time.Second),
			PongWait:        getDurationOrDefault("WS_PONG_WAIT", 60*time.Second),
		},
		Alerts: AlertConfig{
			Recipients: getStringSliceOrDefault("ALERT_RECIPIENTS", []string{}),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		App: AppConfig{
			Name:        getEnvOrDefault("APP_NAME", "ticket-metrics"),
			Version:     getEnvOrDefault("APP_VERSION", "dev"),
			Environment: getEnvOrDefault("APP_ENV", "development"),
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []string

	switch c.Source.Kind {
	case SourceSpreadsheet:
		if c.Source.SLAFile == "" {
			errs = append(errs, "SLA_FILE is required when TICKET_SOURCE is spreadsheet")
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			errs = append(errs, "DATABASE_URL is required when TICKET_SOURCE is postgres")
		}
	default:
		errs = append(errs, fmt.Sprintf("TICKET_SOURCE must be %q or %q", SourceSpreadsheet, SourcePostgres))
	}

	if c.SLA.ThresholdHours < 0 {
		errs = append(errs, "SLA_THRESHOLD_HOURS cannot be negative")
	}
	if c.SLA.TargetPercent < 0 || c.SLA.TargetPercent > 100 {
		errs = append(errs, "SLA_TARGET_PERCENT must be between 0 and 100")
	}
	if _, err := domain.ParseMeanScope(c.SLA.MeanScope); err != nil {
		errs = append(errs, "MEAN_SCOPE must be \"filtered\" or \"dataset\"")
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, "MAX_UPLOAD_BYTES must be positive")
	}

	if c.Auth.Enabled {
		if c.JWT.Secret == "" {
			errs = append(errs, "JWT_SECRET is required when AUTH_ENABLED is true")
		}
		if c.Auth.ViewerUsername == "" || c.Auth.ViewerPasswordHash == "" {
			errs = append(errs, "AUTH_VIEWER_USERNAME and AUTH_VIEWER_PASSWORD_HASH are required when AUTH_ENABLED is true")
		}
	}

	// Security validations
	if c.App.Environment == "production" {
		if c.Auth.Enabled && len(c.JWT.Secret) < 32 {
			errs = append(errs, "JWT_SECRET must be at least 32 characters in production")
		}

		if len(c.WebSocket.AllowedOrigins) == 0 {
			errs = append(errs, "WS_ALLOWED_ORIGINS must be set in production")
		}
	}

	// Logical validations
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = append(errs, "DB_MAX_IDLE_CONNS cannot be greater than DB_MAX_OPEN_CONNS")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// String returns a redacted string representation of the config (safe for logging)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Server: %s, Source: %s, DB: %s, JWT: [REDACTED], RateLimit: %v, Environment: %s}",
		c.Server.Port,
		c.Source.Kind,
		redactURL(c.Database.URL),
		c.RateLimit.Enabled,
		c.App.Environment,
	)
}

// redactURL redacts sensitive parts of a database URL
func redactURL(url string) string {
	if url == "" {
		return ""
	}
	// Very basic redaction - in production you'd want something more robust
	if idx := strings.Index(url, "@"); idx > 0 {
		return "[REDACTED]" + url[idx:]
	}
	return "[REDACTED]"
}
