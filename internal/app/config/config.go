package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	WhatsApp  WhatsAppConfig  `json:"whatsapp"`
	Logging   LoggingConfig   `json:"logging"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	TLS          TLSConfig     `json:"tls"`
}

// TLSConfig holds TLS configuration
type TLSConfig struct {
	Enabled  bool   `json:"enabled"`
	CertFile string `json:"cert_file"`
	KeyFile  string `json:"key_file"`
}

// DatabaseConfig holds database configuration. Session credentials and
// the bridge's own state share one SQLite file.
type DatabaseConfig struct {
	Path  string `json:"path"`
	Debug bool   `json:"debug"`
}

// WhatsAppConfig holds WhatsApp client configuration
type WhatsAppConfig struct {
	LogLevel        string `json:"log_level"`
	OSName          string `json:"os_name"`
	PrintQR         bool   `json:"print_qr"`
	IncomingBufSize int    `json:"incoming_buf_size"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `json:"level"`
	Format      string `json:"format"` // "json" or "console"
	ColorOutput bool   `json:"color_output"`
	TimeFormat  string `json:"time_format"`
	File        string `json:"file,omitempty"`
	MaxSizeMB   int    `json:"max_size_mb"`
	MaxBackups  int    `json:"max_backups"`
	MaxAgeDays  int    `json:"max_age_days"`
}

// RateLimitConfig holds the send-endpoint throttle configuration
type RateLimitConfig struct {
	SendPerSecond float64 `json:"send_per_second"`
	SendBurst     int     `json:"send_burst"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (optional)
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("Could not load .env file (it may not exist)")
	}

	config := &Config{
		Server:    loadServerConfig(),
		Database:  loadDatabaseConfig(),
		WhatsApp:  loadWhatsAppConfig(),
		Logging:   loadLoggingConfig(),
		RateLimit: loadRateLimitConfig(),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:         getEnvOrDefault("SERVER_HOST", "127.0.0.1"),
		Port:         getEnvAsIntOrDefault("SERVER_PORT", 3010),
		ReadTimeout:  getEnvAsDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getEnvAsDurationOrDefault("SERVER_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:  getEnvAsDurationOrDefault("SERVER_IDLE_TIMEOUT", 120*time.Second),
		TLS: TLSConfig{
			Enabled:  getEnvAsBoolOrDefault("TLS_ENABLED", false),
			CertFile: os.Getenv("TLS_CERT_FILE"),
			KeyFile:  os.Getenv("TLS_KEY_FILE"),
		},
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Path:  getEnvOrDefault("DB_PATH", "wabridge.db"),
		Debug: getEnvAsBoolOrDefault("DB_DEBUG", false),
	}
}

func loadWhatsAppConfig() WhatsAppConfig {
	return WhatsAppConfig{
		LogLevel:        getEnvOrDefault("WHATSAPP_LOG_LEVEL", "INFO"),
		OSName:          getEnvOrDefault("WHATSAPP_OS_NAME", "WABridge"),
		PrintQR:         getEnvAsBoolOrDefault("WHATSAPP_PRINT_QR", true),
		IncomingBufSize: getEnvAsIntOrDefault("WHATSAPP_INCOMING_BUF_SIZE", 200),
	}
}

func loadLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:       getEnvOrDefault("LOG_LEVEL", "info"),
		Format:      getEnvOrDefault("LOG_FORMAT", "console"),
		ColorOutput: getEnvAsBoolOrDefault("LOG_COLOR_OUTPUT", true),
		TimeFormat:  getEnvOrDefault("LOG_TIME_FORMAT", "2006-01-02 15:04:05"),
		File:        os.Getenv("LOG_FILE"),
		MaxSizeMB:   getEnvAsIntOrDefault("LOG_MAX_SIZE_MB", 50),
		MaxBackups:  getEnvAsIntOrDefault("LOG_MAX_BACKUPS", 3),
		MaxAgeDays:  getEnvAsIntOrDefault("LOG_MAX_AGE_DAYS", 14),
	}
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		SendPerSecond: getEnvAsFloatOrDefault("RATE_LIMIT_SEND_PER_SECOND", 1),
		SendBurst:     getEnvAsIntOrDefault("RATE_LIMIT_SEND_BURST", 5),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.TLS.Enabled {
		if c.Server.TLS.CertFile == "" || c.Server.TLS.KeyFile == "" {
			return fmt.Errorf("TLS enabled but cert_file or key_file not provided")
		}
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if !isValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.RateLimit.SendPerSecond <= 0 {
		return fmt.Errorf("invalid send rate limit: %f", c.RateLimit.SendPerSecond)
	}
	if c.RateLimit.SendBurst <= 0 {
		return fmt.Errorf("invalid send rate burst: %d", c.RateLimit.SendBurst)
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Helper functions
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func isValidLogLevel(level string) bool {
	validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}
	for _, validLevel := range validLevels {
		if strings.ToLower(level) == validLevel {
			return true
		}
	}
	return false
}
