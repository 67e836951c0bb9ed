package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"wabridge/internal/app/config"
)

// Config holds logger configuration (compatible with app config)
type Config struct {
	Level       string `json:"level"`
	Format      string `json:"format"` // "json" or "console"
	ColorOutput bool   `json:"color_output"`
	TimeFormat  string `json:"time_format"`
	File        string `json:"file,omitempty"`
	MaxSizeMB   int    `json:"max_size_mb"`
	MaxBackups  int    `json:"max_backups"`
	MaxAgeDays  int    `json:"max_age_days"`
}

// Logger wraps zerolog.Logger with additional functionality
type Logger struct {
	*zerolog.Logger
	config Config
}

// New creates a new logger instance with the given configuration
func New(config Config) *Logger {
	// Set global log level
	level := parseLogLevel(config.Level)
	zerolog.SetGlobalLevel(level)

	// Configure time format
	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	var output io.Writer = os.Stdout
	if config.File != "" {
		// Rotate the log file so long-lived bridges do not fill the disk
		output = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   config.File,
			MaxSize:    config.MaxSizeMB,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAgeDays,
			Compress:   true,
		})
	}

	// Configure format
	var logger zerolog.Logger
	switch strings.ToLower(config.Format) {
	case "console", "pretty":
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: config.TimeFormat,
			NoColor:    !config.ColorOutput,
		}).With().Timestamp().Str("service", "wabridge").Logger()
	case "json":
		logger = zerolog.New(output).With().Timestamp().Str("service", "wabridge").Logger()
	default:
		logger = zerolog.New(output).With().Timestamp().Str("service", "wabridge").Logger()
	}

	return &Logger{
		Logger: &logger,
		config: config,
	}
}

// NewDefault creates a logger with default configuration
func NewDefault() *Logger {
	return New(Config{
		Level:       "info",
		Format:      "console",
		ColorOutput: true,
		TimeFormat:  time.RFC3339,
	})
}

// NewProduction creates a logger optimized for production
func NewProduction() *Logger {
	return New(Config{
		Level:       "info",
		Format:      "json",
		ColorOutput: false,
		TimeFormat:  time.RFC3339,
	})
}

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(logger *Logger) {
	log.Logger = *logger.Logger
}

// WithComponent creates a logger with a component field
func (l *Logger) WithComponent(component string) *Logger {
	newLogger := l.Logger.With().Str("component", component).Logger()
	return &Logger{
		Logger: &newLogger,
		config: l.config,
	}
}

// WithRequestID creates a logger with a request ID field
func (l *Logger) WithRequestID(requestID string) *Logger {
	newLogger := l.Logger.With().Str("request_id", requestID).Logger()
	return &Logger{
		Logger: &newLogger,
		config: l.config,
	}
}

// WithFields creates a logger with multiple fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	event := l.Logger.With()
	for key, value := range fields {
		event = event.Interface(key, value)
	}
	newLogger := event.Logger()
	return &Logger{
		Logger: &newLogger,
		config: l.config,
	}
}

// parseLogLevel converts string level to zerolog.Level
func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// GetConfig returns the current logger configuration
func (l *Logger) GetConfig() Config {
	return l.config
}

// HTTP creates a logger scoped to the HTTP layer
func (l *Logger) HTTP() *Logger {
	return l.WithComponent("http")
}

// Database creates a logger scoped to database operations
func (l *Logger) Database() *Logger {
	return l.WithComponent("database")
}

// WhatsApp creates a logger scoped to WhatsApp operations
func (l *Logger) WhatsApp() *Logger {
	return l.WithComponent("whatsapp")
}

// Session creates a logger scoped to the session loop
func (l *Logger) Session() *Logger {
	return l.WithComponent("session")
}

// NewFromAppConfig creates a logger from app configuration
func NewFromAppConfig(appConfig *config.Config) *Logger {
	loggerConfig := Config{
		Level:       appConfig.Logging.Level,
		Format:      appConfig.Logging.Format,
		ColorOutput: appConfig.Logging.ColorOutput,
		TimeFormat:  appConfig.Logging.TimeFormat,
		File:        appConfig.Logging.File,
		MaxSizeMB:   appConfig.Logging.MaxSizeMB,
		MaxBackups:  appConfig.Logging.MaxBackups,
		MaxAgeDays:  appConfig.Logging.MaxAgeDays,
	}

	return New(loggerConfig)
}
