// Package logging builds the zap loggers shared by the ledger binaries.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration
type Config struct {
	// Level is the log level (debug, info, warn, error)
	Level string
	// Format is the log format (json or console)
	Format string
	// Development enables caller info, stack traces and console-friendly output
	Development bool
}

// DefaultConfig returns a production-style configuration
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "json",
	}
}

// NewLogger creates a new logger with the given configuration
func NewLogger(config Config) (*zap.Logger, error) {
	var encoderConfig zapcore.EncoderConfig
	if config.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	format := config.Format
	if format == "" {
		format = "json"
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(ParseLevel(config.Level)),
		Development:       config.Development,
		DisableCaller:     !config.Development,
		DisableStacktrace: !config.Development,
		Encoding:          format,
		EncoderConfig:     encoderConfig,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}

	return zapConfig.Build()
}

// NewLoggerFromEnv creates a logger based on environment variables
// LOG_LEVEL: log level (default: info)
// LOG_FORMAT: log format (default: json)
// LOG_DEV: enable development mode (default: false)
func NewLoggerFromEnv() (*zap.Logger, error) {
	config := DefaultConfig()
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Format = format
	}
	if os.Getenv("LOG_DEV") == "true" {
		config.Development = true
		if os.Getenv("LOG_FORMAT") == "" {
			config.Format = "console"
		}
	}
	return NewLogger(config)
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// ParseLevel converts a string to a zapcore.Level, defaulting to info
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
