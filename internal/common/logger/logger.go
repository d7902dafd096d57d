// Package logger builds the zap loggers used across the service.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a logger for the given environment. Production emits JSON,
// every other environment uses the human-readable development encoder.
func New(appEnv string) (*zap.Logger, error) {
	return NewWithLevel(appEnv, "")
}

// NewNamed creates a logger and names it after the service.
func NewNamed(appEnv, name string) (*zap.Logger, error) {
	l, err := New(appEnv)
	if err != nil {
		return nil, err
	}
	return l.Named(name), nil
}

// NewWithLevel creates a logger with an explicit level such as "debug" or "warn".
// An empty or unparsable level falls back to info.
func NewWithLevel(appEnv, level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil || level == "" {
		lvl = zapcore.InfoLevel
	}

	var cfg zap.Config
	if appEnv == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}

// MaskSecret keeps the first and last four characters of a credential.
// Short values are fully masked so their length is not revealed either.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) < 11 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + "..." + s[len(s)-4:]
}
