// Package ulog builds the zap loggers used across modrun, with log levels
package ulog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// LevelInfo sets the log level to info
	LevelInfo = "info"

	// LevelDebug sets the log level to debug
	LevelDebug = "debug"

	// LevelNone disables logging
	LevelNone = "none"
)

// New returns a zap logger at the specified level. Console selects a
// human friendly encoder over the production JSON one.
func New(level string, console bool) (*zap.Logger, error) {
	if level == LevelNone {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	if console {
		cfg = zap.NewDevelopmentConfig()
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// MustNew returns a zap logger at the specified level or panics
func MustNew(level string, console bool) *zap.Logger {
	l, err := New(level, console)
	if err != nil {
		panic(err)
	}
	return l
}
