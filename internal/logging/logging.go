// Package logging builds the structured logger shared by every other
// package in this module.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"universe-server/internal/config"
)

// New builds a zap logger from a config.LoggingConfig, JSON-encoded with
// the field keys and sampling policy used across handler/server logs.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level := zap.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return nil, fmt.Errorf("logging: invalid log level %q: %w", cfg.Level, err)
		}
	}

	zapCfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: cfg.Development,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stack",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapCfg.Build()
}

// ConnectionFields returns the zap fields attached to every log line
// produced while handling a given connection, so a connection's whole
// lifetime can be grepped by session id.
func ConnectionFields(sessionID uint32, citizenID uint32, opcode uint16) []zap.Field {
	return []zap.Field{
		zap.Uint32("session_id", sessionID),
		zap.Uint32("citizen_id", citizenID),
		zap.Uint16("opcode", opcode),
	}
}
