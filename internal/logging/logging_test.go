package logging

import (
	"testing"

	"universe-server/internal/config"
)

func TestNewAcceptsValidLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := New(config.LoggingConfig{Level: level})
		if err != nil {
			t.Fatalf("level %q: %v", level, err)
		}
		if logger == nil {
			t.Fatalf("level %q: expected a logger", level)
		}
	}
}

func TestNewDefaultsToInfoWhenLevelEmpty(t *testing.T) {
	logger, err := New(config.LoggingConfig{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !logger.Core().Enabled(0) {
		t.Fatalf("expected info level enabled by default")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(config.LoggingConfig{Level: "not-a-level"}); err == nil {
		t.Fatalf("expected an error for an invalid log level")
	}
}
