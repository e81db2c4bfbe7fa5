package config

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  zerolog.Level
	}{
		{"debug", "debug", zerolog.DebugLevel},
		{"warn", "warn", zerolog.WarnLevel},
		{"mixed case", "ERROR", zerolog.ErrorLevel},
		{"padded", " info ", zerolog.InfoLevel},
		{"unknown falls back to info", "verbose", zerolog.InfoLevel},
		{"empty falls back to info", "", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(LoggingConfig{Level: tt.level, Format: "json"})
			if got := logger.GetLevel(); got != tt.want {
				t.Errorf("expected level %s, got %s", tt.want, got)
			}
		})
	}
}

func TestNewLoggerConsoleFormat(t *testing.T) {
	// Console format must not affect the configured level.
	logger := NewLogger(LoggingConfig{Level: "debug", Format: "console"})
	if got := logger.GetLevel(); got != zerolog.DebugLevel {
		t.Errorf("expected debug level with console format, got %s", got)
	}
}
