package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	adapter := NewSlogAdapter(logger)

	tests := []struct {
		name  string
		log   func(msg string, args ...interface{})
		level string
	}{
		{name: "debug", log: adapter.Debug, level: "DEBUG"},
		{name: "info", log: adapter.Info, level: "INFO"},
		{name: "warn", log: adapter.Warn, level: "WARN"},
		{name: "error", log: adapter.Error, level: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log("test message", "key", "value")

			output := buf.String()
			if !strings.Contains(output, tt.level) {
				t.Errorf("expected level %s in output: %s", tt.level, output)
			}
			if !strings.Contains(output, "test message") {
				t.Errorf("expected message in output: %s", output)
			}
			if !strings.Contains(output, "key=value") {
				t.Errorf("expected attribute in output: %s", output)
			}
		})
	}
}

func TestNewSlogAdapterNil(t *testing.T) {
	adapter := NewSlogAdapter(nil)
	if adapter.Logger() == nil {
		t.Error("adapter with nil logger should fall back to slog.Default()")
	}
}
