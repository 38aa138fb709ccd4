package logutil

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestParseSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for raw, want := range cases {
		got, err := parseSlogLevel(raw)
		if err != nil {
			t.Fatalf("parseSlogLevel(%q) error = %v", raw, err)
		}
		if got != want {
			t.Fatalf("parseSlogLevel(%q) = %v, want %v", raw, got, want)
		}
	}
	if _, err := parseSlogLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLoggerFromViperJSONAndTrace(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("logging.format", "json")
	viper.Set("trace", true)

	var buf bytes.Buffer
	logger, err := LoggerFromViperTo(&buf)
	if err != nil {
		t.Fatalf("LoggerFromViperTo() error = %v", err)
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("trace should enable debug logging")
	}
	logger.Info("decision_evaluated", "thread_id", "t-1")
	if !strings.Contains(buf.String(), `"msg":"decision_evaluated"`) {
		t.Fatalf("expected json output, got %q", buf.String())
	}
}

func TestLoggerFromViperRejectsUnknownFormat(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("logging.format", "xml")
	if _, err := LoggerFromViper(); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
