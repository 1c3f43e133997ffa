package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/threateye/threateye-cli/internal/errors"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelDebug,
		Format: FormatJSON,
		Output: NewOutput(&buf),
	})

	logger.Info("session rehydrated", "email", "user@example.com")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log entry, got %q: %v", buf.String(), err)
	}

	if entry["msg"] != "session rehydrated" {
		t.Errorf("expected msg 'session rehydrated', got %v", entry["msg"])
	}

	if entry["email"] != "user@example.com" {
		t.Errorf("expected email attribute, got %v", entry["email"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelWarn,
		Format: FormatText,
		Output: NewOutput(&buf),
	})

	logger.Debug("should be filtered")
	logger.Info("should be filtered too")

	if buf.Len() != 0 {
		t.Errorf("expected no output below warn level, got %q", buf.String())
	}

	logger.Warn("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("expected warn output, got %q", buf.String())
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelDebug,
		Format: FormatJSON,
		Output: NewOutput(&buf),
	})

	err := errors.New(errors.ErrCodeAuthLoginFailed, "login failed").
		WithSuggestion("check your credentials")

	logger.WithError(err).Error("login attempt rejected")

	out := buf.String()
	if !strings.Contains(out, "AUTH-001") {
		t.Errorf("expected error code in output, got %q", out)
	}
	if !strings.Contains(out, "check your credentials") {
		t.Errorf("expected suggestion in output, got %q", out)
	}
}

func TestLogErrorPlain(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelDebug,
		Format: FormatText,
		Output: NewOutput(&buf),
	})

	logger.LogError(context.DeadlineExceeded)

	if !strings.Contains(buf.String(), "deadline exceeded") {
		t.Errorf("expected plain error in output, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"  warn ", LevelWarn},
		{"ERROR", LevelError},
		{"bogus", LevelWarn},
		{"", LevelWarn},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDefaultLoggerLazyInit(t *testing.T) {
	SetDefaultLogger(nil)
	logger := DefaultLogger()
	if logger == nil {
		t.Fatal("expected lazily initialized default logger")
	}
	if logger.Config().Level != LevelWarn {
		t.Errorf("expected default warn level, got %v", logger.Config().Level)
	}
}
