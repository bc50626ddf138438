package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestInit(t *testing.T) {
	logger := Init("test-service")
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNew_EmitsServiceAttr(t *testing.T) {
	var buf bytes.Buffer
	logger := New("notifications", &buf, slog.LevelInfo)

	logger.Info("alarm notification", "rule", "config_high_limit")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if rec["service"] != "notifications" {
		t.Errorf("expected service=notifications, got %v", rec["service"])
	}
	if rec["msg"] != "alarm notification" {
		t.Errorf("expected msg='alarm notification', got %v", rec["msg"])
	}
	if rec["rule"] != "config_high_limit" {
		t.Errorf("expected rule attr, got %v", rec["rule"])
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("test", &buf, slog.LevelWarn)

	logger.Info("should be filtered")
	if buf.Len() != 0 {
		t.Errorf("info record should be filtered at warn level, got %s", buf.String())
	}

	logger.Warn("should pass")
	if buf.Len() == 0 {
		t.Error("warn record should be emitted at warn level")
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
		{"  Error  ", slog.LevelError},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
