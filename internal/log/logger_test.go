package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentStore, JSON: true, Output: &buf})

	l.Info("loaded", FieldCount, 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec[FieldComponent] != ComponentStore {
		t.Errorf("component = %v, want %s", rec[FieldComponent], ComponentStore)
	}
	if rec[FieldCount] != float64(3) {
		t.Errorf("count = %v, want 3", rec[FieldCount])
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Component: ComponentApp, Output: &buf})
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	l.Warn("shown")
	if buf.Len() == 0 {
		t.Fatalf("warn should be written")
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelInfo, JSON: true, Output: &buf}))

	sl.LogEntryCreated(context.Background(), "2025-07-01", "Rao", "North", "JD 5050", 2.5, 250, "employee1")
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec[FieldCost] != float64(250) || rec[FieldEmployee] != "employee1" || rec[FieldComponent] != ComponentEntry {
		t.Fatalf("unexpected entry record: %v", rec)
	}

	buf.Reset()
	sl.LogError(context.Background(), "append failed", errors.New("disk full"), ComponentStore, OpAppend, nil)
	rec = nil
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec[FieldError] != "disk full" || rec[FieldOperation] != OpAppend {
		t.Fatalf("unexpected error record: %v", rec)
	}

	buf.Reset()
	req := httptest.NewRequest("GET", "/admin?page=2", nil)
	sl.LogHTTPEnd(context.Background(), req, 500, 12, "10.0.0.1")
	rec = nil
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["level"] != "ERROR" || rec[FieldQuery] != "page=2" {
		t.Fatalf("unexpected http record: %v", rec)
	}
}

func TestLogLogin(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelInfo, JSON: true, Output: &buf}))

	sl.LogLogin(context.Background(), "admin", "admin", "10.0.0.1", false)
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["level"] != "WARN" || rec[FieldErrorType] != ErrorTypeAuth || rec[FieldSuccess] != false {
		t.Fatalf("unexpected rejected login record: %v", rec)
	}

	buf.Reset()
	sl.LogLogin(context.Background(), "employee1", "employee", "10.0.0.1", true)
	rec = nil
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["level"] != "INFO" || rec[FieldUsername] != "employee1" || rec[FieldRole] != "employee" {
		t.Fatalf("unexpected login record: %v", rec)
	}
}

func TestWithContext(t *testing.T) {
	l := New(Config{Component: ComponentHTTP})
	if got := FromContext(WithContext(context.Background(), l)); got != l {
		t.Fatalf("FromContext did not return the stored logger")
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("expected default logger")
	}
}
