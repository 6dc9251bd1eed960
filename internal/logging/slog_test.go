package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func newBufferLogger(level slog.Level) (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})
	return NewSlogLogger(slog.New(h)), &buf
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	return m
}

func TestSlogLogger_Levels(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name string
		log  func(l *SlogLogger)
		want string
	}{
		{"debug", func(l *SlogLogger) { l.Debug(ctx, "m") }, "DEBUG"},
		{"info", func(l *SlogLogger) { l.Info(ctx, "m") }, "INFO"},
		{"warn", func(l *SlogLogger) { l.Warn(ctx, "m") }, "WARN"},
		{"error", func(l *SlogLogger) { l.Error(ctx, "m") }, "ERROR"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l, buf := newBufferLogger(slog.LevelDebug)
			tc.log(l)
			rec := lastRecord(t, buf)
			if rec["level"] != tc.want {
				t.Fatalf("level: got %v want %v", rec["level"], tc.want)
			}
		})
	}
}

func TestSlogLogger_WithAddsAttrs(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelInfo)

	child := l.With("module", "auth")
	child.Info(context.Background(), "hello", "k", "v")

	rec := lastRecord(t, buf)
	if rec["module"] != "auth" || rec["k"] != "v" || rec["msg"] != "hello" {
		t.Fatalf("unexpected record: %v", rec)
	}
}
