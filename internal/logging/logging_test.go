package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"

	"github.com/park285/tig-search-go/internal/config"
	"github.com/park285/tig-search-go/internal/requestctx"
)

func TestNewLoggerCreatesFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.LoggingConfig{
		LogDir:     dir,
		Level:      "info",
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
		Compress:   true,
	}
	_, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(dir, ServerLogFile)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected log file, got error: %v", err)
	}
}

func TestNewLoggerRejectsInvalidRotation(t *testing.T) {
	cfg := config.LoggingConfig{LogDir: t.TempDir(), MaxSizeMB: 0, MaxBackups: 1, MaxAgeDays: 1}
	if _, err := NewLogger(cfg); err == nil {
		t.Fatalf("expected error for zero max size")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q)=%v want %v", in, got, want)
		}
	}
}

func TestContextHandlerAddsCorrelationIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewTextHandler(&buf, nil), true))

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)
	ctx = requestctx.WithID(ctx, "req-42")

	logger.InfoContext(ctx, "with_span")
	out := buf.String()
	if !strings.Contains(out, "trace_id=0102030405060708090a0b0c0d0e0f10") || !strings.Contains(out, "request_id=req-42") {
		t.Fatalf("missing correlation ids: %s", out)
	}

	buf.Reset()
	logger.Info("without_context")
	if strings.Contains(buf.String(), "trace_id") || strings.Contains(buf.String(), "request_id") {
		t.Fatalf("unexpected correlation ids: %s", buf.String())
	}
}

func TestContextHandlerWithoutTracing(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewTextHandler(&buf, nil), false)).With("component", "test")

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	ctx := trace.ContextWithSpanContext(context.Background(),
		trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID}))

	logger.InfoContext(requestctx.WithID(ctx, "req-7"), "no_tracing")
	out := buf.String()
	if strings.Contains(out, "trace_id") {
		t.Fatalf("tracing disabled must not add trace ids: %s", out)
	}
	if !strings.Contains(out, "request_id=req-7") || !strings.Contains(out, "component=test") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestCLILoggerUsesOwnFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.LoggingConfig{LogDir: dir, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1}
	if _, err := NewCLILogger(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, CLILogFile)); err != nil {
		t.Fatalf("expected cli log file: %v", err)
	}
}
