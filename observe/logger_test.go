package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v\nOutput: %s", err, buf.String())
	}
	return entry
}

// TestLogger_IncludesRequestFields verifies request fields are present in log output.
func TestLogger_IncludesRequestFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	reqLogger := logger.WithRequest(RequestMeta{Method: "get", Path: "/items/", RequestID: "req-1"})
	reqLogger.Info(context.Background(), "test message")

	entry := decodeEntry(t, &buf)
	if v, _ := entry["http.method"].(string); v != "GET" {
		t.Errorf("expected http.method='GET', got %v", entry["http.method"])
	}
	if v, _ := entry["http.path"].(string); v != "/items/" {
		t.Errorf("expected http.path='/items/', got %v", entry["http.path"])
	}
	if v, _ := entry["request_id"].(string); v != "req-1" {
		t.Errorf("expected request_id='req-1', got %v", entry["request_id"])
	}
}

// TestLogger_ParentUnaffected verifies WithRequest does not leak into the parent.
func TestLogger_ParentUnaffected(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	_ = logger.WithRequest(RequestMeta{Method: "GET", Path: "/a"})
	logger.Info(context.Background(), "plain")

	entry := decodeEntry(t, &buf)
	if _, ok := entry["http.path"]; ok {
		t.Error("parent logger carries request fields")
	}
}

// TestLogger_ErrorLevel verifies error log level and error field.
func TestLogger_ErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Error(context.Background(), "request failed",
		Field{Key: "error", Value: "connection timeout"},
	)

	entry := decodeEntry(t, &buf)
	if v, _ := entry["level"].(string); v != "error" {
		t.Errorf("expected level='error', got %v", entry["level"])
	}
	if v, _ := entry["error"].(string); v != "connection timeout" {
		t.Errorf("expected error='connection timeout', got %v", entry["error"])
	}
}

// TestLogger_CredentialsRedacted verifies credential fields are never logged.
func TestLogger_CredentialsRedacted(t *testing.T) {
	keys := []string{"token", "access", "refresh", "Authorization", "password", "apiKey", "refresh_token"}

	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerWithWriter("info", &buf)

			logger.Info(context.Background(), "msg", Field{Key: key, Value: "s3cr3t"})

			if strings.Contains(buf.String(), "s3cr3t") {
				t.Errorf("credential leaked in output: %s", buf.String())
			}
			entry := decodeEntry(t, &buf)
			if entry[key] != "[REDACTED]" {
				t.Errorf("expected %s='[REDACTED]', got %v", key, entry[key])
			}
		})
	}
}

// TestLogger_LevelFiltering verifies messages below the threshold are dropped.
func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level string
		log   func(Logger)
		want  bool
	}{
		{"info", func(l Logger) { l.Debug(context.Background(), "x") }, false},
		{"info", func(l Logger) { l.Info(context.Background(), "x") }, true},
		{"warn", func(l Logger) { l.Info(context.Background(), "x") }, false},
		{"warn", func(l Logger) { l.Warn(context.Background(), "x") }, true},
		{"error", func(l Logger) { l.Warn(context.Background(), "x") }, false},
		{"debug", func(l Logger) { l.Debug(context.Background(), "x") }, true},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		tt.log(NewLoggerWithWriter(tt.level, &buf))
		if got := buf.Len() > 0; got != tt.want {
			t.Errorf("level %s: wrote=%v, want %v", tt.level, got, tt.want)
		}
	}
}

// TestLogger_TraceCorrelation verifies trace and span IDs are taken from ctx.
func TestLogger_TraceCorrelation(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	var buf bytes.Buffer
	NewLoggerWithWriter("info", &buf).Info(ctx, "inside span")

	entry := decodeEntry(t, &buf)
	if entry["trace_id"] != span.SpanContext().TraceID().String() {
		t.Errorf("trace_id = %v, want %s", entry["trace_id"], span.SpanContext().TraceID())
	}
	if entry["span_id"] != span.SpanContext().SpanID().String() {
		t.Errorf("span_id = %v, want %s", entry["span_id"], span.SpanContext().SpanID())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug": LevelDebug,
		"info":  LevelInfo,
		"warn":  LevelWarn,
		"error": LevelError,
		"bogus": LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
