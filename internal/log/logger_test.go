package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentApp, Output: &buf})

	logger.WithComponent(ComponentRouter).Info("Routed message", FieldIntent, "expense")

	out := buf.String()
	if !strings.Contains(out, "component=router") {
		t.Errorf("expected router component in %q", out)
	}
	if strings.Contains(out, "component=app") {
		t.Errorf("component should be replaced, got %q", out)
	}
	if !strings.Contains(out, "intent=expense") {
		t.Errorf("expected intent field in %q", out)
	}
}

func TestLoggerComponentAppearsOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentApp, Output: &buf})

	logger.With("request_id", "r1").
		WithComponent(ComponentFallback).
		WithComponent(ComponentRouter).
		Info("Routed message")

	out := buf.String()
	if n := strings.Count(out, "component="); n != 1 {
		t.Errorf("component printed %d times in %q", n, out)
	}
	if !strings.Contains(out, "component=router") {
		t.Errorf("expected router component in %q", out)
	}
}

func TestLoggerLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn record missing")
	}
}

func TestFromContext(t *testing.T) {
	if l := FromContext(context.Background()); l.Component() != "unknown" {
		t.Errorf("default component = %q, want unknown", l.Component())
	}

	logger := New(Config{Component: ComponentHTTP, Output: &bytes.Buffer{}})
	ctx := NewContext(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Error("FromContext did not return the stored logger")
	}
}

func TestFieldsBuilder(t *testing.T) {
	fields := NewFields().
		WithIntent("expense", 0.91, "record").
		WithTransaction(0, "expense", 50000).
		WithError(errors.New("boom"), ErrorTypeDatabase).
		WithRequestID("")

	if fields[FieldRoute] != "record" || fields[FieldAmount] != int64(50000) {
		t.Errorf("unexpected fields %v", fields)
	}
	if _, ok := fields[FieldTransactionID]; ok {
		t.Error("zero transaction id should be omitted")
	}
	if _, ok := fields[FieldRequestID]; ok {
		t.Error("empty request id should be omitted")
	}
	if fields[FieldErrorType] != ErrorTypeDatabase {
		t.Errorf("error type = %v", fields[FieldErrorType])
	}
	if n := len(fields.ToSlice()); n != len(fields)*2 {
		t.Errorf("ToSlice length = %d, want %d", n, len(fields)*2)
	}
}

func TestMiddlewareAndAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentHTTP, Output: &buf})

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	})
	h := Middleware(logger, func(*http.Request) string { return "req-42" })(
		AccessLog(func(*http.Request) string { return "10.0.0.1" })(inner))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", nil))

	out := buf.String()
	for _, want := range []string{"inside handler", "request_id=req-42", "status_code=418", "client_ip=10.0.0.1", "level=WARN"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log output:\n%s", want, out)
		}
	}
}
