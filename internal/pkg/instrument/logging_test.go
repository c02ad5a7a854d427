package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestHandler_MasksAndCorrelates(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "dashboard", "info", nil, []string{"password", "code", "api_key"}))

	ctx := SetCorrelationID(context.Background(), "cid-123")
	logger.InfoContext(ctx, "login attempt",
		"email", "a@x.com",
		"password", "hunter2",
		"body", `{"code":"123456","challenge_token":"x"}`,
	)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "login attempt", entry["msg"])
	assert.Equal(t, "INFO", entry["severity"])
	assert.Equal(t, "cid-123", entry["_cID"])
	assert.Equal(t, "dashboard", entry["service"])
	assert.Equal(t, "a@x.com", entry["email"])
	assert.Equal(t, "***", entry["password"])
	assert.NotContains(t, buf.String(), "hunter2")
	assert.NotContains(t, buf.String(), "123456")
	assert.Contains(t, entry, "ts")
}

func TestHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "dashboard", "warn", nil, nil))

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestHandler_WithAttrsKeepsCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "dashboard", "info", nil, nil)).With("module", "identity")

	logger.InfoContext(SetCorrelationID(context.Background(), "cid-9"), "hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "cid-9", entry["_cID"])
	assert.Equal(t, "identity", entry["module"])
}

func TestCorrelationID(t *testing.T) {
	assert.Empty(t, GetCorrelationID(context.Background()))
	assert.Equal(t, "abc", GetCorrelationID(SetCorrelationID(context.Background(), "abc")))
}

func TestNew_Disabled(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	ins, err := New(context.Background(), &Config{ServiceName: "dashboard"})
	require.NoError(t, err)

	assert.NotNil(t, ins.Tracer("x"))
	assert.NotNil(t, ins.Meter("x"))
	assert.NoError(t, ins.Shutdown(context.Background()))
}

func TestHandler_TraceIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "dashboard", "info", nil, nil))

	tid, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	sid, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: tid,
		SpanID:  sid,
	}))

	logger.InfoContext(ctx, "traced")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
}

func TestHandler_MasksWithAttrsAndMaps(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "dashboard", "info", nil, []string{"API_KEY"})).With("api_key", "k1")

	logger.Info("ingest", "headers", map[string]string{"api_key": "k2", "accept": "json"})

	assert.NotContains(t, buf.String(), "k1")
	assert.NotContains(t, buf.String(), "k2")
	assert.Contains(t, buf.String(), `"accept":"json"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}
