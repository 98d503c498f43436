package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.pilab.hu/grants/log"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestZerologAdapter_FieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithWriter(&buf, zerolog.InfoLevel).With(log.Fields{"component": "test"})

	logger.Debug(context.Background(), "hidden")
	assert.Zero(t, buf.Len(), "debug is below the configured level")

	logger.Error(context.Background(), "revoke failed", errors.New("boom"), log.Fields{"client_id": "a1"})
	entry := decodeLine(t, &buf)

	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "revoke failed", entry["message"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "a1", entry["client_id"])
	assert.Equal(t, "test", entry["component"])
	assert.NotContains(t, entry, "trace_id")
}

func TestZerologAdapter_AddsTraceInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithWriter(&buf, zerolog.DebugLevel)

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	logger.Info(ctx, "listed")
	entry := decodeLine(t, &buf)

	assert.Equal(t, span.SpanContext().TraceID().String(), entry["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), entry["span_id"])
}

func TestParseLevel(t *testing.T) {
	level, err := log.ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)

	level, err = log.ParseLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)
}
