package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracerProvider(t *testing.T) {
	var out bytes.Buffer
	tp, err := InitTracerProvider("grants-test", &out)
	require.NoError(t, err)

	_, span := Tracer.Start(context.Background(), "test-span")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, tp.Shutdown(context.Background()))
	assert.Contains(t, out.String(), "test-span")
	assert.Contains(t, out.String(), "grants-test")
}
