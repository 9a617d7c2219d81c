package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInit_Disabled(t *testing.T) {
	before := otel.GetTracerProvider()
	shutdown, err := Init(context.Background(), nil, Config{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestInit_StdoutExporter(t *testing.T) {
	before := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(before) })

	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), nil, Config{Enabled: true, ServiceName: "test", Writer: &buf})
	require.NoError(t, err)

	_, span := otel.Tracer("tracing-test").Start(context.Background(), "analyze classroom")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), "analyze classroom")
}

func TestClampRatio(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{in: 0, want: 1},
		{in: -1, want: 1},
		{in: 0.25, want: 0.25},
		{in: 3, want: 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clampRatio(tt.in))
	}
}
