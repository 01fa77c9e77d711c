package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func TestInitTracer_DisabledStillInstallsPropagator(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator())
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	shutdown, err := InitTracer(context.Background(), Config{ServiceName: "carpick"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
}

func TestInitTracer_Enabled(t *testing.T) {
	prevTP := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prevTP) })

	shutdown, err := InitTracer(context.Background(), Config{
		ServiceName:    "carpick",
		ServiceVersion: "test",
		Environment:    "test",
		OTLPEndpoint:   "localhost:4318",
		SampleRate:     0.5,
		Enabled:        true,
	})
	require.NoError(t, err)
	assert.NotSame(t, prevTP, otel.GetTracerProvider())

	// No collector is listening; shutdown must still return promptly.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}

func TestSampler(t *testing.T) {
	assert.Contains(t, Sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, Sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, Sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestTracer(t *testing.T) {
	ctx, span := Tracer("carpick/test").Start(context.Background(), "op")
	defer span.End()
	assert.NotNil(t, ctx)
}
