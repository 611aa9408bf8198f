package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"trustmatrix/internal/platform/config"
)

func TestSetupDisabled(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := SetupOTelSDK(context.Background(), config.Telemetry{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestTracerProviderExportsSpans(t *testing.T) {
	ctx := context.Background()
	exporter := tracetest.NewInMemoryExporter()

	tp, err := NewTracerProvider(config.Telemetry{ServiceName: "trustmatrix-test", SampleRatio: 1}, exporter)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	_, span := tp.Tracer("test").Start(ctx, "verification.AutoCheckAndUpgrade")
	span.End()
	require.NoError(t, tp.ForceFlush(ctx))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "verification.AutoCheckAndUpgrade", spans[0].Name)
	assert.Contains(t, spans[0].Resource.Attributes(), semconv.ServiceName("trustmatrix-test"))
}

func TestTracerProviderSamplesNothingAtZero(t *testing.T) {
	ctx := context.Background()
	exporter := tracetest.NewInMemoryExporter()

	tp, err := NewTracerProvider(config.Telemetry{ServiceName: "trustmatrix-test", SampleRatio: 0}, exporter)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	_, span := tp.Tracer("test").Start(ctx, "dropped")
	span.End()
	require.NoError(t, tp.ForceFlush(ctx))

	assert.Empty(t, exporter.GetSpans())
}
