package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mrops-br/products-repository-api/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func testConfig() *config.Config {
	return &config.Config{
		OTLP: config.OTLPConfig{ServiceName: "products-api", Environment: "test"},
		Log:  config.LogConfig{Level: "info"},
	}
}

func TestNewLogger_InjectsTraceAndRoute(t *testing.T) {
	// given
	var buf bytes.Buffer
	cfg := testConfig()
	logger := NewLogger(&buf, &cfg.OTLP, &cfg.Log)
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	ctx = WithHTTPRoute(ctx, "/products/{id}")

	// when
	logger.InfoContext(ctx, "hello")
	span.End()

	// then
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "products-api", entry["service.name"])
	assert.Equal(t, "test", entry["environment"])
	assert.Equal(t, "/products/{id}", entry["http.route"])
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), entry["span_id"])
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	cfg.Log.Level = "warn"
	logger := NewLogger(&buf, &cfg.OTLP, &cfg.Log)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewNoOpTelemetry(t *testing.T) {
	// given
	telem, err := NewNoOpTelemetry(testConfig())
	require.NoError(t, err)

	counter, err := telem.MeterProvider.Meter("test").Int64Counter("products.test.total")
	require.NoError(t, err)

	// when
	counter.Add(context.Background(), 3)
	families, err := telem.Registry.Gather()

	// then
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "products_test") {
			found = true
		}
	}
	assert.True(t, found, "otel counter should be exposed to the prometheus registry")
	assert.NoError(t, telem.Shutdown(context.Background()))
}

func TestHTTPRouteFromContext_ResolvesLazily(t *testing.T) {
	// given
	var buf bytes.Buffer
	cfg := testConfig()
	logger := NewLogger(&buf, &cfg.OTLP, &cfg.Log)
	route := "/products/1"
	ctx := WithHTTPRouteFunc(context.Background(), func() string { return route })

	// when
	route = "/products/{id}"
	logger.InfoContext(ctx, "served")

	// then
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "/products/{id}", entry["http.route"])
	assert.Empty(t, HTTPRouteFromContext(context.Background()))
}
