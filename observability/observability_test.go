package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/kbukum/scopekit/config"
	"github.com/kbukum/scopekit/di"
	apperrors "github.com/kbukum/scopekit/errors"
	"github.com/kbukum/scopekit/logger"
)

func attr(kvs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range kvs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestResolutionTelemetry_WithContainer(t *testing.T) {
	ctx := context.Background()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	rt, err := NewResolutionTelemetry(tp.Tracer("test"), mp.Meter("test"))
	require.NoError(t, err)

	b := di.NewBuilder(di.WithLogger(logger.Nop()), di.WithObserver(rt))
	require.NoError(t, b.Add(di.Registration{Key: "db", Lifetime: di.Singleton, Factory: func(di.Resolver) (any, error) {
		return "conn", nil
	}}))
	c, err := b.Build()
	require.NoError(t, err)
	defer c.Dispose(ctx)

	_, err = c.Resolve(ctx, "db")
	require.NoError(t, err)
	_, err = c.Resolve(ctx, "db")
	require.NoError(t, err)
	_, err = c.Resolve(ctx, "missing")
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 3)
	for _, s := range spans {
		assert.Equal(t, SpanResolve, s.Name())
	}

	key, _ := attr(spans[0].Attributes(), AttrKey)
	assert.Equal(t, "db", key.AsString())
	cached, _ := attr(spans[1].Attributes(), AttrCached)
	assert.True(t, cached.AsBool())
	scope, _ := attr(spans[1].Attributes(), AttrScopeID)
	assert.Equal(t, di.RootScopeID, scope.AsString())

	failed := spans[2]
	assert.Equal(t, codes.Error, failed.Status().Code)
	code, ok := attr(failed.Attributes(), AttrErrorCode)
	require.True(t, ok)
	assert.Equal(t, string(apperrors.ErrCodeNotRegistered), code.AsString())
	require.Len(t, failed.Events(), 1, "error recorded as span event")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	m, ok := findMetric(rm, MetricResolutions)
	require.True(t, ok)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(3), total)

	m, ok = findMetric(rm, MetricDuration)
	require.True(t, ok)
	hist, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
}

func TestResolutionTelemetry_SpanTiming(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	rt, err := NewResolutionTelemetry(tp.Tracer("test"), noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cause := apperrors.ConstructionFailed("db", errors.New("refused"))
	rt.Observe(context.Background(), di.ResolutionRecord{
		Key:       "db",
		ScopeID:   "req-1",
		Lifetime:  di.Scoped,
		Error:     cause.Error(),
		Err:       cause,
		Depth:     2,
		Duration:  250 * time.Millisecond,
		Timestamp: start,
	})

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.True(t, spans[0].StartTime().Equal(start))
	assert.True(t, spans[0].EndTime().Equal(start.Add(250*time.Millisecond)))

	lifetime, _ := attr(spans[0].Attributes(), AttrLifetime)
	assert.Equal(t, "scoped", lifetime.AsString())
	depth, _ := attr(spans[0].Attributes(), AttrDepth)
	assert.Equal(t, int64(2), depth.AsInt64())
	outcome, _ := attr(spans[0].Attributes(), AttrOutcome)
	assert.Equal(t, OutcomeFailure, outcome.AsString())
}

func TestResolutionTelemetry_Noop(t *testing.T) {
	rt, err := NewResolutionTelemetry(tracenoop.NewTracerProvider().Tracer("x"), noop.NewMeterProvider().Meter("x"))
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		rt.Observe(context.Background(), di.ResolutionRecord{Key: "a", Success: true, Timestamp: time.Now()})
	})
}

func TestFromServiceConfig(t *testing.T) {
	cfg := &config.ServiceConfig{
		Name:        "orders",
		Version:     "1.4.0",
		Environment: "staging",
		Telemetry: config.TelemetryConfig{
			Enabled:    true,
			Endpoint:   "collector:4318",
			SampleRate: 0.25,
		},
	}

	c := FromServiceConfig(cfg)
	assert.Equal(t, "orders", c.ServiceName)
	assert.Equal(t, "1.4.0", c.ServiceVersion)
	assert.Equal(t, "staging", c.Environment)
	assert.Equal(t, "collector:4318", c.Endpoint)
	assert.False(t, c.Insecure)
	assert.Equal(t, 0.25, c.SampleRate)
	assert.Equal(t, 15*time.Second, c.Interval)
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOn")
	assert.Contains(t, sampler(0).Description(), "AlwaysOff")
	assert.Contains(t, sampler(0.5).Description(), "TraceIDRatioBased")
}

func TestInitTracer(t *testing.T) {
	ctx := context.Background()
	tp, err := InitTracer(ctx, DefaultConfig("test-service"))
	require.NoError(t, err)
	require.NotNil(t, tp)

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	_ = tp.Shutdown(shutdownCtx)
}

func TestInitMeter(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig("test-service")
	cfg.Interval = time.Hour
	mp, err := InitMeter(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, mp)
	assert.NotNil(t, Meter("test"))
	assert.NotNil(t, Tracer("test"))

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	_ = mp.Shutdown(shutdownCtx)
}
