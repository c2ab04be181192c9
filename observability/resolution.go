package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/scopekit/di"
	apperrors "github.com/kbukum/scopekit/errors"
)

// Span and metric names.
const (
	SpanResolve       = "di.resolve"
	MetricResolutions = "di.resolutions.total"
	MetricDuration    = "di.resolution.duration"
	AttrKey           = "di.key"
	AttrLifetime      = "di.lifetime"
	AttrScopeID       = "di.scope_id"
	AttrDepth         = "di.depth"
	AttrCached        = "di.cached"
	AttrOutcome       = "di.outcome"
	AttrErrorCode     = "error.code"
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
)

// ResolutionTelemetry is a di.Observer that records every resolution as a
// span and as metrics.
type ResolutionTelemetry struct {
	tracer   trace.Tracer
	total    metric.Int64Counter
	duration metric.Float64Histogram
}

var _ di.Observer = (*ResolutionTelemetry)(nil)

// NewResolutionTelemetry creates the instruments on meter.
func NewResolutionTelemetry(tracer trace.Tracer, meter metric.Meter) (*ResolutionTelemetry, error) {
	total, err := meter.Int64Counter(MetricResolutions,
		metric.WithDescription("Number of service resolutions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricResolutions, err)
	}

	duration, err := meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Duration of service resolutions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricDuration, err)
	}

	return &ResolutionTelemetry{tracer: tracer, total: total, duration: duration}, nil
}

// Observe implements di.Observer. The span covers the record's time range.
func (t *ResolutionTelemetry) Observe(ctx context.Context, rec di.ResolutionRecord) {
	outcome := OutcomeSuccess
	if !rec.Success {
		outcome = OutcomeFailure
	}

	attrs := []attribute.KeyValue{
		attribute.String(AttrKey, string(rec.Key)),
		attribute.String(AttrLifetime, rec.Lifetime.String()),
		attribute.Bool(AttrCached, rec.Cached),
		attribute.String(AttrOutcome, outcome),
	}

	_, span := t.tracer.Start(ctx, SpanResolve,
		trace.WithTimestamp(rec.Timestamp),
		trace.WithAttributes(attrs...),
		trace.WithAttributes(
			attribute.String(AttrScopeID, rec.ScopeID),
			attribute.Int(AttrDepth, rec.Depth),
		),
	)
	if !rec.Success {
		if code := apperrors.CodeOf(rec.Err); code != "" {
			span.SetAttributes(attribute.String(AttrErrorCode, string(code)))
		}
		if rec.Err != nil {
			span.RecordError(rec.Err)
		}
		span.SetStatus(codes.Error, rec.Error)
	}
	span.End(trace.WithTimestamp(rec.Timestamp.Add(rec.Duration)))

	t.total.Add(ctx, 1, metric.WithAttributes(attrs...))
	t.duration.Record(ctx, rec.Duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrKey, string(rec.Key)),
		attribute.String(AttrOutcome, outcome),
	))
}
