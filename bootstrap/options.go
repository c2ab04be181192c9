package bootstrap

import (
	"io"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/scopekit/di"
	"github.com/kbukum/scopekit/logger"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout *time.Duration
	containerOpts   []di.Option
	summary         io.Writer
	quiet           bool
	tracer          trace.Tracer
	meter           metric.Meter
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is built from the config's Logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithContainerOptions appends builder options applied after the ones
// derived from the config's Container section.
func WithContainerOptions(opts ...di.Option) Option {
	return func(o *appOptions) {
		o.containerOpts = append(o.containerOpts, opts...)
	}
}

// WithSummaryWriter sets where the startup summary is printed. Defaults to
// stdout.
func WithSummaryWriter(w io.Writer) Option {
	return func(o *appOptions) {
		o.summary = w
	}
}

// WithoutSummary disables the startup summary.
func WithoutSummary() Option {
	return func(o *appOptions) {
		o.quiet = true
	}
}

// WithTelemetry records resolutions with the given tracer and meter instead
// of exporters built from the config's Telemetry section. Either may be nil,
// in which case the global provider is used for it.
func WithTelemetry(tracer trace.Tracer, meter metric.Meter) Option {
	return func(o *appOptions) {
		o.tracer = tracer
		o.meter = meter
	}
}
