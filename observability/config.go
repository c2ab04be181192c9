package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/kbukum/scopekit/config"
)

// InstrumentationName is the tracer and meter name used by scopekit.
const InstrumentationName = "github.com/kbukum/scopekit"

// Config configures the tracer and meter providers.
type Config struct {
	ServiceName    string
	ServiceVersion string
	// Environment is the deployment environment (development, staging, production).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure disables TLS towards the collector.
	Insecure bool
	// SampleRate is the trace sampling ratio (0.0 to 1.0).
	SampleRate float64
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultConfig returns development defaults.
func DefaultConfig(serviceName string) Config {
	return Config{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		SampleRate:     1.0,
		Interval:       15 * time.Second,
	}
}

// FromServiceConfig derives a Config from the service configuration.
func FromServiceConfig(cfg *config.ServiceConfig) Config {
	c := DefaultConfig(cfg.Name)
	if cfg.Version != "" {
		c.ServiceVersion = cfg.Version
	}
	if cfg.Environment != "" {
		c.Environment = cfg.Environment
	}
	if cfg.Telemetry.Endpoint != "" {
		c.Endpoint = cfg.Telemetry.Endpoint
	}
	c.Insecure = cfg.Telemetry.Insecure
	c.SampleRate = cfg.Telemetry.SampleRate
	return c
}

// newResource describes the service. Attributes come without a schema URL so
// the resource merges with SDK defaults regardless of semconv version.
func newResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("service.version", cfg.ServiceVersion),
			attribute.String("deployment.environment", cfg.Environment),
		),
	)
}
