package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/scopekit/di"
	"github.com/kbukum/scopekit/logger"
	"github.com/kbukum/scopekit/observability"
)

// App couples a typed configuration with the container built from it.
// The type parameter C is the config type; any struct embedding
// config.ServiceConfig satisfies Config.
type App[C Config] struct {
	Name    string
	Version string
	Cfg     C
	Logger  *logger.Logger
	Summary *Summary

	// Builder accepts registrations during the configure phase and is nil
	// afterwards.
	Builder *di.Builder
	// Container is set once startup has built and validated it.
	Container *di.Container

	opts            *appOptions
	gracefulTimeout time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook

	tracer         trace.Tracer
	meter          metric.Meter
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// NewApp creates an application from a typed config.
// It applies defaults, validates the config and initializes the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		opts:            o,
		gracefulTimeout: base.Container.DisposeTimeout,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if app.gracefulTimeout <= 0 {
		app.gracefulTimeout = 15 * time.Second
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		app.Logger = logger.Init(base.Logging, base.Name)
	}

	app.Summary = NewSummary(base.Name, base.Version)
	return app, nil
}

// OnConfigure registers a callback run during the configure phase. Callbacks
// register services on a.Builder.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// Run executes the lifecycle of a long-running service:
// startup, OnReady hooks, block on signal, OnStop hooks, dispose.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return errors.Join(err, a.release())
	}

	a.Logger.Info("application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask executes a finite task in a fresh scope with the full lifecycle.
// The task context is canceled on SIGINT or SIGTERM. The scope is disposed
// when the task returns, before the container itself.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context, scope *di.Scope) error) error {
	if err := a.startup(ctx); err != nil {
		return errors.Join(err, a.release())
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := a.runInScope(taskCtx, task)

	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

func (a *App[C]) runInScope(ctx context.Context, task func(ctx context.Context, scope *di.Scope) error) error {
	scope, err := a.Container.CreateScope(nil)
	if err != nil {
		return err
	}
	taskErr := task(ctx, scope)
	if err := scope.Dispose(context.WithoutCancel(ctx)); err != nil {
		a.Logger.Error("task scope disposal failed", logger.ErrorFields("dispose", err))
		if taskErr == nil {
			taskErr = err
		}
	}
	return taskErr
}

// startup initializes telemetry, builds and validates the container and
// runs the start hooks.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("starting application", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.initTelemetry(ctx); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	builderOpts, err := a.builderOptions()
	if err != nil {
		return err
	}
	a.Builder = di.NewBuilder(builderOpts...)
	if err := a.addInfrastructure(a.Builder); err != nil {
		return err
	}
	if err := a.configure(ctx); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}

	c, err := a.Builder.Build()
	a.Builder = nil
	if err != nil {
		return fmt.Errorf("building container: %w", err)
	}
	a.Container = c

	report := c.Validate()
	if err := report.Err(); err != nil {
		return fmt.Errorf("validating container: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary(report)

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}
	return nil
}

func (a *App[C]) initTelemetry(ctx context.Context) error {
	base := a.Cfg.GetServiceConfig()
	if a.opts.tracer != nil || a.opts.meter != nil {
		a.tracer, a.meter = a.opts.tracer, a.opts.meter
	} else if base.Telemetry.Enabled {
		cfg := observability.FromServiceConfig(base)
		tp, err := observability.InitTracer(ctx, cfg)
		if err != nil {
			return err
		}
		a.tracerProvider = tp
		mp, err := observability.InitMeter(ctx, cfg)
		if err != nil {
			return err
		}
		a.meterProvider = mp
		a.tracer = tp.Tracer(observability.InstrumentationName)
		a.meter = mp.Meter(observability.InstrumentationName)
	}

	if a.tracer == nil {
		a.tracer = observability.Tracer(observability.InstrumentationName)
	}
	if a.meter == nil {
		a.meter = observability.Meter(observability.InstrumentationName)
	}
	return nil
}

func (a *App[C]) telemetryEnabled() bool {
	return a.tracerProvider != nil || a.opts.tracer != nil || a.opts.meter != nil
}

func (a *App[C]) builderOptions() ([]di.Option, error) {
	base := a.Cfg.GetServiceConfig()
	opts := []di.Option{
		di.WithConfig(base.Container),
		di.WithLogger(a.Logger.WithComponent("di")),
	}
	if a.telemetryEnabled() {
		tel, err := observability.NewResolutionTelemetry(a.tracer, a.meter)
		if err != nil {
			return nil, fmt.Errorf("telemetry: %w", err)
		}
		opts = append(opts, di.WithObserver(tel))
	}
	return append(opts, a.opts.containerOpts...), nil
}

// addInfrastructure registers the config, logger and telemetry handles
// under di.Names so factories can depend on them.
func (a *App[C]) addInfrastructure(b *di.Builder) error {
	return errors.Join(
		b.AddInstance(di.Names.Config, a.Cfg),
		b.AddInstance(di.Names.Logger, a.Logger),
		b.AddInstance(di.Names.Tracer, a.tracer),
		b.AddInstance(di.Names.Meter, a.meter),
	)
}

// configure runs the registered configuration callbacks.
func (a *App[C]) configure(ctx context.Context) error {
	if len(a.onConfigure) == 0 {
		return nil
	}

	a.Logger.Debug("running configuration callbacks", logger.Fields(logger.FieldCount, len(a.onConfigure)))
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// DisplaySummary prints the startup summary unless it is disabled.
func (a *App[C]) DisplaySummary(report *di.ValidationReport) {
	if a.opts.quiet {
		return
	}
	w := a.opts.summary
	if w == nil {
		w = os.Stdout
	}
	a.Summary.Render(w, a.Container, report)
}

// WaitForSignal blocks until SIGINT, SIGTERM or context cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("context canceled, shutting down")
		return nil
	}
}

// Shutdown runs the stop hooks and disposes the container. Use it when
// managing the lifecycle yourself.
func (a *App[C]) Shutdown(context.Context) error {
	return a.stop()
}

// stop runs the OnStop hooks and then releases the container and telemetry
// within the graceful timeout.
func (a *App[C]) stop() error {
	a.Logger.Info("shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("onStop hook failed", logger.ErrorFields("stop", err))
		errs = append(errs, err)
	}
	if err := a.releaseWith(ctx); err != nil {
		errs = append(errs, err)
	}

	a.Logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

func (a *App[C]) release() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()
	return a.releaseWith(ctx)
}

// releaseWith disposes the container and flushes telemetry providers owned
// by the app.
func (a *App[C]) releaseWith(ctx context.Context) error {
	var errs []error
	if a.Container != nil {
		if err := a.Container.Dispose(ctx); err != nil {
			errs = append(errs, fmt.Errorf("disposing container: %w", err))
		}
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
		a.tracerProvider = nil
	}
	if a.meterProvider != nil {
		if err := a.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
		a.meterProvider = nil
	}
	return errors.Join(errs...)
}
