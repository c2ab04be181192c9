// Package bootstrap runs an application around a dependency container.
//
// An App takes a typed configuration, builds a logger and optional
// telemetry from it, lets the caller register services, builds and
// validates the container, and disposes everything on shutdown.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
//	    return di.Register(a.Builder, "db", di.Singleton, openDB)
//	})
//	err = app.RunTask(ctx, func(ctx context.Context, scope *di.Scope) error {
//	    return work(ctx, scope)
//	})
//
// Run blocks until SIGINT or SIGTERM; RunTask runs one task in a fresh
// scope and shuts down when it returns.
package bootstrap
