// Package di provides a validating service container.
//
// Services are registered on a Builder under a contract Key with a Lifetime
// and a Factory, then frozen into an immutable Container by Build. The
// container resolves services on demand, caching singletons in the root and
// scoped services per Scope, and can validate its dependency graph for
// cycles, captive dependencies and unresolved keys before anything is built.
//
// # Registration
//
//	b := di.NewBuilder()
//	_ = di.Register(b, "db", di.Singleton, func(r di.Resolver) (*sql.DB, error) {
//	    return sql.Open("sqlite3", ":memory:")
//	})
//	_ = di.Register(b, "repo", di.Scoped, func(r di.Resolver) (*Repo, error) {
//	    db, err := di.Resolve[*sql.DB](r.Context(), r, "db")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewRepo(db), nil
//	}, di.DependsOn("db"))
//	c, err := b.Build()
//
// # Resolution
//
//	if report := c.Validate(); !report.OK() {
//	    return report.Err()
//	}
//	scope, _ := c.CreateScope(nil)
//	defer scope.Dispose(ctx)
//	repo := di.MustResolve[*Repo](ctx, scope, "repo")
//
// Declared dependencies are resolved before a factory runs, outside any
// construction lock, so declared cycles always fail with a
// CIRCULAR_DEPENDENCY error instead of deadlocking.
package di
