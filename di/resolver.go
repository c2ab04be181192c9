package di

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	apperrors "github.com/kbukum/scopekit/errors"
	"github.com/kbukum/scopekit/logger"
)

// Source resolves services by key. Container, Scope and the Resolver handed
// to factories all implement it.
type Source interface {
	Resolve(ctx context.Context, key Key) (any, error)
	ResolveAll(ctx context.Context, key Key) ([]any, error)
}

// Resolver is passed to factories. Resolutions made through it belong to the
// chain of the service being constructed, so a loop fails with
// CIRCULAR_DEPENDENCY instead of recursing.
type Resolver interface {
	Source
	// Context returns the context of the outer resolution.
	Context() context.Context
	// ScopeID returns the scope the instance is built for.
	ScopeID() string
	// Key returns the key being constructed.
	Key() Key
}

var errNilInstance = errors.New("factory returned a nil instance")

func (c *Container) resolve(ctx context.Context, scope *Scope, key Key, chain []Key) (any, error) {
	start := time.Now()
	ctx, _ = withResolution(ctx)
	if err := c.usable(scope); err != nil {
		c.notifyFailure(ctx, scope, key, len(chain), start, err)
		return nil, err
	}

	descs := c.byKey[key]
	switch len(descs) {
	case 0:
		err := apperrors.NotRegistered(string(key))
		c.notifyFailure(ctx, scope, key, len(chain), start, err)
		return nil, err
	case 1:
		return c.resolveDescriptor(ctx, scope, descs[0], chain)
	default:
		err := apperrors.AmbiguousRegistration(string(key), len(descs))
		c.notifyFailure(ctx, scope, key, len(chain), start, err)
		return nil, err
	}
}

func (c *Container) resolveAll(ctx context.Context, scope *Scope, key Key, chain []Key) ([]any, error) {
	ctx, _ = withResolution(ctx)
	if err := c.usable(scope); err != nil {
		c.notifyFailure(ctx, scope, key, len(chain), time.Now(), err)
		return nil, err
	}

	descs := c.byKey[key]
	out := make([]any, 0, len(descs))
	for _, d := range descs {
		v, err := c.resolveDescriptor(ctx, scope, d, chain)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *Container) resolveDescriptor(ctx context.Context, scope *Scope, d *Descriptor, chain []Key) (any, error) {
	start := time.Now()
	v, cached, err := c.activate(ctx, scope, d, chain)

	rec := ResolutionRecord{
		Key:       d.key,
		ScopeID:   scopeID(scope),
		Lifetime:  d.lifetime,
		Success:   err == nil,
		Cached:    cached,
		Depth:     len(chain),
		Duration:  time.Since(start),
		Timestamp: start,
	}
	if err != nil {
		rec.Error = err.Error()
		rec.Err = err
	}
	c.notify(ctx, rec)

	return v, err
}

// activate returns the instance for d and whether it came from a cache.
func (c *Container) activate(ctx context.Context, scope *Scope, d *Descriptor, chain []Key) (any, bool, error) {
	if slices.Contains(chain, d.key) {
		loop := append(slices.Clone(chain), d.key)
		return nil, false, apperrors.CircularDependency(keyStrings(loop))
	}

	switch d.lifetime {
	case Singleton:
		// Singletons never see the requesting scope.
		return c.cached(ctx, nil, c.singletons[d.id], d, chain, &c.tracker)
	case Scoped:
		if scope == nil {
			return nil, false, apperrors.ScopedFromRoot(string(d.key))
		}
		return c.cached(ctx, scope, scope.slot(d.id), d, chain, &scope.tracker)
	default:
		v, err := c.build(ctx, scope, d, chain)
		return v, false, err
	}
}

// cached returns the instance held by s, constructing it at most once.
// Dependencies resolve before the slot is locked so that concurrent builders
// of unrelated services never wait on each other.
func (c *Container) cached(ctx context.Context, owner *Scope, s *slot, d *Descriptor, chain []Key, tracker *disposer) (any, bool, error) {
	if v, ok := s.load(); ok {
		return v, true, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, false, apperrors.Canceled(string(d.key), err)
	}

	deps, err := c.resolveDeps(ctx, owner, d, chain)
	if err != nil {
		return nil, false, err
	}

	held, err := s.acquire(ctx, resolutionOf(ctx), d.key)
	if err != nil {
		return nil, false, apperrors.Canceled(string(d.key), err)
	}
	if held != nil {
		// Another goroutine builds d and waits on something this one holds.
		return nil, false, apperrors.CircularDependency(keyStrings(crossLoop(chain, d.key, held)))
	}
	defer s.release()

	if v, ok := s.load(); ok {
		return v, true, nil
	}

	v, err := c.construct(ctx, owner, d, chain, deps)
	if err != nil {
		return nil, false, err
	}
	if !tracker.track(d.key, v) {
		// The owner was disposed while v was being built.
		if derr := disposeInstance(ctx, v); derr != nil {
			c.logger.WithError(derr).Warn("dispose of orphaned instance failed",
				logger.Fields(logger.FieldContract, string(d.key)))
		}
		return nil, false, disposedError(owner)
	}
	s.store(v)
	return v, false, nil
}

// build constructs a transient instance. Transients are never tracked for
// disposal.
func (c *Container) build(ctx context.Context, scope *Scope, d *Descriptor, chain []Key) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Canceled(string(d.key), err)
	}
	deps, err := c.resolveDeps(ctx, scope, d, chain)
	if err != nil {
		return nil, err
	}
	return c.construct(ctx, scope, d, chain, deps)
}

// resolvedDep is a declared dependency resolved ahead of its factory.
type resolvedDep struct {
	one   any
	all   []any
	multi bool
}

func (c *Container) resolveDeps(ctx context.Context, scope *Scope, d *Descriptor, chain []Key) (map[Key]resolvedDep, error) {
	if len(d.deps) == 0 {
		return nil, nil
	}

	next := append(slices.Clone(chain), d.key)
	deps := make(map[Key]resolvedDep, len(d.deps))
	for _, key := range d.deps {
		if _, done := deps[key]; done {
			continue
		}
		if len(c.byKey[key]) > 1 {
			all, err := c.resolveAll(ctx, scope, key, next)
			if err != nil {
				return nil, err
			}
			deps[key] = resolvedDep{all: all, multi: true}
			continue
		}
		v, err := c.resolve(ctx, scope, key, next)
		if err != nil {
			return nil, err
		}
		deps[key] = resolvedDep{one: v, all: []any{v}}
	}
	return deps, nil
}

// construct invokes the factory under d's retry policy. Resolution errors
// raised by nested resolutions pass through unchanged and are not retried.
func (c *Container) construct(ctx context.Context, scope *Scope, d *Descriptor, chain []Key, deps map[Key]resolvedDep) (any, error) {
	r := &factoryResolver{
		ctx:   ctx,
		c:     c,
		scope: scope,
		key:   d.key,
		chain: append(slices.Clone(chain), d.key),
		deps:  deps,
		res:   resolutionOf(ctx),
	}

	attempts := d.retry.attempts()
	backoff := d.retry.Backoff
	for attempt := 1; ; attempt++ {
		start := time.Now()
		v, err := invoke(d.factory, r)
		if err == nil {
			c.logger.Debug("service constructed", logger.Fields(
				logger.FieldContract, string(d.key),
				logger.FieldLifetime, d.lifetime.String(),
				logger.FieldScopeID, scopeID(scope),
				logger.FieldAttempt, attempt,
				logger.FieldDuration, time.Since(start).Milliseconds(),
			))
			return v, nil
		}
		if apperrors.IsResolution(err) {
			return nil, err
		}

		c.logger.WithError(err).Warn("factory failed", logger.Fields(
			logger.FieldContract, string(d.key),
			logger.FieldScopeID, scopeID(scope),
			logger.FieldAttempt, attempt,
		))
		if attempt >= attempts {
			return nil, apperrors.ConstructionFailed(string(d.key), err).WithDetail(logger.FieldAttempt, attempt)
		}

		if backoff > 0 {
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, apperrors.Canceled(string(d.key), ctx.Err())
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return nil, apperrors.Canceled(string(d.key), err)
		}
		backoff = d.retry.next(backoff)
	}
}

func invoke(f Factory, r Resolver) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			v, err = nil, fmt.Errorf("factory panicked: %v", p)
		}
	}()
	v, err = f(r)
	if err == nil && v == nil {
		err = errNilInstance
	}
	return v, err
}

type factoryResolver struct {
	ctx   context.Context
	c     *Container
	scope *Scope
	key   Key
	chain []Key
	deps  map[Key]resolvedDep
	res   *resolution
}

func (r *factoryResolver) Resolve(ctx context.Context, key Key) (any, error) {
	if dep, ok := r.deps[key]; ok {
		if dep.multi {
			return nil, apperrors.AmbiguousRegistration(string(key), len(dep.all))
		}
		return dep.one, nil
	}
	return r.c.resolve(r.bind(ctx), r.scope, key, r.chain)
}

func (r *factoryResolver) ResolveAll(ctx context.Context, key Key) ([]any, error) {
	if dep, ok := r.deps[key]; ok {
		return append([]any(nil), dep.all...), nil
	}
	return r.c.resolveAll(r.bind(ctx), r.scope, key, r.chain)
}

// bind keeps nested resolutions in the caller's resolution tree even when
// the factory passes a context of its own.
func (r *factoryResolver) bind(ctx context.Context) context.Context {
	if r.res == nil || resolutionOf(ctx) == r.res {
		return ctx
	}
	return context.WithValue(ctx, resolutionKey{}, r.res)
}

func (r *factoryResolver) Context() context.Context { return r.ctx }

func (r *factoryResolver) ScopeID() string { return scopeID(r.scope) }

func (r *factoryResolver) Key() Key { return r.key }
