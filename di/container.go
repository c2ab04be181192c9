package di

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/scopekit/dag"
	apperrors "github.com/kbukum/scopekit/errors"
	"github.com/kbukum/scopekit/logger"
)

// Container is an immutable set of descriptors plus the root singleton
// cache. It is safe for concurrent use.
type Container struct {
	opts        options
	logger      *logger.Logger
	descriptors []*Descriptor
	byKey       map[Key][]*Descriptor
	keys        []Key
	graph       *dag.Graph
	singletons  []*slot // indexed by descriptor ID, nil for other lifetimes
	tracker     disposer
	log         *ResolutionLog
	observers   []Observer

	mu       sync.Mutex
	scopes   map[*Scope]uint64
	seq      uint64
	disposed atomic.Bool
}

func newContainer(o options, descs []*Descriptor, roots []Key) *Container {
	c := &Container{
		opts:        o,
		logger:      o.log,
		descriptors: descs,
		byKey:       make(map[Key][]*Descriptor),
		singletons:  make([]*slot, len(descs)),
		scopes:      make(map[*Scope]uint64),
	}

	for _, d := range descs {
		if _, seen := c.byKey[d.key]; !seen {
			c.keys = append(c.keys, d.key)
		}
		c.byKey[d.key] = append(c.byKey[d.key], d)

		if d.lifetime == Singleton {
			s := newSlot()
			if d.prebuilt {
				s.store(d.instance)
			}
			c.singletons[d.id] = s
		}
	}

	c.graph = dag.Build(specsOf(descs), keyStrings(roots))

	if o.recordLog {
		c.log = NewResolutionLog()
		c.observers = append(c.observers, c.log)
	}
	c.observers = append(c.observers, o.observers...)

	return c
}

// Resolve resolves key against the root. Scoped keys fail with
// SCOPED_FROM_ROOT.
func (c *Container) Resolve(ctx context.Context, key Key) (any, error) {
	return c.resolve(ctx, nil, key, nil)
}

// ResolveAll resolves every implementation of key against the root, in
// registration order. An unregistered key yields an empty slice.
func (c *Container) ResolveAll(ctx context.Context, key Key) ([]any, error) {
	return c.resolveAll(ctx, nil, key, nil)
}

// ResolveIn resolves key in scope; a nil scope means the root.
func (c *Container) ResolveIn(ctx context.Context, scope *Scope, key Key) (any, error) {
	return c.resolve(ctx, scope, key, nil)
}

// ResolveAllIn resolves every implementation of key in scope; a nil scope
// means the root.
func (c *Container) ResolveAllIn(ctx context.Context, scope *Scope, key Key) ([]any, error) {
	return c.resolveAll(ctx, scope, key, nil)
}

// CreateScope opens a resolution scope under parent, or under the root when
// parent is nil.
func (c *Container) CreateScope(parent *Scope) (*Scope, error) {
	if parent != nil {
		return parent.CreateScope()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed.Load() {
		return nil, apperrors.ContainerDisposed()
	}
	s := newScope(c, nil)
	c.seq++
	c.scopes[s] = c.seq

	c.logger.Debug("scope created", logger.Fields(logger.FieldScopeID, s.id))
	return s, nil
}

// Graph returns the dependency graph built from the descriptors.
func (c *Container) Graph() *dag.Graph { return c.graph }

// Descriptors returns the descriptors in registration order.
func (c *Container) Descriptors() []*Descriptor {
	return append([]*Descriptor(nil), c.descriptors...)
}

// Lookup returns the descriptors registered under key.
func (c *Container) Lookup(key Key) []*Descriptor {
	return append([]*Descriptor(nil), c.byKey[key]...)
}

// Keys returns every registered key once, in first-registration order.
func (c *Container) Keys() []Key {
	return append([]Key(nil), c.keys...)
}

// Log returns the resolution log, or nil when it is disabled.
func (c *Container) Log() *ResolutionLog { return c.log }

// Disposed reports whether Dispose has been called.
func (c *Container) Disposed() bool { return c.disposed.Load() }

// Dispose disposes every live scope, then every constructed singleton in
// reverse construction order. Later resolutions fail with SCOPE_DISPOSED.
// Calling Dispose again is a no-op.
func (c *Container) Dispose(ctx context.Context) error {
	if !c.disposed.CompareAndSwap(false, true) {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok && c.opts.disposeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.disposeTimeout)
		defer cancel()
	}

	start := time.Now()

	c.mu.Lock()
	scopes := byCreation(c.scopes)
	c.scopes = nil
	c.mu.Unlock()

	var errs []error
	for i := len(scopes) - 1; i >= 0; i-- {
		if err := scopes[i].Dispose(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	singletons := c.tracker.len()
	if err := c.tracker.dispose(ctx); err != nil {
		errs = append(errs, err)
	}

	err := errors.Join(errs...)
	fields := logger.Fields(
		logger.FieldScopeID, RootScopeID,
		"scopes", len(scopes),
		"singletons", singletons,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	)
	if err != nil {
		c.logger.WithError(err).Error("container disposal failed", fields)
	} else {
		c.logger.Info("container disposed", fields)
	}
	return err
}

func (c *Container) removeScope(s *Scope) {
	c.mu.Lock()
	delete(c.scopes, s)
	c.mu.Unlock()
}

// usable fails when the container or scope has been disposed.
func (c *Container) usable(scope *Scope) error {
	if c.disposed.Load() {
		return apperrors.ContainerDisposed()
	}
	if scope != nil && scope.disposed.Load() {
		return apperrors.ScopeDisposed(scope.id)
	}
	return nil
}

func (c *Container) notify(ctx context.Context, rec ResolutionRecord) {
	for _, o := range c.observers {
		o.Observe(ctx, rec)
	}
}

func (c *Container) notifyFailure(ctx context.Context, scope *Scope, key Key, depth int, start time.Time, err error) {
	c.notify(ctx, ResolutionRecord{
		Key:       key,
		ScopeID:   scopeID(scope),
		Depth:     depth,
		Error:     err.Error(),
		Err:       err,
		Duration:  time.Since(start),
		Timestamp: start,
	})
}

func scopeID(s *Scope) string {
	if s == nil {
		return RootScopeID
	}
	return s.id
}

func disposedError(owner *Scope) error {
	if owner == nil {
		return apperrors.ContainerDisposed()
	}
	return apperrors.ScopeDisposed(owner.id)
}

func byCreation(m map[*Scope]uint64) []*Scope {
	out := make([]*Scope, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *Scope) int { return cmp.Compare(m[a], m[b]) })
	return out
}
