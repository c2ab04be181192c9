package di

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	apperrors "github.com/kbukum/scopekit/errors"
	"github.com/kbukum/scopekit/logger"
)

// Scope is a resolution boundary. Scoped services are constructed once per
// scope; singletons always come from the root cache. A child scope never
// sees its parent's scoped instances.
type Scope struct {
	id     string
	c      *Container
	parent *Scope

	mu       sync.Mutex
	slots    map[int]*slot
	children map[*Scope]uint64
	seq      uint64

	tracker  disposer
	disposed atomic.Bool
}

func newScope(c *Container, parent *Scope) *Scope {
	return &Scope{
		id:       c.opts.newScopeID(),
		c:        c,
		parent:   parent,
		slots:    make(map[int]*slot),
		children: make(map[*Scope]uint64),
	}
}

// ID returns the scope's unique identifier.
func (s *Scope) ID() string { return s.id }

// Parent returns the parent scope, or nil for a scope opened on the root.
func (s *Scope) Parent() *Scope { return s.parent }

// Container returns the container the scope belongs to.
func (s *Scope) Container() *Container { return s.c }

// Resolve resolves key in this scope.
func (s *Scope) Resolve(ctx context.Context, key Key) (any, error) {
	return s.c.resolve(ctx, s, key, nil)
}

// ResolveAll resolves every implementation of key in this scope.
func (s *Scope) ResolveAll(ctx context.Context, key Key) ([]any, error) {
	return s.c.resolveAll(ctx, s, key, nil)
}

// CreateScope opens a child scope. The child is disposed with its parent.
func (s *Scope) CreateScope() (*Scope, error) {
	if s.c.disposed.Load() {
		return nil, apperrors.ContainerDisposed()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed.Load() {
		return nil, apperrors.ScopeDisposed(s.id)
	}
	child := newScope(s.c, s)
	s.seq++
	s.children[child] = s.seq

	s.c.logger.Debug("scope created", logger.Fields(logger.FieldScopeID, child.id, "parent_scope_id", s.id))
	return child, nil
}

// Disposed reports whether Dispose has been called.
func (s *Scope) Disposed() bool { return s.disposed.Load() }

// Dispose disposes child scopes, then every disposable scoped instance
// created in this scope in reverse construction order, and marks the scope
// unusable. Disposing while another goroutine still resolves in the scope
// is the caller's responsibility to avoid. Calling Dispose again is a no-op.
func (s *Scope) Dispose(ctx context.Context) error {
	if !s.disposed.CompareAndSwap(false, true) {
		return nil
	}

	s.mu.Lock()
	children := byCreation(s.children)
	s.children = nil
	s.mu.Unlock()

	var errs []error
	for i := len(children) - 1; i >= 0; i-- {
		if err := children[i].Dispose(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	instances := s.tracker.len()
	if err := s.tracker.dispose(ctx); err != nil {
		errs = append(errs, err)
	}

	if s.parent != nil {
		s.parent.removeChild(s)
	} else {
		s.c.removeScope(s)
	}

	err := errors.Join(errs...)
	fields := logger.Fields(logger.FieldScopeID, s.id, logger.FieldCount, instances)
	if err != nil {
		s.c.logger.WithError(err).Error("scope disposal failed", fields)
	} else {
		s.c.logger.Debug("scope disposed", fields)
	}
	return err
}

func (s *Scope) removeChild(child *Scope) {
	s.mu.Lock()
	delete(s.children, child)
	s.mu.Unlock()
}

func (s *Scope) slot(id int) *slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[id]
	if !ok {
		sl = newSlot()
		s.slots[id] = sl
	}
	return sl
}
