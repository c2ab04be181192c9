package di

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kbukum/scopekit/logger"
)

func newTestBuilder(opts ...Option) *Builder {
	return NewBuilder(append([]Option{WithLogger(logger.Nop())}, opts...)...)
}

func build(t *testing.T, b *Builder) *Container {
	t.Helper()
	c, err := b.Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Dispose(context.Background()) })
	return c
}

type widget struct {
	name string
	deps []any
}

// journal records dispose calls in order.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(s string) {
	j.mu.Lock()
	j.entries = append(j.entries, s)
	j.mu.Unlock()
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

type resource struct {
	name     string
	j        *journal
	disposed atomic.Int32
	err      error
}

func (r *resource) Dispose(context.Context) error {
	r.disposed.Add(1)
	r.j.add(r.name)
	return r.err
}

type closer struct {
	closed atomic.Int32
}

func (c *closer) Close() error {
	c.closed.Add(1)
	return nil
}

// countingFactory returns a factory that builds a fresh widget and counts calls.
func countingFactory(name string, calls *atomic.Int32) Factory {
	return func(Resolver) (any, error) {
		calls.Add(1)
		return &widget{name: name}, nil
	}
}

func resourceFactory(name string, j *journal, deps ...Key) Factory {
	return func(r Resolver) (any, error) {
		for _, k := range deps {
			if _, err := r.Resolve(r.Context(), k); err != nil {
				return nil, err
			}
		}
		return &resource{name: name, j: j}, nil
	}
}

func value(v any) Factory {
	return func(Resolver) (any, error) { return v, nil }
}

var errBoom = errors.New("boom")
