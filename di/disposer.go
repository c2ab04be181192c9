package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Disposable is implemented by services that release resources. Services
// implementing io.Closer are disposed through Close instead.
type Disposable interface {
	Dispose(ctx context.Context) error
}

func isDisposable(v any) bool {
	switch v.(type) {
	case Disposable, io.Closer:
		return true
	default:
		return false
	}
}

type disposeEntry struct {
	key      Key
	instance any
}

// disposer records disposable instances in construction order.
type disposer struct {
	mu      sync.Mutex
	entries []disposeEntry
	closed  bool
}

// track records v. It returns false once the disposer has run, in which
// case the caller owns v.
func (d *disposer) track(key Key, v any) bool {
	if !isDisposable(v) {
		return true
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	d.entries = append(d.entries, disposeEntry{key: key, instance: v})
	return true
}

func (d *disposer) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// dispose disposes every tracked instance once, newest first. Every instance
// is attempted even after a failure; failures are joined.
func (d *disposer) dispose(ctx context.Context) error {
	d.mu.Lock()
	entries := d.entries
	d.entries = nil
	d.closed = true
	d.mu.Unlock()

	var errs []error
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if err := disposeInstance(ctx, e.instance); err != nil {
			errs = append(errs, fmt.Errorf("dispose %s: %w", e.key, err))
		}
	}
	return errors.Join(errs...)
}

func disposeInstance(ctx context.Context, v any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during dispose: %v", r)
		}
	}()

	switch t := v.(type) {
	case Disposable:
		return t.Dispose(ctx)
	case io.Closer:
		return t.Close()
	}
	return nil
}
