package di

import (
	"context"
	"slices"
	"sync/atomic"
)

// slot caches one instance. Readers take the lock-free path once the
// instance is stored; builders serialize on sem, which unlike a mutex can be
// abandoned when the caller's context ends.
type slot struct {
	sem    chan struct{}
	box    atomic.Pointer[instanceBox]
	holder atomic.Pointer[resolution]
}

type instanceBox struct {
	value any
}

// resolution identifies one resolution tree, the outer call and every
// nested resolution made by its factories. It records the slot it is
// blocked on so that builders on other goroutines can see wait cycles.
type resolution struct {
	waiting atomic.Pointer[wait]
}

type wait struct {
	slot *slot
	key  Key
}

type resolutionKey struct{}

// withResolution returns ctx carrying the resolution of an outer call, or a
// new one when ctx has none.
func withResolution(ctx context.Context) (context.Context, *resolution) {
	if res, ok := ctx.Value(resolutionKey{}).(*resolution); ok {
		return ctx, res
	}
	res := &resolution{}
	return context.WithValue(ctx, resolutionKey{}, res), res
}

func resolutionOf(ctx context.Context) *resolution {
	res, _ := ctx.Value(resolutionKey{}).(*resolution)
	return res
}

func newSlot() *slot {
	return &slot{sem: make(chan struct{}, 1)}
}

func (s *slot) load() (any, bool) {
	if b := s.box.Load(); b != nil {
		return b.value, true
	}
	return nil, false
}

func (s *slot) store(v any) {
	s.box.Store(&instanceBox{value: v})
}

// acquire locks s for res. When s is held by a resolution that is itself
// waiting, directly or through others, on a slot res holds, acquire returns
// the keys of that wait chain, non-nil, instead of blocking.
func (s *slot) acquire(ctx context.Context, res *resolution, key Key) ([]Key, error) {
	select {
	case s.sem <- struct{}{}:
		s.holder.Store(res)
		return nil, nil
	default:
	}

	if res != nil {
		res.waiting.Store(&wait{slot: s, key: key})
		defer res.waiting.Store(nil)
		if held, ok := s.waitCycle(res); ok {
			return held, nil
		}
	}

	select {
	case s.sem <- struct{}{}:
		s.holder.Store(res)
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// waitCycle follows holders from s and reports whether the walk reaches
// res, together with the keys the holders on the way are waiting on.
func (s *slot) waitCycle(res *resolution) ([]Key, bool) {
	keys := []Key{}
	seen := make(map[*resolution]bool)
	for cur := s; ; {
		h := cur.holder.Load()
		if h == nil || seen[h] {
			return nil, false
		}
		if h == res {
			return keys, true
		}
		seen[h] = true
		w := h.waiting.Load()
		if w == nil {
			return nil, false
		}
		keys = append(keys, w.key)
		cur = w.slot
	}
}

func (s *slot) release() {
	s.holder.Store(nil)
	<-s.sem
}

// crossLoop renders the cycle found by acquire as a key path. chain is the
// waiter's chain, key the key it waited on and held the keys the other
// holders wait on; the last of them is held by the waiter.
func crossLoop(chain []Key, key Key, held []Key) []Key {
	start := 0
	if len(held) > 0 {
		if i := slices.Index(chain, held[len(held)-1]); i >= 0 {
			start = i
		}
	}
	loop := append(slices.Clone(chain[start:]), key)
	return append(loop, held...)
}
