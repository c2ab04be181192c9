package dag

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindUnused(t *testing.T) {
	t.Parallel()

	specs := []Spec{
		{Key: "app", Dependencies: []string{"svc"}},
		{Key: "svc", Dependencies: []string{"db"}},
		{Key: "db"},
		{Key: "orphan"},
		{Key: "orphan-dep"},
	}

	assert.Equal(t, []string{"orphan", "orphan-dep"}, FindUnused(Build(specs, []string{"app"})))
	assert.Empty(t, FindUnused(Build(specs, nil)))
	assert.Equal(t, []string{"app", "svc", "db", "orphan-dep"}, FindUnused(Build(specs, []string{"orphan"})))
}

func TestBuildLevels_Linear(t *testing.T) {
	t.Parallel()

	g := Build([]Spec{
		{Key: "c", Dependencies: []string{"b"}},
		{Key: "b", Dependencies: []string{"a"}},
		{Key: "a"},
	}, nil)

	levels, err := BuildLevels(g)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}, {"b"}, {"c"}}, levels)
}

func TestBuildLevels_Diamond(t *testing.T) {
	t.Parallel()

	g := Build([]Spec{
		{Key: "a"},
		{Key: "b", Dependencies: []string{"a"}},
		{Key: "c", Dependencies: []string{"a"}},
		{Key: "d", Dependencies: []string{"b", "c"}},
	}, nil)

	levels, err := BuildLevels(g)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}, {"b", "c"}, {"d"}}, levels)
}

func TestBuildLevels_IgnoresUnresolved(t *testing.T) {
	t.Parallel()

	g := Build([]Spec{{Key: "a", Dependencies: []string{"ghost"}}}, nil)

	levels, err := BuildLevels(g)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}}, levels)
}

func TestBuildLevels_Cycle(t *testing.T) {
	t.Parallel()

	g := Build([]Spec{
		{Key: "a", Dependencies: []string{"b"}},
		{Key: "b", Dependencies: []string{"a"}},
	}, nil)

	_, err := BuildLevels(g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle detected")
}

func TestEngine_RunsLevelsInOrder(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		order []string
	)
	e := &Engine{}
	result, err := e.Run(context.Background(), [][]string{{"a"}, {"b", "c"}, {"d"}}, func(_ context.Context, key string) error {
		mu.Lock()
		order = append(order, key)
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)

	require.Len(t, order, 4)
	assert.Equal(t, "a", order[0])
	assert.ElementsMatch(t, []string{"b", "c"}, order[1:3])
	assert.Equal(t, "d", order[3])
	for _, key := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, "completed", result.Steps[key].Status)
	}
}

func TestEngine_MaxParallel(t *testing.T) {
	t.Parallel()

	var active, peak int32
	e := &Engine{MaxParallel: 2}
	_, err := e.Run(context.Background(), [][]string{{"a", "b", "c", "d", "e"}}, func(_ context.Context, _ string) error {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestEngine_FailureSkipsLaterLevels(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	e := &Engine{}
	result, err := e.Run(context.Background(), [][]string{{"a"}, {"b"}}, func(_ context.Context, key string) error {
		if key == "a" {
			return boom
		}
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "failed", result.Steps["a"].Status)
	assert.Equal(t, "skipped", result.Steps["b"].Status)
}

func TestEngine_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := (&Engine{}).Run(ctx, [][]string{{"a"}}, func(context.Context, string) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
