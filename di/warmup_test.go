package di

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kbukum/scopekit/errors"
)

func TestWarm_BuildsSingletonsOnly(t *testing.T) {
	var singletons, scoped, transients atomic.Int32
	b := newTestBuilder(WithMaxParallelWarm(2))
	require.NoError(t, b.Add(Registration{Key: "db", Lifetime: Singleton, Factory: countingFactory("db", &singletons)}))
	require.NoError(t, b.Add(Registration{Key: "cache", Lifetime: Singleton, Factory: countingFactory("cache", &singletons), Dependencies: []Key{"db"}}))
	require.NoError(t, b.Add(Registration{Key: "uow", Lifetime: Scoped, Factory: countingFactory("uow", &scoped)}))
	require.NoError(t, b.Add(Registration{Key: "req", Lifetime: Transient, Factory: countingFactory("req", &transients)}))
	c := build(t, b)

	require.NoError(t, c.Warm(context.Background()))
	assert.Equal(t, int32(2), singletons.Load())
	assert.Zero(t, scoped.Load())
	assert.Zero(t, transients.Load())

	rec, ok := c.Log().Last("cache")
	require.True(t, ok)
	assert.True(t, rec.Success)

	_, err := c.Resolve(context.Background(), "cache")
	require.NoError(t, err)
	assert.Equal(t, int32(2), singletons.Load())
}

func TestWarm_OnBuild(t *testing.T) {
	var calls atomic.Int32
	b := newTestBuilder(WithWarmOnBuild(true))
	require.NoError(t, b.Add(Registration{Key: "db", Lifetime: Singleton, Factory: countingFactory("db", &calls)}))
	build(t, b)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWarm_FailsOnCycle(t *testing.T) {
	b := newTestBuilder()
	require.NoError(t, b.Add(Registration{Key: "X", Lifetime: Singleton, Factory: value(1), Dependencies: []Key{"Y"}}))
	require.NoError(t, b.Add(Registration{Key: "Y", Lifetime: Singleton, Factory: value(2), Dependencies: []Key{"X"}}))
	c := build(t, b)

	assert.ErrorIs(t, c.Warm(context.Background()), apperrors.ErrCycleDetected)
}

func TestWarm_PropagatesFactoryError(t *testing.T) {
	b := newTestBuilder()
	require.NoError(t, b.Add(Registration{Key: "db", Lifetime: Singleton, Factory: func(Resolver) (any, error) {
		return nil, errBoom
	}}))
	c := build(t, b)

	err := c.Warm(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrConstructionFailed)
	assert.ErrorIs(t, err, errBoom)
}
