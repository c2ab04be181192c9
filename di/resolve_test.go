package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kbukum/scopekit/errors"
)

type greeter interface{ Greet() string }

type english struct{}

func (english) Greet() string { return "hello" }

func TestKeyOf(t *testing.T) {
	assert.Equal(t, Key("*github.com/kbukum/scopekit/di.widget"), KeyOf[*widget]())
	assert.Equal(t, Key("github.com/kbukum/scopekit/di.greeter"), KeyOf[greeter]())
	assert.Equal(t, Key("string"), KeyOf[string]())
}

func TestTypedHelpers(t *testing.T) {
	b := newTestBuilder()
	require.NoError(t, Provide(b, Singleton, func(Resolver) (greeter, error) { return english{}, nil }))
	require.NoError(t, Register(b, "name", Transient, func(Resolver) (string, error) { return "scopekit", nil }))
	require.NoError(t, RegisterMulti(b, "nums", Transient, func(Resolver) (int, error) { return 1, nil }))
	require.NoError(t, RegisterMulti(b, "nums", Transient, func(Resolver) (int, error) { return 2, nil }))
	require.NoError(t, Register(b, "greeting", Transient, func(r Resolver) (string, error) {
		g, err := Get[greeter](r.Context(), r)
		if err != nil {
			return "", err
		}
		return g.Greet(), nil
	}, DependsOn(KeyOf[greeter]())))
	c := build(t, b)
	ctx := context.Background()

	g, err := Get[greeter](ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "hello", g.Greet())

	greeting, err := Resolve[string](ctx, c, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", greeting)

	nums, err := ResolveAll[int](ctx, c, "nums")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, nums)

	_, err = Resolve[int](ctx, c, "name")
	require.ErrorIs(t, err, apperrors.ErrTypeMismatch)
	appErr, _ := apperrors.AsError(err)
	assert.Equal(t, "string", appErr.Details["got"])

	name, ok := TryResolve[string](ctx, c, "name")
	assert.True(t, ok)
	assert.Equal(t, "scopekit", name)
	_, ok = TryResolve[string](ctx, c, "missing")
	assert.False(t, ok)

	assert.Equal(t, "scopekit", MustResolve[string](ctx, c, "name"))
	assert.Panics(t, func() { MustResolve[string](ctx, c, "missing") })
}

func TestRegister_NilFactory(t *testing.T) {
	b := newTestBuilder()
	require.NoError(t, Register[string](b, "k", Singleton, nil))
	_, err := b.Build()
	assert.ErrorIs(t, err, apperrors.ErrMissingFactory)
}

func TestRegister_TypedNilIsNotCached(t *testing.T) {
	b := newTestBuilder()
	var calls int
	require.NoError(t, Register(b, "w", Singleton, func(Resolver) (*widget, error) {
		calls++
		return nil, nil
	}))
	c := build(t, b)
	ctx := context.Background()

	for range 2 {
		_, err := c.Resolve(ctx, "w")
		require.ErrorIs(t, err, apperrors.ErrConstructionFailed)
		assert.ErrorIs(t, err, errNilInstance)
	}
	assert.Equal(t, 2, calls)
}

func TestIsNilValue(t *testing.T) {
	var w *widget
	var m map[string]int
	assert.True(t, isNilValue(nil))
	assert.True(t, isNilValue(w))
	assert.True(t, isNilValue(m))
	assert.False(t, isNilValue(0))
	assert.False(t, isNilValue(""))
	assert.False(t, isNilValue(&widget{}))
}
