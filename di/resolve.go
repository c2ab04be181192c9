package di

import (
	"context"
	"fmt"
	"reflect"

	apperrors "github.com/kbukum/scopekit/errors"
)

// Resolve resolves key from src and asserts the instance to T.
func Resolve[T any](ctx context.Context, src Source, key Key) (T, error) {
	var zero T
	v, err := src.Resolve(ctx, key)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, apperrors.TypeMismatch(string(key), typeName(reflect.TypeFor[T]()), v)
	}
	return t, nil
}

// ResolveAll resolves every implementation of key and asserts each to T.
func ResolveAll[T any](ctx context.Context, src Source, key Key) ([]T, error) {
	vs, err := src.ResolveAll(ctx, key)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(vs))
	for _, v := range vs {
		t, ok := v.(T)
		if !ok {
			return nil, apperrors.TypeMismatch(string(key), typeName(reflect.TypeFor[T]()), v)
		}
		out = append(out, t)
	}
	return out, nil
}

// MustResolve is like Resolve but panics on failure.
func MustResolve[T any](ctx context.Context, src Source, key Key) T {
	t, err := Resolve[T](ctx, src, key)
	if err != nil {
		panic(fmt.Sprintf("di: resolve %s: %v", key, err))
	}
	return t
}

// TryResolve resolves key and reports whether it succeeded.
func TryResolve[T any](ctx context.Context, src Source, key Key) (T, bool) {
	t, err := Resolve[T](ctx, src, key)
	return t, err == nil
}

// Get resolves the service registered under KeyOf[T].
func Get[T any](ctx context.Context, src Source) (T, error) {
	return Resolve[T](ctx, src, KeyOf[T]())
}

// Register adds a typed factory under key.
func Register[T any](b *Builder, key Key, lifetime Lifetime, factory func(r Resolver) (T, error), opts ...RegisterOption) error {
	reg := Registration{Key: key, Lifetime: lifetime}
	if factory != nil {
		reg.Factory = func(r Resolver) (any, error) {
			v, err := factory(r)
			if err != nil || isNilValue(v) {
				return nil, err
			}
			return v, nil
		}
	}
	for _, opt := range opts {
		opt(&reg)
	}
	return b.Add(reg)
}

// RegisterMulti adds one implementation of a multi-bound key.
func RegisterMulti[T any](b *Builder, key Key, lifetime Lifetime, factory func(r Resolver) (T, error), opts ...RegisterOption) error {
	return Register(b, key, lifetime, factory, append(opts, AsMulti())...)
}

// Provide registers factory under KeyOf[T].
func Provide[T any](b *Builder, lifetime Lifetime, factory func(r Resolver) (T, error), opts ...RegisterOption) error {
	return Register(b, KeyOf[T](), lifetime, factory, opts...)
}

// isNilValue reports whether v is nil after boxing, which catches typed nil
// pointers, maps, slices, funcs and channels returned by typed factories.
func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
