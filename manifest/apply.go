package manifest

import (
	"errors"

	"github.com/kbukum/scopekit/di"
	apperrors "github.com/kbukum/scopekit/errors"
	"github.com/kbukum/scopekit/logger"
)

// Apply adds every service of m to b, taking factories from reg. m should
// already be flattened. Services whose factory is not registered are
// reported together as MISSING_FACTORY errors and nothing is added.
func Apply(b *di.Builder, m *Manifest, reg *Registry) error {
	regs := make([]di.Registration, 0, len(m.Services))
	var errs []error
	for _, s := range m.Services {
		lifetime, err := di.ParseLifetime(s.Lifetime)
		if err != nil {
			errs = append(errs, apperrors.InvalidRegistration(s.Key, err.Error()))
			continue
		}
		factory, ok := reg.Get(s.FactoryName())
		if !ok {
			errs = append(errs, apperrors.MissingFactory(s.Key).WithDetail("factory", s.FactoryName()))
			continue
		}
		deps := make([]di.Key, len(s.DependsOn))
		for i, d := range s.DependsOn {
			deps[i] = di.Key(d)
		}
		regs = append(regs, di.Registration{
			Key:          di.Key(s.Key),
			Lifetime:     lifetime,
			Factory:      factory,
			Dependencies: deps,
			Multi:        s.Multi,
		})
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for _, r := range regs {
		if err := b.Add(r); err != nil {
			return err
		}
	}
	roots := make([]di.Key, 0, len(m.RootKeys()))
	for _, k := range m.RootKeys() {
		roots = append(roots, di.Key(k))
	}
	if len(roots) > 0 {
		return b.Root(roots...)
	}
	return nil
}

// Check reports the registration defects of m that a Builder would reject,
// such as a single-valued key declared twice. Services are applied with
// stub factories; nothing is constructed.
func Check(m *Manifest) []*apperrors.Error {
	reg := NewRegistry()
	for _, s := range m.Services {
		reg.Register(s.FactoryName(), stubFactory)
	}
	b := di.NewBuilder(di.WithLogger(logger.Nop()))
	err := Apply(b, m, reg)
	if err == nil {
		_, err = b.Build()
	}
	if err == nil {
		return nil
	}

	parts := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		parts = joined.Unwrap()
	}
	out := make([]*apperrors.Error, 0, len(parts))
	for _, part := range parts {
		if e, ok := apperrors.AsError(part); ok {
			out = append(out, e)
			continue
		}
		out = append(out, apperrors.InvalidRegistration("", part.Error()))
	}
	return out
}

func stubFactory(di.Resolver) (any, error) { return struct{}{}, nil }
