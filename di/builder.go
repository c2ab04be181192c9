package di

import (
	"context"
	"errors"
	"sync"

	"github.com/kbukum/scopekit/dag"
	apperrors "github.com/kbukum/scopekit/errors"
	"github.com/kbukum/scopekit/logger"
)

// Builder collects registrations and freezes them into a Container.
// A Builder is safe for concurrent use until Build is called.
type Builder struct {
	mu     sync.Mutex
	regs   []*Descriptor
	roots  []Key
	frozen bool
	opts   options
}

// NewBuilder creates an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get("di")
	}
	return &Builder{opts: o}
}

// Add appends a registration. Defects such as a missing factory or a
// duplicate single-valued key are reported by Build, not here.
func (b *Builder) Add(reg Registration) error {
	return b.add(&Descriptor{
		key:      reg.Key,
		lifetime: reg.Lifetime,
		factory:  reg.Factory,
		deps:     append([]Key(nil), reg.Dependencies...),
		multi:    reg.Multi,
		retry:    reg.Retry,
	})
}

// AddMulti appends one implementation of a multi-bound key.
func (b *Builder) AddMulti(reg Registration) error {
	reg.Multi = true
	return b.Add(reg)
}

// AddInstance registers an already constructed singleton. The container
// never disposes instances it did not construct.
func (b *Builder) AddInstance(key Key, instance any) error {
	d := &Descriptor{key: key, lifetime: Singleton, instance: instance, prebuilt: true}
	d.factory = func(Resolver) (any, error) { return d.instance, nil }
	return b.add(d)
}

func (b *Builder) add(d *Descriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frozen {
		return apperrors.ContainerFrozen(string(d.key))
	}
	b.regs = append(b.regs, d)
	return nil
}

// Root declares keys the host resolves directly. Roots seed the unused
// service analysis; without roots nothing is reported as unused.
func (b *Builder) Root(keys ...Key) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frozen {
		key := ""
		if len(keys) > 0 {
			key = string(keys[0])
		}
		return apperrors.ContainerFrozen(key)
	}
	b.roots = append(b.roots, keys...)
	return nil
}

// Len returns the number of registrations added so far.
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.regs)
}

// Build freezes the builder and returns the container. Every registration
// defect is reported, joined into one error. The builder stays frozen even
// when Build fails.
func (b *Builder) Build() (*Container, error) {
	b.mu.Lock()
	if b.frozen {
		b.mu.Unlock()
		return nil, apperrors.ContainerFrozen("")
	}
	b.frozen = true
	regs := b.regs
	roots := append([]Key(nil), b.roots...)
	b.mu.Unlock()

	if b.opts.configErr != nil {
		return nil, b.opts.configErr
	}

	descs, err := b.check(regs)
	if err != nil {
		return nil, err
	}

	c := newContainer(b.opts, descs, roots)
	c.logger.Info("container built", logger.Fields(
		logger.FieldCount, len(descs),
		"contracts", len(c.keys),
		"roots", len(roots),
	))

	if b.opts.validateOnBuild {
		report := c.Validate()
		if err := report.Err(); err != nil {
			return nil, err
		}
		if len(report.UnusedServices) > 0 {
			c.logger.Info("unused services", logger.Fields("keys", report.UnusedServices))
		}
	}

	if b.opts.warmOnBuild {
		if err := c.Warm(context.Background()); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// check validates registrations and applies the override policy.
func (b *Builder) check(regs []*Descriptor) ([]*Descriptor, error) {
	var errs []error

	byKey := make(map[Key][]int)
	var order []Key
	for i, d := range regs {
		if d.key == "" {
			errs = append(errs, apperrors.InvalidRegistration("", "empty key"))
			continue
		}
		if !d.lifetime.Valid() {
			errs = append(errs, apperrors.InvalidRegistration(string(d.key), "unknown lifetime "+d.lifetime.String()))
		}
		if d.factory == nil {
			errs = append(errs, apperrors.MissingFactory(string(d.key)))
		}
		if d.prebuilt && d.instance == nil {
			errs = append(errs, apperrors.InvalidRegistration(string(d.key), "nil instance"))
		}
		for _, dep := range d.deps {
			if dep == "" {
				errs = append(errs, apperrors.InvalidRegistration(string(d.key), "empty dependency key"))
			}
		}
		if _, seen := byKey[d.key]; !seen {
			order = append(order, d.key)
		}
		byKey[d.key] = append(byKey[d.key], i)
	}

	keep := make([]bool, len(regs))
	for _, key := range order {
		ids := byKey[key]
		if len(ids) == 1 || allMulti(regs, ids) {
			for _, id := range ids {
				keep[id] = true
			}
			continue
		}
		if !b.opts.allowOverrides {
			errs = append(errs, apperrors.DuplicateRegistration(string(key), len(ids)))
			continue
		}
		last := ids[len(ids)-1]
		keep[last] = true
		b.opts.log.Warn("registration overridden", logger.Fields(
			logger.FieldContract, string(key),
			logger.FieldCount, len(ids)-1,
		))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	descs := make([]*Descriptor, 0, len(regs))
	indexes := make(map[Key]int)
	for i, d := range regs {
		if !keep[i] {
			continue
		}
		d.id = len(descs)
		d.index = indexes[d.key]
		indexes[d.key]++
		descs = append(descs, d)
	}
	return descs, nil
}

func allMulti(regs []*Descriptor, ids []int) bool {
	for _, id := range ids {
		if !regs[id].multi {
			return false
		}
	}
	return true
}

func specsOf(descs []*Descriptor) []dag.Spec {
	specs := make([]dag.Spec, len(descs))
	for i, d := range descs {
		specs[i] = d.spec()
	}
	return specs
}
