package di

import (
	"time"

	"github.com/kbukum/scopekit/dag"
)

// Factory constructs a service instance. The Resolver gives access to the
// instance's dependencies in the scope it is being built for.
type Factory func(r Resolver) (any, error)

// RetryPolicy re-invokes a failing factory. The zero value makes one attempt.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	Multiplier  float64
	MaxBackoff  time.Duration
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p RetryPolicy) next(backoff time.Duration) time.Duration {
	if p.Multiplier > 1 {
		backoff = time.Duration(float64(backoff) * p.Multiplier)
	}
	if p.MaxBackoff > 0 && backoff > p.MaxBackoff {
		backoff = p.MaxBackoff
	}
	return backoff
}

// Registration is the input to Builder.Add.
type Registration struct {
	Key          Key
	Lifetime     Lifetime
	Factory      Factory
	Dependencies []Key
	// Multi marks the registration as one implementation of a multi-bound key.
	Multi bool
	Retry RetryPolicy
}

// RegisterOption adjusts a Registration built by the typed helpers.
type RegisterOption func(*Registration)

// DependsOn declares keys the factory resolves. Declared dependencies are
// built first and take part in validation.
func DependsOn(keys ...Key) RegisterOption {
	return func(r *Registration) { r.Dependencies = append(r.Dependencies, keys...) }
}

// WithRetry sets the factory retry policy.
func WithRetry(policy RetryPolicy) RegisterOption {
	return func(r *Registration) { r.Retry = policy }
}

// AsMulti marks the registration as part of a multi-binding.
func AsMulti() RegisterOption {
	return func(r *Registration) { r.Multi = true }
}

// Descriptor is a frozen registration.
type Descriptor struct {
	id       int
	index    int
	key      Key
	lifetime Lifetime
	factory  Factory
	deps     []Key
	multi    bool
	retry    RetryPolicy
	instance any // set for AddInstance
	prebuilt bool
}

// ID is the descriptor's position in the container, stable for its lifetime.
func (d *Descriptor) ID() int { return d.id }

// Key returns the contract key.
func (d *Descriptor) Key() Key { return d.key }

// Lifetime returns the lifetime.
func (d *Descriptor) Lifetime() Lifetime { return d.lifetime }

// Dependencies returns a copy of the declared dependency keys.
func (d *Descriptor) Dependencies() []Key { return append([]Key(nil), d.deps...) }

// Multi reports whether the descriptor was registered as a multi-binding.
func (d *Descriptor) Multi() bool { return d.multi }

// Index is the descriptor's position among implementations of its key.
func (d *Descriptor) Index() int { return d.index }

// Prebuilt reports whether the instance was supplied through AddInstance.
func (d *Descriptor) Prebuilt() bool { return d.prebuilt }

// DescriptorInfo is the serializable view of a Descriptor.
type DescriptorInfo struct {
	ID           int      `json:"id"`
	Key          Key      `json:"key"`
	Lifetime     Lifetime `json:"lifetime"`
	Dependencies []Key    `json:"dependencies,omitempty"`
	Multi        bool     `json:"multi,omitempty"`
	Index        int      `json:"index"`
	Prebuilt     bool     `json:"prebuilt,omitempty"`
}

// Info returns the serializable view of d.
func (d *Descriptor) Info() DescriptorInfo {
	return DescriptorInfo{
		ID:           d.id,
		Key:          d.key,
		Lifetime:     d.lifetime,
		Dependencies: d.Dependencies(),
		Multi:        d.multi,
		Index:        d.index,
		Prebuilt:     d.prebuilt,
	}
}

func (d *Descriptor) spec() dag.Spec {
	return dag.Spec{
		Key:          string(d.key),
		Lifetime:     d.lifetime,
		Dependencies: keyStrings(d.deps),
	}
}
