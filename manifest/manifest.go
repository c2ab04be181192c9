package manifest

import (
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/scopekit/dag"
	"github.com/kbukum/scopekit/validation"
)

// Manifest is a YAML-defined set of registrations.
type Manifest struct {
	// Name identifies the manifest for includes.
	Name string `yaml:"name" validate:"required"`
	// Includes lists manifest names whose services come first.
	Includes []string `yaml:"includes,omitempty"`
	// Roots are keys the host resolves directly, in addition to services
	// flagged with root.
	Roots    []string  `yaml:"roots,omitempty"`
	Services []Service `yaml:"services" validate:"dive"`
}

// Service is a single registration.
type Service struct {
	Key      string `yaml:"key" validate:"required"`
	Lifetime string `yaml:"lifetime" validate:"required,lifetime"`
	// Factory is the registry name of the factory. Defaults to Key.
	Factory   string   `yaml:"factory,omitempty"`
	DependsOn []string `yaml:"depends_on,omitempty"`
	Multi     bool     `yaml:"multi,omitempty"`
	Root      bool     `yaml:"root,omitempty"`
}

// FactoryName returns the registry name used to build the service.
func (s Service) FactoryName() string {
	if s.Factory != "" {
		return s.Factory
	}
	return s.Key
}

// Parse decodes and validates a manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parsing: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks required fields and lifetimes.
func (m *Manifest) Validate() error {
	return validation.Validate(m)
}

// RootKeys returns the declared roots followed by services flagged as roots.
func (m *Manifest) RootKeys() []string {
	roots := append([]string(nil), m.Roots...)
	for _, s := range m.Services {
		if s.Root {
			roots = append(roots, s.Key)
		}
	}
	return roots
}

// Specs converts the services into graph input, in declaration order.
func (m *Manifest) Specs() ([]dag.Spec, error) {
	specs := make([]dag.Spec, 0, len(m.Services))
	for _, s := range m.Services {
		lifetime, err := dag.ParseLifetime(s.Lifetime)
		if err != nil {
			return nil, fmt.Errorf("manifest: service %q: %w", s.Key, err)
		}
		specs = append(specs, dag.Spec{
			Key:          s.Key,
			Lifetime:     lifetime,
			Dependencies: append([]string(nil), s.DependsOn...),
		})
	}
	return specs, nil
}

// Graph builds the dependency graph of the manifest.
func (m *Manifest) Graph() (*dag.Graph, error) {
	specs, err := m.Specs()
	if err != nil {
		return nil, err
	}
	return dag.Build(specs, m.RootKeys()), nil
}
