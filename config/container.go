package config

import (
	"time"

	"github.com/kbukum/scopekit/validation"
)

// DefaultDisposeTimeout bounds container disposal during shutdown.
const DefaultDisposeTimeout = 30 * time.Second

// ContainerConfig contains container behavior settings.
type ContainerConfig struct {
	// AllowOverrides lets a later single-valued registration replace an earlier one.
	AllowOverrides bool `yaml:"allow_overrides" mapstructure:"allow_overrides"`
	// ValidateOnBuild makes Build fail when the validation report has errors.
	ValidateOnBuild bool `yaml:"validate_on_build" mapstructure:"validate_on_build"`
	// CaptivePolicy is "strict" (default) or "direct".
	CaptivePolicy string `yaml:"captive_policy" mapstructure:"captive_policy" validate:"omitempty,captive_policy"`
	// DisableResolutionLog turns off the in-memory resolution log.
	DisableResolutionLog bool `yaml:"disable_resolution_log" mapstructure:"disable_resolution_log"`
	// WarmOnBuild constructs every singleton right after Build.
	WarmOnBuild bool `yaml:"warm_on_build" mapstructure:"warm_on_build"`
	// MaxParallelWarm bounds concurrent singleton construction during warm-up (0 = unlimited).
	MaxParallelWarm int `yaml:"max_parallel_warm" mapstructure:"max_parallel_warm" validate:"gte=0"`
	// DisposeTimeout bounds Dispose when the caller's context has no deadline.
	DisposeTimeout time.Duration `yaml:"dispose_timeout" mapstructure:"dispose_timeout" validate:"gte=0"`
}

// ApplyDefaults applies default values to container configuration.
func (c *ContainerConfig) ApplyDefaults() {
	if c.CaptivePolicy == "" {
		c.CaptivePolicy = "strict"
	}
	if c.DisposeTimeout == 0 {
		c.DisposeTimeout = DefaultDisposeTimeout
	}
}

// Validate validates container configuration.
func (c *ContainerConfig) Validate() error {
	return validation.Validate(c)
}
