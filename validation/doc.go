// Package validation checks configuration and manifest input.
//
// Struct tag validation uses go-playground/validator with field names taken
// from mapstructure or yaml tags, so messages name the keys a user wrote:
//
//	type ContainerConfig struct {
//	    CaptivePolicy string `mapstructure:"captive_policy" validate:"omitempty,captive_policy"`
//	}
//	err := validation.Validate(cfg) // container.captive_policy: must be strict or direct
//
// The Validator type collects programmatic checks that tags cannot express.
// Both return an *errors.Error with code INVALID_CONFIG and the failing
// fields under Details["fields"].
package validation
