package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Family groups codes by the phase that raises them.
type Family string

const (
	// FamilyRegistration errors surface from Builder.Build and are fatal to startup.
	FamilyRegistration Family = "registration"
	// FamilyValidation errors are produced by graph analysis and reported, never thrown.
	FamilyValidation Family = "validation"
	// FamilyResolution errors are returned per Resolve call.
	FamilyResolution Family = "resolution"
	// FamilyConfig errors come from configuration loading and checking.
	FamilyConfig Family = "config"
)

// Registration errors
const (
	// ErrCodeContainerFrozen indicates a registration after Build.
	ErrCodeContainerFrozen ErrorCode = "CONTAINER_FROZEN"
	// ErrCodeDuplicateRegistration indicates a single-valued key registered twice.
	ErrCodeDuplicateRegistration ErrorCode = "DUPLICATE_REGISTRATION"
	// ErrCodeMissingFactory indicates a descriptor without a factory.
	ErrCodeMissingFactory ErrorCode = "MISSING_FACTORY"
	// ErrCodeInvalidRegistration indicates a malformed descriptor.
	ErrCodeInvalidRegistration ErrorCode = "INVALID_REGISTRATION"
)

// Validation errors
const (
	// ErrCodeCycleDetected indicates a dependency cycle in the graph.
	ErrCodeCycleDetected ErrorCode = "CYCLE_DETECTED"
	// ErrCodeCaptiveDependency indicates a singleton holding a scoped service.
	ErrCodeCaptiveDependency ErrorCode = "CAPTIVE_DEPENDENCY"
	// ErrCodeUnresolvedDependency indicates a dependency on an unregistered key.
	ErrCodeUnresolvedDependency ErrorCode = "UNRESOLVED_DEPENDENCY"
)

// Resolution errors
const (
	// ErrCodeNotRegistered indicates the requested key has no descriptor.
	ErrCodeNotRegistered ErrorCode = "NOT_REGISTERED"
	// ErrCodeAmbiguousRegistration indicates a single resolve of a multi-bound key.
	ErrCodeAmbiguousRegistration ErrorCode = "AMBIGUOUS_REGISTRATION"
	// ErrCodeConstructionFailed indicates the factory returned an error or panicked.
	ErrCodeConstructionFailed ErrorCode = "CONSTRUCTION_FAILED"
	// ErrCodeCircularDependency indicates a cycle met during resolution.
	ErrCodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"
	// ErrCodeScopeDisposed indicates a resolve against a disposed scope or container.
	ErrCodeScopeDisposed ErrorCode = "SCOPE_DISPOSED"
	// ErrCodeScopedFromRoot indicates a scoped service requested without a scope.
	ErrCodeScopedFromRoot ErrorCode = "SCOPED_FROM_ROOT"
	// ErrCodeCanceled indicates the caller's context ended before construction.
	ErrCodeCanceled ErrorCode = "CANCELED"
	// ErrCodeTypeMismatch indicates an instance not assignable to the requested type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
)

// Configuration errors
const (
	// ErrCodeInvalidConfig indicates configuration that failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

var codeFamilies = map[ErrorCode]Family{
	ErrCodeContainerFrozen:       FamilyRegistration,
	ErrCodeDuplicateRegistration: FamilyRegistration,
	ErrCodeMissingFactory:        FamilyRegistration,
	ErrCodeInvalidRegistration:   FamilyRegistration,
	ErrCodeCycleDetected:         FamilyValidation,
	ErrCodeCaptiveDependency:     FamilyValidation,
	ErrCodeUnresolvedDependency:  FamilyValidation,
	ErrCodeNotRegistered:         FamilyResolution,
	ErrCodeAmbiguousRegistration: FamilyResolution,
	ErrCodeConstructionFailed:    FamilyResolution,
	ErrCodeCircularDependency:    FamilyResolution,
	ErrCodeScopeDisposed:         FamilyResolution,
	ErrCodeScopedFromRoot:        FamilyResolution,
	ErrCodeCanceled:              FamilyResolution,
	ErrCodeTypeMismatch:          FamilyResolution,
	ErrCodeInvalidConfig:         FamilyConfig,
}

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConstructionFailed: true,
	ErrCodeCanceled:           true,
}

// FamilyOf returns the family a code belongs to, or "" for unknown codes.
func FamilyOf(code ErrorCode) Family {
	return codeFamilies[code]
}

// IsRetryableCode returns true if the error code indicates a retryable error.
// A failed construction leaves no cached state behind, so it may be retried.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
