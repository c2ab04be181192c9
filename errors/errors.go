package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Error is the unified container error type.
type Error struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Family is the phase that raised the error.
	Family Family `json:"family"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Key is the contract key involved, if any.
	Key string `json:"key,omitempty"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same code. When target
// names a key, the keys must match too.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.Key == "" || t.Key == e.Key
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an Error with its family and retryable flag derived from code.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:      code,
		Family:    FamilyOf(code),
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

func newKeyed(code ErrorCode, key, message string) *Error {
	e := New(code, message)
	e.Key = key
	return e
}

// Sentinels for errors.Is comparisons. They match any error with the same
// code and must not be modified.
var (
	ErrContainerFrozen       = New(ErrCodeContainerFrozen, "container is frozen")
	ErrDuplicateRegistration = New(ErrCodeDuplicateRegistration, "duplicate registration")
	ErrMissingFactory        = New(ErrCodeMissingFactory, "missing factory")
	ErrInvalidRegistration   = New(ErrCodeInvalidRegistration, "invalid registration")
	ErrCycleDetected         = New(ErrCodeCycleDetected, "dependency cycle detected")
	ErrCaptiveDependency     = New(ErrCodeCaptiveDependency, "captive dependency")
	ErrUnresolvedDependency  = New(ErrCodeUnresolvedDependency, "unresolved dependency")
	ErrNotRegistered         = New(ErrCodeNotRegistered, "service not registered")
	ErrAmbiguousRegistration = New(ErrCodeAmbiguousRegistration, "ambiguous registration")
	ErrConstructionFailed    = New(ErrCodeConstructionFailed, "construction failed")
	ErrCircularDependency    = New(ErrCodeCircularDependency, "circular dependency")
	ErrScopeDisposed         = New(ErrCodeScopeDisposed, "scope disposed")
	ErrScopedFromRoot        = New(ErrCodeScopedFromRoot, "scoped service resolved from root")
	ErrCanceled              = New(ErrCodeCanceled, "resolution canceled")
	ErrTypeMismatch          = New(ErrCodeTypeMismatch, "type mismatch")
	ErrInvalidConfig         = New(ErrCodeInvalidConfig, "invalid configuration")
)

// --- Registration ---

// ContainerFrozen creates an Error for a registration attempted after Build.
func ContainerFrozen(key string) *Error {
	if key == "" {
		return New(ErrCodeContainerFrozen, "container has already been built")
	}
	return newKeyed(ErrCodeContainerFrozen, key,
		fmt.Sprintf("cannot register %q: container has already been built", key))
}

// DuplicateRegistration creates an Error for a single-valued key registered more than once.
func DuplicateRegistration(key string, count int) *Error {
	return newKeyed(ErrCodeDuplicateRegistration, key,
		fmt.Sprintf("%q is registered %d times; use AddMulti for multi-binding or enable overrides", key, count)).
		WithDetail("count", count)
}

// MissingFactory creates an Error for a descriptor registered without a factory.
func MissingFactory(key string) *Error {
	return newKeyed(ErrCodeMissingFactory, key, fmt.Sprintf("%q has no factory", key))
}

// InvalidRegistration creates an Error for a malformed descriptor.
func InvalidRegistration(key, reason string) *Error {
	return newKeyed(ErrCodeInvalidRegistration, key, fmt.Sprintf("invalid registration %q: %s", key, reason)).
		WithDetail("reason", reason)
}

// --- Validation ---

// CycleDetected creates an Error for a dependency cycle. Path starts and ends
// with the same key.
func CycleDetected(path []string) *Error {
	key := ""
	if len(path) > 0 {
		key = path[0]
	}
	return newKeyed(ErrCodeCycleDetected, key, "dependency cycle: "+strings.Join(path, " -> ")).
		WithDetail("path", path)
}

// CaptiveDependency creates an Error for a singleton that captures a scoped service.
func CaptiveDependency(root, consumer, dependency string, path []string) *Error {
	return newKeyed(ErrCodeCaptiveDependency, root,
		fmt.Sprintf("singleton %q captures scoped %q via %s", root, dependency, strings.Join(path, " -> "))).
		WithDetails(map[string]any{"consumer": consumer, "dependency": dependency, "path": path})
}

// UnresolvedDependency creates an Error for a dependency on an unregistered key.
func UnresolvedDependency(consumer, dependency string) *Error {
	return newKeyed(ErrCodeUnresolvedDependency, consumer,
		fmt.Sprintf("%q depends on unregistered %q", consumer, dependency)).
		WithDetail("dependency", dependency)
}

// --- Resolution ---

// NotRegistered creates an Error for an unknown key.
func NotRegistered(key string) *Error {
	return newKeyed(ErrCodeNotRegistered, key, fmt.Sprintf("no service registered for %q", key))
}

// AmbiguousRegistration creates an Error for a single-valued resolve of a
// key with several implementations.
func AmbiguousRegistration(key string, count int) *Error {
	return newKeyed(ErrCodeAmbiguousRegistration, key,
		fmt.Sprintf("%q has %d registrations; resolve it as a collection", key, count)).
		WithDetail("count", count)
}

// ConstructionFailed creates an Error wrapping a factory failure.
func ConstructionFailed(key string, cause error) *Error {
	return newKeyed(ErrCodeConstructionFailed, key, fmt.Sprintf("failed to construct %q", key)).
		WithCause(cause)
}

// CircularDependency creates an Error for a cycle met while resolving.
// Chain is the in-progress chain including the repeated key.
func CircularDependency(chain []string) *Error {
	key := ""
	if len(chain) > 0 {
		key = chain[len(chain)-1]
	}
	return newKeyed(ErrCodeCircularDependency, key, "circular dependency: "+strings.Join(chain, " -> ")).
		WithDetail("chain", chain)
}

// ScopeDisposed creates an Error for a resolve against a disposed scope.
func ScopeDisposed(scopeID string) *Error {
	return New(ErrCodeScopeDisposed, fmt.Sprintf("scope %s has been disposed", scopeID)).
		WithDetail("scope_id", scopeID)
}

// ContainerDisposed creates an Error for a resolve against a disposed container.
func ContainerDisposed() *Error {
	return New(ErrCodeScopeDisposed, "container has been disposed").
		WithDetail("scope_id", "root")
}

// ScopedFromRoot creates an Error for a scoped service requested without a scope.
func ScopedFromRoot(key string) *Error {
	return newKeyed(ErrCodeScopedFromRoot, key,
		fmt.Sprintf("%q is scoped and cannot be resolved from the root container", key))
}

// Canceled creates an Error for a resolution abandoned because ctx ended.
func Canceled(key string, cause error) *Error {
	return newKeyed(ErrCodeCanceled, key, fmt.Sprintf("resolution of %q canceled", key)).
		WithCause(cause)
}

// TypeMismatch creates an Error for an instance of an unexpected type.
func TypeMismatch(key, want string, got any) *Error {
	return newKeyed(ErrCodeTypeMismatch, key,
		fmt.Sprintf("%q resolved to %T, want %s", key, got, want)).
		WithDetails(map[string]any{"want": want, "got": fmt.Sprintf("%T", got)})
}

// --- Configuration ---

// InvalidConfig creates an Error for configuration that failed validation.
func InvalidConfig(message string) *Error {
	return New(ErrCodeInvalidConfig, message)
}

// --- Inspection ---

// AsError extracts the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// IsRegistration reports whether err carries a registration error.
func IsRegistration(err error) bool { return hasFamily(err, FamilyRegistration) }

// IsValidation reports whether err carries a validation error.
func IsValidation(err error) bool { return hasFamily(err, FamilyValidation) }

// IsResolution reports whether err carries a resolution error.
func IsResolution(err error) bool { return hasFamily(err, FamilyResolution) }

// IsRetryable reports whether err is an *Error marked retryable.
func IsRetryable(err error) bool {
	e, ok := AsError(err)
	return ok && e.Retryable
}

func hasFamily(err error, family Family) bool {
	e, ok := AsError(err)
	return ok && e.Family == family
}
