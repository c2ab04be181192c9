// Package errors defines the container's error taxonomy.
//
// Every failure raised by the builder, the validator and the resolver is an
// *Error carrying a machine-readable ErrorCode, the Family it belongs to,
// the contract key involved and, for factory failures, the underlying cause.
// Errors compare by code, so the standard library works as expected:
//
//	if errors.Is(err, apperrors.ErrNotRegistered) { ... }
package errors
