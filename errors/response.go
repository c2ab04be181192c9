package errors

import "net/http"

// ErrorResponse is the JSON structure returned to clients following RFC 7807.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the error details sent to clients.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Family    Family         `json:"family,omitempty"`
	Message   string         `json:"message"`
	Key       string         `json:"key,omitempty"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse converts an Error to an ErrorResponse for JSON serialization.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:      e.Code,
			Family:    e.Family,
			Message:   e.Message,
			Key:       e.Key,
			Retryable: e.Retryable,
			Details:   e.Details,
		},
	}
}

// HTTPStatus returns the recommended HTTP status for code.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotRegistered:
		return http.StatusNotFound
	case ErrCodeInvalidRegistration, ErrCodeMissingFactory, ErrCodeScopedFromRoot, ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case ErrCodeContainerFrozen, ErrCodeDuplicateRegistration, ErrCodeAmbiguousRegistration,
		ErrCodeCycleDetected, ErrCodeCaptiveDependency, ErrCodeUnresolvedDependency, ErrCodeCircularDependency:
		return http.StatusConflict
	case ErrCodeScopeDisposed:
		return http.StatusGone
	case ErrCodeCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
