package errors

import "net/http"

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Response errors
const (
	// ErrCodeHTTPResponse indicates the service answered with a status the
	// operation does not accept.
	ErrCodeHTTPResponse ErrorCode = "HTTP_RESPONSE"
	// ErrCodeDataConversion indicates a response body could not be decoded
	// into the expected model.
	ErrCodeDataConversion ErrorCode = "DATA_CONVERSION"
)

// Connection/Availability errors (retryable)
const (
	// ErrCodeTransport indicates the request never produced a response.
	ErrCodeTransport ErrorCode = "TRANSPORT_FAILURE"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates the client side rate limiter rejected the call.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
	// ErrCodeCircuitOpen indicates the circuit breaker is open for the endpoint.
	ErrCodeCircuitOpen ErrorCode = "CIRCUIT_OPEN"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Authentication errors
const (
	// ErrCodeCredentialUnavailable indicates no access token could be acquired.
	ErrCodeCredentialUnavailable ErrorCode = "CREDENTIAL_UNAVAILABLE"
)

// Long-running operation errors
const (
	// ErrCodeOperationFailed indicates a long-running operation ended in Failed.
	ErrCodeOperationFailed ErrorCode = "LRO_FAILED"
	// ErrCodeOperationCanceled indicates a long-running operation ended in Canceled.
	ErrCodeOperationCanceled ErrorCode = "LRO_CANCELED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected client side error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTransport:   true,
	ErrCodeTimeout:     true,
	ErrCodeRateLimited: true,
	ErrCodeInternal:    false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

var retryableStatuses = map[int]bool{
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// IsRetryableStatus reports whether a response status is worth another attempt.
func IsRetryableStatus(status int) bool {
	return retryableStatuses[status]
}
