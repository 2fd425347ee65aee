// Package errors provides the error type shared by every armkit client.
// Each failure carries a machine-readable code, retryable detection, and for
// rejected responses the HTTP status plus the server supplied error code.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified client error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the response status for HTTP_RESPONSE errors, 0 otherwise.
	HTTPStatus int `json:"status,omitempty"`
	// ServerCode is the error code reported by the service, if any.
	ServerCode string `json:"server_code,omitempty"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.HTTPStatus != 0 {
		msg = fmt.Sprintf("%s (HTTP %d", msg, e.HTTPStatus)
		if e.ServerCode != "" {
			msg += ", " + e.ServerCode
		}
		msg += ")"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// HTTPResponse creates the generic error for a status the operation does not accept.
func HTTPResponse(status int, serverCode, message string) *AppError {
	if message == "" {
		message = http.StatusText(status)
		if message == "" {
			message = "unexpected status"
		}
	}
	return &AppError{
		Code: ErrCodeHTTPResponse, Message: message,
		HTTPStatus: status, ServerCode: serverCode,
		Retryable: IsRetryableStatus(status),
	}
}

// Transport creates a new AppError for a request that never got a response.
func Transport(cause error) *AppError {
	return &AppError{
		Code: ErrCodeTransport, Message: "The request could not be delivered.",
		Retryable: true, Cause: cause,
	}
}

// Timeout creates a new AppError for a request that timed out.
func Timeout(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long.",
		Retryable: true, Cause: cause,
		Details: map[string]any{"operation": operation},
	}
}

// DataConversion creates a new AppError for a body that could not be decoded.
func DataConversion(model string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeDataConversion, Message: fmt.Sprintf("Failed to decode %s.", model),
		Retryable: false, Cause: cause,
		Details: map[string]any{"model": model},
	}
}

// RateLimited creates a new AppError for a call rejected by the local rate limiter.
func RateLimited(cause error) *AppError {
	return &AppError{
		Code: ErrCodeRateLimited, Message: "Too many requests.",
		Retryable: true, Cause: cause,
	}
}

// CircuitOpen creates a new AppError for a call rejected by the circuit breaker.
func CircuitOpen(endpoint string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeCircuitOpen, Message: fmt.Sprintf("Calls to %s are suspended.", endpoint),
		Retryable: false, Cause: cause,
		Details: map[string]any{"endpoint": endpoint},
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		Retryable: false,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		Retryable: false,
		Details:   map[string]any{"field": field},
	}
}

// CredentialUnavailable creates a new AppError for a failed token acquisition.
func CredentialUnavailable(credential string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeCredentialUnavailable, Message: fmt.Sprintf("%s could not acquire a token.", credential),
		Retryable: false, Cause: cause,
		Details: map[string]any{"credential": credential},
	}
}

// OperationFailed creates a new AppError for a long-running operation that failed.
func OperationFailed(serverCode, message string) *AppError {
	if message == "" {
		message = "Long running operation failed."
	}
	return &AppError{
		Code: ErrCodeOperationFailed, Message: message,
		ServerCode: serverCode, Retryable: false,
	}
}

// OperationCanceled creates a new AppError for a long-running operation that was canceled.
func OperationCanceled() *AppError {
	return &AppError{
		Code: ErrCodeOperationCanceled, Message: "Long running operation canceled.",
		Retryable: false,
	}
}

// Internal creates a new AppError for an unexpected client side error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Retryable: false, Cause: cause,
	}
}
