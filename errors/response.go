package errors

import (
	stderrors "errors"
)

// ErrorResponse is the JSON structure used when an error is rendered for a user,
// matching the ARM error envelope.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the rendered error details.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Status    int            `json:"status,omitempty"`
	Target    string         `json:"target,omitempty"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse converts an AppError to an ErrorResponse for JSON serialization.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:      e.Code,
			Message:   e.Message,
			Status:    e.HTTPStatus,
			Target:    e.ServerCode,
			Retryable: e.Retryable,
			Details:   e.Details,
		},
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusCode returns the HTTP status carried by an HTTP_RESPONSE error.
func StatusCode(err error) (int, bool) {
	appErr, ok := AsAppError(err)
	if !ok || appErr.Code != ErrCodeHTTPResponse {
		return 0, false
	}
	return appErr.HTTPStatus, true
}

// ServerCode returns the service error code carried by err, or "".
func ServerCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.ServerCode
	}
	return ""
}

// IsStatus reports whether err is an HTTP_RESPONSE error with the given status.
func IsStatus(err error, status int) bool {
	got, ok := StatusCode(err)
	return ok && got == status
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsRetryable reports whether err is an AppError marked retryable.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}
