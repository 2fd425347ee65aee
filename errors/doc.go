// Package errors provides the error type shared by every armkit client.
// It implements structured errors with codes, retryable detection and, for
// rejected responses, the HTTP status and service error code.
package errors
