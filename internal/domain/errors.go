// Package domain provides the relay's error taxonomy.
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind represents the category of a relay failure.
type ErrorKind string

const (
	// KindBotProtectionDetected indicates the upstream login page answered with a
	// bot-protection challenge. Callers should fall back to an interactive login.
	KindBotProtectionDetected ErrorKind = "bot_protection_detected"

	// KindAuthenticationRejected indicates the upstream login did not answer with the
	// expected redirect (wrong credentials or upstream behavior change).
	KindAuthenticationRejected ErrorKind = "authentication_rejected"

	// KindNoCookiesReceived indicates the redirect chain completed without any cookies.
	KindNoCookiesReceived ErrorKind = "no_cookies_received"

	// KindSessionValidationFailed indicates freshly collected cookies were not accepted
	// by the profile endpoint.
	KindSessionValidationFailed ErrorKind = "session_validation_failed"

	// KindAuthenticationRequired indicates cookies are absent or expired on a protected call.
	KindAuthenticationRequired ErrorKind = "authentication_required"

	// KindIncompleteOwnerData is a soft warning: owner-only fields are missing.
	KindIncompleteOwnerData ErrorKind = "incomplete_owner_data"

	// KindResourceFetchFailed indicates every candidate endpoint failed.
	KindResourceFetchFailed ErrorKind = "resource_fetch_failed"

	// KindUpstreamUnavailable indicates a network-level failure talking to upstream.
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"

	// KindMalformedUpstreamResponse indicates a parse failure or unexpected payload shape.
	KindMalformedUpstreamResponse ErrorKind = "malformed_upstream_response"

	// KindInvalidRequest indicates the caller sent something we cannot act on.
	KindInvalidRequest ErrorKind = "invalid_request"
)

// RelayError is the error type every relay operation returns. Transport and parse
// errors are translated into one of these at the relay boundary.
type RelayError struct {
	// Kind is the category of error
	Kind ErrorKind `json:"kind"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Detail is an optional diagnostic excerpt (status codes, truncated bodies).
	// It never contains credentials.
	Detail string `json:"detail,omitempty"`

	// StatusCode is the suggested HTTP status code
	StatusCode int `json:"-"`

	// UpstreamStatus is the status the upstream answered with, when there was one.
	UpstreamStatus int `json:"-"`

	// Err is the underlying cause
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *RelayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RelayError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the appropriate HTTP status code for this error.
func (e *RelayError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}

	switch e.Kind {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindBotProtectionDetected:
		return http.StatusForbidden
	case KindAuthenticationRejected, KindSessionValidationFailed, KindAuthenticationRequired:
		return http.StatusUnauthorized
	case KindNoCookiesReceived, KindResourceFetchFailed, KindMalformedUpstreamResponse:
		return http.StatusBadGateway
	case KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case KindIncompleteOwnerData:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// NewRelayError creates a new relay error.
func NewRelayError(kind ErrorKind, message string) *RelayError {
	return &RelayError{
		Kind:    kind,
		Message: message,
	}
}

// WithDetail adds a diagnostic excerpt to the error.
func (e *RelayError) WithDetail(detail string) *RelayError {
	e.Detail = detail
	return e
}

// WithStatusCode sets a specific HTTP status code.
func (e *RelayError) WithStatusCode(code int) *RelayError {
	e.StatusCode = code
	return e
}

// WithUpstreamStatus records the upstream response status.
func (e *RelayError) WithUpstreamStatus(code int) *RelayError {
	e.UpstreamStatus = code
	return e
}

// WithCause sets the underlying error.
func (e *RelayError) WithCause(err error) *RelayError {
	e.Err = err
	return e
}

// KindOf returns the kind of err if it is (or wraps) a RelayError, or "" otherwise.
func KindOf(err error) ErrorKind {
	var relayErr *RelayError
	if errors.As(err, &relayErr) {
		return relayErr.Kind
	}
	return ""
}

// AsRelayError converts any error to a RelayError. Errors that are not already
// classified are reported as upstream unavailability, since everything below the
// relay boundary is upstream IO.
func AsRelayError(err error) *RelayError {
	var relayErr *RelayError
	if errors.As(err, &relayErr) {
		return relayErr
	}
	return ErrUpstreamUnavailable("upstream request failed").WithCause(err)
}

// Convenience constructors

// ErrBotProtection creates a bot-protection error.
func ErrBotProtection(message string) *RelayError {
	return NewRelayError(KindBotProtectionDetected, message)
}

// ErrAuthenticationRejected creates an authentication-rejected error.
func ErrAuthenticationRejected(message string) *RelayError {
	return NewRelayError(KindAuthenticationRejected, message)
}

// ErrNoCookies creates a no-cookies error.
func ErrNoCookies(message string) *RelayError {
	return NewRelayError(KindNoCookiesReceived, message)
}

// ErrSessionValidation creates a session-validation error.
func ErrSessionValidation(message string) *RelayError {
	return NewRelayError(KindSessionValidationFailed, message)
}

// ErrAuthenticationRequired creates an authentication-required error.
func ErrAuthenticationRequired(message string) *RelayError {
	return NewRelayError(KindAuthenticationRequired, message)
}

// ErrResourceFetch creates a resource-fetch error.
func ErrResourceFetch(message string) *RelayError {
	return NewRelayError(KindResourceFetchFailed, message)
}

// ErrUpstreamUnavailable creates an upstream-unavailable error.
func ErrUpstreamUnavailable(message string) *RelayError {
	return NewRelayError(KindUpstreamUnavailable, message)
}

// ErrMalformedResponse creates a malformed-response error.
func ErrMalformedResponse(message string) *RelayError {
	return NewRelayError(KindMalformedUpstreamResponse, message)
}

// ErrInvalidRequest creates an invalid-request error.
func ErrInvalidRequest(message string) *RelayError {
	return NewRelayError(KindInvalidRequest, message)
}
