package grant

import (
	"fmt"

	oautherrors "github.com/go-oauth2/oauth2/v4/errors"
)

// ErrorKind is a closed enumeration of the RFC 6749 error kinds this engine
// can return. No other kind ever crosses the Engine boundary.
type ErrorKind string

const (
	AccessDenied            ErrorKind = "access_denied"
	InvalidClient           ErrorKind = "invalid_client"
	InvalidGrant            ErrorKind = "invalid_grant"
	InvalidRequest          ErrorKind = "invalid_request"
	InvalidAuthorization    ErrorKind = "invalid_authorization"
	InvalidScope            ErrorKind = "invalid_scope"
	UnauthorizedClient      ErrorKind = "unauthorized_client"
	UnsupportedResponseType ErrorKind = "unsupported_response_type"
	ServerError             ErrorKind = "server_error"
	TemporarilyUnavailable  ErrorKind = "temporarily_unavailable"
)

// sentinels maps each RFC-standard ErrorKind onto the equivalent exported
// sentinel from github.com/go-oauth2/oauth2/v4/errors, so that an Error's
// Unwrap() target is a value callers already coded against that ecosystem
// may recognize with errors.Is. InvalidAuthorization has no RFC counterpart
// (it is this engine's own invariant-violation kind) and is deliberately
// absent.
var sentinels = map[ErrorKind]error{
	AccessDenied:            oautherrors.ErrAccessDenied,
	InvalidClient:           oautherrors.ErrInvalidClient,
	InvalidGrant:            oautherrors.ErrInvalidGrant,
	InvalidRequest:          oautherrors.ErrInvalidRequest,
	InvalidScope:            oautherrors.ErrInvalidScope,
	UnauthorizedClient:      oautherrors.ErrUnauthorizedClient,
	UnsupportedResponseType: oautherrors.ErrUnsupportedResponseType,
	ServerError:             oautherrors.ErrServerError,
	TemporarilyUnavailable:  oautherrors.ErrTemporarilyUnavailable,
}

// Error is the concrete error type every Engine method returns on failure.
// It carries an RFC error kind plus, for server_error raised from a failed
// TokenGenerator or Backend associate call or a Backend contract violation,
// the underlying cause wrapped with %w so errors.Is/errors.As can still
// reach it.
type Error struct {
	Kind  ErrorKind
	cause error
}

// newError constructs an Error of the given kind with no underlying cause.
func newError(kind ErrorKind) *Error {
	return &Error{Kind: kind}
}

// wrapError constructs a server_error-kinded Error around cause: a failed
// TokenGenerator or Backend associate call during issuance, or a Backend
// contract violation such as a malformed resolved GrantContext.
func wrapError(cause error) *Error {
	return &Error{Kind: ServerError, cause: fmt.Errorf("grant: %w", cause)}
}

// Error implements the standard error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.cause.Error())
	}
	return string(e.Kind)
}

// Unwrap allows errors.Is/errors.As to match the underlying cause when the
// Error wraps one (server_error from wrapError), and otherwise the RFC
// sentinel for the error's kind.
func (e *Error) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	return sentinels[e.Kind]
}

// errMissingResourceOwner is a Backend contract violation: a resolved
// refresh-token GrantContext with no bound resource owner.
var errMissingResourceOwner = fmt.Errorf("grant: resolved refresh token GrantContext has no resource_owner")

// fail builds a *Error of the given kind and records it against the
// engine's error-kind metric, if one is attached.
func (e *Engine) fail(kind ErrorKind) *Error {
	err := newError(kind)
	e.metrics.recordError(kind)
	return err
}

// failWrap builds a server_error-kinded *Error around cause and records it
// against the engine's error-kind metric, if one is attached.
func (e *Engine) failWrap(cause error) *Error {
	err := wrapError(cause)
	e.metrics.recordError(err.Kind)
	return err
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if ge, ok := err.(*Error); ok {
		e = ge
	} else {
		return false
	}
	return e.Kind == kind
}
