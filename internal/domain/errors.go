package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindInvalidInput      ErrorKind = "invalid_input"
	KindConfigMissing     ErrorKind = "config_missing"
	KindAuthFailed        ErrorKind = "auth_failed"
	KindRequestFailed     ErrorKind = "request_failed"
	KindUpstreamError     ErrorKind = "upstream_error"
	KindNetworkError      ErrorKind = "network_error"
	KindCharacterNotFound ErrorKind = "character_not_found"
	KindZoneNotFound      ErrorKind = "zone_not_found"
	KindCacheReadFailed   ErrorKind = "cache_read_failed"
	KindCacheWriteFailed  ErrorKind = "cache_write_failed"

	// response-level kinds produced by the services
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindBadGateway         ErrorKind = "bad_gateway"
	KindNotFound           ErrorKind = "not_found"
	KindInternal           ErrorKind = "internal"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}

// MessageOf returns the user-facing message of the first *Error in err's
// chain, falling back to err.Error().
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
