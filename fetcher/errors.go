package fetcher

import (
	"errors"
	"fmt"
)

const (
	// ErrNetwork means the transport failed or the identity service answered with a non-2xx status.
	ErrNetwork = "network_error"
	// ErrEmptyResponse means the identity service answered with an empty body.
	ErrEmptyResponse = "empty_response"
	// ErrMalformedResponse means the body is not the expected JSON document.
	ErrMalformedResponse = "malformed_response"
	// ErrMissingUid means the generic response carries no universal_uid.
	ErrMissingUid = "missing_uid"
	// ErrConsentUnavailable means consent data did not arrive before the context was done.
	ErrConsentUnavailable = "consent_unavailable"
	// ErrBadRequest means the request could not be built.
	ErrBadRequest = "bad_request"
)

// FetchError is the error returned by UidFetcher.FetchId.
type FetchError struct {
	// Code is a machine-readable code.
	Code string `json:"code,omitempty"`
	// Message is a human-readable message, used as the cancel reason delivered to followers.
	Message string `json:"message"`
	// Inner is the wrapped cause.
	Inner error `json:"-"`
}

func NewFetchError(code string, message string, inner error) *FetchError {
	return &FetchError{Code: code, Message: message, Inner: inner}
}

func (e FetchError) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("%s %s: %v", e.Code, e.Message, e.Inner)
	}
	return fmt.Sprintf("%s %s", e.Code, e.Message)
}

// Unwrap the error returning the error's reason.
func (e FetchError) Unwrap() error {
	return e.Inner
}

// ToFetchError returns err as a *FetchError, or nil.
func ToFetchError(err error) *FetchError {
	var e *FetchError
	if errors.As(err, &e) {
		return e
	}
	return nil
}

func IsFetchError(err error, code string) bool {
	e := ToFetchError(err)
	return e != nil && e.Code == code
}

func IsNetworkError(err error) bool           { return IsFetchError(err, ErrNetwork) }
func IsEmptyResponseError(err error) bool     { return IsFetchError(err, ErrEmptyResponse) }
func IsMalformedResponseError(err error) bool { return IsFetchError(err, ErrMalformedResponse) }
func IsMissingUidError(err error) bool        { return IsFetchError(err, ErrMissingUid) }
