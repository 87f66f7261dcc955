package handlers

import (
	"errors"
	"fmt"
)

const (
	// ErrInternalServerError means that an internal server error has occurred.
	ErrInternalServerError = "internal_server_error"
	// ErrBadParameter means that provided parameter does not match declared.
	ErrBadParameter = "bad_parameter"
	// ErrEntityNotFound means that the requested extension is not served.
	ErrEntityNotFound = "entity_not_found"
)

// ServiceError is an error answered by the identity service stub.
type ServiceError struct {
	// Code is a machine-readable code.
	Code string `json:"code,omitempty"`
	// Message is a human-readable message.
	Message string `json:"message"`
	// Inner is never shown to API consumers.
	Inner error `json:"-"`
}

func NewServiceError(code string, message string, inner error) *ServiceError {
	return &ServiceError{Code: code, Message: message, Inner: inner}
}

func NewBadParameterError(message string, inner error) *ServiceError {
	if e := ToServiceError(inner); e != nil {
		return e
	}
	return NewServiceError(ErrBadParameter, message, inner)
}

func NewEntityNotFoundError(message string, inner error) *ServiceError {
	if e := ToServiceError(inner); e != nil {
		return e
	}
	return NewServiceError(ErrEntityNotFound, message, inner)
}

func (e ServiceError) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("%s %s: %v", e.Code, e.Message, e.Inner)
	}
	return fmt.Sprintf("%s %s", e.Code, e.Message)
}

func (e ServiceError) Unwrap() error {
	return e.Inner
}

// ToServiceError returns the ServiceError in err's chain, or nil.
func ToServiceError(err error) *ServiceError {
	var e *ServiceError
	if errors.As(err, &e) {
		return e
	}
	return nil
}

func IsServiceError(err error, code string) bool {
	e := ToServiceError(err)
	return e != nil && e.Code == code
}
