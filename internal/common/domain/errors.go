// Package domain holds the error vocabulary shared by every layer of the service.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors classify a DomainError. Match them with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// DomainError carries a machine-readable code, a human message and the sentinel it belongs to.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the sentinel so errors.Is works through DomainError.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewValidationError reports invalid input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Code: "VALIDATION_ERROR", Message: message, Err: ErrValidation}
}

// NewUnauthorizedError reports a missing or invalid identity.
func NewUnauthorizedError(message string) *DomainError {
	return &DomainError{Code: "UNAUTHORIZED", Message: message, Err: ErrUnauthorized}
}

// NewForbiddenError reports an identity without the required role.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Code: "FORBIDDEN", Message: message, Err: ErrForbidden}
}
