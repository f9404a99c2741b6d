package common

import (
	"errors"
	"fmt"
)

// GenericError carries a client-facing message and the wrapped cause.
type GenericError struct {
	Message string
	Err     error
}

func (ge GenericError) Error() string {
	return ge.Message
}

func (ge GenericError) Unwrap() error {
	return ge.Err
}

// NotFoundError type
type NotFoundError struct {
	GenericError
}

func NewNotFoundError(err error, format string, args ...any) error {
	return NotFoundError{GenericError{fmt.Sprintf(format, args...), err}}
}

func IsNotFoundError(target error) bool {
	var e NotFoundError
	return errors.As(target, &e)
}

// ConflictError is returned when a mutation would break a reference held by
// another row.
type ConflictError struct {
	GenericError
}

func NewConflictError(err error, format string, args ...any) error {
	return ConflictError{GenericError{fmt.Sprintf(format, args...), err}}
}

func IsConflictError(target error) bool {
	var e ConflictError
	return errors.As(target, &e)
}

// ValidationError type
type ValidationError struct {
	GenericError
	Fields []string
}

func NewValidationError(fields []string, format string, args ...any) error {
	return ValidationError{GenericError: GenericError{Message: fmt.Sprintf(format, args...)}, Fields: fields}
}

func IsValidationError(target error) bool {
	var e ValidationError
	return errors.As(target, &e)
}

// UnauthorizedError type
type UnauthorizedError struct {
	GenericError
}

func NewUnauthorizedError(err error, format string, args ...any) error {
	return UnauthorizedError{GenericError{fmt.Sprintf(format, args...), err}}
}

func IsUnauthorizedError(target error) bool {
	var e UnauthorizedError
	return errors.As(target, &e)
}

// ForbiddenError type
type ForbiddenError struct {
	GenericError
}

func NewForbiddenError(err error, format string, args ...any) error {
	return ForbiddenError{GenericError{fmt.Sprintf(format, args...), err}}
}

func IsForbiddenError(target error) bool {
	var e ForbiddenError
	return errors.As(target, &e)
}
