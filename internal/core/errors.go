package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyField      = errors.New("required field is empty")
	ErrFieldTooLong    = errors.New("field too long")
	ErrInvalidMonth    = errors.New("invalid month")
	ErrInvalidYear     = errors.New("invalid year")
	ErrUnknownCategory = errors.New("unknown category")
)

// ValidationError is returned when user input is rejected before any write.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid builds a ValidationError wrapping one of the sentinel errors.
func Invalid(field string, err error, msg string) *ValidationError {
	if msg == "" && err != nil {
		msg = err.Error()
	}
	return &ValidationError{Field: field, Message: msg, Err: err}
}

// NotFoundError is returned when a record or category does not exist.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// InvalidKindError is returned for an unrecognized record-kind discriminator.
type InvalidKindError struct {
	Value string
}

func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("invalid kind %q", e.Value)
}

// StorageError wraps an underlying persistence failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsInvalidKind(err error) bool {
	var ik *InvalidKindError
	return errors.As(err, &ik)
}

func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
