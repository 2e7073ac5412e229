package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrInvalidState
	ErrDuplicateIdentity
	ErrInvalidDateTime
	ErrPersistence
	ErrInternal
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

// NewInvalidState is returned when a lifecycle transition is attempted
// on an appointment whose status no longer permits it.
func NewInvalidState(message string) *AppError {
	return &AppError{
		Code:    ErrInvalidState,
		Message: message,
	}
}

// NewDuplicateIdentity is returned when completing a patient record
// would leave two patients sharing the same document pair.
func NewDuplicateIdentity(message string) *AppError {
	return &AppError{
		Code:    ErrDuplicateIdentity,
		Message: message,
	}
}

// NewInvalidDateTime is returned when an appointment's stored date or
// time cannot be combined into a valid instant.
func NewInvalidDateTime(message string, err error) *AppError {
	return &AppError{
		Code:    ErrInvalidDateTime,
		Message: message,
		Err:     err,
	}
}

// NewPersistence wraps a collaborator write failure.
func NewPersistence(message string, err error) *AppError {
	return &AppError{
		Code:    ErrPersistence,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// Common errors
func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

// Code extracts the ErrorCode from err, or ErrInternal when err is not
// an AppError.
func Code(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

func IsNotFound(err error) bool {
	return Code(err) == ErrNotFound
}

func IsInvalidState(err error) bool {
	return Code(err) == ErrInvalidState
}

func IsDuplicateIdentity(err error) bool {
	return Code(err) == ErrDuplicateIdentity
}

func IsInvalidDateTime(err error) bool {
	return Code(err) == ErrInvalidDateTime
}
