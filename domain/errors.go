package domain

import (
	"errors"
	"fmt"
)

// DomainError represents errors in the domain layer
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e DomainError) Unwrap() error {
	return e.Cause
}

// Domain error codes
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeInvalidParameter  = "INVALID_PARAMETER"
	ErrCodeUnsatisfiable     = "UNSATISFIABLE"
	ErrCodeStateViolation    = "STATE_VIOLATION"
	ErrCodeFileNotFound      = "FILE_NOT_FOUND"
	ErrCodeParseError        = "PARSE_ERROR"
	ErrCodeConfigError       = "CONFIG_ERROR"
	ErrCodeOutputError       = "OUTPUT_ERROR"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
)

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) error {
	return DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidParameterError creates an error for parameters outside their
// valid range (thresholds outside (0,1), non-positive lengths, ...)
func NewInvalidParameterError(message string) error {
	return NewDomainError(ErrCodeInvalidParameter, message, nil)
}

// NewUnsatisfiableError creates an error for band-parameter searches that
// found no acceptable configuration within the signature length budget
func NewUnsatisfiableError(message string) error {
	return NewDomainError(ErrCodeUnsatisfiable, message, nil)
}

// NewStateViolationError creates an error for operations invoked in the
// wrong matcher lifecycle state (insert after freeze, query before freeze)
func NewStateViolationError(message string) error {
	return NewDomainError(ErrCodeStateViolation, message, nil)
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string, cause error) error {
	return NewDomainError(ErrCodeInvalidInput, message, cause)
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string, cause error) error {
	return NewDomainError(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path), cause)
}

// NewParseError creates a parse error
func NewParseError(location string, cause error) error {
	return NewDomainError(ErrCodeParseError, fmt.Sprintf("failed to parse record: %s", location), cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) error {
	return NewDomainError(ErrCodeConfigError, message, cause)
}

// NewOutputError creates an output error
func NewOutputError(message string, cause error) error {
	return NewDomainError(ErrCodeOutputError, message, cause)
}

// NewUnsupportedFormatError creates an unsupported format error
func NewUnsupportedFormatError(format string) error {
	return NewDomainError(ErrCodeUnsupportedFormat, fmt.Sprintf("unsupported format: %s", format), nil)
}

// NewValidationError creates a validation error
func NewValidationError(message string) error {
	return NewDomainError(ErrCodeInvalidInput, message, nil)
}

// IsErrorCode reports whether err is a DomainError carrying the given code
func IsErrorCode(err error, code string) bool {
	var derr DomainError
	if errors.As(err, &derr) {
		return derr.Code == code
	}
	return false
}
