package tax

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a specific engine failure.
type ErrorCode string

const (
	ErrInvalidAmount        ErrorCode = "INVALID_AMOUNT"
	ErrUnsupportedCurrency  ErrorCode = "UNSUPPORTED_CURRENCY"
	ErrUnknownCategory      ErrorCode = "UNKNOWN_CATEGORY"
	ErrUnknownFilingStatus  ErrorCode = "UNKNOWN_FILING_STATUS"
	ErrUnknownJurisdiction  ErrorCode = "UNKNOWN_JURISDICTION"
	ErrMissingRequiredField ErrorCode = "MISSING_REQUIRED_FIELD"
)

// Error is a structured engine error.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the engine error code carried by err, or "" if err is not
// an engine error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given engine error code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
