package errs

import (
	"errors"
	"fmt"
)

// ErrorType classifies the failures that can occur while mirroring a course
type ErrorType string

const (
	ErrorTypeNetwork      ErrorType = "network"
	ErrorTypeAuth         ErrorType = "auth"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeServerError  ErrorType = "server_error"
	ErrorTypeParsing      ErrorType = "parsing"
	ErrorTypeInvalidInput ErrorType = "invalid_input"
	ErrorTypeFilesystem   ErrorType = "filesystem"
	ErrorTypeUnknown      ErrorType = "unknown"
)

// Error represents a categorized error with the HTTP status that produced it,
// when one exists
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// New creates a categorized error without an HTTP status
func New(t ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...)}
}

// NewWithCode creates a categorized error carrying an HTTP status
func NewWithCode(t ErrorType, code int, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...), Code: code}
}

// Category returns the type of a categorized error, or ErrorTypeUnknown for
// anything else (including nil)
func Category(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsFatal reports whether an error category should abort the whole run rather
// than skip the failing unit. Only authentication failures qualify: a rejected
// token will be rejected for every course.
func IsFatal(err error) bool {
	return Category(err) == ErrorTypeAuth
}

// AbortsCourse reports whether an error category should abandon the current
// course. Filesystem errors do: if one write failed, the rest of the course
// tree will fail the same way.
func AbortsCourse(err error) bool {
	return Category(err) == ErrorTypeFilesystem
}
