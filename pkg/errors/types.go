package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode classifies a tripdesk failure.
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrCodeConfigParse   ErrorCode = "CONFIG_PARSE"
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	// Request lifecycle errors
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeTransport    ErrorCode = "TRANSPORT"
	ErrCodeDecode       ErrorCode = "DECODE"
	ErrCodeBusiness     ErrorCode = "BUSINESS"

	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Error is a structured tripdesk error.
type Error struct {
	Code        ErrorCode
	Message     string
	Underlying  error
	Context     map[string]any
	UserMessage string
}

// New creates a new structured error
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// Wrap wraps err with a code. Wrapping nil returns nil.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
		Context:    make(map[string]any),
	}
}

// WithContext adds a key-value pair to the error
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithUserMessage sets the text shown to users for this failure.
func (e *Error) WithUserMessage(message string) *Error {
	e.UserMessage = strings.TrimSpace(message)
	return e
}

// Error implements the error interface
func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", e.Code, e.Message)

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s: %v", k, e.Context[k])
		}
		sb.WriteString("}")
	}

	if e.Underlying != nil {
		fmt.Fprintf(&sb, ": %v", e.Underlying)
	}
	return sb.String()
}

// Unwrap returns the underlying error for errors.Is/As
func (e *Error) Unwrap() error {
	return e.Underlying
}

// IsCode reports whether any error in err's chain carries code.
func IsCode(err error, code ErrorCode) bool {
	var target *Error
	if !stderrors.As(err, &target) {
		return false
	}
	return target.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var target *Error
	if !stderrors.As(err, &target) {
		return ErrCodeInternal
	}
	return target.Code
}

// UserMessage returns the user-facing text for err, or fallback when err carries none.
// Transport and decode failures never carry one.
func UserMessage(err error, fallback string) string {
	var target *Error
	if stderrors.As(err, &target) && target.UserMessage != "" {
		return target.UserMessage
	}
	return fallback
}
