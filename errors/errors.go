package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorKind represents the category of a conversion failure
type ErrorKind string

const (
	KindType     ErrorKind = "TYPE"
	KindOverflow ErrorKind = "OVERFLOW"
	KindValue    ErrorKind = "VALUE"
	KindSystem   ErrorKind = "SYSTEM"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityDebug   ErrorSeverity = "DEBUG"
	SeverityInfo    ErrorSeverity = "INFO"
	SeverityWarning ErrorSeverity = "WARNING"
	SeverityError   ErrorSeverity = "ERROR"
	SeverityFatal   ErrorSeverity = "FATAL"
)

// Direction tells which bound of a two-sided range was violated.
// The numeric values double as the out-of-band overflow flag.
type Direction int

const (
	InRange  Direction = 0
	TooLarge Direction = 1
	TooSmall Direction = -1
)

// String returns the string representation of a direction
func (d Direction) String() string {
	switch d {
	case TooLarge:
		return "too-large"
	case TooSmall:
		return "too-small"
	default:
		return "in-range"
	}
}

// Error codes
const (
	CodeNotInteger         = "TYPE_NOT_INTEGER"
	CodeIntegerRequired    = "TYPE_INTEGER_REQUIRED"
	CodeBadIndexResult     = "TYPE_BAD_INDEX_RESULT"
	CodeTooLarge           = "OVERFLOW_TOO_LARGE"
	CodeTooSmall           = "OVERFLOW_TOO_SMALL"
	CodeNegative           = "OVERFLOW_NEGATIVE"
	CodeInvalidLiteral     = "VALUE_INVALID_LITERAL"
	CodeInvalidBase        = "VALUE_INVALID_BASE"
	CodeNaN                = "VALUE_NAN"
	CodeNegativeLength     = "VALUE_NEGATIVE_LENGTH"
	CodeSentinelCorrupted  = "SYSTEM_SENTINEL_CORRUPTED"
	CodePlatform           = "SYSTEM_PLATFORM"
	CodeInvalidWidth       = "INVALID_WIDTH"
	CodeUnsupportedVersion = "UNSUPPORTED_VERSION"
	CodeScriptError        = "SYSTEM_SCRIPT_ERROR"
	CodeScriptSyntax       = "SYSTEM_SCRIPT_SYNTAX"
	CodeScriptTimeout      = "SYSTEM_SCRIPT_TIMEOUT"
	CodeNotInitialized     = "SYSTEM_NOT_INITIALIZED"
	CodeUsage              = "VALUE_USAGE"
)

// ConversionError represents a structured conversion failure
type ConversionError struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Kind      ErrorKind              `json:"kind"`
	Direction Direction              `json:"direction,omitempty"`
	Severity  ErrorSeverity          `json:"severity"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
	Wrapped   []error                `json:"-"`
}

// Sentinels usable with errors.Is; they match any error of the same kind.
var (
	ErrType     = &ConversionError{Kind: KindType}
	ErrOverflow = &ConversionError{Kind: KindOverflow}
	ErrValue    = &ConversionError{Kind: KindValue}
	ErrSystem   = &ConversionError{Kind: KindSystem}
)

// Error implements the error interface
func (e *ConversionError) Error() string {
	var builder strings.Builder

	// Format: [KIND][CODE] message
	builder.WriteString(fmt.Sprintf("[%s][%s] %s", e.Kind, e.Code, e.Message))
	if e.Cause != nil {
		builder.WriteString(": ")
		builder.WriteString(e.Cause.Error())
	}

	return builder.String()
}

// ExceptionName maps the error kind onto the exception class a Python-style
// host would raise for it.
func (e *ConversionError) ExceptionName() string {
	switch e.Kind {
	case KindType:
		return "TypeError"
	case KindOverflow:
		return "OverflowError"
	case KindValue:
		return "ValueError"
	default:
		return "SystemError"
	}
}

// Unwrap returns the underlying error
func (e *ConversionError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target. A target without a code
// matches on kind alone.
func (e *ConversionError) Is(target error) bool {
	other, ok := target.(*ConversionError)
	if !ok {
		return false
	}
	if other.Code == "" {
		return e.Kind == other.Kind
	}
	return e.Code == other.Code && e.Kind == other.Kind
}

// WithContext adds context information to the error
func (e *ConversionError) WithContext(key string, value interface{}) *ConversionError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity sets the severity level for the error
func (e *ConversionError) WithSeverity(severity ErrorSeverity) *ConversionError {
	e.Severity = severity
	return e
}

// Wrap wraps another error
func (e *ConversionError) Wrap(err error) *ConversionError {
	e.Cause = err
	e.Wrapped = append(e.Wrapped, err)
	return e
}

func newError(kind ErrorKind, code, message string, opts []ErrorOption) *ConversionError {
	e := &ConversionError{
		Code:      code,
		Message:   message,
		Kind:      kind,
		Timestamp: time.Now(),
		Severity:  SeverityError,
		Context:   make(map[string]interface{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewTypeError creates an error for inputs that are not integers
func NewTypeError(code, message string, opts ...ErrorOption) *ConversionError {
	return newError(KindType, code, message, opts)
}

// NewOverflowError creates an error for values outside a representable range
func NewOverflowError(code string, direction Direction, message string, opts ...ErrorOption) *ConversionError {
	e := newError(KindOverflow, code, message, opts)
	e.Direction = direction
	return e
}

// NewValueError creates an error for malformed values such as bad literals
func NewValueError(code, message string, opts ...ErrorOption) *ConversionError {
	e := newError(KindValue, code, message, opts)
	e.Severity = SeverityWarning
	return e
}

// NewSystemError creates an error for internal failures
func NewSystemError(code, message string, opts ...ErrorOption) *ConversionError {
	e := newError(KindSystem, code, message, opts)
	e.Severity = SeverityFatal
	return e
}

// WrapError wraps an existing error into a ConversionError
func WrapError(err error, kind ErrorKind, code, message string) *ConversionError {
	return newError(kind, code, message, nil).Wrap(err)
}

// AsConversionError converts an error to ConversionError if possible
func AsConversionError(err error) (*ConversionError, bool) {
	var convErr *ConversionError
	if stderrors.As(err, &convErr) {
		return convErr, true
	}
	return nil, false
}

// IsTypeError reports whether err is a TYPE conversion error
func IsTypeError(err error) bool {
	return stderrors.Is(err, ErrType)
}

// IsOverflow reports whether err is an OVERFLOW conversion error
func IsOverflow(err error) bool {
	return stderrors.Is(err, ErrOverflow)
}

// IsValueError reports whether err is a VALUE conversion error
func IsValueError(err error) bool {
	return stderrors.Is(err, ErrValue)
}

// IsSystemError reports whether err is a SYSTEM conversion error
func IsSystemError(err error) bool {
	return stderrors.Is(err, ErrSystem)
}

// DirectionOf returns the overflow direction carried by err, or InRange
func DirectionOf(err error) Direction {
	if convErr, ok := AsConversionError(err); ok && convErr.Kind == KindOverflow {
		return convErr.Direction
	}
	return InRange
}

// GetErrorChain returns the chain of errors
func GetErrorChain(err error) []error {
	var chain []error
	for err != nil {
		chain = append(chain, err)
		err = stderrors.Unwrap(err)
	}
	return chain
}
