package errors

import (
	"fmt"
)

// ErrorOption is a function that modifies a ConversionError
type ErrorOption func(*ConversionError)

// WithSeverityOption sets the severity level for the error
func WithSeverityOption(severity ErrorSeverity) ErrorOption {
	return func(e *ConversionError) {
		e.Severity = severity
	}
}

// WithContextOption adds context information to the error
func WithContextOption(key string, value interface{}) ErrorOption {
	return func(e *ConversionError) {
		if e.Context == nil {
			e.Context = make(map[string]interface{})
		}
		e.Context[key] = value
	}
}

// WithCauseOption attaches an underlying error
func WithCauseOption(cause error) ErrorOption {
	return func(e *ConversionError) {
		if cause != nil {
			e.Wrap(cause)
		}
	}
}

// Report is the host-facing rendering of an error: the exception class a
// Python-style runtime would raise and its message.
type Report struct {
	Exception string                 `json:"exception"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	Overflow  int                    `json:"overflow,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

// String formats the report as "Exception: message"
func (r Report) String() string {
	return fmt.Sprintf("%s: %s", r.Exception, r.Message)
}

// Translate converts any error into a Report. Errors that are not
// ConversionErrors are reported as SystemError.
func Translate(err error) Report {
	if err == nil {
		return Report{}
	}
	convErr, ok := AsConversionError(err)
	if !ok {
		return Report{Exception: "SystemError", Message: err.Error()}
	}
	return Report{
		Exception: convErr.ExceptionName(),
		Message:   convErr.Message,
		Code:      convErr.Code,
		Overflow:  int(convErr.Direction),
		Context:   convErr.Context,
	}
}
