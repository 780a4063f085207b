package raildata

import "errors"

// Stable machine readable error codes surfaced to callers.
const (
	CodeConfigurationMissing  = "CONFIGURATION_MISSING"
	CodeProtocolFault         = "PROTOCOL_FAULT"
	CodeTransportError        = "TRANSPORT_ERROR"
	CodeParseError            = "PARSE_ERROR"
	CodeCapabilityUnsupported = "CAPABILITY_UNSUPPORTED"
	CodeRateLimited           = "RATE_LIMITED"
	CodeNoPrimarySource       = "NO_PRIMARY_SOURCE"
	CodeTimeout               = "TIMEOUT"
)

// Error is a coded error carried across component boundaries. User visible
// failures always expose Code and Message together.
type Error struct {
	Code    string
	Message string

	cause error
}

func NewError(code string, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches two coded errors by code, which lets sentinel comparisons such
// as errors.Is(err, ErrCapabilityUnsupported) work across freshly constructed
// instances.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

var (
	ErrConfigurationMissing  = NewError(CodeConfigurationMissing, "data source is not configured", nil)
	ErrCapabilityUnsupported = NewError(CodeCapabilityUnsupported, "data source does not support this capability", nil)
	ErrNoPrimarySource       = NewError(CodeNoPrimarySource, "no primary data source configured", nil)
)

// ErrorCode extracts the machine code from err, defaulting to
// TRANSPORT_ERROR for errors that did not originate from this module.
func ErrorCode(err error) string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeTransportError
}
