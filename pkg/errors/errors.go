package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Invocation errors
	ErrUsage        ErrorCode = "USAGE"
	ErrPrecondition ErrorCode = "PRECONDITION"
	ErrPrivilege    ErrorCode = "PRIVILEGE"

	// Configuration errors
	ErrConfigLoad ErrorCode = "CONFIG_LOAD"

	// Provisioning errors
	ErrExternalTool        ErrorCode = "EXTERNAL_TOOL"
	ErrUnsupportedPlatform ErrorCode = "UNSUPPORTED_PLATFORM"
	ErrManifestInvalid     ErrorCode = "MANIFEST_INVALID"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
)

// Process exit codes. Phase failures use ExitPhaseBase plus the phase's
// position; see pkg/phases.
const (
	ExitOK                = 0
	ExitUsage             = 1
	ExitMissingCredential = 2
	ExitRunningAsRoot     = 3
	ExitPrivilege         = 4
	ExitConfig            = 5
	ExitPrecondition      = 6
	ExitPhaseBase         = 10
	ExitUnexpected        = 99
)

// BootstrapError represents a structured error with code and details
type BootstrapError struct {
	Code     ErrorCode
	Message  string
	Details  map[string]interface{}
	Wrapped  error
	ExitCode int
}

// Error implements the error interface
func (e *BootstrapError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *BootstrapError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *BootstrapError) Is(target error) bool {
	var targetErr *BootstrapError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new BootstrapError with the given code and message
func New(code ErrorCode, message string) *BootstrapError {
	return &BootstrapError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new BootstrapError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BootstrapError {
	return &BootstrapError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a BootstrapError
func Wrap(err error, code ErrorCode, message string) *BootstrapError {
	if err == nil {
		return nil
	}
	return &BootstrapError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *BootstrapError {
	if err == nil {
		return nil
	}
	return &BootstrapError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *BootstrapError) WithDetail(key string, value interface{}) *BootstrapError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithExitCode sets the process exit code this error should produce.
func (e *BootstrapError) WithExitCode(code int) *BootstrapError {
	e.ExitCode = code
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var bErr *BootstrapError
	if errors.As(err, &bErr) {
		return bErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a BootstrapError
func GetErrorCode(err error) ErrorCode {
	var bErr *BootstrapError
	if errors.As(err, &bErr) {
		return bErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a BootstrapError
func GetErrorDetails(err error) map[string]interface{} {
	var bErr *BootstrapError
	if errors.As(err, &bErr) {
		return bErr.Details
	}
	return nil
}

// ExitCode resolves the process exit code for err. The innermost error that
// carries an explicit exit code wins, so a precondition raised inside a phase
// keeps its own code instead of the phase's.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	code := 0
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		if bErr, ok := cur.(*BootstrapError); ok && bErr.ExitCode != 0 {
			code = bErr.ExitCode
		}
	}
	if code != 0 {
		return code
	}
	switch GetErrorCode(err) {
	case ErrUsage:
		return ExitUsage
	case ErrPrivilege:
		return ExitPrivilege
	case ErrConfigLoad:
		return ExitConfig
	case ErrPrecondition:
		return ExitPrecondition
	case ErrUnknown:
		return ExitUnexpected
	}
	return ExitPhaseBase
}
