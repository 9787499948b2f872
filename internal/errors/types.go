// Package errors defines the typed errors reported by tgairbot commands and
// the mapping from those errors to process exit codes.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeConfig  ErrorType = "config"
	ErrorTypeAsset   ErrorType = "asset"
	ErrorTypeBackend ErrorType = "backend"
	ErrorTypeProcess ErrorType = "process"
	ErrorTypeIO      ErrorType = "io"
)

// Common error codes.
const (
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeConfigRead       = "ERR_CONFIG_READ"
	ErrCodeUnknownBuilder   = "ERR_UNKNOWN_BUILDER"
	ErrCodeAssetCopy        = "ERR_ASSET_COPY"
	ErrCodePathOutOfRange   = "ERR_PATH_OUT_OF_RANGE"
	ErrCodeBuildFailed      = "ERR_BUILD_FAILED"
	ErrCodeBundlerConfig    = "ERR_BUNDLER_CONFIG"
	ErrCodeSpawnFailed      = "ERR_SPAWN_FAILED"
	ErrCodeInvalidSchematic = "ERR_INVALID_SCHEMATIC"
	ErrCodeInternalError    = "ERR_INTERNAL"
)

// CLIError is a structured error type with context.
type CLIError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *CLIError) Is(target error) bool {
	var t *CLIError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *CLIError) WithContext(key string, value interface{}) *CLIError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string, cause error) *CLIError {
	return &CLIError{Type: ErrorTypeConfig, Code: code, Message: message, Cause: cause}
}

// NewAssetError creates an asset synchronization error.
func NewAssetError(code, message string, cause error) *CLIError {
	return &CLIError{Type: ErrorTypeAsset, Code: code, Message: message, Cause: cause}
}

// NewBackendError creates a compiler or bundler error.
func NewBackendError(code, message string, cause error) *CLIError {
	return &CLIError{Type: ErrorTypeBackend, Code: code, Message: message, Cause: cause}
}

// NewProcessError creates a process supervision error.
func NewProcessError(code, message string, cause error) *CLIError {
	return &CLIError{Type: ErrorTypeProcess, Code: code, Message: message, Cause: cause}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *CLIError {
	return &CLIError{Type: ErrorTypeIO, Code: code, Message: message, Cause: cause}
}

// IsType reports whether err carries a CLIError of the given type.
func IsType(err error, typ ErrorType) bool {
	var ce *CLIError
	if errors.As(err, &ce) {
		return ce.Type == typ
	}

	return false
}

// ExitError carries an exit code that the CLI must return as-is, for
// instance the exit code of a supervised child process.
type ExitError struct {
	Code int
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("process exited with code %d", e.Code)
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}

	return 1
}
