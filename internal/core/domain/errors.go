// Package domain defines the core domain models for myke.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// DomainError represents a domain error with a structured error code.
// Codes have the form MK-<AREA>-<NNNN>.
type DomainError struct {
	Code    string // Error code (e.g., "MK-TASK-4090")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithDetailsf is WithDetails with a format string.
func (e *DomainError) WithDetailsf(format string, args ...any) *DomainError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ProcessError is returned when a checked command exits with a non-zero status.
type ProcessError struct {
	Cmd      string
	ExitCode int
	Stdout   string
	Stderr   string
}

// Error implements the error interface.
func (e *ProcessError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "command '%s' returned non-zero exit status %d", e.Cmd, e.ExitCode)
	if out := strings.TrimSpace(e.Stdout); out != "" {
		b.WriteString("\nstdout:\n")
		b.WriteString(out)
	}
	if out := strings.TrimSpace(e.Stderr); out != "" {
		b.WriteString("\nstderr:\n")
		b.WriteString(out)
	}
	return b.String()
}

// Unwrap lets errors.Is(err, ErrProcessFailed) match.
func (e *ProcessError) Unwrap() error {
	return ErrProcessFailed
}

// ExitCode returns the exit status carried by err, 0 for nil and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var pe *ProcessError
	if errors.As(err, &pe) && pe.ExitCode > 0 {
		return pe.ExitCode
	}
	if errors.Is(err, ErrCommandTimeout) {
		return 124
	}
	return 1
}

// ============================================================================
// Load Errors (LOAD)
// ============================================================================

var (
	// ErrMykefileNotFound indicates a Mykefile path does not exist.
	ErrMykefileNotFound = NewDomainError("MK-LOAD-4040", "mykefile not found")

	// ErrModuleNotFound indicates a module could not be resolved or holds no tasks.
	ErrModuleNotFound = NewDomainError("MK-LOAD-4041", "module not found")

	// ErrNoTasksFound indicates an import registered zero tasks.
	ErrNoTasksFound = NewDomainError("MK-LOAD-4042", "no tasks found")

	// ErrLoadFailed indicates a source failed to evaluate.
	ErrLoadFailed = NewDomainError("MK-LOAD-5000", "failed to load mykefile")
)

// ============================================================================
// Task Errors (TASK)
// ============================================================================

var (
	// ErrTaskAlreadyRegistered indicates a task key (or the root) is already taken.
	ErrTaskAlreadyRegistered = NewDomainError("MK-TASK-4090", "task already registered")

	// ErrTaskNotFound indicates the requested task does not exist.
	ErrTaskNotFound = NewDomainError("MK-TASK-4040", "task not found")

	// ErrInvalidTask indicates a task definition is invalid.
	ErrInvalidTask = NewDomainError("MK-TASK-4000", "invalid task")
)

// ============================================================================
// Shell and Process Errors (SHELL, PROC)
// ============================================================================

var (
	// ErrInvalidScript indicates a shell task returned something other than a string or list of strings.
	ErrInvalidScript = NewDomainError("MK-SHELL-4000", "shell task must return a string or a sequence of strings")

	// ErrProcessFailed indicates a command exited with a non-zero status.
	ErrProcessFailed = NewDomainError("MK-PROC-5000", "command failed")

	// ErrCommandTimeout indicates a command exceeded its timeout.
	ErrCommandTimeout = NewDomainError("MK-PROC-5040", "command timed out")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("MK-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("MK-ARG-1002", "missing required argument")

	// ErrInvalidConfig indicates the configuration file or environment is invalid.
	ErrInvalidConfig = NewDomainError("MK-ARG-1003", "invalid configuration")
)

// ============================================================================
// IO Errors (IO, NET)
// ============================================================================

var (
	// ErrFileExists indicates a write would clobber an existing file.
	ErrFileExists = NewDomainError("MK-IO-4090", "file already exists")

	// ErrInvalidDocument indicates a parsed document is not a string-keyed map.
	ErrInvalidDocument = NewDomainError("MK-IO-4000", "document is not a mapping")

	// ErrFetchFailed indicates a remote download failed.
	ErrFetchFailed = NewDomainError("MK-NET-5020", "fetch failed")
)
