package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("MK-TEST-1000", "test message"),
			expected: "[MK-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("MK-TEST-1001", "test message").WithDetails("extra info"),
			expected: "[MK-TEST-1001] test message: extra info",
		},
		{
			name:     "error with details and cause",
			err:      NewDomainError("MK-TEST-1002", "load").WithDetails("Mykefile").WithCause(fmt.Errorf("boom")),
			expected: "[MK-TEST-1002] load: Mykefile: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("MK-TEST-1000", "message 1")
	err2 := NewDomainError("MK-TEST-1000", "message 2")
	err3 := NewDomainError("MK-TEST-1001", "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}

	wrapped := fmt.Errorf("import: %w", ErrNoTasksFound.WithDetails("Mykefile"))
	if !errors.Is(wrapped, ErrNoTasksFound) {
		t.Error("errors.Is should see through fmt wrapping")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	err := ErrLoadFailed.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if ErrLoadFailed.Cause != nil {
		t.Error("WithCause must not mutate the sentinel")
	}
}

func TestIsDomainError(t *testing.T) {
	err := ErrTaskNotFound.WithDetails("build")

	if !IsDomainError(err, "") {
		t.Error("IsDomainError(err, \"\") = false, want true")
	}
	if !IsDomainError(err, "MK-TASK-4040") {
		t.Error("IsDomainError with matching code = false, want true")
	}
	if IsDomainError(err, "MK-TASK-4090") {
		t.Error("IsDomainError with other code = true, want false")
	}
	if IsDomainError(fmt.Errorf("plain"), "") {
		t.Error("IsDomainError(plain) = true, want false")
	}
	if got := GetErrorCode(fmt.Errorf("x: %w", err)); got != "MK-TASK-4040" {
		t.Errorf("GetErrorCode() = %q, want %q", got, "MK-TASK-4040")
	}
}

func TestProcessError(t *testing.T) {
	err := &ProcessError{Cmd: "exit 3", ExitCode: 3, Stdout: "out\n", Stderr: ""}

	want := "command 'exit 3' returned non-zero exit status 3\nstdout:\nout"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrProcessFailed) {
		t.Error("ProcessError should match ErrProcessFailed")
	}

	var pe *ProcessError
	if !errors.As(fmt.Errorf("task: %w", err), &pe) || pe.ExitCode != 3 {
		t.Error("errors.As should extract the ProcessError")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", fmt.Errorf("x"), 1},
		{"process", fmt.Errorf("w: %w", &ProcessError{Cmd: "false", ExitCode: 7}), 7},
		{"timeout", ErrCommandTimeout.WithDetails("sleep 5"), 124},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
