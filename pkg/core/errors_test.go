package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestGenerationError_Error(t *testing.T) {
	err := &GenerationError{
		Category: ErrCategoryGraph,
		Code:     "test_error",
		Message:  "test message",
	}

	if got := err.Error(); got != "test message" {
		t.Errorf("Error() = %q, want %q", got, "test message")
	}
}

func TestGenerationError_ErrorWithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := &GenerationError{
		Category: ErrCategoryIO,
		Code:     "test_error",
		Message:  "test message",
		Cause:    cause,
	}

	got := err.Error()
	if !strings.Contains(got, "test message") {
		t.Errorf("Error() = %q, should contain 'test message'", got)
	}
	if !strings.Contains(got, "underlying error") {
		t.Errorf("Error() = %q, should contain 'underlying error'", got)
	}
}

func TestGenerationError_ErrorWithTarget(t *testing.T) {
	err := ErrDuplicateTarget.WithDetails(map[string]interface{}{"target": "log/a.OK"})

	want := "target already produced by another step: log/a.OK"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestGenerationError_ErrorWithDatabase(t *testing.T) {
	err := ErrUnknownDatabase.WithDetails(map[string]interface{}{"database": "dinosaur"})

	want := "database not valid: dinosaur"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if _, ok := err.Details["target"]; ok {
		t.Error("database name must not be reported as a target")
	}
}

func TestGenerationError_ErrorWithPath(t *testing.T) {
	err := ErrWriteScript.WithDetails(map[string]interface{}{"path": "run.mk"}).WithCause(errors.New("denied"))

	want := "failed to write build script: run.mk: denied"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestGenerationError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &GenerationError{
		Message: "wrapper",
		Cause:   cause,
	}

	if got := err.Unwrap(); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}
}

func TestGenerationError_WithCause(t *testing.T) {
	original := ErrWriteScript
	cause := errors.New("custom cause")

	newErr := original.WithCause(cause)

	if newErr.Cause != cause {
		t.Error("WithCause() did not set cause")
	}
	if newErr.Code != original.Code {
		t.Error("WithCause() changed code")
	}
	if original.Cause != nil {
		t.Error("WithCause() modified original error")
	}
}

func TestGenerationError_WithMessage(t *testing.T) {
	original := ErrInvalidConfig
	newErr := original.WithMessage("custom config message")

	if newErr.Message != "custom config message" {
		t.Errorf("Message = %q, want 'custom config message'", newErr.Message)
	}
	if newErr.Code != original.Code {
		t.Error("WithMessage() changed code")
	}
	if original.Message == "custom config message" {
		t.Error("WithMessage() modified original error")
	}
}

func TestGenerationError_WithDetails(t *testing.T) {
	original := &GenerationError{
		Code:    "test",
		Message: "test",
		Details: map[string]interface{}{"existing": "value"},
	}

	newErr := original.WithDetails(map[string]interface{}{
		"target": "log/x.OK",
		"index":  3,
	})

	if newErr.Details["target"] != "log/x.OK" {
		t.Error("WithDetails() did not add new details")
	}
	if newErr.Details["existing"] != "value" {
		t.Error("WithDetails() did not preserve existing details")
	}
	if _, ok := original.Details["target"]; ok {
		t.Error("WithDetails() modified original error")
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err      *GenerationError
		category ErrorCategory
		code     string
	}{
		{ErrEmptyTarget, ErrCategoryGraph, "empty_target"},
		{ErrEmptyCommand, ErrCategoryGraph, "empty_command"},
		{ErrInvalidPath, ErrCategoryGraph, "invalid_path"},
		{ErrDuplicateTarget, ErrCategoryGraph, "duplicate_target"},
		{ErrWriteScript, ErrCategoryIO, "write_failed"},
		{ErrInvalidManifest, ErrCategoryInput, "invalid_manifest"},
		{ErrInvalidConfig, ErrCategoryConfig, "invalid_config"},
		{ErrUnknownDatabase, ErrCategoryConfig, "unknown_database"},
		{ErrRemoteListing, ErrCategoryRemote, "remote_listing"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Category != tt.category {
				t.Errorf("Category = %s, want %s", tt.err.Category, tt.category)
			}
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}

func TestNewGenerationError(t *testing.T) {
	err := NewGenerationError(ErrCategoryRemote, "custom_error", "custom message")

	if err.Category != ErrCategoryRemote {
		t.Errorf("Category = %s, want %s", err.Category, ErrCategoryRemote)
	}
	if err.Code != "custom_error" {
		t.Errorf("Code = %s, want 'custom_error'", err.Code)
	}
	if err.Message != "custom message" {
		t.Errorf("Message = %s, want 'custom message'", err.Message)
	}
}

func TestGenerationError_ErrorsIs(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrWriteScript.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find the cause")
	}
	if !errors.Is(err, ErrWriteScript) {
		t.Error("errors.Is() should match the predefined error")
	}
	if errors.Is(err, ErrEmptyTarget) {
		t.Error("errors.Is() should not match a different code")
	}
}

func TestGenerationError_ErrorsIsWrapped(t *testing.T) {
	err := fmt.Errorf("step 3: %w", ErrEmptyCommand.WithDetails(map[string]interface{}{"target": "x"}))

	if !errors.Is(err, ErrEmptyCommand) {
		t.Error("errors.Is() should see through fmt wrapping")
	}

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatal("errors.As() should find GenerationError")
	}
	if genErr.Category != ErrCategoryGraph {
		t.Errorf("Category = %s, want graph", genErr.Category)
	}
}
