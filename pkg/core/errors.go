package core

import (
	"fmt"
)

// GenerationError is a structured error raised while building or writing a pipeline.
type GenerationError struct {
	Category ErrorCategory
	Code     string                 // Machine-readable code: empty_target, write_failed, etc.
	Message  string                 // Human-readable message
	Details  map[string]interface{} // Additional context
	Cause    error                  // Underlying error
}

// Error implements the error interface
func (e *GenerationError) Error() string {
	msg := e.Message
	if target, ok := e.Details["target"]; ok {
		msg = fmt.Sprintf("%s: %v", msg, target)
	} else if path, ok := e.Details["path"]; ok {
		msg = fmt.Sprintf("%s: %v", msg, path)
	} else if db, ok := e.Details["database"]; ok {
		msg = fmt.Sprintf("%s: %v", msg, db)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a GenerationError with the same code.
// Copies made by the With* helpers match their predefined origin.
func (e *GenerationError) Is(target error) bool {
	t, ok := target.(*GenerationError)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause
func (e *GenerationError) WithCause(cause error) *GenerationError {
	return &GenerationError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  e.Details,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *GenerationError) WithMessage(msg string) *GenerationError {
	return &GenerationError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Details:  e.Details,
		Cause:    e.Cause,
	}
}

// WithDetails returns a copy of the error with additional details
func (e *GenerationError) WithDetails(details map[string]interface{}) *GenerationError {
	merged := make(map[string]interface{})
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &GenerationError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  merged,
		Cause:    e.Cause,
	}
}

// Predefined errors
var (
	// Graph construction errors
	ErrEmptyTarget = &GenerationError{
		Category: ErrCategoryGraph,
		Code:     "empty_target",
		Message:  "step target is required",
	}
	ErrEmptyCommand = &GenerationError{
		Category: ErrCategoryGraph,
		Code:     "empty_command",
		Message:  "step command is required",
	}
	ErrInvalidPath = &GenerationError{
		Category: ErrCategoryGraph,
		Code:     "invalid_path",
		Message:  "path cannot be used as a make target",
	}
	ErrDuplicateTarget = &GenerationError{
		Category: ErrCategoryGraph,
		Code:     "duplicate_target",
		Message:  "target already produced by another step",
	}

	// Output errors
	ErrWriteScript = &GenerationError{
		Category: ErrCategoryIO,
		Code:     "write_failed",
		Message:  "failed to write build script",
	}

	// Input errors
	ErrInvalidManifest = &GenerationError{
		Category: ErrCategoryInput,
		Code:     "invalid_manifest",
		Message:  "invalid sample manifest",
	}

	// Config errors
	ErrInvalidConfig = &GenerationError{
		Category: ErrCategoryConfig,
		Code:     "invalid_config",
		Message:  "invalid configuration",
	}
	ErrUnknownDatabase = &GenerationError{
		Category: ErrCategoryConfig,
		Code:     "unknown_database",
		Message:  "database not valid",
	}

	// Remote errors
	ErrRemoteListing = &GenerationError{
		Category: ErrCategoryRemote,
		Code:     "remote_listing",
		Message:  "failed to list remote files",
	}
)

// NewGenerationError creates a new GenerationError with the given parameters
func NewGenerationError(category ErrorCategory, code, message string) *GenerationError {
	return &GenerationError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}
