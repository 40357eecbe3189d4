// Package errors provides a lightweight structured error type (AssetBuilderError)
// for category-based classification of pipeline failures in the CLI.
package errors

import (
	stdErrors "errors"
	"fmt"
)

// ErrorCategory represents the category of an assetbuilder error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Build and processing errors
	CategoryBuild      ErrorCategory = "build"
	CategoryLint       ErrorCategory = "lint"
	CategoryCompile    ErrorCategory = "compile"
	CategoryTemplate   ErrorCategory = "template"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryCanceled ErrorCategory = "canceled"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// AssetBuilderError is a structured error with category, severity, and context
type AssetBuilderError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for AssetBuilderError
type ContextFields map[string]any

// Error implements the error interface
func (e *AssetBuilderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping
func (e *AssetBuilderError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *AssetBuilderError) WithContext(key string, value any) *AssetBuilderError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new AssetBuilderError
func New(category ErrorCategory, severity ErrorSeverity, message string) *AssetBuilderError {
	return &AssetBuilderError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new AssetBuilderError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *AssetBuilderError {
	return &AssetBuilderError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// As extracts the first AssetBuilderError in err's chain.
func As(err error) (*AssetBuilderError, bool) {
	var abe *AssetBuilderError
	if stdErrors.As(err, &abe) {
		return abe, true
	}
	return nil, false
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if abe, ok := As(err); ok {
		return abe.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not an AssetBuilderError
func GetCategory(err error) ErrorCategory {
	if abe, ok := As(err); ok {
		return abe.Category
	}
	return CategoryInternal
}

// ValidationError creates a new validation error
func ValidationError(message string) *AssetBuilderError {
	return &AssetBuilderError{
		Category: CategoryValidation,
		Severity: SeverityWarning,
		Message:  message,
	}
}

// WrapError wraps an existing error with a new AssetBuilderError
func WrapError(err error, category ErrorCategory, message string) *AssetBuilderError {
	return &AssetBuilderError{
		Category: category,
		Severity: SeverityError,
		Message:  message,
		Cause:    err,
	}
}
