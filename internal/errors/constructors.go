package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *AssetBuilderError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *AssetBuilderError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Build pipeline errors

func FileSystemError(operation, path string, cause error) *AssetBuilderError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "file system operation failed").
		WithContext("operation", operation).
		WithContext("path", path)
}

func LintFailed(errorCount int) *AssetBuilderError {
	return New(CategoryLint, SeverityFatal, "lint reported errors").
		WithContext("errors", errorCount)
}

func CompileError(source string, cause error) *AssetBuilderError {
	return Wrap(cause, CategoryCompile, SeverityFatal, "compilation failed").
		WithContext("source", source)
}

func TemplateError(template string, cause error) *AssetBuilderError {
	return Wrap(cause, CategoryTemplate, SeverityFatal, "template rendering failed").
		WithContext("template", template)
}

func Canceled(cause error) *AssetBuilderError {
	return Wrap(cause, CategoryCanceled, SeverityError, "build canceled")
}

// Internal errors

func InternalError(message string, cause error) *AssetBuilderError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
