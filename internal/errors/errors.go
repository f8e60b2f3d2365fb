package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ConfigErrorType represents configuration-related errors (missing API key, bad settings file)
	ConfigErrorType ErrorType = "CONFIG"
	// AuthErrorType represents credential rejections from the model backend
	AuthErrorType ErrorType = "AUTH"
	// TransportErrorType represents model backend call failures (network, HTTP, empty completion)
	TransportErrorType ErrorType = "TRANSPORT"
	// ParseErrorType represents malformed JSON in a model response
	ParseErrorType ErrorType = "PARSE"
	// ValidationErrorType represents schema validation failures
	ValidationErrorType ErrorType = "VALIDATION"
	// FileErrorType represents file system-related errors
	FileErrorType ErrorType = "FILE"
)

// PipelineError is the base error type for all application errors
type PipelineError struct {
	Type        ErrorType
	Message     string
	Context     map[string]interface{}
	Cause       error
	Suggestions []string
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	var parts []string

	// Add error type prefix
	parts = append(parts, fmt.Sprintf("[%s]", e.Type))

	// Add main message
	parts = append(parts, e.Message)

	// Add context if available
	if len(e.Context) > 0 {
		var contextParts []string
		for key, value := range e.Context {
			contextParts = append(contextParts, fmt.Sprintf("%s=%v", key, value))
		}
		parts = append(parts, fmt.Sprintf("(%s)", strings.Join(contextParts, ", ")))
	}

	// Add cause if available
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("caused by: %v", e.Cause))
	}

	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause error
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error type
func (e *PipelineError) Is(target error) bool {
	if targetErr, ok := target.(*PipelineError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// WithContext adds context information to the error
func (e *PipelineError) WithContext(key string, value interface{}) *PipelineError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion to help resolve the error
func (e *PipelineError) WithSuggestion(suggestion string) *PipelineError {
	if e.Suggestions == nil {
		e.Suggestions = make([]string, 0)
	}
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// GetSuggestions returns formatted suggestions for resolving the error
func (e *PipelineError) GetSuggestions() string {
	if len(e.Suggestions) == 0 {
		return ""
	}

	var result strings.Builder
	result.WriteString("Suggestions:\n")
	for i, suggestion := range e.Suggestions {
		result.WriteString(fmt.Sprintf("  %d. %s\n", i+1, suggestion))
	}
	return result.String()
}

// ConfigError creates a new configuration error
func ConfigError(message string) *PipelineError {
	return &PipelineError{
		Type:    ConfigErrorType,
		Message: message,
	}
}

// ConfigErrorf creates a new configuration error with formatting
func ConfigErrorf(format string, args ...interface{}) *PipelineError {
	return &PipelineError{
		Type:    ConfigErrorType,
		Message: fmt.Sprintf(format, args...),
	}
}

// ConfigErrorWithCause creates a new configuration error with a cause
func ConfigErrorWithCause(message string, cause error) *PipelineError {
	return &PipelineError{
		Type:    ConfigErrorType,
		Message: message,
		Cause:   cause,
	}
}

// AuthError creates a new authentication error
func AuthError(message string) *PipelineError {
	return &PipelineError{
		Type:    AuthErrorType,
		Message: message,
	}
}

// AuthErrorf creates a new authentication error with formatting
func AuthErrorf(format string, args ...interface{}) *PipelineError {
	return &PipelineError{
		Type:    AuthErrorType,
		Message: fmt.Sprintf(format, args...),
	}
}

// AuthErrorWithCause creates a new authentication error with a cause
func AuthErrorWithCause(message string, cause error) *PipelineError {
	return &PipelineError{
		Type:    AuthErrorType,
		Message: message,
		Cause:   cause,
	}
}

// TransportError creates a new model backend transport error
func TransportError(message string) *PipelineError {
	return &PipelineError{
		Type:    TransportErrorType,
		Message: message,
	}
}

// TransportErrorf creates a new model backend transport error with formatting
func TransportErrorf(format string, args ...interface{}) *PipelineError {
	return &PipelineError{
		Type:    TransportErrorType,
		Message: fmt.Sprintf(format, args...),
	}
}

// TransportErrorWithCause creates a new model backend transport error with a cause
func TransportErrorWithCause(message string, cause error) *PipelineError {
	return &PipelineError{
		Type:    TransportErrorType,
		Message: message,
		Cause:   cause,
	}
}

// ParseError creates a new response parse error
func ParseError(message string) *PipelineError {
	return &PipelineError{
		Type:    ParseErrorType,
		Message: message,
	}
}

// ParseErrorf creates a new response parse error with formatting
func ParseErrorf(format string, args ...interface{}) *PipelineError {
	return &PipelineError{
		Type:    ParseErrorType,
		Message: fmt.Sprintf(format, args...),
	}
}

// ParseErrorWithCause creates a new response parse error with a cause
func ParseErrorWithCause(message string, cause error) *PipelineError {
	return &PipelineError{
		Type:    ParseErrorType,
		Message: message,
		Cause:   cause,
	}
}

// ValidationError creates a new validation error
func ValidationError(message string) *PipelineError {
	return &PipelineError{
		Type:    ValidationErrorType,
		Message: message,
	}
}

// ValidationErrorf creates a new validation error with formatting
func ValidationErrorf(format string, args ...interface{}) *PipelineError {
	return &PipelineError{
		Type:    ValidationErrorType,
		Message: fmt.Sprintf(format, args...),
	}
}

// ValidationErrorWithCause creates a new validation error with a cause
func ValidationErrorWithCause(message string, cause error) *PipelineError {
	return &PipelineError{
		Type:    ValidationErrorType,
		Message: message,
		Cause:   cause,
	}
}

// FileError creates a new file system error
func FileError(message string) *PipelineError {
	return &PipelineError{
		Type:    FileErrorType,
		Message: message,
	}
}

// FileErrorf creates a new file system error with formatting
func FileErrorf(format string, args ...interface{}) *PipelineError {
	return &PipelineError{
		Type:    FileErrorType,
		Message: fmt.Sprintf(format, args...),
	}
}

// FileErrorWithCause creates a new file system error with a cause
func FileErrorWithCause(message string, cause error) *PipelineError {
	return &PipelineError{
		Type:    FileErrorType,
		Message: message,
		Cause:   cause,
	}
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *PipelineError {
	if err == nil {
		return nil
	}

	// If it's already a PipelineError, preserve the original type unless explicitly overridden
	if pipelineErr, ok := err.(*PipelineError); ok && errorType == "" {
		return &PipelineError{
			Type:        pipelineErr.Type,
			Message:     message,
			Context:     pipelineErr.Context,
			Cause:       pipelineErr,
			Suggestions: pipelineErr.Suggestions,
		}
	}

	return &PipelineError{
		Type:    errorType,
		Message: message,
		Cause:   err,
	}
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType ErrorType) bool {
	if pipelineErr, ok := err.(*PipelineError); ok {
		return pipelineErr.Type == errorType
	}
	return false
}

// GetErrorType returns the error type of an error, or empty string if not a PipelineError
func GetErrorType(err error) ErrorType {
	if pipelineErr, ok := err.(*PipelineError); ok {
		return pipelineErr.Type
	}
	return ""
}

// Snippet shortens raw model text for use as diagnostic context.
// Parse failures attach the offending response this way so the full
// prompt drift is visible without dumping kilobytes into an error chain.
func Snippet(text string, max int) string {
	text = strings.TrimSpace(text)
	if max <= 0 || len(text) <= max {
		return text
	}
	return text[:max] + "..."
}

// FormatErrorForUser formats an error in a user-friendly way
func FormatErrorForUser(err error) string {
	if err == nil {
		return ""
	}

	pipelineErr, ok := err.(*PipelineError)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}

	var result strings.Builder

	// Add error message
	result.WriteString(fmt.Sprintf("Error: %s\n", pipelineErr.Message))

	// Add context if available
	if len(pipelineErr.Context) > 0 {
		result.WriteString("Details:\n")
		for key, value := range pipelineErr.Context {
			result.WriteString(fmt.Sprintf("  %s: %v\n", key, value))
		}
	}

	// Add suggestions if available
	if len(pipelineErr.Suggestions) > 0 {
		result.WriteString("\n")
		result.WriteString(pipelineErr.GetSuggestions())
	}

	return result.String()
}

// GetExitCode returns an appropriate exit code based on error type
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}

	pipelineErr, ok := err.(*PipelineError)
	if !ok {
		return 1 // Generic error
	}

	switch pipelineErr.Type {
	case ConfigErrorType:
		return 2
	case AuthErrorType:
		return 3
	case TransportErrorType:
		return 4
	case ParseErrorType:
		return 5
	case ValidationErrorType:
		return 6
	case FileErrorType:
		return 7
	default:
		return 1
	}
}
