package errors

import (
	"fmt"
	"strings"
)

// MaterializerError represents a structured startup error with context and suggestions
type MaterializerError struct {
	Operation   string   // What operation was being performed
	Component   string   // Which component failed (config, fragments, artifact, exec, ...)
	Issue       string   // The core issue description
	Context     string   // Additional context about the failure
	Suggestions []string // List of actionable suggestions to fix the issue
	Cause       error    // Underlying error that caused this
}

func (e *MaterializerError) Error() string {
	var parts []string

	if e.Operation != "" && e.Component != "" {
		parts = append(parts, fmt.Sprintf("ERROR: %s failed in %s", e.Operation, e.Component))
	} else if e.Operation != "" {
		parts = append(parts, fmt.Sprintf("ERROR: %s failed", e.Operation))
	} else {
		parts = append(parts, "ERROR: Operation failed")
	}

	if e.Issue != "" {
		parts = append(parts, fmt.Sprintf("  Issue: %s", e.Issue))
	}

	if e.Context != "" {
		parts = append(parts, fmt.Sprintf("  Context: %s", e.Context))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("  Cause: %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		parts = append(parts, "")
		parts = append(parts, "  Suggestions:")
		for i, suggestion := range e.Suggestions {
			parts = append(parts, fmt.Sprintf("  %d. %s", i+1, suggestion))
		}
	}

	return strings.Join(parts, "\n")
}

func (e *MaterializerError) Unwrap() error {
	return e.Cause
}

// Error constructors for common scenarios

// ConfigError creates errors related to environment and table configuration
func ConfigError(operation, issue string, cause error) *MaterializerError {
	return &MaterializerError{
		Operation: operation,
		Component: "configuration",
		Issue:     issue,
		Cause:     cause,
	}
}

// ConfigValidationError creates detailed validation errors with suggestions
func ConfigValidationError(field, value, issue string, suggestions []string) *MaterializerError {
	return &MaterializerError{
		Operation:   "Configuration validation",
		Component:   "configuration",
		Issue:       issue,
		Context:     fmt.Sprintf("Field '%s' has value '%s'", field, value),
		Suggestions: suggestions,
	}
}

// FragmentError creates errors for failures reading mounted secret fragments
func FragmentError(operation, path string, cause error) *MaterializerError {
	return &MaterializerError{
		Operation: operation,
		Component: "secret fragments",
		Issue:     "Failed to read mounted secret material",
		Context:   fmt.Sprintf("Fragment path: %s", path),
		Suggestions: []string{
			fmt.Sprintf("Check the secret mount: ls -la '%s'", getDirPath(path)),
			"Verify the orchestrator mounted the secret volume before starting the container",
			"Check the file is readable by the container user",
		},
		Cause: cause,
	}
}

// ArtifactError creates errors for writes to the target configuration artifact
func ArtifactError(operation, path, issue string, cause error) *MaterializerError {
	suggestions := []string{}

	if cause != nil && strings.Contains(cause.Error(), "permission denied") {
		suggestions = append(suggestions,
			fmt.Sprintf("Check write permissions on '%s'", path),
			fmt.Sprintf("Check parent directory permissions: ls -la '%s'", getDirPath(path)),
		)
	} else if cause != nil && strings.Contains(cause.Error(), "no such file or directory") {
		suggestions = append(suggestions,
			fmt.Sprintf("Verify the path is correct: '%s'", path),
			fmt.Sprintf("Create parent directory: mkdir -p '%s'", getDirPath(path)),
		)
	}

	return &MaterializerError{
		Operation:   operation,
		Component:   "config artifact",
		Issue:       issue,
		Context:     fmt.Sprintf("Target path: %s", path),
		Suggestions: suggestions,
		Cause:       cause,
	}
}

// ResolveError creates errors for 1Password reference resolution failures
func ResolveError(fragment, reference string, cause error) *MaterializerError {
	suggestions := []string{
		"Verify the 1Password reference format: op://Vault/Item/field",
		"Check the service account has access to the referenced vault",
	}
	if cause == nil {
		// A reference with no resolver configured: refusing to launch the
		// service with the literal reference where a credential belongs.
		suggestions = []string{
			"Set OP_SERVICE_ACCOUNT_TOKEN in the container environment",
			"Or mount a token file at the OP_TOKEN_FILE path",
		}
	}

	return &MaterializerError{
		Operation:   "Resolving secret reference",
		Component:   "1Password integration",
		Issue:       fmt.Sprintf("Cannot resolve reference '%s'", reference),
		Context:     fmt.Sprintf("Fragment: %s", fragment),
		Suggestions: suggestions,
		Cause:       cause,
	}
}

// TokenError creates token-related errors with setup instructions
func TokenError(issue, tokenPath string, cause error) *MaterializerError {
	return &MaterializerError{
		Operation: "Token access",
		Component: "authentication",
		Issue:     issue,
		Context:   fmt.Sprintf("Token file: %s", tokenPath),
		Suggestions: []string{
			"Set OP_SERVICE_ACCOUNT_TOKEN in the container environment",
			fmt.Sprintf("Or mount the token file: %s", tokenPath),
		},
		Cause: cause,
	}
}

// ExecError creates errors for the final process-replacement step
func ExecError(command string, cause error) *MaterializerError {
	return &MaterializerError{
		Operation: "Replacing process image",
		Component: "exec",
		Issue:     fmt.Sprintf("Cannot exec target command '%s'", command),
		Suggestions: []string{
			"Check the target binary exists in the image and is executable",
			"Check PATH if the command was given without a directory",
		},
		Cause: cause,
	}
}

// Wrap provides a simple way to wrap existing errors with materializer context
func Wrap(err error, operation, component string) error {
	if err == nil {
		return nil
	}

	return &MaterializerError{
		Operation: operation,
		Component: component,
		Issue:     err.Error(),
		Cause:     err,
	}
}

func getDirPath(filePath string) string {
	lastSlash := strings.LastIndex(filePath, "/")
	if lastSlash == -1 {
		return "."
	}
	if lastSlash == 0 {
		return "/"
	}
	return filePath[:lastSlash]
}
