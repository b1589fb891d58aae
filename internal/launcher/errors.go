package launcher

import (
	"fmt"
)

// ManifestParseError occurs when a module manifest cannot be parsed as YAML.
type ManifestParseError struct {
	Path string
	Err  error
}

func (e *ManifestParseError) Error() string {
	return fmt.Sprintf("failed to parse manifest at '%s': %v", e.Path, e.Err)
}

func (e *ManifestParseError) Unwrap() error {
	return e.Err
}

// ManifestValidationError occurs when a module manifest fails validation.
type ManifestValidationError struct {
	Path    string
	Field   string
	Message string
}

func (e *ManifestValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("manifest validation failed at '%s': %s (field: %s)",
			e.Path, e.Message, e.Field)
	}
	return fmt.Sprintf("manifest validation failed at '%s': %s", e.Path, e.Message)
}

// LoadError occurs when any step of the one-shot load fails.
type LoadError struct {
	ModulePath string
	Step       string
	Err        error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to %s '%s': %v", e.Step, e.ModulePath, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
