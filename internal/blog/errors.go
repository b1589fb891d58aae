package blog

import (
	"fmt"
)

// PostNotFoundError occurs when no post file exists for a name, or the name
// is not a plain file name.
type PostNotFoundError struct {
	Name string
	Err  error
}

func (e *PostNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("post '%s' not found: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("post '%s' not found", e.Name)
}

func (e *PostNotFoundError) Unwrap() error {
	return e.Err
}

// PostDecodeError occurs when a post file is not valid JSON.
type PostDecodeError struct {
	Name string
	Err  error
}

func (e *PostDecodeError) Error() string {
	return fmt.Sprintf("failed to decode post '%s': %v", e.Name, e.Err)
}

func (e *PostDecodeError) Unwrap() error {
	return e.Err
}
