package launcher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/woxQAQ/hellofriend/pkg/protocol"
	"gopkg.in/yaml.v3"
)

// Manifest is an optional descriptor stored next to a module binary, as
// hello_friend.yaml beside hello_friend.wasm. It overrides the entry point
// and memory layout the host would otherwise assume.
type Manifest struct {
	Name   string          `json:"name" yaml:"name" jsonschema:"description=Module name used in logs"`
	Entry  string          `json:"entry,omitempty" yaml:"entry" jsonschema:"description=Exported function to call (default hellofriend)"`
	Layout protocol.Layout `json:"layout,omitempty" yaml:"layout"`

	path string
}

// ManifestPath returns where the manifest for a module binary lives.
func ManifestPath(modulePath string) string {
	return strings.TrimSuffix(modulePath, filepath.Ext(modulePath)) + ".yaml"
}

// LoadManifest reads the manifest for modulePath. A missing manifest is not
// an error: it returns nil.
func LoadManifest(modulePath string) (*Manifest, error) {
	path := ManifestPath(modulePath)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	// Unset layout fields fall back to the default layout.
	m := Manifest{Layout: protocol.DefaultLayout(), path: path}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &ManifestParseError{
			Path: path,
			Err:  err,
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks manifest fields.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return &ManifestValidationError{
			Path:    m.path,
			Field:   "name",
			Message: "name is required",
		}
	}

	if err := m.Layout.Validate(); err != nil {
		var layoutErr *protocol.LayoutError
		if errors.As(err, &layoutErr) {
			return &ManifestValidationError{
				Path:    m.path,
				Field:   "layout." + layoutErr.Field,
				Message: layoutErr.Message,
			}
		}
		return err
	}

	return nil
}

// Path returns the manifest file path.
func (m *Manifest) Path() string {
	return m.path
}
