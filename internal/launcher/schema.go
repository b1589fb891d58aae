package launcher

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// ManifestSchema returns the JSON Schema of the module manifest, for editors
// and for checking manifests by hand.
func ManifestSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(&Manifest{})

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest schema: %w", err)
	}
	return data, nil
}
