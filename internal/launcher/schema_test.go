package launcher

import (
	"encoding/json"
	"testing"
)

func TestManifestSchema(t *testing.T) {
	data, err := ManifestSchema()
	if err != nil {
		t.Fatalf("ManifestSchema() failed: %v", err)
	}

	var schema struct {
		Type       string                     `json:"type"`
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
		Defs       map[string]struct {
			Properties map[string]json.RawMessage `json:"properties"`
		} `json:"$defs"`
	}
	if err := json.Unmarshal(data, &schema); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}

	if schema.Type != "object" {
		t.Errorf("expected type 'object', got '%s'", schema.Type)
	}

	for _, prop := range []string{"name", "entry", "layout"} {
		if _, ok := schema.Properties[prop]; !ok {
			t.Errorf("expected property '%s'", prop)
		}
	}

	if len(schema.Required) != 1 || schema.Required[0] != "name" {
		t.Errorf("expected only 'name' required, got %v", schema.Required)
	}

	layout, ok := schema.Defs["Layout"]
	if !ok {
		t.Fatal("expected Layout definition")
	}
	for _, prop := range []string{"version", "start_string", "memory_pages"} {
		if _, ok := layout.Properties[prop]; !ok {
			t.Errorf("expected layout property '%s'", prop)
		}
	}
}
