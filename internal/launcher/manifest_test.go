package launcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/woxQAQ/hellofriend/pkg/protocol"
)

func TestManifestPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello_friend.wasm", "hello_friend.yaml"},
		{filepath.Join("a", "b", "mod.wasm"), filepath.Join("a", "b", "mod.yaml")},
		{"noext", "noext.yaml"},
	}

	for _, tt := range tests {
		if got := ManifestPath(tt.in); got != tt.want {
			t.Errorf("ManifestPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadManifest_Missing(t *testing.T) {
	m, err := LoadManifest(filepath.Join(t.TempDir(), "mod.wasm"))
	if err != nil {
		t.Fatalf("LoadManifest() failed: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil manifest, got %+v", m)
	}
}

func TestLoadManifest_Defaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mod.yaml"), []byte("name: mod\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(filepath.Join(dir, "mod.wasm"))
	if err != nil {
		t.Fatalf("LoadManifest() failed: %v", err)
	}

	if m.Name != "mod" {
		t.Errorf("expected Name 'mod', got '%s'", m.Name)
	}
	if m.Entry != "" {
		t.Errorf("expected empty Entry, got '%s'", m.Entry)
	}
	if m.Layout != protocol.DefaultLayout() {
		t.Errorf("expected default layout, got %+v", m.Layout)
	}
	if m.Path() != filepath.Join(dir, "mod.yaml") {
		t.Errorf("unexpected path %s", m.Path())
	}
}

func TestLoadManifest_PartialLayout(t *testing.T) {
	dir := t.TempDir()
	data := []byte("name: mod\nlayout:\n  start_string: 256\n")
	if err := os.WriteFile(filepath.Join(dir, "mod.yaml"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(filepath.Join(dir, "mod.wasm"))
	if err != nil {
		t.Fatalf("LoadManifest() failed: %v", err)
	}

	if m.Layout.StartString != 256 {
		t.Errorf("expected start_string 256, got %d", m.Layout.StartString)
	}
	if m.Layout.MemoryPages != protocol.DefaultMemoryPages {
		t.Errorf("expected default memory pages, got %d", m.Layout.MemoryPages)
	}
}

func TestLoadManifest_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mod.yaml"), []byte("name: [unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadManifest(filepath.Join(dir, "mod.wasm"))
	if _, ok := err.(*ManifestParseError); !ok {
		t.Errorf("expected ManifestParseError, got %T", err)
	}
}

func TestLoadManifest_Validation(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		field string
	}{
		{"missing name", "entry: hellofriend\n", "name"},
		{"zero pages", "name: mod\nlayout:\n  memory_pages: 0\n", "layout.memory_pages"},
		{"bad version", "name: mod\nlayout:\n  version: 7\n", "layout.version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "mod.yaml"), []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := LoadManifest(filepath.Join(dir, "mod.wasm"))
			validationErr, ok := err.(*ManifestValidationError)
			if !ok {
				t.Fatalf("expected ManifestValidationError, got %T (%v)", err, err)
			}
			if validationErr.Field != tt.field {
				t.Errorf("expected field '%s', got '%s'", tt.field, validationErr.Field)
			}
		})
	}
}
