package blog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/woxQAQ/hellofriend/pkg/protocol"
)

// PostExt is the extension of post files in the posts directory.
const PostExt = ".json"

// Store reads posts from <dir>/<name>.json.
type Store struct {
	dir string
}

// NewStore creates a store over dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Load reads and decodes the post called name.
func (s *Store) Load(name string) (*protocol.Post, error) {
	if !validName(name) {
		return nil, &PostNotFoundError{Name: name}
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name+PostExt))
	if err != nil {
		return nil, &PostNotFoundError{Name: name, Err: err}
	}

	var post protocol.Post
	if err := json.Unmarshal(data, &post); err != nil {
		return nil, &PostDecodeError{Name: name, Err: err}
	}

	return &post, nil
}

// validName accepts plain file names only; no separators, no escapes and no
// parent references.
func validName(name string) bool {
	if name == "" || strings.Contains(name, "..") {
		return false
	}
	return !strings.ContainsAny(name, `/\%`)
}
