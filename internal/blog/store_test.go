package blog

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLoad(t *testing.T) {
	post, err := NewStore("testdata/posts").Load("post1")
	require.NoError(t, err)

	assert.Equal(t, "First <post>", post.Title)
	assert.Equal(t, "footer", post.ContentInfo)
}

func TestStoreLoadMissing(t *testing.T) {
	_, err := NewStore("testdata/posts").Load("missing")

	var notFound *PostNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestStoreLoadDecodeError(t *testing.T) {
	_, err := NewStore("testdata/posts").Load("broken")

	var decodeErr *PostDecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestStoreRejectsUnsafeNames(t *testing.T) {
	store := NewStore("testdata/posts")

	for _, name := range []string{"", "..", "../posts/post1", `..\post1`, "a/b", "..%2Fpost1"} {
		_, err := store.Load(name)

		var notFound *PostNotFoundError
		assert.ErrorAs(t, err, &notFound, "name %q", name)
	}
}
