package blog

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woxQAQ/hellofriend/internal/config"
	"github.com/woxQAQ/hellofriend/pkg/protocol"
	"go.uber.org/zap/zaptest"
)

func newTestServer(t *testing.T, minifyOutput bool) *Server {
	t.Helper()
	return NewServer(config.BlogConfig{
		Addr:      "127.0.0.1:0",
		PostsDir:  "testdata/posts",
		AssetsDir: "testdata/assets",
		Minify:    minifyOutput,
	}, zaptest.NewLogger(t))
}

func do(t *testing.T, s *Server, method, target string, body io.Reader) (int, string, http.Header) {
	t.Helper()

	resp, err := s.App().Test(httptest.NewRequest(method, target, body))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(b), resp.Header
}

func TestDefaultHandler(t *testing.T) {
	s := newTestServer(t, false)

	tests := []struct {
		method string
		body   io.Reader
		code   int
		want   string
	}{
		{http.MethodGet, nil, http.StatusOK, "Hello, friend."},
		{http.MethodPost, strings.NewReader("<world>"), http.StatusOK, "Hello, &lt;world&gt;!"},
		{http.MethodPut, nil, http.StatusMethodNotAllowed, ""},
		{http.MethodHead, nil, http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			code, body, _ := do(t, s, tt.method, "/", tt.body)
			assert.Equal(t, tt.code, code)
			if tt.want != "" {
				assert.Equal(t, tt.want, body)
			}
		})
	}
}

func TestHelloHypertext(t *testing.T) {
	s := newTestServer(t, false)

	code, body, _ := do(t, s, http.MethodGet, "/hello-hypertext", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Hello friend.", body)
}

func TestBlogPage(t *testing.T) {
	s := newTestServer(t, false)

	code, body, header := do(t, s, http.MethodGet, "/blog/post1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, header.Get("Content-Type"), "text/html")

	for _, id := range []string{"title", "timestamp", "sitemap", "main", "contact-form", "content-info"} {
		assert.Contains(t, body, `id="`+id+`"`)
	}

	assert.Contains(t, body, "First &lt;post&gt;")
	assert.Contains(t, body, "<strong>bold</strong>")
	assert.Contains(t, body, "2021-03-14")
}

func TestBlogPageMinified(t *testing.T) {
	plain := newTestServer(t, false)
	minified := newTestServer(t, true)

	_, full, _ := do(t, plain, http.MethodGet, "/blog/post1", nil)
	code, small, _ := do(t, minified, http.MethodGet, "/blog/post1", nil)

	require.Equal(t, http.StatusOK, code)
	assert.Less(t, len(small), len(full))
	assert.Contains(t, small, "<strong>bold</strong>")
}

func TestBlogPostJSON(t *testing.T) {
	s := newTestServer(t, false)

	code, body, header := do(t, s, http.MethodGet, "/blog/post1.json", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, header.Get("Content-Type"), "application/json")

	var post protocol.Post
	require.NoError(t, json.Unmarshal([]byte(body), &post))
	assert.Equal(t, "First <post>", post.Title)
	assert.Equal(t, "Some **bold** text.", post.Main)
}

func TestBlogPostErrors(t *testing.T) {
	s := newTestServer(t, false)

	tests := []struct {
		name   string
		target string
		code   int
	}{
		{"missing", "/blog/nope", http.StatusNotFound},
		{"missing json", "/blog/nope.json", http.StatusNotFound},
		{"bad json", "/blog/broken", http.StatusInternalServerError},
		{"escaped separator", "/blog/..%2Fsecret", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := do(t, s, http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestAssets(t *testing.T) {
	s := newTestServer(t, false)

	code, body, _ := do(t, s, http.MethodGet, "/assets/site.css", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "margin")
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, false)

	_, _, header := do(t, s, http.MethodGet, "/hello-hypertext", nil)
	assert.Equal(t, "nosniff", header.Get("X-Content-Type-Options"))
}
