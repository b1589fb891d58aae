package page

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/woxQAQ/hellofriend/pkg/protocol"
)

// Fetcher retrieves the post shown on the page.
type Fetcher interface {
	Fetch(ctx context.Context) (*protocol.Post, error)
}

// HTTPFetcher GETs a post from a URL resolved against the page URL.
type HTTPFetcher struct {
	client *http.Client
	url    string
}

// NewHTTPFetcher resolves postPath (e.g. "post1.json") relative to pageURL.
// A nil client uses http.DefaultClient.
func NewHTTPFetcher(pageURL, postPath string, client *http.Client) (*HTTPFetcher, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
	}
	ref, err := url.Parse(postPath)
	if err != nil {
		return nil, fmt.Errorf("invalid post path %q: %w", postPath, err)
	}

	if client == nil {
		client = http.DefaultClient
	}

	return &HTTPFetcher{
		client: client,
		url:    base.ResolveReference(ref).String(),
	}, nil
}

// URL returns the resolved post URL.
func (f *HTTPFetcher) URL() string {
	return f.url
}

// Fetch GETs the post and decodes it.
func (f *HTTPFetcher) Fetch(ctx context.Context) (*protocol.Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", f.url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: f.url, StatusCode: resp.StatusCode}
	}

	var post protocol.Post
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return nil, &DecodeError{URL: f.url, Err: err}
	}

	return &post, nil
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) (*protocol.Post, error)

func (f FetcherFunc) Fetch(ctx context.Context) (*protocol.Post, error) {
	return f(ctx)
}
