// Package websearch provides web search providers behind a narrow
// Searcher interface. Providers are thin HTTP clients; API keys are the
// caller's concern and arrive via configuration.
package websearch

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher discovers up to k results for a query.
type Searcher interface {
	Discover(ctx context.Context, query string, k int) ([]Result, error)
}

// Provider names a search backend.
type Provider string

const (
	BraveProvider  Provider = "brave"
	SerperProvider Provider = "serper"
)

// ErrUnsupportedProvider is returned by New for unknown provider names.
var ErrUnsupportedProvider = errors.New("websearch: unsupported provider")

// New constructs the Searcher for a provider.
func New(provider Provider, apiKey string) (Searcher, error) {
	switch provider {
	case BraveProvider:
		return Brave{APIKey: apiKey}, nil
	case SerperProvider:
		return Serper{APIKey: apiKey}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

func httpClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: 15 * time.Second}
}
