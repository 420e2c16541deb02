// Package research provides the web research capability of the agent
// loop: navigation, search, extraction, link following, and multi-step
// plan execution, plus the retry, cache, and timeout decorators that make
// those operations resilient and idempotent.
//
// Environments report failures two ways. An error return is an
// operational failure that a Retrying decorator may retry. A Result with
// Success=false and a nil error is terminal: a precondition miss (no
// current page, no search provider) or an already-shaped failure from a
// decorator. Decorators compose around the Environment interface, so any
// subset of retry/cache/timeout behavior can be selected at construction
// time.
package research

import (
	"context"
	"strings"
)

// WebPage is one rendered page. It is owned by the environment that
// produced it; callers read it and never mutate it in place.
type WebPage struct {
	URL     string   `json:"url"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Links   []string `json:"links,omitempty"`
}

// Result is the outcome of a research operation. PagesVisited is
// cumulative across the environment's lifetime, not just the current
// call, and is kept deduplicated.
type Result struct {
	Success       bool     `json:"success"`
	PagesVisited  []string `json:"pages_visited,omitempty"`
	CurrentPage   *WebPage `json:"current_page,omitempty"`
	ExtractedInfo string   `json:"extracted_info,omitempty"`
	ErrorMessage  string   `json:"error_message,omitempty"`
}

// Environment is the narrow research port the controller calls through.
type Environment interface {
	Navigate(ctx context.Context, url string) (Result, error)
	Search(ctx context.Context, query string) (Result, error)
	ExtractInfo(ctx context.Context, selector string) (Result, error)
	FollowLink(ctx context.Context, linkText string) (Result, error)
	ExecutePlan(ctx context.Context, plan string) (Result, error)
}

// PageState exposes the mutable navigation state of a concrete
// environment. The Cached decorator uses it to resync state from a cache
// hit so subsequent uncached calls behave as if the call had executed.
type PageState interface {
	CurrentPage() *WebPage
	SetCurrentPage(p *WebPage)
	Visited() []string
	RecordVisits(urls ...string)
}

type ctxKey int

const skipCacheKey ctxKey = iota

// WithoutCache returns a context that makes Cached decorators bypass
// their tiers for calls carried on it. The underlying capability is
// always invoked and its result still written through.
func WithoutCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipCacheKey, true)
}

func cacheDisabled(ctx context.Context) bool {
	v, _ := ctx.Value(skipCacheKey).(bool)
	return v
}

// searchResultsURL is the synthetic page recorded for a search, so the
// cumulative visit log reflects that a results page was consulted.
func searchResultsURL(query string) string {
	return "https://www.google.com/search?q=" + strings.ReplaceAll(query, " ", "+")
}
