package research

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// countingEnv wraps Simulated and counts underlying calls per operation.
// PageState is satisfied through the embedded environment.
type countingEnv struct {
	*Simulated
	navigates, searches, extracts, follows, plans int
}

func (c *countingEnv) Navigate(ctx context.Context, url string) (Result, error) {
	c.navigates++
	return c.Simulated.Navigate(ctx, url)
}
func (c *countingEnv) Search(ctx context.Context, query string) (Result, error) {
	c.searches++
	return c.Simulated.Search(ctx, query)
}
func (c *countingEnv) ExtractInfo(ctx context.Context, selector string) (Result, error) {
	c.extracts++
	return c.Simulated.ExtractInfo(ctx, selector)
}
func (c *countingEnv) FollowLink(ctx context.Context, linkText string) (Result, error) {
	c.follows++
	return c.Simulated.FollowLink(ctx, linkText)
}
func (c *countingEnv) ExecutePlan(ctx context.Context, plan string) (Result, error) {
	c.plans++
	return c.Simulated.ExecutePlan(ctx, plan)
}

func testSite() *Simulated {
	return NewSimulated(
		&WebPage{
			URL:     "https://go.dev",
			Title:   "The Go Programming Language",
			Content: "Go is an open source programming language.\nGo 1.0 was released in March 2012.",
			Links:   []string{"https://go.dev/blog"},
		},
		&WebPage{
			URL:     "https://go.dev/blog",
			Title:   "The Go Blog",
			Content: "Articles about Go.",
		},
	)
}

func TestCacheServesRepeatedNavigate(t *testing.T) {
	env := &countingEnv{Simulated: testSite()}
	c := NewCached(env, nil)
	ctx := context.Background()

	first, err := c.Navigate(ctx, "https://go.dev")
	if err != nil || !first.Success {
		t.Fatalf("unexpected outcome: %+v, %v", first, err)
	}
	second, err := c.Navigate(ctx, "https://go.dev")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.navigates != 1 {
		t.Errorf("expected 1 underlying navigate, got %d", env.navigates)
	}
	if second.ExtractedInfo != first.ExtractedInfo {
		t.Errorf("cached result diverged:\n  first  %q\n  second %q", first.ExtractedInfo, second.ExtractedInfo)
	}
}

func TestCacheBypassViaContext(t *testing.T) {
	env := &countingEnv{Simulated: testSite()}
	c := NewCached(env, nil)
	ctx := context.Background()

	if _, err := c.Search(ctx, "go"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Search(WithoutCache(ctx), "go"); err != nil {
		t.Fatal(err)
	}
	if env.searches != 2 {
		t.Errorf("expected the bypassed call to hit the base, got %d searches", env.searches)
	}
	// The bypassed call still wrote through; a normal call now hits.
	if _, err := c.Search(ctx, "go"); err != nil {
		t.Fatal(err)
	}
	if env.searches != 2 {
		t.Errorf("expected a cache hit after write-through, got %d searches", env.searches)
	}
}

func TestCachePersistedTierPromotion(t *testing.T) {
	store := NewMemoryStore()
	payload, err := json.Marshal(Result{
		Success:       true,
		ExtractedInfo: "seeded content",
		CurrentPage:   &WebPage{URL: "https://seeded.test", Title: "Seeded"},
		PagesVisited:  []string{"https://seeded.test"},
	})
	if err != nil {
		t.Fatal(err)
	}
	store.Put(context.Background(), "navigate_https://seeded.test", payload)

	env := &countingEnv{Simulated: NewSimulated()}
	c := NewCached(env, store)
	ctx := context.Background()

	res, err := c.Navigate(ctx, "https://seeded.test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || res.ExtractedInfo != "seeded content" {
		t.Fatalf("expected the persisted record, got %+v", res)
	}
	if env.navigates != 0 {
		t.Errorf("persisted hit must not call the base, got %d navigates", env.navigates)
	}

	// A navigate hit resyncs the base environment's page state.
	if page := env.CurrentPage(); page == nil || page.URL != "https://seeded.test" {
		t.Errorf("expected page state resynced from the hit, got %+v", page)
	}

	// The hit was promoted: dropping the persisted tier still serves it.
	store.Clear(ctx)
	if _, err := c.Navigate(ctx, "https://seeded.test"); err != nil {
		t.Fatal(err)
	}
	if env.navigates != 0 {
		t.Errorf("expected a memory-tier hit after promotion, got %d navigates", env.navigates)
	}
}

func TestCacheWritesThroughToPersistedTier(t *testing.T) {
	store := NewMemoryStore()
	env := &countingEnv{Simulated: testSite()}
	c := NewCached(env, store)

	if _, err := c.Navigate(context.Background(), "https://go.dev"); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Get(context.Background(), "navigate_https://go.dev"); !ok {
		t.Error("expected the result written to the persisted tier")
	}
}

func TestCacheCorruptRecordIsAMiss(t *testing.T) {
	store := NewMemoryStore()
	store.Put(context.Background(), "navigate_https://go.dev", []byte("{not json"))

	env := &countingEnv{Simulated: testSite()}
	c := NewCached(env, store)

	res, err := c.Navigate(context.Background(), "https://go.dev")
	if err != nil || !res.Success {
		t.Fatalf("expected fallthrough to the base, got %+v, %v", res, err)
	}
	if env.navigates != 1 {
		t.Errorf("expected the base called on a corrupt record, got %d", env.navigates)
	}
}

func TestCacheSkipsFailures(t *testing.T) {
	env := &countingEnv{Simulated: testSite()}
	c := NewCached(env, nil)
	ctx := context.Background()

	// Unknown URL is an operational failure; it must not be cached.
	if _, err := c.Navigate(ctx, "https://unknown.test"); err == nil {
		t.Fatal("expected an error for an unknown URL")
	}
	if _, err := c.Navigate(ctx, "https://unknown.test"); err == nil {
		t.Fatal("expected the second call to hit the base again")
	}
	if env.navigates != 2 {
		t.Errorf("failures must not be served from cache, got %d navigates", env.navigates)
	}
}

func TestCacheExtractBypassWithoutCurrentPage(t *testing.T) {
	env := &countingEnv{Simulated: NewSimulated()}
	c := NewCached(env, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := c.ExtractInfo(ctx, "anything")
		if err != nil {
			t.Fatal(err)
		}
		if res.Success {
			t.Fatal("expected the precondition failure")
		}
	}
	if env.extracts != 2 {
		t.Errorf("without a current page the cache must be bypassed, got %d extracts", env.extracts)
	}
}

func TestCacheExtractKeyedOnCurrentPage(t *testing.T) {
	env := &countingEnv{Simulated: testSite()}
	c := NewCached(env, nil)
	ctx := context.Background()

	if _, err := c.Navigate(ctx, "https://go.dev"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ExtractInfo(ctx, "released"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ExtractInfo(ctx, "released"); err != nil {
		t.Fatal(err)
	}
	if env.extracts != 1 {
		t.Errorf("expected a hit for the same page and selector, got %d extracts", env.extracts)
	}

	// A different page means a different key.
	if _, err := c.Navigate(ctx, "https://go.dev/blog"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ExtractInfo(ctx, "released"); err != nil {
		t.Fatal(err)
	}
	if env.extracts != 2 {
		t.Errorf("expected a miss on a new page, got %d extracts", env.extracts)
	}
}

func TestCachePlanKeyedByContent(t *testing.T) {
	env := &countingEnv{Simulated: testSite()}
	c := NewCached(env, nil)
	ctx := context.Background()

	if _, err := c.ExecutePlan(ctx, "go\nread the homepage"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ExecutePlan(ctx, "go\nread the homepage"); err != nil {
		t.Fatal(err)
	}
	if env.plans != 1 {
		t.Errorf("identical plans must share one cache entry, got %d plans", env.plans)
	}
	if _, err := c.ExecutePlan(ctx, "blog\nfind articles"); err != nil {
		t.Fatal(err)
	}
	if env.plans != 2 {
		t.Errorf("a different plan must miss, got %d plans", env.plans)
	}
}

func TestClearCache(t *testing.T) {
	store := NewMemoryStore()
	env := &countingEnv{Simulated: testSite()}
	c := NewCached(env, store)
	ctx := context.Background()

	if _, err := c.Navigate(ctx, "https://go.dev"); err != nil {
		t.Fatal(err)
	}
	c.ClearCache(ctx)
	if store.Len() != 0 {
		t.Errorf("expected the persisted tier cleared, got %d records", store.Len())
	}
	if _, err := c.Navigate(ctx, "https://go.dev"); err != nil {
		t.Fatal(err)
	}
	if env.navigates != 2 {
		t.Errorf("expected a miss after clearing, got %d navigates", env.navigates)
	}
}

func TestFileStoreRoundtrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	store.Put(ctx, "navigate_https://go.dev", []byte(`{"success":true}`))

	got, ok := store.Get(ctx, "navigate_https://go.dev")
	if !ok || string(got) != `{"success":true}` {
		t.Fatalf("roundtrip failed: %q, %v", got, ok)
	}
	if _, ok := store.Get(ctx, "missing"); ok {
		t.Error("expected a miss for an unknown key")
	}

	// The key is made filesystem-safe.
	if _, err := os.Stat(filepath.Join(dir, "navigate_https___go_dev.json")); err != nil {
		t.Errorf("expected a sanitized filename: %v", err)
	}

	store.Clear(ctx)
	if _, ok := store.Get(ctx, "navigate_https://go.dev"); ok {
		t.Error("expected the record removed by Clear")
	}
}

func TestSafeKey(t *testing.T) {
	cases := map[string]string{
		"navigate_https://go.dev": "navigate_https___go_dev",
		"search_go generics":      "search_go_generics",
		"plain123":                "plain123",
	}
	for in, want := range cases {
		if got := safeKey(in); got != want {
			t.Errorf("safeKey(%q) = %q, want %q", in, got, want)
		}
	}
}
