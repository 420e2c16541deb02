package research

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
)

// Store is a persisted cache tier. Both methods are best-effort: a failed
// read is a miss and a failed write is swallowed — cache durability is
// advisory, never a correctness requirement.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, value []byte)
}

// Clearer is optionally implemented by stores that can drop all records.
type Clearer interface {
	Clear(ctx context.Context)
}

// Cached decorates an Environment with a read/write-through,
// content-addressed cache: a fast in-memory tier backed by an optional
// persisted Store. Persisted hits are promoted into the memory tier. On a
// hit for navigate, follow_link, or execute_research_plan the wrapped
// environment's page state is resynced from the cached payload, so later
// uncached calls see consistent state.
type Cached struct {
	base      Environment
	state     PageState
	persisted Store

	mu  sync.Mutex
	mem map[string][]byte
}

// NewCached wraps base with an in-memory tier and an optional persisted
// store (nil means memory-only).
func NewCached(base Environment, persisted Store) *Cached {
	state, _ := base.(PageState)
	return &Cached{
		base:      base,
		state:     state,
		persisted: persisted,
		mem:       make(map[string][]byte),
	}
}

// Navigate serves navigate_<url> from cache when possible.
func (c *Cached) Navigate(ctx context.Context, url string) (Result, error) {
	return c.through(ctx, "navigate_"+url, true, func(ctx context.Context) (Result, error) {
		return c.base.Navigate(ctx, url)
	})
}

// Search serves search_<query> from cache when possible.
func (c *Cached) Search(ctx context.Context, query string) (Result, error) {
	return c.through(ctx, "search_"+query, false, func(ctx context.Context) (Result, error) {
		return c.base.Search(ctx, query)
	})
}

// ExtractInfo keys on the current page URL plus the selector. Without a
// current page the cache is bypassed so the base environment can report
// its precondition failure.
func (c *Cached) ExtractInfo(ctx context.Context, selector string) (Result, error) {
	page := c.currentPage()
	if page == nil {
		return c.base.ExtractInfo(ctx, selector)
	}
	return c.through(ctx, "extract_"+page.URL+"_"+selector, false, func(ctx context.Context) (Result, error) {
		return c.base.ExtractInfo(ctx, selector)
	})
}

// FollowLink keys on the current page URL plus the link text.
func (c *Cached) FollowLink(ctx context.Context, linkText string) (Result, error) {
	page := c.currentPage()
	if page == nil {
		return c.base.FollowLink(ctx, linkText)
	}
	return c.through(ctx, "follow_"+page.URL+"_"+linkText, true, func(ctx context.Context) (Result, error) {
		return c.base.FollowLink(ctx, linkText)
	})
}

// ExecutePlan keys on a content hash of the free-text plan.
func (c *Cached) ExecutePlan(ctx context.Context, plan string) (Result, error) {
	return c.through(ctx, "plan_"+contentHash(plan), true, func(ctx context.Context) (Result, error) {
		return c.base.ExecutePlan(ctx, plan)
	})
}

// ClearCache drops the in-memory tier and, best-effort, the persisted one.
func (c *Cached) ClearCache(ctx context.Context) {
	c.mu.Lock()
	c.mem = make(map[string][]byte)
	c.mu.Unlock()
	if clearer, ok := c.persisted.(Clearer); ok {
		clearer.Clear(ctx)
	}
}

// through implements the read-through/write-through flow for one key.
func (c *Cached) through(ctx context.Context, key string, resync bool, call func(context.Context) (Result, error)) (Result, error) {
	if !cacheDisabled(ctx) {
		if res, ok := c.lookup(ctx, key); ok {
			if resync {
				c.resyncState(res)
			}
			return res, nil
		}
	}

	res, err := call(ctx)
	if err != nil {
		return res, err
	}
	if res.Success {
		c.store(ctx, key, res)
	}
	return res, nil
}

// lookup checks the memory tier, then the persisted tier, promoting a
// persisted hit. A corrupt record is treated as a miss.
func (c *Cached) lookup(ctx context.Context, key string) (Result, bool) {
	c.mu.Lock()
	payload, ok := c.mem[key]
	c.mu.Unlock()

	if !ok && c.persisted != nil {
		if stored, hit := c.persisted.Get(ctx, key); hit {
			payload, ok = stored, true
			c.mu.Lock()
			c.mem[key] = stored
			c.mu.Unlock()
		}
	}
	if !ok {
		return Result{}, false
	}

	var res Result
	if err := json.Unmarshal(payload, &res); err != nil {
		return Result{}, false
	}
	return res, true
}

// store writes the memory tier unconditionally and the persisted tier
// best-effort.
func (c *Cached) store(ctx context.Context, key string, res Result) {
	payload, err := json.Marshal(res)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.mem[key] = payload
	c.mu.Unlock()
	if c.persisted != nil {
		c.persisted.Put(ctx, key, payload)
	}
}

func (c *Cached) resyncState(res Result) {
	if c.state == nil {
		return
	}
	if res.CurrentPage != nil {
		c.state.SetCurrentPage(res.CurrentPage)
	}
	if len(res.PagesVisited) > 0 {
		c.state.RecordVisits(res.PagesVisited...)
	}
}

func (c *Cached) currentPage() *WebPage {
	if c.state == nil {
		return nil
	}
	return c.state.CurrentPage()
}

// CurrentPage delegates to the wrapped environment's state, if any.
func (c *Cached) CurrentPage() *WebPage { return c.currentPage() }

// SetCurrentPage delegates to the wrapped environment's state, if any.
func (c *Cached) SetCurrentPage(p *WebPage) {
	if c.state != nil {
		c.state.SetCurrentPage(p)
	}
}

// Visited delegates to the wrapped environment's state, if any.
func (c *Cached) Visited() []string {
	if c.state == nil {
		return nil
	}
	return c.state.Visited()
}

// RecordVisits delegates to the wrapped environment's state, if any.
func (c *Cached) RecordVisits(urls ...string) {
	if c.state != nil {
		c.state.RecordVisits(urls...)
	}
}

// contentHash addresses free-text arguments (research plans) by content.
func contentHash(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
