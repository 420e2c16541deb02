package research

import (
	"context"
	"fmt"
	"time"
)

// WithTimeout runs fn with a deadline. On expiry the derived context is
// cancelled (best-effort: the goroutine may still be running) and the
// caller-supplied fallback is returned instead of an error, so a timeout
// is indistinguishable from an ordinary failure at the caller's layer.
func WithTimeout[T any](ctx context.Context, limit time.Duration, fallback T, fn func(ctx context.Context) T) T {
	if limit <= 0 {
		return fn(ctx)
	}
	tctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	done := make(chan T, 1)
	go func() {
		done <- fn(tctx)
	}()

	select {
	case v := <-done:
		return v
	case <-tctx.Done():
		return fallback
	}
}

// Timebound decorates an Environment so every call is bounded by one
// limit, substituting a failure-shaped Result on expiry.
type Timebound struct {
	base  Environment
	state PageState
	limit time.Duration
}

// NewTimebound wraps base with a per-call time limit.
func NewTimebound(base Environment, limit time.Duration) *Timebound {
	state, _ := base.(PageState)
	return &Timebound{base: base, state: state, limit: limit}
}

// Navigate bounds the wrapped Navigate.
func (t *Timebound) Navigate(ctx context.Context, url string) (Result, error) {
	return t.bound(ctx, "navigate", func(ctx context.Context) (Result, error) {
		return t.base.Navigate(ctx, url)
	})
}

// Search bounds the wrapped Search.
func (t *Timebound) Search(ctx context.Context, query string) (Result, error) {
	return t.bound(ctx, "search", func(ctx context.Context) (Result, error) {
		return t.base.Search(ctx, query)
	})
}

// ExtractInfo bounds the wrapped ExtractInfo.
func (t *Timebound) ExtractInfo(ctx context.Context, selector string) (Result, error) {
	return t.bound(ctx, "extract_info", func(ctx context.Context) (Result, error) {
		return t.base.ExtractInfo(ctx, selector)
	})
}

// FollowLink bounds the wrapped FollowLink.
func (t *Timebound) FollowLink(ctx context.Context, linkText string) (Result, error) {
	return t.bound(ctx, "follow_link", func(ctx context.Context) (Result, error) {
		return t.base.FollowLink(ctx, linkText)
	})
}

// ExecutePlan bounds the wrapped ExecutePlan.
func (t *Timebound) ExecutePlan(ctx context.Context, plan string) (Result, error) {
	return t.bound(ctx, "execute_research_plan", func(ctx context.Context) (Result, error) {
		return t.base.ExecutePlan(ctx, plan)
	})
}

// CurrentPage delegates to the wrapped environment's state, if any.
func (t *Timebound) CurrentPage() *WebPage {
	if t.state == nil {
		return nil
	}
	return t.state.CurrentPage()
}

// SetCurrentPage delegates to the wrapped environment's state, if any.
func (t *Timebound) SetCurrentPage(p *WebPage) {
	if t.state != nil {
		t.state.SetCurrentPage(p)
	}
}

// Visited delegates to the wrapped environment's state, if any.
func (t *Timebound) Visited() []string {
	if t.state == nil {
		return nil
	}
	return t.state.Visited()
}

// RecordVisits delegates to the wrapped environment's state, if any.
func (t *Timebound) RecordVisits(urls ...string) {
	if t.state != nil {
		t.state.RecordVisits(urls...)
	}
}

type boundOutcome struct {
	res Result
	err error
}

func (t *Timebound) bound(ctx context.Context, op string, call func(ctx context.Context) (Result, error)) (Result, error) {
	fallback := boundOutcome{res: Result{
		Success: false,
		ExtractedInfo: fmt.Sprintf(
			"The %s operation could not be completed in time. Please try again or try a different approach.", op),
		ErrorMessage: fmt.Sprintf("operation %s timed out after %s", op, t.limit),
	}}
	out := WithTimeout(ctx, t.limit, fallback, func(ctx context.Context) boundOutcome {
		res, err := call(ctx)
		return boundOutcome{res: res, err: err}
	})
	return out.res, out.err
}
