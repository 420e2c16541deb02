package research

import (
	"context"
	"fmt"
	"time"
)

// Retrying decorates an Environment with bounded retry and error logging.
// Each failed attempt is logged; after exhaustion the last error is
// converted into a failure-shaped Result with a nil error, so callers
// above the wrapper never see exceptions from the capability.
type Retrying struct {
	base       Environment
	state      PageState
	maxRetries int
	delay      time.Duration
	log        *ErrorLog
}

// NewRetrying wraps base with up to maxRetries attempts per call and the
// given delay between attempts. A nil log allocates a fresh one.
func NewRetrying(base Environment, maxRetries int, delay time.Duration, log *ErrorLog) *Retrying {
	if maxRetries < 1 {
		maxRetries = 1
	}
	if log == nil {
		log = NewErrorLog()
	}
	state, _ := base.(PageState)
	return &Retrying{
		base:       base,
		state:      state,
		maxRetries: maxRetries,
		delay:      delay,
		log:        log,
	}
}

// ErrorLog returns the log shared across all wrapped operations.
func (r *Retrying) ErrorLog() *ErrorLog { return r.log }

// Navigate retries the wrapped Navigate.
func (r *Retrying) Navigate(ctx context.Context, url string) (Result, error) {
	return r.do(ctx, "navigate", map[string]string{"url": url}, func(ctx context.Context) (Result, error) {
		return r.base.Navigate(ctx, url)
	})
}

// Search retries the wrapped Search.
func (r *Retrying) Search(ctx context.Context, query string) (Result, error) {
	return r.do(ctx, "search", map[string]string{"query": query}, func(ctx context.Context) (Result, error) {
		return r.base.Search(ctx, query)
	})
}

// ExtractInfo retries the wrapped ExtractInfo.
func (r *Retrying) ExtractInfo(ctx context.Context, selector string) (Result, error) {
	return r.do(ctx, "extract_info", map[string]string{"selector": selector}, func(ctx context.Context) (Result, error) {
		return r.base.ExtractInfo(ctx, selector)
	})
}

// FollowLink retries the wrapped FollowLink.
func (r *Retrying) FollowLink(ctx context.Context, linkText string) (Result, error) {
	return r.do(ctx, "follow_link", map[string]string{"link_text": linkText}, func(ctx context.Context) (Result, error) {
		return r.base.FollowLink(ctx, linkText)
	})
}

// ExecutePlan retries the wrapped ExecutePlan.
func (r *Retrying) ExecutePlan(ctx context.Context, plan string) (Result, error) {
	return r.do(ctx, "execute_research_plan", map[string]string{"plan": plan}, func(ctx context.Context) (Result, error) {
		return r.base.ExecutePlan(ctx, plan)
	})
}

// CurrentPage delegates to the wrapped environment's state, if any.
func (r *Retrying) CurrentPage() *WebPage {
	if r.state == nil {
		return nil
	}
	return r.state.CurrentPage()
}

// SetCurrentPage delegates to the wrapped environment's state, if any.
func (r *Retrying) SetCurrentPage(p *WebPage) {
	if r.state != nil {
		r.state.SetCurrentPage(p)
	}
}

// Visited delegates to the wrapped environment's state, if any.
func (r *Retrying) Visited() []string {
	if r.state == nil {
		return nil
	}
	return r.state.Visited()
}

// RecordVisits delegates to the wrapped environment's state, if any.
func (r *Retrying) RecordVisits(urls ...string) {
	if r.state != nil {
		r.state.RecordVisits(urls...)
	}
}

func (r *Retrying) do(ctx context.Context, op string, callContext map[string]string, call func(context.Context) (Result, error)) (Result, error) {
	var lastErr error
attempts:
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		res, err := call(ctx)
		if err == nil {
			if attempt > 1 {
				r.log.Record(op+"_retry_success", "retry_succeeded",
					fmt.Sprintf("succeeded on attempt %d", attempt), callContext)
			}
			return res, nil
		}
		lastErr = err
		r.log.Record(fmt.Sprintf("%s_attempt_%d", op, attempt), errKind(err), err.Error(), callContext)

		if attempt < r.maxRetries {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				break attempts
			case <-time.After(r.delay):
			}
		}
	}
	return r.failure(op, lastErr), nil
}

// failure shapes the post-exhaustion result. State fields are filled from
// the wrapped environment when available so observations stay coherent.
func (r *Retrying) failure(op string, lastErr error) Result {
	res := Result{
		Success:      false,
		ErrorMessage: fmt.Sprintf("Operation %s failed after %d attempts: %v", op, r.maxRetries, lastErr),
	}
	if r.state != nil {
		res.PagesVisited = r.state.Visited()
		res.CurrentPage = r.state.CurrentPage()
	}
	return res
}
