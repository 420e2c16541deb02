package research

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	readability "github.com/go-shiori/go-readability"

	"github.com/martinemde/codeact/research/websearch"
)

// Browser defaults.
const (
	DefaultFetchTimeout    = 15 * time.Second
	DefaultMaxContentChars = 20000
	DefaultMaxPlanPages    = 3
	defaultUserAgent       = "CodeActResearch/1.0 (+https://github.com/martinemde/codeact)"
)

// Browser is a research environment driving a headless Chrome through
// chromedp, with readability extraction for page content and a pluggable
// web search provider. Rendering is stateless: the current page and visit
// log live in this struct, a fresh browser context is allocated per call.
type Browser struct {
	pageState

	searcher     websearch.Searcher
	fetchTimeout time.Duration
	maxChars     int
	maxPlanPages int
	userAgent    string
}

// BrowserOption configures a Browser.
type BrowserOption func(*Browser)

// WithSearcher sets the web search provider. Without one, Search and
// ExecutePlan report a terminal configuration failure.
func WithSearcher(s websearch.Searcher) BrowserOption {
	return func(b *Browser) { b.searcher = s }
}

// WithFetchTimeout bounds a single page render.
func WithFetchTimeout(d time.Duration) BrowserOption {
	return func(b *Browser) { b.fetchTimeout = d }
}

// WithMaxContentChars caps extracted page text.
func WithMaxContentChars(n int) BrowserOption {
	return func(b *Browser) { b.maxChars = n }
}

// WithMaxPlanPages caps pages visited by one research plan.
func WithMaxPlanPages(n int) BrowserOption {
	return func(b *Browser) { b.maxPlanPages = n }
}

// NewBrowser creates a Browser with defaults applied.
func NewBrowser(opts ...BrowserOption) *Browser {
	b := &Browser{
		fetchTimeout: DefaultFetchTimeout,
		maxChars:     DefaultMaxContentChars,
		maxPlanPages: DefaultMaxPlanPages,
		userAgent:    defaultUserAgent,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Navigate renders the URL, extracts readable content and links, and
// makes the page current.
func (b *Browser) Navigate(ctx context.Context, rawURL string) (Result, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Result{}, errors.New("invalid url")
	}

	html, links, err := b.render(ctx, rawURL)
	if err != nil {
		return Result{}, fmt.Errorf("navigate %s: %w", rawURL, err)
	}

	title, text := b.extract(rawURL, html)
	page := &WebPage{URL: rawURL, Title: title, Content: text, Links: links}
	b.SetCurrentPage(page)
	b.RecordVisits(rawURL)

	info := fmt.Sprintf("Fetched %q (%d chars).\n%s", title, len(text), snippet(text, 700))
	return b.result(true, info, ""), nil
}

// Search queries the configured provider and summarizes the hits.
func (b *Browser) Search(ctx context.Context, query string) (Result, error) {
	if b.searcher == nil {
		return b.result(false, "", "No search provider configured"), nil
	}
	hits, err := b.searcher.Discover(ctx, query, 5)
	if err != nil {
		return Result{}, fmt.Errorf("search %q: %w", query, err)
	}
	b.RecordVisits(searchResultsURL(query))

	if len(hits) == 0 {
		return b.result(true, fmt.Sprintf("No results found for %q.", query), ""), nil
	}
	var sb strings.Builder
	for i, h := range hits {
		fmt.Fprintf(&sb, "%d. %s - %s\n%s\n", i+1, h.Title, h.URL, h.Snippet)
	}
	return b.result(true, strings.TrimSpace(sb.String()), ""), nil
}

// ExtractInfo re-renders the current page and returns the text of the
// first node matching the CSS selector.
func (b *Browser) ExtractInfo(ctx context.Context, selector string) (Result, error) {
	page := b.CurrentPage()
	if page == nil {
		return b.result(false, "", "No current page to extract from"), nil
	}

	rctx, cancel := context.WithTimeout(ctx, b.fetchTimeout)
	defer cancel()
	actx, cancelAlloc := chromedp.NewExecAllocator(rctx, b.allocatorOptions()...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var text string
	err := chromedp.Run(bctx,
		chromedp.Navigate(page.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Text(selector, &text, chromedp.ByQuery),
	)
	if err != nil {
		return Result{}, fmt.Errorf("extract %q from %s: %w", selector, page.URL, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return b.result(true, fmt.Sprintf("No content matched %q on %s.", selector, page.URL), ""), nil
	}
	return b.result(true, snippet(text, b.maxChars), ""), nil
}

// FollowLink finds an anchor on the current page whose text contains
// linkText and navigates to its target.
func (b *Browser) FollowLink(ctx context.Context, linkText string) (Result, error) {
	page := b.CurrentPage()
	if page == nil {
		return b.result(false, "", "No current page to follow a link from"), nil
	}

	rctx, cancel := context.WithTimeout(ctx, b.fetchTimeout)
	defer cancel()
	actx, cancelAlloc := chromedp.NewExecAllocator(rctx, b.allocatorOptions()...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	script := fmt.Sprintf(`(() => {
		const needle = %q.toLowerCase();
		const a = Array.from(document.querySelectorAll("a[href]"))
			.find(a => a.textContent.toLowerCase().includes(needle));
		return a ? a.href : "";
	})()`, linkText)

	var href string
	err := chromedp.Run(bctx,
		chromedp.Navigate(page.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(script, &href),
	)
	if err != nil {
		return Result{}, fmt.Errorf("follow link %q on %s: %w", linkText, page.URL, err)
	}
	if href == "" {
		return b.result(false, "", fmt.Sprintf("No link matching %q on current page", linkText)), nil
	}
	return b.Navigate(ctx, href)
}

// ExecutePlan searches for the plan's leading line and visits the top
// hits, aggregating findings. Per-page failures are noted and skipped so
// one dead link does not sink the whole plan.
func (b *Browser) ExecutePlan(ctx context.Context, plan string) (Result, error) {
	if b.searcher == nil {
		return b.result(false, "", "No search provider configured"), nil
	}
	query := firstLine(plan)
	if query == "" {
		return b.result(false, "", "Empty research plan"), nil
	}

	hits, err := b.searcher.Discover(ctx, query, b.maxPlanPages)
	if err != nil {
		return Result{}, fmt.Errorf("research plan %q: %w", query, err)
	}
	b.RecordVisits(searchResultsURL(query))

	var findings []string
	for i, h := range hits {
		if i >= b.maxPlanPages {
			break
		}
		res, err := b.Navigate(ctx, h.URL)
		if err != nil {
			findings = append(findings, fmt.Sprintf("Skipped %s: %v", h.URL, err))
			continue
		}
		findings = append(findings, fmt.Sprintf("From %s:\n%s", h.URL, res.ExtractedInfo))
	}
	if len(findings) == 0 {
		return b.result(true, fmt.Sprintf("Research plan produced no findings for %q.", query), ""), nil
	}
	return b.result(true, strings.Join(findings, "\n\n"), ""), nil
}

func (b *Browser) allocatorOptions() []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent(b.userAgent),
	)
}

// render fetches the fully rendered HTML plus all anchor targets.
func (b *Browser) render(ctx context.Context, rawURL string) (string, []string, error) {
	rctx, cancel := context.WithTimeout(ctx, b.fetchTimeout)
	defer cancel()
	actx, cancelAlloc := chromedp.NewExecAllocator(rctx, b.allocatorOptions()...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var html string
	var links []string
	err := chromedp.Run(bctx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Evaluate(`Array.from(document.querySelectorAll("a[href]")).map(a => a.href)`, &links),
	)
	if err != nil {
		return "", nil, err
	}
	return html, links, nil
}

// extract pulls readable title and text out of raw HTML. A readability
// failure degrades to an untitled, empty-content page rather than failing
// the navigation.
func (b *Browser) extract(rawURL, html string) (title, text string) {
	article, err := readability.FromReader(strings.NewReader(html), mustParseURL(rawURL))
	if err != nil {
		return rawURL, ""
	}
	text = strings.TrimSpace(article.TextContent)
	if len(text) > b.maxChars {
		text = text[:b.maxChars]
	}
	return strings.TrimSpace(article.Title), text
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}
