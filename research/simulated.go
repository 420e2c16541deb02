package research

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Simulated is a deterministic in-memory research environment backed by a
// fixed site graph. It implements the full Environment contract without a
// browser or network, which makes it the default for the demo CLI and the
// workhorse for decorator tests.
type Simulated struct {
	pageState

	pagesMu sync.Mutex
	pages   map[string]*WebPage
	order   []string // registration order, for deterministic search
}

// NewSimulated creates a simulated environment seeded with pages.
func NewSimulated(pages ...*WebPage) *Simulated {
	s := &Simulated{pages: make(map[string]*WebPage)}
	for _, p := range pages {
		s.AddPage(p)
	}
	return s
}

// AddPage registers (or replaces) a page in the site graph.
func (s *Simulated) AddPage(p *WebPage) {
	if p == nil || p.URL == "" {
		return
	}
	s.pagesMu.Lock()
	defer s.pagesMu.Unlock()
	if _, exists := s.pages[p.URL]; !exists {
		s.order = append(s.order, p.URL)
	}
	s.pages[p.URL] = copyPage(p)
}

func (s *Simulated) page(url string) *WebPage {
	s.pagesMu.Lock()
	defer s.pagesMu.Unlock()
	return copyPage(s.pages[url])
}

// Navigate loads a page from the site graph. An unknown URL is an
// operational failure (unreachable host), reported as an error.
func (s *Simulated) Navigate(_ context.Context, url string) (Result, error) {
	url = strings.TrimSpace(url)
	page := s.page(url)
	if page == nil {
		return Result{}, fmt.Errorf("no route to %s", url)
	}
	s.SetCurrentPage(page)
	s.RecordVisits(url)
	return s.result(true, snippet(page.Content, 700), ""), nil
}

// Search matches the query against page titles and contents, in
// registration order.
func (s *Simulated) Search(_ context.Context, query string) (Result, error) {
	matches := s.matches(query)
	s.RecordVisits(searchResultsURL(query))

	if len(matches) == 0 {
		return s.result(true, fmt.Sprintf("No results found for %q.", query), ""), nil
	}
	var b strings.Builder
	for i, p := range matches {
		fmt.Fprintf(&b, "%d. %s - %s\n%s\n", i+1, p.Title, p.URL, snippet(p.Content, 200))
	}
	return s.result(true, strings.TrimSpace(b.String()), ""), nil
}

// ExtractInfo returns the lines of the current page matching the
// selector text. Without a current page this is a terminal failure, not
// an error, so retry wrappers will not repeat it.
func (s *Simulated) ExtractInfo(_ context.Context, selector string) (Result, error) {
	page := s.CurrentPage()
	if page == nil {
		return s.result(false, "", "No current page to extract from"), nil
	}
	needle := strings.ToLower(strings.TrimSpace(selector))
	var matched []string
	for _, line := range strings.Split(page.Content, "\n") {
		if strings.Contains(strings.ToLower(line), needle) {
			matched = append(matched, strings.TrimSpace(line))
		}
	}
	if len(matched) == 0 {
		return s.result(true, fmt.Sprintf("No content matched %q on %s.", selector, page.URL), ""), nil
	}
	return s.result(true, strings.Join(matched, "\n"), ""), nil
}

// FollowLink resolves a link on the current page by matching the text
// against linked URLs and linked page titles, then navigates to it.
func (s *Simulated) FollowLink(ctx context.Context, linkText string) (Result, error) {
	page := s.CurrentPage()
	if page == nil {
		return s.result(false, "", "No current page to follow a link from"), nil
	}
	needle := strings.ToLower(strings.TrimSpace(linkText))
	for _, target := range page.Links {
		if strings.Contains(strings.ToLower(target), needle) {
			return s.Navigate(ctx, target)
		}
		if linked := s.page(target); linked != nil &&
			strings.Contains(strings.ToLower(linked.Title), needle) {
			return s.Navigate(ctx, target)
		}
	}
	return s.result(false, "", fmt.Sprintf("No link matching %q on current page", linkText)), nil
}

// ExecutePlan treats the plan's first line as a query, searches, and
// visits up to three matches, aggregating findings.
func (s *Simulated) ExecutePlan(ctx context.Context, plan string) (Result, error) {
	query := firstLine(plan)
	if query == "" {
		return s.result(false, "", "Empty research plan"), nil
	}

	matches := s.matches(query)
	s.RecordVisits(searchResultsURL(query))

	var findings []string
	for i, p := range matches {
		if i >= 3 {
			break
		}
		res, err := s.Navigate(ctx, p.URL)
		if err != nil {
			continue
		}
		findings = append(findings, fmt.Sprintf("From %s:\n%s", p.URL, res.ExtractedInfo))
	}
	if len(findings) == 0 {
		return s.result(true, fmt.Sprintf("Research plan produced no findings for %q.", query), ""), nil
	}
	return s.result(true, strings.Join(findings, "\n\n"), ""), nil
}

func (s *Simulated) matches(query string) []*WebPage {
	needle := strings.ToLower(strings.TrimSpace(query))
	s.pagesMu.Lock()
	defer s.pagesMu.Unlock()
	var out []*WebPage
	for _, url := range s.order {
		p := s.pages[url]
		if strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Content), needle) {
			out = append(out, copyPage(p))
		}
	}
	return out
}

func snippet(text string, max int) string {
	text = strings.TrimSpace(text)
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
