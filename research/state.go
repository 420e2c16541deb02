package research

import "sync"

// pageState is the shared PageState implementation embedded by concrete
// environments. Visits are deduplicated on append; the visit log only
// grows. Snapshots are copied so callers never alias internal slices.
type pageState struct {
	mu      sync.Mutex
	current *WebPage
	visited []string
}

// CurrentPage returns a copy of the current page, or nil.
func (s *pageState) CurrentPage() *WebPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyPage(s.current)
}

// SetCurrentPage replaces the current page wholesale.
func (s *pageState) SetCurrentPage(p *WebPage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = copyPage(p)
}

// Visited returns a copy of the cumulative visit log.
func (s *pageState) Visited() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.visited))
	copy(out, s.visited)
	return out
}

// RecordVisits appends URLs to the visit log, skipping ones already seen.
func (s *pageState) RecordVisits(urls ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range urls {
		if u == "" || s.seenLocked(u) {
			continue
		}
		s.visited = append(s.visited, u)
	}
}

func (s *pageState) seenLocked(url string) bool {
	for _, v := range s.visited {
		if v == url {
			return true
		}
	}
	return false
}

// result shapes a Result from the current state.
func (s *pageState) result(success bool, extractedInfo, errorMessage string) Result {
	return Result{
		Success:       success,
		PagesVisited:  s.Visited(),
		CurrentPage:   s.CurrentPage(),
		ExtractedInfo: extractedInfo,
		ErrorMessage:  errorMessage,
	}
}

func copyPage(p *WebPage) *WebPage {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Links = make([]string, len(p.Links))
	copy(cp.Links, p.Links)
	return &cp
}
