package codexec

import (
	"context"
	"sync"
)

// Scripted replays canned execution results keyed by the exact code
// string, falling back to Default for unknown code. It records every call
// so tests can assert what was (or was not) executed.
type Scripted struct {
	mu      sync.Mutex
	Results map[string]Result
	Default Result
	calls   []string
}

// NewScripted creates a Scripted runner whose default result reports a
// successful run with no output.
func NewScripted() *Scripted {
	return &Scripted{
		Results: make(map[string]Result),
		Default: Result{Success: true},
	}
}

// Execute records the call and returns the canned result for the code.
func (s *Scripted) Execute(_ context.Context, code string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, code)
	if r, ok := s.Results[code]; ok {
		return r
	}
	return s.Default
}

// Calls returns the code strings executed so far, in order.
func (s *Scripted) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}
