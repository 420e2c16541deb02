package agentloop

import (
	"context"
	"sync"
)

// ModelPort is the boundary to a language model. The prompt is only the
// last observation string; implementations are expected to build their own
// context from the supplied history snapshot. A returned error is fatal to
// the interaction (capability failures, by contrast, are data).
type ModelPort interface {
	Generate(ctx context.Context, prompt string, history []HistoryEntry) (string, error)
}

// StuckSolution is emitted by ScriptedModel once its script is exhausted,
// so a scripted interaction always terminates.
const StuckSolution = "<solution>I seem to be stuck or the request was unclear.</solution>"

// ScriptedModel replays an externally supplied response sequence. It keeps
// no logic of its own: response N is returned for the Nth Generate call,
// whatever the prompt. Use it as a test fixture or demo driver.
type ScriptedModel struct {
	mu        sync.Mutex
	responses []string
	next      int
	calls     int
}

// NewScriptedModel creates a model that replays the given responses in
// order, then falls back to StuckSolution.
func NewScriptedModel(responses ...string) *ScriptedModel {
	return &ScriptedModel{responses: responses}
}

// Generate returns the next scripted response.
func (m *ScriptedModel) Generate(_ context.Context, _ string, _ []HistoryEntry) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.next >= len(m.responses) {
		return StuckSolution, nil
	}
	r := m.responses[m.next]
	m.next++
	return r, nil
}

// Calls returns how many times Generate has been invoked.
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
