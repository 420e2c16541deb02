package agentloop

import "sync"

// Roles written by the controller. The role tag is open: a HistoryStore
// accepts any string, these are the ones this package produces.
const (
	RoleUser              = "user"
	RoleAssistantRaw      = "assistant_raw"
	RoleAssistantThought  = "assistant_thought"
	RoleAssistantAction   = "assistant_action"
	RoleAssistantResearch = "assistant_research"
	RoleAssistantSearch   = "assistant_search"
	RoleAssistantNavigate = "assistant_navigate"
	RoleAssistantSolution = "assistant_solution"
	RoleEnvironment       = "environment"
	RoleSystemNote        = "system_note"
)

// HistoryEntry is a single entry in the interaction transcript.
// Entries are never mutated after creation.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HistoryStore is the append-only transcript owned by the controller.
// History returns an independent snapshot: callers may mutate the
// returned slice without affecting stored state. No entry is ever
// removed except via Clear.
type HistoryStore interface {
	AddEntry(role, content string)
	History() []HistoryEntry
	Clear()
}

// InMemoryHistory is the default HistoryStore. The controller is a single
// sequential caller, but the store guards its slice anyway so it stays
// safe when an event consumer or host application reads concurrently.
type InMemoryHistory struct {
	mu      sync.Mutex
	entries []HistoryEntry
}

// NewInMemoryHistory creates an empty history store.
func NewInMemoryHistory() *InMemoryHistory {
	return &InMemoryHistory{}
}

// AddEntry appends one entry to the transcript.
func (h *InMemoryHistory) AddEntry(role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, HistoryEntry{Role: role, Content: content})
}

// History returns a copy of the transcript.
func (h *InMemoryHistory) History() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Clear resets the transcript to empty.
func (h *InMemoryHistory) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}

// Len returns the number of stored entries.
func (h *InMemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
