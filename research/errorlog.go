package research

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrorLogEntry records one failed (or recovered) attempt of a research
// operation. Entries are never mutated after creation.
type ErrorLogEntry struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Operation string            `json:"operation"`
	Kind      string            `json:"kind"`
	Message   string            `json:"message"`
	Context   map[string]string `json:"context,omitempty"`
}

// ErrorLog is an append-only log surviving across retries of the same
// logical call, so post-hoc analysis can see every attempt.
type ErrorLog struct {
	mu      sync.Mutex
	entries []ErrorLogEntry
}

// NewErrorLog creates an empty error log.
func NewErrorLog() *ErrorLog {
	return &ErrorLog{}
}

// Record appends one entry. The context map is copied.
func (l *ErrorLog) Record(operation, kind, message string, callContext map[string]string) {
	entry := ErrorLogEntry{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Operation: operation,
		Kind:      kind,
		Message:   message,
	}
	if len(callContext) > 0 {
		entry.Context = make(map[string]string, len(callContext))
		for k, v := range callContext {
			entry.Context[k] = v
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

// Entries returns a snapshot of the log.
func (l *ErrorLog) Entries() []ErrorLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ErrorLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear empties the log.
func (l *ErrorLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// errKind names an error's dynamic type for the log.
func errKind(err error) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}
