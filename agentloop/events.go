package agentloop

import (
	"sync"
	"time"
)

// EventKind identifies the type of loop event.
type EventKind string

const (
	EventInteractionStart EventKind = "interaction_start"
	EventInteractionEnd   EventKind = "interaction_end"
	EventTurnStart        EventKind = "turn_start"
	EventModelOutput      EventKind = "model_output"
	EventThought          EventKind = "thought"
	EventActionDispatch   EventKind = "action_dispatch"
	EventObservation      EventKind = "observation"
	EventSolutionFound    EventKind = "solution_found"
	EventTurnLimit        EventKind = "turn_limit"
	EventWarning          EventKind = "warning"
	EventError            EventKind = "error"
)

// LoopEvent is a typed event emitted by the controller.
type LoopEvent struct {
	Kind          EventKind              `json:"kind"`
	Timestamp     time.Time              `json:"timestamp"`
	InteractionID string                 `json:"interaction_id"`
	Data          map[string]interface{} `json:"data,omitempty"`
}

// EventEmitter delivers typed events to the host application via a channel.
type EventEmitter struct {
	interactionID string
	ch            chan LoopEvent
	closed        bool
	mu            sync.Mutex
}

// NewEventEmitter creates a new EventEmitter with a buffered channel.
func NewEventEmitter(interactionID string, bufferSize int) *EventEmitter {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &EventEmitter{
		interactionID: interactionID,
		ch:            make(chan LoopEvent, bufferSize),
	}
}

// Emit sends an event to the channel. If the emitter is closed, the event
// is silently dropped.
func (e *EventEmitter) Emit(kind EventKind, data map[string]interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	event := LoopEvent{
		Kind:          kind,
		Timestamp:     time.Now(),
		InteractionID: e.interactionID,
		Data:          data,
	}
	select {
	case e.ch <- event:
	default:
		// Channel full; drop event to avoid blocking the turn loop.
	}
}

// Events returns the read-only event channel.
func (e *EventEmitter) Events() <-chan LoopEvent {
	return e.ch
}

// Close closes the event channel. Safe to call multiple times.
func (e *EventEmitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.ch)
	}
}
