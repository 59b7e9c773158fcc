package workflow

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event is an immutable record emitted by a unit during execution. State
// mutation intent is expressed declaratively through Delta; an event never
// reads session state itself.
type Event struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	// Author identifies the unit that produced the event. Empty for
	// framework-originated events.
	Author string `json:"author,omitempty"`
	// Delta maps state keys to new values and is merged into the session
	// by the composer driving the producing unit. May be nil.
	Delta map[string]any `json:"delta,omitempty"`
	// Payload carries free-form content (generated text, progress notes)
	// independent of Delta.
	Payload string `json:"payload,omitempty"`
	// Diagnostic is set on observability events that ride the same stream
	// as state deltas.
	Diagnostic *Diagnostic `json:"diagnostic,omitempty"`
}

// Diagnostic is structured, leveled observability information attached to
// an event stream instead of a side logging channel.
type Diagnostic struct {
	Level   slog.Level     `json:"level"`
	Message string         `json:"message"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// NewEvent creates an event with a generated ID and current timestamp.
func NewEvent(author string, delta map[string]any) Event {
	return Event{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Author:    author,
		Delta:     delta,
	}
}

// NewPayloadEvent creates an event carrying free-form content.
func NewPayloadEvent(author string, payload string) Event {
	e := NewEvent(author, nil)
	e.Payload = payload
	return e
}

// NewDiagnosticEvent creates an observability event for the stream.
func NewDiagnosticEvent(author string, level slog.Level, message string, attrs map[string]any) Event {
	e := NewEvent(author, nil)
	e.Diagnostic = &Diagnostic{Level: level, Message: message, Attrs: attrs}
	return e
}

// NewErrorEvent creates an event reporting a unit failure under the
// <subject>_error key convention. Reported failures are merged into state
// like any other delta; the caller decides whether to halt.
func NewErrorEvent(author string, subject string, err error) Event {
	return NewEvent(author, map[string]any{ErrorKey(subject): err.Error()})
}

// IsError reports whether the event's delta contains at least one
// error-keyed entry.
func (e Event) IsError() bool {
	for key := range e.Delta {
		if IsErrorKey(key) {
			return true
		}
	}
	return false
}

// Terminates reports whether the event's delta carries the loop
// escalation signal with a truthy value.
func (e Event) Terminates() bool {
	v, ok := e.Delta[KeyEscalate]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "" && t != "false"
	default:
		return true
	}
}
