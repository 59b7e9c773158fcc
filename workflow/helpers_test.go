package workflow

import (
	"context"
	"sync"
)

// keyWriter is a test unit that writes one value under one key.
func keyWriter(name, key string, value any) Unit {
	return NewUnit(name, key, func(ctx context.Context, snap Snapshot, emit EmitFunc) error {
		emit(NewEvent(name, map[string]any{key: value}))
		return nil
	})
}

// recorder tracks unit invocations and the snapshots they observed.
type recorder struct {
	mu        sync.Mutex
	order     []string
	snapshots map[string]Snapshot
}

func newRecorder() *recorder {
	return &recorder{snapshots: make(map[string]Snapshot)}
}

func (r *recorder) unit(name, key string, value any) Unit {
	return NewUnit(name, key, func(ctx context.Context, snap Snapshot, emit EmitFunc) error {
		r.mu.Lock()
		r.order = append(r.order, name)
		r.snapshots[name] = snap
		r.mu.Unlock()
		if key != "" {
			emit(NewEvent(name, map[string]any{key: value}))
		}
		return nil
	})
}

func (r *recorder) invocations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func (r *recorder) snapshotOf(name string) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshots[name]
}

// drain collects every event from a stream.
func drain(events <-chan Event) []Event {
	var all []Event
	for event := range events {
		all = append(all, event)
	}
	return all
}

// deltaEvents filters out diagnostics.
func deltaEvents(events []Event) []Event {
	var filtered []Event
	for _, event := range events {
		if event.Diagnostic == nil {
			filtered = append(filtered, event)
		}
	}
	return filtered
}
