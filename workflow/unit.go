package workflow

import (
	"context"
	"fmt"
)

// Unit is the atomic processing capability: it consumes a read-only state
// snapshot and produces a finite, lazy stream of events. Implementations
// must stop emitting promptly once ctx is cancelled, must never mutate the
// snapshot, and report failures as error-keyed deltas instead of panicking.
//
// A unit must not assume deltas from its own earlier events have been
// merged before its stream is exhausted.
type Unit interface {
	// Name identifies the unit in event authorship and error keys.
	Name() string
	// OutputKey is the canonical state key the unit is expected to
	// populate. Empty for units that only report side effects.
	OutputKey() string
	// Run starts the unit against a snapshot and returns its event
	// stream. The returned channel is closed when the unit finishes.
	Run(ctx context.Context, snap Snapshot) <-chan Event
}

// EmitFunc delivers one event to the consumer. It returns false when the
// run is cancelled and the unit should stop producing.
type EmitFunc func(Event) bool

// RunFunc is the body of a function-backed unit.
type RunFunc func(ctx context.Context, snap Snapshot, emit EmitFunc) error

// unitFunc adapts a plain function to the Unit interface, handling
// channel plumbing, cancellation, and fault containment.
type unitFunc struct {
	name      string
	outputKey string
	fn        RunFunc
}

// NewUnit creates a unit from a function. The function reports domain
// failures by emitting error events itself; a returned error or a panic is
// converted into a single <name>_error event, so callers never observe a
// fault escaping a unit.
func NewUnit(name, outputKey string, fn RunFunc) Unit {
	return &unitFunc{name: name, outputKey: outputKey, fn: fn}
}

func (u *unitFunc) Name() string      { return u.name }
func (u *unitFunc) OutputKey() string { return u.outputKey }

func (u *unitFunc) Run(ctx context.Context, snap Snapshot) <-chan Event {
	out := make(chan Event)
	emit := func(e Event) bool {
		select {
		case out <- e:
			return true
		case <-ctx.Done():
			return false
		}
	}
	go func() {
		defer close(out)
		defer func() {
			if r := recover(); r != nil {
				emit(NewErrorEvent(u.name, u.name, fmt.Errorf("panic: %v", r)))
			}
		}()
		if err := u.fn(ctx, snap, emit); err != nil {
			emit(NewErrorEvent(u.name, u.name, err))
		}
	}()
	return out
}

// Step is one node of a pipeline tree: a wrapped unit or a composition of
// other steps. Execute drives the node against the shared session and
// returns its event stream; by the time an event is received from the
// stream its delta has already been merged into the session.
type Step interface {
	Name() string
	Execute(ctx context.Context, session *Session) <-chan Event
}

// unitStep adapts a Unit to a Step. It is the single merge point: each
// event's delta is applied to the session at emission time, before the
// event is forwarded downstream.
type unitStep struct {
	unit Unit
}

// NewUnitStep wraps a unit for use inside a pipeline tree.
func NewUnitStep(u Unit) Step {
	return &unitStep{unit: u}
}

func (s *unitStep) Name() string      { return s.unit.Name() }
func (s *unitStep) OutputKey() string { return s.unit.OutputKey() }

func (s *unitStep) Execute(ctx context.Context, session *Session) <-chan Event {
	return s.executeFrom(ctx, session.Snapshot(), session)
}

// executeFrom runs the unit against a caller-supplied read view. Parallel
// compositions use it to hand every child the same entry snapshot; merges
// still target the live session.
func (s *unitStep) executeFrom(ctx context.Context, entry Snapshot, session *Session) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)

		events, err := s.start(ctx, entry)
		if err != nil {
			fault := NewErrorEvent(s.unit.Name(), s.unit.Name(), err)
			session.Apply(fault.Delta)
			select {
			case out <- fault:
			case <-ctx.Done():
			}
			return
		}

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				// Arrival-order merge: applying here, under the
				// session's own lock, keeps concurrent siblings
				// atomic per delta.
				session.Apply(event.Delta)
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// start invokes the unit's Run, containing synchronous panics at the step
// boundary.
func (s *unitStep) start(ctx context.Context, snap Snapshot) (events <-chan Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.unit.Run(ctx, snap), nil
}

// outputKeyed is implemented by steps that declare a canonical output key.
type outputKeyed interface {
	OutputKey() string
}

// snapshotRunner is implemented by steps that can run against a
// caller-supplied read view instead of taking their own.
type snapshotRunner interface {
	executeFrom(ctx context.Context, entry Snapshot, session *Session) <-chan Event
}
