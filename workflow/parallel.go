package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// parallel runs all child steps concurrently against the state as of
// composer entry. Deltas are merged in event-arrival order, which is
// non-deterministic across children; children must therefore write
// disjoint output keys, and NewParallel rejects compositions that declare
// the same key twice.
type parallel struct {
	name  string
	steps []Step
}

// NewParallel creates a parallel composition of steps. It fails if two
// children declare the same output key, since their final value would
// depend on scheduling.
func NewParallel(name string, steps ...Step) (Step, error) {
	seen := make(map[string]string, len(steps))
	for _, step := range steps {
		keyed, ok := step.(outputKeyed)
		if !ok || keyed.OutputKey() == "" {
			continue
		}
		key := keyed.OutputKey()
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("parallel %s: steps %s and %s both declare output key %q",
				name, prev, step.Name(), key)
		}
		seen[key] = step.Name()
	}
	return &parallel{name: name, steps: steps}, nil
}

func (p *parallel) Name() string { return p.name }

// Execute launches every child at once and forwards events as they
// arrive. The session is snapshotted once, before any child starts, and
// each unit child runs against that frozen view, so no sibling's delta
// is visible regardless of scheduling. A composite child falls back to
// the live session, since its own inner steps depend on cumulative
// merges. One child's error event never cancels its siblings; the
// composer returns only after all children finish. Cancelling ctx stops
// all still-running children; already-merged deltas are retained.
func (p *parallel) Execute(ctx context.Context, session *Session) <-chan Event {
	out := make(chan Event)
	entry := session.Snapshot()
	go func() {
		defer close(out)

		diag := NewDiagnosticEvent(p.name, slog.LevelDebug, "starting parallel steps",
			map[string]any{"count": len(p.steps)})
		select {
		case out <- diag:
		case <-ctx.Done():
			return
		}

		var wg sync.WaitGroup
		for _, step := range p.steps {
			wg.Add(1)
			go func(step Step) {
				defer wg.Done()
				var events <-chan Event
				if runner, ok := step.(snapshotRunner); ok {
					events = runner.executeFrom(ctx, entry, session)
				} else {
					events = step.Execute(ctx, session)
				}
				for event := range events {
					select {
					case out <- event:
					case <-ctx.Done():
						return
					}
				}
			}(step)
		}
		wg.Wait()
	}()
	return out
}
