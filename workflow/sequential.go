package workflow

import (
	"context"
	"log/slog"
)

// sequential runs child steps strictly one after another. Each child
// observes the session as mutated by all prior children, because deltas
// are merged at emission time and a child's stream is fully drained before
// the next child starts.
type sequential struct {
	name  string
	steps []Step
}

// NewSequential creates a sequential composition of steps.
func NewSequential(name string, steps ...Step) Step {
	return &sequential{name: name, steps: steps}
}

func (s *sequential) Name() string { return s.name }

// Execute drives children in declared order. A child's error event does
// not abort the pipeline: the event is forwarded and the next child runs.
// Downstream children detect missing prerequisites through their own
// precondition checks.
func (s *sequential) Execute(ctx context.Context, session *Session) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		for _, step := range s.steps {
			if ctx.Err() != nil {
				return
			}
			diag := NewDiagnosticEvent(s.name, slog.LevelDebug, "starting step",
				map[string]any{"step": step.Name()})
			select {
			case out <- diag:
			case <-ctx.Done():
				return
			}
			for event := range step.Execute(ctx, session) {
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
