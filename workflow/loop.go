package workflow

import (
	"context"
	"fmt"
	"log/slog"
)

// loop repeats its child list as sequential rounds until the iteration
// bound is reached or a child escalates.
type loop struct {
	name          string
	steps         []Step
	maxIterations int
}

// NewLoop creates a bounded loop over steps. maxIterations must be at
// least 1; each round executes the full child list with sequential merge
// semantics. A child can end the loop early by emitting a delta under the
// escalation key; absent that signal the loop runs exactly maxIterations
// rounds.
func NewLoop(name string, maxIterations int, steps ...Step) (Step, error) {
	if maxIterations < 1 {
		return nil, fmt.Errorf("loop %s: max iterations must be >= 1, got %d", name, maxIterations)
	}
	return &loop{name: name, steps: steps, maxIterations: maxIterations}, nil
}

func (l *loop) Name() string { return l.name }

// Execute runs rounds until the bound or an escalation. Error events in
// one round do not abort later rounds.
func (l *loop) Execute(ctx context.Context, session *Session) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)

		round := NewSequential(l.name+".round", l.steps...)

		for iteration := 1; iteration <= l.maxIterations; iteration++ {
			if ctx.Err() != nil {
				return
			}
			diag := NewDiagnosticEvent(l.name, slog.LevelDebug, "starting round",
				map[string]any{"iteration": iteration, "max": l.maxIterations})
			select {
			case out <- diag:
			case <-ctx.Done():
				return
			}

			escalated := false
			for event := range round.Execute(ctx, session) {
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
				if event.Terminates() {
					escalated = true
				}
			}
			if escalated {
				return
			}
		}
	}()
	return out
}
