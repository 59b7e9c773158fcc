package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Status is the lifecycle state of one coordinated run.
type Status string

const (
	StatusIdle           Status = "idle"
	StatusInitializing   Status = "initializing"
	StatusProcessing     Status = "processing"
	StatusCompleted      Status = "completed"
	StatusFailed         Status = "failed"
	StatusPartialFailure Status = "partial_failure"
)

// InputRule describes one required run input: the alias keys it may
// arrive under and the minimum content length that makes it usable.
type InputRule struct {
	Name      string
	Aliases   []string
	MinLength int
}

// DefaultInputRules are the document requirements of the drafting
// pipeline: a primary CV document and a secondary job description.
var DefaultInputRules = []InputRule{
	{Name: "CV content", Aliases: PrimaryDocumentAliases, MinLength: 50},
	{Name: "job description content", Aliases: SecondaryDocumentAliases, MinLength: 30},
}

// inputValidationSubject is the error-key subject used for input
// validation failures.
const inputValidationSubject = "input_validation"

// Coordinator owns the pipeline tree of one run: it seeds and validates
// the session, drives the tree, contains faults, and derives the final
// run summary.
type Coordinator struct {
	name     string
	pipeline Step
	rules    []InputRule
	logger   *slog.Logger

	mu      sync.Mutex
	session *Session
	status  Status
}

// CoordinatorOption configures a coordinator.
type CoordinatorOption func(*Coordinator)

// WithCoordinatorName sets the event author name for the coordinator.
func WithCoordinatorName(name string) CoordinatorOption {
	return func(c *Coordinator) { c.name = name }
}

// WithInputRules replaces the default input validation rules.
func WithInputRules(rules []InputRule) CoordinatorOption {
	return func(c *Coordinator) { c.rules = rules }
}

// WithLogger sets the logger used for coordinator-side diagnostics.
func WithLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = logger }
}

// NewCoordinator creates a coordinator around the given pipeline tree.
func NewCoordinator(pipeline Step, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		name:     "coordinator",
		pipeline: pipeline,
		rules:    DefaultInputRules,
		logger:   slog.Default(),
		status:   StatusIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns the current run status.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Session returns the session of the most recent run, or nil before the
// first run.
func (c *Coordinator) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Coordinator) setStatus(s Status) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

// Run creates a fresh session seeded with the caller's inputs and drives
// the pipeline, forwarding every event. Validation failures and faults
// anywhere in the tree surface as error events and a failed summary,
// never as panics. The returned channel closes after the final summary
// event.
func (c *Coordinator) Run(ctx context.Context, inputs map[string]any) <-chan Event {
	session := NewSession()
	session.Apply(inputs)

	c.mu.Lock()
	c.session = session
	c.status = StatusInitializing
	c.mu.Unlock()

	out := make(chan Event)
	go func() {
		defer close(out)
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("coordinator fault", "error", r, "sessionId", session.ID())
				session.Apply(map[string]any{
					ErrorKey(c.name):     fmt.Sprintf("panic: %v", r),
					KeyCoordinatorStatus: string(StatusFailed),
				})
				c.setStatus(StatusFailed)
			}
		}()

		emit := func(e Event) bool {
			session.Apply(e.Delta)
			select {
			case out <- e:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit(NewEvent(c.name, map[string]any{
			KeySessionID:         session.ID(),
			KeyCoordinatorStatus: string(StatusInitializing),
			KeyProcessingStage:   "input_validation",
		})) {
			c.setStatus(StatusFailed)
			return
		}

		if err := c.Validate(session.Snapshot()); err != nil {
			c.logger.Warn("input validation failed", "sessionId", session.ID(), "error", err)
			c.setStatus(StatusFailed)
			emit(NewEvent(c.name, map[string]any{
				ErrorKey(inputValidationSubject): err.Error(),
				KeyCoordinatorStatus:             string(StatusFailed),
				KeyProcessingStage:               "validation_failed",
			}))
			c.emitSummary(emit, session)
			return
		}

		c.setStatus(StatusProcessing)
		if !emit(NewEvent(c.name, map[string]any{
			KeyCoordinatorStatus: string(StatusProcessing),
			KeyProcessingStage:   "workflow_started",
			"input_validation":   "passed",
		})) {
			c.setStatus(StatusFailed)
			return
		}

		c.logger.Info("workflow started", "sessionId", session.ID(), "pipeline", c.pipeline.Name())

		for event := range c.pipeline.Execute(ctx, session) {
			select {
			case out <- event:
			case <-ctx.Done():
				c.setStatus(StatusFailed)
				return
			}
		}

		if ctx.Err() != nil {
			c.setStatus(StatusFailed)
			return
		}

		c.setStatus(c.finalStatus(session.Snapshot()))
		c.emitSummary(emit, session)
		c.logger.Info("workflow finished", "sessionId", session.ID(), "status", string(c.Status()))
	}()
	return out
}

// Validate checks every input rule against the snapshot and reports all
// violations together.
func (c *Coordinator) Validate(snap Snapshot) error {
	var violations []string
	for _, rule := range c.rules {
		value, ok := firstAlias(snap, rule.Aliases)
		switch {
		case !ok:
			violations = append(violations, fmt.Sprintf("%s is required", rule.Name))
		case len(value) < rule.MinLength:
			violations = append(violations, fmt.Sprintf("%s is too short (minimum %d characters)",
				rule.Name, rule.MinLength))
		}
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// finalStatus derives the run outcome from final state: errors alongside
// generated components mean partial failure, errors without any output
// mean failure.
func (c *Coordinator) finalStatus(snap Snapshot) Status {
	hasErrors := false
	for key := range snap {
		if IsErrorKey(key) {
			hasErrors = true
			break
		}
	}
	if !hasErrors {
		return StatusCompleted
	}
	for _, key := range ComponentKeys {
		if _, ok := snap[key]; ok {
			return StatusPartialFailure
		}
	}
	return StatusFailed
}

// emitSummary appends the closing event whose delta records overall
// status; the full summary is available through Summary.
func (c *Coordinator) emitSummary(emit func(Event) bool, session *Session) {
	summary := c.Summary()
	event := NewEvent(c.name, map[string]any{
		KeyCoordinatorStatus: string(summary.Status),
		KeyProcessingStage:   "workflow_completed",
	})
	event.Payload = fmt.Sprintf("generated %d components, %d errors",
		len(summary.GeneratedComponents), len(summary.Errors))
	emit(event)
}
