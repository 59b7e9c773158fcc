package units

import (
	"context"
	"fmt"

	"github.com/draftflow/draftflow-go/completion"
	"github.com/draftflow/draftflow-go/workflow"
)

// PreconditionError reports a missing or too-small required input,
// detected before a unit does any work.
type PreconditionError struct {
	Unit    string
	Message string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Unit, e.Message)
}

// textUnit is the shared shape of the LLM-backed units: it builds one
// prompt from the snapshot, performs one completion call, and writes the
// result under its output key.
type textUnit struct {
	name      string
	outputKey string
	client    completion.Client

	// buildPrompt assembles the per-call prompt. Returning a
	// *PreconditionError reports missing required inputs; the unit then
	// emits exactly one error event and terminates.
	buildPrompt func(snap workflow.Snapshot) (string, error)
}

func newTextUnit(name, outputKey string, client completion.Client,
	buildPrompt func(workflow.Snapshot) (string, error)) workflow.Unit {
	u := &textUnit{name: name, outputKey: outputKey, client: client, buildPrompt: buildPrompt}
	return workflow.NewUnit(name, outputKey, u.run)
}

func (u *textUnit) run(ctx context.Context, snap workflow.Snapshot, emit workflow.EmitFunc) error {
	prompt, err := u.buildPrompt(snap)
	if err != nil {
		emit(workflow.NewErrorEvent(u.name, u.outputKey, err))
		return nil
	}

	text, err := u.client.Complete(ctx, prompt)
	if err != nil {
		emit(workflow.NewErrorEvent(u.name, u.outputKey, err))
		return nil
	}

	event := workflow.NewEvent(u.name, map[string]any{u.outputKey: text})
	event.Payload = text
	emit(event)
	return nil
}

// requireString resolves a required snapshot key with a minimum usable
// length.
func requireString(snap workflow.Snapshot, unit, key string, minLength int) (string, error) {
	value, ok := snap.GetString(key)
	if !ok || value == "" {
		return "", &PreconditionError{Unit: unit, Message: fmt.Sprintf("missing required input %q", key)}
	}
	if len(value) < minLength {
		return "", &PreconditionError{Unit: unit,
			Message: fmt.Sprintf("input %q is too short (minimum %d characters)", key, minLength)}
	}
	return value, nil
}
