package units

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftflow/draftflow-go/completion"
	"github.com/draftflow/draftflow-go/workflow"
)

func TestProfileAnalyzer(t *testing.T) {
	t.Run("writes the completion under the profile key", func(t *testing.T) {
		unit := NewProfileAnalyzer(routingClient())
		events := runUnit(unit, workflow.Snapshot{workflow.KeyPrimaryDocument: sampleCV})

		require.Len(t, events, 1)
		delta := mergedDelta(events)
		assert.Contains(t, delta[workflow.KeyApplicantProfile], "skills")
	})

	t.Run("prompt carries the instruction and the CV text", func(t *testing.T) {
		unit := NewProfileAnalyzer(echoClient())
		events := runUnit(unit, workflow.Snapshot{workflow.KeyPrimaryDocument: sampleCV})

		prompt, _ := mergedDelta(events)[workflow.KeyApplicantProfile].(string)
		assert.Contains(t, prompt, "CV analysis specialist")
		assert.Contains(t, prompt, sampleCV)
	})

	t.Run("resolves the CV from alias keys", func(t *testing.T) {
		unit := NewProfileAnalyzer(echoClient())
		events := runUnit(unit, workflow.Snapshot{"resume_content": sampleCV})

		prompt, _ := mergedDelta(events)[workflow.KeyApplicantProfile].(string)
		assert.Contains(t, prompt, sampleCV)
	})

	t.Run("missing CV reports one error event", func(t *testing.T) {
		unit := NewProfileAnalyzer(routingClient())
		events := runUnit(unit, workflow.Snapshot{})

		require.Len(t, events, 1)
		assert.True(t, events[0].IsError())
		message, _ := events[0].Delta[workflow.ErrorKey(workflow.KeyApplicantProfile)].(string)
		assert.Contains(t, message, "no CV content")
	})

	t.Run("short CV is rejected before calling the backend", func(t *testing.T) {
		called := false
		client := completion.Func(func(ctx context.Context, prompt string) (string, error) {
			called = true
			return "", nil
		})
		unit := NewProfileAnalyzer(client)
		events := runUnit(unit, workflow.Snapshot{workflow.KeyPrimaryDocument: strings.Repeat("x", 49)})

		assert.False(t, called)
		require.Len(t, events, 1)
		assert.True(t, events[0].IsError())
	})

	t.Run("backend failure surfaces as an error event", func(t *testing.T) {
		client := completion.Func(func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("quota exceeded")
		})
		unit := NewProfileAnalyzer(client)
		events := runUnit(unit, workflow.Snapshot{workflow.KeyPrimaryDocument: sampleCV})

		require.Len(t, events, 1)
		message, _ := events[0].Delta[workflow.ErrorKey(workflow.KeyApplicantProfile)].(string)
		assert.Contains(t, message, "quota exceeded")
	})
}

func TestRequirementsParser(t *testing.T) {
	t.Run("writes the completion under the requirements key", func(t *testing.T) {
		unit := NewRequirementsParser(routingClient())
		events := runUnit(unit, workflow.Snapshot{workflow.KeySecondaryDocument: sampleJob})

		require.Len(t, events, 1)
		delta := mergedDelta(events)
		assert.Contains(t, delta[workflow.KeyJobRequirements], "job_title")
	})

	t.Run("resolves the posting from alias keys", func(t *testing.T) {
		unit := NewRequirementsParser(echoClient())
		events := runUnit(unit, workflow.Snapshot{"job_text": sampleJob})

		prompt, _ := mergedDelta(events)[workflow.KeyJobRequirements].(string)
		assert.Contains(t, prompt, sampleJob)
	})

	t.Run("missing posting reports one error event", func(t *testing.T) {
		unit := NewRequirementsParser(routingClient())
		events := runUnit(unit, workflow.Snapshot{})

		require.Len(t, events, 1)
		assert.True(t, events[0].IsError())
	})

	t.Run("short posting is rejected", func(t *testing.T) {
		unit := NewRequirementsParser(routingClient())
		events := runUnit(unit, workflow.Snapshot{workflow.KeySecondaryDocument: strings.Repeat("y", 29)})

		require.Len(t, events, 1)
		message, _ := events[0].Delta[workflow.ErrorKey(workflow.KeyJobRequirements)].(string)
		assert.Contains(t, message, "too short")
	})
}
