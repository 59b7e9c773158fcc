package units

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftflow/draftflow-go/workflow"
)

type fakeSink struct {
	saved []ResultBundle
	err   error
}

func (s *fakeSink) Save(ctx context.Context, bundle ResultBundle) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, bundle)
	return nil
}

type fakeExporter struct {
	bundles []ResultBundle
	paths   []string
	err     error
}

func (e *fakeExporter) Export(ctx context.Context, bundle ResultBundle) ([]string, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.bundles = append(e.bundles, bundle)
	return e.paths, nil
}

func completedSnapshot() workflow.Snapshot {
	return workflow.Snapshot{
		workflow.KeySessionID:      "session-1",
		workflow.KeyTailoredResume: strongResume,
		workflow.KeyCoverLetter:    strongLetter,
		workflow.KeyQualityScore:   0.91,
		workflow.KeyATSScore:       0.88,
		workflow.KeyApproved:       true,
	}
}

func TestBundleFromSnapshot(t *testing.T) {
	t.Run("collects documents, metrics and approval", func(t *testing.T) {
		bundle := BundleFromSnapshot(completedSnapshot())

		assert.Equal(t, "session-1", bundle.SessionID)
		assert.Len(t, bundle.Documents, 2)
		assert.Equal(t, strongResume, bundle.Documents[workflow.KeyTailoredResume])
		assert.InDelta(t, 0.91, bundle.Metrics["overall_quality"], 1e-9)
		assert.InDelta(t, 0.88, bundle.Metrics["ats_compatibility"], 1e-9)
		assert.True(t, bundle.Approved)
		assert.False(t, bundle.CreatedAt.IsZero())
	})

	t.Run("empty snapshot yields an empty bundle", func(t *testing.T) {
		bundle := BundleFromSnapshot(workflow.Snapshot{})
		assert.Empty(t, bundle.Documents)
		assert.Empty(t, bundle.Metrics)
		assert.False(t, bundle.Approved)
	})
}

func TestPersistUnit(t *testing.T) {
	t.Run("saves the bundle and reports success diagnostically", func(t *testing.T) {
		sink := &fakeSink{}
		events := runUnit(NewPersistUnit(sink), completedSnapshot())

		require.Len(t, sink.saved, 1)
		assert.Equal(t, "session-1", sink.saved[0].SessionID)
		require.Len(t, events, 1)
		assert.NotNil(t, events[0].Diagnostic)
	})

	t.Run("refuses to persist an empty run", func(t *testing.T) {
		sink := &fakeSink{}
		events := runUnit(NewPersistUnit(sink), workflow.Snapshot{})

		assert.Empty(t, sink.saved)
		require.Len(t, events, 1)
		assert.True(t, events[0].IsError())
	})

	t.Run("sink failure is reported, not raised", func(t *testing.T) {
		sink := &fakeSink{err: errors.New("disk full")}
		events := runUnit(NewPersistUnit(sink), completedSnapshot())

		require.Len(t, events, 1)
		message, _ := events[0].Delta[workflow.ErrorKey(persistUnitName)].(string)
		assert.Contains(t, message, "disk full")
	})
}

func TestExportUnit(t *testing.T) {
	t.Run("exports the bundle", func(t *testing.T) {
		exporter := &fakeExporter{paths: []string{"out/resume.md"}}
		events := runUnit(NewExportUnit(exporter), completedSnapshot())

		require.Len(t, exporter.bundles, 1)
		require.Len(t, events, 1)
		require.NotNil(t, events[0].Diagnostic)
		assert.Equal(t, []string{"out/resume.md"}, events[0].Diagnostic.Attrs["files"])
	})

	t.Run("exporter failure is reported, not raised", func(t *testing.T) {
		exporter := &fakeExporter{err: errors.New("permission denied")}
		events := runUnit(NewExportUnit(exporter), completedSnapshot())

		require.Len(t, events, 1)
		assert.True(t, events[0].IsError())
	})
}
