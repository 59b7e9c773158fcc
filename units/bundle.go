package units

import (
	"context"
	"time"

	"github.com/draftflow/draftflow-go/workflow"
)

// ResultBundle is the finished output of one run handed to persistence
// and export sinks: keyed text blobs plus scalar metrics.
type ResultBundle struct {
	SessionID string
	CreatedAt time.Time
	Documents map[string]string
	Metrics   map[string]float64
	Approved  bool
}

// ResultSink accepts a finished result bundle. The pipeline depends only
// on the call outcome, never on sink internals.
type ResultSink interface {
	Save(ctx context.Context, bundle ResultBundle) error
}

// Exporter writes a finished result bundle to files and returns the
// written paths.
type Exporter interface {
	Export(ctx context.Context, bundle ResultBundle) ([]string, error)
}

// BundleFromSnapshot collects the generated documents and metrics from
// final state.
func BundleFromSnapshot(snap workflow.Snapshot) ResultBundle {
	bundle := ResultBundle{
		CreatedAt: time.Now().UTC(),
		Documents: map[string]string{},
		Metrics:   map[string]float64{},
	}
	if id, ok := snap.GetString(workflow.KeySessionID); ok {
		bundle.SessionID = id
	}
	for _, key := range workflow.ComponentKeys {
		if text, ok := snap.GetString(key); ok && text != "" {
			bundle.Documents[key] = text
		}
	}
	for key, name := range workflow.MetricKeys {
		if v, ok := snap.GetFloat(key); ok {
			bundle.Metrics[name] = v
		}
	}
	bundle.Approved, _ = snap.GetBool(workflow.KeyApproved)
	return bundle
}
