package units

import (
	"context"
	"log/slog"

	"github.com/draftflow/draftflow-go/workflow"
)

const persistUnitName = "persistence"

// NewPersistUnit wraps a result sink as a pipeline stage. It requires at
// least one generated document; sink failures are reported, not raised.
func NewPersistUnit(sink ResultSink) workflow.Unit {
	return workflow.NewUnit(persistUnitName, "", func(ctx context.Context, snap workflow.Snapshot, emit workflow.EmitFunc) error {
		bundle := BundleFromSnapshot(snap)
		if len(bundle.Documents) == 0 {
			emit(workflow.NewErrorEvent(persistUnitName, persistUnitName,
				&PreconditionError{Unit: persistUnitName, Message: "no generated documents to persist"}))
			return nil
		}
		if err := sink.Save(ctx, bundle); err != nil {
			emit(workflow.NewErrorEvent(persistUnitName, persistUnitName, err))
			return nil
		}
		emit(workflow.NewDiagnosticEvent(persistUnitName, slog.LevelInfo, "result bundle persisted",
			map[string]any{"documents": len(bundle.Documents), "sessionId": bundle.SessionID}))
		return nil
	})
}

const exportUnitName = "export"

// NewExportUnit wraps an exporter as a pipeline stage.
func NewExportUnit(exporter Exporter) workflow.Unit {
	return workflow.NewUnit(exportUnitName, "", func(ctx context.Context, snap workflow.Snapshot, emit workflow.EmitFunc) error {
		bundle := BundleFromSnapshot(snap)
		if len(bundle.Documents) == 0 {
			emit(workflow.NewErrorEvent(exportUnitName, exportUnitName,
				&PreconditionError{Unit: exportUnitName, Message: "no generated documents to export"}))
			return nil
		}
		paths, err := exporter.Export(ctx, bundle)
		if err != nil {
			emit(workflow.NewErrorEvent(exportUnitName, exportUnitName, err))
			return nil
		}
		emit(workflow.NewDiagnosticEvent(exportUnitName, slog.LevelInfo, "documents exported",
			map[string]any{"files": paths}))
		return nil
	})
}
