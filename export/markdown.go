// Package export writes finished documents to markdown files.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/draftflow/draftflow-go/units"
)

// Markdown exports generated documents as timestamped markdown files in
// one output directory.
type Markdown struct {
	dir string
	now func() time.Time
}

// NewMarkdown creates a markdown exporter writing into dir. The
// directory is created on first export.
func NewMarkdown(dir string) *Markdown {
	return &Markdown{dir: dir, now: time.Now}
}

// Export implements units.Exporter. Only primary deliverables (the
// tailored resume and the cover letter) are written; extracted analysis
// artifacts stay in the database.
func (m *Markdown) Export(ctx context.Context, bundle units.ResultBundle) ([]string, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create output dir: %w", err)
	}

	stamp := m.now().Format("20060102_150405")
	deliverables := map[string]string{
		"tailored_resume": "resume",
		"cover_letter":    "cover_letter",
	}

	var kinds []string
	for kind := range bundle.Documents {
		if _, ok := deliverables[kind]; ok {
			kinds = append(kinds, kind)
		}
	}
	sort.Strings(kinds)

	var paths []string
	for _, kind := range kinds {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		path := filepath.Join(m.dir, fmt.Sprintf("%s_%s.md", stamp, deliverables[kind]))
		if err := os.WriteFile(path, []byte(bundle.Documents[kind]), 0o644); err != nil {
			return paths, fmt.Errorf("export: write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
