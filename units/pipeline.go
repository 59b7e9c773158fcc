package units

import (
	"github.com/draftflow/draftflow-go/completion"
	"github.com/draftflow/draftflow-go/workflow"
)

// PipelineOption configures the assembled drafting pipeline.
type PipelineOption func(*pipelineConfig)

type pipelineConfig struct {
	sink             ResultSink
	exporter         Exporter
	reviewerOptions  []ReviewerOption
	refineIterations int
}

// WithResultSink adds a persistence stage after review.
func WithResultSink(sink ResultSink) PipelineOption {
	return func(c *pipelineConfig) { c.sink = sink }
}

// WithExporter adds a file export stage after review.
func WithExporter(exporter Exporter) PipelineOption {
	return func(c *pipelineConfig) { c.exporter = exporter }
}

// WithReviewerOptions forwards options to the quality reviewer.
func WithReviewerOptions(opts ...ReviewerOption) PipelineOption {
	return func(c *pipelineConfig) { c.reviewerOptions = append(c.reviewerOptions, opts...) }
}

// WithRefinement wraps generation and review in a bounded loop. The
// reviewer escalates once the documents pass the threshold, ending the
// loop early; otherwise it runs maxIterations rounds.
func WithRefinement(maxIterations int) PipelineOption {
	return func(c *pipelineConfig) { c.refineIterations = maxIterations }
}

// NewDraftPipeline assembles the standard document drafting tree:
// parallel extraction of the applicant profile and job requirements,
// sequential generation of the dependent documents, then review and
// persistence.
func NewDraftPipeline(client completion.Client, opts ...PipelineOption) (workflow.Step, error) {
	cfg := &pipelineConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	analysis, err := workflow.NewParallel("analysis",
		workflow.NewUnitStep(NewProfileAnalyzer(client)),
		workflow.NewUnitStep(NewRequirementsParser(client)),
	)
	if err != nil {
		return nil, err
	}

	generation := workflow.NewSequential("generation",
		workflow.NewUnitStep(NewResumeTailor(client)),
		workflow.NewUnitStep(NewCoverLetterGenerator(client)),
	)

	reviewSteps := []workflow.Step{}
	if cfg.refineIterations > 1 {
		cfg.reviewerOptions = append(cfg.reviewerOptions, WithEscalateOnApproval())
	}
	reviewSteps = append(reviewSteps, workflow.NewUnitStep(NewQualityReviewer(cfg.reviewerOptions...)))

	var middle workflow.Step
	if cfg.refineIterations > 1 {
		middle, err = workflow.NewLoop("refinement", cfg.refineIterations,
			append([]workflow.Step{generation}, reviewSteps...)...)
		if err != nil {
			return nil, err
		}
		reviewSteps = nil
	} else {
		middle = generation
	}

	tail := reviewSteps
	if cfg.sink != nil {
		tail = append(tail, workflow.NewUnitStep(NewPersistUnit(cfg.sink)))
	}
	if cfg.exporter != nil {
		tail = append(tail, workflow.NewUnitStep(NewExportUnit(cfg.exporter)))
	}

	steps := []workflow.Step{analysis, middle}
	if len(tail) > 0 {
		steps = append(steps, workflow.NewSequential("review", tail...))
	}
	return workflow.NewSequential("draft_pipeline", steps...), nil
}
