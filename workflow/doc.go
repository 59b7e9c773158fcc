// Package workflow provides composable orchestration primitives for
// multi-unit document generation pipelines.
//
// A pipeline is a tree of steps built from four kinds of nodes: a single
// processing unit, a sequential composition, a parallel fan-out, and a
// bounded loop. All steps in one run share a single Session whose state is
// mutated exclusively by merging event deltas; units themselves only ever
// see read-only snapshots.
//
// Key features:
//   - Lazy event streams from every unit, cancellable via context
//   - Atomic last-write-wins delta merge into shared session state
//   - Arrival-order merge for concurrent units with a composition-time
//     output-key disjointness check
//   - Partial-failure tolerance: unit errors are reported in state, not
//     raised, and never abort sibling units
//   - Diagnostic events carried on the same stream as state deltas
//
// Basic usage:
//
//	analyze, _ := workflow.NewParallel("analysis", analyzer, parser)
//	generate := workflow.NewSequential("generation", tailor, coverLetter)
//	review := workflow.NewSequential("review", reviewer, persister)
//
//	coord := workflow.NewCoordinator(
//	    workflow.NewSequential("pipeline", analyze, generate, review),
//	)
//	for event := range coord.Run(ctx, inputs) {
//	    // observe progress
//	}
//	summary := coord.Summary()
package workflow
