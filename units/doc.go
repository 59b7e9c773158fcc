// Package units contains the processing units of the document drafting
// pipeline: analysis of the applicant's CV, parsing of the job
// description, resume tailoring, cover letter generation, quality review,
// and the persistence/export stages.
//
// Every unit honors the workflow.Unit contract: it reads only its state
// snapshot, reports failures as <name>_error deltas, and checks its
// input preconditions before emitting anything else. Prompts are built
// fresh per invocation from immutable templates; units hold no mutable
// configuration.
package units
