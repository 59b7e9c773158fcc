package units

import (
	"fmt"

	"github.com/draftflow/draftflow-go/completion"
	"github.com/draftflow/draftflow-go/workflow"
)

const profileAnalyzerName = "cv_analyzer"

const profileInstruction = `You are a CV analysis specialist. Parse the CV below and extract
structured information as JSON with these fields: personal_info,
professional_summary, skills, work_experience, education, certifications,
achievements, keywords. Preserve original context and meaning, identify
quantifiable achievements, and extract industry-specific terminology for
ATS matching.`

// NewProfileAnalyzer creates the unit that extracts a structured
// applicant profile from the primary CV document.
func NewProfileAnalyzer(client completion.Client) workflow.Unit {
	return newTextUnit(profileAnalyzerName, workflow.KeyApplicantProfile, client,
		func(snap workflow.Snapshot) (string, error) {
			cv, ok := workflow.PrimaryDocument(snap)
			if !ok {
				return "", &PreconditionError{Unit: profileAnalyzerName,
					Message: "no CV content found for analysis"}
			}
			if len(cv) < 50 {
				return "", &PreconditionError{Unit: profileAnalyzerName,
					Message: "CV content is too short (minimum 50 characters)"}
			}
			return fmt.Sprintf("%s\n\nCV content to analyze:\n%s", profileInstruction, cv), nil
		})
}

const requirementsParserName = "job_parser"

const requirementsInstruction = `You are a job requirements analyst. Parse the job description below
and extract structured information as JSON with these fields: job_title,
company, required_skills, preferred_skills, responsibilities,
qualifications, keywords. Distinguish hard requirements from
nice-to-haves and capture terminology useful for ATS matching.`

// NewRequirementsParser creates the unit that extracts structured job
// requirements from the secondary document.
func NewRequirementsParser(client completion.Client) workflow.Unit {
	return newTextUnit(requirementsParserName, workflow.KeyJobRequirements, client,
		func(snap workflow.Snapshot) (string, error) {
			job, ok := workflow.SecondaryDocument(snap)
			if !ok {
				return "", &PreconditionError{Unit: requirementsParserName,
					Message: "no job description found for parsing"}
			}
			if len(job) < 30 {
				return "", &PreconditionError{Unit: requirementsParserName,
					Message: "job description is too short (minimum 30 characters)"}
			}
			return fmt.Sprintf("%s\n\nJob description to analyze:\n%s", requirementsInstruction, job), nil
		})
}
