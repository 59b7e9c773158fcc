package units

import (
	"fmt"

	"github.com/draftflow/draftflow-go/completion"
	"github.com/draftflow/draftflow-go/workflow"
)

const resumeTailorName = "resume_tailor"

const resumeInstruction = `You are a professional resume writer. Using the applicant profile and
job requirements below, write one optimized, ATS-friendly resume in
markdown. Focus on achievements, metrics and impact, use action verbs,
keep the applicant's authentic voice, and include the standard sections:
contact info, professional summary, technical skills, professional
experience, education, certifications, projects. Do not mention that the
content was adapted or customized.`

// NewResumeTailor creates the unit that writes the tailored resume from
// the extracted profile and requirements.
func NewResumeTailor(client completion.Client) workflow.Unit {
	return newTextUnit(resumeTailorName, workflow.KeyTailoredResume, client,
		func(snap workflow.Snapshot) (string, error) {
			profile, err := requireString(snap, resumeTailorName, workflow.KeyApplicantProfile, 1)
			if err != nil {
				return "", err
			}
			requirements, err := requireString(snap, resumeTailorName, workflow.KeyJobRequirements, 1)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s\n\nApplicant profile:\n%s\n\nJob requirements:\n%s",
				resumeInstruction, profile, requirements), nil
		})
}

const coverLetterName = "cover_letter_gen"

const coverLetterInstruction = `You are a professional cover letter writer. Using the applicant
profile, job requirements and tailored resume below, write one compelling,
concise cover letter addressed to "Hiring Manager". Demonstrate genuine
enthusiasm for the role, connect the applicant's strongest experience to
the requirements, and close professionally. Do not mention that the
content was adapted or customized.`

// NewCoverLetterGenerator creates the unit that writes the cover letter.
// It depends on the tailored resume, so it runs after the resume tailor.
func NewCoverLetterGenerator(client completion.Client) workflow.Unit {
	return newTextUnit(coverLetterName, workflow.KeyCoverLetter, client,
		func(snap workflow.Snapshot) (string, error) {
			profile, err := requireString(snap, coverLetterName, workflow.KeyApplicantProfile, 1)
			if err != nil {
				return "", err
			}
			requirements, err := requireString(snap, coverLetterName, workflow.KeyJobRequirements, 1)
			if err != nil {
				return "", err
			}
			resume, err := requireString(snap, coverLetterName, workflow.KeyTailoredResume, 1)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s\n\nApplicant profile:\n%s\n\nJob requirements:\n%s\n\nTailored resume:\n%s",
				coverLetterInstruction, profile, requirements, resume), nil
		})
}
