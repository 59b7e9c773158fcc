package units

import (
	"context"
	"strings"

	"github.com/draftflow/draftflow-go/workflow"
)

const qualityReviewerName = "quality_reviewer"

// DefaultQualityThreshold is the minimum quality score for approval.
const DefaultQualityThreshold = 0.85

var resumeSections = []string{
	"professional summary", "summary", "objective",
	"experience", "work experience", "professional experience",
	"skills", "technical skills", "core competencies",
	"education", "certifications", "achievements",
}

var personalizationIndicators = []string{
	"your company", "your team", "your organization",
	"this role", "this position", "your mission",
}

var coverLetterClosings = []string{
	"sincerely", "best regards", "thank you", "looking forward",
}

// QualityReviewer scores the generated documents against structural and
// ATS heuristics and records whether they pass the approval threshold.
type QualityReviewer struct {
	threshold          float64
	escalateOnApproval bool
}

// ReviewerOption configures a QualityReviewer.
type ReviewerOption func(*QualityReviewer)

// WithThreshold overrides the approval threshold.
func WithThreshold(threshold float64) ReviewerOption {
	return func(r *QualityReviewer) { r.threshold = threshold }
}

// WithEscalateOnApproval makes the reviewer emit the loop termination
// signal once the documents are approved, for use inside refinement
// loops.
func WithEscalateOnApproval() ReviewerOption {
	return func(r *QualityReviewer) { r.escalateOnApproval = true }
}

// NewQualityReviewer creates the review unit.
func NewQualityReviewer(opts ...ReviewerOption) workflow.Unit {
	r := &QualityReviewer{threshold: DefaultQualityThreshold}
	for _, opt := range opts {
		opt(r)
	}
	return workflow.NewUnit(qualityReviewerName, workflow.KeyQualityReview, r.run)
}

func (r *QualityReviewer) run(ctx context.Context, snap workflow.Snapshot, emit workflow.EmitFunc) error {
	resume, _ := snap.GetString(workflow.KeyTailoredResume)
	coverLetter, _ := snap.GetString(workflow.KeyCoverLetter)

	if resume == "" && coverLetter == "" {
		emit(workflow.NewErrorEvent(qualityReviewerName, workflow.KeyQualityReview,
			&PreconditionError{Unit: qualityReviewerName, Message: "no content found for quality review"}))
		return nil
	}

	resumeReview := analyzeResume(resume)
	letterReview := analyzeCoverLetter(coverLetter)

	atsScore := resumeReview.atsScore()
	personalization := letterReview.personalizationScore()
	quality := 0.55*resumeReview.structureScore() + 0.25*atsScore + 0.20*personalization
	approved := quality >= r.threshold

	delta := map[string]any{
		workflow.KeyQualityReview: map[string]any{
			"resume_analysis": map[string]any{
				"sections_count": resumeReview.sectionsCount,
				"bullet_points":  resumeReview.bulletPoints,
				"word_count":     resumeReview.wordCount,
				"has_contact":    resumeReview.hasContact,
			},
			"cover_letter_analysis": map[string]any{
				"paragraph_count": letterReview.paragraphCount,
				"word_count":      letterReview.wordCount,
				"has_greeting":    letterReview.hasGreeting,
				"has_closing":     letterReview.hasClosing,
			},
			"threshold": r.threshold,
		},
		workflow.KeyQualityScore:         quality,
		workflow.KeyATSScore:             atsScore,
		workflow.KeyPersonalizationScore: personalization,
		workflow.KeyApproved:             approved,
	}
	if approved && r.escalateOnApproval {
		delta[workflow.KeyEscalate] = true
	}
	emit(workflow.NewEvent(qualityReviewerName, delta))
	return nil
}

type resumeReview struct {
	sectionsCount     int
	bulletPoints      int
	wordCount         int
	hasContact        bool
	appropriateLength bool
}

func analyzeResume(resume string) resumeReview {
	var review resumeReview
	if resume == "" {
		return review
	}

	found := map[string]bool{}
	for _, line := range strings.Split(resume, "\n") {
		lower := strings.ToLower(strings.TrimSpace(line))
		if len(lower) >= 50 {
			continue
		}
		for _, section := range resumeSections {
			if strings.Contains(lower, section) {
				found[section] = true
			}
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "•") || strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") {
			review.bulletPoints++
		}
	}
	review.sectionsCount = len(found)
	review.wordCount = len(strings.Fields(resume))
	review.hasContact = strings.ContainsAny(resume, "@(") ||
		strings.Contains(resume, ".com") || strings.Contains(resume, ".org")
	review.appropriateLength = review.wordCount >= 100 && review.wordCount <= 800
	return review
}

// structureScore rates overall resume structure in 0..1.
func (r resumeReview) structureScore() float64 {
	score := 0.0
	if r.sectionsCount >= 4 {
		score += 0.4
	} else {
		score += 0.1 * float64(r.sectionsCount)
	}
	if r.bulletPoints >= 3 {
		score += 0.3
	} else {
		score += 0.1 * float64(r.bulletPoints)
	}
	if r.appropriateLength {
		score += 0.2
	}
	if r.hasContact {
		score += 0.1
	}
	return score
}

// atsScore rates machine readability in 0..1: standard headers and bullet
// formatting are what tracking systems parse.
func (r resumeReview) atsScore() float64 {
	score := 0.0
	if r.sectionsCount >= 3 {
		score += 0.5
	} else {
		score += 0.15 * float64(r.sectionsCount)
	}
	if r.bulletPoints > 0 {
		score += 0.3
	}
	if r.appropriateLength {
		score += 0.2
	}
	return score
}

type coverLetterReview struct {
	paragraphCount    int
	wordCount         int
	hasGreeting       bool
	hasClosing        bool
	indicators        int
	appropriateLength bool
}

func analyzeCoverLetter(coverLetter string) coverLetterReview {
	var review coverLetterReview
	if coverLetter == "" {
		return review
	}

	lower := strings.ToLower(coverLetter)
	for _, p := range strings.Split(coverLetter, "\n\n") {
		if strings.TrimSpace(p) != "" {
			review.paragraphCount++
		}
	}
	review.wordCount = len(strings.Fields(coverLetter))

	lines := strings.Split(lower, "\n")
	head := lines
	if len(head) > 5 {
		head = head[:5]
	}
	for _, line := range head {
		if strings.Contains(line, "dear") {
			review.hasGreeting = true
			break
		}
	}
	for _, closing := range coverLetterClosings {
		if strings.Contains(lower, closing) {
			review.hasClosing = true
			break
		}
	}
	for _, indicator := range personalizationIndicators {
		if strings.Contains(lower, indicator) {
			review.indicators++
		}
	}
	review.appropriateLength = review.wordCount >= 150 && review.wordCount <= 400
	return review
}

// personalizationScore rates how specifically the letter addresses the
// role in 0..1.
func (c coverLetterReview) personalizationScore() float64 {
	score := 0.0
	switch {
	case c.indicators >= 3:
		score += 0.5
	default:
		score += 0.15 * float64(c.indicators)
	}
	if c.hasGreeting {
		score += 0.15
	}
	if c.hasClosing {
		score += 0.15
	}
	if c.paragraphCount >= 3 && c.paragraphCount <= 5 {
		score += 0.1
	}
	if c.appropriateLength {
		score += 0.1
	}
	return score
}
