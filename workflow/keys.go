package workflow

import (
	"fmt"
	"strings"
)

// Known session state keys. The underlying store stays type-erased for
// extensibility; shape is validated where a key is read, not written.
const (
	// Input keys. Each logical input accepts several aliases,
	// first-present-wins.
	KeyPrimaryDocument   = "cv_content"
	KeySecondaryDocument = "job_description"

	// Generated component keys.
	KeyApplicantProfile = "applicant_profile"
	KeyJobRequirements  = "job_requirements"
	KeyTailoredResume   = "tailored_resume"
	KeyCoverLetter      = "cover_letter"
	KeyQualityReview    = "quality_review"

	// Scalar metric keys.
	KeyQualityScore         = "quality_score"
	KeyATSScore             = "ats_score"
	KeyPersonalizationScore = "personalization_score"
	KeyApproved             = "approved"

	// Run bookkeeping keys written by the coordinator.
	KeySessionID         = "session_id"
	KeyCoordinatorStatus = "coordinator_status"
	KeyProcessingStage   = "processing_stage"

	// KeyEscalate is the termination-signal convention checked by loops.
	KeyEscalate = "escalate"
)

// PrimaryDocumentAliases are the accepted keys for the primary input
// document, in lookup order.
var PrimaryDocumentAliases = []string{"cv_content", "cv_text", "resume_content", "original_cv"}

// SecondaryDocumentAliases are the accepted keys for the secondary input
// document, in lookup order.
var SecondaryDocumentAliases = []string{"job_description", "job_content", "jd_content", "job_text"}

// ComponentKeys are the generated components reported in run summaries.
var ComponentKeys = []string{
	KeyApplicantProfile,
	KeyJobRequirements,
	KeyTailoredResume,
	KeyCoverLetter,
}

// MetricKeys maps state keys holding scalar quality metrics to the metric
// name used in run summaries.
var MetricKeys = map[string]string{
	KeyQualityScore:         "overall_quality",
	KeyATSScore:             "ats_compatibility",
	KeyPersonalizationScore: "personalization",
}

const errorKeySuffix = "_error"

// ErrorKey returns the conventional state key reporting a failure of the
// named subject.
func ErrorKey(subject string) string {
	return subject + errorKeySuffix
}

// IsErrorKey reports whether a state key follows the error-naming
// convention.
func IsErrorKey(key string) bool {
	return key == "error" || strings.HasSuffix(key, errorKeySuffix)
}

// ErrorSubject extracts the component name from an error key.
func ErrorSubject(key string) string {
	return strings.TrimSuffix(key, errorKeySuffix)
}

// firstAlias returns the first present, non-empty alias value in the
// snapshot.
func firstAlias(snap Snapshot, aliases []string) (string, bool) {
	for _, key := range aliases {
		if v, ok := snap[key]; ok {
			s := fmt.Sprintf("%v", v)
			if strings.TrimSpace(s) != "" {
				return s, true
			}
		}
	}
	return "", false
}

// PrimaryDocument resolves the primary input document from its alias keys.
func PrimaryDocument(snap Snapshot) (string, bool) {
	return firstAlias(snap, PrimaryDocumentAliases)
}

// SecondaryDocument resolves the secondary input document from its alias
// keys.
func SecondaryDocument(snap Snapshot) (string, bool) {
	return firstAlias(snap, SecondaryDocumentAliases)
}
