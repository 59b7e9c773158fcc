package workflow

import "strings"

// ValidationError reports every input violation found before a run
// starts, not just the first.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, "; ")
}
