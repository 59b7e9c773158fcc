package workflow

import "sort"

// ComponentError is one error entry collected from final session state.
type ComponentError struct {
	Component string `json:"component"`
	Message   string `json:"message"`
}

// RunSummary is a read-only projection over final session state.
type RunSummary struct {
	SessionID           string             `json:"sessionId"`
	Status              Status             `json:"status"`
	GeneratedComponents []string           `json:"generatedComponents"`
	QualityMetrics      map[string]float64 `json:"qualityMetrics,omitempty"`
	Errors              []ComponentError   `json:"errors,omitempty"`
}

// Summary derives the run summary from the coordinator's session. Before
// the first run it reports an idle summary.
func (c *Coordinator) Summary() RunSummary {
	c.mu.Lock()
	session := c.session
	status := c.status
	c.mu.Unlock()

	summary := RunSummary{Status: status, QualityMetrics: map[string]float64{}}
	if session == nil {
		return summary
	}
	summary.SessionID = session.ID()

	snap := session.Snapshot()
	for _, key := range ComponentKeys {
		if _, ok := snap[key]; ok {
			summary.GeneratedComponents = append(summary.GeneratedComponents, key)
		}
	}
	for key, name := range MetricKeys {
		if v, ok := snap.GetFloat(key); ok {
			summary.QualityMetrics[name] = v
		}
	}

	var errorKeys []string
	for key := range snap {
		if IsErrorKey(key) {
			errorKeys = append(errorKeys, key)
		}
	}
	sort.Strings(errorKeys)
	for _, key := range errorKeys {
		message, _ := snap.GetString(key)
		summary.Errors = append(summary.Errors, ComponentError{
			Component: ErrorSubject(key),
			Message:   message,
		})
	}
	return summary
}
