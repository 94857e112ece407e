package domain

// Evaluation scores an already-generated requirement along four
// dimensions. Scores are 0 (inaccurate or missing), 1 (partially
// correct or vague), or 2 (complete, specific, accurate). Read-only:
// evaluation never feeds back into generation.
type Evaluation struct {
	// ControlID is the evaluated control.
	ControlID string `json:"control_id"`

	// StatusAlignment scores whether the status matches the explanation
	// and configuration.
	StatusAlignment int `json:"status_alignment"`

	// ExplanationQuality scores clarity and evidence grounding.
	ExplanationQuality int `json:"explanation_quality"`

	// ConfigurationSupport scores specificity and validity of the
	// configuration references.
	ConfigurationSupport int `json:"configuration_support"`

	// OverallConsistency scores whether all parts reinforce each other.
	OverallConsistency int `json:"overall_consistency"`

	// Justification explains the scores.
	Justification string `json:"justification"`

	// Recommendation suggests how to improve the mapping, if anything.
	Recommendation string `json:"recommendation"`
}

// Total returns the summed score out of 8.
func (e Evaluation) Total() int {
	return e.StatusAlignment + e.ExplanationQuality +
		e.ConfigurationSupport + e.OverallConsistency
}

// ScoresValid reports whether every dimension is within 0..2.
func (e Evaluation) ScoresValid() bool {
	for _, s := range []int{
		e.StatusAlignment, e.ExplanationQuality,
		e.ConfigurationSupport, e.OverallConsistency,
	} {
		if s < 0 || s > 2 {
			return false
		}
	}
	return true
}
