package domain

import (
	"regexp"
	"strings"
)

// controlIDPattern matches catalog control identifiers such as "sc-8",
// "ac-2.3" or "AC-6(10)" in their dotted form.
var controlIDPattern = regexp.MustCompile(`(?i)^[a-z]{2}-\d+(\.\d+)*$`)

// ControlParameter is an organisation-defined parameter (ODP) attached
// to a control, tailored by the profile.
type ControlParameter struct {
	// ID is the parameter identifier from the catalog (e.g. "sc-08_odp.01").
	ID string

	// Label is the catalog's short label for the parameter.
	Label string

	// ResolvedValues are the profile-tailored values, when set.
	ResolvedValues []string

	// Prose holds catalog guideline prose used when no value is resolved.
	Prose []string
}

// ControlDescriptor is a resolved compliance control: catalog content
// with profile parameters substituted. Read-only after resolution.
type ControlDescriptor struct {
	// ID is the stable catalog identifier (e.g. "SC-8").
	ID string

	// Title is the catalog title.
	Title string

	// Description is the full statement text with parameter placeholders
	// substituted. Never empty for a valid descriptor.
	Description string

	// AdditionalRequirements holds extra requirement statements gathered
	// from parameter prose.
	AdditionalRequirements []string

	// RecordID is the pre-assigned identifier for the generated
	// implemented requirement, so repeated runs mint no new identifiers.
	RecordID string

	// StatementIDs are pre-assigned identifiers for generated statements,
	// disjoint from every other control's so workers need no coordination.
	StatementIDs []string
}

// Validate checks the descriptor invariants.
func (c *ControlDescriptor) Validate() error {
	if !controlIDPattern.MatchString(c.ID) {
		return ErrInvalidInput
	}
	if strings.TrimSpace(c.Description) == "" {
		return ErrInvalidInput
	}
	return nil
}

// HintKey returns the control id in hint-registry form: lowercase with
// separators removed ("SC-8" -> "sc8", "AC-2.3" -> "ac2.3").
func (c *ControlDescriptor) HintKey() string {
	return HintKey(c.ID)
}

// HintKey normalises a catalog control id to the hint-registry key form.
func HintKey(controlID string) string {
	return strings.ToLower(strings.ReplaceAll(controlID, "-", ""))
}
