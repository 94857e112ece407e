package domain

// Violation is a structured per-field validation problem. It is a data
// value, not an error: violations drive the critique-revise loop.
type Violation struct {
	// Field names the offending field (e.g. "control-configuration[0].file_path").
	Field string `json:"field"`

	// Rule identifies the failed check (e.g. "status-enum", "cross-field").
	Rule string `json:"rule"`

	// Message describes the problem.
	Message string `json:"message"`

	// Suggestion is an optional one-line fix.
	Suggestion string `json:"suggestion,omitempty"`
}

// Validation rule identifiers.
const (
	RuleStatusEnum       = "status-enum"
	RuleRequiredField    = "required-field"
	RuleIdentifierFormat = "identifier-format"
	RuleCrossField       = "status-configuration-consistency"
	RuleConfigExtension  = "configuration-extension"
	RuleProvenance       = "annotation-provenance"
	RuleUniqueID         = "identifier-collision"
)

// RecordState tracks a draft requirement through the validation state
// machine.
type RecordState string

// Record states.
const (
	// StateDraft is a freshly generated, unvalidated record.
	StateDraft RecordState = "DRAFT"

	// StateLocallyValid passed all per-record checks.
	StateLocallyValid RecordState = "LOCALLY_VALID"

	// StateLocallyInvalid failed per-record checks and awaits repair.
	StateLocallyInvalid RecordState = "LOCALLY_INVALID"

	// StateAccepted survived per-record and global validation.
	StateAccepted RecordState = "ACCEPTED"

	// StateFailed exhausted its repair budget or collided globally.
	StateFailed RecordState = "FAILED"
)

// RepairRound records one critique-revise iteration for audit.
type RepairRound struct {
	// Attempt is the 1-based round number.
	Attempt int `json:"attempt"`

	// Violations are the problems present when the round started.
	Violations []Violation `json:"violations"`

	// Repaired is true when the round was a mechanical auto-fix rather
	// than an LLM revision.
	Repaired bool `json:"auto_fixed"`
}

// RecordOutcome pairs a requirement with its final state and the full
// violation history, so a failed record can always show why it never
// converged.
type RecordOutcome struct {
	// ControlID is the control this record was generated for.
	ControlID string `json:"control_id"`

	// State is the terminal state: ACCEPTED or FAILED.
	State RecordState `json:"state"`

	// Requirement is the accepted record, or the last-known draft for a
	// failed one.
	Requirement *ImplementedRequirement `json:"requirement"`

	// History holds every repair round in order.
	History []RepairRound `json:"history,omitempty"`

	// Err carries a terminal error description for records that failed
	// outside the validation loop (generation or provider failures).
	Err string `json:"error,omitempty"`
}
