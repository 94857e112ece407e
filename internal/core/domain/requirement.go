package domain

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ControlStatus is the implementation status of a control.
// Exactly five values are valid; nothing else passes validation.
type ControlStatus string

// Allowed control statuses.
const (
	StatusInherentlySatisfied    ControlStatus = "applicable and inherently satisfied"
	StatusSatisfiedThroughConfig ControlStatus = "applicable but only satisfied through configuration"
	StatusPartiallySatisfied     ControlStatus = "applicable but partially satisfied"
	StatusNotSatisfied           ControlStatus = "applicable and not satisfied"
	StatusNotApplicable          ControlStatus = "not applicable"
)

// AllStatuses lists every valid control status.
func AllStatuses() []ControlStatus {
	return []ControlStatus{
		StatusInherentlySatisfied,
		StatusSatisfiedThroughConfig,
		StatusPartiallySatisfied,
		StatusNotSatisfied,
		StatusNotApplicable,
	}
}

// IsValid returns true if the status is one of the five allowed values.
func (s ControlStatus) IsValid() bool {
	switch s {
	case StatusInherentlySatisfied, StatusSatisfiedThroughConfig,
		StatusPartiallySatisfied, StatusNotSatisfied, StatusNotApplicable:
		return true
	default:
		return false
	}
}

// RequiresConfiguration returns true when the status demands a non-empty
// configuration reference list (the cross-field rule).
func (s ControlStatus) RequiresConfiguration() bool {
	return s == StatusSatisfiedThroughConfig || s == StatusPartiallySatisfied
}

// CanonicalStatus normalises a recognised-but-mangled status string to
// its canonical form: case and surrounding whitespace are forgiven, and
// runs of internal whitespace collapse. Returns false when the input is
// not recognisably one of the five statuses.
func CanonicalStatus(raw string) (ControlStatus, bool) {
	norm := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	for _, status := range AllStatuses() {
		if norm == string(status) {
			return status, true
		}
	}
	return "", false
}

// ConfigReference points at a configuration setting that satisfies (or
// partially satisfies) a control.
type ConfigReference struct {
	// FilePath is the repository-relative configuration file path. Its
	// extension must belong to the recognised-configuration allow-list.
	FilePath string `json:"file_path"`

	// KeyPath is the dotted key path inside the file
	// (e.g. "security.authentication.enabled").
	KeyPath string `json:"key_path"`

	// LineNumber is the 1-based line of the setting.
	LineNumber int `json:"line_number"`
}

// Extension returns the lowercase file extension of the reference.
func (r ConfigReference) Extension() string {
	return strings.ToLower(filepath.Ext(r.FilePath))
}

// Annotation is a source evidence reference attached to a requirement.
type Annotation struct {
	// SourceFile is the evidenced file path.
	SourceFile string `json:"source_file"`

	// StartLine and EndLine bound the evidence (zero for summaries).
	StartLine int `json:"start_line,omitempty"`
	EndLine   int `json:"end_line,omitempty"`

	// ChunkType records the evidence granularity.
	ChunkType ChunkType `json:"chunk_type"`
}

// Statement is one control statement implementation description, bound
// to a pre-assigned identifier from the control descriptor.
type Statement struct {
	// StatementID labels the catalog statement (e.g. "sc-8_smt.a").
	StatementID string `json:"statement-id"`

	// UUID is the pre-assigned unique identifier.
	UUID string `json:"uuid"`

	// Description explains how this statement is implemented.
	Description string `json:"description"`
}

// ImplementedRequirement is the generated and validated output record
// for one control. It is a draft until the validation engine accepts it
// or moves it to the failure set; immutable once finalised.
type ImplementedRequirement struct {
	// UUID is the unique record identifier, pre-assigned per control.
	UUID string `json:"uuid"`

	// ControlID is the catalog control id (e.g. "SC-8").
	ControlID string `json:"control-id"`

	// Status is one of the five allowed control statuses.
	Status ControlStatus `json:"control-status"`

	// Name is the human-readable control name.
	Name string `json:"control-name"`

	// Description is the original control description.
	Description string `json:"control-description"`

	// Explanation is the free-text implementation explanation.
	Explanation string `json:"control-explanation"`

	// Configuration lists configuration references. Required to be
	// non-empty iff Status.RequiresConfiguration().
	Configuration []ConfigReference `json:"control-configuration"`

	// Annotations reference the evidence the explanation is grounded on.
	Annotations []Annotation `json:"annotations,omitempty"`

	// Statements bind implementation prose to pre-assigned identifiers.
	Statements []Statement `json:"statements,omitempty"`
}

// UUIDs returns the record identifier followed by every statement
// identifier, for global uniqueness checks.
func (r *ImplementedRequirement) UUIDs() []string {
	ids := make([]string, 0, 1+len(r.Statements))
	ids = append(ids, r.UUID)
	for _, s := range r.Statements {
		ids = append(ids, s.UUID)
	}
	return ids
}

// IsWellFormedID reports whether the given identifier is a valid UUID.
func IsWellFormedID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
