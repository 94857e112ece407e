package domain

// ChunkType classifies a unit of retrievable evidence.
type ChunkType string

// Available chunk types.
const (
	// ChunkTypeCodeFunction is a single function or method body.
	ChunkTypeCodeFunction ChunkType = "code-function"

	// ChunkTypeCodeClass is a type or class declaration with its members.
	ChunkTypeCodeClass ChunkType = "code-class"

	// ChunkTypeConfigBlock is a block from a configuration file.
	ChunkTypeConfigBlock ChunkType = "config-block"

	// ChunkTypeDocSection is a section from documentation.
	ChunkTypeDocSection ChunkType = "doc-section"

	// ChunkTypeFileSummary is an LLM-written security summary of a
	// whole file. Summaries live in the summary index, not the chunk
	// index, and carry no line range.
	ChunkTypeFileSummary ChunkType = "whole-file-summary"
)

// IsValid returns true if the chunk type is recognised.
func (t ChunkType) IsValid() bool {
	switch t {
	case ChunkTypeCodeFunction, ChunkTypeCodeClass, ChunkTypeConfigBlock,
		ChunkTypeDocSection, ChunkTypeFileSummary:
		return true
	default:
		return false
	}
}

// SecurityFlags records deterministic pattern-rule findings for a chunk.
// The map is keyed by flag name (e.g. "uses_tls") so new rules can be
// added without changing this type.
type SecurityFlags map[string]bool

// Set returns the names of flags that are true, sorted order is not
// guaranteed.
func (f SecurityFlags) Set() []string {
	names := make([]string, 0, len(f))
	for name, on := range f {
		if on {
			names = append(names, name)
		}
	}
	return names
}

// ChunkRecord is a unit of retrievable evidence with full provenance.
// Records are immutable once indexed except for additive enrichment of
// Flags and ControlHints during the analysis pass.
type ChunkRecord struct {
	// ID is unique within the owning index.
	ID string

	// SourceFile is the repository-relative path of the owning file.
	SourceFile string

	// Type classifies the chunk.
	Type ChunkType

	// Content is the chunk text.
	Content string

	// StartLine and EndLine bound the chunk within the source file
	// (1-based, inclusive). Both are zero for whole-file summaries.
	StartLine int
	EndLine   int

	// Embedding is the vector representation. Its dimension is constant
	// within an index.
	Embedding []float32

	// Flags holds pattern-rule findings.
	Flags SecurityFlags

	// ControlHints holds control ids evidenced by this chunk, additive
	// from the rule engine and the hint registry.
	ControlHints []string
}

// HasLineRange returns true when the record carries line numbers.
// Summary records do not.
func (c *ChunkRecord) HasLineRange() bool {
	return c.StartLine > 0 || c.EndLine > 0
}

// ValidateLineRange checks the line-range invariant: when present, the
// range is 1-based, ordered, and within fileLines when fileLines > 0.
func (c *ChunkRecord) ValidateLineRange(fileLines int) error {
	if !c.HasLineRange() {
		return nil
	}
	if c.StartLine < 1 || c.EndLine < 1 || c.StartLine > c.EndLine {
		return ErrInvalidInput
	}
	if fileLines > 0 && c.EndLine > fileLines {
		return ErrInvalidInput
	}
	return nil
}

// HasHint returns true if the record carries the given control hint.
// Hints are stored in catalog form (e.g. "sc-8" stored as "sc8").
func (c *ChunkRecord) HasHint(hint string) bool {
	for _, h := range c.ControlHints {
		if h == hint {
			return true
		}
	}
	return false
}

// AddHint appends a control hint if not already present.
func (c *ChunkRecord) AddHint(hint string) {
	if hint == "" || c.HasHint(hint) {
		return
	}
	c.ControlHints = append(c.ControlHints, hint)
}
