package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed defaults in the
// binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names fall back to the built-in default.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptFileSummary produces a file-level security summary.
	// Placeholders: %s (filename), %s (file content).
	PromptFileSummary = "file_summary"

	// PromptControlMapping generates an implemented requirement for one
	// control from evidence.
	PromptControlMapping = "control_mapping"

	// PromptRevise repairs a draft requirement given a violation list.
	PromptRevise = "revise"

	// PromptEvaluate scores a finished requirement on four dimensions.
	PromptEvaluate = "evaluate"
)

// PromptStoreAware is an optional interface for services that can use
// custom prompts. If no store is set, services use the built-in
// defaults.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	SetPromptStore(store PromptStore)
}
