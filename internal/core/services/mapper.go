package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
	"github.com/custodia-labs/oscalgen-cli/internal/core/ports/driven"
	"github.com/custodia-labs/oscalgen-cli/internal/logger"
	"github.com/custodia-labs/oscalgen-cli/internal/prompts"
)

// Completion options for generation calls. Temperature stays at zero;
// the pipeline depends on reproducible output.
const (
	generateMaxTokens = 4096
	reviseMaxTokens   = 4096
)

// errMalformedResponse marks a completion that came back but could not
// be decoded, as opposed to a provider failure.
var errMalformedResponse = errors.New("malformed response")

// malformedReaskSuffix is appended to the prompt when the first
// response failed to parse.
const malformedReaskSuffix = "\n\nYour previous response was not valid JSON. " +
	"Return only a valid JSON object matching the requested structure, with no surrounding prose or markdown fences."

// Ensure Mapper implements the optional prompt-store hook.
var _ driven.PromptStoreAware = (*Mapper)(nil)

// Mapper turns a control descriptor plus its evidence bundle into a
// draft implemented requirement via one model call, and repairs drafts
// the validator flagged. All model access goes through the single
// LLMService port.
type Mapper struct {
	llm         driven.LLMService
	promptStore driven.PromptStore
}

// NewMapper creates a mapper on the given model service.
func NewMapper(llm driven.LLMService) *Mapper {
	return &Mapper{llm: llm}
}

// SetPromptStore sets the store for customisable prompts.
func (m *Mapper) SetPromptStore(store driven.PromptStore) {
	m.promptStore = store
}

// Draft generates a draft requirement for the control. A response that
// fails to parse gets exactly one re-ask; a second malformed response
// fails the control with domain.ErrGeneration. Provider failures pass
// through untouched so the engine can tell them apart.
func (m *Mapper) Draft(
	ctx context.Context, ctrl domain.ControlDescriptor, bundle domain.EvidenceBundle, settings domain.GenerationSettings,
) (*domain.ImplementedRequirement, error) {
	prompt := prompts.BuildControlMapping(m.template(driven.PromptControlMapping), ctrl, bundle, settings.TopK)

	req, err := m.completeAndParse(ctx, prompt, generateMaxTokens)
	if err == nil {
		m.bindIdentity(req, ctrl)
		return req, nil
	}
	if !errors.Is(err, errMalformedResponse) {
		return nil, err
	}

	// One re-ask for a malformed response, then give up.
	logger.Warn("Malformed generation response for %s, re-asking once: %v", ctrl.ID, err)
	req, err = m.completeAndParse(ctx, prompt+malformedReaskSuffix, generateMaxTokens)
	if err != nil {
		if !errors.Is(err, errMalformedResponse) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: control %s: %v", domain.ErrGeneration, ctrl.ID, err)
	}
	m.bindIdentity(req, ctrl)
	return req, nil
}

// Revise asks the model to repair only the flagged fields of a draft.
// The response is merged field by field: a field replaces its current
// value only when a violation named it, so a sloppy revision cannot
// silently rewrite parts the validator accepted. A malformed revision
// leaves the draft untouched and reports an error; the caller decides
// whether budget remains.
func (m *Mapper) Revise(
	ctx context.Context, req *domain.ImplementedRequirement, violations []domain.Violation,
) (*domain.ImplementedRequirement, error) {
	prompt := prompts.BuildRevise(m.template(driven.PromptRevise), req, violations)

	revised, err := m.completeAndParse(ctx, prompt, reviseMaxTokens)
	if err != nil {
		if !errors.Is(err, errMalformedResponse) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: revise %s: %v", domain.ErrGeneration, req.ControlID, err)
	}

	return mergeRevision(req, revised, violations), nil
}

// mergeRevision copies the flagged fields of a revision onto the
// existing draft. Fields the validator did not flag keep their current
// values, and the record never moves to another control.
func mergeRevision(
	existing, revised *domain.ImplementedRequirement, violations []domain.Violation,
) *domain.ImplementedRequirement {
	merged := *existing
	for _, field := range flaggedFieldRoots(violations) {
		switch field {
		case "uuid":
			merged.UUID = revised.UUID
		case "control-name":
			merged.Name = revised.Name
		case "control-description":
			merged.Description = revised.Description
		case "control-explanation":
			merged.Explanation = revised.Explanation
		case "control-status":
			merged.Status = revised.Status
		case "control-configuration":
			merged.Configuration = revised.Configuration
		case "statements":
			merged.Statements = revised.Statements
		case "annotations":
			merged.Annotations = revised.Annotations
		}
	}
	merged.ControlID = existing.ControlID
	return &merged
}

// flaggedFieldRoots reduces violation fields to their top-level record
// field, e.g. "control-configuration[0].file_path" to
// "control-configuration". Order is preserved, duplicates dropped.
func flaggedFieldRoots(violations []domain.Violation) []string {
	seen := make(map[string]bool)
	var roots []string
	for _, v := range violations {
		root := v.Field
		if idx := strings.IndexAny(root, "[."); idx >= 0 {
			root = root[:idx]
		}
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	return roots
}

// completeAndParse runs one completion and decodes the JSON payload.
func (m *Mapper) completeAndParse(ctx context.Context, prompt string, maxTokens int) (*domain.ImplementedRequirement, error) {
	raw, err := m.llm.Complete(ctx, prompt, driven.CompleteOptions{
		MaxTokens:   maxTokens,
		Temperature: 0,
	})
	if err != nil {
		return nil, err
	}

	var req domain.ImplementedRequirement
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &req); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedResponse, err)
	}
	return &req, nil
}

// bindIdentity stamps the pre-assigned identity onto a fresh draft so
// a cooperative model's output and a sloppy one's converge before
// validation.
func (m *Mapper) bindIdentity(req *domain.ImplementedRequirement, ctrl domain.ControlDescriptor) {
	if req.ControlID == "" {
		req.ControlID = ctrl.ID
	}
	if req.UUID == "" {
		req.UUID = ctrl.RecordID
	}
	for i := range req.Statements {
		if req.Statements[i].UUID == "" && i < len(ctrl.StatementIDs) {
			req.Statements[i].UUID = ctrl.StatementIDs[i]
		}
	}
}

// template loads a prompt from the store when one is configured,
// falling back to the built-in default.
func (m *Mapper) template(name string) string {
	if m.promptStore != nil {
		if tmpl, err := m.promptStore.Load(name); err == nil && tmpl != "" {
			return tmpl
		}
	}
	return prompts.Defaults[name]
}

// ExtractJSON strips markdown fences and leading or trailing prose from
// a model response, returning the outermost JSON value. Models wrap
// JSON in fences no matter how firmly told not to.
func ExtractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+3:]
		s = strings.TrimPrefix(s, "json")
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	open := s[start]
	closeCh := byte('}')
	if open == '[' {
		closeCh = ']'
	}
	if end := strings.LastIndexByte(s, closeCh); end > start {
		return s[start : end+1]
	}
	return s[start:]
}
