package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
)

func draftJSON(t *testing.T) string {
	t.Helper()
	out, err := json.Marshal(validRequirement())
	require.NoError(t, err)
	return string(out)
}

// TestMapper_Draft tests the happy path
func TestMapper_Draft(t *testing.T) {
	llm := &mockLLMService{responses: []string{draftJSON(t)}}
	mapper := NewMapper(llm)

	req, err := mapper.Draft(context.Background(), validControl(), evidenceWith("tls.go"), domain.DefaultGenerationSettings())

	require.NoError(t, err)
	assert.Equal(t, "SC-8", req.ControlID)
	assert.Equal(t, recordUUID, req.UUID)
	assert.Equal(t, 1, llm.calls())
}

// TestMapper_Draft_FencedResponse tests markdown fence tolerance
func TestMapper_Draft_FencedResponse(t *testing.T) {
	llm := &mockLLMService{responses: []string{"```json\n" + draftJSON(t) + "\n```"}}
	mapper := NewMapper(llm)

	req, err := mapper.Draft(context.Background(), validControl(), evidenceWith(), domain.DefaultGenerationSettings())

	require.NoError(t, err)
	assert.Equal(t, "SC-8", req.ControlID)
}

// TestMapper_Draft_OneReask tests the single parse retry
func TestMapper_Draft_OneReask(t *testing.T) {
	llm := &mockLLMService{responses: []string{"I cannot help with that.", draftJSON(t)}}
	mapper := NewMapper(llm)

	req, err := mapper.Draft(context.Background(), validControl(), evidenceWith(), domain.DefaultGenerationSettings())

	require.NoError(t, err)
	assert.Equal(t, "SC-8", req.ControlID)
	assert.Equal(t, 2, llm.calls())
}

// TestMapper_Draft_ReaskInstructsStructuredOutput tests the retry
// prompt tells the model to return valid structured output
func TestMapper_Draft_ReaskInstructsStructuredOutput(t *testing.T) {
	llm := &mockLLMService{responses: []string{"I cannot help with that.", draftJSON(t)}}
	mapper := NewMapper(llm)

	_, err := mapper.Draft(context.Background(), validControl(), evidenceWith(), domain.DefaultGenerationSettings())

	require.NoError(t, err)
	require.Equal(t, 2, llm.calls())
	assert.NotContains(t, llm.prompts[0], "previous response was not valid JSON")
	assert.Contains(t, llm.prompts[1], "previous response was not valid JSON")
	assert.Contains(t, llm.prompts[1], "Return only a valid JSON object")
}

// TestMapper_Draft_TwoMalformed tests giving up after the retry
func TestMapper_Draft_TwoMalformed(t *testing.T) {
	llm := &mockLLMService{responses: []string{"nope", "still nope"}}
	mapper := NewMapper(llm)

	_, err := mapper.Draft(context.Background(), validControl(), evidenceWith(), domain.DefaultGenerationSettings())

	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.Equal(t, 2, llm.calls())
}

// TestMapper_Draft_ProviderError tests provider failures pass through
func TestMapper_Draft_ProviderError(t *testing.T) {
	provErr := fmt.Errorf("rate limited: %w", domain.ErrProvider)
	llm := &mockLLMService{errs: []error{provErr}, responses: []string{draftJSON(t)}}
	mapper := NewMapper(llm)

	_, err := mapper.Draft(context.Background(), validControl(), evidenceWith(), domain.DefaultGenerationSettings())

	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.NotErrorIs(t, err, domain.ErrGeneration)
	assert.Equal(t, 1, llm.calls(), "provider failures must not burn the re-ask")
}

// TestMapper_Draft_BindsMissingIdentity tests identity stamping
func TestMapper_Draft_BindsMissingIdentity(t *testing.T) {
	bare := validRequirement()
	bare.UUID = ""
	bare.ControlID = ""
	bare.Statements[0].UUID = ""
	out, err := json.Marshal(bare)
	require.NoError(t, err)

	llm := &mockLLMService{responses: []string{string(out)}}
	mapper := NewMapper(llm)

	req, err := mapper.Draft(context.Background(), validControl(), evidenceWith(), domain.DefaultGenerationSettings())

	require.NoError(t, err)
	assert.Equal(t, "SC-8", req.ControlID)
	assert.Equal(t, recordUUID, req.UUID)
	assert.Equal(t, statementUUID, req.Statements[0].UUID)
}

// TestMapper_Revise tests repair keeps the control binding
func TestMapper_Revise(t *testing.T) {
	repaired := validRequirement()
	repaired.ControlID = "AC-6" // model tries to reassign
	out, err := json.Marshal(repaired)
	require.NoError(t, err)

	llm := &mockLLMService{responses: []string{string(out)}}
	mapper := NewMapper(llm)

	draft := validRequirement()
	violations := []domain.Violation{{Field: "control-status", Rule: domain.RuleStatusEnum, Message: "bad"}}

	revised, err := mapper.Revise(context.Background(), draft, violations)

	require.NoError(t, err)
	assert.Equal(t, "SC-8", revised.ControlID, "revision must not move the record to another control")
}

// TestMapper_Revise_MergesOnlyFlaggedFields tests an overreaching
// revision cannot rewrite fields the validator accepted
func TestMapper_Revise_MergesOnlyFlaggedFields(t *testing.T) {
	repaired := validRequirement()
	repaired.Status = domain.StatusNotApplicable
	repaired.Explanation = "Completely rewritten explanation."
	repaired.Name = "Renamed control"
	repaired.Statements = nil
	out, err := json.Marshal(repaired)
	require.NoError(t, err)

	llm := &mockLLMService{responses: []string{string(out)}}
	mapper := NewMapper(llm)

	draft := validRequirement()
	violations := []domain.Violation{{Field: "control-status", Rule: domain.RuleStatusEnum, Message: "bad"}}

	revised, err := mapper.Revise(context.Background(), draft, violations)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotApplicable, revised.Status, "the flagged field takes the revised value")
	assert.Equal(t, draft.Explanation, revised.Explanation, "unflagged fields keep their values")
	assert.Equal(t, draft.Name, revised.Name)
	assert.Equal(t, draft.Statements, revised.Statements)
}

// TestMapper_Revise_MergesNestedFieldByRoot tests indexed violation
// fields map onto their whole top-level field
func TestMapper_Revise_MergesNestedFieldByRoot(t *testing.T) {
	repaired := validRequirement()
	repaired.Statements[0].Description = "Repaired statement prose."
	repaired.Explanation = "Should not land."
	out, err := json.Marshal(repaired)
	require.NoError(t, err)

	llm := &mockLLMService{responses: []string{string(out)}}
	mapper := NewMapper(llm)

	draft := validRequirement()
	draft.Statements[0].Description = ""
	violations := []domain.Violation{{
		Field: "statements[0].description", Rule: domain.RuleRequiredField, Message: "empty",
	}}

	revised, err := mapper.Revise(context.Background(), draft, violations)

	require.NoError(t, err)
	assert.Equal(t, "Repaired statement prose.", revised.Statements[0].Description)
	assert.Equal(t, draft.Explanation, revised.Explanation)
}

// TestMapper_Revise_Malformed tests unusable revisions are reported
func TestMapper_Revise_Malformed(t *testing.T) {
	llm := &mockLLMService{responses: []string{"not json"}}
	mapper := NewMapper(llm)

	_, err := mapper.Revise(context.Background(), validRequirement(), nil)

	assert.ErrorIs(t, err, domain.ErrGeneration)
}

// TestExtractJSON tests fence and prose stripping
func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced no language", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading prose", "Here is the JSON:\n{\"a\":1}", `{"a":1}`},
		{"trailing prose", "{\"a\":1}\nHope this helps!", `{"a":1}`},
		{"array", `[{"a":1}]`, `[{"a":1}]`},
		{"no json at all", "sorry", "sorry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}
