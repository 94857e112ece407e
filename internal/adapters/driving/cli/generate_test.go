package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
	"github.com/custodia-labs/oscalgen-cli/internal/core/ports/driving"
)

func sampleOutcome(controlID string, state domain.RecordState) domain.RecordOutcome {
	return domain.RecordOutcome{
		ControlID: controlID,
		State:     state,
		Requirement: &domain.ImplementedRequirement{
			UUID:        "11111111-1111-4111-8111-111111111111",
			ControlID:   controlID,
			Status:      domain.StatusNotSatisfied,
			Name:        controlID,
			Description: "desc",
			Explanation: "explanation",
		},
	}
}

func TestSplitControls(t *testing.T) {
	assert.Equal(t, []string{"sc-8", "ac-6"}, splitControls("sc-8, ac-6"))
	assert.Equal(t, []string{"sc-8"}, splitControls(",sc-8,,"))
	assert.Nil(t, splitControls("  "))
}

func TestWriteGenerateArtifacts_AllAccepted(t *testing.T) {
	dir := t.TempDir()
	result := &driving.GenerateResult{
		Accepted: []domain.RecordOutcome{sampleOutcome("SC-8", domain.StateAccepted)},
	}

	require.NoError(t, writeGenerateArtifacts(dir, result))

	data, err := os.ReadFile(filepath.Join(dir, requirementsFile))
	require.NoError(t, err)

	var wrapped struct {
		ImplementedRequirements []domain.ImplementedRequirement `json:"implemented-requirements"`
	}
	require.NoError(t, json.Unmarshal(data, &wrapped))
	require.Len(t, wrapped.ImplementedRequirements, 1)
	assert.Equal(t, "SC-8", wrapped.ImplementedRequirements[0].ControlID)

	// No failures, no failure artifact.
	_, err = os.Stat(filepath.Join(dir, failuresFile))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteGenerateArtifacts_Failures(t *testing.T) {
	dir := t.TempDir()
	failed := sampleOutcome("AC-6", domain.StateFailed)
	failed.History = []domain.RepairRound{{
		Attempt: 1,
		Violations: []domain.Violation{{
			Field:   "control-status",
			Rule:    domain.RuleStatusEnum,
			Message: "unknown status",
		}},
	}}
	result := &driving.GenerateResult{
		Accepted: []domain.RecordOutcome{sampleOutcome("SC-8", domain.StateAccepted)},
		Failed:   []domain.RecordOutcome{failed},
	}

	require.NoError(t, writeGenerateArtifacts(dir, result))

	data, err := os.ReadFile(filepath.Join(dir, failuresFile))
	require.NoError(t, err)

	var report struct {
		Failures []domain.RecordOutcome `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(data, &report))
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "AC-6", report.Failures[0].ControlID)
	require.Len(t, report.Failures[0].History, 1)
	assert.Equal(t, domain.RuleStatusEnum, report.Failures[0].History[0].Violations[0].Rule)
}

func TestWriteGenerateArtifacts_CreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "nested")

	require.NoError(t, writeGenerateArtifacts(dir, &driving.GenerateResult{}))

	_, err := os.Stat(filepath.Join(dir, requirementsFile))
	assert.NoError(t, err)
}

func TestReadRequirements_Wrapped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, requirementsFile)
	result := &driving.GenerateResult{
		Accepted: []domain.RecordOutcome{sampleOutcome("SC-8", domain.StateAccepted)},
	}
	require.NoError(t, writeGenerateArtifacts(dir, result))

	reqs, err := readRequirements(path)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "SC-8", reqs[0].ControlID)
}

func TestReadRequirements_BareArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reqs.json")
	outcome := sampleOutcome("AC-6", domain.StateAccepted)
	data, err := json.Marshal([]domain.ImplementedRequirement{*outcome.Requirement})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	reqs, err := readRequirements(path)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "AC-6", reqs[0].ControlID)
}

func TestReadRequirements_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reqs.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := readRequirements(path)
	assert.Error(t, err)
}

func TestReadRequirements_Missing(t *testing.T) {
	_, err := readRequirements(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
