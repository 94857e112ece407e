package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
	"github.com/custodia-labs/oscalgen-cli/internal/core/ports/driven"
	"github.com/custodia-labs/oscalgen-cli/internal/core/ports/driving"
	"github.com/custodia-labs/oscalgen-cli/internal/logger"
	"github.com/custodia-labs/oscalgen-cli/internal/prompts"
)

// Ensure EvaluatorService implements the interfaces.
var (
	_ driving.EvaluatorService = (*EvaluatorService)(nil)
	_ driven.PromptStoreAware  = (*EvaluatorService)(nil)
)

// evaluateMaxTokens bounds the scoring response size.
const evaluateMaxTokens = 1024

// EvaluatorService scores generated requirements along four quality
// dimensions. It reads the requirement set and never writes back;
// evaluation is an audit, not a repair pass.
type EvaluatorService struct {
	llm         driven.LLMService
	promptStore driven.PromptStore
}

// NewEvaluatorService creates an evaluator on the given model service.
func NewEvaluatorService(llm driven.LLMService) *EvaluatorService {
	return &EvaluatorService{llm: llm}
}

// SetPromptStore sets the store for customisable prompts.
func (s *EvaluatorService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// evaluateResponse matches the JSON shape the scoring prompt demands.
type evaluateResponse struct {
	ControlID string `json:"control-id"`
	Scores    struct {
		StatusAlignment      int `json:"status_alignment"`
		ExplanationQuality   int `json:"explanation_quality"`
		ConfigurationSupport int `json:"configuration_support"`
		OverallConsistency   int `json:"overall_consistency"`
	} `json:"scores"`
	TotalScore     int    `json:"total_score"`
	Justification  string `json:"justification"`
	Recommendation string `json:"recommendation"`
}

// Evaluate scores each requirement independently. A malformed or
// out-of-range response is reported per record and skipped; one bad
// score never voids the rest of the report.
func (s *EvaluatorService) Evaluate(
	ctx context.Context, requirements []domain.ImplementedRequirement,
) (*driving.EvaluateResult, error) {
	logger.Section("Requirement Evaluation")
	logger.Info("Scoring %d requirements", len(requirements))

	template := prompts.Defaults[driven.PromptEvaluate]
	if s.promptStore != nil {
		if tmpl, err := s.promptStore.Load(driven.PromptEvaluate); err == nil && tmpl != "" {
			template = tmpl
		}
	}

	result := &driving.EvaluateResult{}
	for i := range requirements {
		req := &requirements[i]

		eval, err := s.scoreOne(ctx, template, req)
		if err != nil {
			logger.Warn("Scoring %s failed: %v", req.ControlID, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", req.ControlID, err))
			continue
		}
		result.Evaluations = append(result.Evaluations, eval)
		logger.Debug("%s scored %d/8", eval.ControlID, eval.Total())
	}

	return result, nil
}

// scoreOne runs a single scoring call and validates the response.
func (s *EvaluatorService) scoreOne(
	ctx context.Context, template string, req *domain.ImplementedRequirement,
) (domain.Evaluation, error) {
	prompt := prompts.BuildEvaluate(template, req)

	raw, err := s.llm.Complete(ctx, prompt, driven.CompleteOptions{
		MaxTokens:   evaluateMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		return domain.Evaluation{}, err
	}

	var resp evaluateResponse
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &resp); err != nil {
		return domain.Evaluation{}, fmt.Errorf("parse evaluation: %w", err)
	}

	eval := domain.Evaluation{
		ControlID:            req.ControlID,
		StatusAlignment:      resp.Scores.StatusAlignment,
		ExplanationQuality:   resp.Scores.ExplanationQuality,
		ConfigurationSupport: resp.Scores.ConfigurationSupport,
		OverallConsistency:   resp.Scores.OverallConsistency,
		Justification:        resp.Justification,
		Recommendation:       resp.Recommendation,
	}
	if !eval.ScoresValid() {
		return domain.Evaluation{}, fmt.Errorf("scores out of range in evaluation of %s", req.ControlID)
	}
	return eval, nil
}
