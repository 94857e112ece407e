package driving

import (
	"context"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
)

// EvaluateResult collects per-record quality scores.
type EvaluateResult struct {
	// Evaluations holds one entry per scored requirement.
	Evaluations []domain.Evaluation

	// Errors holds per-record scoring failures (malformed responses),
	// reported rather than fatal.
	Errors []string
}

// EvaluatorService independently scores generated requirements.
// Read-only: it never mutates the requirement set.
type EvaluatorService interface {
	// Evaluate scores each requirement along four dimensions.
	Evaluate(ctx context.Context, requirements []domain.ImplementedRequirement) (*EvaluateResult, error)
}
