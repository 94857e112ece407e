package driving

import (
	"context"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
)

// GenerateResult is the structured outcome of a generation run. The
// core never exits the process; partial success is reported as data.
type GenerateResult struct {
	// Accepted holds records that passed local and global validation,
	// in control order.
	Accepted []domain.RecordOutcome

	// Failed holds records that exhausted their repair budget or
	// collided globally, each with full violation history. Failed
	// records are never silently dropped.
	Failed []domain.RecordOutcome
}

// AllAccepted returns true when no control failed.
func (r *GenerateResult) AllAccepted() bool {
	return len(r.Failed) == 0
}

// Requirements returns the accepted implemented requirements in order.
func (r *GenerateResult) Requirements() []domain.ImplementedRequirement {
	out := make([]domain.ImplementedRequirement, 0, len(r.Accepted))
	for _, rec := range r.Accepted {
		if rec.Requirement != nil {
			out = append(out, *rec.Requirement)
		}
	}
	return out
}

// GeneratorService runs the per-control retrieval, generation, and
// validation pipeline for a set of controls.
type GeneratorService interface {
	// Generate processes every control descriptor independently and
	// reports partial success; a single control's failure never aborts
	// the batch. Index-level failures are fatal and returned as errors.
	Generate(ctx context.Context, controlIDs []string) (*GenerateResult, error)
}
