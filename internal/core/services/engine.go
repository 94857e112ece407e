package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
	"github.com/custodia-labs/oscalgen-cli/internal/core/ports/driven"
	"github.com/custodia-labs/oscalgen-cli/internal/core/ports/driving"
	"github.com/custodia-labs/oscalgen-cli/internal/logger"
)

// Ensure Engine implements the interface.
var _ driving.GeneratorService = (*Engine)(nil)

// Engine runs the per-control generation pipeline: evidence retrieval,
// draft generation, and the bounded validate-repair loop, followed by a
// single global identifier check across all surviving records.
//
// Controls are independent until the global barrier, so a bounded
// worker pool processes them concurrently. One control's failure never
// aborts the batch.
type Engine struct {
	resolver  driven.CatalogResolver
	retriever *Retriever
	mapper    *Mapper
	settings  domain.GenerationSettings
}

// NewEngine creates a generation engine. Settings are normalised once
// here and threaded through every stage unchanged.
func NewEngine(
	resolver driven.CatalogResolver,
	retriever *Retriever,
	mapper *Mapper,
	settings domain.GenerationSettings,
) *Engine {
	return &Engine{
		resolver:  resolver,
		retriever: retriever,
		mapper:    mapper,
		settings:  settings.Normalise(),
	}
}

// Generate processes every requested control and reports partial
// success as data. Catalog resolution failures are fatal; everything
// after that degrades per control.
func (e *Engine) Generate(ctx context.Context, controlIDs []string) (*driving.GenerateResult, error) {
	logger.Section("Control Mapping Generation")
	logger.Info("Controls requested: %d, workers: %d, repair budget: %d",
		len(controlIDs), e.settings.Workers, e.settings.MaxCritiqueRetries)

	if len(controlIDs) == 0 {
		return &driving.GenerateResult{}, nil
	}

	descriptors, err := e.resolver.Resolve(ctx, controlIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve controls: %w", err)
	}

	outcomes := e.runPipelines(ctx, descriptors)

	// Global identifier check runs once, after every per-control
	// pipeline has finished. All colliding records are demoted; the
	// collision names both offenders so neither silently wins.
	e.applyGlobalCheck(outcomes)

	result := &driving.GenerateResult{}
	for _, outcome := range outcomes {
		if outcome.State == domain.StateAccepted {
			result.Accepted = append(result.Accepted, outcome)
		} else {
			result.Failed = append(result.Failed, outcome)
		}
	}

	logger.Info("Generation finished: %d accepted, %d failed", len(result.Accepted), len(result.Failed))
	return result, nil
}

// runPipelines fans descriptors out over the worker pool and collects
// outcomes in request order.
func (e *Engine) runPipelines(ctx context.Context, descriptors []domain.ControlDescriptor) []domain.RecordOutcome {
	outcomes := make([]domain.RecordOutcome, len(descriptors))

	workers := e.settings.Workers
	if workers > len(descriptors) {
		workers = len(descriptors)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = e.processControl(ctx, descriptors[i])
			}
		}()
	}

	for i := range descriptors {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// processControl runs one control through retrieval, drafting, and the
// bounded validate-repair loop.
func (e *Engine) processControl(ctx context.Context, ctrl domain.ControlDescriptor) domain.RecordOutcome {
	outcome := domain.RecordOutcome{ControlID: ctrl.ID, State: domain.StateFailed}

	bundle, err := e.retriever.Gather(ctx, ctrl, e.settings)
	if err != nil {
		outcome.Err = err.Error()
		logger.Warn("Evidence retrieval failed for %s: %v", ctrl.ID, err)
		return outcome
	}
	if bundle.Empty() {
		logger.Info("No evidence found for %s; generating from control text alone", ctrl.ID)
	}

	req, err := e.mapper.Draft(ctx, ctrl, bundle, e.settings)
	if err != nil {
		outcome.Err = err.Error()
		logger.Warn("Draft generation failed for %s: %v", ctrl.ID, err)
		return outcome
	}
	outcome.Requirement = req

	var violations []domain.Violation
	for attempt := 1; attempt <= e.settings.MaxCritiqueRetries; attempt++ {
		violations = ValidateRequirement(req, ctrl, bundle, e.settings)
		if len(violations) == 0 {
			break
		}
		logger.Debug("%s attempt %d: %d violations", ctrl.ID, attempt, len(violations))

		// Mechanical fixes first; they cost nothing and often clear
		// the whole list.
		repaired := AutoFix(req, ctrl, bundle, e.settings, violations)
		outcome.History = append(outcome.History, domain.RepairRound{
			Attempt:    attempt,
			Violations: violations,
			Repaired:   repaired,
		})
		if repaired {
			violations = ValidateRequirement(req, ctrl, bundle, e.settings)
			if len(violations) == 0 {
				break
			}
		}

		revised, err := e.mapper.Revise(ctx, req, violations)
		if err != nil {
			if errors.Is(err, domain.ErrGeneration) {
				// Malformed revision: keep the current draft, the
				// attempt is spent.
				logger.Warn("Revision for %s unusable on attempt %d: %v", ctrl.ID, attempt, err)
				continue
			}
			// Provider failures are terminal; retrying content repair
			// cannot cure a transport problem.
			outcome.Err = err.Error()
			outcome.Requirement = req
			logger.Warn("Provider failure for %s: %v", ctrl.ID, err)
			return outcome
		}
		req = revised
		outcome.Requirement = req
	}

	violations = ValidateRequirement(req, ctrl, bundle, e.settings)
	if len(violations) > 0 {
		outcome.History = append(outcome.History, domain.RepairRound{
			Attempt:    len(outcome.History) + 1,
			Violations: violations,
		})
		logger.Warn("%s failed validation after %d rounds", ctrl.ID, e.settings.MaxCritiqueRetries)
		return outcome
	}

	outcome.State = domain.StateLocallyValid
	outcome.Requirement = req
	return outcome
}

// applyGlobalCheck demotes every locally valid record involved in an
// identifier collision and promotes the rest to accepted.
func (e *Engine) applyGlobalCheck(outcomes []domain.RecordOutcome) {
	var valid []*domain.ImplementedRequirement
	for i := range outcomes {
		if outcomes[i].State == domain.StateLocallyValid {
			valid = append(valid, outcomes[i].Requirement)
		}
	}

	collisions := CheckGlobalUniqueness(valid)

	for i := range outcomes {
		if outcomes[i].State != domain.StateLocallyValid {
			continue
		}
		if vs, collided := collisions[outcomes[i].ControlID]; collided {
			outcomes[i].State = domain.StateFailed
			outcomes[i].History = append(outcomes[i].History, domain.RepairRound{
				Attempt:    len(outcomes[i].History) + 1,
				Violations: vs,
			})
			logger.Warn("%s demoted: identifier collision", outcomes[i].ControlID)
			continue
		}
		outcomes[i].State = domain.StateAccepted
	}
}
