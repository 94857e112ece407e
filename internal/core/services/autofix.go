package services

import (
	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
	"github.com/custodia-labs/oscalgen-cli/internal/logger"
)

// AutoFix applies mechanical repairs for the violation classes that
// need no model call, in place. It returns true when anything changed.
// Repairs are conservative: they normalise, restore assigned values, or
// remove unsupported content, but never invent new content.
func AutoFix(
	req *domain.ImplementedRequirement,
	ctrl domain.ControlDescriptor,
	bundle domain.EvidenceBundle,
	settings domain.GenerationSettings,
	violations []domain.Violation,
) bool {
	changed := false

	for _, rule := range violationRules(violations) {
		switch rule {
		case domain.RuleStatusEnum:
			changed = fixStatus(req) || changed
		case domain.RuleIdentifierFormat:
			changed = fixIdentifiers(req, ctrl) || changed
		case domain.RuleConfigExtension:
			changed = dropBadConfigReferences(req, settings) || changed
		case domain.RuleProvenance:
			changed = dropFabricatedAnnotations(req, bundle) || changed
		}
	}

	// Cross-field consistency runs last: dropped references may have
	// emptied a configuration the status depends on.
	for _, rule := range violationRules(violations) {
		if rule == domain.RuleCrossField || rule == domain.RuleConfigExtension {
			changed = fixCrossField(req) || changed
			break
		}
	}

	if changed {
		logger.Debug("Auto-fixed draft for %s", req.ControlID)
	}
	return changed
}

// violationRules returns the distinct rules present, in first-seen order.
func violationRules(violations []domain.Violation) []string {
	seen := make(map[string]bool, len(violations))
	var rules []string
	for _, v := range violations {
		if !seen[v.Rule] {
			seen[v.Rule] = true
			rules = append(rules, v.Rule)
		}
	}
	return rules
}

// fixStatus normalises a mangled status, defaulting to "applicable and
// not satisfied" when the value is unrecognisable.
func fixStatus(req *domain.ImplementedRequirement) bool {
	if req.Status.IsValid() {
		return false
	}
	if canonical, ok := domain.CanonicalStatus(string(req.Status)); ok {
		req.Status = canonical
		return true
	}
	req.Status = domain.StatusNotSatisfied
	return true
}

// fixIdentifiers restores the pre-assigned identifiers. The assigned
// values are known, so mismatches never need a model round.
func fixIdentifiers(req *domain.ImplementedRequirement, ctrl domain.ControlDescriptor) bool {
	changed := false
	if ctrl.RecordID != "" && req.UUID != ctrl.RecordID {
		req.UUID = ctrl.RecordID
		changed = true
	}
	for i := range req.Statements {
		if i < len(ctrl.StatementIDs) && req.Statements[i].UUID != ctrl.StatementIDs[i] {
			req.Statements[i].UUID = ctrl.StatementIDs[i]
			changed = true
		}
	}
	return changed
}

// fixCrossField resolves status-configuration inconsistency. A
// configuration-dependent status without references falls back to
// "applicable and not satisfied"; references under a status that
// forbids them are dropped.
func fixCrossField(req *domain.ImplementedRequirement) bool {
	if !req.Status.IsValid() {
		return false
	}
	if req.Status.RequiresConfiguration() && len(req.Configuration) == 0 {
		req.Status = domain.StatusNotSatisfied
		return true
	}
	if !req.Status.RequiresConfiguration() && len(req.Configuration) > 0 {
		req.Configuration = nil
		return true
	}
	return false
}

// dropBadConfigReferences removes references whose extension is outside
// the allow-list. Referencing documentation as configuration is a
// failure of evidence, not of formatting, so the reference goes rather
// than getting a fabricated path.
func dropBadConfigReferences(req *domain.ImplementedRequirement, settings domain.GenerationSettings) bool {
	kept := make([]domain.ConfigReference, 0, len(req.Configuration))
	for _, ref := range req.Configuration {
		if settings.AllowsExtension(ref.Extension()) {
			kept = append(kept, ref)
		}
	}
	if len(kept) == len(req.Configuration) {
		return false
	}
	req.Configuration = kept
	return true
}

// dropFabricatedAnnotations removes annotations whose source file never
// appeared in the evidence bundle.
func dropFabricatedAnnotations(req *domain.ImplementedRequirement, bundle domain.EvidenceBundle) bool {
	kept := make([]domain.Annotation, 0, len(req.Annotations))
	for _, ann := range req.Annotations {
		if bundle.Contains(ann.SourceFile) {
			kept = append(kept, ann)
		}
	}
	if len(kept) == len(req.Annotations) {
		return false
	}
	req.Annotations = kept
	return true
}
