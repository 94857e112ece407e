package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
)

// ValidateRequirement runs every per-record check against a draft and
// returns the full violation list in deterministic order. Checks never
// short-circuit: a draft with three problems reports three violations
// so one repair round can address them all.
func ValidateRequirement(
	req *domain.ImplementedRequirement,
	ctrl domain.ControlDescriptor,
	bundle domain.EvidenceBundle,
	settings domain.GenerationSettings,
) []domain.Violation {
	var violations []domain.Violation

	violations = append(violations, checkRequiredFields(req)...)
	violations = append(violations, checkStatusEnum(req)...)
	violations = append(violations, checkIdentifiers(req, ctrl)...)
	violations = append(violations, checkCrossField(req)...)
	violations = append(violations, checkConfigExtensions(req, settings)...)
	violations = append(violations, checkProvenance(req, bundle)...)

	return violations
}

// checkRequiredFields verifies the fields no record may omit.
func checkRequiredFields(req *domain.ImplementedRequirement) []domain.Violation {
	var violations []domain.Violation

	required := []struct {
		field, value string
	}{
		{"uuid", req.UUID},
		{"control-id", req.ControlID},
		{"control-name", req.Name},
		{"control-description", req.Description},
		{"control-explanation", req.Explanation},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			violations = append(violations, domain.Violation{
				Field:   r.field,
				Rule:    domain.RuleRequiredField,
				Message: fmt.Sprintf("%s must not be empty", r.field),
			})
		}
	}

	for i, stmt := range req.Statements {
		if strings.TrimSpace(stmt.Description) == "" {
			violations = append(violations, domain.Violation{
				Field:   fmt.Sprintf("statements[%d].description", i),
				Rule:    domain.RuleRequiredField,
				Message: "statement description must not be empty",
			})
		}
	}

	return violations
}

// checkStatusEnum verifies the status is one of the five allowed values.
func checkStatusEnum(req *domain.ImplementedRequirement) []domain.Violation {
	if req.Status.IsValid() {
		return nil
	}

	v := domain.Violation{
		Field:   "control-status",
		Rule:    domain.RuleStatusEnum,
		Message: fmt.Sprintf("%q is not an allowed control status", req.Status),
	}
	if canonical, ok := domain.CanonicalStatus(string(req.Status)); ok {
		v.Suggestion = fmt.Sprintf("use %q", canonical)
	}
	return []domain.Violation{v}
}

// checkIdentifiers verifies every identifier is a well-formed UUID and
// matches its pre-assigned value from the control descriptor.
func checkIdentifiers(req *domain.ImplementedRequirement, ctrl domain.ControlDescriptor) []domain.Violation {
	var violations []domain.Violation

	if !domain.IsWellFormedID(req.UUID) {
		violations = append(violations, domain.Violation{
			Field:      "uuid",
			Rule:       domain.RuleIdentifierFormat,
			Message:    fmt.Sprintf("%q is not a well-formed identifier", req.UUID),
			Suggestion: fmt.Sprintf("use the assigned identifier %q", ctrl.RecordID),
		})
	} else if ctrl.RecordID != "" && req.UUID != ctrl.RecordID {
		violations = append(violations, domain.Violation{
			Field:      "uuid",
			Rule:       domain.RuleIdentifierFormat,
			Message:    "identifier differs from the assigned record identifier",
			Suggestion: fmt.Sprintf("use %q", ctrl.RecordID),
		})
	}

	for i, stmt := range req.Statements {
		if !domain.IsWellFormedID(stmt.UUID) {
			violations = append(violations, domain.Violation{
				Field:   fmt.Sprintf("statements[%d].uuid", i),
				Rule:    domain.RuleIdentifierFormat,
				Message: fmt.Sprintf("%q is not a well-formed identifier", stmt.UUID),
			})
			continue
		}
		if i < len(ctrl.StatementIDs) && stmt.UUID != ctrl.StatementIDs[i] {
			violations = append(violations, domain.Violation{
				Field:      fmt.Sprintf("statements[%d].uuid", i),
				Rule:       domain.RuleIdentifierFormat,
				Message:    "identifier differs from the assigned statement identifier",
				Suggestion: fmt.Sprintf("use %q", ctrl.StatementIDs[i]),
			})
		}
	}

	return violations
}

// checkCrossField enforces the status-configuration consistency rule:
// configuration-dependent statuses require references, all others
// forbid them.
func checkCrossField(req *domain.ImplementedRequirement) []domain.Violation {
	if !req.Status.IsValid() {
		// Status problems are already reported; the cross-field rule
		// is undefined for an unknown status.
		return nil
	}

	requires := req.Status.RequiresConfiguration()
	has := len(req.Configuration) > 0

	switch {
	case requires && !has:
		return []domain.Violation{{
			Field:      "control-configuration",
			Rule:       domain.RuleCrossField,
			Message:    fmt.Sprintf("status %q requires at least one configuration reference", req.Status),
			Suggestion: "add the file path, key path and line number of the relevant setting",
		}}
	case !requires && has:
		return []domain.Violation{{
			Field:      "control-configuration",
			Rule:       domain.RuleCrossField,
			Message:    fmt.Sprintf("status %q must not carry configuration references", req.Status),
			Suggestion: "remove",
		}}
	default:
		return nil
	}
}

// checkConfigExtensions verifies each configuration reference points at
// a recognised configuration file and is structurally complete.
func checkConfigExtensions(req *domain.ImplementedRequirement, settings domain.GenerationSettings) []domain.Violation {
	var violations []domain.Violation

	for i, ref := range req.Configuration {
		field := fmt.Sprintf("control-configuration[%d]", i)

		if strings.TrimSpace(ref.FilePath) == "" {
			violations = append(violations, domain.Violation{
				Field:   field + ".file_path",
				Rule:    domain.RuleRequiredField,
				Message: "configuration reference needs a file path",
			})
			continue
		}
		if !settings.AllowsExtension(ref.Extension()) {
			violations = append(violations, domain.Violation{
				Field:   field + ".file_path",
				Rule:    domain.RuleConfigExtension,
				Message: fmt.Sprintf("%q is not a recognised configuration file", ref.FilePath),
				Suggestion: fmt.Sprintf("reference a file with one of: %s",
					strings.Join(settings.ConfigExtensions, ", ")),
			})
		}
		if strings.TrimSpace(ref.KeyPath) == "" {
			violations = append(violations, domain.Violation{
				Field:   field + ".key_path",
				Rule:    domain.RuleRequiredField,
				Message: "configuration reference needs a key path",
			})
		}
		if ref.LineNumber < 0 {
			violations = append(violations, domain.Violation{
				Field:   field + ".line_number",
				Rule:    domain.RuleRequiredField,
				Message: "line number must not be negative",
			})
		}
	}

	return violations
}

// checkProvenance verifies annotations reference files that actually
// appeared in the evidence bundle. Fabricated provenance is worse than
// no provenance.
func checkProvenance(req *domain.ImplementedRequirement, bundle domain.EvidenceBundle) []domain.Violation {
	var violations []domain.Violation

	for i, ann := range req.Annotations {
		if strings.TrimSpace(ann.SourceFile) == "" {
			violations = append(violations, domain.Violation{
				Field:   fmt.Sprintf("annotations[%d].source_file", i),
				Rule:    domain.RuleRequiredField,
				Message: "annotation needs a source file",
			})
			continue
		}
		if !bundle.Contains(ann.SourceFile) {
			violations = append(violations, domain.Violation{
				Field:      fmt.Sprintf("annotations[%d].source_file", i),
				Rule:       domain.RuleProvenance,
				Message:    fmt.Sprintf("%q was not part of the retrieved evidence", ann.SourceFile),
				Suggestion: "remove",
			})
		}
	}

	return violations
}

// CheckGlobalUniqueness finds identifier collisions across a set of
// locally valid records. Every record involved in a collision is
// reported; the check runs once after all per-record pipelines finish.
func CheckGlobalUniqueness(records []*domain.ImplementedRequirement) map[string][]domain.Violation {
	owners := make(map[string][]string) // uuid -> control ids using it
	for _, rec := range records {
		if rec == nil {
			continue
		}
		for _, id := range rec.UUIDs() {
			owners[id] = append(owners[id], rec.ControlID)
		}
	}

	collisions := make(map[string][]domain.Violation)
	for id, controls := range owners {
		if len(controls) < 2 {
			continue
		}
		for _, controlID := range controls {
			collisions[controlID] = append(collisions[controlID], domain.Violation{
				Field: "uuid",
				Rule:  domain.RuleUniqueID,
				Message: fmt.Sprintf("identifier %q is shared between controls %s",
					id, strings.Join(controls, ", ")),
			})
		}
	}
	return collisions
}
