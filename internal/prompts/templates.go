// Package prompts holds the default LLM prompt templates and the
// builders that assemble them with control descriptors, evidence and
// draft records. Templates use fmt placeholders so user overrides via
// the prompt store stay drop-in compatible.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
	"github.com/custodia-labs/oscalgen-cli/internal/core/ports/driven"
)

// maxChunkChars bounds how much of a chunk goes into the prompt to
// protect the model's context window.
const maxChunkChars = 800

// Defaults contains the built-in prompt templates keyed by the
// well-known prompt names.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var Defaults = map[string]string{
	driven.PromptFileSummary: `You are a seasoned security auditor specialising in source-code reviews.

Summarise the file below with a focus on:

* security controls (authentication, authorisation, encryption, input validation)
* compliance-relevant features (logging, auditing, IAM roles)
* any obvious risks

Return exactly one concise paragraph of 120 words or less.
Do NOT include any text verbatim from the file.

------------ FILE START (name=%s) ------------
%s
------------- FILE END -------------

Summary:`,

	driven.PromptControlMapping: `You are a compliance automation assistant that writes OSCAL component definitions.

You are analysing a service's implementation of the control %[1]s.
Name: %[2]s
Description: %[3]s

Based only on the evidence below, determine the implementation status.
"control-status" must be exactly one of:
- "applicable and inherently satisfied"
- "applicable but only satisfied through configuration"
- "applicable but partially satisfied"
- "applicable and not satisfied"
- "not applicable"

Rules:
- If inherently satisfied, explain how in "control-explanation".
- If satisfied through configuration or partially satisfied, "control-configuration" must list the file path, dotted key path and line number of each relevant setting. Reference only real configuration files (yaml, json, toml, ini, conf, properties), never documentation files.
- If a gap exists, describe it clearly in "control-explanation".
- If not applicable, give a brief reason in "control-explanation".
- Use the identifiers given below verbatim; never invent new ones.
- Never invent content you have no evidence for.

Return only valid, minified JSON with this structure. Do NOT wrap it in markdown fences and do NOT include comments:
%[4]s

Evidence (top-%[5]d per index):
%[6]s
---
Generate the JSON now:`,

	driven.PromptRevise: `You are an expert in OSCAL and software-security evidence mapping.
Follow every JSON rule exactly; invalid JSON is never acceptable.
Fix ONLY the flagged violations; keep every other field identical.
Never invent content you have no evidence for.

You are given an OSCAL implemented requirement object and the list of
validation violations found in it. Produce a repaired version of the
object that resolves every violation without altering anything else.

Return only the full, minified JSON object. No markdown, no comments.

"original": <<<%s>>>
"violations": <<<%s>>>`,

	driven.PromptEvaluate: `You are a senior compliance auditor reviewing automated control mappings in OSCAL format.
Do not assume any content beyond what is shown.

Here is a single implemented requirement. Evaluate:
1. Is "control-status" correct given the explanation and configuration?
2. Is "control-explanation" clear, accurate and grounded in the shown implementation?
3. Is "control-configuration" (if required) specific, correct and valid?
4. Do status, explanation, configuration and statements reinforce each other without contradiction?

Score each category 0-2:
- 0 = inaccurate or missing
- 1 = partially correct or vague
- 2 = complete, specific and accurate

Return only minified JSON in this format:
{"control-id":"<from input>","scores":{"status_alignment":0,"explanation_quality":0,"configuration_support":0,"overall_consistency":0},"total_score":0,"justification":"...","recommendation":"..."}

REQUIREMENT TO EVALUATE:
%s`,
}

// BuildFileSummary fills the file summary template.
func BuildFileSummary(template, filename, content string) string {
	return fmt.Sprintf(template, filename, content)
}

// BuildControlMapping fills the control mapping template with the
// resolved control, its pre-assigned identifiers and the evidence
// bundle.
func BuildControlMapping(template string, ctrl domain.ControlDescriptor, bundle domain.EvidenceBundle, topK int) string {
	return fmt.Sprintf(template,
		ctrl.ID,
		ctrl.Title,
		controlDescription(ctrl),
		responseSkeleton(ctrl),
		topK,
		evidenceSection(bundle),
	)
}

// BuildRevise fills the revise template with the draft record and its
// violations.
func BuildRevise(template string, req *domain.ImplementedRequirement, violations []domain.Violation) string {
	reqJSON, _ := json.Marshal(req)
	vioJSON, _ := json.Marshal(violations)
	return fmt.Sprintf(template, reqJSON, vioJSON)
}

// BuildEvaluate fills the evaluate template with the finished record.
func BuildEvaluate(template string, req *domain.ImplementedRequirement) string {
	reqJSON, _ := json.MarshalIndent(req, "", "  ")
	return fmt.Sprintf(template, reqJSON)
}

// controlDescription joins the control description with any additional
// requirements gathered from parameter prose.
func controlDescription(ctrl domain.ControlDescriptor) string {
	if len(ctrl.AdditionalRequirements) == 0 {
		return ctrl.Description
	}
	var b strings.Builder
	b.WriteString(ctrl.Description)
	b.WriteString("\nAdditional requirements:")
	for _, req := range ctrl.AdditionalRequirements {
		b.WriteString("\n- ")
		b.WriteString(req)
	}
	return b.String()
}

// responseSkeleton renders the JSON shape the model must return, with
// the pre-assigned identifiers already in place.
func responseSkeleton(ctrl domain.ControlDescriptor) string {
	statements := make([]domain.Statement, len(ctrl.StatementIDs))
	for i, id := range ctrl.StatementIDs {
		statements[i] = domain.Statement{
			StatementID: StatementLabel(ctrl.ID, i),
			UUID:        id,
			Description: "How this statement is implemented",
		}
	}

	skeleton := domain.ImplementedRequirement{
		UUID:        ctrl.RecordID,
		ControlID:   ctrl.ID,
		Status:      "one of the five allowed values",
		Name:        ctrl.Title,
		Description: ctrl.Description,
		Explanation: "Detailed explanation of how the control is implemented or why it is not applicable",
		Configuration: []domain.ConfigReference{
			{FilePath: "path/to/config.yaml", KeyPath: "security.authentication.enabled", LineNumber: 42},
		},
		Annotations: []domain.Annotation{
			{SourceFile: "path/to/evidence.go", StartLine: 1, EndLine: 10, ChunkType: domain.ChunkTypeCodeFunction},
		},
		Statements: statements,
	}

	out, _ := json.Marshal(skeleton)
	return string(out)
}

// StatementLabel derives the catalog statement label for the i-th
// pre-assigned statement of a control ("SC-8", 0 -> "sc-8_smt.a").
func StatementLabel(controlID string, i int) string {
	return fmt.Sprintf("%s_smt.%c", strings.ToLower(controlID), 'a'+rune(i))
}

// evidenceSection renders the evidence bundle as fenced bullets, one
// per chunk, truncated to protect context length.
func evidenceSection(bundle domain.EvidenceBundle) string {
	if bundle.Empty() {
		return "(no matching evidence was found in the repository)\n"
	}

	var b strings.Builder
	for _, item := range bundle.Items {
		chunk := item.Chunk
		content := strings.TrimSpace(chunk.Content)
		if len(content) > maxChunkChars {
			content = content[:maxChunkChars]
		}
		fmt.Fprintf(&b, "- %s • %s • lines %d-%d\n```\n%s\n```\n",
			chunk.Type, chunk.SourceFile, chunk.StartLine, chunk.EndLine, content)
	}
	return b.String()
}
