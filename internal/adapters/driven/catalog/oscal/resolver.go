// Package oscal resolves OSCAL catalog and profile documents into
// control descriptors ready for generation.
package oscal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
	"github.com/custodia-labs/oscalgen-cli/internal/core/ports/driven"
	"github.com/custodia-labs/oscalgen-cli/internal/logger"
)

// Ensure Resolver implements the interface.
var _ driven.CatalogResolver = (*Resolver)(nil)

// catalogDocument mirrors the subset of the OSCAL catalog schema the
// resolver reads. Controls live both at the top level and inside
// groups.
type catalogDocument struct {
	Catalog struct {
		Controls []catalogControl `json:"controls"`
		Groups   []struct {
			Controls []catalogControl `json:"controls"`
		} `json:"groups"`
	} `json:"catalog"`
}

// catalogControl is one control definition.
type catalogControl struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Params []catalogParam `json:"params"`
	Parts  []catalogPart  `json:"parts"`
}

// catalogParam is an organisation-defined parameter declaration.
type catalogParam struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Prose      string `json:"prose"`
	Guidelines []struct {
		Prose string `json:"prose"`
	} `json:"guidelines"`
}

// catalogPart is a named prose part; statement parts nest.
type catalogPart struct {
	Name  string        `json:"name"`
	Prose string        `json:"prose"`
	Parts []catalogPart `json:"parts"`
}

// profileDocument mirrors the subset of the OSCAL profile schema the
// resolver reads: parameter tailoring under modify.set-parameters.
type profileDocument struct {
	Profile struct {
		Modify struct {
			SetParameters []profileParameter `json:"set-parameters"`
		} `json:"modify"`
	} `json:"profile"`
}

// profileParameter is one tailored parameter.
type profileParameter struct {
	ParamID     string   `json:"param-id"`
	Value       string   `json:"value"`
	Values      []string `json:"values"`
	Constraints []struct {
		Description string `json:"description"`
	} `json:"constraints"`
}

// Resolver resolves control ids against a loaded catalog and profile.
// Identifiers are assigned once at load, so every Resolve call within a
// run returns the same descriptor for the same control.
type Resolver struct {
	controls map[string]catalogControl
	params   map[string]profileParameter
	resolved map[string]domain.ControlDescriptor
}

// NewResolver loads the catalog and profile JSON documents. The profile
// path may be empty, in which case parameters resolve from catalog
// prose alone.
func NewResolver(catalogPath, profilePath string) (*Resolver, error) {
	var catalog catalogDocument
	if err := readJSON(catalogPath, &catalog); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	controls := make(map[string]catalogControl)
	for _, ctrl := range catalog.Catalog.Controls {
		controls[strings.ToLower(ctrl.ID)] = ctrl
	}
	for _, group := range catalog.Catalog.Groups {
		for _, ctrl := range group.Controls {
			controls[strings.ToLower(ctrl.ID)] = ctrl
		}
	}
	if len(controls) == 0 {
		return nil, fmt.Errorf("%w: catalog %s contains no controls", domain.ErrInvalidInput, catalogPath)
	}

	params := make(map[string]profileParameter)
	if profilePath != "" {
		var profile profileDocument
		if err := readJSON(profilePath, &profile); err != nil {
			return nil, fmt.Errorf("load profile: %w", err)
		}
		for _, p := range profile.Profile.Modify.SetParameters {
			params[p.ParamID] = p
		}
	}

	logger.Debug("Catalog loaded: %d controls, %d tailored parameters", len(controls), len(params))

	return &Resolver{
		controls: controls,
		params:   params,
		resolved: make(map[string]domain.ControlDescriptor),
	}, nil
}

// Resolve returns the descriptors for the requested control ids, in
// request order. Unknown control ids produce domain.ErrNotFound.
func (r *Resolver) Resolve(_ context.Context, controlIDs []string) ([]domain.ControlDescriptor, error) {
	out := make([]domain.ControlDescriptor, 0, len(controlIDs))
	for _, id := range controlIDs {
		desc, err := r.resolveOne(id)
		if err != nil {
			return nil, err
		}
		out = append(out, desc)
	}
	return out, nil
}

// resolveOne builds (or returns the cached) descriptor for one control.
func (r *Resolver) resolveOne(requested string) (domain.ControlDescriptor, error) {
	key := strings.ToLower(strings.TrimSpace(requested))
	if desc, ok := r.resolved[key]; ok {
		return desc, nil
	}

	ctrl, ok := r.controls[key]
	if !ok {
		return domain.ControlDescriptor{}, fmt.Errorf("control %s: %w", requested, domain.ErrNotFound)
	}

	main, sub := statementProse(ctrl)
	description := strings.Join(append([]string{main}, sub...), "\n")
	description = strings.TrimSpace(description)

	description, additional := r.substituteParameters(description, ctrl.Params)

	// One statement per lettered sub-part; a control whose statement is
	// a single prose block still carries one statement.
	statementCount := len(sub)
	if statementCount == 0 {
		statementCount = 1
	}
	statementIDs := make([]string, statementCount)
	for i := range statementIDs {
		statementIDs[i] = uuid.New().String()
	}

	desc := domain.ControlDescriptor{
		ID:                     strings.ToUpper(key),
		Title:                  ctrl.Title,
		Description:            description,
		AdditionalRequirements: additional,
		RecordID:               uuid.New().String(),
		StatementIDs:           statementIDs,
	}
	r.resolved[key] = desc
	return desc, nil
}

// substituteParameters replaces ODP placeholders of the form
// {{ insert: param, <id> }} with tailored profile values, falling back
// to catalog guideline prose. All guideline prose is also returned as
// additional requirements so tailoring context survives even when a
// placeholder never appears.
func (r *Resolver) substituteParameters(description string, params []catalogParam) (string, []string) {
	var additional []string

	for _, param := range params {
		placeholder := fmt.Sprintf("{{ insert: param, %s }}", param.ID)
		prose := paramProse(param)

		if strings.Contains(description, placeholder) {
			if value := r.tailoredValue(param.ID); value != "" {
				description = strings.ReplaceAll(description, placeholder, value)
			} else if len(prose) > 0 {
				description = strings.ReplaceAll(description, placeholder, prose[0])
			}
		}

		additional = append(additional, prose...)
	}

	return description, additional
}

// tailoredValue returns the first profile-tailored value for a
// parameter: constraint descriptions take precedence, then the single
// value, then the value list.
func (r *Resolver) tailoredValue(paramID string) string {
	p, ok := r.params[paramID]
	if !ok {
		return ""
	}
	for _, c := range p.Constraints {
		if c.Description != "" {
			return c.Description
		}
	}
	if p.Value != "" {
		return p.Value
	}
	if len(p.Values) > 0 {
		return p.Values[0]
	}
	return ""
}

// paramProse collects the prose attached to a parameter definition.
func paramProse(param catalogParam) []string {
	var prose []string
	for _, g := range param.Guidelines {
		if g.Prose != "" {
			prose = append(prose, g.Prose)
		}
	}
	if param.Prose != "" {
		prose = append(prose, param.Prose)
	}
	return prose
}

// statementProse extracts the control's statement prose: the flat prose
// on the statement part plus each nested sub-part, depth first.
func statementProse(ctrl catalogControl) (main string, sub []string) {
	for _, part := range ctrl.Parts {
		if part.Name != "statement" {
			continue
		}
		main = part.Prose
		sub = collectProse(part.Parts)
		return main, sub
	}
	return "", nil
}

// collectProse walks nested parts depth first and returns every prose
// string found.
func collectProse(parts []catalogPart) []string {
	var prose []string
	for _, part := range parts {
		if part.Prose != "" {
			prose = append(prose, part.Prose)
		}
		prose = append(prose, collectProse(part.Parts)...)
	}
	return prose
}

// readJSON loads and decodes one JSON document.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
