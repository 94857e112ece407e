// Package hints maintains the control-hint registry: keyword lists,
// generic and per-language, that tie source text to security controls.
// The registry is an explicit table built once at startup and immutable
// afterwards.
package hints

import (
	"sort"
	"strings"
)

// Entry holds the keyword lists for one control.
type Entry struct {
	// Generic keywords apply to any language.
	Generic []string

	// ByLanguage holds language-specific keywords. The language set is
	// open: registering a new language needs no code changes elsewhere.
	ByLanguage map[string][]string
}

// Registry answers "which controls does this text evidence?" from an
// immutable control-to-keyword table. Keys are control ids in hint key
// form (e.g. "sc8" for SC-8).
type Registry struct {
	entries map[string]Entry
}

// NewRegistry builds a registry from the given table. Keyword matching
// is case-insensitive, so keywords are lowered once here. A nil table
// yields the built-in default registry.
func NewRegistry(table map[string]Entry) *Registry {
	if table == nil {
		table = defaultTable
	}
	entries := make(map[string]Entry, len(table))
	for id, e := range table {
		norm := Entry{
			Generic:    lowerAll(e.Generic),
			ByLanguage: make(map[string][]string, len(e.ByLanguage)),
		}
		for lang, kws := range e.ByLanguage {
			norm.ByLanguage[strings.ToLower(lang)] = lowerAll(kws)
		}
		entries[strings.ToLower(id)] = norm
	}
	return &Registry{entries: entries}
}

// Default returns the registry built from the built-in table.
func Default() *Registry {
	return NewRegistry(nil)
}

// AllHints returns the full table, for introspection and testing.
// The result is a copy; mutating it does not affect the registry.
func (r *Registry) AllHints() map[string]Entry {
	out := make(map[string]Entry, len(r.entries))
	for id, e := range r.entries {
		cp := Entry{
			Generic:    append([]string(nil), e.Generic...),
			ByLanguage: make(map[string][]string, len(e.ByLanguage)),
		}
		for lang, kws := range e.ByLanguage {
			cp.ByLanguage[lang] = append([]string(nil), kws...)
		}
		out[id] = cp
	}
	return out
}

// HintsForLanguage returns, per control, the generic keywords plus the
// given language's keywords flattened into one list. An unknown
// language contributes nothing, so generic hints still apply.
func (r *Registry) HintsForLanguage(language string) map[string][]string {
	language = strings.ToLower(language)
	out := make(map[string][]string, len(r.entries))
	for id, e := range r.entries {
		combined := append([]string(nil), e.Generic...)
		combined = append(combined, e.ByLanguage[language]...)
		if len(combined) > 0 {
			out[id] = combined
		}
	}
	return out
}

// Search returns every control id for which at least one generic or
// language keyword occurs in text (case-insensitive substring match).
// Matching short-circuits per control on the first hit. Results are
// sorted for determinism.
func (r *Registry) Search(text, language string) []string {
	lower := strings.ToLower(text)

	var found []string
	for id, keywords := range r.HintsForLanguage(language) {
		for _, kw := range keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(lower, kw) {
				found = append(found, id)
				break
			}
		}
	}
	sort.Strings(found)
	return found
}

// Summary returns, per control, the keyword count for the generic tier
// and each language tier. Introspection only.
func (r *Registry) Summary() map[string]map[string]int {
	out := make(map[string]map[string]int, len(r.entries))
	for id, e := range r.entries {
		counts := map[string]int{"generic": len(e.Generic)}
		for lang, kws := range e.ByLanguage {
			counts[lang] = len(kws)
		}
		out[id] = counts
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
