package domain

import "strings"

// Default generation settings.
const (
	// DefaultTopK is the per-index retrieval depth.
	DefaultTopK = 5

	// DefaultMaxCritiqueRetries bounds the critique-revise loop.
	DefaultMaxCritiqueRetries = 3

	// DefaultWorkers is the per-control pipeline concurrency. The
	// reference model is single-threaded.
	DefaultWorkers = 1
)

// defaultConfigExtensions is the recognised-configuration allow-list.
var defaultConfigExtensions = []string{
	".yaml", ".yml", ".json", ".toml", ".ini", ".conf", ".properties",
}

// GenerationSettings carries the tunables for a generation run. An
// explicit value threads through every component entry point; there is
// no ambient global state.
type GenerationSettings struct {
	// TopK is how many neighbours each index contributes before merge.
	TopK int

	// MaxCritiqueRetries bounds repair rounds per record. This is a
	// content-correctness budget, separate from any transport retry.
	MaxCritiqueRetries int

	// Workers bounds the per-control pipeline pool. 1 means the
	// reference single-threaded model.
	Workers int

	// ConfigExtensions is the recognised-configuration-extension
	// allow-list for configuration references.
	ConfigExtensions []string
}

// DefaultGenerationSettings returns the reference settings.
func DefaultGenerationSettings() GenerationSettings {
	return GenerationSettings{
		TopK:               DefaultTopK,
		MaxCritiqueRetries: DefaultMaxCritiqueRetries,
		Workers:            DefaultWorkers,
		ConfigExtensions:   DefaultConfigExtensions(),
	}
}

// DefaultConfigExtensions returns a copy of the default allow-list.
func DefaultConfigExtensions() []string {
	out := make([]string, len(defaultConfigExtensions))
	copy(out, defaultConfigExtensions)
	return out
}

// Normalise fills zero values with defaults and lowercases extensions,
// ensuring each starts with a dot.
func (s GenerationSettings) Normalise() GenerationSettings {
	if s.TopK <= 0 {
		s.TopK = DefaultTopK
	}
	if s.MaxCritiqueRetries <= 0 {
		s.MaxCritiqueRetries = DefaultMaxCritiqueRetries
	}
	if s.Workers <= 0 {
		s.Workers = DefaultWorkers
	}
	if len(s.ConfigExtensions) == 0 {
		s.ConfigExtensions = DefaultConfigExtensions()
	} else {
		norm := make([]string, 0, len(s.ConfigExtensions))
		for _, ext := range s.ConfigExtensions {
			ext = strings.ToLower(ext)
			if ext == "" {
				continue
			}
			if ext[0] != '.' {
				ext = "." + ext
			}
			norm = append(norm, ext)
		}
		s.ConfigExtensions = norm
	}
	return s
}

// AllowsExtension reports whether ext (with leading dot, any case) is in
// the allow-list.
func (s GenerationSettings) AllowsExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, allowed := range s.ConfigExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
