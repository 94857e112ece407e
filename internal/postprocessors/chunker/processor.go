// Package chunker splits source, config and documentation files into
// line-bounded chunks suitable for embedding and retrieval.
package chunker

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
	"github.com/custodia-labs/oscalgen-cli/internal/core/ports/driven"
)

// DefaultMaxLines is the default number of lines per chunk window.
const DefaultMaxLines = 60

// DefaultOverlapLines is the default number of overlapping lines
// between consecutive windows.
const DefaultOverlapLines = 10

// Boundary patterns for the supported source languages. A line matching
// one of these starts a new code chunk.
var (
	goFuncPattern     = regexp.MustCompile(`^func\s+(\(\s*\w+\s+\*?[\w\.]+\s*\)\s+)?\w+`)
	goTypePattern     = regexp.MustCompile(`^type\s+\w+\s+(struct|interface)\b`)
	pythonDefPattern  = regexp.MustCompile(`^(async\s+)?def\s+\w+`)
	pythonClsPattern  = regexp.MustCompile(`^class\s+\w+`)
	braceDefPattern   = regexp.MustCompile(`^\s*(public|private|protected|static|final|virtual|inline)?\s*[\w<>\[\]\*&:]+\s+\w+\s*\([^;]*$`)
	braceClassPattern = regexp.MustCompile(`^\s*(public|abstract|final)?\s*(class|interface|enum|struct)\s+\w+`)
	markdownHeading   = regexp.MustCompile(`^#{1,6}\s+\S`)
)

var configExtensions = map[string]bool{
	".yaml": true, ".yml": true, ".json": true, ".toml": true,
	".ini": true, ".conf": true, ".properties": true,
}

var docExtensions = map[string]bool{
	".md": true, ".rst": true, ".txt": true, ".adoc": true,
}

// Processor splits file content into typed, line-bounded chunks.
// It implements the ChunkProducer interface.
type Processor struct {
	maxLines     int
	overlapLines int
}

// Option configures the chunk processor.
type Option func(*Processor)

// WithMaxLines sets the window size in lines.
func WithMaxLines(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxLines = n
		}
	}
}

// WithOverlapLines sets the overlap between windows in lines.
func WithOverlapLines(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.overlapLines = n
		}
	}
}

// New creates a new chunk processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxLines:     DefaultMaxLines,
		overlapLines: DefaultOverlapLines,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't swallow the window
	if p.overlapLines >= p.maxLines {
		p.overlapLines = p.maxLines / 4
	}

	return p
}

// Compile-time interface check
var _ driven.ChunkProducer = (*Processor)(nil)

// Chunk splits the file into raw chunks. Config files chunk on blank
// lines and top-level sections, documentation on headings, source code
// on function and type boundaries. Anything unrecognised falls back to
// fixed-line windows; malformed input never fails.
func (p *Processor) Chunk(ctx context.Context, path string, content string) ([]driven.RawChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		// Empty files produce no chunks
		return nil, nil
	}

	lines := strings.Split(content, "\n")
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case configExtensions[ext]:
		return p.window(lines, p.splitConfig(lines), domain.ChunkTypeConfigBlock), nil
	case docExtensions[ext]:
		return p.window(lines, p.splitDoc(lines), domain.ChunkTypeDocSection), nil
	default:
		return p.splitCode(lines, ext), nil
	}
}

// span is a half-open [start, end) line range, 0-based.
type span struct {
	start, end int
}

// splitConfig breaks a config file on blank-line separated blocks and
// INI-style section headers.
func (p *Processor) splitConfig(lines []string) []span {
	var spans []span
	start := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		blank := trimmed == ""
		section := strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")

		switch {
		case blank:
			if start >= 0 {
				spans = append(spans, span{start, i})
				start = -1
			}
		case section && start >= 0:
			spans = append(spans, span{start, i})
			start = i
		case start < 0:
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, span{start, len(lines)})
	}
	return spans
}

// splitDoc breaks documentation on markdown headings.
func (p *Processor) splitDoc(lines []string) []span {
	var spans []span
	start := 0
	for i, line := range lines {
		if i > 0 && markdownHeading.MatchString(line) {
			spans = append(spans, span{start, i})
			start = i
		}
	}
	spans = append(spans, span{start, len(lines)})
	return trimBlankSpans(lines, spans)
}

// splitCode breaks source code on declaration boundaries for the
// languages we recognise, falling back to plain windows otherwise.
func (p *Processor) splitCode(lines []string, ext string) []driven.RawChunk {
	funcPat, classPat := boundaryPatterns(ext)
	if funcPat == nil {
		spans := []span{{0, len(lines)}}
		return p.window(lines, trimBlankSpans(lines, spans), domain.ChunkTypeCodeFunction)
	}

	var chunks []driven.RawChunk
	start := 0
	startType := domain.ChunkTypeCodeFunction
	for i, line := range lines {
		isClass := classPat != nil && classPat.MatchString(line)
		isFunc := funcPat.MatchString(line)
		if i == 0 || (!isClass && !isFunc) {
			if i == 0 && isClass {
				startType = domain.ChunkTypeCodeClass
			}
			continue
		}

		chunks = append(chunks, p.window(lines, trimBlankSpans(lines, []span{{start, i}}), startType)...)
		start = i
		if isClass {
			startType = domain.ChunkTypeCodeClass
		} else {
			startType = domain.ChunkTypeCodeFunction
		}
	}
	chunks = append(chunks, p.window(lines, trimBlankSpans(lines, []span{{start, len(lines)}}), startType)...)
	return chunks
}

// window converts spans to chunks, splitting any span longer than
// maxLines into overlapping windows. Line numbers are 1-based and
// inclusive on both ends.
func (p *Processor) window(lines []string, spans []span, chunkType domain.ChunkType) []driven.RawChunk {
	var chunks []driven.RawChunk
	for _, s := range spans {
		for start := s.start; start < s.end; {
			end := start + p.maxLines
			if end > s.end {
				end = s.end
			}

			content := strings.Join(lines[start:end], "\n")
			if strings.TrimSpace(content) != "" {
				chunks = append(chunks, driven.RawChunk{
					Content:   content,
					StartLine: start + 1,
					EndLine:   end,
					Type:      chunkType,
				})
			}

			if end == s.end {
				break
			}
			start = end - p.overlapLines
		}
	}
	return chunks
}

// boundaryPatterns returns the function and class boundary patterns for
// a source extension, or nil when the language is unrecognised.
func boundaryPatterns(ext string) (funcPat, classPat *regexp.Regexp) {
	switch ext {
	case ".go":
		return goFuncPattern, goTypePattern
	case ".py":
		return pythonDefPattern, pythonClsPattern
	case ".java", ".c", ".cc", ".cpp", ".h", ".hpp", ".cs":
		return braceDefPattern, braceClassPattern
	default:
		return nil, nil
	}
}

// trimBlankSpans shrinks each span to exclude leading and trailing
// blank lines, dropping spans that end up empty.
func trimBlankSpans(lines []string, spans []span) []span {
	out := spans[:0]
	for _, s := range spans {
		for s.start < s.end && strings.TrimSpace(lines[s.start]) == "" {
			s.start++
		}
		for s.end > s.start && strings.TrimSpace(lines[s.end-1]) == "" {
			s.end--
		}
		if s.start < s.end {
			out = append(out, s)
		}
	}
	return out
}
