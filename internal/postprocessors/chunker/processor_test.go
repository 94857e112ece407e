package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.maxLines != DefaultMaxLines {
			t.Errorf("expected maxLines %d, got %d", DefaultMaxLines, p.maxLines)
		}
		if p.overlapLines != DefaultOverlapLines {
			t.Errorf("expected overlapLines %d, got %d", DefaultOverlapLines, p.overlapLines)
		}
	})

	t.Run("custom max lines", func(t *testing.T) {
		p := New(WithMaxLines(20))
		if p.maxLines != 20 {
			t.Errorf("expected maxLines 20, got %d", p.maxLines)
		}
	})

	t.Run("overlap exceeds window", func(t *testing.T) {
		p := New(WithMaxLines(10), WithOverlapLines(15))
		if p.overlapLines >= p.maxLines {
			t.Error("overlap should be reduced when it exceeds the window")
		}
	})
}

func TestChunk_Empty(t *testing.T) {
	p := New()

	chunks, err := p.Chunk(context.Background(), "main.go", "   \n\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for blank content, got %d", len(chunks))
	}
}

func TestChunk_GoSource(t *testing.T) {
	content := strings.Join([]string{
		"package server",
		"",
		"func ListenAndServe(addr string) error {",
		"\treturn nil",
		"}",
		"",
		"type Handler struct {",
		"\tname string",
		"}",
		"",
		"func (h *Handler) Serve() {",
		"}",
	}, "\n")

	p := New()
	chunks, err := p.Chunk(context.Background(), "server.go", content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Preamble, ListenAndServe, Handler struct, Serve method.
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}

	if chunks[2].Type != domain.ChunkTypeCodeClass {
		t.Errorf("expected struct chunk type %q, got %q", domain.ChunkTypeCodeClass, chunks[2].Type)
	}
	if chunks[3].Type != domain.ChunkTypeCodeFunction {
		t.Errorf("expected method chunk type %q, got %q", domain.ChunkTypeCodeFunction, chunks[3].Type)
	}
	if !strings.Contains(chunks[3].Content, "Serve()") {
		t.Errorf("method chunk missing body: %q", chunks[3].Content)
	}
	if chunks[3].StartLine != 11 || chunks[3].EndLine != 12 {
		t.Errorf("expected method chunk at lines 11-12, got %d-%d", chunks[3].StartLine, chunks[3].EndLine)
	}
}

func TestChunk_PythonSource(t *testing.T) {
	content := strings.Join([]string{
		"import os",
		"",
		"def load(path):",
		"    return open(path)",
		"",
		"class Settings:",
		"    debug = False",
	}, "\n")

	p := New()
	chunks, err := p.Chunk(context.Background(), "settings.py", content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[2].Type != domain.ChunkTypeCodeClass {
		t.Errorf("expected class chunk, got %q", chunks[2].Type)
	}
}

func TestChunk_Config(t *testing.T) {
	content := strings.Join([]string{
		"[server]",
		"port = 8080",
		"",
		"[database]",
		"host = localhost",
		"tls = true",
	}, "\n")

	p := New()
	chunks, err := p.Chunk(context.Background(), "app.ini", content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if c.Type != domain.ChunkTypeConfigBlock {
			t.Errorf("expected config-block type, got %q", c.Type)
		}
	}
	if chunks[1].StartLine != 4 || chunks[1].EndLine != 6 {
		t.Errorf("expected second block at lines 4-6, got %d-%d", chunks[1].StartLine, chunks[1].EndLine)
	}
}

func TestChunk_Markdown(t *testing.T) {
	content := strings.Join([]string{
		"# Deployment",
		"",
		"TLS is terminated at the load balancer.",
		"",
		"## Secrets",
		"",
		"Secrets come from the environment.",
	}, "\n")

	p := New()
	chunks, err := p.Chunk(context.Background(), "README.md", content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if c.Type != domain.ChunkTypeDocSection {
			t.Errorf("expected doc-section type, got %q", c.Type)
		}
	}
	if !strings.HasPrefix(chunks[1].Content, "## Secrets") {
		t.Errorf("second section should start at heading, got %q", chunks[1].Content)
	}
}

func TestChunk_UnknownExtensionWindows(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 150; i++ {
		b.WriteString("line of content\n")
	}

	p := New(WithMaxLines(60), WithOverlapLines(10))
	chunks, err := p.Chunk(context.Background(), "data.xyz", b.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected windowed chunks, got %d", len(chunks))
	}

	// Windows overlap and line ranges stay within the file.
	if chunks[1].StartLine != chunks[0].EndLine-9 {
		t.Errorf("expected 10-line overlap, first ends %d, second starts %d",
			chunks[0].EndLine, chunks[1].StartLine)
	}
	last := chunks[len(chunks)-1]
	if last.EndLine > 151 {
		t.Errorf("end line %d beyond file", last.EndLine)
	}
}

func TestChunk_LongFunctionSplits(t *testing.T) {
	var b strings.Builder
	b.WriteString("func handler() {\n")
	for i := 0; i < 100; i++ {
		b.WriteString("\tdoWork()\n")
	}
	b.WriteString("}\n")

	p := New(WithMaxLines(40), WithOverlapLines(5))
	chunks, err := p.Chunk(context.Background(), "handler.go", b.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 3 {
		t.Fatalf("expected a long function to split into windows, got %d chunks", len(chunks))
	}
	for _, c := range chunks {
		if c.EndLine-c.StartLine+1 > 40 {
			t.Errorf("chunk %d-%d exceeds window", c.StartLine, c.EndLine)
		}
	}
}

func TestChunk_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New()
	if _, err := p.Chunk(ctx, "main.go", "func main() {}"); err == nil {
		t.Error("expected error for cancelled context")
	}
}
