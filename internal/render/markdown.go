package render

import (
	"embed"
	"fmt"

	"github.com/saltyorg/nix-options-doc/internal/parser"
)

//go:embed templates/*.tmpl
var bundled embed.FS

// Markdown renders options through the loaded Markdown template.
func (r *Renderer) Markdown(options []parser.Option) (string, error) {
	out, err := r.engine.Render(markdownTemplate, BuildDocData(r.meta, options))
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

// Section renders options for embedding in an existing document: no page
// title or footer, and option headings one level lower.
func (r *Renderer) Section(options []parser.Option) (string, error) {
	out, err := r.engine.Render(sectionTemplate, BuildDocData(r.meta, options))
	if err != nil {
		return "", fmt.Errorf("rendering section: %w", err)
	}
	return out, nil
}

// Table renders options as a compact Markdown table with one row per
// option. Multi-line defaults are elided.
func (r *Renderer) Table(options []parser.Option) (string, error) {
	out, err := r.engine.Render(tableTemplate, BuildDocData(r.meta, options))
	if err != nil {
		return "", fmt.Errorf("rendering table: %w", err)
	}
	return out, nil
}
