// Package render turns extracted options into documentation in one of
// several output formats.
package render

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/saltyorg/nix-options-doc/internal/parser"
	"github.com/saltyorg/nix-options-doc/internal/template"
)

// Format names an output format.
type Format string

// Supported output formats.
const (
	Markdown Format = "markdown"
	JSON     Format = "json"
	HTML     Format = "html"
	CSV      Format = "csv"
)

// Formats lists every supported format in display order.
var Formats = []Format{Markdown, JSON, HTML, CSV}

// ParseFormat resolves a format name, case-insensitively. "md" is accepted
// as shorthand for markdown.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "md" {
		return Markdown, nil
	}
	for _, f := range Formats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (expected one of markdown, json, html, csv)", s)
}

// Meta carries page-level text shared by the Markdown and HTML output.
type Meta struct {
	Title        string
	Generator    string
	GeneratorURL string
}

// DefaultMeta returns the standard title and footer.
func DefaultMeta() Meta {
	return Meta{
		Title:        "NixOS Module Options",
		Generator:    "nix-options-doc",
		GeneratorURL: "https://github.com/saltyorg/nix-options-doc",
	}
}

// Config configures a Renderer.
type Config struct {
	Meta Meta
	// Template is an optional path to a custom Markdown template.
	Template string
	// Fs reads the custom template. Defaults to the OS filesystem.
	Fs afero.Fs
}

// Renderer renders option lists.
type Renderer struct {
	engine *template.Engine
	meta   Meta
}

const (
	markdownTemplate = "markdown"
	sectionTemplate  = "section"
	tableTemplate    = "table"
)

// New creates a Renderer, loading the bundled Markdown template or the
// custom one named in cfg.
func New(cfg Config) (*Renderer, error) {
	if cfg.Meta == (Meta{}) {
		cfg.Meta = DefaultMeta()
	}
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}

	engine := template.NewWithFs(cfg.Fs)
	if cfg.Template != "" {
		if err := engine.LoadFile(markdownTemplate, cfg.Template); err != nil {
			return nil, fmt.Errorf("loading template %s: %w", cfg.Template, err)
		}
	} else if err := engine.LoadFS(markdownTemplate, bundled, "templates/markdown.md.tmpl"); err != nil {
		return nil, err
	}
	for name, path := range map[string]string{
		sectionTemplate: "templates/section.md.tmpl",
		tableTemplate:   "templates/table.md.tmpl",
	} {
		if err := engine.LoadFS(name, bundled, path); err != nil {
			return nil, err
		}
	}

	return &Renderer{engine: engine, meta: cfg.Meta}, nil
}

// Render renders options in the given format.
func (r *Renderer) Render(format Format, options []parser.Option) (string, error) {
	switch format {
	case Markdown:
		return r.Markdown(options)
	case JSON:
		return RenderJSON(options)
	case HTML:
		return r.HTML(options)
	case CSV:
		return RenderCSV(options)
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}
