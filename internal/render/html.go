package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/saltyorg/nix-options-doc/internal/parser"
)

type htmlPage struct {
	Title        string
	Generator    string
	GeneratorURL string
	Options      []htmlOption
}

type htmlOption struct {
	OptionData
	DescriptionHTML template.HTML
}

var htmlTemplate = template.Must(template.ParseFS(bundled, "templates/page.html.tmpl"))

// HTML renders options as a standalone HTML page. Descriptions are
// converted from Markdown; values are shown as inline code or, when long or
// multi-line, preformatted blocks.
func (r *Renderer) HTML(options []parser.Option) (string, error) {
	data := BuildDocData(r.meta, options)
	page := htmlPage{
		Title:        data.Title,
		Generator:    data.Generator,
		GeneratorURL: data.GeneratorURL,
		Options:      make([]htmlOption, 0, len(data.Options)),
	}

	md := newMarkdown()
	for _, od := range data.Options {
		ho := htmlOption{OptionData: od}
		if od.Description != "" {
			desc, err := markdownToHTML(md, od.Description)
			if err != nil {
				return "", fmt.Errorf("rendering description of %s: %w", od.Name, err)
			}
			// Descriptions are author-controlled module documentation and may
			// carry inline HTML.
			ho.DescriptionHTML = template.HTML(desc)
		}
		page.Options = append(page.Options, ho)
	}

	var buf bytes.Buffer
	if err := htmlTemplate.ExecuteTemplate(&buf, "page.html.tmpl", page); err != nil {
		return "", fmt.Errorf("rendering html: %w", err)
	}
	return buf.String(), nil
}
