package template

import (
	"bytes"
	"fmt"
	"io/fs"
	"text/template"

	"github.com/spf13/afero"
)

// Engine handles template loading and rendering.
type Engine struct {
	fs        afero.Fs
	templates map[string]*template.Template
}

// New creates a new template engine reading files from the OS filesystem.
func New() *Engine {
	return NewWithFs(afero.NewOsFs())
}

// NewWithFs creates a new template engine reading files from fsys.
func NewWithFs(fsys afero.Fs) *Engine {
	return &Engine{
		fs:        fsys,
		templates: make(map[string]*template.Template),
	}
}

// LoadFile loads a template from a file path.
func (e *Engine) LoadFile(name, path string) error {
	content, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return fmt.Errorf("reading template file: %w", err)
	}

	return e.LoadString(name, string(content))
}

// LoadFS loads a template bundled in an fs.FS, such as an embed.FS.
func (e *Engine) LoadFS(name string, fsys fs.FS, path string) error {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("reading bundled template: %w", err)
	}

	return e.LoadString(name, string(content))
}

// LoadString loads a template from a string.
func (e *Engine) LoadString(name, content string) error {
	tmpl, err := template.New(name).Funcs(FuncMap()).Parse(content)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}

	e.templates[name] = tmpl
	return nil
}

// Has reports whether a template with the given name is loaded.
func (e *Engine) Has(name string) bool {
	_, ok := e.templates[name]
	return ok
}

// Render renders a template with the given data.
func (e *Engine) Render(name string, data any) (string, error) {
	tmpl, ok := e.templates[name]
	if !ok {
		return "", fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	return buf.String(), nil
}

// RenderString parses and renders a template string in one step.
func (e *Engine) RenderString(content string, data any) (string, error) {
	tmpl, err := template.New("inline").Funcs(FuncMap()).Parse(content)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	return buf.String(), nil
}
