package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Document represents a parsed documentation file.
type Document struct {
	Path        string
	Content     string
	Frontmatter *Frontmatter
	Body        string // Content after frontmatter
}

// Config returns the document's nix_options_doc settings, or nil.
func (d *Document) Config() *DocConfig {
	if d.Frontmatter == nil {
		return nil
	}
	return d.Frontmatter.NixOptionsDoc
}

// Manager handles documentation file operations.
type Manager struct {
	fs      afero.Fs
	markers MarkerConfig
}

// NewManager creates a new documentation manager.
func NewManager(fs afero.Fs, markers MarkerConfig) *Manager {
	if markers.Options == "" {
		markers = DefaultMarkers()
	}
	return &Manager{fs: fs, markers: markers}
}

// LoadDocument reads and parses a documentation file.
func (m *Manager) LoadDocument(path string) (*Document, error) {
	content, err := afero.ReadFile(m.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	fm, body, err := ParseFrontmatter(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing frontmatter: %w", err)
	}

	return &Document{
		Path:        path,
		Content:     string(content),
		Frontmatter: fm,
		Body:        body,
	}, nil
}

// SaveDocument writes the document back to disk, keeping the file mode.
func (m *Manager) SaveDocument(doc *Document) error {
	mode := os.FileMode(0o644)
	if info, err := m.fs.Stat(doc.Path); err == nil {
		mode = info.Mode().Perm()
	}
	return afero.WriteFile(m.fs, doc.Path, []byte(doc.Content), mode)
}

// UpdateOptionsSection replaces the managed options section in a document.
// It reports whether the content changed.
func (m *Manager) UpdateOptionsSection(doc *Document, newContent string) (bool, error) {
	updated, err := UpdateManagedSection(doc.Content, m.markers.Options, newContent)
	if err != nil {
		return false, err
	}
	changed := updated != doc.Content
	doc.Content = updated
	return changed, nil
}

// InsertOptionsSection appends a managed options section to a document that
// has none.
func (m *Manager) InsertOptionsSection(doc *Document, newContent string) error {
	if m.HasOptionsSection(doc) {
		return fmt.Errorf("managed section %q already present", m.markers.Options)
	}
	doc.Content = AppendManagedSection(doc.Content, m.markers.Options, newContent)
	return nil
}

// HasOptionsSection checks if the document has the options section markers.
func (m *Manager) HasOptionsSection(doc *Document) bool {
	return HasManagedSection(doc.Content, m.markers.Options)
}

// IsAutomationDisabled checks if automation is disabled for a document.
func (m *Manager) IsAutomationDisabled(doc *Document) bool {
	return !doc.Config().IsEnabled()
}

// ListDocFiles returns all markdown files under dir in lexical order.
func (m *Manager) ListDocFiles(dir string) ([]string, error) {
	var files []string

	err := afero.Walk(m.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".md") {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}
