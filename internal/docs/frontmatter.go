package docs

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/saltyorg/nix-options-doc/internal/parser"
)

// Frontmatter represents the parsed frontmatter from a documentation file.
type Frontmatter struct {
	Raw           string     `yaml:"-"` // Raw frontmatter YAML
	NixOptionsDoc *DocConfig `yaml:"nix_options_doc"`
}

// DocConfig represents the nix_options_doc frontmatter section. It narrows
// which options a single document receives.
type DocConfig struct {
	Disabled    bool     `yaml:"disabled"`
	Prefix      string   `yaml:"prefix"`       // keep only options under this prefix
	StripPrefix string   `yaml:"strip_prefix"` // remove this prefix from displayed names
	Search      string   `yaml:"search"`
	Hide        []string `yaml:"hide"`   // option names (or name prefixes) to leave out
	Layout      string   `yaml:"layout"` // "full" (default) or "table"
}

// Section layouts.
const (
	LayoutFull  = "full"
	LayoutTable = "table"
)

// UseTable reports whether the section should be a compact table.
func (c *DocConfig) UseTable() bool {
	return c != nil && c.Layout == LayoutTable
}

// ParseFrontmatter extracts and parses the YAML frontmatter from markdown content.
// Returns the frontmatter, the remaining content, and any error.
func ParseFrontmatter(content string) (*Frontmatter, string, error) {
	if !strings.HasPrefix(content, "---") {
		return nil, content, nil
	}

	rest := content[3:]
	endIdx := strings.Index(rest, "\n---")
	if endIdx == -1 {
		return nil, content, fmt.Errorf("unclosed frontmatter: missing closing ---")
	}

	rawFrontmatter := strings.TrimSpace(rest[:endIdx])
	remainingContent := strings.TrimPrefix(rest[endIdx+4:], "\n")

	fm := Frontmatter{Raw: rawFrontmatter}
	if err := yaml.Unmarshal([]byte(rawFrontmatter), &fm); err != nil {
		return nil, content, fmt.Errorf("parsing frontmatter YAML: %w", err)
	}

	return &fm, remainingContent, nil
}

// IsEnabled returns whether the options section should be generated.
func (c *DocConfig) IsEnabled() bool {
	return c == nil || !c.Disabled
}

// Filter narrows base with this document's prefix and search settings.
func (c *DocConfig) Filter(base parser.Filter) parser.Filter {
	if c == nil {
		return base
	}
	if c.Prefix != "" {
		base.Prefix = c.Prefix
	}
	if c.Search != "" {
		base.Search = c.Search
	}
	return base
}

// Apply selects and renames the options this document should show.
func (c *DocConfig) Apply(options []parser.Option, base parser.Filter) []parser.Option {
	out := parser.FilterOptions(options, c.Filter(base))
	if c == nil {
		return out
	}
	if len(c.Hide) > 0 {
		kept := make([]parser.Option, 0, len(out))
		for _, opt := range out {
			if !c.hidden(opt.Name) {
				kept = append(kept, opt)
			}
		}
		out = kept
	}
	if c.StripPrefix != "" {
		out = parser.StripPrefix(out, c.StripPrefix)
	}
	return out
}

func (c *DocConfig) hidden(name string) bool {
	for _, h := range c.Hide {
		if name == h || strings.HasPrefix(name, h+".") {
			return true
		}
	}
	return false
}

// Validate checks the section for settings that can never match.
func (c *DocConfig) Validate() error {
	if c == nil {
		return nil
	}
	for i, h := range c.Hide {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("hide[%d]: empty entry", i)
		}
	}
	switch c.Layout {
	case "", LayoutFull, LayoutTable:
	default:
		return fmt.Errorf("layout must be %q or %q, got %q", LayoutFull, LayoutTable, c.Layout)
	}
	if c.Prefix != "" && c.StripPrefix != "" &&
		!strings.HasPrefix(c.Prefix, strings.TrimSuffix(c.StripPrefix, ".")) {
		return fmt.Errorf("strip_prefix %q does not cover prefix %q", c.StripPrefix, c.Prefix)
	}
	return nil
}
