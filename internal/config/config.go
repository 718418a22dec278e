package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultFiles lists the config file names looked up in the working
// directory when no --config flag is given, in order.
var DefaultFiles = []string{".nix-options-doc.yml", ".nix-options-doc.yaml", ".nix-options-doc.toml"}

// Config represents the complete configuration for nix-options-doc.
type Config struct {
	Path           string            `yaml:"path" toml:"path"`
	Exclude        []string          `yaml:"exclude" toml:"exclude"`
	Replacements   map[string]string `yaml:"replacements" toml:"replacements"`
	FollowSymlinks bool              `yaml:"follow_symlinks" toml:"follow_symlinks"`
	Extension      string            `yaml:"extension" toml:"extension" validate:"required,excludesall=/\\"`
	Jobs           int               `yaml:"jobs" toml:"jobs" validate:"min=0"`
	PathPrefix     string            `yaml:"path_prefix" toml:"path_prefix"`
	Output         OutputConfig      `yaml:"output" toml:"output"`
	Filter         FilterConfig      `yaml:"filter" toml:"filter"`
	Git            GitConfig         `yaml:"git" toml:"git"`
	Markers        MarkersConfig     `yaml:"markers" toml:"markers"`
	Docs           DocsConfig        `yaml:"docs" toml:"docs"`
	Check          CheckConfig       `yaml:"check" toml:"check"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Format   string `yaml:"format" toml:"format" validate:"omitempty,oneof=markdown md json html csv"`
	File     string `yaml:"file" toml:"file"`
	Sort     bool   `yaml:"sort" toml:"sort"`
	Template string `yaml:"template" toml:"template"`
	Pretty   bool   `yaml:"pretty" toml:"pretty"`
}

// FilterConfig defines which options are written.
type FilterConfig struct {
	Prefix         string `yaml:"prefix" toml:"prefix"`
	StripPrefix    string `yaml:"strip_prefix" toml:"strip_prefix"`
	Search         string `yaml:"search" toml:"search"`
	Type           string `yaml:"type" toml:"type"`
	HasDefault     bool   `yaml:"has_default" toml:"has_default"`
	HasDescription bool   `yaml:"has_description" toml:"has_description"`
}

// GitConfig configures cloning when the path is a repository URL.
type GitConfig struct {
	Branch string `yaml:"branch" toml:"branch"`
	Depth  int    `yaml:"depth" toml:"depth" validate:"min=1"`
}

// MarkersConfig defines managed section marker names.
type MarkersConfig struct {
	Options string `yaml:"options" toml:"options" validate:"required,excludesall=<>"`
}

// DocsConfig lists the documentation files or directories kept in sync by
// the update and check commands.
type DocsConfig struct {
	Paths []string `yaml:"paths" toml:"paths"`
}

// CheckConfig configures the coverage check.
type CheckConfig struct {
	IssueLabel         string `yaml:"issue_label" toml:"issue_label"`
	RequireDescription bool   `yaml:"require_description" toml:"require_description"`
	RequireType        bool   `yaml:"require_type" toml:"require_type"`
}

// Default returns the configuration used when no file is given. Loaded
// files are decoded on top of it.
func Default() *Config {
	return &Config{
		Path:           ".",
		FollowSymlinks: true,
		Extension:      "nix",
		Output: OutputConfig{
			Format: "markdown",
			File:   "nix-options.md",
		},
		Git:     GitConfig{Depth: 1},
		Markers: MarkersConfig{Options: "NIX OPTIONS"},
		Check: CheckConfig{
			IssueLabel:         "nix-options-doc",
			RequireDescription: true,
			RequireType:        true,
		},
	}
}

// Find returns the first default config file present in dir, or "".
func Find(fs afero.Fs, dir string) string {
	for _, name := range DefaultFiles {
		path := filepath.Join(dir, name)
		if ok, _ := afero.Exists(fs, path); ok {
			return path
		}
	}
	return ""
}

// Load reads, parses and validates a config file. The format follows the
// file extension: .yml/.yaml or .toml.
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	default:
		return fmt.Errorf("unsupported config format %q (use .yml, .yaml or .toml)", ext)
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their config key.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	// Namespace is "Config.output.format"; drop the struct name.
	key := fe.Namespace()
	if _, rest, ok := strings.Cut(key, "."); ok {
		key = rest
	}
	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fe.Value())
	case "min":
		return fmt.Sprintf("%s must be at least %s", key, fe.Param())
	case "excludesall":
		return fmt.Sprintf("%s must not contain any of %q", key, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", key, fe.Tag())
	}
}

// ParseKeyValue splits a "key=value" replacement argument.
func ParseKeyValue(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid KEY=value: no `=` found in %q", s)
	}
	return key, strings.TrimSpace(value), nil
}

// ParseReplacements turns repeated "key=value" arguments into a table.
// Later entries win.
func ParseReplacements(args []string) (map[string]string, error) {
	table := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, err := ParseKeyValue(arg)
		if err != nil {
			return nil, err
		}
		table[k] = v
	}
	return table, nil
}
