package parser

import (
	"encoding/json"

	"github.com/saltyorg/nix-options-doc/internal/types"
)

// Option is one documented option extracted from a Nix module. Empty
// Description, Default and Example mean the declaration did not set them.
type Option struct {
	Name        string     // Dotted option path (e.g., "services.foo.enable")
	Description string     // Normalized description text
	Type        types.Type // Classified declared type
	Default     string     // Normalized default expression
	Example     string     // Normalized example expression
	File        string     // Source file, relative to the collection root
	Line        int        // 1-based line of the declaring call
}

// HasDescription reports whether the declaration carried a description.
func (o Option) HasDescription() bool { return o.Description != "" }

// HasDefault reports whether the declaration carried a default.
func (o Option) HasDefault() bool { return o.Default != "" }

// HasExample reports whether the declaration carried an example.
func (o Option) HasExample() bool { return o.Example != "" }

type optionJSON struct {
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Type        types.Type `json:"nix_type"`
	Default     *string    `json:"default_value"`
	Example     *string    `json:"example"`
	File        string     `json:"file_path"`
	Line        int        `json:"line_number"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// MarshalJSON encodes absent fields as null.
func (o Option) MarshalJSON() ([]byte, error) {
	return json.Marshal(optionJSON{
		Name:        o.Name,
		Description: optional(o.Description),
		Type:        o.Type,
		Default:     optional(o.Default),
		Example:     optional(o.Example),
		File:        o.File,
		Line:        o.Line,
	})
}
