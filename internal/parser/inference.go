package parser

import (
	"strings"

	"github.com/saltyorg/nix-options-doc/internal/types"
)

// exactTypes maps whole type expressions to their kind.
var exactTypes = map[string]types.Kind{
	"types.bool":    types.Bool,
	"types.int":     types.Int,
	"types.integer": types.Int,
	"types.float":   types.Float,
	"types.str":     types.Str,
	"types.string":  types.Str,
	"types.path":    types.Path,
	"types.attrs":   types.Attrs,
	"types.listOf":  types.List,
}

// Classify maps a type expression's source text to a Type. Compound forms
// are detected by substring only; their arguments are not parsed.
// Anything unrecognized, including namespaced forms such as
// "lib.types.str", is kept verbatim as Unknown.
func Classify(raw string) types.Type {
	if kind, ok := exactTypes[raw]; ok {
		return types.Simple(kind)
	}

	switch {
	case strings.Contains(raw, "types.enum"):
		return types.Type{Kind: types.Enum, Values: []string{"..."}}
	case strings.Contains(raw, "types.option"):
		inner := types.Raw("")
		return types.Type{Kind: types.Option, Inner: &inner}
	case strings.Contains(raw, "types.either"):
		return types.Type{Kind: types.Either}
	}

	return types.Raw(raw)
}
