package parser

import (
	"github.com/saltyorg/nix-options-doc/internal/nix"
	"github.com/saltyorg/nix-options-doc/internal/normalize"
	"github.com/saltyorg/nix-options-doc/internal/types"
)

// Fixed values for flag-enable declarations.
const (
	enableDefault = "false"
	enableExample = "true"
)

// enableOption builds the option for `mkEnableOption "text"`.
func (w *walker) enableOption(apply *nix.Node, name string) Option {
	opt := Option{
		Name:    name,
		Type:    types.Simple(types.Bool),
		Default: enableDefault,
		Example: enableExample,
		File:    w.file,
		Line:    w.tree.Line(apply),
	}
	if arg := apply.Child(1); arg != nil && isStringLiteral(arg) {
		opt.Description = normalize.Description(normalize.TrimQuotes(w.tree.Text(arg)), w.replacements)
	}
	return opt
}

// option builds the option for `mkOption { ... }` from the direct bindings
// of its argument set. Nested sets are not searched.
func (w *walker) option(apply *nix.Node, name string) Option {
	opt := Option{
		Name: name,
		Type: types.Raw("any"),
		File: w.file,
		Line: w.tree.Line(apply),
	}

	args := apply.Child(1)
	if args == nil || args.Kind != nix.KindAttrSet {
		w.logger.Debug("mkOption without attribute set argument", "name", name, "file", w.file)
		return opt
	}

	for _, binding := range args.Children {
		if binding.Kind != nix.KindAssignment {
			continue
		}
		path, value := binding.Child(0), binding.Child(1)
		if path == nil || value == nil || len(path.Children) == 0 {
			continue
		}
		text := w.tree.Text(value)
		switch w.tree.Text(path.Children[0]) {
		case "type":
			opt.Type = Classify(normalize.Dedent(text))
		case "description":
			opt.Description = normalize.Description(normalize.TrimQuotes(text), w.replacements)
		case "default":
			opt.Default = normalize.Value(text)
		case "example":
			opt.Example = normalize.Value(text)
		}
	}
	return opt
}

func isStringLiteral(n *nix.Node) bool {
	return n.Kind == nix.KindString || n.Kind == nix.KindIndentedString
}
