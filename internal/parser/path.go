package parser

import (
	"strings"

	"github.com/saltyorg/nix-options-doc/internal/nix"
	"github.com/saltyorg/nix-options-doc/internal/normalize"
)

// ResolvePath joins the segments of an attribute path with ".". Dynamic
// ${name} segments are looked up in replacements and left as written when
// absent. Quoted segments contribute their unquoted text.
func ResolvePath(tree *nix.Tree, path *nix.Node, replacements map[string]string) string {
	segments := make([]string, 0, len(path.Children))
	for _, seg := range path.Children {
		segments = append(segments, resolveSegment(tree, seg, replacements))
	}
	return strings.Join(segments, ".")
}

func resolveSegment(tree *nix.Tree, seg *nix.Node, replacements map[string]string) string {
	switch seg.Kind {
	case nix.KindInterpolation:
		name := strings.TrimSpace(tree.Text(seg.Child(0)))
		if v, ok := replacements[name]; ok {
			return v
		}
		return tree.Text(seg)
	case nix.KindString:
		text := tree.Text(seg)
		text = strings.TrimSuffix(strings.TrimPrefix(text, `"`), `"`)
		return normalize.Substitute(text, replacements)
	}
	return tree.Text(seg)
}
