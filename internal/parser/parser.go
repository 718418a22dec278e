package parser

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/saltyorg/nix-options-doc/internal/nix"
)

// Recognized declaration functions.
const (
	mkEnableOption = "mkEnableOption"
	mkOption       = "mkOption"
)

// Parser extracts option declarations from Nix source.
type Parser struct {
	replacements map[string]string
	logger       *log.Logger
}

// New creates a new Parser. replacements resolves ${name} placeholders in
// option paths and descriptions. A nil logger discards output.
func New(replacements map[string]string, logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Parser{
		replacements: replacements,
		logger:       logger,
	}
}

// Parse parses src and returns the options it declares. file is recorded
// on every option as its source location.
func (p *Parser) Parse(src []byte, file string) ([]Option, error) {
	tree, err := nix.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file, err)
	}
	return p.Walk(tree, file), nil
}

// Walk extracts options from an already parsed tree. A name declared more
// than once in the same tree keeps the last declaration, at the position
// of the first.
func (p *Parser) Walk(tree *nix.Tree, file string) []Option {
	w := &walker{
		Parser: p,
		tree:   tree,
		file:   file,
		index:  make(map[string]int),
	}
	w.visit(tree.Root, "")
	return w.options
}

// walker holds the state of a single tree traversal.
type walker struct {
	*Parser
	tree    *nix.Tree
	file    string
	options []Option
	index   map[string]int
}

func (w *walker) visit(n *nix.Node, prefix string) {
	if n.Kind != nix.KindAssignment {
		for _, c := range n.Children {
			w.visit(c, prefix)
		}
		return
	}

	path, value := n.Child(0), n.Child(1)
	if path == nil || value == nil {
		return
	}
	key := ResolvePath(w.tree, path, w.replacements)
	if prefix != "" {
		key = prefix + "." + key
	}
	w.parseValue(value, key)
}

func (w *walker) parseValue(n *nix.Node, prefix string) {
	switch n.Kind {
	case nix.KindAttrSet:
		for _, c := range n.Children {
			w.visit(c, prefix)
		}
	case nix.KindApply:
		switch callee := w.callee(n); callee {
		case mkEnableOption:
			w.add(w.enableOption(n, prefix))
		case mkOption:
			w.add(w.option(n, prefix))
		default:
			w.logger.Debug("Not a recognized option function", "name", callee, "file", w.file, "line", w.tree.Line(n))
		}
	case nix.KindWith:
		if body := n.Child(1); body != nil {
			w.visit(body, prefix)
		}
	default:
		w.logger.Debug("Unhandled node kind", "kind", n.Kind, "path", prefix)
	}
}

// callee returns the name of the function being applied: the trailing
// attribute of a select chain such as lib.mkOption, or a bare identifier.
func (w *walker) callee(apply *nix.Node) string {
	fn := apply.Child(0)
	if fn == nil {
		return ""
	}
	switch fn.Kind {
	case nix.KindSelect:
		path := fn.Child(1)
		if path == nil || len(path.Children) == 0 {
			return ""
		}
		return w.tree.Text(path.Children[len(path.Children)-1])
	case nix.KindIdent:
		return w.tree.Text(fn)
	}
	return ""
}

func (w *walker) add(opt Option) {
	if i, ok := w.index[opt.Name]; ok {
		w.logger.Debug("Duplicate option in file", "name", opt.Name, "file", w.file, "line", opt.Line)
		w.options[i] = opt
		return
	}
	w.index[opt.Name] = len(w.options)
	w.options = append(w.options, opt)
}
