// Package nix provides a lexer and recursive-descent parser for the Nix
// expression language, producing a lossless-offset syntax tree.
//
// The tree is not evaluated. Every node records the byte range of the source
// it covers so callers can recover the exact source text of any expression.
package nix

import "bytes"

// Kind identifies the syntactic category of a Node.
type Kind int

// Node kinds.
const (
	KindRoot Kind = iota
	KindAttrSet
	KindLetIn
	KindAssignment
	KindInherit
	KindAttrPath
	KindIdent
	KindInterpolation
	KindString
	KindIndentedString
	KindApply
	KindSelect
	KindWith
	KindLambda
	KindFormals
	KindFormal
	KindList
	KindParen
	KindIf
	KindAssert
	KindBinaryOp
	KindUnaryOp
	KindHasAttr
	KindLiteral
)

var kindNames = map[Kind]string{
	KindRoot:           "Root",
	KindAttrSet:        "AttrSet",
	KindLetIn:          "LetIn",
	KindAssignment:     "Assignment",
	KindInherit:        "Inherit",
	KindAttrPath:       "AttrPath",
	KindIdent:          "Ident",
	KindInterpolation:  "Interpolation",
	KindString:         "String",
	KindIndentedString: "IndentedString",
	KindApply:          "Apply",
	KindSelect:         "Select",
	KindWith:           "With",
	KindLambda:         "Lambda",
	KindFormals:        "Formals",
	KindFormal:         "Formal",
	KindList:           "List",
	KindParen:          "Paren",
	KindIf:             "If",
	KindAssert:         "Assert",
	KindBinaryOp:       "BinaryOp",
	KindUnaryOp:        "UnaryOp",
	KindHasAttr:        "HasAttr",
	KindLiteral:        "Literal",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Node is a single syntax tree node. Start and End are byte offsets into
// the source the tree was parsed from.
//
// Child layout per kind:
//   - Assignment: AttrPath, value
//   - Select: base, AttrPath, optional fallback
//   - Apply: function, argument
//   - With: scope, body
//   - Interpolation: inner expression
//   - AttrPath: one child per segment (Ident, String or Interpolation)
type Node struct {
	Kind     Kind
	Start    int
	End      int
	Children []*Node
}

// Child returns the i-th child or nil when out of range.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// FirstChild returns the first child of the given kind, or nil.
func (n *Node) FirstChild(kind Kind) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// Tree is a parsed Nix source file.
type Tree struct {
	Source []byte
	Root   *Node
}

// Text returns the exact source text covered by n.
func (t *Tree) Text(n *Node) string {
	if n == nil {
		return ""
	}
	return string(t.Source[n.Start:n.End])
}

// Line returns the 1-based line number of the first byte of n.
func (t *Tree) Line(n *Node) int {
	if n == nil {
		return 0
	}
	return bytes.Count(t.Source[:n.Start], []byte{'\n'}) + 1
}
