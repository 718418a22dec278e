package nix

import (
	"fmt"
)

var keywords = map[string]bool{
	"let":     true,
	"in":      true,
	"with":    true,
	"rec":     true,
	"inherit": true,
	"if":      true,
	"then":    true,
	"else":    true,
	"assert":  true,
}

type parser struct {
	src  []byte
	toks []token
	pos  int
	lex  *lexer
}

// Parse parses a complete Nix source file.
func Parse(src []byte) (*Tree, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks, lex: &lexer{src: src}}

	root := &Node{Kind: KindRoot, Start: 0, End: len(src)}
	if p.peek().kind != tokEOF {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, expr)
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.unexpected(tok)
	}
	return &Tree{Source: src, Root: root}, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(src string) (*Tree, error) {
	return Parse([]byte(src))
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) advance() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) text(tok token) string { return string(p.src[tok.start:tok.end]) }

func (p *parser) isKeyword(tok token, word string) bool {
	return tok.kind == tokIdent && p.text(tok) == word
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	tok := p.peek()
	if tok.kind != kind {
		return tok, p.errorAt(tok, "expected %s, found %s", what, p.describe(tok))
	}
	return p.advance(), nil
}

func (p *parser) expectKeyword(word string) (token, error) {
	tok := p.peek()
	if !p.isKeyword(tok, word) {
		return tok, p.errorAt(tok, "expected %q, found %s", word, p.describe(tok))
	}
	return p.advance(), nil
}

func (p *parser) describe(tok token) string {
	if tok.kind == tokEOF {
		return "end of file"
	}
	return fmt.Sprintf("%q", p.text(tok))
}

func (p *parser) errorAt(tok token, format string, args ...any) error {
	return p.lex.errorf(tok.start, format, args...)
}

func (p *parser) unexpected(tok token) error {
	return p.errorAt(tok, "unexpected %s", p.describe(tok))
}

func span(kind Kind, children ...*Node) *Node {
	n := &Node{Kind: kind, Children: children}
	if len(children) > 0 {
		n.Start = children[0].Start
		n.End = children[len(children)-1].End
	}
	return n
}

func leaf(kind Kind, tok token) *Node {
	return &Node{Kind: kind, Start: tok.start, End: tok.end}
}

// parseExpr handles the lowest-precedence forms: lambdas, let, with,
// assert and if, falling back to operator expressions.
func (p *parser) parseExpr() (*Node, error) {
	tok := p.peek()
	switch {
	case p.isKeyword(tok, "let") && p.peekAt(1).kind != tokLBrace:
		return p.parseLetIn()
	case p.isKeyword(tok, "with"):
		return p.parseWith()
	case p.isKeyword(tok, "assert"):
		return p.parseAssert()
	case p.isKeyword(tok, "if"):
		return p.parseIf()
	case tok.kind == tokIdent && !keywords[p.text(tok)] &&
		(p.peekAt(1).kind == tokColon || p.peekAt(1).kind == tokAt):
		return p.parseLambda()
	case tok.kind == tokLBrace && p.isFormals():
		return p.parseLambda()
	}
	return p.parsePipe()
}

func (p *parser) parseLetIn() (*Node, error) {
	start := p.advance()
	n := &Node{Kind: KindLetIn, Start: start.start}
	for !p.isKeyword(p.peek(), "in") {
		if p.peek().kind == tokEOF {
			return nil, p.unexpected(p.peek())
		}
		b, err := p.parseBinding()
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, b)
	}
	p.advance()
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	n.Children = append(n.Children, body)
	n.End = body.End
	return n, nil
}

func (p *parser) parseWith() (*Node, error) {
	start := p.advance()
	scope, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokSemicolon, `";"`); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &Node{Kind: KindWith, Start: start.start, End: body.End, Children: []*Node{scope, body}}, nil
}

func (p *parser) parseAssert() (*Node, error) {
	start := p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokSemicolon, `";"`); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &Node{Kind: KindAssert, Start: start.start, End: body.End, Children: []*Node{cond, body}}, nil
}

func (p *parser) parseIf() (*Node, error) {
	start := p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("then"); err != nil {
		return nil, err
	}
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("else"); err != nil {
		return nil, err
	}
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &Node{Kind: KindIf, Start: start.start, End: els.End, Children: []*Node{cond, then, els}}, nil
}

// isFormals reports whether the "{" at the cursor opens a lambda pattern
// rather than an attribute set.
func (p *parser) isFormals() bool {
	a, b := p.peekAt(1), p.peekAt(2)
	switch a.kind {
	case tokEllipsis:
		return true
	case tokRBrace:
		return b.kind == tokColon || b.kind == tokAt
	case tokIdent:
		switch b.kind {
		case tokComma, tokQuestion:
			return true
		case tokRBrace:
			c := p.peekAt(3)
			return c.kind == tokColon || c.kind == tokAt
		}
	}
	return false
}

func (p *parser) parseLambda() (*Node, error) {
	n := &Node{Kind: KindLambda, Start: p.peek().start}
	if p.peek().kind == tokIdent {
		n.Children = append(n.Children, leaf(KindIdent, p.advance()))
		if p.peek().kind == tokAt {
			p.advance()
			formals, err := p.parseFormals()
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, formals)
		}
	} else {
		formals, err := p.parseFormals()
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, formals)
		if p.peek().kind == tokAt {
			p.advance()
			name, err := p.expect(tokIdent, "identifier")
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, leaf(KindIdent, name))
		}
	}
	if _, err := p.expect(tokColon, `":"`); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	n.Children = append(n.Children, body)
	n.End = body.End
	return n, nil
}

func (p *parser) parseFormals() (*Node, error) {
	open, err := p.expect(tokLBrace, `"{"`)
	if err != nil {
		return nil, err
	}
	n := &Node{Kind: KindFormals, Start: open.start}
	for p.peek().kind != tokRBrace {
		switch tok := p.peek(); tok.kind {
		case tokEllipsis:
			p.advance()
		case tokIdent:
			name := p.advance()
			formal := &Node{Kind: KindFormal, Start: name.start, End: name.end,
				Children: []*Node{leaf(KindIdent, name)}}
			if p.peek().kind == tokQuestion {
				p.advance()
				def, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				formal.Children = append(formal.Children, def)
				formal.End = def.End
			}
			n.Children = append(n.Children, formal)
		default:
			return nil, p.unexpected(tok)
		}
		if p.peek().kind == tokComma {
			p.advance()
			continue
		}
		if p.peek().kind != tokRBrace {
			return nil, p.unexpected(p.peek())
		}
	}
	n.End = p.advance().end
	return n, nil
}

type binaryLevel struct {
	ops   []tokenKind
	right bool
}

// Binary operator levels from loosest to tightest binding. Unary "!" sits
// between "//" and "+", unary "-" below application; both are handled in
// parseBinary.
var binaryLevels = []binaryLevel{
	{ops: []tokenKind{tokPipeRight, tokPipeLeft}},
	{ops: []tokenKind{tokImpl}, right: true},
	{ops: []tokenKind{tokOr}},
	{ops: []tokenKind{tokAnd}},
	{ops: []tokenKind{tokEq, tokNeq}},
	{ops: []tokenKind{tokLt, tokLe, tokGt, tokGe}},
	{ops: []tokenKind{tokUpdate}, right: true},
	{ops: nil}, // !
	{ops: []tokenKind{tokPlus, tokMinus}},
	{ops: []tokenKind{tokStar, tokSlash}},
	{ops: []tokenKind{tokConcat}, right: true},
}

const notLevel = 7

func (p *parser) parsePipe() (*Node, error) {
	return p.parseBinary(0)
}

func (p *parser) parseBinary(level int) (*Node, error) {
	if level >= len(binaryLevels) {
		return p.parseHasAttr()
	}
	if level == notLevel {
		if tok := p.peek(); tok.kind == tokNot {
			p.advance()
			operand, err := p.parseBinary(level)
			if err != nil {
				return nil, err
			}
			return &Node{Kind: KindUnaryOp, Start: tok.start, End: operand.End, Children: []*Node{operand}}, nil
		}
		return p.parseBinary(level + 1)
	}

	lhs, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	lv := binaryLevels[level]
	for p.matches(lv.ops) {
		p.advance()
		next := level + 1
		if lv.right {
			next = level
		}
		rhs, err := p.parseBinary(next)
		if err != nil {
			return nil, err
		}
		lhs = span(KindBinaryOp, lhs, rhs)
		if lv.right {
			break
		}
	}
	return lhs, nil
}

func (p *parser) matches(kinds []tokenKind) bool {
	k := p.peek().kind
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

func (p *parser) parseHasAttr() (*Node, error) {
	lhs, err := p.parseNegate()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokQuestion {
		p.advance()
		path, err := p.parseAttrPath()
		if err != nil {
			return nil, err
		}
		lhs = span(KindHasAttr, lhs, path)
	}
	return lhs, nil
}

func (p *parser) parseNegate() (*Node, error) {
	if tok := p.peek(); tok.kind == tokMinus {
		p.advance()
		operand, err := p.parseNegate()
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindUnaryOp, Start: tok.start, End: operand.End, Children: []*Node{operand}}, nil
	}
	return p.parseApply()
}

func (p *parser) parseApply() (*Node, error) {
	fn, err := p.parseSelect()
	if err != nil {
		return nil, err
	}
	for p.startsOperand(p.peek()) {
		arg, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		fn = span(KindApply, fn, arg)
	}
	return fn, nil
}

func (p *parser) startsOperand(tok token) bool {
	switch tok.kind {
	case tokIdent:
		word := p.text(tok)
		return word == "rec" || (!keywords[word] && word != "or")
	case tokInt, tokFloat, tokPath, tokURI, tokString, tokIndString,
		tokLBrace, tokLBracket, tokLParen, tokInterpStart:
		return true
	}
	return false
}

func (p *parser) parseSelect() (*Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokDot {
		return base, nil
	}
	p.advance()
	path, err := p.parseAttrPath()
	if err != nil {
		return nil, err
	}
	sel := span(KindSelect, base, path)
	if p.isKeyword(p.peek(), "or") {
		p.advance()
		fallback, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		sel.Children = append(sel.Children, fallback)
		sel.End = fallback.End
	}
	return sel, nil
}

func (p *parser) parseAttrPath() (*Node, error) {
	n := &Node{Kind: KindAttrPath}
	for {
		seg, err := p.parseAttrSegment()
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, seg)
		if p.peek().kind != tokDot {
			break
		}
		p.advance()
	}
	n.Start = n.Children[0].Start
	n.End = n.Children[len(n.Children)-1].End
	return n, nil
}

func (p *parser) parseAttrSegment() (*Node, error) {
	switch tok := p.peek(); tok.kind {
	case tokIdent:
		return leaf(KindIdent, p.advance()), nil
	case tokString:
		return leaf(KindString, p.advance()), nil
	case tokInterpStart:
		return p.parseInterpolation()
	default:
		return nil, p.errorAt(tok, "expected attribute name, found %s", p.describe(tok))
	}
}

func (p *parser) parseInterpolation() (*Node, error) {
	open := p.advance()
	inner, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	closing, err := p.expect(tokRBrace, `"}"`)
	if err != nil {
		return nil, err
	}
	return &Node{Kind: KindInterpolation, Start: open.start, End: closing.end, Children: []*Node{inner}}, nil
}

func (p *parser) parsePrimary() (*Node, error) {
	tok := p.peek()
	switch tok.kind {
	case tokIdent:
		word := p.text(tok)
		if word == "rec" {
			p.advance()
			return p.parseAttrSet(tok.start)
		}
		if word == "let" && p.peekAt(1).kind == tokLBrace {
			p.advance()
			return p.parseAttrSet(tok.start)
		}
		if keywords[word] {
			return nil, p.unexpected(tok)
		}
		return leaf(KindIdent, p.advance()), nil
	case tokInt, tokFloat, tokPath, tokURI:
		return leaf(KindLiteral, p.advance()), nil
	case tokString:
		return leaf(KindString, p.advance()), nil
	case tokIndString:
		return leaf(KindIndentedString, p.advance()), nil
	case tokInterpStart:
		return p.parseInterpolation()
	case tokLBrace:
		return p.parseAttrSet(tok.start)
	case tokLBracket:
		return p.parseList()
	case tokLParen:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		closing, err := p.expect(tokRParen, `")"`)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindParen, Start: tok.start, End: closing.end, Children: []*Node{inner}}, nil
	}
	return nil, p.unexpected(tok)
}

func (p *parser) parseAttrSet(start int) (*Node, error) {
	if _, err := p.expect(tokLBrace, `"{"`); err != nil {
		return nil, err
	}
	n := &Node{Kind: KindAttrSet, Start: start}
	for p.peek().kind != tokRBrace {
		if p.peek().kind == tokEOF {
			return nil, p.unexpected(p.peek())
		}
		b, err := p.parseBinding()
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, b)
	}
	n.End = p.advance().end
	return n, nil
}

func (p *parser) parseBinding() (*Node, error) {
	if tok := p.peek(); p.isKeyword(tok, "inherit") {
		return p.parseInherit()
	}
	path, err := p.parseAttrPath()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokAssign, `"="`); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	semi, err := p.expect(tokSemicolon, `";"`)
	if err != nil {
		return nil, err
	}
	return &Node{Kind: KindAssignment, Start: path.Start, End: semi.end, Children: []*Node{path, value}}, nil
}

func (p *parser) parseInherit() (*Node, error) {
	start := p.advance()
	n := &Node{Kind: KindInherit, Start: start.start}
	if p.peek().kind == tokLParen {
		open := p.advance()
		from, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		closing, err := p.expect(tokRParen, `")"`)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, &Node{Kind: KindParen, Start: open.start, End: closing.end, Children: []*Node{from}})
	}
	for p.peek().kind != tokSemicolon {
		seg, err := p.parseAttrSegment()
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, seg)
	}
	n.End = p.advance().end
	return n, nil
}

func (p *parser) parseList() (*Node, error) {
	open := p.advance()
	n := &Node{Kind: KindList, Start: open.start}
	for p.peek().kind != tokRBracket {
		if p.peek().kind == tokEOF {
			return nil, p.unexpected(p.peek())
		}
		// Commas are not Nix syntax but show up in hand-written examples
		// such as [1, 2]; tolerate them as separators.
		if p.peek().kind == tokComma {
			p.advance()
			continue
		}
		item, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, item)
	}
	n.End = p.advance().end
	return n, nil
}
