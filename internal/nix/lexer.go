package nix

import (
	"fmt"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokFloat
	tokPath
	tokURI
	tokString
	tokIndString
	tokInterpStart // ${
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokLParen
	tokRParen
	tokSemicolon
	tokColon
	tokComma
	tokDot
	tokEllipsis
	tokAt
	tokQuestion
	tokAssign
	tokEq
	tokNeq
	tokLt
	tokLe
	tokGt
	tokGe
	tokAnd
	tokOr
	tokImpl
	tokNot
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokConcat
	tokUpdate
	tokPipeLeft
	tokPipeRight
)

type token struct {
	kind  tokenKind
	start int
	end   int
}

// SyntaxError reports a lexing or parsing failure at a byte offset.
type SyntaxError struct {
	Offset int
	Line   int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

type lexer struct {
	src []byte
	pos int
}

func (l *lexer) errorf(offset int, format string, args ...any) *SyntaxError {
	line := 1
	for _, b := range l.src[:min(offset, len(l.src))] {
		if b == '\n' {
			line++
		}
	}
	return &SyntaxError{Offset: offset, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// tokenize lexes the whole source up front so the parser can look ahead
// freely when telling lambda formals from attribute sets.
func tokenize(src []byte) ([]token, error) {
	l := &lexer{src: src}
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.kind == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) peekByte(off int) byte {
	if l.pos+off < len(l.src) {
		return l.src[l.pos+off]
	}
	return 0
}

func (l *lexer) skipTrivia() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		case c == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.peekByte(1) == '*':
			start := l.pos
			l.pos += 2
			for {
				if l.pos+1 >= len(l.src) {
					return l.errorf(start, "unterminated comment")
				}
				if l.src[l.pos] == '*' && l.src[l.pos+1] == '/' {
					l.pos += 2
					break
				}
				l.pos++
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) next() (token, error) {
	if err := l.skipTrivia(); err != nil {
		return token{}, err
	}
	start := l.pos
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, start: start, end: start}, nil
	}

	if end, ok := l.scanURI(); ok {
		l.pos = end
		return token{kind: tokURI, start: start, end: end}, nil
	}
	if ok, err := l.scanPath(); err != nil {
		return token{}, err
	} else if ok {
		return token{kind: tokPath, start: start, end: l.pos}, nil
	}

	c := l.src[l.pos]
	switch {
	case isIdentStart(c):
		l.pos++
		for l.pos < len(l.src) && isIdentChar(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, start: start, end: l.pos}, nil
	case isDigit(c), c == '.' && isDigit(l.peekByte(1)):
		return l.scanNumber(), nil
	case c == '"':
		if err := l.scanString(); err != nil {
			return token{}, err
		}
		return token{kind: tokString, start: start, end: l.pos}, nil
	case c == '\'' && l.peekByte(1) == '\'':
		if err := l.scanIndentedString(); err != nil {
			return token{}, err
		}
		return token{kind: tokIndString, start: start, end: l.pos}, nil
	case c == '<':
		if end, ok := l.scanSearchPath(); ok {
			l.pos = end
			return token{kind: tokPath, start: start, end: end}, nil
		}
	}

	kind, width := l.operator()
	if width == 0 {
		return token{}, l.errorf(start, "unexpected character %q", c)
	}
	l.pos += width
	return token{kind: kind, start: start, end: l.pos}, nil
}

func (l *lexer) operator() (tokenKind, int) {
	two := string(l.src[l.pos:min(l.pos+2, len(l.src))])
	switch two {
	case "${":
		return tokInterpStart, 2
	case "==":
		return tokEq, 2
	case "!=":
		return tokNeq, 2
	case "<=":
		return tokLe, 2
	case ">=":
		return tokGe, 2
	case "&&":
		return tokAnd, 2
	case "||":
		return tokOr, 2
	case "->":
		return tokImpl, 2
	case "++":
		return tokConcat, 2
	case "//":
		return tokUpdate, 2
	case "<|":
		return tokPipeLeft, 2
	case "|>":
		return tokPipeRight, 2
	}
	if l.pos+2 < len(l.src) && string(l.src[l.pos:l.pos+3]) == "..." {
		return tokEllipsis, 3
	}
	switch l.src[l.pos] {
	case '{':
		return tokLBrace, 1
	case '}':
		return tokRBrace, 1
	case '[':
		return tokLBracket, 1
	case ']':
		return tokRBracket, 1
	case '(':
		return tokLParen, 1
	case ')':
		return tokRParen, 1
	case ';':
		return tokSemicolon, 1
	case ':':
		return tokColon, 1
	case ',':
		return tokComma, 1
	case '.':
		return tokDot, 1
	case '@':
		return tokAt, 1
	case '?':
		return tokQuestion, 1
	case '=':
		return tokAssign, 1
	case '<':
		return tokLt, 1
	case '>':
		return tokGt, 1
	case '!':
		return tokNot, 1
	case '+':
		return tokPlus, 1
	case '-':
		return tokMinus, 1
	case '*':
		return tokStar, 1
	case '/':
		return tokSlash, 1
	}
	return tokEOF, 0
}

// scanNumber lexes integers and floats. A float may omit its integer part
// (.5) or, unless it starts with 0, its fraction (1.).
func (l *lexer) scanNumber() token {
	start := l.pos
	kind := tokInt
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		switch {
		case isDigit(l.peekByte(1)):
			kind = tokFloat
			l.pos++
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
		case l.pos > start && l.src[start] != '0':
			kind = tokFloat
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		j := l.pos + 1
		if j < len(l.src) && (l.src[j] == '+' || l.src[j] == '-') {
			j++
		}
		if j < len(l.src) && isDigit(l.src[j]) {
			kind = tokFloat
			l.pos = j
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
		}
	}
	return token{kind: kind, start: start, end: l.pos}
}

// skipInterpolation consumes tokens after a "${" up to and including the
// matching "}". Nested strings are consumed whole by next.
func (l *lexer) skipInterpolation() error {
	start := l.pos
	depth := 1
	for {
		tok, err := l.next()
		if err != nil {
			return err
		}
		switch tok.kind {
		case tokEOF:
			return l.errorf(start, "unterminated interpolation")
		case tokLBrace, tokInterpStart:
			depth++
		case tokRBrace:
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
}

func (l *lexer) scanString() error {
	start := l.pos
	l.pos++
	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; {
		case c == '\\':
			l.pos += 2
		case c == '$' && l.peekByte(1) == '{':
			l.pos += 2
			if err := l.skipInterpolation(); err != nil {
				return err
			}
		case c == '"':
			l.pos++
			return nil
		default:
			l.pos++
		}
	}
	return l.errorf(start, "unterminated string")
}

func (l *lexer) scanIndentedString() error {
	start := l.pos
	l.pos += 2
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\'' && l.peekByte(1) == '\'':
			switch l.peekByte(2) {
			case '\'', '$':
				l.pos += 3
			case '\\':
				l.pos += 4
			default:
				l.pos += 2
				return nil
			}
		case c == '$' && l.peekByte(1) == '{':
			l.pos += 2
			if err := l.skipInterpolation(); err != nil {
				return err
			}
		default:
			l.pos++
		}
	}
	return l.errorf(start, "unterminated indented string")
}

// scanPath recognizes relative, absolute and home paths such as ./a/b,
// /etc/x, ~/y and foo/bar, including ${} interpolation in later segments.
func (l *lexer) scanPath() (bool, error) {
	i := l.pos
	if l.src[i] == '~' {
		if l.peekByte(1) != '/' {
			return false, nil
		}
		i++
	} else {
		for i < len(l.src) && isPathChar(l.src[i]) {
			i++
		}
	}
	segments := 0
	for i < len(l.src) && l.src[i] == '/' {
		if i+1 < len(l.src) && isPathChar(l.src[i+1]) {
			i++
			for i < len(l.src) && isPathChar(l.src[i]) {
				i++
			}
			segments++
			continue
		}
		if i+2 < len(l.src) && l.src[i+1] == '$' && l.src[i+2] == '{' {
			save := l.pos
			l.pos = i + 3
			if err := l.skipInterpolation(); err != nil {
				l.pos = save
				return false, err
			}
			i = l.pos
			l.pos = save
			for i < len(l.src) && isPathChar(l.src[i]) {
				i++
			}
			segments++
			continue
		}
		break
	}
	if segments == 0 {
		return false, nil
	}
	l.pos = i
	return true, nil
}

// scanSearchPath recognizes <nixpkgs> style lookup paths.
func (l *lexer) scanSearchPath() (int, bool) {
	i := l.pos + 1
	seg := i
	for i < len(l.src) && (isPathChar(l.src[i]) || l.src[i] == '/') {
		i++
	}
	if i == seg || i >= len(l.src) || l.src[i] != '>' {
		return 0, false
	}
	return i + 1, true
}

func (l *lexer) scanURI() (int, bool) {
	i := l.pos
	if !isAlpha(l.src[i]) {
		return 0, false
	}
	for i < len(l.src) && (isAlpha(l.src[i]) || isDigit(l.src[i]) || l.src[i] == '+' || l.src[i] == '-' || l.src[i] == '.') {
		i++
	}
	if i >= len(l.src) || l.src[i] != ':' {
		return 0, false
	}
	i++
	rest := i
	for i < len(l.src) && isURIChar(l.src[i]) {
		i++
	}
	if i == rest {
		return 0, false
	}
	return i, true
}

func isAlpha(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool { return isAlpha(c) || c == '_' }

func isIdentChar(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '_' || c == '\'' || c == '-'
}

func isPathChar(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '.' || c == '_' || c == '-' || c == '+'
}

func isURIChar(c byte) bool {
	if isAlpha(c) || isDigit(c) {
		return true
	}
	switch c {
	case '%', '/', '?', ':', '@', '&', '=', '+', '$', ',', '-', '_', '.', '!', '~', '*', '\'':
		return true
	}
	return false
}
