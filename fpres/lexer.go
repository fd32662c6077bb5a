package fpres

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNum
	tokLAngle
	tokRAngle
	tokBar
	tokComma
	tokPlus
	tokMinus
	tokStar
	tokCaret
	tokLBrack
	tokRBrack
	tokLParen
	tokRParen
	tokEqual
	tokDefine
)

var tokenNames = map[tokenKind]string{
	tokEOF:    "end of input",
	tokIdent:  "identifier",
	tokNum:    "number",
	tokLAngle: "'<'",
	tokRAngle: "'>'",
	tokBar:    "'|'",
	tokComma:  "','",
	tokPlus:   "'+'",
	tokMinus:  "'-'",
	tokStar:   "'*'",
	tokCaret:  "'^'",
	tokLBrack: "'['",
	tokRBrack: "']'",
	tokLParen: "'('",
	tokRParen: "')'",
	tokEqual:  "'='",
	tokDefine: "':='",
}

func (k tokenKind) String() string { return tokenNames[k] }

var punct = map[rune]tokenKind{
	'<': tokLAngle, '>': tokRAngle, '|': tokBar, ',': tokComma, ';': tokComma,
	'+': tokPlus, '-': tokMinus, '*': tokStar, '^': tokCaret,
	'[': tokLBrack, ']': tokRBrack, '(': tokLParen, ')': tokRParen, '=': tokEqual,
}

type token struct {
	kind tokenKind
	text string
	pos  Pos
}

func (t token) String() string {
	switch t.kind {
	case tokIdent, tokNum:
		return fmt.Sprintf("%s %q", t.kind, t.text)
	default:
		return t.kind.String()
	}
}

type lexer struct {
	file string
	src  string
	off  int
	line int
	col  int
}

func newLexer(file string, src []byte) *lexer {
	return &lexer{file: file, src: string(src), line: 1, col: 1}
}

func (l *lexer) errorf(pos Pos, format string, args ...any) *SyntaxError {
	return &SyntaxError{File: l.file, Line: pos.Line, Col: pos.Col, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) peekRune() rune {
	if l.off >= len(l.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.off:])
	return r
}

func (l *lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.off:])
	l.off += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) skip() {
	for l.off < len(l.src) {
		r := l.peekRune()
		switch {
		case r == '#':
			for l.off < len(l.src) && l.peekRune() != '\n' {
				l.advance()
			}
		case unicode.IsSpace(r):
			l.advance()
		default:
			return
		}
	}
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentPart(r rune) bool { return isIdentStart(r) || r == '.' || unicode.IsDigit(r) }

func (l *lexer) next() (token, error) {
	l.skip()
	pos := Pos{Line: l.line, Col: l.col}
	if l.off >= len(l.src) {
		return token{kind: tokEOF, pos: pos}, nil
	}

	start := l.off
	r := l.advance()
	switch {
	case isIdentStart(r):
		for l.off < len(l.src) && isIdentPart(l.peekRune()) {
			l.advance()
		}
		return token{kind: tokIdent, text: l.src[start:l.off], pos: pos}, nil
	case r >= '0' && r <= '9':
		for l.off < len(l.src) && l.peekRune() >= '0' && l.peekRune() <= '9' {
			l.advance()
		}
		return token{kind: tokNum, text: l.src[start:l.off], pos: pos}, nil
	}

	if r == ':' {
		if l.peekRune() == '=' {
			l.advance()
			return token{kind: tokDefine, pos: pos}, nil
		}
		return token{}, l.errorf(pos, "expected ':=' after ':'")
	}
	if k, ok := punct[r]; ok {
		return token{kind: k, text: string(r), pos: pos}, nil
	}
	return token{}, l.errorf(pos, "unexpected character %q", r)
}

func (l *lexer) all() ([]token, error) {
	var toks []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tokEOF {
			return toks, nil
		}
	}
}
