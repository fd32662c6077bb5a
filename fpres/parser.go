package fpres

import (
	"fmt"
	"os"

	"github.com/hupe1980/nilq/pc"
)

type parser struct {
	lex  *lexer
	toks []token
	i    int
	sig  pc.Signature
	pres *Presentation

	gens    map[string]int
	aliases map[string]*Node
}

// Parse parses src as a presentation for the given signature. file is used
// in error positions only.
func Parse(file string, src []byte, sig pc.Signature) (*Presentation, error) {
	lex := newLexer(file, src)
	toks, err := lex.all()
	if err != nil {
		return nil, err
	}
	p := &parser{
		lex:     lex,
		toks:    toks,
		sig:     sig,
		pres:    &Presentation{File: file, Signature: sig},
		gens:    make(map[string]int),
		aliases: make(map[string]*Node),
	}
	if err := p.presentation(); err != nil {
		return nil, err
	}
	return p.pres, nil
}

// ParseFile reads and parses a presentation file.
func ParseFile(path string, sig pc.Signature) (*Presentation, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fpres: %w", err)
	}
	return Parse(path, src, sig)
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) peekAt(k int) token {
	if p.i+k < len(p.toks) {
		return p.toks[p.i+k]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) take() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) errorf(pos Pos, format string, args ...any) error {
	return p.lex.errorf(pos, format, args...)
}

func (p *parser) expect(k tokenKind) (token, error) {
	t := p.take()
	if t.kind != k {
		return t, p.errorf(t.pos, "expected %s, found %s", k, t)
	}
	return t, nil
}

func (p *parser) presentation() error {
	if _, err := p.expect(tokLAngle); err != nil {
		return err
	}
	if p.peek().kind != tokBar {
		for {
			t, err := p.expect(tokIdent)
			if err != nil {
				return err
			}
			if _, dup := p.gens[t.text]; dup {
				return p.errorf(t.pos, "duplicate generator %q", t.text)
			}
			p.gens[t.text] = len(p.pres.Generators)
			p.pres.Generators = append(p.pres.Generators, t.text)
			if p.peek().kind != tokComma {
				break
			}
			p.take()
		}
	}
	if _, err := p.expect(tokBar); err != nil {
		return err
	}
	for p.peek().kind != tokRAngle {
		if err := p.item(); err != nil {
			return err
		}
		switch t := p.peek(); t.kind {
		case tokComma:
			p.take()
		case tokRAngle:
		default:
			return p.errorf(t.pos, "expected ',' or '>', found %s", t)
		}
	}
	p.take()
	if t := p.peek(); t.kind != tokEOF {
		return p.errorf(t.pos, "unexpected %s after presentation", t)
	}
	return nil
}

func (p *parser) item() error {
	if p.peek().kind == tokIdent && p.peekAt(1).kind == tokDefine {
		name := p.take()
		p.take()
		if _, clash := p.gens[name.text]; clash {
			return p.errorf(name.pos, "alias %q shadows a generator", name.text)
		}
		if _, dup := p.aliases[name.text]; dup {
			return p.errorf(name.pos, "duplicate alias %q", name.text)
		}
		n, err := p.expr()
		if err != nil {
			return err
		}
		p.aliases[name.text] = n
		p.pres.Aliases = append(p.pres.Aliases, Alias{Name: name.text, Expr: n})
		return nil
	}

	lhs, err := p.expr()
	if err != nil {
		return err
	}
	if t := p.peek(); t.kind == tokEqual {
		p.take()
		rhs, err := p.expr()
		if err != nil {
			return err
		}
		lhs = &Node{Op: OpEqual, Args: []*Node{lhs, rhs}, Pos: t.pos}
	}
	p.pres.Relators = append(p.pres.Relators, lhs)
	return nil
}

func (p *parser) expr() (*Node, error) {
	if p.sig == pc.Group {
		return p.groupExpr()
	}
	return p.lieExpr()
}

func (p *parser) lieExpr() (*Node, error) {
	n, err := p.lieTerm()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		var op Op
		switch t.kind {
		case tokPlus:
			op = OpSum
		case tokMinus:
			op = OpDiff
		case tokStar:
			return nil, p.errorf(t.pos, "'*' in a Lie ring needs an integer on its left")
		default:
			return n, nil
		}
		p.take()
		rhs, err := p.lieTerm()
		if err != nil {
			return nil, err
		}
		n = &Node{Op: op, Args: []*Node{n, rhs}, Pos: t.pos}
	}
}

func (p *parser) lieTerm() (*Node, error) {
	t := p.peek()
	switch t.kind {
	case tokMinus:
		p.take()
		arg, err := p.lieTerm()
		if err != nil {
			return nil, err
		}
		return &Node{Op: OpNeg, Args: []*Node{arg}, Pos: t.pos}, nil
	case tokNum:
		p.take()
		if p.peek().kind == tokStar {
			p.take()
			arg, err := p.lieTerm()
			if err != nil {
				return nil, err
			}
			return &Node{Op: OpScale, Num: t.text, Args: []*Node{arg}, Pos: t.pos}, nil
		}
		if isZero(t.text) {
			return &Node{Op: OpIdentity, Pos: t.pos}, nil
		}
		return nil, p.errorf(t.pos, "integer %s must multiply an element", t.text)
	}
	n, err := p.atom()
	if err != nil {
		return nil, err
	}
	if c := p.peek(); c.kind == tokCaret {
		return nil, p.errorf(c.pos, "operator '^' is not valid in a Lie ring presentation")
	}
	return n, nil
}

func (p *parser) groupExpr() (*Node, error) {
	n, err := p.groupTerm()
	if err != nil {
		return nil, err
	}
	args := []*Node{n}
	for {
		t := p.peek()
		switch t.kind {
		case tokStar:
		case tokPlus, tokMinus:
			return nil, p.errorf(t.pos, "operator %s is not valid in a group presentation", t.kind)
		default:
			if len(args) == 1 {
				return n, nil
			}
			return &Node{Op: OpProduct, Args: args, Pos: n.Pos}, nil
		}
		p.take()
		rhs, err := p.groupTerm()
		if err != nil {
			return nil, err
		}
		args = append(args, rhs)
	}
}

func (p *parser) groupTerm() (*Node, error) {
	n, err := p.atom()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokCaret {
		caret := p.take()
		t := p.peek()
		switch {
		case t.kind == tokMinus:
			p.take()
			num, err := p.expect(tokNum)
			if err != nil {
				return nil, err
			}
			n = &Node{Op: OpPower, Num: "-" + num.text, Args: []*Node{n}, Pos: caret.pos}
		case t.kind == tokNum:
			p.take()
			n = &Node{Op: OpPower, Num: t.text, Args: []*Node{n}, Pos: caret.pos}
		default:
			by, err := p.atom()
			if err != nil {
				return nil, err
			}
			n = &Node{Op: OpConjugate, Args: []*Node{n, by}, Pos: caret.pos}
		}
	}
	return n, nil
}

func (p *parser) atom() (*Node, error) {
	t := p.take()
	switch t.kind {
	case tokIdent:
		if g, ok := p.gens[t.text]; ok {
			return &Node{Op: OpGen, Gen: g, Pos: t.pos}, nil
		}
		if n, ok := p.aliases[t.text]; ok {
			return n, nil
		}
		return nil, p.errorf(t.pos, "unknown generator %q", t.text)
	case tokNum:
		if p.sig == pc.Group && t.text == "1" {
			return &Node{Op: OpIdentity, Pos: t.pos}, nil
		}
		if p.sig == pc.Group {
			return nil, p.errorf(t.pos, "integer %s is not a group element", t.text)
		}
		return nil, p.errorf(t.pos, "integer %s must multiply an element", t.text)
	case tokLParen:
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return n, nil
	case tokLBrack:
		op := OpBracket
		if p.sig == pc.Group {
			op = OpCommutator
		}
		n := &Node{Op: op, Pos: t.pos}
		for {
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}
			n.Args = append(n.Args, arg)
			if p.peek().kind != tokComma {
				break
			}
			p.take()
		}
		if _, err := p.expect(tokRBrack); err != nil {
			return nil, err
		}
		if len(n.Args) < 2 {
			return nil, p.errorf(t.pos, "bracket needs at least two entries")
		}
		return n, nil
	}
	return nil, p.errorf(t.pos, "expected an element, found %s", t)
}

func isZero(s string) bool {
	for _, r := range s {
		if r != '0' {
			return false
		}
	}
	return true
}
