// Package fpres parses finite presentations of Lie rings and groups.
//
// A presentation lists generators and relators between angle brackets:
//
//	< a, b | [b, a, a], 3*[b, a, b] = 0 >      # Lie ring
//	< x, y | x^2, y^3, (x*y)^5 >               # group
//
// A relator of the form lhs = rhs stands for lhs - rhs (Lie) or lhs*rhs^-1
// (group). An item name := expr defines an alias usable by later relators.
// Text from # to the end of the line is ignored.
package fpres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/nilq/pc"
)

// ErrSyntax is wrapped by every SyntaxError.
var ErrSyntax = errors.New("fpres: invalid presentation")

// SyntaxError reports malformed input with its position.
type SyntaxError struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	file := e.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: %s", file, e.Line, e.Col, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// Op is the operator of an expression node.
type Op uint8

const (
	// OpGen is an original generator leaf.
	OpGen Op = iota
	// OpIdentity is 0 in a Lie ring and 1 in a group.
	OpIdentity
	// OpSum adds its arguments.
	OpSum
	// OpDiff subtracts its second argument from its first.
	OpDiff
	// OpNeg negates its argument.
	OpNeg
	// OpScale multiplies its argument by the integer Num.
	OpScale
	// OpBracket is the left-normed Lie bracket of its arguments.
	OpBracket
	// OpProduct multiplies its arguments left to right.
	OpProduct
	// OpPower raises its argument to the integer Num.
	OpPower
	// OpConjugate is Args[0]^Args[1].
	OpConjugate
	// OpCommutator is the left-normed group commutator of its arguments.
	OpCommutator
	// OpEqual relates two sides.
	OpEqual
)

var opNames = [...]string{"gen", "identity", "sum", "diff", "neg", "scale", "bracket", "product", "power", "conjugate", "commutator", "equal"}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", o)
}

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

// Node is an expression tree node.
type Node struct {
	Op   Op
	Gen  int
	Num  string
	Args []*Node
	Pos  Pos
}

// Alias is a named subexpression.
type Alias struct {
	Name string
	Expr *Node
}

// Presentation is a parsed finite presentation.
type Presentation struct {
	File       string
	Signature  pc.Signature
	Generators []string
	Relators   []*Node
	Aliases    []Alias
}

// Format renders n in the input syntax.
func (p *Presentation) Format(n *Node) string {
	var sb strings.Builder
	p.format(&sb, n)
	return sb.String()
}

func (p *Presentation) format(sb *strings.Builder, n *Node) {
	join := func(sep string) {
		for i, a := range n.Args {
			if i > 0 {
				sb.WriteString(sep)
			}
			p.format(sb, a)
		}
	}
	switch n.Op {
	case OpGen:
		sb.WriteString(p.Generators[n.Gen])
	case OpIdentity:
		if p.Signature == pc.Group {
			sb.WriteString("1")
		} else {
			sb.WriteString("0")
		}
	case OpSum:
		sb.WriteString("(")
		join(" + ")
		sb.WriteString(")")
	case OpDiff:
		sb.WriteString("(")
		join(" - ")
		sb.WriteString(")")
	case OpNeg:
		sb.WriteString("-")
		p.format(sb, n.Args[0])
	case OpScale:
		sb.WriteString(n.Num)
		sb.WriteString("*")
		p.format(sb, n.Args[0])
	case OpBracket, OpCommutator:
		sb.WriteString("[")
		join(", ")
		sb.WriteString("]")
	case OpProduct:
		sb.WriteString("(")
		join("*")
		sb.WriteString(")")
	case OpPower:
		p.format(sb, n.Args[0])
		sb.WriteString("^")
		sb.WriteString(n.Num)
	case OpConjugate:
		p.format(sb, n.Args[0])
		sb.WriteString("^")
		p.format(sb, n.Args[1])
	case OpEqual:
		join(" = ")
	}
}
