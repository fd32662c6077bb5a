package fpres

import (
	"errors"
	"testing"

	"github.com/hupe1980/nilq/pc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Lie(t *testing.T) {
	src := `
# Heisenberg-like
< a, b |
    c := [b, a],
    [c, a], 3*[c, b] = 0,
    2*a - -b
>`
	p, err := Parse("lie.fp", []byte(src), pc.LieRing)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, p.Generators)
	require.Len(t, p.Relators, 3)
	require.Len(t, p.Aliases, 1)

	r0 := p.Relators[0]
	assert.Equal(t, OpBracket, r0.Op)
	assert.Same(t, p.Aliases[0].Expr, r0.Args[0], "aliases are shared subtrees")

	r1 := p.Relators[1]
	assert.Equal(t, OpEqual, r1.Op)
	assert.Equal(t, OpScale, r1.Args[0].Op)
	assert.Equal(t, "3", r1.Args[0].Num)
	assert.Equal(t, OpIdentity, r1.Args[1].Op)

	assert.Equal(t, "(2*a - -b)", p.Format(p.Relators[2]))
	assert.Equal(t, "[[b, a], a]", p.Format(r0))
	assert.Equal(t, Pos{Line: 5, Col: 5}, r0.Pos)
}

func TestParse_Group(t *testing.T) {
	src := `< x, y | x^2, y^-3, (x*y)^5, x^y = x*[x, y, y], 1 >`
	p, err := Parse("", []byte(src), pc.Group)
	require.NoError(t, err)
	require.Len(t, p.Relators, 5)

	assert.Equal(t, OpPower, p.Relators[0].Op)
	assert.Equal(t, "-3", p.Relators[1].Num)

	prod := p.Relators[2].Args[0]
	assert.Equal(t, OpProduct, prod.Op)
	assert.Len(t, prod.Args, 2)

	eq := p.Relators[3]
	assert.Equal(t, OpConjugate, eq.Args[0].Op)
	assert.Equal(t, OpProduct, eq.Args[1].Op)
	assert.Equal(t, OpCommutator, eq.Args[1].Args[1].Op)
	assert.Len(t, eq.Args[1].Args[1].Args, 3)

	assert.Equal(t, OpIdentity, p.Relators[4].Op)
	assert.Equal(t, "x^y = (x*[x, y, y])", p.Format(eq))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		sig  pc.Signature
		src  string
		line int
		col  int
		msg  string
	}{
		{"duplicate generator", pc.LieRing, "< a, a | >", 1, 6, `duplicate generator "a"`},
		{"unknown generator", pc.LieRing, "< a |\n  [a, z] >", 2, 7, `unknown generator "z"`},
		{"caret in lie ring", pc.LieRing, "< a | a^2 >", 1, 8, "not valid in a Lie ring"},
		{"plus in group", pc.Group, "< a | a + a >", 1, 9, "not valid in a group"},
		{"bare integer", pc.LieRing, "< a | 3 >", 1, 7, "must multiply"},
		{"short bracket", pc.LieRing, "< a | [a] >", 1, 7, "at least two"},
		{"stray character", pc.LieRing, "< a | a @ >", 1, 9, "unexpected character"},
		{"unterminated", pc.Group, "< a | a^2", 1, 10, "expected ',' or '>'"},
		{"alias shadows generator", pc.LieRing, "< a | a := 2*a >", 1, 7, "shadows"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse("in.fp", []byte(tc.src), tc.sig)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSyntax))

			var se *SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.line, se.Line)
			assert.Equal(t, tc.col, se.Col)
			assert.Contains(t, se.Msg, tc.msg)
			assert.Contains(t, se.Error(), "in.fp:")
		})
	}
}
