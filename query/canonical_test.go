package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalHashOperandOrderInvariant(t *testing.T) {
	a := And(StringLit("x"), StringLit("y"))
	b := And(StringLit("y"), StringLit("x"))

	ha, err := CanonicalHash(a)
	require.NoError(t, err)
	hb, err := CanonicalHash(b)
	require.NoError(t, err)
	require.Equal(t, ha, hb)
}

func TestCanonicalHashNegativeZero(t *testing.T) {
	a := FloatLit(0.0)
	b := FloatLit(-0.0)
	ha, err := CanonicalHash(a)
	require.NoError(t, err)
	hb, err := CanonicalHash(b)
	require.NoError(t, err)
	require.Equal(t, ha, hb)
}

func TestCanonicalizeNaNRejected(t *testing.T) {
	nan := &Expr{Kind: KindLiteral, Literal: Literal{LitKind: LitFloat, Float: nanValue()}}
	_, err := Canonicalize(nan)
	require.ErrorIs(t, err, ErrNaN)
}

func TestCanonicalizeIdempotent(t *testing.T) {
	e := Or(And(Field("a"), StringLit("z")), StringLit("m"))
	once, err := Canonicalize(e)
	require.NoError(t, err)
	twice, err := Canonicalize(once)
	require.NoError(t, err)

	h1, err := CanonicalHash(once)
	require.NoError(t, err)
	h2, err := CanonicalHash(twice)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

func nanValue() float64 {
	var zero float64
	return zero / zero
}
