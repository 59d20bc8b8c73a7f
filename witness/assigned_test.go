package witness

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sure2web3/plonkish/field"
)

func ratio(num, den uint64) Assigned {
	return Rational(field.NewElement(num), field.NewElement(den))
}

func TestAssignedEvaluate(t *testing.T) {
	require.Equal(t, field.NewElement(7), Trivial(field.NewElement(7)).Evaluate())
	require.Equal(t, field.NewElement(4), ratio(8, 2).Evaluate())

	// 1/0 = 0 by convention
	require.Equal(t, field.Zero(), ratio(5, 0).Evaluate())
	require.Equal(t, field.Zero(), Trivial(field.NewElement(5)).Invert().Mul(Trivial(field.Zero()).Invert()).Evaluate())
}

func TestAssignedArithmetic(t *testing.T) {
	// 1/2 + 1/3 = 5/6
	sum := ratio(1, 2).Add(ratio(1, 3))
	var want field.Element
	six := field.NewElement(6)
	want.Inverse(&six)
	five := field.NewElement(5)
	want.Mul(&want, &five)
	require.Equal(t, want, sum.Evaluate())

	// trivial arithmetic stays trivial: no division needed
	prod := Trivial(field.NewElement(6)).Mul(Trivial(field.NewElement(7)))
	require.Equal(t, field.NewElement(42), prod.Evaluate())

	require.Equal(t, field.NewElement(9), Trivial(field.NewElement(3)).Square().Evaluate())
	require.Equal(t, field.NewElement(27), Trivial(field.NewElement(3)).Cube().Evaluate())
	require.Equal(t, field.NewElement(8), Trivial(field.NewElement(4)).Double().Evaluate())

	var negWant field.Element
	four := field.NewElement(4)
	negWant.Neg(&four)
	require.Equal(t, negWant, Trivial(four).Neg().Evaluate())

	// (2/3) * (3/2) = 1
	require.Equal(t, field.One(), ratio(2, 3).Mul(ratio(3, 2)).Evaluate())

	// invert swaps numerator and denominator
	require.Equal(t, field.NewElement(3), ratio(2, 6).Invert().Evaluate())
}

func TestAssignedIsZero(t *testing.T) {
	require.True(t, Trivial(field.Zero()).IsZero())
	require.True(t, ratio(0, 5).IsZero())
	require.True(t, ratio(5, 0).IsZero())
	require.False(t, ratio(5, 2).IsZero())
}

func TestBatchEvaluate(t *testing.T) {
	vals := []Assigned{
		Trivial(field.NewElement(11)),
		ratio(9, 3),
		ratio(1, 0),
		Trivial(field.Zero()),
		ratio(10, 4),
	}
	got := BatchEvaluate(vals)
	require.Len(t, got, len(vals))
	for i, v := range vals {
		require.Equal(t, v.Evaluate(), got[i], "index %d", i)
	}
}
