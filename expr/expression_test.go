package expr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sure2web3/plonkish/field"
)

func adviceQ(col int, rot Rotation) Expression {
	return &AdviceQuery{QueryIndex: col, ColumnIndex: col, Rotation: rot}
}

func fixedQ(col int) Expression {
	return &FixedQuery{QueryIndex: col, ColumnIndex: col, Rotation: RotationCur}
}

func TestDegree(t *testing.T) {
	a := adviceQ(0, RotationCur)
	b := adviceQ(1, RotationNext)
	f := fixedQ(0)

	tests := []struct {
		name string
		e    Expression
		want int
	}{
		{"constant", ConstUint64(7), 0},
		{"advice", a, 1},
		{"fixed", f, 1},
		{"selector", &SelectorRef{Selector: Selector{Index: 0, Simple: true}}, 1},
		{"sum_max", Add(a, Mul(b, f)), 2},
		{"product_adds", Mul(Mul(a, b), f), 3},
		{"negated_preserves", Neg(Mul(a, b)), 2},
		{"scaled_preserves", Scale(Mul(a, b), field.NewElement(5)), 2},
		{"sub", Sub(a, b), 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Degree(tc.e))
			// degree is invariant under re-derivation
			require.Equal(t, tc.want, Degree(tc.e))
		})
	}
}

func TestContainsSimpleSelector(t *testing.T) {
	simple := &SelectorRef{Selector: Selector{Index: 0, Simple: true}}
	complexSel := &SelectorRef{Selector: Selector{Index: 1, Simple: false}}
	a := adviceQ(0, RotationCur)

	require.True(t, ContainsSimpleSelector(Mul(simple, a)))
	require.False(t, ContainsSimpleSelector(Mul(complexSel, a)))
	require.False(t, ContainsSimpleSelector(a))
}

func TestExtractSimpleSelector(t *testing.T) {
	s := Selector{Index: 3, Simple: true}
	a := adviceQ(0, RotationCur)

	got, ok := ExtractSimpleSelector(Mul(&SelectorRef{Selector: s}, Sub(a, adviceQ(1, RotationCur))))
	require.True(t, ok)
	require.Equal(t, s, got)

	_, ok = ExtractSimpleSelector(a)
	require.False(t, ok)

	other := Selector{Index: 4, Simple: true}
	require.Panics(t, func() {
		ExtractSimpleSelector(Add(
			Mul(&SelectorRef{Selector: s}, a),
			Mul(&SelectorRef{Selector: other}, a),
		))
	})
}

func TestMulRejectsTwoSimpleSelectors(t *testing.T) {
	a := Mul(&SelectorRef{Selector: Selector{Index: 0, Simple: true}}, adviceQ(0, RotationCur))
	b := Mul(&SelectorRef{Selector: Selector{Index: 1, Simple: true}}, adviceQ(1, RotationCur))
	require.Panics(t, func() { Mul(a, b) })

	// complex selectors compose freely
	c := Mul(&SelectorRef{Selector: Selector{Index: 2, Simple: false}}, adviceQ(0, RotationCur))
	d := Mul(&SelectorRef{Selector: Selector{Index: 3, Simple: false}}, adviceQ(1, RotationCur))
	require.NotPanics(t, func() { Mul(c, d) })
}

func TestIdentifierStable(t *testing.T) {
	e := Add(Mul(adviceQ(0, RotationCur), fixedQ(1)), Neg(ConstUint64(3)))
	require.Equal(t, Identifier(e), Identifier(e))
	require.NotEqual(t, Identifier(e), Identifier(Neg(e)))
}

func TestColumnOrdering(t *testing.T) {
	inst := NewColumn(5, Instance)
	adv := NewColumn(0, Advice)
	fix := NewColumn(0, Fixed)

	// kind dominates index
	require.Negative(t, inst.Cmp(adv))
	require.Negative(t, adv.Cmp(fix))
	require.Positive(t, fix.Cmp(inst))
	require.Zero(t, adv.Cmp(NewColumn(0, Advice)))
	require.Negative(t, adv.Cmp(NewColumn(1, Advice)))
}

func TestColumnAsKind(t *testing.T) {
	adv := NewColumn(2, Advice)

	got, err := adv.AsKind(Advice)
	require.NoError(t, err)
	require.Equal(t, adv, got)

	_, err = adv.AsKind(Fixed)
	require.Error(t, err)

	erased, err := adv.AsKind(Any)
	require.NoError(t, err)
	// erasure is lossless
	require.Equal(t, Advice, erased.Kind)
}
