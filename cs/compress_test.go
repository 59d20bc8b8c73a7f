package cs

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/sure2web3/plonkish/expr"
	"github.com/sure2web3/plonkish/field"
)

// evalRow evaluates an expression at a row, reading selectors from their
// original boolean assignment, fixed columns from the materialized polys and
// advice cells from a deterministic dummy trace.
func evalRow(e expr.Expression, row int, selectors [][]bool, fixed map[int][]field.Element) field.Element {
	return expr.Evaluate(e, expr.Evaluator[field.Element]{
		Constant: func(v field.Element) field.Element { return v },
		Selector: func(s expr.Selector) field.Element {
			if selectors[s.Index][row] {
				return field.One()
			}
			return field.Zero()
		},
		Fixed: func(q expr.FixedQuery) field.Element {
			if poly, ok := fixed[q.ColumnIndex]; ok {
				return poly[row]
			}
			return field.Zero()
		},
		Advice: func(q expr.AdviceQuery) field.Element {
			return field.NewElement(uint64(q.ColumnIndex*31 + row + 1))
		},
		Instance: func(q expr.InstanceQuery) field.Element {
			return field.NewElement(uint64(q.ColumnIndex*17 + row + 5))
		},
		Negated: func(v field.Element) field.Element {
			var r field.Element
			r.Neg(&v)
			return r
		},
		Sum: func(a, b field.Element) field.Element {
			var r field.Element
			r.Add(&a, &b)
			return r
		},
		Product: func(a, b field.Element) field.Element {
			var r field.Element
			r.Mul(&a, &b)
			return r
		},
		Scaled: func(v, c field.Element) field.Element {
			var r field.Element
			r.Mul(&v, &c)
			return r
		},
	})
}

// compressFixture is a system with simple and complex selectors spread over
// gates and a lookup.
func compressFixture() (*ConstraintSystem, []expr.Selector) {
	sys := New()
	a0 := sys.AdviceColumn()
	a1 := sys.AdviceColumn()
	s0 := sys.Selector()
	s1 := sys.Selector()
	c2 := sys.ComplexSelector()
	c3 := sys.ComplexSelector()

	sys.CreateGate("eq", func(v *VirtualCells) []Constraint {
		sel := v.QuerySelector(s0)
		x := v.QueryAdvice(a0, expr.RotationCur)
		y := v.QueryAdvice(a1, expr.RotationCur)
		return []Constraint{{Name: "a0=a1", Poly: expr.Mul(sel, expr.Sub(x, y))}}
	})
	sys.CreateGate("zero", func(v *VirtualCells) []Constraint {
		sel := v.QuerySelector(s1)
		x := v.QueryAdvice(a0, expr.RotationCur)
		return []Constraint{{Name: "a0=0", Poly: expr.Mul(sel, x)}}
	})
	sys.CreateGate("bool", func(v *VirtualCells) []Constraint {
		sel := v.QuerySelector(c2)
		y := v.QueryAdvice(a1, expr.RotationCur)
		return []Constraint{{Name: "bit", Poly: expr.Mul(sel, expr.Mul(y, expr.Sub(y, expr.ConstUint64(1))))}}
	})
	table := sys.LookupTableColumn()
	sys.Lookup("range", func(v *VirtualCells) []LookupPair {
		sel := v.QuerySelector(c3)
		x := v.QueryAdvice(a0, expr.RotationCur)
		return []LookupPair{{Input: expr.Mul(sel, x), Table: table}}
	})
	return sys, []expr.Selector{s0, s1, c2, c3}
}

func clonedPolys(sys *ConstraintSystem) []expr.Expression {
	var polys []expr.Expression
	for _, g := range sys.Gates() {
		polys = append(polys, g.Polys...)
	}
	for i := range sys.Lookups() {
		polys = append(polys, sys.Lookups()[i].Inputs...)
	}
	return polys
}

func TestCompressSelectorsRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)
	properties.Property("rewritten expressions evaluate identically on every row", prop.ForAll(
		func(seed int64) bool {
			rng := rand.New(rand.NewSource(seed))
			const n = 32

			sys, selectors := compressFixture()
			before := clonedPolys(sys)

			assignments := make([][]bool, len(selectors))
			for i := range assignments {
				assignments[i] = make([]bool, n)
				for r := range assignments[i] {
					assignments[i][r] = rng.Intn(3) == 0
				}
			}

			base := sys.NumFixedColumns()
			polys := sys.CompressSelectors(assignments)
			fixed := make(map[int][]field.Element, len(polys))
			for i, poly := range polys {
				fixed[base+i] = poly
			}

			after := clonedPolys(sys)
			for pi := range before {
				for row := 0; row < n; row++ {
					orig := evalRow(before[pi], row, assignments, fixed)
					rewritten := evalRow(after[pi], row, assignments, fixed)
					if !orig.Equal(&rewritten) {
						return false
					}
				}
			}
			return true
		},
		gen.Int64(),
	))
	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCompressSelectorsPacksDisjointRows(t *testing.T) {
	sys, selectors := compressFixture()
	const n = 16

	// s0 on even rows, s1 on odd rows: disjoint, so they share a column
	assignments := make([][]bool, len(selectors))
	for i := range assignments {
		assignments[i] = make([]bool, n)
	}
	for r := 0; r < n; r += 2 {
		assignments[0][r] = true
		assignments[1][r+1] = true
	}

	base := sys.NumFixedColumns()
	polys := sys.CompressSelectors(assignments)

	// s0+s1 share one column; c2 and c3 were never enabled and pack together
	require.Len(t, polys, 2)
	require.Equal(t, base+2, sys.NumFixedColumns())

	shared := polys[0]
	require.Equal(t, field.NewElement(1), shared[0])
	require.Equal(t, field.NewElement(2), shared[1])

	// no selector reference survives the rewrite
	for _, p := range clonedPolys(sys) {
		require.False(t, expr.ContainsSimpleSelector(p))
		require.NotContains(t, expr.Identifier(p), "selector")
	}
}

func TestCompressSelectorsOverlapGetsOwnColumn(t *testing.T) {
	sys := New()
	a := sys.AdviceColumn()
	s0 := sys.Selector()
	s1 := sys.Selector()
	sys.CreateGate("g0", func(v *VirtualCells) []Constraint {
		return []Constraint{{Name: "c0", Poly: expr.Mul(v.QuerySelector(s0), v.QueryAdvice(a, expr.RotationCur))}}
	})
	sys.CreateGate("g1", func(v *VirtualCells) []Constraint {
		return []Constraint{{Name: "c1", Poly: expr.Mul(v.QuerySelector(s1), v.QueryAdvice(a, expr.RotationCur))}}
	})

	// both active at row 0: they cannot share
	assignments := [][]bool{
		{true, false, false, false},
		{true, true, false, false},
	}
	polys := sys.CompressSelectors(assignments)
	require.Len(t, polys, 2)
}
