package cs

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/sure2web3/plonkish/expr"
	"github.com/sure2web3/plonkish/field"
	"github.com/sure2web3/plonkish/logger"
)

// selectorCombination is a group of selectors sharing one fixed column.
// Members never have overlapping active rows, so the column can encode which
// member (if any) is active at each row.
type selectorCombination struct {
	selectors []int
	rows      *bitset.BitSet
}

// CompressSelectors packs the virtual selectors into as few fixed columns as
// possible and rewrites every selector reference in gates and lookups into an
// expression over the new columns. assignments holds the full per-row boolean
// assignment of each selector; all rows must have the same length. The
// returned polynomials are the per-column values to materialize, in column
// allocation order.
//
// Selectors whose active rows never overlap share a column. The column holds
// value j+1 at rows where its j-th member is active and 0 elsewhere; a member
// of a k-selector combination is rewritten to the degree-k interpolation
// polynomial that is 1 exactly at its own encoded value. Combinations are
// grown greedily while the rewritten gate degrees stay within the system
// degree; a selector that fits nowhere gets a dedicated column.
func (cs *ConstraintSystem) CompressSelectors(assignments [][]bool) [][]field.Element {
	if len(assignments) != len(cs.selectors) {
		panic(fmt.Sprintf("cs: %d selector assignments for %d selectors",
			len(assignments), len(cs.selectors)))
	}
	if len(assignments) == 0 {
		return nil
	}
	n := len(assignments[0])
	for i, rows := range assignments {
		if len(rows) != n {
			panic(fmt.Sprintf("cs: selector %d assigned %d rows, want %d", i, len(rows), n))
		}
	}

	budget := cs.Degree()
	maxDeg := cs.selectorMaxDegrees()

	var combos []selectorCombination
	for i := range cs.selectors {
		active := bitset.New(uint(n))
		for r, b := range assignments[i] {
			if b {
				active.Set(uint(r))
			}
		}
		placed := false
		for ci := range combos {
			c := &combos[ci]
			if c.rows.IntersectionCardinality(active) != 0 {
				continue
			}
			if !fitsDegree(c.selectors, i, maxDeg, budget) {
				continue
			}
			c.selectors = append(c.selectors, i)
			c.rows.InPlaceUnion(active)
			placed = true
			break
		}
		if !placed {
			combos = append(combos, selectorCombination{
				selectors: []int{i},
				rows:      active,
			})
		}
	}

	polys := make([][]field.Element, len(combos))
	replacements := make([]func() expr.Expression, len(cs.selectors))
	for ci, c := range combos {
		col := cs.FixedColumn()
		queryIndex := cs.QueryFixedIndex(col, expr.RotationCur)
		columnIndex := col.Index

		vals := make([]field.Element, n)
		for j, si := range c.selectors {
			encoded := field.NewElement(uint64(j + 1))
			for r, b := range assignments[si] {
				if b {
					vals[r] = encoded
				}
			}
		}
		polys[ci] = vals

		k := len(c.selectors)
		for j, si := range c.selectors {
			j := j
			replacements[si] = func() expr.Expression {
				q := func() expr.Expression {
					return &expr.FixedQuery{
						QueryIndex:  queryIndex,
						ColumnIndex: columnIndex,
						Rotation:    expr.RotationCur,
					}
				}
				if k == 1 {
					// the column already holds exactly 0/1
					return q()
				}
				return interpolatedSelector(q, j+1, k)
			}
		}
	}

	for gi := range cs.gates {
		for pi, p := range cs.gates[gi].Polys {
			cs.gates[gi].Polys[pi] = replaceSelectors(p, replacements)
		}
	}
	for li := range cs.lookups {
		for ii, in := range cs.lookups[li].Inputs {
			cs.lookups[li].Inputs[ii] = replaceSelectors(in, replacements)
		}
	}

	log := logger.Logger()
	log.Debug().
		Int("selectors", len(cs.selectors)).
		Int("columns", len(combos)).
		Msg("compressed selectors")

	return polys
}

// selectorMaxDegrees computes, per selector, the largest degree of any gate
// polynomial or lookup input referencing it.
func (cs *ConstraintSystem) selectorMaxDegrees() []int {
	maxDeg := make([]int, len(cs.selectors))
	note := func(p expr.Expression) {
		deg := expr.Degree(p)
		for _, s := range selectorsIn(p) {
			if deg > maxDeg[s] {
				maxDeg[s] = deg
			}
		}
	}
	for _, g := range cs.gates {
		for _, p := range g.Polys {
			note(p)
		}
	}
	for i := range cs.lookups {
		for _, in := range cs.lookups[i].Inputs {
			note(in)
		}
	}
	return maxDeg
}

// fitsDegree reports whether adding candidate to the combination keeps every
// member's rewritten degree within budget. With k members the rewritten
// selector factor has degree k instead of 1.
func fitsDegree(members []int, candidate int, maxDeg []int, budget int) bool {
	k := len(members) + 1
	for _, m := range append(append([]int{}, members...), candidate) {
		if maxDeg[m]-1+k > budget {
			return false
		}
	}
	return true
}

// interpolatedSelector builds the polynomial over the combination column
// value that is 1 at the encoded value `target` and 0 at every other value in
// 0..k.
func interpolatedSelector(q func() expr.Expression, target, k int) expr.Expression {
	norm := field.One()
	var tmp, tv field.Element
	tv.SetUint64(uint64(target))
	for t := 0; t <= k; t++ {
		if t == target {
			continue
		}
		var te field.Element
		te.SetUint64(uint64(t))
		tmp.Sub(&tv, &te)
		norm.Mul(&norm, &tmp)
	}
	norm.Inverse(&norm)

	e := expr.Const(norm)
	for t := 0; t <= k; t++ {
		if t == target {
			continue
		}
		e = &expr.Product{Left: e, Right: expr.Sub(q(), expr.ConstUint64(uint64(t)))}
	}
	return e
}

// selectorsIn collects the indices of all selectors referenced by e.
func selectorsIn(e expr.Expression) []int {
	merge := func(a, b []int) []int { return append(a, b...) }
	return expr.Evaluate(e, expr.Evaluator[[]int]{
		Constant: func(field.Element) []int { return nil },
		Selector: func(s expr.Selector) []int { return []int{s.Index} },
		Fixed:    func(expr.FixedQuery) []int { return nil },
		Advice:   func(expr.AdviceQuery) []int { return nil },
		Instance: func(expr.InstanceQuery) []int { return nil },
		Negated:  func(a []int) []int { return a },
		Sum:      merge,
		Product:  merge,
		Scaled:   func(a []int, _ field.Element) []int { return a },
	})
}

// replaceSelectors rebuilds e with every selector reference substituted by
// its replacement expression. Each substitution produces a fresh subtree so
// node ownership stays exclusive.
func replaceSelectors(e expr.Expression, replacements []func() expr.Expression) expr.Expression {
	return expr.Evaluate(e, expr.Evaluator[expr.Expression]{
		Constant: func(v field.Element) expr.Expression { return expr.Const(v) },
		Selector: func(s expr.Selector) expr.Expression {
			if replacements[s.Index] == nil {
				panic(fmt.Sprintf("cs: no replacement for %v", s))
			}
			return replacements[s.Index]()
		},
		Fixed:    func(q expr.FixedQuery) expr.Expression { return &q },
		Advice:   func(q expr.AdviceQuery) expr.Expression { return &q },
		Instance: func(q expr.InstanceQuery) expr.Expression { return &q },
		Negated:  expr.Neg,
		Sum:      expr.Add,
		Product: func(a, b expr.Expression) expr.Expression {
			return &expr.Product{Left: a, Right: b}
		},
		Scaled: expr.Scale,
	})
}
