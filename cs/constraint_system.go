// Package cs implements the mutable constraint-system registry of a plonkish
// circuit: columns, selectors, gates, lookup arguments, the permutation
// argument and the global degree bookkeeping.
package cs

import (
	"fmt"

	"github.com/sure2web3/plonkish/expr"
)

// Query is an interned reference to a (column, rotation) pair. A query is
// created once per distinct pair and reused by index thereafter.
type Query struct {
	Column   expr.Column
	Rotation expr.Rotation
}

// ConstraintSystem is the owning registry for a circuit's structure. It is
// populated during the configuration phase and immutable afterwards, except
// for selector compression which rewrites selector references in place.
type ConstraintSystem struct {
	numFixed    int
	numAdvice   int
	numInstance int

	selectors []expr.Selector

	gates   []Gate
	lookups []Lookup

	fixedQueries    []Query
	adviceQueries   []Query
	instanceQueries []Query

	// distinct rotations queried per advice column, drives blinding factors
	numAdviceQueries []int

	permutation Permutation
	constants   []expr.Column

	minimumDegree int
}

// New returns an empty constraint system.
func New() *ConstraintSystem {
	return &ConstraintSystem{}
}

// FixedColumn allocates a new fixed column.
func (cs *ConstraintSystem) FixedColumn() expr.Column {
	c := expr.NewColumn(cs.numFixed, expr.Fixed)
	cs.numFixed++
	return c
}

// AdviceColumn allocates a new advice column.
func (cs *ConstraintSystem) AdviceColumn() expr.Column {
	c := expr.NewColumn(cs.numAdvice, expr.Advice)
	cs.numAdvice++
	cs.numAdviceQueries = append(cs.numAdviceQueries, 0)
	return c
}

// InstanceColumn allocates a new instance column.
func (cs *ConstraintSystem) InstanceColumn() expr.Column {
	c := expr.NewColumn(cs.numInstance, expr.Instance)
	cs.numInstance++
	return c
}

// Selector allocates a new simple selector. Simple selectors may not be
// multiplied together and may not appear in lookup inputs.
func (cs *ConstraintSystem) Selector() expr.Selector {
	s := expr.Selector{Index: len(cs.selectors), Simple: true}
	cs.selectors = append(cs.selectors, s)
	return s
}

// ComplexSelector allocates a new selector free of composability restrictions.
func (cs *ConstraintSystem) ComplexSelector() expr.Selector {
	s := expr.Selector{Index: len(cs.selectors), Simple: false}
	cs.selectors = append(cs.selectors, s)
	return s
}

// EnableEquality adds the column to the permutation argument. Enabling a
// column twice is a no-op.
func (cs *ConstraintSystem) EnableEquality(c expr.Column) {
	cs.permutation.AddColumn(c)
}

// EnableConstant marks a fixed column as usable for global constant
// assignment; this also enables equality on it so constants can be copied
// into constrained cells.
func (cs *ConstraintSystem) EnableConstant(c expr.Column) {
	if c.Kind != expr.Fixed {
		panic(fmt.Sprintf("cs: constants column %v must be fixed", c))
	}
	for _, existing := range cs.constants {
		if existing == c {
			return
		}
	}
	cs.constants = append(cs.constants, c)
	cs.EnableEquality(c)
}

// SetMinimumDegree forces the system degree to be at least d, regardless of
// what the registered arguments require.
func (cs *ConstraintSystem) SetMinimumDegree(d int) {
	if d > cs.minimumDegree {
		cs.minimumDegree = d
	}
}

// QueryFixedIndex interns a query for a fixed column. Fixed values are
// rotation-invariant, so any rotation but zero is a usage error.
func (cs *ConstraintSystem) QueryFixedIndex(c expr.Column, at expr.Rotation) int {
	if c.Kind != expr.Fixed {
		panic(fmt.Sprintf("cs: QueryFixedIndex on %v", c))
	}
	if at != expr.RotationCur {
		panic(fmt.Sprintf("cs: fixed column %v queried at rotation %d", c, at))
	}
	for i, q := range cs.fixedQueries {
		if q.Column == c && q.Rotation == at {
			return i
		}
	}
	cs.fixedQueries = append(cs.fixedQueries, Query{Column: c, Rotation: at})
	return len(cs.fixedQueries) - 1
}

// QueryAdviceIndex interns a query for an advice column at a rotation.
func (cs *ConstraintSystem) QueryAdviceIndex(c expr.Column, at expr.Rotation) int {
	if c.Kind != expr.Advice {
		panic(fmt.Sprintf("cs: QueryAdviceIndex on %v", c))
	}
	for i, q := range cs.adviceQueries {
		if q.Column == c && q.Rotation == at {
			return i
		}
	}
	cs.adviceQueries = append(cs.adviceQueries, Query{Column: c, Rotation: at})
	cs.numAdviceQueries[c.Index]++
	return len(cs.adviceQueries) - 1
}

// QueryInstanceIndex interns a query for an instance column at a rotation.
func (cs *ConstraintSystem) QueryInstanceIndex(c expr.Column, at expr.Rotation) int {
	if c.Kind != expr.Instance {
		panic(fmt.Sprintf("cs: QueryInstanceIndex on %v", c))
	}
	for i, q := range cs.instanceQueries {
		if q.Column == c && q.Rotation == at {
			return i
		}
	}
	cs.instanceQueries = append(cs.instanceQueries, Query{Column: c, Rotation: at})
	return len(cs.instanceQueries) - 1
}

// Degree returns the largest degree required by any registered argument; it
// determines the evaluation-domain size needed downstream.
func (cs *ConstraintSystem) Degree() int {
	deg := cs.permutation.RequiredDegree()
	for i := range cs.lookups {
		if d := cs.lookups[i].RequiredDegree(); d > deg {
			deg = d
		}
	}
	for _, g := range cs.gates {
		for _, p := range g.Polys {
			if d := expr.Degree(p); d > deg {
				deg = d
			}
		}
	}
	if cs.minimumDegree > deg {
		deg = cs.minimumDegree
	}
	return deg
}

// BlindingFactors returns the number of rows reserved at the tail of every
// column to statistically blind the witness polynomials. It grows with the
// number of distinct rotations queried on any single advice column.
func (cs *ConstraintSystem) BlindingFactors() int {
	factors := 1
	for _, c := range cs.numAdviceQueries {
		if c > factors {
			factors = c
		}
	}
	if factors < 3 {
		factors = 3
	}
	// one extra row for the blinding value itself, one for the random
	// polynomial evaluation
	return factors + 2
}

// MinimumRows returns the smallest circuit height that leaves room for the
// blinding rows, the last-row indicator, the permutation boundary and at
// least one usable row.
func (cs *ConstraintSystem) MinimumRows() int {
	return cs.BlindingFactors() + 3
}

// NumFixedColumns returns the number of allocated fixed columns, including
// any columns materialized by selector compression.
func (cs *ConstraintSystem) NumFixedColumns() int { return cs.numFixed }

// NumAdviceColumns returns the number of allocated advice columns.
func (cs *ConstraintSystem) NumAdviceColumns() int { return cs.numAdvice }

// NumInstanceColumns returns the number of allocated instance columns.
func (cs *ConstraintSystem) NumInstanceColumns() int { return cs.numInstance }

// NumSelectors returns the number of allocated selectors.
func (cs *ConstraintSystem) NumSelectors() int { return len(cs.selectors) }

// Gates returns the registered gates.
func (cs *ConstraintSystem) Gates() []Gate { return cs.gates }

// Lookups returns the registered lookup arguments.
func (cs *ConstraintSystem) Lookups() []Lookup { return cs.lookups }

// Constants returns the fixed columns usable for global constant assignment.
func (cs *ConstraintSystem) Constants() []expr.Column { return cs.constants }

// Permutation returns the permutation argument.
func (cs *ConstraintSystem) Permutation() *Permutation { return &cs.permutation }

// FixedQueries returns the interned fixed-column queries.
func (cs *ConstraintSystem) FixedQueries() []Query { return cs.fixedQueries }

// AdviceQueries returns the interned advice-column queries.
func (cs *ConstraintSystem) AdviceQueries() []Query { return cs.adviceQueries }

// InstanceQueries returns the interned instance-column queries.
func (cs *ConstraintSystem) InstanceQueries() []Query { return cs.instanceQueries }
