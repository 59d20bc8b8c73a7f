package cs

import (
	"fmt"

	"github.com/sure2web3/plonkish/expr"
)

// VirtualCell is a (column, rotation) pair touched by a gate.
type VirtualCell struct {
	Column   expr.Column
	Rotation expr.Rotation
}

// Constraint is a named polynomial that must evaluate to zero wherever the
// gate is active.
type Constraint struct {
	Name string
	Poly expr.Expression
}

// Gate is a named group of polynomial constraints plus the record of every
// selector and cell its construction queried.
type Gate struct {
	Name             string
	ConstraintNames  []string
	Polys            []expr.Expression
	QueriedSelectors []expr.Selector
	QueriedCells     []VirtualCell
}

// VirtualCells is the query-recording context handed to gate and lookup
// builders. It interns every query through the constraint system and keeps
// the list of touched selectors and cells for later shape analysis.
type VirtualCells struct {
	cs               *ConstraintSystem
	queriedSelectors []expr.Selector
	queriedCells     []VirtualCell
}

// QuerySelector references a selector in the gate under construction.
func (v *VirtualCells) QuerySelector(s expr.Selector) expr.Expression {
	v.queriedSelectors = append(v.queriedSelectors, s)
	return &expr.SelectorRef{Selector: s}
}

// QueryFixed references a fixed column; fixed queries only exist at the
// zero rotation.
func (v *VirtualCells) QueryFixed(c expr.Column, at expr.Rotation) expr.Expression {
	idx := v.cs.QueryFixedIndex(c, at)
	v.queriedCells = append(v.queriedCells, VirtualCell{Column: c, Rotation: at})
	return &expr.FixedQuery{QueryIndex: idx, ColumnIndex: c.Index, Rotation: at}
}

// QueryAdvice references an advice column at a rotation.
func (v *VirtualCells) QueryAdvice(c expr.Column, at expr.Rotation) expr.Expression {
	idx := v.cs.QueryAdviceIndex(c, at)
	v.queriedCells = append(v.queriedCells, VirtualCell{Column: c, Rotation: at})
	return &expr.AdviceQuery{QueryIndex: idx, ColumnIndex: c.Index, Rotation: at}
}

// QueryInstance references an instance column at a rotation.
func (v *VirtualCells) QueryInstance(c expr.Column, at expr.Rotation) expr.Expression {
	idx := v.cs.QueryInstanceIndex(c, at)
	v.queriedCells = append(v.queriedCells, VirtualCell{Column: c, Rotation: at})
	return &expr.InstanceQuery{QueryIndex: idx, ColumnIndex: c.Index, Rotation: at}
}

// QueryAny references a column of any concrete kind.
func (v *VirtualCells) QueryAny(c expr.Column, at expr.Rotation) expr.Expression {
	switch c.Kind {
	case expr.Fixed:
		return v.QueryFixed(c, at)
	case expr.Advice:
		return v.QueryAdvice(c, at)
	case expr.Instance:
		return v.QueryInstance(c, at)
	default:
		panic(fmt.Sprintf("cs: QueryAny on erased column %v", c))
	}
}

// CreateGate registers a gate built by the given function. The function
// receives a query-recording context and returns the gate's constraints; a
// gate with zero constraints is a programmer error and panics.
func (cs *ConstraintSystem) CreateGate(name string, build func(*VirtualCells) []Constraint) {
	cells := &VirtualCells{cs: cs}
	constraints := build(cells)
	if len(constraints) == 0 {
		panic(fmt.Sprintf("cs: gate %q must contain at least one constraint", name))
	}
	names := make([]string, len(constraints))
	polys := make([]expr.Expression, len(constraints))
	for i, c := range constraints {
		names[i] = c.Name
		polys[i] = c.Poly
	}
	cs.gates = append(cs.gates, Gate{
		Name:             name,
		ConstraintNames:  names,
		Polys:            polys,
		QueriedSelectors: cells.queriedSelectors,
		QueriedCells:     cells.queriedCells,
	})
}
