package cs

import (
	"fmt"

	"github.com/sure2web3/plonkish/expr"
)

// TableColumn is a fixed column managed as a lookup table. Table columns are
// filled through the table layouter, which pads them to a rectangular set of
// rows, so they must not double as ordinary fixed columns.
type TableColumn struct {
	inner expr.Column
}

// Inner returns the underlying fixed column.
func (t TableColumn) Inner() expr.Column { return t.inner }

// LookupTableColumn allocates a fixed column managed as a lookup table.
func (cs *ConstraintSystem) LookupTableColumn() TableColumn {
	return TableColumn{inner: cs.FixedColumn()}
}

// LookupPair pairs an input expression with the table column its values must
// appear in.
type LookupPair struct {
	Input expr.Expression
	Table TableColumn
}

// Lookup is a registered lookup argument.
type Lookup struct {
	Name   string
	Inputs []expr.Expression
	Tables []TableColumn
}

// RequiredDegree returns the degree the grand-product rule of this lookup
// imposes on the system. Table sides are plain columns, degree 1.
func (l *Lookup) RequiredDegree() int {
	inputDegree := 1
	for _, in := range l.Inputs {
		if d := expr.Degree(in); d > inputDegree {
			inputDegree = d
		}
	}
	return 2 + inputDegree + 1
}

// Lookup registers a lookup argument built by the given function and returns
// its index. Input expressions must not contain simple selectors.
func (cs *ConstraintSystem) Lookup(name string, build func(*VirtualCells) []LookupPair) int {
	cells := &VirtualCells{cs: cs}
	pairs := build(cells)
	inputs := make([]expr.Expression, len(pairs))
	tables := make([]TableColumn, len(pairs))
	for i, p := range pairs {
		if expr.ContainsSimpleSelector(p.Input) {
			panic(fmt.Sprintf("cs: lookup %q input contains a simple selector", name))
		}
		inputs[i] = p.Input
		tables[i] = p.Table
	}
	cs.lookups = append(cs.lookups, Lookup{Name: name, Inputs: inputs, Tables: tables})
	return len(cs.lookups) - 1
}
