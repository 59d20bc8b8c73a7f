package cs

import "github.com/sure2web3/plonkish/expr"

// Permutation is the set of equality-enabled columns backing the copy
// constraints of the circuit.
type Permutation struct {
	columns []expr.Column
}

// AddColumn adds a column to the argument; adding it twice is a no-op.
func (p *Permutation) AddColumn(c expr.Column) {
	for _, existing := range p.columns {
		if existing == c {
			return
		}
	}
	p.columns = append(p.columns, c)
}

// Contains reports whether the column participates in the argument.
func (p *Permutation) Contains(c expr.Column) bool {
	for _, existing := range p.columns {
		if existing == c {
			return true
		}
	}
	return false
}

// Columns returns the participating columns in registration order.
func (p *Permutation) Columns() []expr.Column { return p.columns }

// RequiredDegree returns the degree the permutation product rule imposes on
// the system. Columns are split into chunks sized to the available degree, so
// the rule itself needs no more than degree 3.
func (p *Permutation) RequiredDegree() int {
	return 3
}
