package mock

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sure2web3/plonkish/cs"
	"github.com/sure2web3/plonkish/expr"
	"github.com/sure2web3/plonkish/field"
)

// rotated maps a base row and rotation onto the wrapped row index.
func (p *Prover) rotated(row int, rot expr.Rotation) int {
	return ((row+int(rot))%p.n + p.n) % p.n
}

// evalAt evaluates a gate or lookup polynomial at a row of the captured
// trace. Selector references read the recorded selector activations, so both
// compressed and uncompressed systems evaluate consistently.
func (p *Prover) evalAt(e expr.Expression, row int) field.Element {
	return expr.Evaluate(e, expr.Evaluator[field.Element]{
		Constant: func(v field.Element) field.Element { return v },
		Selector: func(s expr.Selector) field.Element {
			if p.selectors[s.Index][row] {
				return field.One()
			}
			return field.Zero()
		},
		Fixed: func(q expr.FixedQuery) field.Element {
			return p.FixedValue(q.ColumnIndex, p.rotated(row, q.Rotation))
		},
		Advice: func(q expr.AdviceQuery) field.Element {
			return p.AdviceValue(q.ColumnIndex, p.rotated(row, q.Rotation))
		},
		Instance: func(q expr.InstanceQuery) field.Element {
			return p.InstanceValue(q.ColumnIndex, p.rotated(row, q.Rotation))
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
		Scaled: func(v field.Element, c field.Element) field.Element {
			var r field.Element
			r.Mul(&v, &c)
			return r
		},
	})
}

func (p *Prover) valueAt(c expr.Column, row int) field.Element {
	switch c.Kind {
	case expr.Fixed:
		return p.FixedValue(c.Index, row)
	case expr.Advice:
		return p.AdviceValue(c.Index, row)
	case expr.Instance:
		return p.InstanceValue(c.Index, row)
	default:
		panic(fmt.Sprintf("mock: value of erased column %v", c))
	}
}

// Verify checks every gate polynomial, lookup argument and copy constraint
// against the captured trace and returns the accumulated failures.
func (p *Prover) Verify() error {
	var errs []error

	for _, gate := range p.meta.Gates() {
		for pi, poly := range gate.Polys {
			for row := 0; row < p.usable; row++ {
				if v := p.evalAt(poly, row); !v.IsZero() {
					errs = append(errs, fmt.Errorf(
						"mock: gate %q constraint %q not satisfied at row %d (evaluates to %s)",
						gate.Name, gate.ConstraintNames[pi], row, v.String()))
				}
			}
		}
	}

	for i := range p.meta.Lookups() {
		lookup := &p.meta.Lookups()[i]
		table := make(map[string]bool, p.usable)
		for row := 0; row < p.usable; row++ {
			table[p.tableKey(lookup, row)] = true
		}
		for row := 0; row < p.usable; row++ {
			key := p.inputKey(lookup, row)
			if !table[key] {
				errs = append(errs, fmt.Errorf(
					"mock: lookup %q input not found in table at row %d", lookup.Name, row))
			}
		}
	}

	for _, c := range p.copies {
		a := p.valueAt(c.aColumn, c.aRow)
		b := p.valueAt(c.bColumn, c.bRow)
		if !a.Equal(&b) {
			errs = append(errs, fmt.Errorf(
				"mock: copy constraint violated: %v row %d = %s, %v row %d = %s",
				c.aColumn, c.aRow, a.String(), c.bColumn, c.bRow, b.String()))
		}
	}

	return errors.Join(errs...)
}

func (p *Prover) tableKey(l *cs.Lookup, row int) string {
	var b strings.Builder
	for _, t := range l.Tables {
		v := p.FixedValue(t.Inner().Index, row)
		b.WriteString(v.String())
		b.WriteByte('|')
	}
	return b.String()
}

func (p *Prover) inputKey(l *cs.Lookup, row int) string {
	var b strings.Builder
	for _, in := range l.Inputs {
		v := p.evalAt(in, row)
		b.WriteString(v.String())
		b.WriteByte('|')
	}
	return b.String()
}
