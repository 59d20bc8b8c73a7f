// Package mock runs a circuit against an in-memory assignment backend and
// checks the captured trace against the circuit's own constraints. It stands
// in for the real prover during development and testing.
package mock

import (
	"fmt"

	"github.com/sure2web3/plonkish/cs"
	"github.com/sure2web3/plonkish/expr"
	"github.com/sure2web3/plonkish/field"
	"github.com/sure2web3/plonkish/layouter"
	"github.com/sure2web3/plonkish/witness"
)

// cellValue distinguishes a cell that was never assigned from one holding a
// (possibly zero) field element.
type cellValue struct {
	assigned bool
	value    field.Element
}

// copyConstraint records one copy between two absolute cells.
type copyConstraint struct {
	aColumn expr.Column
	aRow    int
	bColumn expr.Column
	bRow    int
}

// Prover captures a full concrete assignment of a circuit.
type Prover struct {
	n      int
	usable int
	meta   *cs.ConstraintSystem

	fixed    [][]cellValue
	advice   [][]cellValue
	instance [][]field.Element

	selectors [][]bool
	copies    []copyConstraint

	currentRegion string
	namespaces    []string
}

// Option configures a mock run.
type Option func(*config)

type config struct {
	compress bool
	layout   []layouter.Option
}

// WithoutSelectorCompression keeps the virtual selectors symbolic instead of
// packing them into fixed columns. Useful when inspecting the system as the
// circuit declared it.
func WithoutSelectorCompression() Option {
	return func(c *config) { c.compress = false }
}

// WithLayoutOptions forwards options to the synthesis driver.
func WithLayoutOptions(opts ...layouter.Option) Option {
	return func(c *config) { c.layout = append(c.layout, opts...) }
}

// Run configures the circuit, synthesizes it onto 2^k rows, compresses its
// selectors into fixed columns and returns the captured assignment.
func Run(k uint32, circuit layouter.Circuit, instance [][]field.Element, opts ...Option) (*Prover, error) {
	cfg := config{compress: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	meta := cs.New()
	circuit.Configure(meta)

	n := 1 << k
	if n < meta.MinimumRows() {
		return nil, &layouter.NotEnoughRowsError{Needed: meta.MinimumRows(), Available: n}
	}
	if len(instance) != meta.NumInstanceColumns() {
		return nil, fmt.Errorf("mock: %d instance columns provided, circuit has %d",
			len(instance), meta.NumInstanceColumns())
	}
	for i, col := range instance {
		if len(col) > n {
			return nil, fmt.Errorf("mock: instance column %d has %d rows, circuit has %d",
				i, len(col), n)
		}
	}

	p := &Prover{
		n:        n,
		usable:   n - (meta.BlindingFactors() + 1),
		meta:     meta,
		instance: instance,
	}
	p.selectors = make([][]bool, meta.NumSelectors())
	for i := range p.selectors {
		p.selectors[i] = make([]bool, n)
	}

	if err := layouter.Synthesize(n, meta, circuit, p, cfg.layout...); err != nil {
		return nil, err
	}

	if cfg.compress {
		// materialize the virtual selectors
		base := meta.NumFixedColumns()
		polys := meta.CompressSelectors(p.selectors)
		for i, poly := range polys {
			for row, v := range poly {
				*p.fixedCell(base+i, row) = cellValue{assigned: true, value: v}
			}
		}
	}
	return p, nil
}

func grow(cells *[][]cellValue, col, row, n int) *cellValue {
	for len(*cells) <= col {
		*cells = append(*cells, make([]cellValue, n))
	}
	return &(*cells)[col][row]
}

func (p *Prover) fixedCell(col, row int) *cellValue {
	return grow(&p.fixed, col, row, p.n)
}

func (p *Prover) adviceCell(col, row int) *cellValue {
	return grow(&p.advice, col, row, p.n)
}

// FixedValue returns the value of a fixed cell; unassigned cells read zero.
func (p *Prover) FixedValue(col, row int) field.Element {
	if col < len(p.fixed) {
		return p.fixed[col][row].value
	}
	return field.Zero()
}

// AdviceValue returns the value of an advice cell; unassigned cells read zero.
func (p *Prover) AdviceValue(col, row int) field.Element {
	if col < len(p.advice) {
		return p.advice[col][row].value
	}
	return field.Zero()
}

// InstanceValue returns the value of an instance cell; rows past the provided
// data read zero.
func (p *Prover) InstanceValue(col, row int) field.Element {
	if col < len(p.instance) && row < len(p.instance[col]) {
		return p.instance[col][row]
	}
	return field.Zero()
}

// ConstraintSystem returns the configured (and selector-compressed) system.
func (p *Prover) ConstraintSystem() *cs.ConstraintSystem { return p.meta }

// UsableRows returns the rows not reserved for blinding.
func (p *Prover) UsableRows() int { return p.usable }

// EnterRegion implements layouter.Assignment.
func (p *Prover) EnterRegion(name string) { p.currentRegion = name }

// ExitRegion implements layouter.Assignment.
func (p *Prover) ExitRegion() { p.currentRegion = "" }

// EnableSelector implements layouter.Assignment.
func (p *Prover) EnableSelector(name string, s expr.Selector, row int) error {
	if row >= p.usable {
		return fmt.Errorf("mock: selector %q at row %d exceeds usable rows %d", name, row, p.usable)
	}
	p.selectors[s.Index][row] = true
	return nil
}

// QueryInstance implements layouter.Assignment.
func (p *Prover) QueryInstance(c expr.Column, row int) (witness.Value[field.Element], error) {
	if c.Kind != expr.Instance {
		panic(fmt.Sprintf("mock: QueryInstance on %v", c))
	}
	if row >= p.n {
		return witness.Unknown[field.Element](), fmt.Errorf("mock: instance row %d out of range", row)
	}
	return witness.Known(p.InstanceValue(c.Index, row)), nil
}

// AssignAdvice implements layouter.Assignment.
func (p *Prover) AssignAdvice(name string, c expr.Column, row int, to func() witness.Value[witness.Assigned]) error {
	if c.Kind != expr.Advice {
		panic(fmt.Sprintf("mock: AssignAdvice on %v", c))
	}
	if row >= p.usable {
		return fmt.Errorf("mock: advice %q at row %d exceeds usable rows %d", name, row, p.usable)
	}
	v, err := to().Unwrap()
	if err != nil {
		return fmt.Errorf("mock: advice %q (%v, row %d) in region %q: %w",
			name, c, row, p.currentRegion, err)
	}
	*p.adviceCell(c.Index, row) = cellValue{assigned: true, value: v.Evaluate()}
	return nil
}

// AssignFixed implements layouter.Assignment.
func (p *Prover) AssignFixed(name string, c expr.Column, row int, to func() witness.Value[witness.Assigned]) error {
	if c.Kind != expr.Fixed {
		panic(fmt.Sprintf("mock: AssignFixed on %v", c))
	}
	if row >= p.usable {
		return fmt.Errorf("mock: fixed %q at row %d exceeds usable rows %d", name, row, p.usable)
	}
	v, err := to().Unwrap()
	if err != nil {
		return fmt.Errorf("mock: fixed %q (%v, row %d) in region %q: %w",
			name, c, row, p.currentRegion, err)
	}
	*p.fixedCell(c.Index, row) = cellValue{assigned: true, value: v.Evaluate()}
	return nil
}

// Copy implements layouter.Assignment.
func (p *Prover) Copy(left expr.Column, leftRow int, right expr.Column, rightRow int) error {
	if !p.meta.Permutation().Contains(left) {
		panic(fmt.Sprintf("mock: column %v not in permutation argument", left))
	}
	if !p.meta.Permutation().Contains(right) {
		panic(fmt.Sprintf("mock: column %v not in permutation argument", right))
	}
	p.copies = append(p.copies, copyConstraint{
		aColumn: left, aRow: leftRow,
		bColumn: right, bRow: rightRow,
	})
	return nil
}

// FillFromRow implements layouter.Assignment.
func (p *Prover) FillFromRow(c expr.Column, row int, to witness.Value[witness.Assigned]) error {
	if c.Kind != expr.Fixed {
		panic(fmt.Sprintf("mock: FillFromRow on %v", c))
	}
	v, err := to.Unwrap()
	if err != nil {
		return fmt.Errorf("mock: fill of %v from row %d: %w", c, row, err)
	}
	val := v.Evaluate()
	for r := row; r < p.usable; r++ {
		cell := p.fixedCell(c.Index, r)
		if !cell.assigned {
			*cell = cellValue{assigned: true, value: val}
		}
	}
	return nil
}

// PushNamespace implements layouter.Assignment.
func (p *Prover) PushNamespace(name string) {
	p.namespaces = append(p.namespaces, name)
}

// PopNamespace implements layouter.Assignment.
func (p *Prover) PopNamespace() {
	if len(p.namespaces) == 0 {
		panic("mock: namespace pop without push")
	}
	p.namespaces = p.namespaces[:len(p.namespaces)-1]
}
