package layouter

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sure2web3/plonkish/cs"
	"github.com/sure2web3/plonkish/expr"
	"github.com/sure2web3/plonkish/field"
	"github.com/sure2web3/plonkish/logger"
	"github.com/sure2web3/plonkish/witness"
)

// Option configures a synthesis run.
type Option func(*options)

type options struct {
	log zerolog.Logger
}

// WithLogger routes synthesis progress logging to l instead of the package
// logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// constantAssignment is a pending global constant: the value and the cell it
// must be copied into once the constant gets a home in a constants column.
type constantAssignment struct {
	value field.Element
	cell  Cell
}

// assignLayouter replays the circuit description against a real backend
// using the planned region starts.
type assignLayouter struct {
	backend Assignment
	meta    *cs.ConstraintSystem
	starts  []RegionStart
	usable  int

	nextRegion RegionIndex
	constants  []constantAssignment

	// table columns already owned by an earlier table
	usedTableColumns map[expr.Column]bool
}

func (l *assignLayouter) absCell(c Cell) int {
	return int(l.starts[c.Region]) + c.Offset
}

func (l *assignLayouter) AssignRegion(name string, fn func(Region) error) error {
	idx := l.nextRegion
	l.nextRegion++
	if int(idx) >= len(l.starts) {
		panic(fmt.Sprintf("layouter: region %q was not measured", name))
	}
	l.backend.EnterRegion(name)
	err := fn(&assignRegion{layouter: l, index: idx, start: l.starts[idx]})
	l.backend.ExitRegion()
	return err
}

func (l *assignLayouter) AssignTable(name string, fn func(Table) error) error {
	table := newSimpleTable(l.backend, l.usable)
	l.backend.EnterRegion(name)
	err := fn(table)
	l.backend.ExitRegion()
	if err != nil {
		return err
	}
	for col := range table.assigned {
		if l.usedTableColumns[col] {
			panic(fmt.Sprintf("layouter: table column %v used by two tables", col))
		}
		l.usedTableColumns[col] = true
	}
	return table.finalize()
}

func (l *assignLayouter) ConstrainInstance(cell Cell, instance expr.Column, row int) error {
	return l.backend.Copy(cell.Column, l.absCell(cell), instance, row)
}

func (l *assignLayouter) Namespace(name string) (Layouter, func()) {
	l.backend.PushNamespace(name)
	return l, l.backend.PopNamespace
}

// assignConstants places every collected global constant into a free row of
// a constants column, then copies it into the constrained cell.
func (l *assignLayouter) assignConstants(allocs *Allocations) error {
	if len(l.constants) == 0 {
		return nil
	}
	columns := l.meta.Constants()
	if len(columns) == 0 {
		return ErrNotEnoughColumnsForConstants
	}
	next := 0
	for _, col := range columns {
		for _, free := range allocs.FreeIntervals(ColumnResource(col), 0, l.usable) {
			for row := free.Start; row < free.End && next < len(l.constants); row++ {
				c := l.constants[next]
				next++
				value := c.value
				if err := l.backend.AssignFixed("constant", col, row, func() witness.Value[witness.Assigned] {
					return witness.Known(witness.Trivial(value))
				}); err != nil {
					return err
				}
				if err := l.backend.Copy(col, row, c.cell.Column, l.absCell(c.cell)); err != nil {
					return err
				}
			}
		}
	}
	if next < len(l.constants) {
		return ErrNotEnoughColumnsForConstants
	}
	return nil
}

// Synthesize lays the circuit out onto n rows of the backend: the
// description is run once against a no-op backend to measure region shapes,
// the shapes are packed into absolute row ranges, and the description is run
// again for real with every relative offset translated. Table columns are
// padded to the usable height and global constants are placed into the free
// rows of the constants columns.
func Synthesize(n int, meta *cs.ConstraintSystem, circuit Circuit, backend Assignment, opts ...Option) error {
	o := options{log: logger.Logger()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log

	usable := n - (meta.BlindingFactors() + 1)
	if usable <= 0 {
		return &NotEnoughRowsError{Needed: meta.MinimumRows(), Available: n}
	}

	measure := &measureLayouter{}
	if err := circuit.Synthesize(measure); err != nil {
		return err
	}

	starts, allocs := Plan(measure.shapes)
	if rows := allocs.RowCount(); rows > usable {
		return &NotEnoughRowsError{
			Needed:    rows + meta.BlindingFactors() + 1,
			Available: n,
		}
	}
	log.Debug().
		Int("regions", len(measure.shapes)).
		Int("rows", allocs.RowCount()).
		Int("usable", usable).
		Msg("planned layout")

	assign := &assignLayouter{
		backend:          backend,
		meta:             meta,
		starts:           starts,
		usable:           usable,
		usedTableColumns: make(map[expr.Column]bool),
	}
	if err := circuit.Synthesize(assign); err != nil {
		return err
	}
	if err := assign.assignConstants(allocs); err != nil {
		return err
	}
	log.Debug().
		Int("constants", len(assign.constants)).
		Msg("synthesis complete")
	return nil
}
