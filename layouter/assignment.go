// Package layouter turns a circuit description into a concrete placement of
// regions onto the row/column grid. It runs the description twice: a
// measurement pass records the shape of every region without touching any
// value, a planning step packs the shapes into absolute row ranges, and an
// assignment pass replays the description against a real backend, translating
// every relative offset into an absolute row.
package layouter

import (
	"github.com/sure2web3/plonkish/cs"
	"github.com/sure2web3/plonkish/expr"
	"github.com/sure2web3/plonkish/field"
	"github.com/sure2web3/plonkish/witness"
)

// RegionIndex identifies a region by declaration order.
type RegionIndex int

// RegionStart is the absolute row a region was placed at. It is a distinct
// type from RegionIndex so the two can never be mixed arithmetically.
type RegionStart int

// Cell points at a cell of a region, identified by the region, a relative
// row offset and the column.
type Cell struct {
	Region RegionIndex
	Offset int
	Column expr.Column
}

// Assignment is the backend capability set the layouter drives. The no-op
// measurement backend and any real assignment backend both implement it.
type Assignment interface {
	// EnterRegion marks the start of a region. Regions never nest.
	EnterRegion(name string)
	// ExitRegion marks the end of the current region.
	ExitRegion()
	// EnableSelector turns a selector on at the given absolute row.
	EnableSelector(name string, s expr.Selector, row int) error
	// QueryInstance returns the instance value at an absolute row, or an
	// unknown value when the backend has no instance data.
	QueryInstance(c expr.Column, row int) (witness.Value[field.Element], error)
	// AssignAdvice assigns a value to an advice cell. The value closure is
	// only invoked by backends that keep values.
	AssignAdvice(name string, c expr.Column, row int, to func() witness.Value[witness.Assigned]) error
	// AssignFixed assigns a value to a fixed cell.
	AssignFixed(name string, c expr.Column, row int, to func() witness.Value[witness.Assigned]) error
	// Copy constrains two cells to hold equal values.
	Copy(left expr.Column, leftRow int, right expr.Column, rightRow int) error
	// FillFromRow fills the remaining usable rows of a fixed column,
	// starting at row, with the given value.
	FillFromRow(c expr.Column, row int, to witness.Value[witness.Assigned]) error
	// PushNamespace enters a debug-naming scope.
	PushNamespace(name string)
	// PopNamespace exits the innermost debug-naming scope.
	PopNamespace()
}

// Circuit is a circuit description. Configure registers structure on the
// constraint system; Synthesize describes the assignments. Synthesize is run
// once per pass and must touch the same cells every time, which the
// witness.Value contract guarantees as long as values never steer control
// flow.
type Circuit interface {
	Configure(meta *cs.ConstraintSystem)
	Synthesize(l Layouter) error
}

// Layouter is the surface a circuit describes itself against.
type Layouter interface {
	// AssignRegion runs fn against a fresh region and lays it out.
	AssignRegion(name string, fn func(Region) error) error
	// AssignTable runs fn against a lookup-table builder.
	AssignTable(name string, fn func(Table) error) error
	// ConstrainInstance constrains a cell equal to an absolute instance row.
	ConstrainInstance(cell Cell, instance expr.Column, row int) error
	// Namespace enters a debug-naming scope; the returned release function
	// must be called (usually deferred) to exit it on every path.
	Namespace(name string) (Layouter, func())
}

// Region is the relative-offset assignment surface inside AssignRegion.
type Region interface {
	EnableSelector(name string, s expr.Selector, offset int) error
	AssignAdvice(name string, c expr.Column, offset int, to func() witness.Value[witness.Assigned]) (Cell, error)
	AssignAdviceFromConstant(name string, c expr.Column, offset int, constant field.Element) (Cell, error)
	AssignAdviceFromInstance(name string, instance expr.Column, row int, advice expr.Column, offset int) (Cell, error)
	AssignFixed(name string, c expr.Column, offset int, to func() witness.Value[witness.Assigned]) (Cell, error)
	// ConstrainConstant constrains a cell to a global constant; the constant
	// is placed into a constants column once the layout is known.
	ConstrainConstant(cell Cell, constant field.Element) error
	// ConstrainEqual registers a copy constraint between two cells.
	ConstrainEqual(a, b Cell) error
}

// Table is the assignment surface inside AssignTable.
type Table interface {
	AssignCell(name string, col cs.TableColumn, offset int, to func() witness.Value[witness.Assigned]) error
}
