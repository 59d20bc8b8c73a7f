package layouter

import (
	"github.com/sure2web3/plonkish/expr"
	"github.com/sure2web3/plonkish/field"
	"github.com/sure2web3/plonkish/witness"
)

// RegionColumn is the resource a region occupies rows of: either a concrete
// column or a virtual selector. Selectors form their own conflict domain;
// they are materialized into brand-new fixed columns after layout, so they
// never collide with concrete fixed-column allocations.
type RegionColumn struct {
	column   expr.Column
	selector expr.Selector
	virtual  bool
}

// ColumnResource keys a concrete column.
func ColumnResource(c expr.Column) RegionColumn {
	return RegionColumn{column: c}
}

// SelectorResource keys a virtual selector.
func SelectorResource(s expr.Selector) RegionColumn {
	return RegionColumn{selector: s, virtual: true}
}

// IsAdvice reports whether the resource is an advice column.
func (rc RegionColumn) IsAdvice() bool {
	return !rc.virtual && rc.column.Kind == expr.Advice
}

// RegionShape is the column footprint and row count of one region, produced
// by the measurement pass and consumed by the planner.
type RegionShape struct {
	Region   RegionIndex
	Columns  map[RegionColumn]struct{}
	RowCount int
}

// NewRegionShape returns an empty shape for the given region.
func NewRegionShape(idx RegionIndex) *RegionShape {
	return &RegionShape{Region: idx, Columns: make(map[RegionColumn]struct{})}
}

// AdviceArea is the planner's primary sort key: advice columns touched times
// rows spanned.
func (s *RegionShape) AdviceArea() int {
	advice := 0
	for rc := range s.Columns {
		if rc.IsAdvice() {
			advice++
		}
	}
	return advice * s.RowCount
}

func (s *RegionShape) mark(rc RegionColumn, offset int) {
	s.Columns[rc] = struct{}{}
	if offset+1 > s.RowCount {
		s.RowCount = offset + 1
	}
}

// shapeRegion records the footprint of a region-building callback without
// touching any value.
type shapeRegion struct {
	shape *RegionShape
}

func (r *shapeRegion) EnableSelector(_ string, s expr.Selector, offset int) error {
	r.shape.mark(SelectorResource(s), offset)
	return nil
}

func (r *shapeRegion) AssignAdvice(_ string, c expr.Column, offset int, _ func() witness.Value[witness.Assigned]) (Cell, error) {
	r.shape.mark(ColumnResource(c), offset)
	return Cell{Region: r.shape.Region, Offset: offset, Column: c}, nil
}

func (r *shapeRegion) AssignAdviceFromConstant(name string, c expr.Column, offset int, _ field.Element) (Cell, error) {
	return r.AssignAdvice(name, c, offset, nil)
}

func (r *shapeRegion) AssignAdviceFromInstance(_ string, _ expr.Column, _ int, advice expr.Column, offset int) (Cell, error) {
	r.shape.mark(ColumnResource(advice), offset)
	return Cell{Region: r.shape.Region, Offset: offset, Column: advice}, nil
}

func (r *shapeRegion) AssignFixed(_ string, c expr.Column, offset int, _ func() witness.Value[witness.Assigned]) (Cell, error) {
	r.shape.mark(ColumnResource(c), offset)
	return Cell{Region: r.shape.Region, Offset: offset, Column: c}, nil
}

func (r *shapeRegion) ConstrainConstant(Cell, field.Element) error { return nil }

func (r *shapeRegion) ConstrainEqual(Cell, Cell) error { return nil }

// measureLayouter collects region shapes; table assignments are ignored in
// this pass.
type measureLayouter struct {
	shapes []*RegionShape
}

func (l *measureLayouter) AssignRegion(_ string, fn func(Region) error) error {
	shape := NewRegionShape(RegionIndex(len(l.shapes)))
	l.shapes = append(l.shapes, shape)
	return fn(&shapeRegion{shape: shape})
}

func (l *measureLayouter) AssignTable(string, func(Table) error) error { return nil }

func (l *measureLayouter) ConstrainInstance(Cell, expr.Column, int) error { return nil }

func (l *measureLayouter) Namespace(string) (Layouter, func()) {
	return l, func() {}
}
