package layouter

import (
	"github.com/sure2web3/plonkish/expr"
	"github.com/sure2web3/plonkish/field"
	"github.com/sure2web3/plonkish/witness"
)

// assignRegion replays a region callback against the real backend,
// translating every relative offset into an absolute row using the region's
// planned start.
type assignRegion struct {
	layouter *assignLayouter
	index    RegionIndex
	start    RegionStart
}

func (r *assignRegion) abs(offset int) int {
	return int(r.start) + offset
}

func (r *assignRegion) EnableSelector(name string, s expr.Selector, offset int) error {
	return r.layouter.backend.EnableSelector(name, s, r.abs(offset))
}

func (r *assignRegion) AssignAdvice(name string, c expr.Column, offset int, to func() witness.Value[witness.Assigned]) (Cell, error) {
	if err := r.layouter.backend.AssignAdvice(name, c, r.abs(offset), to); err != nil {
		return Cell{}, err
	}
	return Cell{Region: r.index, Offset: offset, Column: c}, nil
}

func (r *assignRegion) AssignAdviceFromConstant(name string, c expr.Column, offset int, constant field.Element) (Cell, error) {
	cell, err := r.AssignAdvice(name, c, offset, func() witness.Value[witness.Assigned] {
		return witness.Known(witness.Trivial(constant))
	})
	if err != nil {
		return Cell{}, err
	}
	if err := r.ConstrainConstant(cell, constant); err != nil {
		return Cell{}, err
	}
	return cell, nil
}

func (r *assignRegion) AssignAdviceFromInstance(name string, instance expr.Column, row int, advice expr.Column, offset int) (Cell, error) {
	v, err := r.layouter.backend.QueryInstance(instance, row)
	if err != nil {
		return Cell{}, err
	}
	cell, err := r.AssignAdvice(name, advice, offset, func() witness.Value[witness.Assigned] {
		return witness.AsAssigned(v)
	})
	if err != nil {
		return Cell{}, err
	}
	if err := r.layouter.backend.Copy(instance, row, advice, r.abs(offset)); err != nil {
		return Cell{}, err
	}
	return cell, nil
}

func (r *assignRegion) AssignFixed(name string, c expr.Column, offset int, to func() witness.Value[witness.Assigned]) (Cell, error) {
	if err := r.layouter.backend.AssignFixed(name, c, r.abs(offset), to); err != nil {
		return Cell{}, err
	}
	return Cell{Region: r.index, Offset: offset, Column: c}, nil
}

func (r *assignRegion) ConstrainConstant(cell Cell, constant field.Element) error {
	r.layouter.constants = append(r.layouter.constants, constantAssignment{
		value: constant,
		cell:  cell,
	})
	return nil
}

func (r *assignRegion) ConstrainEqual(a, b Cell) error {
	return r.layouter.backend.Copy(
		a.Column, r.layouter.absCell(a),
		b.Column, r.layouter.absCell(b),
	)
}
