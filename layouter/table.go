package layouter

import (
	"fmt"

	"github.com/sure2web3/plonkish/cs"
	"github.com/sure2web3/plonkish/expr"
	"github.com/sure2web3/plonkish/witness"
)

// simpleTable collects one table's explicit assignments. A lookup table must
// end up rectangular, so after the building callback returns, the explicit
// columns are checked for uniform length and padded to the usable height with
// their first explicit value.
type simpleTable struct {
	backend Assignment
	usable  int

	// first explicit value per column, the fill default
	defaults map[expr.Column]witness.Value[witness.Assigned]
	assigned map[expr.Column][]bool
}

func newSimpleTable(backend Assignment, usable int) *simpleTable {
	return &simpleTable{
		backend:  backend,
		usable:   usable,
		defaults: make(map[expr.Column]witness.Value[witness.Assigned]),
		assigned: make(map[expr.Column][]bool),
	}
}

func (t *simpleTable) AssignCell(name string, col cs.TableColumn, offset int, to func() witness.Value[witness.Assigned]) error {
	inner := col.Inner()
	rows := t.assigned[inner]
	if offset < len(rows) && rows[offset] {
		panic(fmt.Sprintf("layouter: table cell %v row %d assigned twice", inner, offset))
	}

	v := to()
	if err := t.backend.AssignFixed(name, inner, offset, func() witness.Value[witness.Assigned] {
		return v
	}); err != nil {
		return err
	}

	if offset == 0 {
		t.defaults[inner] = v
	}
	for len(rows) <= offset {
		rows = append(rows, false)
	}
	rows[offset] = true
	t.assigned[inner] = rows
	return nil
}

// computeTableLengths checks every explicitly assigned column is a gap-free
// prefix of uniform length across the table and returns that length.
func (t *simpleTable) computeTableLengths() (int, error) {
	length := -1
	for col, rows := range t.assigned {
		for offset, ok := range rows {
			if !ok {
				return 0, fmt.Errorf("%w: column %v not assigned at row %d",
					ErrUnevenTableLength, col, offset)
			}
		}
		if length >= 0 && length != len(rows) {
			return 0, fmt.Errorf("%w: column %v has %d rows, another has %d",
				ErrUnevenTableLength, col, len(rows), length)
		}
		length = len(rows)
	}
	return length, nil
}

// finalize pads every explicit column from its assigned length to the usable
// height with the column's first explicit value. Afterwards every column
// reports the full usable height as its length.
func (t *simpleTable) finalize() error {
	if len(t.assigned) == 0 {
		return nil
	}
	length, err := t.computeTableLengths()
	if err != nil {
		return err
	}
	for col, rows := range t.assigned {
		def, ok := t.defaults[col]
		if !ok {
			return fmt.Errorf("%w: column %v has no value at row 0",
				ErrUnevenTableLength, col)
		}
		if err := t.backend.FillFromRow(col, length, def); err != nil {
			return err
		}
		for len(rows) < t.usable {
			rows = append(rows, true)
		}
		t.assigned[col] = rows
	}
	return nil
}
