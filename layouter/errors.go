package layouter

import (
	"errors"
	"fmt"
)

// ErrNotEnoughColumnsForConstants is returned when the constants columns do
// not have enough free rows for every global constant the circuit requested.
var ErrNotEnoughColumnsForConstants = errors.New(
	"layouter: not enough free rows in constants columns")

// ErrUnevenTableLength is returned when the columns of one lookup table
// received explicit assignments of different lengths.
var ErrUnevenTableLength = errors.New("layouter: table columns have uneven lengths")

// NotEnoughRowsError is returned when the planned layout does not fit the
// available rows once the blinding tail is reserved.
type NotEnoughRowsError struct {
	Needed    int
	Available int
}

func (e *NotEnoughRowsError) Error() string {
	return fmt.Sprintf("layouter: %d rows needed, %d available", e.Needed, e.Available)
}
