// Package expr defines the typed column, selector and query handles of a
// plonkish circuit together with the symbolic expression tree built on top of
// them.
package expr

import "fmt"

// ColumnKind discriminates the three concrete column kinds plus the erased
// Any kind used where columns of mixed kinds are handled uniformly.
type ColumnKind uint8

const (
	// Instance columns hold public inputs known to both parties.
	Instance ColumnKind = iota
	// Advice columns hold private witness values supplied by the prover.
	Advice
	// Fixed columns hold values baked in at configuration time.
	Fixed
	// Any erases the concrete kind.
	Any
)

func (k ColumnKind) String() string {
	switch k {
	case Instance:
		return "instance"
	case Advice:
		return "advice"
	case Fixed:
		return "fixed"
	case Any:
		return "any"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Column is an immutable handle to an allocated column. Two columns are the
// same column iff their kind and index are equal.
type Column struct {
	Index int
	Kind  ColumnKind
}

// NewColumn returns a handle for the given kind and index.
func NewColumn(index int, kind ColumnKind) Column {
	return Column{Index: index, Kind: kind}
}

// AsKind reinterprets the column at the requested kind. Converting to Any
// always succeeds; converting to a concrete kind fails unless it matches.
func (c Column) AsKind(k ColumnKind) (Column, error) {
	if k == Any || c.Kind == k {
		return Column{Index: c.Index, Kind: c.Kind}, nil
	}
	return Column{}, fmt.Errorf("expr: column %v is not %v", c, k)
}

// Cmp orders columns by kind (Instance < Advice < Fixed), then by index.
// The layout planner relies on this order for determinism.
func (c Column) Cmp(o Column) int {
	if c.Kind != o.Kind {
		if c.Kind < o.Kind {
			return -1
		}
		return 1
	}
	if c.Index != o.Index {
		if c.Index < o.Index {
			return -1
		}
		return 1
	}
	return 0
}

func (c Column) String() string {
	return fmt.Sprintf("%v[%d]", c.Kind, c.Index)
}

// Selector is a handle to a virtual per-row boolean flag. Simple selectors
// have restricted composability: they may not be multiplied together and may
// not feed lookup inputs. Selectors stay virtual until the constraint system
// compresses them into fixed columns.
type Selector struct {
	Index  int
	Simple bool
}

func (s Selector) String() string {
	if s.Simple {
		return fmt.Sprintf("selector[%d]", s.Index)
	}
	return fmt.Sprintf("complex_selector[%d]", s.Index)
}

// Rotation is a signed row offset relative to a region-local position.
type Rotation int32

// Common rotations.
const (
	RotationPrev Rotation = -1
	RotationCur  Rotation = 0
	RotationNext Rotation = 1
)
