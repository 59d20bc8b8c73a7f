package cs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/sure2web3/plonkish/expr"
	"github.com/sure2web3/plonkish/field"
)

// Node is a serializable form of one expression-tree node.
type Node struct {
	Op          uint8         `cbor:"1,keyasint"`
	Value       field.Element `cbor:"2,keyasint,omitempty"`
	QueryIndex  int           `cbor:"3,keyasint,omitempty"`
	ColumnIndex int           `cbor:"4,keyasint,omitempty"`
	Rotation    int32         `cbor:"5,keyasint,omitempty"`
	Simple      bool          `cbor:"6,keyasint,omitempty"`
	Children    []Node        `cbor:"7,keyasint,omitempty"`
}

// Node ops.
const (
	OpConstant uint8 = iota
	OpSelector
	OpFixed
	OpAdvice
	OpInstance
	OpNegated
	OpSum
	OpProduct
	OpScaled
)

// ColumnRef is a serializable column handle.
type ColumnRef struct {
	Index int   `cbor:"1,keyasint"`
	Kind  uint8 `cbor:"2,keyasint"`
}

// QueryRef is a serializable interned query.
type QueryRef struct {
	Column   ColumnRef `cbor:"1,keyasint"`
	Rotation int32     `cbor:"2,keyasint"`
}

// GateSnapshot is the serializable form of one gate.
type GateSnapshot struct {
	Name            string   `cbor:"1,keyasint"`
	ConstraintNames []string `cbor:"2,keyasint"`
	Polys           []Node   `cbor:"3,keyasint"`
}

// LookupSnapshot is the serializable form of one lookup argument.
type LookupSnapshot struct {
	Name         string `cbor:"1,keyasint"`
	Inputs       []Node `cbor:"2,keyasint"`
	TableColumns []int  `cbor:"3,keyasint"`
}

// Snapshot is the finalized constraint-system view handed to the prover and
// verifier: column counts, gate polynomials, query lists, the permutation and
// lookup arguments, and the derived size parameters.
type Snapshot struct {
	NumFixedColumns    int `cbor:"1,keyasint"`
	NumAdviceColumns   int `cbor:"2,keyasint"`
	NumInstanceColumns int `cbor:"3,keyasint"`
	NumSelectors       int `cbor:"4,keyasint"`

	Gates   []GateSnapshot   `cbor:"5,keyasint"`
	Lookups []LookupSnapshot `cbor:"6,keyasint"`

	FixedQueries    []QueryRef `cbor:"7,keyasint"`
	AdviceQueries   []QueryRef `cbor:"8,keyasint"`
	InstanceQueries []QueryRef `cbor:"9,keyasint"`

	PermutationColumns []ColumnRef `cbor:"10,keyasint"`
	ConstantsColumns   []ColumnRef `cbor:"11,keyasint"`

	Degree          int `cbor:"12,keyasint"`
	BlindingFactors int `cbor:"13,keyasint"`
	MinimumRows     int `cbor:"14,keyasint"`
}

// Snapshot freezes the current system state into its boundary form.
func (cs *ConstraintSystem) Snapshot() *Snapshot {
	s := &Snapshot{
		NumFixedColumns:    cs.numFixed,
		NumAdviceColumns:   cs.numAdvice,
		NumInstanceColumns: cs.numInstance,
		NumSelectors:       len(cs.selectors),
		Degree:             cs.Degree(),
		BlindingFactors:    cs.BlindingFactors(),
		MinimumRows:        cs.MinimumRows(),
	}
	for _, g := range cs.gates {
		gs := GateSnapshot{Name: g.Name, ConstraintNames: g.ConstraintNames}
		for _, p := range g.Polys {
			gs.Polys = append(gs.Polys, ExpressionNode(p))
		}
		s.Gates = append(s.Gates, gs)
	}
	for i := range cs.lookups {
		l := &cs.lookups[i]
		ls := LookupSnapshot{Name: l.Name}
		for _, in := range l.Inputs {
			ls.Inputs = append(ls.Inputs, ExpressionNode(in))
		}
		for _, t := range l.Tables {
			ls.TableColumns = append(ls.TableColumns, t.Inner().Index)
		}
		s.Lookups = append(s.Lookups, ls)
	}
	s.FixedQueries = queryRefs(cs.fixedQueries)
	s.AdviceQueries = queryRefs(cs.adviceQueries)
	s.InstanceQueries = queryRefs(cs.instanceQueries)
	for _, c := range cs.permutation.columns {
		s.PermutationColumns = append(s.PermutationColumns, columnRef(c))
	}
	for _, c := range cs.constants {
		s.ConstantsColumns = append(s.ConstantsColumns, columnRef(c))
	}
	return s
}

// Identifier returns a stable structural fingerprint of the system: column
// counts, gate polynomials, lookup arguments and the permutation column set,
// hashed in registration order. Two systems built by the same configuration
// code produce the same identifier.
func (cs *ConstraintSystem) Identifier() string {
	h := sha256.New()
	fmt.Fprintf(h, "f%d a%d i%d s%d;", cs.numFixed, cs.numAdvice, cs.numInstance, len(cs.selectors))
	for _, g := range cs.gates {
		for _, p := range g.Polys {
			io.WriteString(h, expr.Identifier(p))
			io.WriteString(h, ";")
		}
	}
	for i := range cs.lookups {
		l := &cs.lookups[i]
		for _, in := range l.Inputs {
			io.WriteString(h, expr.Identifier(in))
		}
		for _, t := range l.Tables {
			fmt.Fprintf(h, "t%d", t.Inner().Index)
		}
		io.WriteString(h, ";")
	}
	for _, c := range cs.permutation.columns {
		io.WriteString(h, c.String())
	}
	return hex.EncodeToString(h.Sum(nil))
}

func columnRef(c expr.Column) ColumnRef {
	return ColumnRef{Index: c.Index, Kind: uint8(c.Kind)}
}

func queryRefs(qs []Query) []QueryRef {
	refs := make([]QueryRef, len(qs))
	for i, q := range qs {
		refs[i] = QueryRef{Column: columnRef(q.Column), Rotation: int32(q.Rotation)}
	}
	return refs
}

// ExpressionNode flattens an expression tree into its serializable form.
func ExpressionNode(e expr.Expression) Node {
	return expr.Evaluate(e, expr.Evaluator[Node]{
		Constant: func(v field.Element) Node {
			return Node{Op: OpConstant, Value: v}
		},
		Selector: func(s expr.Selector) Node {
			return Node{Op: OpSelector, QueryIndex: s.Index, Simple: s.Simple}
		},
		Fixed: func(q expr.FixedQuery) Node {
			return Node{Op: OpFixed, QueryIndex: q.QueryIndex, ColumnIndex: q.ColumnIndex, Rotation: int32(q.Rotation)}
		},
		Advice: func(q expr.AdviceQuery) Node {
			return Node{Op: OpAdvice, QueryIndex: q.QueryIndex, ColumnIndex: q.ColumnIndex, Rotation: int32(q.Rotation)}
		},
		Instance: func(q expr.InstanceQuery) Node {
			return Node{Op: OpInstance, QueryIndex: q.QueryIndex, ColumnIndex: q.ColumnIndex, Rotation: int32(q.Rotation)}
		},
		Negated: func(c Node) Node {
			return Node{Op: OpNegated, Children: []Node{c}}
		},
		Sum: func(a, b Node) Node {
			return Node{Op: OpSum, Children: []Node{a, b}}
		},
		Product: func(a, b Node) Node {
			return Node{Op: OpProduct, Children: []Node{a, b}}
		},
		Scaled: func(c Node, v field.Element) Node {
			return Node{Op: OpScaled, Value: v, Children: []Node{c}}
		},
	})
}

// NodeExpression rebuilds an expression tree from its serialized form.
func NodeExpression(n Node) (expr.Expression, error) {
	children := make([]expr.Expression, len(n.Children))
	for i, c := range n.Children {
		child, err := NodeExpression(c)
		if err != nil {
			return nil, err
		}
		children[i] = child
	}
	switch n.Op {
	case OpConstant:
		return expr.Const(n.Value), nil
	case OpSelector:
		return &expr.SelectorRef{Selector: expr.Selector{Index: n.QueryIndex, Simple: n.Simple}}, nil
	case OpFixed:
		return &expr.FixedQuery{QueryIndex: n.QueryIndex, ColumnIndex: n.ColumnIndex, Rotation: expr.Rotation(n.Rotation)}, nil
	case OpAdvice:
		return &expr.AdviceQuery{QueryIndex: n.QueryIndex, ColumnIndex: n.ColumnIndex, Rotation: expr.Rotation(n.Rotation)}, nil
	case OpInstance:
		return &expr.InstanceQuery{QueryIndex: n.QueryIndex, ColumnIndex: n.ColumnIndex, Rotation: expr.Rotation(n.Rotation)}, nil
	case OpNegated:
		if len(children) != 1 {
			return nil, fmt.Errorf("cs: negated node with %d children", len(children))
		}
		return &expr.Negated{Child: children[0]}, nil
	case OpSum:
		if len(children) != 2 {
			return nil, fmt.Errorf("cs: sum node with %d children", len(children))
		}
		return &expr.Sum{Left: children[0], Right: children[1]}, nil
	case OpProduct:
		if len(children) != 2 {
			return nil, fmt.Errorf("cs: product node with %d children", len(children))
		}
		return &expr.Product{Left: children[0], Right: children[1]}, nil
	case OpScaled:
		if len(children) != 1 {
			return nil, fmt.Errorf("cs: scaled node with %d children", len(children))
		}
		return &expr.Scaled{Child: children[0], Scalar: n.Value}, nil
	default:
		return nil, fmt.Errorf("cs: unknown node op %d", n.Op)
	}
}

// WriteTo serializes the snapshot with deterministic cbor encoding.
func (s *Snapshot) WriteTo(w io.Writer) (int64, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return 0, err
	}
	buf, err := em.Marshal(s)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// ReadFrom deserializes a snapshot written by WriteTo.
func (s *Snapshot) ReadFrom(r io.Reader) (int64, error) {
	dec := cbor.NewDecoder(r)
	if err := dec.Decode(s); err != nil {
		return int64(dec.NumBytesRead()), err
	}
	return int64(dec.NumBytesRead()), nil
}
