package expr

import (
	"fmt"

	"github.com/sure2web3/plonkish/field"
)

// Expression is a node of the symbolic polynomial tree over column queries and
// selectors. Trees are built bottom-up through the constructors below and are
// never mutated afterwards; composite nodes exclusively own their children.
type Expression interface {
	isExpression()
}

// Constant is a literal field element.
type Constant struct {
	Value field.Element
}

// SelectorRef references a virtual selector. It is replaced by a FixedQuery
// when selectors are compressed.
type SelectorRef struct {
	Selector Selector
}

// FixedQuery references a fixed column. Fixed values are rotation-invariant,
// so only the zero rotation is ever issued.
type FixedQuery struct {
	QueryIndex  int
	ColumnIndex int
	Rotation    Rotation
}

// AdviceQuery references an advice column at a rotation.
type AdviceQuery struct {
	QueryIndex  int
	ColumnIndex int
	Rotation    Rotation
}

// InstanceQuery references an instance column at a rotation.
type InstanceQuery struct {
	QueryIndex  int
	ColumnIndex int
	Rotation    Rotation
}

// Negated is the additive inverse of its child.
type Negated struct {
	Child Expression
}

// Sum is the sum of its children.
type Sum struct {
	Left, Right Expression
}

// Product is the product of its children.
type Product struct {
	Left, Right Expression
}

// Scaled is its child multiplied by a constant.
type Scaled struct {
	Child  Expression
	Scalar field.Element
}

func (*Constant) isExpression()      {}
func (*SelectorRef) isExpression()   {}
func (*FixedQuery) isExpression()    {}
func (*AdviceQuery) isExpression()   {}
func (*InstanceQuery) isExpression() {}
func (*Negated) isExpression()       {}
func (*Sum) isExpression()           {}
func (*Product) isExpression()       {}
func (*Scaled) isExpression()        {}

// Evaluator supplies one handler per expression variant; composite handlers
// combine the results of evaluating the children.
type Evaluator[T any] struct {
	Constant func(field.Element) T
	Selector func(Selector) T
	Fixed    func(FixedQuery) T
	Advice   func(AdviceQuery) T
	Instance func(InstanceQuery) T
	Negated  func(T) T
	Sum      func(T, T) T
	Product  func(T, T) T
	Scaled   func(T, field.Element) T
}

// Evaluate folds the expression tree with the given handlers. Every derived
// operation on expressions is implemented through this single traversal.
func Evaluate[T any](e Expression, ev Evaluator[T]) T {
	switch n := e.(type) {
	case *Constant:
		return ev.Constant(n.Value)
	case *SelectorRef:
		return ev.Selector(n.Selector)
	case *FixedQuery:
		return ev.Fixed(*n)
	case *AdviceQuery:
		return ev.Advice(*n)
	case *InstanceQuery:
		return ev.Instance(*n)
	case *Negated:
		return ev.Negated(Evaluate(n.Child, ev))
	case *Sum:
		return ev.Sum(Evaluate(n.Left, ev), Evaluate(n.Right, ev))
	case *Product:
		return ev.Product(Evaluate(n.Left, ev), Evaluate(n.Right, ev))
	case *Scaled:
		return ev.Scaled(Evaluate(n.Child, ev), n.Scalar)
	default:
		panic(fmt.Sprintf("expr: unknown expression node %T", e))
	}
}

// Degree returns the polynomial degree: constants contribute 0, any column or
// selector reference contributes 1, sums take the max and products add.
func Degree(e Expression) int {
	return Evaluate(e, Evaluator[int]{
		Constant: func(field.Element) int { return 0 },
		Selector: func(Selector) int { return 1 },
		Fixed:    func(FixedQuery) int { return 1 },
		Advice:   func(AdviceQuery) int { return 1 },
		Instance: func(InstanceQuery) int { return 1 },
		Negated:  func(d int) int { return d },
		Sum:      max2,
		Product:  func(a, b int) int { return a + b },
		Scaled:   func(d int, _ field.Element) int { return d },
	})
}

func max2(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// ContainsSimpleSelector reports whether any simple selector is referenced.
func ContainsSimpleSelector(e Expression) bool {
	return Evaluate(e, Evaluator[bool]{
		Constant: func(field.Element) bool { return false },
		Selector: func(s Selector) bool { return s.Simple },
		Fixed:    func(FixedQuery) bool { return false },
		Advice:   func(AdviceQuery) bool { return false },
		Instance: func(InstanceQuery) bool { return false },
		Negated:  func(b bool) bool { return b },
		Sum:      func(a, b bool) bool { return a || b },
		Product:  func(a, b bool) bool { return a || b },
		Scaled:   func(b bool, _ field.Element) bool { return b },
	})
}

// ExtractSimpleSelector returns the unique simple selector referenced by e.
// It panics if two branches of a sum or product each carry one, since a
// constraint admits at most a single simple selector.
func ExtractSimpleSelector(e Expression) (Selector, bool) {
	op := func(a, b *Selector) *Selector {
		if a != nil && b != nil {
			panic("expr: two simple selectors cannot be in the same expression")
		}
		if a != nil {
			return a
		}
		return b
	}
	res := Evaluate(e, Evaluator[*Selector]{
		Constant: func(field.Element) *Selector { return nil },
		Selector: func(s Selector) *Selector {
			if s.Simple {
				return &s
			}
			return nil
		},
		Fixed:    func(FixedQuery) *Selector { return nil },
		Advice:   func(AdviceQuery) *Selector { return nil },
		Instance: func(InstanceQuery) *Selector { return nil },
		Negated:  func(s *Selector) *Selector { return s },
		Sum:      op,
		Product:  op,
		Scaled:   func(s *Selector, _ field.Element) *Selector { return s },
	})
	if res == nil {
		return Selector{}, false
	}
	return *res, true
}

// Identifier returns a stable structural fingerprint of the expression.
func Identifier(e Expression) string {
	return Evaluate(e, Evaluator[string]{
		Constant: func(v field.Element) string { return v.String() },
		Selector: func(s Selector) string { return s.String() },
		Fixed: func(q FixedQuery) string {
			return fmt.Sprintf("fixed[%d][%d]", q.ColumnIndex, q.Rotation)
		},
		Advice: func(q AdviceQuery) string {
			return fmt.Sprintf("advice[%d][%d]", q.ColumnIndex, q.Rotation)
		},
		Instance: func(q InstanceQuery) string {
			return fmt.Sprintf("instance[%d][%d]", q.ColumnIndex, q.Rotation)
		},
		Negated: func(s string) string { return "(-" + s + ")" },
		Sum:     func(a, b string) string { return "(" + a + "+" + b + ")" },
		Product: func(a, b string) string { return "(" + a + "*" + b + ")" },
		Scaled: func(s string, v field.Element) string {
			return s + "*" + v.String()
		},
	})
}

// Const returns a constant expression.
func Const(v field.Element) Expression {
	return &Constant{Value: v}
}

// ConstUint64 returns a small constant expression.
func ConstUint64(v uint64) Expression {
	return &Constant{Value: field.NewElement(v)}
}

// Neg returns -e.
func Neg(e Expression) Expression {
	return &Negated{Child: e}
}

// Add returns a+b.
func Add(a, b Expression) Expression {
	return &Sum{Left: a, Right: b}
}

// Sub returns a-b.
func Sub(a, b Expression) Expression {
	return &Sum{Left: a, Right: &Negated{Child: b}}
}

// Mul returns a*b. Multiplying two sub-expressions that each contain a simple
// selector is not supported by the degree bookkeeping downstream and panics.
func Mul(a, b Expression) Expression {
	if ContainsSimpleSelector(a) && ContainsSimpleSelector(b) {
		panic("expr: attempted to multiply two expressions containing simple selectors")
	}
	return &Product{Left: a, Right: b}
}

// Scale returns e*c.
func Scale(e Expression, c field.Element) Expression {
	return &Scaled{Child: e, Scalar: c}
}
