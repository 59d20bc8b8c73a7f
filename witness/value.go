// Package witness provides the lazily-known value abstraction threaded through
// every assignment call of the layouter.
//
// A Value is either known or unknown; the case is never exposed directly, so
// callers are forced through combinators that propagate unknown-ness. This is
// what lets a circuit-description routine run during the measurement pass,
// where no witness data exists, and still touch exactly the same cells as it
// does during real assignment.
package witness

import (
	"errors"

	"github.com/sure2web3/plonkish/field"
)

// ErrUnknown is returned when an unknown value is about to be materialized,
// typically because an assignment routine forgot to supply a witness.
var ErrUnknown = errors.New("witness: value is unknown")

// Value wraps a value of type V that may not be known yet.
//
// The zero Value is unknown.
type Value[V any] struct {
	inner V
	known bool
}

// Known wraps v as a known value.
func Known[V any](v V) Value[V] {
	return Value[V]{inner: v, known: true}
}

// Unknown returns the unknown value.
func Unknown[V any]() Value[V] {
	return Value[V]{}
}

// Unwrap extracts the wrapped value, or ErrUnknown if there is none.
// This is the single sanctioned escape hatch, used by assignment backends.
func (v Value[V]) Unwrap() (V, error) {
	if !v.known {
		var zero V
		return zero, ErrUnknown
	}
	return v.inner, nil
}

// AssertIfKnown panics unless f holds for the wrapped value.
// It is a no-op on unknown values.
func (v Value[V]) AssertIfKnown(f func(V) bool) {
	if v.known && !f(v.inner) {
		panic("witness: assertion failed on known value")
	}
}

// ErrorIfKnownAnd returns err if f holds for the wrapped value.
// It is a no-op on unknown values.
func (v Value[V]) ErrorIfKnownAnd(f func(V) bool, err error) error {
	if v.known && f(v.inner) {
		return err
	}
	return nil
}

// Map applies f to the wrapped value, propagating unknown.
func Map[V, W any](v Value[V], f func(V) W) Value[W] {
	if !v.known {
		return Unknown[W]()
	}
	return Known(f(v.inner))
}

// AndThen applies f to the wrapped value, flattening the result.
func AndThen[V, W any](v Value[V], f func(V) Value[W]) Value[W] {
	if !v.known {
		return Unknown[W]()
	}
	return f(v.inner)
}

// Pair groups two values for Zip/Unzip.
type Pair[A, B any] struct {
	A A
	B B
}

// Zip combines two values into one; the result is known only if both are.
func Zip[A, B any](a Value[A], b Value[B]) Value[Pair[A, B]] {
	if !a.known || !b.known {
		return Unknown[Pair[A, B]]()
	}
	return Known(Pair[A, B]{A: a.inner, B: b.inner})
}

// Unzip splits a zipped value back into its halves.
func Unzip[A, B any](p Value[Pair[A, B]]) (Value[A], Value[B]) {
	if !p.known {
		return Unknown[A](), Unknown[B]()
	}
	return Known(p.inner.A), Known(p.inner.B)
}

// AsAssigned lifts a field-element value into the deferred-division form.
func AsAssigned(v Value[field.Element]) Value[Assigned] {
	return Map(v, Trivial)
}

// Add returns a+b, unknown if either side is.
func Add(a, b Value[Assigned]) Value[Assigned] {
	return AndThen(a, func(x Assigned) Value[Assigned] {
		return Map(b, func(y Assigned) Assigned { return x.Add(y) })
	})
}

// Sub returns a-b, unknown if either side is.
func Sub(a, b Value[Assigned]) Value[Assigned] {
	return AndThen(a, func(x Assigned) Value[Assigned] {
		return Map(b, func(y Assigned) Assigned { return x.Sub(y) })
	})
}

// Mul returns a*b, unknown if either side is.
func Mul(a, b Value[Assigned]) Value[Assigned] {
	return AndThen(a, func(x Assigned) Value[Assigned] {
		return Map(b, func(y Assigned) Assigned { return x.Mul(y) })
	})
}

// Neg returns -a, unknown if a is.
func Neg(a Value[Assigned]) Value[Assigned] {
	return Map(a, Assigned.Neg)
}

// Scale returns a*c, unknown if a is.
func Scale(a Value[Assigned], c field.Element) Value[Assigned] {
	return Map(a, func(x Assigned) Assigned { return x.Mul(Trivial(c)) })
}
