// Package field pins the scalar field used by the arithmetization core and
// provides the few helpers the core needs on top of gnark-crypto.
//
// The core only relies on ring operations plus inversion with the 1/0 = 0
// convention, so swapping the curve means swapping this single alias.
package field

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"
)

// Element is a field element of the bn254 scalar field.
type Element = fr.Element

// Zero returns the additive identity.
func Zero() Element {
	var z Element
	return z
}

// One returns the multiplicative identity.
func One() Element {
	return fr.One()
}

// NewElement returns v as a field element.
func NewElement(v uint64) Element {
	var e Element
	e.SetUint64(v)
	return e
}

// FromString parses a decimal (or 0x-prefixed) string into a field element.
// It panics on malformed input.
func FromString(s string) Element {
	var e Element
	if _, err := e.SetString(s); err != nil {
		panic("field: invalid element string " + s)
	}
	return e
}

// Modulus returns the field modulus.
func Modulus() *big.Int {
	return fr.Modulus()
}

// batchInvertChunk is the minimum slice size worth splitting across goroutines.
const batchInvertChunk = 1 << 13

// BatchInvert inverts the elements of a using a single inversion per chunk.
// Zero inverts to zero. Large inputs are split across goroutines.
func BatchInvert(a []Element) []Element {
	if len(a) <= batchInvertChunk {
		return fr.BatchInvert(a)
	}
	res := make([]Element, len(a))
	var g errgroup.Group
	for start := 0; start < len(a); start += batchInvertChunk {
		start := start
		end := start + batchInvertChunk
		if end > len(a) {
			end = len(a)
		}
		g.Go(func() error {
			copy(res[start:end], fr.BatchInvert(a[start:end]))
			return nil
		})
	}
	_ = g.Wait()
	return res
}
