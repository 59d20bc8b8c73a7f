// Package plonkish is the arithmetization core of a plonk-style
// zero-knowledge circuit framework: it turns a declarative circuit
// description (columns, gates, selectors, lookups, copy constraints) into a
// symbolic constraint system and a concrete placement of the computation
// onto a grid of rows and columns.
//
// The sub-packages split along the pipeline: expr holds the symbolic
// expression tree, cs the constraint-system registry, layouter the two-pass
// measurement/placement scheduler, witness the lazily-known value
// abstraction and mock an in-memory backend with a trace checker.
package plonkish

import (
	"github.com/sure2web3/plonkish/cs"
	"github.com/sure2web3/plonkish/field"
	"github.com/sure2web3/plonkish/layouter"
	"github.com/sure2web3/plonkish/mock"
)

// Compile configures and synthesizes the circuit on 2^k rows against an
// in-memory backend, returning the captured assignment together with the
// finalized constraint-system snapshot for the prover boundary.
func Compile(k uint32, circuit layouter.Circuit, instance [][]field.Element, opts ...mock.Option) (*mock.Prover, *cs.Snapshot, error) {
	prover, err := mock.Run(k, circuit, instance, opts...)
	if err != nil {
		return nil, nil, err
	}
	return prover, prover.ConstraintSystem().Snapshot(), nil
}
