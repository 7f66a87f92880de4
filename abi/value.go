// Package abi implements the typed value tree exchanged with circuit
// functions, the conversion from arbitrary host values into that tree, and
// the encoding of value trees into the flat field-element vectors consumed
// and produced by the bytecode evaluator.
package abi

import (
	"math/big"
	"sort"

	"github.com/consensys/gnark/constraint"
	"github.com/zkpipe/circuitrunner/field/bn254"
)

// engine is the scalar field all values are embedded into.
var engine = &bn254.Field{}

// Value is a typed circuit value. Exactly four variants exist: Scalar,
// Sequence, Text and Record. Consumers must type-switch exhaustively.
type Value interface {
	isValue()
}

// Scalar is a single field element, canonical and reduced modulo the field
// order. Two Scalars holding the same value compare equal with ==.
type Scalar constraint.Element

// Sequence is an ordered list of values. Order is preserved end-to-end.
type Sequence []Value

// Text is opaque string content. It is never reinterpreted as numeric data.
type Text string

// Record maps field names to values. Keys are unique; iteration order is
// obtained from Keys, which is always lexicographic.
type Record map[string]Value

func (Scalar) isValue()   {}
func (Sequence) isValue() {}
func (Text) isValue()     {}
func (Record) isValue()   {}

// NewScalar embeds v into the scalar field. It accepts the numeric kinds
// understood by the field engine (integers, big.Int, decimal strings).
func NewScalar(v interface{}) Scalar {
	return Scalar(engine.FromInterface(v))
}

// BigInt returns the canonical non-negative integer representation of s.
func (s Scalar) BigInt() *big.Int {
	return engine.ToBigInt(constraint.Element(s))
}

func (s Scalar) String() string {
	return engine.String(constraint.Element(s))
}

// Keys returns the record's field names in lexicographic order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// InputMap maps declared parameter names to the values supplied for them.
type InputMap map[string]Value
