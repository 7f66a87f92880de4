// Package field defines the arithmetic engine interface used by the runner
// and the bytecode evaluator. All scalar data ultimately lives in the scalar
// field of the proving system's curve.
package field

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/constraint"
	"github.com/zkpipe/circuitrunner/field/bn254"
)

type Field interface {
	constraint.Field
	Field() *big.Int
	FieldBitLen() int
	SerializedLen() int
}

func GetFieldFromOrder(x *big.Int) Field {
	if x.Cmp(bn254.ScalarField) == 0 {
		return &bn254.Field{}
	}
	panic(fmt.Sprintf("unknown field %v", x))
}
