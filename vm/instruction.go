// Package vm implements the constraint-solving engine: a bytecode evaluator
// over field elements that produces a satisfying witness for a compiled
// function, or a structured execution failure.
package vm

import (
	"fmt"

	"github.com/consensys/gnark/constraint"
)

type InstructionType uint8

const (
	// LinComb assigns Outputs[0] = sum(Coef[i] * w[Inputs[i]]) + Const.
	LinComb InstructionType = iota + 1
	// Mul assigns Outputs[0] = product of w[Inputs[i]].
	Mul
	// AssertZero fails the execution unless w[Inputs[0]] is zero.
	// ExtraId is the debug location of the source assertion.
	AssertZero
	// ForeignCall passes w[Inputs] to the host handler named Name and
	// assigns the results to Outputs.
	ForeignCall
	// Call executes function ExtraId with w[Inputs] as its input vector and
	// copies its declared outputs to Outputs.
	Call
)

type Instruction struct {
	Type    InstructionType
	Inputs  []int
	Outputs []int
	Coef    []constraint.Element
	Const   constraint.Element
	Name    string
	ExtraId int
}

// Function is one compiled function body. Witness id 0 is the constant one;
// ids 1..NumInputs hold the flat input vector; the remaining ids are
// assigned by instructions. OutputIds name the witnesses holding the
// function's flattened return value.
type Function struct {
	Instructions []Instruction
	NumInputs    int
	NumWitness   int
	OutputIds    []int
}

// Program is a compiled function artifact's bytecode: function 0 is the
// entry point, the rest are callees.
type Program struct {
	Functions []Function
}

// Validate checks the structural invariants of the program: every function
// reserves witness id 0 for the constant one plus one id per input, and its
// output ids stay within the witness range.
func (p *Program) Validate() error {
	for i := range p.Functions {
		fn := &p.Functions[i]
		if fn.NumInputs < 0 {
			return fmt.Errorf("function %d declares %d inputs", i, fn.NumInputs)
		}
		if fn.NumWitness < fn.NumInputs+1 {
			return fmt.Errorf("function %d declares %d witnesses for %d inputs", i, fn.NumWitness, fn.NumInputs)
		}
		for _, id := range fn.OutputIds {
			if id < 0 || id >= fn.NumWitness {
				return fmt.Errorf("function %d output id %d out of range", i, id)
			}
		}
	}
	return nil
}
