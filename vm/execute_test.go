package vm

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/consensys/gnark/constraint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zkpipe/circuitrunner/field/bn254"
)

var f = &bn254.Field{}

func el(v interface{}) constraint.Element {
	return f.FromInterface(v)
}

// additionFunction computes w3 = w1 + w2.
func additionFunction() Function {
	return Function{
		NumInputs:  2,
		NumWitness: 4,
		OutputIds:  []int{3},
		Instructions: []Instruction{
			{Type: LinComb, Inputs: []int{1, 2}, Coef: []constraint.Element{f.One(), f.One()}, Outputs: []int{3}},
		},
	}
}

func TestExecuteAddition(t *testing.T) {
	p := &Program{Functions: []Function{additionFunction()}}
	stack, err := Execute(p, []constraint.Element{el(2), el(3)}, f, nil)
	require.NoError(t, err)
	require.Len(t, stack, 1)

	frame := stack.Peek()
	require.NotNil(t, frame)
	assert.Equal(t, 0, frame.FunctionIndex)
	assert.Equal(t, []constraint.Element{el(5)}, frame.Extract([]int{3}))
}

func TestExecuteMul(t *testing.T) {
	p := &Program{Functions: []Function{{
		NumInputs:  2,
		NumWitness: 4,
		OutputIds:  []int{3},
		Instructions: []Instruction{
			{Type: Mul, Inputs: []int{1, 2}, Outputs: []int{3}},
		},
	}}}
	stack, err := Execute(p, []constraint.Element{el(6), el(7)}, f, nil)
	require.NoError(t, err)
	assert.Equal(t, []constraint.Element{el(42)}, stack.Peek().Extract([]int{3}))
}

func TestExecuteAssertZero(t *testing.T) {
	// w3 = w1 - w2, then assert w3 == 0
	fn := Function{
		NumInputs:  2,
		NumWitness: 4,
		OutputIds:  []int{},
		Instructions: []Instruction{
			{Type: LinComb, Inputs: []int{1, 2}, Coef: []constraint.Element{f.One(), f.Neg(f.One())}, Outputs: []int{3}},
			{Type: AssertZero, Inputs: []int{3}, ExtraId: 7},
		},
	}
	p := &Program{Functions: []Function{fn}}

	_, err := Execute(p, []constraint.Element{el(5), el(5)}, f, nil)
	require.NoError(t, err)

	_, err = Execute(p, []constraint.Element{el(5), el(6)}, f, nil)
	require.Error(t, err)
	var failure *ExecutionFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, FailureUnsatisfied, failure.Kind)
	assert.Equal(t, 7, failure.Location)
}

func TestExecuteCall(t *testing.T) {
	main := Function{
		NumInputs:  2,
		NumWitness: 4,
		OutputIds:  []int{3},
		Instructions: []Instruction{
			{Type: Call, ExtraId: 1, Inputs: []int{1, 2}, Outputs: []int{3}},
		},
	}
	p := &Program{Functions: []Function{main, additionFunction()}}

	stack, err := Execute(p, []constraint.Element{el(20), el(22)}, f, nil)
	require.NoError(t, err)
	require.Len(t, stack, 2)

	// the entry function's frame is the outermost one
	assert.Equal(t, 0, stack.Peek().FunctionIndex)
	assert.Equal(t, 1, stack[0].FunctionIndex)
	assert.Equal(t, []constraint.Element{el(42)}, stack.Peek().Extract([]int{3}))
}

type doublingHandler struct{}

func (doublingHandler) Call(name string, inputs []*big.Int) ([]*big.Int, error) {
	if name != "double" {
		return nil, fmt.Errorf("unknown foreign call %q", name)
	}
	out := make([]*big.Int, len(inputs))
	for i, x := range inputs {
		out[i] = new(big.Int).Lsh(x, 1)
	}
	return out, nil
}

func TestExecuteForeignCall(t *testing.T) {
	p := &Program{Functions: []Function{{
		NumInputs:  1,
		NumWitness: 3,
		OutputIds:  []int{2},
		Instructions: []Instruction{
			{Type: ForeignCall, Name: "double", Inputs: []int{1}, Outputs: []int{2}},
		},
	}}}

	stack, err := Execute(p, []constraint.Element{el(21)}, f, doublingHandler{})
	require.NoError(t, err)
	assert.Equal(t, []constraint.Element{el(42)}, stack.Peek().Extract([]int{2}))

	_, err = Execute(p, []constraint.Element{el(21)}, f, nil)
	require.Error(t, err)
	var failure *ExecutionFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, FailureForeignCall, failure.Kind)
}

func TestExecuteForeignCallFailure(t *testing.T) {
	p := &Program{Functions: []Function{{
		NumInputs:  1,
		NumWitness: 3,
		OutputIds:  []int{2},
		Instructions: []Instruction{
			{Type: ForeignCall, Name: "missing_oracle", Inputs: []int{1}, Outputs: []int{2}},
		},
	}}}
	_, err := Execute(p, []constraint.Element{el(1)}, f, doublingHandler{})
	require.Error(t, err)
	var failure *ExecutionFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, FailureForeignCall, failure.Kind)
	assert.Contains(t, failure.Reason, "missing_oracle")
}

func TestExecuteInputArityMismatch(t *testing.T) {
	p := &Program{Functions: []Function{additionFunction()}}
	_, err := Execute(p, []constraint.Element{el(1)}, f, nil)
	require.Error(t, err)
	var failure *ExecutionFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, FailureInternal, failure.Kind)
}

func TestExecuteRejectsTooFewWitnesses(t *testing.T) {
	// no room for the constant-one witness
	p := &Program{Functions: []Function{{NumInputs: 0, NumWitness: 0}}}
	_, err := Execute(p, nil, f, nil)
	require.Error(t, err)
	var failure *ExecutionFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, FailureInternal, failure.Kind)
	assert.Contains(t, failure.Reason, "witness")
}

func TestProgramValidate(t *testing.T) {
	good := &Program{Functions: []Function{additionFunction()}}
	assert.NoError(t, good.Validate())

	assert.Error(t, (&Program{Functions: []Function{{NumInputs: 0, NumWitness: 0}}}).Validate())
	assert.Error(t, (&Program{Functions: []Function{{NumInputs: 2, NumWitness: 2}}}).Validate())
	assert.Error(t, (&Program{Functions: []Function{{NumInputs: 1, NumWitness: 3, OutputIds: []int{3}}}}).Validate())
	assert.Error(t, (&Program{Functions: []Function{{NumInputs: 1, NumWitness: 3, OutputIds: []int{-1}}}}).Validate())
}

func TestExecuteUnassignedRead(t *testing.T) {
	p := &Program{Functions: []Function{{
		NumInputs:  1,
		NumWitness: 4,
		OutputIds:  []int{3},
		Instructions: []Instruction{
			{Type: LinComb, Inputs: []int{2}, Coef: []constraint.Element{f.One()}, Outputs: []int{3}},
		},
	}}}
	_, err := Execute(p, []constraint.Element{el(1)}, f, nil)
	require.Error(t, err)
	var failure *ExecutionFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, FailureInternal, failure.Kind)
}
