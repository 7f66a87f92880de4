package vm

import (
	"fmt"
	"math/big"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark/constraint"
	"github.com/zkpipe/circuitrunner/field"
)

// FailureKind classifies why an execution aborted.
type FailureKind uint8

const (
	// FailureUnsatisfied means an assertion inside the circuit did not hold.
	FailureUnsatisfied FailureKind = iota + 1
	// FailureForeignCall means a host-side oracle call failed.
	FailureForeignCall
	// FailureInternal means the bytecode itself is inconsistent (bad witness
	// ids, double assignment, wrong input arity).
	FailureInternal
)

// ExecutionFailure is the structured failure produced by Execute. Location
// indexes the artifact's debug symbol table, or is -1 when the failing
// instruction carries no location.
type ExecutionFailure struct {
	Kind     FailureKind
	Reason   string
	Location int
	Err      error
}

func (e *ExecutionFailure) Error() string {
	return e.Reason
}

func (e *ExecutionFailure) Unwrap() error {
	return e.Err
}

// WitnessFrame is one function's complete variable assignment.
type WitnessFrame struct {
	FunctionIndex int
	Values        []constraint.Element
}

// Extract returns the witness values at the given ids.
func (w *WitnessFrame) Extract(ids []int) []constraint.Element {
	out := make([]constraint.Element, len(ids))
	for i, id := range ids {
		out[i] = w.Values[id]
	}
	return out
}

// WitnessStack holds the frames produced across nested calls during one
// execution. Frames are pushed as calls complete, the entry function last,
// so Peek returns the outermost frame.
type WitnessStack []*WitnessFrame

func (s WitnessStack) Peek() *WitnessFrame {
	if len(s) == 0 {
		return nil
	}
	return s[len(s)-1]
}

// Execute runs the program's entry function over the flat input vector,
// returning the witness stack on success. The returned error is always a
// *ExecutionFailure. The handler may be nil when the program issues no
// foreign calls.
func Execute(p *Program, inputs []constraint.Element, f field.Field, handler ForeignCallHandler) (WitnessStack, error) {
	if len(p.Functions) == 0 {
		return nil, &ExecutionFailure{Kind: FailureInternal, Reason: "program has no functions", Location: -1}
	}
	stack := WitnessStack{}
	frame, fail := executeFunction(p, 0, inputs, f, handler, &stack)
	if fail != nil {
		return nil, fail
	}
	stack = append(stack, frame)
	return stack, nil
}

type frameState struct {
	values   []constraint.Element
	assigned *bitset.BitSet
}

func (fs *frameState) get(id int) (constraint.Element, *ExecutionFailure) {
	if id < 0 || id >= len(fs.values) || !fs.assigned.Test(uint(id)) {
		return constraint.Element{}, &ExecutionFailure{
			Kind:     FailureInternal,
			Reason:   fmt.Sprintf("read of unassigned witness %d", id),
			Location: -1,
		}
	}
	return fs.values[id], nil
}

func (fs *frameState) set(id int, v constraint.Element) *ExecutionFailure {
	if id < 0 || id >= len(fs.values) {
		return &ExecutionFailure{
			Kind:     FailureInternal,
			Reason:   fmt.Sprintf("write of out-of-range witness %d", id),
			Location: -1,
		}
	}
	if fs.assigned.Test(uint(id)) {
		return &ExecutionFailure{
			Kind:     FailureInternal,
			Reason:   fmt.Sprintf("witness %d assigned twice", id),
			Location: -1,
		}
	}
	fs.values[id] = v
	fs.assigned.Set(uint(id))
	return nil
}

func executeFunction(p *Program, idx int, inputs []constraint.Element, f field.Field, handler ForeignCallHandler, stack *WitnessStack) (*WitnessFrame, *ExecutionFailure) {
	fn := &p.Functions[idx]
	if len(inputs) != fn.NumInputs {
		return nil, &ExecutionFailure{
			Kind:     FailureInternal,
			Reason:   fmt.Sprintf("function %d expects %d inputs, got %d", idx, fn.NumInputs, len(inputs)),
			Location: -1,
		}
	}
	if fn.NumWitness < fn.NumInputs+1 {
		return nil, &ExecutionFailure{
			Kind:     FailureInternal,
			Reason:   fmt.Sprintf("function %d declares %d witnesses for %d inputs", idx, fn.NumWitness, fn.NumInputs),
			Location: -1,
		}
	}
	fs := &frameState{
		values:   make([]constraint.Element, fn.NumWitness),
		assigned: bitset.New(uint(fn.NumWitness)),
	}
	fs.values[0] = f.One()
	fs.assigned.Set(0)
	for i, v := range inputs {
		if fail := fs.set(i+1, v); fail != nil {
			return nil, fail
		}
	}

	for i := range fn.Instructions {
		insn := &fn.Instructions[i]
		if fail := executeInstruction(p, insn, fs, f, handler, stack); fail != nil {
			return nil, fail
		}
	}

	for _, id := range fn.OutputIds {
		if _, fail := fs.get(id); fail != nil {
			return nil, fail
		}
	}
	return &WitnessFrame{FunctionIndex: idx, Values: fs.values}, nil
}

func executeInstruction(p *Program, insn *Instruction, fs *frameState, f field.Field, handler ForeignCallHandler, stack *WitnessStack) *ExecutionFailure {
	switch insn.Type {
	case LinComb:
		acc := insn.Const
		for j, id := range insn.Inputs {
			v, fail := fs.get(id)
			if fail != nil {
				return fail
			}
			acc = f.Add(acc, f.Mul(insn.Coef[j], v))
		}
		return fs.set(insn.Outputs[0], acc)
	case Mul:
		acc := f.One()
		for _, id := range insn.Inputs {
			v, fail := fs.get(id)
			if fail != nil {
				return fail
			}
			acc = f.Mul(acc, v)
		}
		return fs.set(insn.Outputs[0], acc)
	case AssertZero:
		v, fail := fs.get(insn.Inputs[0])
		if fail != nil {
			return fail
		}
		if !v.IsZero() {
			return &ExecutionFailure{
				Kind:     FailureUnsatisfied,
				Reason:   fmt.Sprintf("assertion failed: witness %d is %s, expected 0", insn.Inputs[0], f.String(v)),
				Location: insn.ExtraId,
			}
		}
		return nil
	case ForeignCall:
		if handler == nil {
			return &ExecutionFailure{
				Kind:     FailureForeignCall,
				Reason:   fmt.Sprintf("foreign call %q with no handler installed", insn.Name),
				Location: -1,
			}
		}
		args := make([]*big.Int, len(insn.Inputs))
		for j, id := range insn.Inputs {
			v, fail := fs.get(id)
			if fail != nil {
				return fail
			}
			args[j] = f.ToBigInt(v)
		}
		rets, err := handler.Call(insn.Name, args)
		if err != nil {
			return &ExecutionFailure{
				Kind:     FailureForeignCall,
				Reason:   fmt.Sprintf("foreign call %q: %v", insn.Name, err),
				Location: -1,
				Err:      err,
			}
		}
		if len(rets) != len(insn.Outputs) {
			return &ExecutionFailure{
				Kind:     FailureForeignCall,
				Reason:   fmt.Sprintf("foreign call %q returned %d values, expected %d", insn.Name, len(rets), len(insn.Outputs)),
				Location: -1,
			}
		}
		for j, id := range insn.Outputs {
			if fail := fs.set(id, f.FromInterface(rets[j])); fail != nil {
				return fail
			}
		}
		return nil
	case Call:
		if insn.ExtraId <= 0 || insn.ExtraId >= len(p.Functions) {
			return &ExecutionFailure{
				Kind:     FailureInternal,
				Reason:   fmt.Sprintf("call to unknown function %d", insn.ExtraId),
				Location: -1,
			}
		}
		sub := make([]constraint.Element, len(insn.Inputs))
		for j, id := range insn.Inputs {
			v, fail := fs.get(id)
			if fail != nil {
				return fail
			}
			sub[j] = v
		}
		frame, fail := executeFunction(p, insn.ExtraId, sub, f, handler, stack)
		if fail != nil {
			return fail
		}
		*stack = append(*stack, frame)
		callee := &p.Functions[insn.ExtraId]
		if len(callee.OutputIds) != len(insn.Outputs) {
			return &ExecutionFailure{
				Kind:     FailureInternal,
				Reason:   fmt.Sprintf("function %d returns %d values, call site expects %d", insn.ExtraId, len(callee.OutputIds), len(insn.Outputs)),
				Location: -1,
			}
		}
		for j, id := range insn.Outputs {
			if fail := fs.set(id, frame.Values[callee.OutputIds[j]]); fail != nil {
				return fail
			}
		}
		return nil
	}
	return &ExecutionFailure{
		Kind:     FailureInternal,
		Reason:   fmt.Sprintf("unknown instruction type %d", insn.Type),
		Location: -1,
	}
}
