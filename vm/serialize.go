package vm

import (
	"fmt"

	"github.com/consensys/gnark/constraint"
	"github.com/zkpipe/circuitrunner/field"
	"github.com/zkpipe/circuitrunner/utils"
)

const (
	bytecodeMagic   = 2365984712566983113
	bytecodeVersion = 1
)

func serializeInstruction(o *utils.OutputBuf, insn *Instruction, f field.Field) {
	o.AppendUint8(uint8(insn.Type))
	switch insn.Type {
	case LinComb:
		if len(insn.Inputs) != len(insn.Coef) {
			panic("coefficient count mismatch")
		}
		o.AppendIntSlice(insn.Inputs)
		for _, x := range insn.Coef {
			o.AppendFieldElement(f, x)
		}
		o.AppendFieldElement(f, insn.Const)
		o.AppendUint64(uint64(insn.Outputs[0]))
	case Mul:
		o.AppendIntSlice(insn.Inputs)
		o.AppendUint64(uint64(insn.Outputs[0]))
	case AssertZero:
		o.AppendUint64(uint64(insn.Inputs[0]))
		o.AppendUint64(uint64(insn.ExtraId))
	case ForeignCall:
		o.AppendString(insn.Name)
		o.AppendIntSlice(insn.Inputs)
		o.AppendIntSlice(insn.Outputs)
	case Call:
		o.AppendUint64(uint64(insn.ExtraId))
		o.AppendIntSlice(insn.Inputs)
		o.AppendIntSlice(insn.Outputs)
	default:
		panic(fmt.Sprintf("unknown instruction type %d", insn.Type))
	}
}

func serializeFunction(o *utils.OutputBuf, fn *Function, f field.Field) {
	o.AppendUint64(uint64(fn.NumInputs))
	o.AppendUint64(uint64(fn.NumWitness))
	o.AppendIntSlice(fn.OutputIds)
	o.AppendUint64(uint64(len(fn.Instructions)))
	for i := range fn.Instructions {
		serializeInstruction(o, &fn.Instructions[i], f)
	}
}

// SerializeProgram converts a program into its binary bytecode form.
func SerializeProgram(p *Program, f field.Field) []byte {
	o := &utils.OutputBuf{}
	o.AppendUint64(bytecodeMagic)
	o.AppendUint32(bytecodeVersion)
	o.AppendUint64(uint64(len(p.Functions)))
	for i := range p.Functions {
		serializeFunction(o, &p.Functions[i], f)
	}
	return o.Bytes()
}

func deserializeInstruction(in *utils.InputBuf, f field.Field) Instruction {
	var insn Instruction
	insn.Type = InstructionType(in.ReadUint8())
	switch insn.Type {
	case LinComb:
		insn.Inputs = in.ReadIntSlice()
		insn.Coef = make([]constraint.Element, len(insn.Inputs))
		for j := range insn.Coef {
			insn.Coef[j] = in.ReadFieldElement(f)
		}
		insn.Const = in.ReadFieldElement(f)
		insn.Outputs = []int{int(in.ReadUint64())}
	case Mul:
		insn.Inputs = in.ReadIntSlice()
		insn.Outputs = []int{int(in.ReadUint64())}
	case AssertZero:
		insn.Inputs = []int{int(in.ReadUint64())}
		insn.ExtraId = int(in.ReadUint64())
	case ForeignCall:
		insn.Name = in.ReadString()
		insn.Inputs = in.ReadIntSlice()
		insn.Outputs = in.ReadIntSlice()
	case Call:
		insn.ExtraId = int(in.ReadUint64())
		insn.Inputs = in.ReadIntSlice()
		insn.Outputs = in.ReadIntSlice()
	default:
		panic(fmt.Sprintf("unknown instruction type %d", insn.Type))
	}
	return insn
}

func deserializeFunction(in *utils.InputBuf, f field.Field) Function {
	var fn Function
	fn.NumInputs = int(in.ReadUint64())
	fn.NumWitness = int(in.ReadUint64())
	fn.OutputIds = in.ReadIntSlice()
	n := in.ReadUint64()
	fn.Instructions = make([]Instruction, n)
	for j := uint64(0); j < n; j++ {
		fn.Instructions[j] = deserializeInstruction(in, f)
	}
	return fn
}

// DeserializeProgram parses binary bytecode. It fails on a wrong magic
// number, an unsupported bytecode version, or truncated or trailing data.
func DeserializeProgram(data []byte, f field.Field) (p *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = fmt.Errorf("malformed bytecode: %v", r)
		}
	}()
	in := utils.NewInputBuf(data)
	if in.ReadUint64() != bytecodeMagic {
		return nil, fmt.Errorf("not a bytecode blob (bad magic number)")
	}
	if v := in.ReadUint32(); v != bytecodeVersion {
		return nil, fmt.Errorf("unsupported bytecode version %d, expected %d", v, bytecodeVersion)
	}
	n := in.ReadUint64()
	p = &Program{Functions: make([]Function, n)}
	for j := uint64(0); j < n; j++ {
		p.Functions[j] = deserializeFunction(in, f)
	}
	if !in.IsEnd() {
		return nil, fmt.Errorf("trailing bytes after bytecode")
	}
	return p, nil
}
