// Package artifact reads and writes the versioned JSON files a compiled
// function is exported to: interface descriptor, opaque bytecode, debug
// symbol table and source file map.
package artifact

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/blang/semver/v4"
	"github.com/zkpipe/circuitrunner/abi"
	"github.com/zkpipe/circuitrunner/field"
	"github.com/zkpipe/circuitrunner/vm"
)

// FormatVersion is the artifact format this runner understands. Artifacts
// declare the version they were exported with; an artifact with a different
// major version, or one newer than this, is rejected.
const FormatVersion = "1.0.0"

// Artifact is the serialized form of a compiled function. Bytecode is the
// binary program, base64-encoded by the JSON layer.
type Artifact struct {
	Name          string    `json:"name,omitempty"`
	FormatVersion string    `json:"format_version"`
	Abi           abi.ABI   `json:"abi"`
	Bytecode      []byte    `json:"bytecode"`
	DebugSymbols  DebugInfo `json:"debug_symbols"`
	FileMap       FileMap   `json:"file_map,omitempty"`
}

// CompiledFunction is an artifact with its bytecode parsed, ready to
// execute.
type CompiledFunction struct {
	Name    string
	Abi     abi.ABI
	Program *vm.Program
	Debug   DebugInfo
	FileMap FileMap
}

// New builds an artifact from a function's parts, serializing the bytecode
// with the given field engine.
func New(name string, a abi.ABI, p *vm.Program, debug DebugInfo, files FileMap, f field.Field) *Artifact {
	return &Artifact{
		Name:          name,
		FormatVersion: FormatVersion,
		Abi:           a,
		Bytecode:      vm.SerializeProgram(p, f),
		DebugSymbols:  debug,
		FileMap:       files,
	}
}

// Read parses an artifact from r and validates its format version.
func Read(r io.Reader) (*Artifact, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("parse artifact: %w", err)
	}
	if err := checkVersion(a.FormatVersion); err != nil {
		return nil, err
	}
	return &a, nil
}

// Compile parses the artifact's bytecode into an executable form, checking
// that the declared interface and the program are internally consistent.
func (a *Artifact) Compile(f field.Field) (*CompiledFunction, error) {
	if err := a.Abi.Validate(); err != nil {
		return nil, fmt.Errorf("invalid interface: %w", err)
	}
	p, err := vm.DeserializeProgram(a.Bytecode, f)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bytecode: %w", err)
	}
	if len(p.Functions) > 0 && p.Functions[0].NumInputs != a.Abi.InputLen() {
		return nil, fmt.Errorf("bytecode expects %d inputs, interface declares %d",
			p.Functions[0].NumInputs, a.Abi.InputLen())
	}
	return &CompiledFunction{
		Name:    a.Name,
		Abi:     a.Abi,
		Program: p,
		Debug:   a.DebugSymbols,
		FileMap: a.FileMap,
	}, nil
}

// Save writes the artifact as indented JSON at path.
func Save(a *Artifact, path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func checkVersion(declared string) error {
	current := semver.MustParse(FormatVersion)
	v, err := semver.Parse(declared)
	if err != nil {
		return fmt.Errorf("invalid artifact format version %q: %w", declared, err)
	}
	if v.Major != current.Major || v.GT(current) {
		return fmt.Errorf("artifact format version %s is not compatible with %s (re-export the function with a matching toolchain)",
			declared, FormatVersion)
	}
	return nil
}
