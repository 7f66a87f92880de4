// Package circuitrunner executes exported circuit functions. A function is
// exported ahead of time as a JSON artifact under the workspace's export
// directory; the runner loads the artifact, encodes the caller's inputs
// against its declared interface, drives the constraint solver to a
// satisfying witness and decodes the return value.
//
// A minimal session:
//
//	runner, err := circuitrunner.New("my_project")
//	// handle err
//	out, err := runner.Run("addition", abi.InputMap{
//		"x": abi.NewScalar(2),
//		"y": abi.NewScalar(3),
//	})
//
// out is nil for void functions. Runners are immutable after construction
// and safe for concurrent use; every call reloads the artifact from disk.
package circuitrunner

import (
	"os"
	"path/filepath"

	"github.com/zkpipe/circuitrunner/abi"
	"github.com/zkpipe/circuitrunner/artifact"
	"github.com/zkpipe/circuitrunner/field"
	"github.com/zkpipe/circuitrunner/field/bn254"
	"github.com/zkpipe/circuitrunner/manifest"
	"github.com/zkpipe/circuitrunner/vm"
)

var engine = field.GetFieldFromOrder(bn254.ScalarField)

// Runner holds a program's root directory and the export directory resolved
// from its manifest.
type Runner struct {
	programDir string
	exportDir  string
}

// New resolves the manifest at programDir and derives the export directory.
func New(programDir string) (*Runner, error) {
	manifestPath, err := manifest.GetPackageManifest(programDir)
	if err != nil {
		return nil, &ManifestError{Err: err}
	}
	ws, err := manifest.ResolveWorkspace(manifestPath, artifact.FormatVersion)
	if err != nil {
		return nil, &ManifestError{Err: err}
	}
	return &Runner{
		programDir: programDir,
		exportDir:  ws.ExportDir(),
	}, nil
}

// Run invokes the exported function fnName with the given named inputs and
// returns its decoded output, or nil for a void function. The call blocks
// for the full load-encode-solve-decode pipeline; there is no partial
// result on failure.
func (r *Runner) Run(fnName string, inputs abi.InputMap) (abi.Value, error) {
	fnPath := filepath.Join(r.exportDir, fnName+".json")

	fh, err := os.Open(fnPath)
	if err != nil {
		return nil, &IoError{Path: fnPath, Err: err}
	}
	art, err := artifact.Read(fh)
	fh.Close()
	if err != nil {
		return nil, &SerdeError{Path: fnPath, Err: err}
	}
	fn, err := art.Compile(engine)
	if err != nil {
		return nil, &SerdeError{Path: fnPath, Err: err}
	}

	encoded, err := fn.Abi.Encode(inputs)
	if err != nil {
		return nil, &AbiError{Err: err}
	}

	stack, err := vm.Execute(fn.Program, encoded, engine, vm.NewDefaultHandler(r.programDir))
	if err != nil {
		return nil, diagnose(fn, err)
	}

	frame := stack.Peek()
	if frame == nil {
		return nil, nil
	}
	out, err := fn.Abi.DecodeReturn(frame.Extract(fn.Program.Functions[0].OutputIds))
	if err != nil {
		return nil, &AbiError{Err: err}
	}
	return out, nil
}

// ProgramDir returns the program root directory.
func (r *Runner) ProgramDir() string {
	return r.programDir
}

// ExportDir returns the resolved export directory.
func (r *Runner) ExportDir() string {
	return r.exportDir
}
