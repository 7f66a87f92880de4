package circuitrunner

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark/logger"
	"github.com/zkpipe/circuitrunner/artifact"
	"github.com/zkpipe/circuitrunner/vm"
)

// diagnose turns a solver failure into an ExecutionError, correlating it
// with the artifact's debug symbols when possible. Diagnosis is best-effort:
// if no source location can be recovered, the raw failure text is used
// unchanged.
func diagnose(fn *artifact.CompiledFunction, err error) *ExecutionError {
	var failure *vm.ExecutionFailure
	if !errors.As(err, &failure) || failure.Location < 0 {
		return &ExecutionError{Message: err.Error()}
	}
	loc, ok := fn.Debug.Locations[failure.Location]
	if !ok {
		return &ExecutionError{Message: err.Error()}
	}

	file := fmt.Sprintf("file %d", loc.FileID)
	if sf, ok := fn.FileMap[loc.FileID]; ok && sf.Path != "" {
		file = sf.Path
	}
	d := &Diagnostic{
		File:      file,
		Line:      loc.Line,
		Assertion: loc.Assertion,
	}

	msg := fmt.Sprintf("%s at %s:%d", failure.Reason, d.File, d.Line)
	if d.Assertion != "" {
		msg = fmt.Sprintf("%s (%s)", msg, d.Assertion)
	}

	log := logger.Logger()
	log.Error().
		Str("file", d.File).
		Int("line", d.Line).
		Str("assertion", d.Assertion).
		Msg("constraint not satisfied")

	return &ExecutionError{Message: msg, Diagnostic: d}
}
