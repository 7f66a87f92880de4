package circuitrunner

// The error taxonomy of the runner. Construction surfaces only
// *ManifestError; Run surfaces *IoError, *SerdeError, *AbiError or
// *ExecutionError. Nothing is retried and nothing is swallowed.

// ManifestError means the package manifest is missing or malformed, or the
// workspace and export directory could not be resolved.
type ManifestError struct {
	Err error
}

func (e *ManifestError) Error() string { return "manifest: " + e.Err.Error() }
func (e *ManifestError) Unwrap() error { return e.Err }

// IoError is a filesystem failure reading an artifact file.
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string { return "read artifact: " + e.Err.Error() }
func (e *IoError) Unwrap() error { return e.Err }

// SerdeError means artifact content is malformed or was produced by an
// incompatible toolchain version.
type SerdeError struct {
	Path string
	Err  error
}

func (e *SerdeError) Error() string { return "artifact " + e.Path + ": " + e.Err.Error() }
func (e *SerdeError) Unwrap() error { return e.Err }

// AbiError is a shape mismatch between supplied or produced values and the
// function's declared interface, at encode or decode time.
type AbiError struct {
	Err error
}

func (e *AbiError) Error() string { return "abi: " + e.Err.Error() }
func (e *AbiError) Unwrap() error { return e.Err }

// ExecutionError means the solver could not produce a satisfying witness.
// Message is a rendered description suitable for direct display. Diagnostic
// carries the source-level correlation when it was available, nil otherwise.
type ExecutionError struct {
	Message    string
	Diagnostic *Diagnostic
}

// Diagnostic is the source-level correlation of an execution failure.
type Diagnostic struct {
	File      string
	Line      int
	Assertion string
}

func (e *ExecutionError) Error() string { return e.Message }
