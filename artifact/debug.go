package artifact

// SourceLocation points an execution failure back at the circuit source.
type SourceLocation struct {
	FileID    int    `json:"file"`
	Line      int    `json:"line"`
	Assertion string `json:"assertion,omitempty"`
}

// DebugInfo is the artifact's debug symbol table: location ids referenced by
// the bytecode, mapped to source locations.
type DebugInfo struct {
	Locations map[int]SourceLocation `json:"locations,omitempty"`
}

// SourceFile is one entry of the artifact's source file map.
type SourceFile struct {
	Path   string `json:"path"`
	Source string `json:"source,omitempty"`
}

type FileMap map[int]SourceFile
