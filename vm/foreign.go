package vm

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/consensys/gnark/logger"
)

// ForeignCallHandler resolves host-side oracle calls issued by the bytecode
// during execution.
type ForeignCallHandler interface {
	Call(name string, inputs []*big.Int) ([]*big.Int, error)
}

// DefaultHandler serves the built-in oracles: "print" logs its arguments,
// "read_file" reads an auxiliary file under the handler's root directory.
// Paths are byte-encoded in the inputs and may not escape the root.
type DefaultHandler struct {
	root string
}

func NewDefaultHandler(root string) *DefaultHandler {
	return &DefaultHandler{root: root}
}

func (h *DefaultHandler) Call(name string, inputs []*big.Int) ([]*big.Int, error) {
	switch name {
	case "print":
		log := logger.Logger()
		vals := make([]string, len(inputs))
		for i, x := range inputs {
			vals[i] = x.String()
		}
		log.Info().Str("values", strings.Join(vals, ", ")).Msg("circuit print")
		return nil, nil
	case "read_file":
		path, err := decodePath(inputs)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(h.root, path))
		if err != nil {
			return nil, err
		}
		out := make([]*big.Int, len(data))
		for i, b := range data {
			out[i] = big.NewInt(int64(b))
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown foreign call %q", name)
}

func decodePath(inputs []*big.Int) (string, error) {
	buf := make([]byte, len(inputs))
	for i, x := range inputs {
		if !x.IsUint64() || x.Uint64() > 255 {
			return "", fmt.Errorf("path byte %d out of range", i)
		}
		buf[i] = byte(x.Uint64())
	}
	path := string(buf)
	if !filepath.IsLocal(path) {
		return "", fmt.Errorf("path %q escapes the program directory", path)
	}
	return path, nil
}
