package circuitrunner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/consensys/gnark/constraint"
	"github.com/stretchr/testify/require"
	"github.com/zkpipe/circuitrunner/abi"
	"github.com/zkpipe/circuitrunner/artifact"
	"github.com/zkpipe/circuitrunner/manifest"
	"github.com/zkpipe/circuitrunner/vm"
)

// writeFixtureProject materializes a small exported project the way an
// export step would: a manifest at the root, one artifact per function under
// export/, and an auxiliary data file read by one of the circuits.
func writeFixtureProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	manifestData := `{"package": {"name": "fixtures", "type": "bin", "compiler_version": "1.0.0"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifest.Filename), []byte(manifestData), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "export"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aux.bin"), []byte{1, 2, 3}, 0o644))

	for name, art := range fixtureArtifacts() {
		require.NoError(t, artifact.Save(art, filepath.Join(dir, "export", name+".json")))
	}
	return dir
}

func fieldParam(name string) abi.Parameter {
	return abi.Parameter{Name: name, Type: abi.Type{Kind: abi.KindField}}
}

func fixtureArtifacts() map[string]*artifact.Artifact {
	arts := map[string]*artifact.Artifact{}

	// addition(x, y) -> x + y
	arts["addition"] = artifact.New("addition",
		abi.ABI{
			Parameters: []abi.Parameter{fieldParam("x"), fieldParam("y")},
			ReturnType: &abi.Type{Kind: abi.KindField},
		},
		&vm.Program{Functions: []vm.Function{{
			NumInputs:  2,
			NumWitness: 4,
			OutputIds:  []int{3},
			Instructions: []vm.Instruction{
				{Type: vm.LinComb, Inputs: []int{1, 2}, Coef: []constraint.Element{engine.One(), engine.One()}, Outputs: []int{3}},
			},
		}}},
		artifact.DebugInfo{}, nil, engine)

	// identity(x) -> x
	arts["identity"] = artifact.New("identity",
		abi.ABI{
			Parameters: []abi.Parameter{fieldParam("x")},
			ReturnType: &abi.Type{Kind: abi.KindField},
		},
		&vm.Program{Functions: []vm.Function{{
			NumInputs:  1,
			NumWitness: 2,
			OutputIds:  []int{1},
		}}},
		artifact.DebugInfo{}, nil, engine)

	// sum_pair(p: {a, b}) -> a + b
	arts["sum_pair"] = artifact.New("sum_pair",
		abi.ABI{
			Parameters: []abi.Parameter{{Name: "p", Type: abi.Type{
				Kind: abi.KindStruct,
				Fields: []abi.NamedType{
					{Name: "a", Type: abi.Type{Kind: abi.KindField}},
					{Name: "b", Type: abi.Type{Kind: abi.KindField}},
				},
			}}},
			ReturnType: &abi.Type{Kind: abi.KindField},
		},
		&vm.Program{Functions: []vm.Function{{
			NumInputs:  2,
			NumWitness: 4,
			OutputIds:  []int{3},
			Instructions: []vm.Instruction{
				{Type: vm.LinComb, Inputs: []int{1, 2}, Coef: []constraint.Element{engine.One(), engine.One()}, Outputs: []int{3}},
			},
		}}},
		artifact.DebugInfo{}, nil, engine)

	// assert_equal(x, y): void, fails unless x == y
	arts["assert_equal"] = artifact.New("assert_equal",
		abi.ABI{
			Parameters: []abi.Parameter{fieldParam("x"), fieldParam("y")},
		},
		&vm.Program{Functions: []vm.Function{{
			NumInputs:  2,
			NumWitness: 4,
			OutputIds:  []int{},
			Instructions: []vm.Instruction{
				{Type: vm.LinComb, Inputs: []int{1, 2}, Coef: []constraint.Element{engine.One(), engine.Neg(engine.One())}, Outputs: []int{3}},
				{Type: vm.AssertZero, Inputs: []int{3}, ExtraId: 0},
			},
		}}},
		artifact.DebugInfo{Locations: map[int]artifact.SourceLocation{
			0: {FileID: 0, Line: 3, Assertion: "assert(x == y)"},
		}},
		artifact.FileMap{0: {Path: "src/assert_equal.zk"}},
		engine)

	// aux_sum() -> sum of the bytes of aux.bin, fetched via a foreign call
	path := "aux.bin"
	insns := make([]vm.Instruction, 0, len(path)+2)
	pathIds := make([]int, len(path))
	for i := 0; i < len(path); i++ {
		pathIds[i] = i + 1
		insns = append(insns, vm.Instruction{
			Type:    vm.LinComb,
			Const:   engine.FromInterface(uint64(path[i])),
			Outputs: []int{i + 1},
		})
	}
	dataIds := []int{len(path) + 1, len(path) + 2, len(path) + 3}
	insns = append(insns, vm.Instruction{
		Type: vm.ForeignCall, Name: "read_file", Inputs: pathIds, Outputs: dataIds,
	})
	sumId := len(path) + 4
	insns = append(insns, vm.Instruction{
		Type:   vm.LinComb,
		Inputs: dataIds,
		Coef: []constraint.Element{
			engine.One(), engine.One(), engine.One(),
		},
		Outputs: []int{sumId},
	})
	arts["aux_sum"] = artifact.New("aux_sum",
		abi.ABI{ReturnType: &abi.Type{Kind: abi.KindField}},
		&vm.Program{Functions: []vm.Function{{
			NumInputs:    0,
			NumWitness:   sumId + 1,
			OutputIds:    []int{sumId},
			Instructions: insns,
		}}},
		artifact.DebugInfo{}, nil, engine)

	return arts
}
