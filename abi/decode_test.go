package abi

import (
	"testing"

	"github.com/consensys/gnark/constraint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func elems(vs ...Scalar) []constraint.Element {
	out := make([]constraint.Element, len(vs))
	for i, v := range vs {
		out[i] = constraint.Element(v)
	}
	return out
}

func TestDecodeReturnVoid(t *testing.T) {
	a := &ABI{}
	v, err := a.DecodeReturn(nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = a.DecodeReturn(elems(NewScalar(1)))
	assert.Error(t, err)
}

func TestDecodeReturnField(t *testing.T) {
	a := &ABI{ReturnType: &Type{Kind: KindField}}
	v, err := a.DecodeReturn(elems(NewScalar(5)))
	require.NoError(t, err)
	assert.Equal(t, NewScalar(5), v)
}

func TestDecodeReturnString(t *testing.T) {
	a := &ABI{ReturnType: &Type{Kind: KindString, Length: 2}}
	v, err := a.DecodeReturn(elems(NewScalar(uint64('o')), NewScalar(uint64('k'))))
	require.NoError(t, err)
	assert.Equal(t, Text("ok"), v)
}

func TestDecodeReturnStruct(t *testing.T) {
	a := &ABI{ReturnType: &Type{Kind: KindStruct, Fields: []NamedType{
		{Name: "lo", Type: Type{Kind: KindField}},
		{Name: "hi", Type: Type{Kind: KindField}},
	}}}
	v, err := a.DecodeReturn(elems(NewScalar(1), NewScalar(2)))
	require.NoError(t, err)
	assert.Equal(t, Record{"lo": NewScalar(1), "hi": NewScalar(2)}, v)
}

func TestDecodeReturnLengthMismatch(t *testing.T) {
	a := &ABI{ReturnType: &Type{Kind: KindArray, Length: 2, Elem: &Type{Kind: KindField}}}

	_, err := a.DecodeReturn(elems(NewScalar(1)))
	assert.Error(t, err)

	_, err = a.DecodeReturn(elems(NewScalar(1), NewScalar(2), NewScalar(3)))
	assert.Error(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	retType := Type{Kind: KindStruct, Fields: []NamedType{
		{Name: "name", Type: Type{Kind: KindString, Length: 3}},
		{Name: "xs", Type: Type{Kind: KindArray, Length: 2, Elem: &Type{Kind: KindField}}},
	}}
	a := &ABI{
		Parameters: []Parameter{{Name: "v", Type: retType}},
		ReturnType: &retType,
	}
	in := Record{
		"name": Text("abc"),
		"xs":   Sequence{NewScalar(10), NewScalar(20)},
	}
	flat, err := a.Encode(InputMap{"v": in})
	require.NoError(t, err)

	out, err := a.DecodeReturn(flat)
	require.NoError(t, err)
	assert.Equal(t, Value(in), out)
}
