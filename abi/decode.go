package abi

import (
	"fmt"

	"github.com/consensys/gnark/constraint"
)

// DecodeReturn recovers the function's return value from the flat elements
// read out of a solved witness frame. For a void function (nil ReturnType)
// the elements must be empty and the result is nil.
func (a *ABI) DecodeReturn(elems []constraint.Element) (Value, error) {
	if a.ReturnType == nil {
		if len(elems) != 0 {
			return nil, fmt.Errorf("void function produced %d return elements", len(elems))
		}
		return nil, nil
	}
	v, rest, err := unflattenValue(elems, a.ReturnType)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%d trailing return elements after %s", len(rest), a.ReturnType)
	}
	return v, nil
}

func unflattenValue(elems []constraint.Element, t *Type) (Value, []constraint.Element, error) {
	switch t.Kind {
	case KindField:
		if len(elems) < 1 {
			return nil, nil, fmt.Errorf("not enough elements for %s", t)
		}
		return Scalar(elems[0]), elems[1:], nil
	case KindString:
		if len(elems) < t.Length {
			return nil, nil, fmt.Errorf("not enough elements for %s", t)
		}
		buf := make([]byte, t.Length)
		for i := 0; i < t.Length; i++ {
			c, ok := engine.Uint64(elems[i])
			if !ok || c > 255 {
				return nil, nil, fmt.Errorf("element %s is not a character byte", engine.String(elems[i]))
			}
			buf[i] = byte(c)
		}
		return Text(buf), elems[t.Length:], nil
	case KindArray:
		seq := make(Sequence, t.Length)
		var err error
		for i := 0; i < t.Length; i++ {
			seq[i], elems, err = unflattenValue(elems, t.Elem)
			if err != nil {
				return nil, nil, err
			}
		}
		return seq, elems, nil
	case KindStruct:
		rec := make(Record, len(t.Fields))
		var err error
		for i := range t.Fields {
			f := &t.Fields[i]
			rec[f.Name], elems, err = unflattenValue(elems, &f.Type)
			if err != nil {
				return nil, nil, fmt.Errorf("field %q: %w", f.Name, err)
			}
		}
		return rec, elems, nil
	}
	panic(fmt.Sprintf("unknown type kind %q", t.Kind))
}
