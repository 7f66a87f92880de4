package abi

import (
	"fmt"
	"sort"

	"github.com/consensys/gnark/constraint"
)

// Encode flattens the named inputs against the declared interface into the
// evaluator's flat input vector, parameters in declaration order. Every
// declared parameter must be supplied, no extra names may be present, and
// each value must match its declared shape exactly.
func (a *ABI) Encode(inputs InputMap) ([]constraint.Element, error) {
	if len(inputs) != len(a.Parameters) {
		return nil, fmt.Errorf("expected %d parameters, got %d (%s)",
			len(a.Parameters), len(inputs), describeNameMismatch(a, inputs))
	}
	flat := make([]constraint.Element, 0, a.InputLen())
	for i := range a.Parameters {
		p := &a.Parameters[i]
		v, ok := inputs[p.Name]
		if !ok {
			return nil, fmt.Errorf("missing parameter %q", p.Name)
		}
		var err error
		flat, err = flattenValue(flat, v, &p.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
	}
	return flat, nil
}

func flattenValue(flat []constraint.Element, v Value, t *Type) ([]constraint.Element, error) {
	switch t.Kind {
	case KindField:
		s, ok := v.(Scalar)
		if !ok {
			return nil, fmt.Errorf("expected %s, got %s", t, valueKind(v))
		}
		return append(flat, constraint.Element(s)), nil
	case KindString:
		txt, ok := v.(Text)
		if !ok {
			return nil, fmt.Errorf("expected %s, got %s", t, valueKind(v))
		}
		if len(txt) != t.Length {
			return nil, fmt.Errorf("expected string of length %d, got %d", t.Length, len(txt))
		}
		for i := 0; i < len(txt); i++ {
			flat = append(flat, engine.FromInterface(uint64(txt[i])))
		}
		return flat, nil
	case KindArray:
		seq, ok := v.(Sequence)
		if !ok {
			return nil, fmt.Errorf("expected %s, got %s", t, valueKind(v))
		}
		if len(seq) != t.Length {
			return nil, fmt.Errorf("expected array of length %d, got %d", t.Length, len(seq))
		}
		for _, e := range seq {
			var err error
			flat, err = flattenValue(flat, e, t.Elem)
			if err != nil {
				return nil, err
			}
		}
		return flat, nil
	case KindStruct:
		rec, ok := v.(Record)
		if !ok {
			return nil, fmt.Errorf("expected %s, got %s", t, valueKind(v))
		}
		if len(rec) != len(t.Fields) {
			return nil, fmt.Errorf("expected %d struct fields, got %d", len(t.Fields), len(rec))
		}
		// fields are matched strictly by name, never by position
		for i := range t.Fields {
			f := &t.Fields[i]
			fv, ok := rec[f.Name]
			if !ok {
				return nil, fmt.Errorf("missing struct field %q", f.Name)
			}
			var err error
			flat, err = flattenValue(flat, fv, &f.Type)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name, err)
			}
		}
		return flat, nil
	}
	panic(fmt.Sprintf("unknown type kind %q", t.Kind))
}

func valueKind(v Value) string {
	switch v.(type) {
	case Scalar:
		return "scalar"
	case Sequence:
		return "sequence"
	case Text:
		return "text"
	case Record:
		return "record"
	}
	return fmt.Sprintf("%T", v)
}

func describeNameMismatch(a *ABI, inputs InputMap) string {
	declared := make(map[string]bool, len(a.Parameters))
	var missing, extra []string
	for i := range a.Parameters {
		declared[a.Parameters[i].Name] = true
		if _, ok := inputs[a.Parameters[i].Name]; !ok {
			missing = append(missing, a.Parameters[i].Name)
		}
	}
	for name := range inputs {
		if !declared[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(missing)
	sort.Strings(extra)
	return fmt.Sprintf("missing %v, extra %v", missing, extra)
}
