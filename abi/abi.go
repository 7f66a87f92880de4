package abi

import "fmt"

// Type kinds of the interface descriptor.
const (
	KindField  = "field"
	KindString = "string"
	KindArray  = "array"
	KindStruct = "struct"
)

// Type is the declared shape of a parameter or return value.
type Type struct {
	Kind   string      `json:"kind"`
	Length int         `json:"length,omitempty"` // string and array
	Elem   *Type       `json:"elem,omitempty"`   // array
	Fields []NamedType `json:"fields,omitempty"` // struct
}

type NamedType struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// Parameter is a named entry of a function's declared interface.
type Parameter struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// ABI is a function's interface descriptor: ordered parameters and the
// declared return shape. A nil ReturnType declares a void function.
type ABI struct {
	Parameters []Parameter `json:"parameters"`
	ReturnType *Type       `json:"return_type,omitempty"`
}

// Validate checks that the declared shape is well formed: a known kind,
// non-negative lengths, a present element type for arrays and named struct
// fields. The remaining methods of Type assume a validated shape.
func (t *Type) Validate() error {
	switch t.Kind {
	case KindField:
		return nil
	case KindString:
		if t.Length < 0 {
			return fmt.Errorf("string with negative length %d", t.Length)
		}
		return nil
	case KindArray:
		if t.Length < 0 {
			return fmt.Errorf("array with negative length %d", t.Length)
		}
		if t.Elem == nil {
			return fmt.Errorf("array without an element type")
		}
		return t.Elem.Validate()
	case KindStruct:
		for i := range t.Fields {
			f := &t.Fields[i]
			if f.Name == "" {
				return fmt.Errorf("struct field without a name")
			}
			if err := f.Type.Validate(); err != nil {
				return fmt.Errorf("field %q: %w", f.Name, err)
			}
		}
		return nil
	}
	return fmt.Errorf("unknown type kind %q", t.Kind)
}

// Validate checks every declared parameter and the return type.
func (a *ABI) Validate() error {
	for i := range a.Parameters {
		p := &a.Parameters[i]
		if err := p.Type.Validate(); err != nil {
			return fmt.Errorf("parameter %q: %w", p.Name, err)
		}
	}
	if a.ReturnType != nil {
		if err := a.ReturnType.Validate(); err != nil {
			return fmt.Errorf("return type: %w", err)
		}
	}
	return nil
}

// FlatLen returns the number of field elements the type flattens to.
func (t *Type) FlatLen() int {
	switch t.Kind {
	case KindField:
		return 1
	case KindString:
		return t.Length
	case KindArray:
		return t.Length * t.Elem.FlatLen()
	case KindStruct:
		n := 0
		for i := range t.Fields {
			n += t.Fields[i].Type.FlatLen()
		}
		return n
	}
	panic(fmt.Sprintf("unknown type kind %q", t.Kind))
}

// InputLen returns the total flattened length of all parameters.
func (a *ABI) InputLen() int {
	n := 0
	for i := range a.Parameters {
		n += a.Parameters[i].Type.FlatLen()
	}
	return n
}

func (t *Type) String() string {
	switch t.Kind {
	case KindField:
		return "field"
	case KindString:
		return fmt.Sprintf("string<%d>", t.Length)
	case KindArray:
		return fmt.Sprintf("[%s; %d]", t.Elem.String(), t.Length)
	case KindStruct:
		return "struct"
	}
	return t.Kind
}
