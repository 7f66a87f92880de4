package abi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// ToValue converts an arbitrary host value into a Value in two stages: the
// value is first projected onto the universal generic tree (nil, bool,
// json.Number, string, []interface{}, map[string]interface{}), then the tree
// is mapped to a Value by FromGeneric. Conversion itself never fails; an
// error is only possible when the projection of an unsupported host type
// fails.
func ToValue(v interface{}) (Value, error) {
	tree, err := project(v)
	if err != nil {
		return nil, err
	}
	return FromGeneric(tree), nil
}

// project turns a host value into the generic tree. Scalar kinds and byte
// slices are projected explicitly; structs, typed slices and maps are
// walked structurally, falling back to their JSON form only for types with
// custom marshalling.
func project(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case bool, string, json.Number:
		return x, nil
	case int:
		return json.Number(strconv.FormatInt(int64(x), 10)), nil
	case int8:
		return json.Number(strconv.FormatInt(int64(x), 10)), nil
	case int16:
		return json.Number(strconv.FormatInt(int64(x), 10)), nil
	case int32:
		return json.Number(strconv.FormatInt(int64(x), 10)), nil
	case int64:
		return json.Number(strconv.FormatInt(x, 10)), nil
	case uint:
		return json.Number(strconv.FormatUint(uint64(x), 10)), nil
	case uint8:
		return json.Number(strconv.FormatUint(uint64(x), 10)), nil
	case uint16:
		return json.Number(strconv.FormatUint(uint64(x), 10)), nil
	case uint32:
		return json.Number(strconv.FormatUint(uint64(x), 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(x, 10)), nil
	case float32:
		return json.Number(strconv.FormatFloat(float64(x), 'g', -1, 64)), nil
	case float64:
		return json.Number(strconv.FormatFloat(x, 'g', -1, 64)), nil
	case []byte:
		// byte slices become element sequences, never text
		a := make([]interface{}, len(x))
		for i, b := range x {
			a[i] = json.Number(strconv.FormatUint(uint64(b), 10))
		}
		return a, nil
	case []interface{}:
		a := make([]interface{}, len(x))
		for i, e := range x {
			p, err := project(e)
			if err != nil {
				return nil, err
			}
			a[i] = p
		}
		return a, nil
	case map[string]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, e := range x {
			p, err := project(e)
			if err != nil {
				return nil, err
			}
			m[k] = p
		}
		return m, nil
	default:
		return projectReflect(v)
	}
}

// projectReflect walks structs, slices and maps structurally so that byte
// slices nested anywhere reach the explicit byte-slice case instead of the
// JSON layer's base64 encoding. Types with custom JSON marshalling keep
// their JSON form.
func projectReflect(v interface{}) (interface{}, error) {
	if _, ok := v.(json.Marshaler); ok {
		return projectJSON(v)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return project(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		a := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			p, err := project(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			a[i] = p
		}
		return a, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return projectJSON(v)
		}
		m := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			p, err := project(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			m[iter.Key().String()] = p
		}
		return m, nil
	case reflect.Struct:
		rt := rv.Type()
		m := make(map[string]interface{}, rt.NumField())
		for i := 0; i < rt.NumField(); i++ {
			sf := rt.Field(i)
			if sf.PkgPath != "" || sf.Anonymous {
				// embedded fields keep encoding/json's flattening rules
				return projectJSON(v)
			}
			name := sf.Name
			if tag, ok := sf.Tag.Lookup("json"); ok {
				if tag == "-" {
					continue
				}
				if tagName, _, _ := strings.Cut(tag, ","); tagName != "" {
					name = tagName
				}
			}
			p, err := project(rv.Field(i).Interface())
			if err != nil {
				return nil, err
			}
			m[name] = p
		}
		return m, nil
	}
	return projectJSON(v)
}

func projectJSON(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("project value of type %T: %w", v, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree interface{}
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("project value of type %T: %w", v, err)
	}
	return tree, nil
}

// FromGeneric maps a generic tree to a Value:
//
//   - nil maps to Scalar(0)
//   - booleans map to Scalar(1) or Scalar(0)
//   - numbers map to Scalar: signed 64-bit integers via the field's
//     additive-inverse convention for negatives, unsigned 64-bit integers
//     directly, and non-integral numbers truncated through a uint64 cast
//   - strings map to Text unchanged
//   - arrays map to Sequence, order preserved
//   - objects map to Record
//
// Values above the field order wrap per field arithmetic, silently.
func FromGeneric(tree interface{}) Value {
	switch x := tree.(type) {
	case nil:
		return NewScalar(0)
	case bool:
		if x {
			return NewScalar(1)
		}
		return NewScalar(0)
	case json.Number:
		return numberToScalar(x)
	case string:
		return Text(x)
	case []interface{}:
		seq := make(Sequence, len(x))
		for i, e := range x {
			seq[i] = FromGeneric(e)
		}
		return seq
	case map[string]interface{}:
		rec := make(Record, len(x))
		for k, e := range x {
			rec[k] = FromGeneric(e)
		}
		return rec
	}
	panic(fmt.Sprintf("unexpected generic value of type %T", tree))
}

func numberToScalar(n json.Number) Scalar {
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return NewScalar(i)
	}
	if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
		return NewScalar(u)
	}
	f, err := n.Float64()
	if err != nil {
		panic(fmt.Sprintf("unparseable number %q", n.String()))
	}
	return NewScalar(truncateToUint64(f))
}

// truncateToUint64 is a saturating cast: negatives and NaN go to 0, values
// past the range go to the maximum. Precision loss is accepted silently.
func truncateToUint64(f float64) uint64 {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(f)
}
