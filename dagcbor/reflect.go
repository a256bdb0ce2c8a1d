package dagcbor

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/hyphacoop/go-dagcbor/cid"
)

// Marshal converts a Go value into its canonical DAG-CBOR encoding without
// the caller having to build a Value tree by hand.
//
// Adapted from the reflection walk in
// _examples/hyphacoop-go-dasl/drisl/drisl.go's Marshal doc comment, narrowed
// to the DAG-CBOR profile this package implements: there is no struct
// "toarray" mode, no time.Time/big.Int special-casing, and maps must have
// string keys, since those are the only shapes the IPLD data model allows.
//
// Rules:
//
//	bool                     -> Bool
//	any signed/unsigned int  -> Integer
//	float32/float64          -> Float (always encoded as F64)
//	string                   -> String
//	[]byte                   -> Bytes
//	cid.Cid                  -> Link
//	slice/array              -> List
//	map[string]V             -> Map
//	struct                   -> Map, keyed by field name or a `dagcbor`/`json` tag
//	pointer                  -> the pointed-to value, or Null if nil
//	nil interface/slice/map  -> Null
//
// Other kinds (channels, funcs, complex numbers, non-string map keys) return
// an EncodeUnsupportedType error.
func Marshal(v any) ([]byte, error) {
	val, err := toValue(reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}
	return Encode(val)
}

func toValue(rv reflect.Value) (Value, error) {
	if !rv.IsValid() {
		return Null(), nil
	}

	if c, ok := rv.Interface().(cid.Cid); ok {
		return Link(c), nil
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return toValue(rv.Elem())
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Uint64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Float64(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice:
		if rv.IsNil() {
			return Null(), nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Bytes(append([]byte(nil), rv.Bytes()...)), nil
		}
		return sliceToValue(rv)
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return Bytes(b), nil
		}
		return sliceToValue(rv)
	case reflect.Map:
		if rv.IsNil() {
			return Null(), nil
		}
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, newErr(EncodeUnsupportedType, -1, "map key type %s is not string", rv.Type().Key())
		}
		entries := make([]MapEntry, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			ev, err := toValue(iter.Value())
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, MapEntry{Key: iter.Key().String(), Value: ev})
		}
		return Map(entries), nil
	case reflect.Struct:
		return structToValue(rv)
	default:
		return Value{}, newErr(EncodeUnsupportedType, -1, "cannot marshal Go kind %s", rv.Kind())
	}
}

func sliceToValue(rv reflect.Value) (Value, error) {
	items := make([]Value, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		v, err := toValue(rv.Index(i))
		if err != nil {
			return Value{}, err
		}
		items[i] = v
	}
	return List(items), nil
}

type fieldSpec struct {
	index     int
	name      string
	omitempty bool
}

// fieldName reads the "dagcbor" tag, then the "json" tag, falling back to
// the Go field name (the tag priority of drisl.Marshal, with "dagcbor" in
// place of "cbor").
func fieldName(f reflect.StructField) (name string, omitempty, skip bool) {
	tag := f.Tag.Get("dagcbor")
	if tag == "" {
		tag = f.Tag.Get("json")
	}
	parts := strings.Split(tag, ",")
	if parts[0] == "-" {
		return "", false, true
	}
	name = f.Name
	if parts[0] != "" {
		name = parts[0]
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty, false
}

func structToValue(rv reflect.Value) (Value, error) {
	t := rv.Type()
	var specs []fieldSpec
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, omitempty, skip := fieldName(f)
		if skip {
			continue
		}
		specs = append(specs, fieldSpec{index: i, name: name, omitempty: omitempty})
	}

	entries := make([]MapEntry, 0, len(specs))
	for _, s := range specs {
		fv := rv.Field(s.index)
		if s.omitempty && fv.IsZero() {
			continue
		}
		v, err := toValue(fv)
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, MapEntry{Key: s.name, Value: v})
	}
	return Map(entries), nil
}

// Unmarshal decodes DAG-CBOR data into the Go value pointed to by v, the
// reflective counterpart to Marshal.
func Unmarshal(data []byte, v any) error {
	val, err := Decode(data)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("dagcbor: Unmarshal requires a non-nil pointer, got %T", v)
	}
	return fromValue(val, rv.Elem())
}

func fromValue(val Value, rv reflect.Value) error {
	if rv.Kind() == reflect.Pointer {
		if val.IsNull() {
			rv.Set(reflect.Zero(rv.Type()))
			return nil
		}
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return fromValue(val, rv.Elem())
	}

	if rv.Type() == reflect.TypeOf(cid.Cid{}) {
		c, err := val.AsLink()
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(c))
		return nil
	}

	if rv.Kind() == reflect.Interface {
		gv, err := toGoAny(val)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(gv))
		return nil
	}

	switch val.Kind() {
	case KindNull:
		rv.Set(reflect.Zero(rv.Type()))
		return nil
	case KindBool:
		b, _ := val.AsBool()
		if rv.Kind() != reflect.Bool {
			return fmt.Errorf("dagcbor: cannot unmarshal Bool into %s", rv.Type())
		}
		rv.SetBool(b)
		return nil
	case KindInt:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n, err := val.AsInt64()
			if err != nil {
				return err
			}
			rv.SetInt(n)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			n, err := val.AsUint64()
			if err != nil {
				return err
			}
			rv.SetUint(n)
		default:
			return fmt.Errorf("dagcbor: cannot unmarshal Integer into %s", rv.Type())
		}
		return nil
	case KindFloat:
		f, _ := val.AsFloat64()
		if rv.Kind() != reflect.Float32 && rv.Kind() != reflect.Float64 {
			return fmt.Errorf("dagcbor: cannot unmarshal Float into %s", rv.Type())
		}
		rv.SetFloat(f)
		return nil
	case KindString:
		s, _ := val.AsString()
		if rv.Kind() != reflect.String {
			return fmt.Errorf("dagcbor: cannot unmarshal String into %s", rv.Type())
		}
		rv.SetString(s)
		return nil
	case KindBytes:
		b, _ := val.AsBytes()
		if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() != reflect.Uint8 {
			return fmt.Errorf("dagcbor: cannot unmarshal Bytes into %s", rv.Type())
		}
		rv.SetBytes(append([]byte(nil), b...))
		return nil
	case KindList:
		items, _ := val.AsList()
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return fmt.Errorf("dagcbor: cannot unmarshal List into %s", rv.Type())
		}
		if rv.Kind() == reflect.Slice {
			rv.Set(reflect.MakeSlice(rv.Type(), len(items), len(items)))
		}
		for i, item := range items {
			if i >= rv.Len() {
				break
			}
			if err := fromValue(item, rv.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case KindMap:
		entries, _ := val.AsMap()
		switch rv.Kind() {
		case reflect.Map:
			if rv.Type().Key().Kind() != reflect.String {
				return fmt.Errorf("dagcbor: cannot unmarshal Map into %s", rv.Type())
			}
			if rv.IsNil() {
				rv.Set(reflect.MakeMapWithSize(rv.Type(), len(entries)))
			}
			for _, e := range entries {
				elem := reflect.New(rv.Type().Elem()).Elem()
				if err := fromValue(e.Value, elem); err != nil {
					return err
				}
				rv.SetMapIndex(reflect.ValueOf(e.Key).Convert(rv.Type().Key()), elem)
			}
			return nil
		case reflect.Struct:
			return fromValueStruct(entries, rv)
		default:
			return fmt.Errorf("dagcbor: cannot unmarshal Map into %s", rv.Type())
		}
	case KindLink:
		return fmt.Errorf("dagcbor: cannot unmarshal Link into %s (want cid.Cid)", rv.Type())
	default:
		return fmt.Errorf("dagcbor: unknown value kind %d", val.Kind())
	}
}

func fromValueStruct(entries []MapEntry, rv reflect.Value) error {
	byName := make(map[string]Value, len(entries))
	for _, e := range entries {
		byName[e.Key] = e.Value
	}
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, skip := fieldName(f)
		if skip {
			continue
		}
		v, ok := byName[name]
		if !ok {
			continue
		}
		if err := fromValue(v, rv.Field(i)); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
	}
	return nil
}

// toGoAny is the empty-interface decoding counterpart documented by
// drisl.Unmarshal: integers decode to uint64/int64, maps to
// map[string]any (DAG-CBOR, unlike general CBOR, restricts keys to
// strings so there is no interface{}-keyed map case to support).
func toGoAny(val Value) (any, error) {
	switch val.Kind() {
	case KindNull:
		return nil, nil
	case KindBool:
		b, _ := val.AsBool()
		return b, nil
	case KindInt:
		if val.IsNegative() {
			n, err := val.AsInt64()
			if err != nil {
				return nil, err
			}
			return n, nil
		}
		u, _ := val.AsUint64()
		return u, nil
	case KindFloat:
		f, _ := val.AsFloat64()
		return f, nil
	case KindString:
		s, _ := val.AsString()
		return s, nil
	case KindBytes:
		b, _ := val.AsBytes()
		return append([]byte(nil), b...), nil
	case KindLink:
		c, _ := val.AsLink()
		return c, nil
	case KindList:
		items, _ := val.AsList()
		out := make([]any, len(items))
		for i, item := range items {
			gv, err := toGoAny(item)
			if err != nil {
				return nil, err
			}
			out[i] = gv
		}
		return out, nil
	case KindMap:
		entries, _ := val.AsMap()
		out := make(map[string]any, len(entries))
		for _, e := range entries {
			gv, err := toGoAny(e.Value)
			if err != nil {
				return nil, err
			}
			out[e.Key] = gv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("dagcbor: unknown value kind %d", val.Kind())
	}
}
