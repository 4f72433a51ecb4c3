package yaml

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/shapestone/shape-yaml/internal/parser"
)

// Unmarshal parses the YAML-encoded data and stores the result in the
// value pointed to by v.
//
// Unmarshal uses the inverse of the encodings that Marshal uses,
// allocating maps, slices, and pointers as necessary, with the following
// additional rules:
//
// To unmarshal YAML into a pointer, Unmarshal first handles the case of
// the YAML being the literal null. In that case, Unmarshal sets the
// pointer to nil. Otherwise, Unmarshal unmarshals the YAML into the value
// pointed at by the pointer, allocating a new value for it to point to if
// the pointer is nil.
//
// To unmarshal YAML into a struct, Unmarshal matches incoming keys to the
// keys used by Marshal (either the struct field name or its tag),
// preferring an exact match but also accepting a case-insensitive one.
// Only exported fields are set.
//
// To unmarshal YAML into an interface value, Unmarshal stores one of
// these in the interface value:
//
//	bool, for YAML booleans
//	int64, for YAML integers
//	float64, for YAML floats
//	string, for YAML strings
//	[]interface{}, for YAML sequences
//	map[string]interface{}, for YAML mappings
//	nil for YAML null
//
// If the YAML is not valid, Unmarshal returns a parse error.
//
// Example:
//
//	type Config struct {
//	    Name string
//	    Port int
//	}
//	var cfg Config
//	err := yaml.Unmarshal([]byte("name: server\nport: 8080"), &cfg)
func Unmarshal(data []byte, v interface{}) error {
	value, err := Parse(string(data))
	if err != nil {
		return err
	}
	return unmarshalInto(value, v)
}

// Unmarshaler is the interface implemented by types that can unmarshal a
// YAML description of themselves.
type Unmarshaler interface {
	UnmarshalYAML([]byte) error
}

func unmarshalInto(value interface{}, v interface{}) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || v == nil {
		return errors.New("yaml: Unmarshal(nil)")
	}
	if rv.Kind() != reflect.Ptr {
		return errors.New("yaml: Unmarshal(non-pointer " + rv.Type().String() + ")")
	}
	if rv.IsNil() {
		return errors.New("yaml: Unmarshal(nil " + rv.Type().String() + ")")
	}

	if rv.Type().Implements(reflect.TypeOf((*Unmarshaler)(nil)).Elem()) {
		encoded, err := Marshal(toNative(value))
		if err != nil {
			return err
		}
		return rv.Interface().(Unmarshaler).UnmarshalYAML(encoded)
	}

	return unmarshalValue(value, rv.Elem())
}

// toNative recursively converts the builder's value tree (*parser.OrderedMap
// / []interface{} / scalars) into the plain map[string]interface{} /
// []interface{} shape an interface{} target receives.
func toNative(value interface{}) interface{} {
	switch v := value.(type) {
	case *parser.OrderedMap:
		m := make(map[string]interface{}, v.Len())
		for _, item := range v.Items() {
			m[stringKey(item.Key)] = toNative(item.Value)
		}
		return m
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, elem := range v {
			out[i] = toNative(elem)
		}
		return out
	default:
		return value
	}
}

// stringKey renders a mapping key (any scalar type the builder can
// produce) as a string, for targets that only accept string keys.
func stringKey(key interface{}) string {
	switch k := key.(type) {
	case string:
		return k
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(k)
	case int64:
		return strconv.FormatInt(k, 10)
	case float64:
		return strconv.FormatFloat(k, 'g', -1, 64)
	default:
		return fmt.Sprint(k)
	}
}

// unmarshalValue unmarshals one decoded value (as produced by Parse) into
// a reflect.Value.
func unmarshalValue(value interface{}, rv reflect.Value) error {
	if value == nil {
		rv.Set(reflect.Zero(rv.Type()))
		return nil
	}

	if rv.Kind() == reflect.Interface && rv.NumMethod() == 0 {
		rv.Set(reflect.ValueOf(toNative(value)))
		return nil
	}

	// A struct field declared *parser.OrderedMap keeps the parsed
	// mapping's own key order instead of being converted to a Go map or
	// struct — Marshal's yamlOrderedMapEnc is the encode-side half of
	// this.
	if rv.Type() == orderedMapType {
		om, ok := value.(*parser.OrderedMap)
		if !ok {
			return fmt.Errorf("yaml: cannot unmarshal %T into Go value of type %s", value, rv.Type())
		}
		rv.Set(reflect.ValueOf(om))
		return nil
	}

	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return unmarshalValue(value, rv.Elem())
	}

	switch v := value.(type) {
	case *parser.OrderedMap:
		return unmarshalMapping(v, rv)
	case []interface{}:
		return unmarshalSequence(v, rv)
	default:
		return unmarshalScalar(value, rv)
	}
}

// unmarshalScalar unmarshals a null/bool/int64/float64/string value into rv.
func unmarshalScalar(val interface{}, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.String:
		if s, ok := val.(string); ok {
			rv.SetString(s)
			return nil
		}
		return fmt.Errorf("yaml: cannot unmarshal %T into Go value of type string", val)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch v := val.(type) {
		case int64:
			if rv.OverflowInt(v) {
				return fmt.Errorf("yaml: value %d overflows %s", v, rv.Type())
			}
			rv.SetInt(v)
			return nil
		case float64:
			if v == float64(int64(v)) {
				i := int64(v)
				if rv.OverflowInt(i) {
					return fmt.Errorf("yaml: value %v overflows %s", v, rv.Type())
				}
				rv.SetInt(i)
				return nil
			}
			return fmt.Errorf("yaml: cannot unmarshal number %v into Go value of type %s", v, rv.Type())
		}
		return fmt.Errorf("yaml: cannot unmarshal %T into Go value of type %s", val, rv.Type())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch v := val.(type) {
		case int64:
			if v < 0 || rv.OverflowUint(uint64(v)) {
				return fmt.Errorf("yaml: value %d overflows %s", v, rv.Type())
			}
			rv.SetUint(uint64(v))
			return nil
		case float64:
			if v < 0 || v != float64(uint64(v)) {
				return fmt.Errorf("yaml: cannot unmarshal number %v into Go value of type %s", v, rv.Type())
			}
			u := uint64(v)
			if rv.OverflowUint(u) {
				return fmt.Errorf("yaml: value %v overflows %s", v, rv.Type())
			}
			rv.SetUint(u)
			return nil
		}
		return fmt.Errorf("yaml: cannot unmarshal %T into Go value of type %s", val, rv.Type())

	case reflect.Float32, reflect.Float64:
		switch v := val.(type) {
		case float64:
			if rv.OverflowFloat(v) {
				return fmt.Errorf("yaml: value %v overflows %s", v, rv.Type())
			}
			rv.SetFloat(v)
			return nil
		case int64:
			f := float64(v)
			if rv.OverflowFloat(f) {
				return fmt.Errorf("yaml: value %v overflows %s", v, rv.Type())
			}
			rv.SetFloat(f)
			return nil
		}
		return fmt.Errorf("yaml: cannot unmarshal %T into Go value of type %s", val, rv.Type())

	case reflect.Bool:
		if b, ok := val.(bool); ok {
			rv.SetBool(b)
			return nil
		}
		// a bool target also accepts the !!bool words (yes/no, on/off, y/n)
		if s, ok := val.(string); ok {
			if b, err := parser.LookupMarshaller("!!bool").Marshalled(s); err == nil {
				rv.SetBool(b.(bool))
				return nil
			}
		}
		return fmt.Errorf("yaml: cannot unmarshal %T into Go value of type bool", val)

	default:
		return fmt.Errorf("yaml: unsupported type %s", rv.Type())
	}
}

// unmarshalMapping unmarshals an *parser.OrderedMap into a struct or map.
func unmarshalMapping(m *parser.OrderedMap, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Struct:
		return unmarshalStruct(m, rv)
	case reflect.Map:
		return unmarshalMap(m, rv)
	default:
		return fmt.Errorf("yaml: cannot unmarshal mapping into Go value of type %s", rv.Type())
	}
}

// unmarshalStruct sets struct fields from a mapping's entries, matching
// the yaml tag (or lowercased field name) exactly first and falling back
// to a case-insensitive match.
func unmarshalStruct(m *parser.OrderedMap, rv reflect.Value) error {
	structType := rv.Type()

	exact := make(map[string]int, structType.NumField())
	folded := make(map[string]int, structType.NumField())
	marshallers := make(map[int]parser.Marshaller)
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.PkgPath != "" {
			continue
		}
		info := getFieldInfo(field)
		if info.skip {
			continue
		}
		exact[info.name] = i
		folded[strings.ToLower(info.name)] = i
		if info.marshaller != nil {
			marshallers[i] = info.marshaller
		}
	}

	for _, item := range m.Items() {
		key := stringKey(item.Key)
		idx, ok := exact[key]
		if !ok {
			idx, ok = folded[strings.ToLower(key)]
		}
		if !ok {
			continue
		}
		val := item.Value
		// A tag=NAME field coerces its decoded value through the same
		// internal/parser.Marshaller a parsed !!NAME tag applies, before
		// it ever reaches unmarshalValue's Go-kind dispatch.
		if marshaller, ok := marshallers[idx]; ok {
			coerced, err := marshaller.Marshalled(val)
			if err != nil {
				return err
			}
			val = coerced
		}
		if err := unmarshalValue(val, rv.Field(idx)); err != nil {
			return err
		}
	}

	return nil
}

// unmarshalMap unmarshals a mapping's entries into a Go map.
func unmarshalMap(m *parser.OrderedMap, rv reflect.Value) error {
	mapType := rv.Type()
	if mapType.Key().Kind() != reflect.String {
		return fmt.Errorf("yaml: unsupported map key type %s", mapType.Key())
	}
	if rv.IsNil() {
		rv.Set(reflect.MakeMapWithSize(mapType, m.Len()))
	}

	valueType := mapType.Elem()
	for _, item := range m.Items() {
		elemVal := reflect.New(valueType).Elem()
		if err := unmarshalValue(item.Value, elemVal); err != nil {
			return err
		}
		rv.SetMapIndex(reflect.ValueOf(stringKey(item.Key)).Convert(mapType.Key()), elemVal)
	}

	return nil
}

// unmarshalSequence unmarshals a []interface{} into a slice or array.
func unmarshalSequence(items []interface{}, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Slice:
		sliceType := rv.Type()
		slice := reflect.MakeSlice(sliceType, len(items), len(items))
		for i, item := range items {
			if err := unmarshalValue(item, slice.Index(i)); err != nil {
				return err
			}
		}
		rv.Set(slice)
		return nil

	case reflect.Array:
		if len(items) > rv.Len() {
			return fmt.Errorf("yaml: sequence length %d exceeds target array length %d", len(items), rv.Len())
		}
		for i, item := range items {
			if err := unmarshalValue(item, rv.Index(i)); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("yaml: cannot unmarshal sequence into Go value of type %s", rv.Type())
	}
}
