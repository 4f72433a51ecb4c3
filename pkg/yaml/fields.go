package yaml

import (
	"reflect"
	"strings"

	"github.com/shapestone/shape-yaml/internal/parser"
)

// fieldInfo contains information about a struct field for marshaling/unmarshaling.
type fieldInfo struct {
	name       string
	skip       bool
	omitEmpty  bool
	marshaller parser.Marshaller // set by a "tag=NAME" option, nil otherwise
}

// getFieldInfo extracts field information from a struct field's `yaml` tag.
//
// A third tag option, tag=NAME, names one of the core-schema tags the
// parser itself resolves for an explicit !!NAME in YAML source
// (str/int/null/bool/map/seq/set). Naming it on a struct field routes the
// field's value through the same internal/parser.Marshaller on both
// Marshal and Unmarshal, so `yaml:"port,tag=str"` quotes an int field the
// same way `!!str` coerces a parsed scalar.
func getFieldInfo(field reflect.StructField) fieldInfo {
	tag := field.Tag.Get("yaml")

	// No tag - use lowercase field name (YAML convention)
	if tag == "" {
		return fieldInfo{name: strings.ToLower(field.Name)}
	}

	parts := strings.Split(tag, ",")
	name := parts[0]

	// Check for "-" (skip field)
	if name == "-" {
		return fieldInfo{skip: true}
	}

	// Use field name if tag name is empty
	if name == "" {
		name = strings.ToLower(field.Name)
	}

	info := fieldInfo{name: name}
	for _, opt := range parts[1:] {
		switch {
		case opt == "omitempty":
			info.omitEmpty = true
		case strings.HasPrefix(opt, "tag="):
			info.marshaller = parser.LookupMarshaller("!!" + strings.TrimPrefix(opt, "tag="))
		}
	}
	return info
}

// orderedMapType is the *parser.OrderedMap type: the mapping value Parse
// itself produces, which a struct can also hold directly to preserve
// source key order through Marshal instead of the alphabetic order
// buildYAMLMapEncoder gives a plain Go map.
var orderedMapType = reflect.TypeOf((*parser.OrderedMap)(nil))

// isEmptyValue checks if a reflect.Value is considered empty.
func isEmptyValue(rv reflect.Value) bool {
	if rv.Type() == orderedMapType {
		return rv.IsNil() || rv.Interface().(*parser.OrderedMap).Len() == 0
	}
	switch rv.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return rv.IsNil()
	}
	return false
}
