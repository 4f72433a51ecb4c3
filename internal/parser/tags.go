package parser

import (
	"strconv"
	"strings"

	"github.com/shapestone/shape-yaml/internal/tokenizer"
)

// Marshaller is the value-coercion associated with an explicit !!tag
// (spec.md §4.2, "Tag application"). An unknown tag handle resolves to an
// unknownMarshaller, never to nil; applying it is itself an error.
type Marshaller interface {
	Name() string
	Marshalled(value interface{}) (interface{}, error)
}

// registry maps the accepted tag names (spec.md §6) to their marshaller.
// Unknown names are absent; LookupMarshaller maps them to an
// unknownMarshaller, so an unrecognized !tag is accepted at scan time and
// only fails once applied.
var registry = map[string]Marshaller{
	"str":  strMarshaller{},
	"int":  intMarshaller{},
	"null": nullMarshaller{},
	"bool": boolMarshaller{},
	"map":  mapMarshaller{},
	"seq":  seqMarshaller{},
	"set":  setMarshaller{},
}

// LookupMarshaller resolves a scanned tag's text (e.g. "!!str", "!str",
// "!x!custom") against the registry. Only the bare "!!name" core-tag form
// resolves to a known marshaller; any other handle (or unrecognized name)
// yields a marshaller that fails lazily, only once a value is actually
// coerced through it — an unknown tag is not itself a scan-time error.
func LookupMarshaller(text string) Marshaller {
	if strings.HasPrefix(text, "!!") {
		if m, ok := registry[text[2:]]; ok {
			return m
		}
	}
	return unknownMarshaller{text}
}

type unknownMarshaller struct{ text string }

func (m unknownMarshaller) Name() string { return m.text }
func (m unknownMarshaller) Marshalled(interface{}) (interface{}, error) {
	return nil, &tokenizer.ParseError{Message: "tag '" + m.text + "' not found"}
}

type scalarMarshaller struct{}

func (scalarMarshaller) rejectContainer(value interface{}) error {
	switch value.(type) {
	case []interface{}:
		return &tokenizer.ParseError{Message: "scalar needed, got list instead"}
	case *OrderedMap:
		return &tokenizer.ParseError{Message: "scalar needed, got map instead"}
	}
	return nil
}

type strMarshaller struct{ scalarMarshaller }

func (m strMarshaller) Name() string { return "str" }
func (m strMarshaller) Marshalled(value interface{}) (interface{}, error) {
	if err := m.rejectContainer(value); err != nil {
		return nil, err
	}
	if value == nil {
		return "", nil
	}
	return stringOf(value), nil
}

type intMarshaller struct{ scalarMarshaller }

func (m intMarshaller) Name() string { return "int" }
func (m intMarshaller) Marshalled(value interface{}) (interface{}, error) {
	if err := m.rejectContainer(value); err != nil {
		return nil, err
	}
	switch v := value.(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, &tokenizer.ParseError{Message: "'" + v + "' is not an integer"}
		}
		return n, nil
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case nil:
		return int64(0), nil
	}
	return nil, &tokenizer.ParseError{Message: "cannot coerce to int"}
}

type nullMarshaller struct{ scalarMarshaller }

func (m nullMarshaller) Name() string { return "null" }
func (m nullMarshaller) Marshalled(value interface{}) (interface{}, error) {
	if err := m.rejectContainer(value); err != nil {
		return nil, err
	}
	return nil, nil
}

type boolMarshaller struct{ scalarMarshaller }

func (m boolMarshaller) Name() string { return "bool" }
func (m boolMarshaller) Marshalled(value interface{}) (interface{}, error) {
	if err := m.rejectContainer(value); err != nil {
		return nil, err
	}
	text := strings.ToLower(stringOf(value))
	switch text {
	case "false", "n", "no", "off":
		return false, nil
	case "true", "y", "yes", "on":
		return true, nil
	}
	return nil, &tokenizer.ParseError{Message: "'" + text + "' is not a boolean"}
}

func stringOf(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case nil:
		return "null"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return ""
	}
}

// mapMarshaller accepts a mapping unchanged, or a sequence of
// single-entry mappings which it merges in order (spec.md §4.2).
type mapMarshaller struct{}

func (mapMarshaller) Name() string { return "map" }
func (mapMarshaller) Marshalled(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case *OrderedMap:
		return v, nil
	case []interface{}:
		result := NewOrderedMap()
		for _, item := range v {
			entry, ok := item.(*OrderedMap)
			if !ok {
				return nil, &tokenizer.ParseError{Message: "not a map"}
			}
			for _, kv := range entry.Items() {
				result.Set(kv.Key, kv.Value)
			}
		}
		return result, nil
	}
	return nil, &tokenizer.ParseError{Message: "not a map"}
}

// seqMarshaller accepts a sequence unchanged, or a mapping flattened to
// [k1, v1, k2, v2, ...] (spec.md §4.2).
type seqMarshaller struct{}

func (seqMarshaller) Name() string { return "seq" }
func (seqMarshaller) Marshalled(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case []interface{}:
		return v, nil
	case *OrderedMap:
		result := make([]interface{}, 0, v.Len()*2)
		for _, kv := range v.Items() {
			result = append(result, kv.Key, kv.Value)
		}
		return result, nil
	}
	return nil, &tokenizer.ParseError{Message: "not a list or map"}
}

// setMarshaller turns a mapping's keys into a set, represented as
// []interface{} (Go has no generic comparable-key set literal here).
type setMarshaller struct{}

func (setMarshaller) Name() string { return "set" }
func (setMarshaller) Marshalled(value interface{}) (interface{}, error) {
	m, ok := value.(*OrderedMap)
	if !ok {
		return nil, &tokenizer.ParseError{Message: "not a map, !!set applies to maps"}
	}
	return m.Keys(), nil
}
