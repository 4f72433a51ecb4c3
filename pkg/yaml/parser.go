// Package yaml provides YAML parsing and encoding.
//
// This package implements the core of a YAML deserializer: a single-pass
// scanner (internal/tokenizer) that turns a YAML source buffer into a
// token stream, and a parser (internal/parser) that folds that stream
// into a tree of documents composed of mappings, sequences, and scalars.
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use by multiple
// goroutines. Each call creates its own scanner/parser instance with no
// shared mutable state.
//
//	// SAFE: concurrent parsing
//	go func() { yaml.Parse(input1) }()
//	go func() { yaml.Parse(input2) }()
//	go func() { yaml.Unmarshal(data, &v) }()
//
// # Parsing APIs
//
//   - Parse(string) - parses a single YAML document from a string
//   - ParseReader(io.Reader) - parses a single YAML document from a reader
//   - ParseMultiDoc / ParseMultiDocReader - parse a multi-document stream
//   - Validate(string) - checks syntax without keeping the parsed value
//   - Scan(string, ScanOptions) - returns the raw token stream
//
// # Example
//
//	yamlStr := `
//	name: Alice
//	age: 30
//	`
//	value, err := yaml.Parse(yamlStr)
//	if err != nil {
//	    // handle error
//	}
//	m := value.(*yaml.OrderedMap)
//	age, _ := m.Get("age") // int64(30)
package yaml

import (
	"io"

	"github.com/shapestone/shape-yaml/internal/parser"
	"github.com/shapestone/shape-yaml/internal/tokenizer"
)

// ParseError is the single structured error kind raised by the scanner
// and the tree builder: a message plus a 1-based line/column.
type ParseError = tokenizer.ParseError

// OrderedMap is the mapping value produced by Parse: insertion-ordered
// and last-write-wins on duplicate keys.
type OrderedMap = parser.OrderedMap

// MapItem is one key/value pair of an OrderedMap.
type MapItem = parser.MapItem

// Token is a single unit produced by Scan.
type Token = tokenizer.Token

// Parse parses a single YAML document from a string.
//
// Returns the decoded value: nil, bool, int64, float64, string,
// *OrderedMap for mappings, or []interface{} for sequences. A stream
// holding more than one document is returned as []interface{}; see
// ParseMultiDoc if the input is known to be multi-document.
//
// Example:
//
//	value, err := yaml.Parse("name: Alice\nage: 30")
//	m := value.(*yaml.OrderedMap)
func Parse(input string) (interface{}, error) {
	p := parser.New(input, false)
	if _, err := p.ParseAll(); err != nil {
		return nil, err
	}
	return p.Simplified(), nil
}

// ParseReader parses a single YAML document from an io.Reader. The
// reader is fully consumed into memory before scanning begins; there is
// no streaming/incremental mode.
func ParseReader(r io.Reader) (interface{}, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// ParseMultiDoc parses a YAML stream containing one or more documents
// separated by "---" markers and optionally terminated by "...". Unlike
// Parse, it always returns the full document list rather than unwrapping
// a single document.
//
// Example:
//
//	docs, err := yaml.ParseMultiDoc("---\nname: a\n---\nname: b\n")
//	// len(docs) == 2
func ParseMultiDoc(input string) ([]interface{}, error) {
	p := parser.New(input, false)
	return p.ParseAll()
}

// ParseMultiDocReader is the streaming-source form of ParseMultiDoc.
func ParseMultiDocReader(r io.Reader) ([]interface{}, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseMultiDoc(string(data))
}

// Validate parses input and discards the resulting value, returning only
// a syntax error if one occurred.
func Validate(input string) error {
	_, err := Parse(input)
	return err
}

// ScanOptions controls Scan's token stream.
type ScanOptions struct {
	// IncludeComments keeps Comment tokens in the returned stream. They
	// are dropped by default, matching the tree builder's own behavior.
	IncludeComments bool
}

// Scan tokenizes input and returns the full token stream, starting with
// a StreamStart token and ending with StreamEnd.
func Scan(input string, opts ScanOptions) ([]Token, error) {
	s := tokenizer.New(input, opts.IncludeComments)
	var tokens []Token
	for {
		tok, ok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		tokens = append(tokens, tok)
		if tok.Kind == tokenizer.StreamEnd {
			break
		}
	}
	return tokens, nil
}
