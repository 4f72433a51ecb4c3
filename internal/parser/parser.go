package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shapestone/shape-yaml/internal/tokenizer"
)

// reTyped is the single canonical regex behind untagged plain-scalar
// coercion (spec.md §4.2): true/false/null/~ or a signed decimal with
// optional fraction and exponent. Anything else stays a string.
var reTyped = regexp.MustCompile(`(?i)^(false|true|null|~|[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?)$`)

func coercePlain(text string) interface{} {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	if !reTyped.MatchString(trimmed) {
		return trimmed
	}
	lower := strings.ToLower(trimmed)
	switch lower {
	case "null", "~":
		return nil
	case "false":
		return false
	case "true":
		return true
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	return trimmed
}

// Parser drives a tokenizer.Scanner through a Root builder, turning a
// YAML source buffer into its decoded document(s).
type Parser struct {
	scanner *tokenizer.Scanner
	root    *Root
}

// New returns a Parser over text. keepComments controls whether Comment
// tokens are surfaced by Scan (the builder itself ignores them either way).
func New(text string, keepComments bool) *Parser {
	return &Parser{scanner: tokenizer.New(text, keepComments), root: NewRoot()}
}

// ParseAll runs the full token stream through the builder and returns the
// collected documents (still wrapped, one entry per document).
func (p *Parser) ParseAll() ([]interface{}, error) {
	for {
		tok, ok, err := p.scanner.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if err := p.consume(tok); err != nil {
			if pe, ok := err.(*tokenizer.ParseError); ok {
				pe.Complete(tok.Line, tok.Indent+1)
			}
			return nil, err
		}
		if tok.Kind == tokenizer.StreamEnd {
			break
		}
	}
	return p.root.Docs(), nil
}

// Simplified returns load()'s contract over the parsed documents: a
// single document unwrapped, or the full list otherwise.
func (p *Parser) Simplified() interface{} {
	return p.root.Simplified()
}

func (p *Parser) consume(tok tokenizer.Token) error {
	switch tok.Kind {
	case tokenizer.StreamStart:
		return nil
	case tokenizer.DocumentStart:
		if err := p.root.PopDoc(); err != nil {
			return err
		}
		// a `---` opens a document; if nothing is written before the next
		// boundary, PopDoc records it as an empty one
		p.root.docConsumed = false
		return nil
	case tokenizer.StreamEnd, tokenizer.DocumentEnd:
		return p.root.PopDoc()
	case tokenizer.Directive, tokenizer.Comment, tokenizer.EmptyLine:
		return nil
	case tokenizer.BlockEntry:
		return p.root.PushBlockEntry(tok.Indent)
	case tokenizer.Key:
		return p.root.PushKey(tok.Indent)
	case tokenizer.Scalar:
		return p.root.PushValue(true, tok.Indent, scalarValue(tok))
	case tokenizer.Anchor:
		return p.root.SetAnchor(tok.Value)
	case tokenizer.Alias:
		return p.root.PushValue(true, tok.Indent, p.root.ResolveAlias(tok.Value))
	case tokenizer.Tag:
		return p.root.SetTag(tok.Indent, LookupMarshaller(tok.Value))
	case tokenizer.FlowMappingStart:
		return p.root.PushFlow(kindMap)
	case tokenizer.FlowSequenceStart:
		return p.root.PushFlow(kindList)
	case tokenizer.FlowEnd:
		return p.root.PopFlow()
	case tokenizer.FlowEntry:
		return p.root.FlowEntry()
	}
	return nil
}

// scalarValue applies plain-scalar coercion only to unstyled (plain)
// scalars; quoted and block-literal scalars keep their literal text.
func scalarValue(tok tokenizer.Token) interface{} {
	if tok.Style != tokenizer.StyleNone {
		return tok.Value
	}
	return coercePlain(tok.Value)
}
