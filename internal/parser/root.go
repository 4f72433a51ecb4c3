package parser

import (
	"fmt"

	"github.com/shapestone/shape-yaml/internal/tokenizer"
)

// Root is the tree builder: it owns the open-node stack, the anchor table,
// and the finished document list. It consumes one tokenizer.Token at a
// time (see Parser in parser.go) and mutates its stack accordingly.
type Root struct {
	docs []interface{}
	head *node

	marshaller  Marshaller
	hasTagIndent bool
	tagIndent   int

	anchors map[string]interface{}

	docConsumed bool
}

// NewRoot returns an empty builder ready to consume a token stream.
func NewRoot() *Root {
	return &Root{anchors: make(map[string]interface{}), docConsumed: true}
}

// Docs returns the documents collected so far.
func (r *Root) Docs() []interface{} { return r.docs }

func (r *Root) marshalled(value interface{}) (interface{}, error) {
	if r.marshaller == nil {
		return value, nil
	}
	m := r.marshaller
	r.marshaller = nil
	r.hasTagIndent = false
	return m.Marshalled(value)
}

func minIndent(hasA bool, a int, hasB bool, b int) (bool, int) {
	if !hasA {
		return hasB, b
	}
	if !hasB {
		return hasA, a
	}
	if a < b {
		return true, a
	}
	return true, b
}

func (r *Root) newNode(k kind, hasIndent bool, indent int) *node {
	n := newNode(k, hasIndent, indent)
	if r.marshaller != nil {
		if hasIndent {
			n.hasIndent, n.indent = minIndent(hasIndent, indent, r.hasTagIndent, r.tagIndent)
		}
		n.marshaller = r.marshaller
		r.marshaller = nil
		r.hasTagIndent = false
	}
	return n
}

func (r *Root) needsNewNode(hasIndent bool, indent int, k kind) bool {
	if r.head == nil || r.head.kind != k {
		return true
	}
	if !hasIndent {
		return r.head.hasIndent
	}
	if !r.head.hasIndent {
		return false
	}
	return indent > r.head.indent
}

func (r *Root) needsPop(hasIndent bool, indent int) bool {
	if !hasIndent || r.head == nil || !r.head.hasIndent {
		return false
	}
	return r.head.indent > indent
}

// ensureNode pops any nodes that a new node at (hasIndent, indent) would
// close, then pushes a fresh node of kind k unless the current head can be
// reused as-is (same kind, compatible indent).
func (r *Root) ensureNode(hasIndent bool, indent int, k kind) error {
	for r.needsPop(hasIndent, indent) {
		if err := r.pop(); err != nil {
			return err
		}
	}
	if r.needsNewNode(hasIndent, indent, k) {
		if k == kindList && r.head != nil && r.head.hasIndent && hasIndent && indent < r.head.indent {
			return &tokenizer.ParseError{Message: fmt.Sprintf("line should be indented at least %d chars", r.head.indent)}
		}
		if err := r.push(r.newNode(k, hasIndent, indent)); err != nil {
			return err
		}
	}
	return r.autoApply()
}

func (r *Root) autoApply() error {
	if r.head == nil {
		return nil
	}
	r.applyAnchor(r.head)
	if r.head.needsApply {
		return r.applyNode(r.head)
	}
	return nil
}

// applyNode commits a node's pending key/value. It does not run the node's
// tag marshaller: that happens on pop, against the finished target.
func (r *Root) applyNode(n *node) error {
	n.apply()
	return nil
}

func (r *Root) applyAnchor(n *node) {
	if !n.hasAnchor {
		return
	}
	var value interface{}
	if n.hasValue {
		value = n.lastValue
	}
	r.anchors[n.anchorName] = value
	n.hasAnchor = false
}

// push installs n as the new head, popping any open nodes that n's indent
// would close (a deeper sibling closing out its predecessors).
func (r *Root) push(n *node) error {
	if r.head != nil {
		if !r.head.hasIndent {
			n.isTemp = n.hasIndent
		} else if n.hasIndent {
			for n.indent < r.head.indent {
				if err := r.pop(); err != nil {
					return err
				}
			}
		}
	}
	n.prev = r.head
	r.head = n
	return nil
}

// pop closes the current head, folding its finished value into whatever
// node (or document slot) is beneath it.
func (r *Root) pop() error {
	popped := r.head
	if popped == nil {
		return &tokenizer.ParseError{Message: "internal error: pop on empty stack"}
	}
	r.head = popped.prev

	r.applyAnchor(popped)
	if popped.needsApply {
		popped.apply()
	}
	value, err := popped.marshalled(popped.finalValue())
	if err != nil {
		return err
	}

	if r.head != nil {
		r.head.setValue(value)
		r.applyAnchor(r.head)
		if r.head.needsApply {
			r.head.apply()
		}
		return nil
	}
	return r.setDocValue(value)
}

func (r *Root) setDocValue(value interface{}) error {
	r.docConsumed = true
	value, err := r.marshalled(value)
	if err != nil {
		return err
	}
	r.docs = append(r.docs, value)
	return nil
}

// PopDoc flushes the open stack at a document boundary (---, ..., or
// stream end). A document opened by `---` with nothing written before the
// next boundary yields "" (docConsumed is cleared by the parser on `---`).
func (r *Root) PopDoc() error {
	if r.head != nil {
		for r.head != nil {
			if err := r.pop(); err != nil {
				return err
			}
		}
		return nil
	}
	if !r.docConsumed {
		return r.setDocValue("")
	}
	return nil
}

// PushKey pairs a Key token with whichever scalar is currently staged on
// the head node — the plain scalar the scanner just emitted immediately
// before the colon. A bare scalar holder (the very first key of a fresh
// mapping) is consumed and discarded rather than flushed as a value; a
// mapping already open, or a sequence holding a staged element (the first
// key of a mapping inside a "- " entry), has its pending value relabeled
// as a key.
func (r *Root) PushKey(indent int) error {
	var key interface{}
	keyIndent, hasKeyIndent := indent, true

	switch {
	case r.head == nil:
		// bare key with no preceding scalar, e.g. ": value" for a null key.
	case r.head.kind == kindScalar && !r.head.isTemp && r.head.target == nil:
		if r.head.hasValue {
			key = r.head.lastValue
		}
		if r.head.hasValueIndent {
			hasKeyIndent, keyIndent = true, r.head.valueIndent
		}
		r.head = r.head.prev
	case r.head.kind == kindMap || (r.head.kind == kindList && r.head.hasValue):
		if r.head.hasValue {
			key = r.head.lastValue
			r.head.lastValue = nil
			r.head.hasValue = false
		}
		if r.head.hasValueIndent {
			hasKeyIndent, keyIndent = true, r.head.valueIndent
		}
		r.head.needsApply = false
	}

	if err := r.ensureNode(hasKeyIndent, keyIndent, kindMap); err != nil {
		return err
	}
	if r.head.hasKey {
		return &tokenizer.ParseError{Message: fmt.Sprintf("internal error: previous key %v was not consumed", r.head.lastKey)}
	}
	r.head.lastKey = key
	r.head.hasKey = true
	r.head.needsApply = true
	return nil
}

// PushValue stages a scalar (or alias-resolved) value, synthesizing a
// scalar holder node when the stack is empty (a bare single-scalar
// document, or the first key of a mapping whose Key token is still to
// come). That holder is not temporary; only a node pushed above an
// indent-less flow node is, and it is popped as soon as it takes a value.
func (r *Root) PushValue(hasIndent bool, indent int, value interface{}) error {
	marshalled, err := r.marshalled(value)
	if err != nil {
		return err
	}
	if r.head == nil {
		if err := r.push(r.newNode(kindScalar, hasIndent, indent)); err != nil {
			return err
		}
	}
	// A mapping already holding a complete, unflushed key/value pair (the
	// previous entry) must commit that pair before staging this scalar:
	// otherwise this scalar — which may itself be the next key, still
	// waiting on its own Key token — has nowhere to land.
	if r.head.kind == kindMap && r.head.hasKey && r.head.hasValue {
		r.applyAnchor(r.head)
		r.head.apply()
	}
	r.head.setValue(marshalled)
	r.head.setValueIndent(hasIndent, indent)
	if r.head.isTemp {
		return r.pop()
	}
	return nil
}

// PushBlockEntry ensures a sequence node at exactly this indent is open
// (reusing one already at this level, closing deeper ones, or pushing a
// fresh one) and flushes its previous pending element.
func (r *Root) PushBlockEntry(indent int) error {
	return r.ensureNode(true, indent, kindList)
}

// PushFlow opens a bracketed collection; flow nodes carry no indent and
// are never touched by the indent-arithmetic rules.
func (r *Root) PushFlow(k kind) error {
	return r.push(r.newNode(k, false, 0))
}

// PopFlow closes the current flow collection exactly like a block pop.
func (r *Root) PopFlow() error {
	return r.pop()
}

// FlowEntry flushes the pending key/value (or element) on the open flow
// node without closing it, so the next item starts clean.
func (r *Root) FlowEntry() error {
	return r.autoApply()
}

// SetAnchor binds name to whatever value the current head stages next.
func (r *Root) SetAnchor(name string) error {
	if r.head == nil {
		return &tokenizer.ParseError{Message: "anchor has no target"}
	}
	r.head.anchorName = name
	r.head.hasAnchor = true
	return nil
}

// ResolveAlias looks up a previously bound anchor; an undefined alias
// resolves to nil rather than erroring.
func (r *Root) ResolveAlias(name string) interface{} {
	return r.anchors[name]
}

// SetTag stages a marshaller to be claimed by the next node created (or
// applied directly to a bare scalar value with no container). m is never
// nil: an unrecognized tag name still resolves to a marshaller, one that
// fails only once a value is actually coerced through it.
func (r *Root) SetTag(indent int, m Marshaller) error {
	if r.marshaller != nil {
		return &tokenizer.ParseError{Message: "2 consecutive tags given"}
	}
	r.marshaller = m
	r.hasTagIndent = true
	r.tagIndent = indent
	return nil
}

// Simplified returns the finished documents per load()'s contract: a
// single document is unwrapped, otherwise the full slice is returned.
func (r *Root) Simplified() interface{} {
	return Simplified(r.docs)
}
