package parser

// kind distinguishes the three shapes a parse node can take. Per the
// reference design this is a tagged variant rather than a type hierarchy:
// one struct, one kind field, switch-based behavior.
type kind int

const (
	kindScalar kind = iota
	kindMap
	kindList
)

// node is one open collection (or pending scalar) on the builder's stack.
// indent is nil-able via hasIndent: flow-collection nodes carry no
// indent and are never popped by the indent-arithmetic rules.
type node struct {
	prev *node
	kind kind

	hasIndent bool
	indent    int

	isTemp     bool
	needsApply bool

	marshaller Marshaller

	lastKey   interface{}
	hasKey    bool
	lastValue interface{}
	hasValue  bool

	// valueIndent/hasValueIndent record the column of whatever scalar is
	// currently staged in lastValue. A plain scalar that precedes its own
	// colon stages here before the Key token confirms it as a key — and it
	// may have landed on a deeper node than the key will ultimately live
	// on, if the dedent hasn't been processed yet (no token tells the
	// builder "this starts a new line" besides the indent carried here).
	// PushKey reads this, not the node's own structural indent.
	valueIndent    int
	hasValueIndent bool

	target interface{}

	anchorName string
	hasAnchor  bool
}

func newNode(k kind, hasIndent bool, indent int) *node {
	return &node{kind: k, hasIndent: hasIndent, indent: indent}
}

// setValue stages a value on this node. A mapping node stages it as the
// value half of its current pending key; a list node stages it as its next
// element, which apply appends to the list's target; a scalar node stages
// it as its value. If a value is already staged, the first one is kept.
func (n *node) setValue(value interface{}) {
	n.needsApply = true
	if !n.hasValue {
		n.lastValue = value
		n.hasValue = true
	}
}

// setValueIndent records the column of a plain-scalar value staged via
// setValue, for PushKey to recover later if it turns out to be a key.
func (n *node) setValueIndent(hasIndent bool, indent int) {
	n.hasValueIndent = hasIndent
	n.valueIndent = indent
}

// apply commits whatever is staged (lastKey/lastValue for a map, lastValue
// for a scalar or list) into target, then clears the pending state.
func (n *node) apply() {
	switch n.kind {
	case kindMap:
		m, _ := n.target.(*OrderedMap)
		if m == nil {
			m = NewOrderedMap()
			n.target = m
		}
		var key interface{}
		if n.hasKey {
			key = n.lastKey
		}
		var value interface{}
		if n.hasValue {
			value = n.lastValue
		}
		m.Set(key, value)
	case kindList:
		seq, _ := n.target.([]interface{})
		if n.hasValue {
			seq = append(seq, n.lastValue)
		}
		n.target = seq
	case kindScalar:
		if n.hasValue {
			n.target = n.lastValue
		}
	}
	n.lastKey = nil
	n.hasKey = false
	n.lastValue = nil
	n.hasValue = false
	n.hasValueIndent = false
	n.needsApply = false
}

// marshalled applies this node's pending tag marshaller (if any) to value,
// consuming the marshaller so it fires exactly once.
func (n *node) marshalled(value interface{}) (interface{}, error) {
	if n.marshaller == nil {
		return value, nil
	}
	m := n.marshaller
	n.marshaller = nil
	return m.Marshalled(value)
}

// finalValue returns the node's committed target. A map or sequence node
// that never received a single key/value (e.g. the empty collections "{}"
// and "[]") never runs apply and so never allocates one; finalValue
// supplies the empty collection in that case rather than a bare nil.
func (n *node) finalValue() interface{} {
	if n.target == nil {
		switch n.kind {
		case kindList:
			return []interface{}{}
		case kindMap:
			return NewOrderedMap()
		}
	}
	return n.target
}
