// Package parser folds a tokenizer.Token stream into a tree of documents
// composed of mappings, sequences, and scalars (spec.md §4.2).
package parser

// MapItem is one key/value pair of an OrderedMap.
type MapItem struct {
	Key   interface{}
	Value interface{}
}

// OrderedMap is the mapping value produced by the builder. It preserves
// insertion order and is last-write-wins on duplicate keys: re-assigning
// an existing key updates its value in place rather than moving it to the
// end, mirroring a Python dict's behavior (which the reference
// implementation this spec was distilled from relies on).
type OrderedMap struct {
	items []MapItem
	index map[interface{}]int
}

// NewOrderedMap returns an empty ordered mapping.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{index: make(map[interface{}]int)}
}

// Set inserts or updates a key. Keys that are not comparable (slices,
// maps, other OrderedMaps) are stored append-only without dedup, since
// Go cannot use them as map-index keys; YAML complex keys are out of
// scope (spec.md Non-goals).
func (m *OrderedMap) Set(key, value interface{}) {
	if isComparable(key) {
		if i, ok := m.index[key]; ok {
			m.items[i].Value = value
			return
		}
		m.index[key] = len(m.items)
	}
	m.items = append(m.items, MapItem{Key: key, Value: value})
}

// Get looks up a key, returning (value, true) if present.
func (m *OrderedMap) Get(key interface{}) (interface{}, bool) {
	if !isComparable(key) {
		return nil, false
	}
	if i, ok := m.index[key]; ok {
		return m.items[i].Value, true
	}
	return nil, false
}

// Len reports the number of entries.
func (m *OrderedMap) Len() int { return len(m.items) }

// Items returns the entries in insertion order. The caller must not
// mutate the returned slice.
func (m *OrderedMap) Items() []MapItem { return m.items }

// Keys returns the mapping's keys in insertion order, as used by the
// !!set marshaller.
func (m *OrderedMap) Keys() []interface{} {
	keys := make([]interface{}, len(m.items))
	for i, it := range m.items {
		keys[i] = it.Key
	}
	return keys
}

func isComparable(v interface{}) bool {
	switch v.(type) {
	case []interface{}, *OrderedMap:
		return false
	default:
		return true
	}
}

// Simplified applies spec.md §6's load() contract: a single document is
// returned directly, otherwise the full list is returned.
func Simplified(docs []interface{}) interface{} {
	if len(docs) == 1 {
		return docs[0]
	}
	return docs
}
