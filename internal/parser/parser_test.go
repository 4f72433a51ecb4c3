package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func parseOne(t *testing.T, input string) interface{} {
	t.Helper()
	p := New(input, false)
	_, err := p.ParseAll()
	require.NoError(t, err)
	return p.Simplified()
}

func TestParse_SimpleMapping(t *testing.T) {
	value := parseOne(t, "name: Alice\nage: 30\n")
	m, ok := value.(*OrderedMap)
	require.True(t, ok)

	name, ok := m.Get("name")
	require.True(t, ok)
	require.Equal(t, "Alice", name)

	age, ok := m.Get("age")
	require.True(t, ok)
	require.Equal(t, int64(30), age)
}

func TestParse_NestedMapping(t *testing.T) {
	value := parseOne(t, "name: Bob\naddress:\n  city: NYC\n  zip: \"10001\"\n")
	m := value.(*OrderedMap)
	addr, ok := m.Get("address")
	require.True(t, ok)
	addrMap, ok := addr.(*OrderedMap)
	require.True(t, ok)
	city, _ := addrMap.Get("city")
	require.Equal(t, "NYC", city)
	zip, _ := addrMap.Get("zip")
	require.Equal(t, "10001", zip)
}

func TestParse_BlockSequence(t *testing.T) {
	value := parseOne(t, "- apple\n- banana\n- cherry\n")
	seq, ok := value.([]interface{})
	require.True(t, ok)
	require.Equal(t, []interface{}{"apple", "banana", "cherry"}, seq)
}

func TestParse_SequenceOfMappings(t *testing.T) {
	value := parseOne(t, "- name: a\n  value: 1\n- name: b\n  value: 2\n")
	seq := value.([]interface{})
	require.Len(t, seq, 2)
	first := seq[0].(*OrderedMap)
	name, _ := first.Get("name")
	require.Equal(t, "a", name)
}

func TestParse_FlowMapping(t *testing.T) {
	value := parseOne(t, "{a: 1, b: 2}\n")
	m := value.(*OrderedMap)
	a, _ := m.Get("a")
	require.Equal(t, int64(1), a)
	b, _ := m.Get("b")
	require.Equal(t, int64(2), b)
}

func TestParse_FlowSequence(t *testing.T) {
	value := parseOne(t, "[1, 2, 3]\n")
	seq := value.([]interface{})
	require.Equal(t, []interface{}{int64(1), int64(2), int64(3)}, seq)
}

func TestParse_EmptyFlowCollections(t *testing.T) {
	value := parseOne(t, "{}\n")
	m, ok := value.(*OrderedMap)
	require.True(t, ok)
	require.Equal(t, 0, m.Len())

	value = parseOne(t, "[]\n")
	seq, ok := value.([]interface{})
	require.True(t, ok)
	require.Len(t, seq, 0)
}

func TestParse_NestedEmptyMapping(t *testing.T) {
	value := parseOne(t, "outer:\n  inner: {}\n")
	m := value.(*OrderedMap)
	outer, _ := m.Get("outer")
	outerMap := outer.(*OrderedMap)
	inner, ok := outerMap.Get("inner")
	require.True(t, ok)
	innerMap, ok := inner.(*OrderedMap)
	require.True(t, ok)
	require.Equal(t, 0, innerMap.Len())
}

func TestParse_AnchorAndAlias(t *testing.T) {
	value := parseOne(t, "base: &b 1\nother: *b\n")
	m := value.(*OrderedMap)
	base, _ := m.Get("base")
	other, _ := m.Get("other")
	require.Equal(t, base, other)
	require.Equal(t, int64(1), other)
}

func TestParse_UndefinedAliasIsNil(t *testing.T) {
	value := parseOne(t, "other: *missing\n")
	m := value.(*OrderedMap)
	other, ok := m.Get("other")
	require.True(t, ok)
	require.Nil(t, other)
}

func TestParse_DuplicateKeyLastWriteWins(t *testing.T) {
	value := parseOne(t, "a: 1\nb: 2\na: 3\n")
	m := value.(*OrderedMap)
	require.Equal(t, 2, m.Len())
	a, _ := m.Get("a")
	require.Equal(t, int64(3), a)
	require.Equal(t, "a", m.Items()[0].Key)
}

func TestParse_NullKey(t *testing.T) {
	value := parseOne(t, ": value\n")
	m := value.(*OrderedMap)
	v, ok := m.Get(nil)
	require.True(t, ok)
	require.Equal(t, "value", v)
}

func TestParse_MismatchedFlowEnderIsError(t *testing.T) {
	p := New("[1, 2}\n", false)
	_, err := p.ParseAll()
	require.Error(t, err)
}
