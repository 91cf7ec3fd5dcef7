package hmap

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func firstLetter(s string) byte { return s[0] }

func sortedKeys[K any, V any](es []Entry[K, V], less func(a, b K) bool) []K {
	keys := make([]K, 0, len(es))
	for _, e := range es {
		keys = append(keys, e.Key)
	}
	sort.Slice(keys, func(i, j int) bool { return less(keys[i], keys[j]) })
	return keys
}

func TestSubKeyLookupAndDelete(t *testing.T) {
	m := NewSubKey[string, byte, int](firstLetter)
	m.Set("apple", 1)
	m.Set("avocado", 2)
	m.Set("banana", 3)

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 2, m.SubLen())
	assert.True(t, m.ContainsSub('a'))
	assert.False(t, m.ContainsSub('c'))

	strLess := func(a, b string) bool { return strings.Compare(a, b) < 0 }
	assert.Equal(t, []string{"apple", "avocado"}, sortedKeys(m.Lookup('a'), strLess))

	v, ok := m.Delete("apple")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, []string{"avocado"}, sortedKeys(m.Lookup('a'), strLess))

	removed := m.DeleteSub('a')
	assert.Len(t, removed, 1)
	assert.False(t, m.ContainsSub('a'))
	assert.False(t, m.Contains("avocado"))
	assert.Equal(t, 1, m.Len())

	_, ok = m.Delete("missing")
	assert.False(t, ok)
}

func TestSubKeyOverwriteKeepsIndex(t *testing.T) {
	m := NewSubKey[string, byte, int](firstLetter)
	m.Set("kiwi", 1)
	m.Set("kiwi", 2)

	assert.Equal(t, 2, m.Get("kiwi"))
	assert.Len(t, m.Lookup('k'), 1)

	m.Clear()
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 0, m.SubLen())
}

func TestNilProjectionPanics(t *testing.T) {
	assert.Panics(t, func() { NewSubKey[string, byte, int](nil) })
}

func TestMultiKey(t *testing.T) {
	m := NewMultiKey[int, int, string]()
	m.Set(1, 2, "1->2")
	m.Set(1, 3, "1->3")
	m.Set(2, 3, "2->3")

	v, ok := m.GetOk(1, 3)
	assert.True(t, ok)
	assert.Equal(t, "1->3", v)

	assert.Len(t, m.LookupFirst(1), 2)
	assert.Len(t, m.LookupSecond(3), 2)
	assert.Equal(t, 2, m.FirstLen())
	assert.Equal(t, 2, m.SecondLen())

	removed := m.DeleteFirst(1)
	assert.Len(t, removed, 2)
	assert.False(t, m.ContainsSecond(2))
	assert.True(t, m.ContainsSecond(3))
	assert.Len(t, m.LookupSecond(3), 1)

	m.Set(4, 3, "4->3")
	m.DeleteSecond(3)
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.ContainsFirst(2))
	assert.False(t, m.ContainsFirst(4))

	m.Set(5, 6, "5->6")
	_, ok = m.Delete(5, 6)
	assert.True(t, ok)
	assert.False(t, m.ContainsSecond(6))
}
