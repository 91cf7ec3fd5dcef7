package hmap

// A mutable map with secondary indices.
// Every key is projected to one or two sub-keys, and the map can be queried
// or pruned by sub-key without scanning all entries.

// SubKey is a map from K to V with an index from the projection of each key.
type SubKey[K, S comparable, V any] struct {
	project func(K) S
	mp      map[K]V
	sub     map[S]map[K]struct{}
}

// Entry is a key-value binding returned by sub-key queries.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// NewSubKey creates an empty map indexed by the given projection.
// Panics if the projection is nil.
func NewSubKey[K, S comparable, V any](project func(K) S) *SubKey[K, S, V] {
	if project == nil {
		panic("hmap: nil sub-key projection")
	}
	return &SubKey[K, S, V]{
		project: project,
		mp:      make(map[K]V),
		sub:     make(map[S]map[K]struct{}),
	}
}

// Set binds key to value, replacing any previous binding.
func (m *SubKey[K, S, V]) Set(key K, value V) {
	m.mp[key] = value

	s := m.project(key)
	keys, found := m.sub[s]
	if !found {
		keys = make(map[K]struct{})
		m.sub[s] = keys
	}
	keys[key] = struct{}{}
}

// GetOk performs a lookup. The boolean indicates if the key was found.
func (m *SubKey[K, S, V]) GetOk(key K) (V, bool) {
	v, ok := m.mp[key]
	return v, ok
}

// Get returns the value bound to key, or the zero value.
func (m *SubKey[K, S, V]) Get(key K) V {
	return m.mp[key]
}

// Len returns the number of bindings.
func (m *SubKey[K, S, V]) Len() int {
	return len(m.mp)
}

// SubLen returns the number of distinct sub-keys.
func (m *SubKey[K, S, V]) SubLen() int {
	return len(m.sub)
}

// SubKeys lists the distinct sub-keys in unspecified order.
func (m *SubKey[K, S, V]) SubKeys() []S {
	res := make([]S, 0, len(m.sub))
	for s := range m.sub {
		res = append(res, s)
	}
	return res
}

// Contains checks whether key is bound.
func (m *SubKey[K, S, V]) Contains(key K) bool {
	_, ok := m.mp[key]
	return ok
}

// ContainsSub checks whether some bound key projects to s.
func (m *SubKey[K, S, V]) ContainsSub(s S) bool {
	_, ok := m.sub[s]
	return ok
}

// Lookup returns all bindings whose key projects to s.
func (m *SubKey[K, S, V]) Lookup(s S) []Entry[K, V] {
	keys := m.sub[s]
	res := make([]Entry[K, V], 0, len(keys))
	for k := range keys {
		res = append(res, Entry[K, V]{k, m.mp[k]})
	}
	return res
}

// Delete unbinds key. Returns the removed value and whether key was bound.
func (m *SubKey[K, S, V]) Delete(key K) (V, bool) {
	v, ok := m.mp[key]
	if !ok {
		return v, false
	}

	delete(m.mp, key)
	s := m.project(key)
	if keys := m.sub[s]; keys != nil {
		delete(keys, key)
		if len(keys) == 0 {
			delete(m.sub, s)
		}
	}
	return v, true
}

// DeleteSub unbinds every key projecting to s and returns the removed bindings.
func (m *SubKey[K, S, V]) DeleteSub(s S) []Entry[K, V] {
	removed := m.Lookup(s)
	for _, e := range removed {
		delete(m.mp, e.Key)
	}
	delete(m.sub, s)
	return removed
}

// Clear removes all bindings.
func (m *SubKey[K, S, V]) Clear() {
	m.mp = make(map[K]V)
	m.sub = make(map[S]map[K]struct{})
}

// ForEach calls f for every binding in unspecified order.
func (m *SubKey[K, S, V]) ForEach(f func(K, V)) {
	for k, v := range m.mp {
		f(k, v)
	}
}

// Pair is a key made of two components.
type Pair[A, B comparable] struct {
	One A
	Two B
}

// MultiKey is a map keyed by pairs, indexed by both components.
type MultiKey[A, B comparable, V any] struct {
	first  *SubKey[Pair[A, B], A, V]
	second map[B]map[Pair[A, B]]struct{}
}

// NewMultiKey creates an empty map keyed by (A, B) pairs.
func NewMultiKey[A, B comparable, V any]() *MultiKey[A, B, V] {
	return &MultiKey[A, B, V]{
		first:  NewSubKey[Pair[A, B], A, V](func(p Pair[A, B]) A { return p.One }),
		second: make(map[B]map[Pair[A, B]]struct{}),
	}
}

// Set binds (a, b) to value.
func (m *MultiKey[A, B, V]) Set(a A, b B, value V) {
	key := Pair[A, B]{a, b}
	m.first.Set(key, value)

	keys, found := m.second[b]
	if !found {
		keys = make(map[Pair[A, B]]struct{})
		m.second[b] = keys
	}
	keys[key] = struct{}{}
}

// GetOk performs a lookup of (a, b).
func (m *MultiKey[A, B, V]) GetOk(a A, b B) (V, bool) {
	return m.first.GetOk(Pair[A, B]{a, b})
}

// Len returns the number of bindings.
func (m *MultiKey[A, B, V]) Len() int {
	return m.first.Len()
}

// LookupFirst returns every binding whose first component is a.
func (m *MultiKey[A, B, V]) LookupFirst(a A) []Entry[Pair[A, B], V] {
	return m.first.Lookup(a)
}

// LookupSecond returns every binding whose second component is b.
func (m *MultiKey[A, B, V]) LookupSecond(b B) []Entry[Pair[A, B], V] {
	keys := m.second[b]
	res := make([]Entry[Pair[A, B], V], 0, len(keys))
	for k := range keys {
		res = append(res, Entry[Pair[A, B], V]{k, m.first.Get(k)})
	}
	return res
}

// Delete unbinds (a, b).
func (m *MultiKey[A, B, V]) Delete(a A, b B) (V, bool) {
	key := Pair[A, B]{a, b}
	v, ok := m.first.Delete(key)
	if ok {
		m.forgetSecond(key)
	}
	return v, ok
}

// DeleteFirst unbinds every pair whose first component is a.
func (m *MultiKey[A, B, V]) DeleteFirst(a A) []Entry[Pair[A, B], V] {
	removed := m.first.DeleteSub(a)
	for _, e := range removed {
		m.forgetSecond(e.Key)
	}
	return removed
}

// DeleteSecond unbinds every pair whose second component is b.
func (m *MultiKey[A, B, V]) DeleteSecond(b B) []Entry[Pair[A, B], V] {
	removed := m.LookupSecond(b)
	for _, e := range removed {
		m.first.Delete(e.Key)
	}
	delete(m.second, b)
	return removed
}

// ContainsFirst checks whether some bound pair has first component a.
func (m *MultiKey[A, B, V]) ContainsFirst(a A) bool {
	return m.first.ContainsSub(a)
}

// ContainsSecond checks whether some bound pair has second component b.
func (m *MultiKey[A, B, V]) ContainsSecond(b B) bool {
	_, ok := m.second[b]
	return ok
}

// FirstLen and SecondLen return the number of distinct components.
func (m *MultiKey[A, B, V]) FirstLen() int {
	return m.first.SubLen()
}

func (m *MultiKey[A, B, V]) SecondLen() int {
	return len(m.second)
}

// Clear removes all bindings.
func (m *MultiKey[A, B, V]) Clear() {
	m.first.Clear()
	m.second = make(map[B]map[Pair[A, B]]struct{})
}

func (m *MultiKey[A, B, V]) forgetSecond(key Pair[A, B]) {
	if keys := m.second[key.Two]; keys != nil {
		delete(keys, key)
		if len(keys) == 0 {
			delete(m.second, key.Two)
		}
	}
}
