package object

import "iter"

// Map is an insertion-ordered map keyed by identity (for pointers) or value
// (for primitives). Numeric keys are normalized with [NormalizeKey], so
// Get(0) and Get(0.0) find the same entry. Keys must be comparable.
type Map struct {
	keys  []any
	vals  []any
	index map[any]int
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{index: make(map[any]int)}
}

// Set stores v under k, keeping the original position of existing keys.
func (m *Map) Set(k, v any) {
	k = NormalizeKey(k)
	if m.index == nil {
		m.index = make(map[any]int)
	}
	if i, ok := m.index[k]; ok {
		m.vals[i] = v
		return
	}
	m.index[k] = len(m.keys)
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
}

// Get returns the value stored under k.
func (m *Map) Get(k any) (any, bool) {
	i, ok := m.index[NormalizeKey(k)]
	if !ok {
		return Undefined, false
	}
	return m.vals[i], true
}

// Has reports whether k is present.
func (m *Map) Has(k any) bool {
	_, ok := m.index[NormalizeKey(k)]
	return ok
}

// Delete removes k and reports whether it was present.
func (m *Map) Delete(k any) bool {
	k = NormalizeKey(k)
	i, ok := m.index[k]
	if !ok {
		return false
	}
	delete(m.index, k)
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.vals = append(m.vals[:i], m.vals[i+1:]...)
	for j := i; j < len(m.keys); j++ {
		m.index[m.keys[j]] = j
	}
	return true
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// All iterates over entries in insertion order.
func (m *Map) All() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		for i, k := range m.keys {
			if !yield(k, m.vals[i]) {
				return
			}
		}
	}
}

// Set is an insertion-ordered set with the same key rules as [Map].
type Set struct {
	items []any
	index map[any]int
}

// NewSet creates a set holding items.
func NewSet(items ...any) *Set {
	s := &Set{index: make(map[any]int)}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Add inserts v if it is not already present.
func (s *Set) Add(v any) {
	v = NormalizeKey(v)
	if s.index == nil {
		s.index = make(map[any]int)
	}
	if _, ok := s.index[v]; ok {
		return
	}
	s.index[v] = len(s.items)
	s.items = append(s.items, v)
}

// Has reports whether v is present.
func (s *Set) Has(v any) bool {
	_, ok := s.index[NormalizeKey(v)]
	return ok
}

// Delete removes v and reports whether it was present.
func (s *Set) Delete(v any) bool {
	v = NormalizeKey(v)
	i, ok := s.index[v]
	if !ok {
		return false
	}
	delete(s.index, v)
	s.items = append(s.items[:i], s.items[i+1:]...)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j]] = j
	}
	return true
}

// Len returns the number of items.
func (s *Set) Len() int { return len(s.items) }

// All iterates over items in insertion order.
func (s *Set) All() iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, v := range s.items {
			if !yield(v) {
				return
			}
		}
	}
}
