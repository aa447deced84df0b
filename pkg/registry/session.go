package registry

import (
	"fmt"

	"github.com/matzehuels/objgraph/pkg/errors"
)

// Session assigns dense, zero-based indexes to objects in first-encounter
// order. It lives for exactly one serialize call and is not safe for
// concurrent use.
type Session struct {
	objects []any
	index   map[Key]int
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{index: make(map[Key]int)}
}

// Index returns the index already assigned to v.
func (s *Session) Index(v any) (int, bool) {
	key, ok := KeyOf(v)
	if !ok {
		return -1, false
	}
	i, ok := s.index[key]
	return i, ok
}

// Intern returns the index of v, assigning the next free index on first
// sight. It panics if v has no identity; only composite values are
// interned.
func (s *Session) Intern(v any) int {
	key, ok := KeyOf(v)
	if !ok {
		panic(fmt.Sprintf("registry: cannot intern %T without identity", v))
	}
	if i, ok := s.index[key]; ok {
		return i
	}
	i := len(s.objects)
	s.objects = append(s.objects, v)
	s.index[key] = i
	return i
}

// At returns the object stored at index i.
func (s *Session) At(i int) (any, error) {
	if i < 0 || i >= len(s.objects) {
		return nil, errors.New(errors.ErrCodeOutOfRange, "local ref %d out of range [0, %d)", i, len(s.objects))
	}
	return s.objects[i], nil
}

// Len returns the number of interned objects.
func (s *Session) Len() int { return len(s.objects) }
