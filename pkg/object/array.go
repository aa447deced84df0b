package object

import (
	"iter"
	"slices"
)

// Array is an ordered list of values. Holes read as [Undefined].
type Array struct {
	elems []any
}

// NewArray creates an array holding elems.
func NewArray(elems ...any) *Array {
	return &Array{elems: slices.Clone(elems)}
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.elems) }

// At returns the element at i, or [Undefined] when i is out of range.
func (a *Array) At(i int) any {
	if i < 0 || i >= len(a.elems) {
		return Undefined
	}
	return a.elems[i]
}

// SetAt stores v at i, growing the array with Undefined holes as needed.
// It panics if i is negative.
func (a *Array) SetAt(i int, v any) {
	if i < 0 {
		panic("object: negative array index")
	}
	for len(a.elems) <= i {
		a.elems = append(a.elems, Undefined)
	}
	a.elems[i] = v
}

// Push appends values to the end of the array.
func (a *Array) Push(vs ...any) {
	a.elems = append(a.elems, vs...)
}

// Values returns a copy of the elements.
func (a *Array) Values() []any {
	return slices.Clone(a.elems)
}

// All iterates over index/element pairs.
func (a *Array) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		for i, v := range a.elems {
			if !yield(i, v) {
				return
			}
		}
	}
}
