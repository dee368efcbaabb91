// Package nestedset provides an immutable, structurally shared set
// type for values that are accumulated across a directed acyclic
// graph. Sets can be unioned without flattening either operand, which
// makes it cheap to propagate large collections (e.g., transitive
// build outputs) from dependencies to dependents.
package nestedset

import (
	"iter"
	"slices"
)

// NestedSet is an immutable set of elements with structural sharing.
// The zero value is the empty set. Once constructed, a NestedSet may be
// referenced as a child by arbitrarily many other sets. None of the
// operations on NestedSet mutate existing nodes.
//
// Elements are stored in stable insertion order. When the same element
// is reachable through multiple paths, traversal only yields the first
// occurrence.
type NestedSet[T comparable] struct {
	// Either nil (empty set), a single element of type T, or a
	// non-empty []any whose entries are elements of type T or
	// children of type []any taken from other sets.
	children any
}

// Empty returns a set containing no elements.
func Empty[T comparable]() NestedSet[T] {
	return NestedSet[T]{}
}

// FromList creates a set holding the provided elements. Duplicate
// elements are discarded, retaining first occurrences.
func FromList[T comparable](elements []T) NestedSet[T] {
	b := NewBuilder[T]()
	for _, element := range elements {
		b.Add(element)
	}
	return b.Build()
}

// Union creates a set containing the elements of both operands. Neither
// operand is traversed or mutated; the resulting set merely references
// them, deferring deduplication to traversal time.
func Union[T comparable](a, b NestedSet[T]) NestedSet[T] {
	ba := NewBuilder[T]()
	ba.AddTransitive(a)
	ba.AddTransitive(b)
	return ba.Build()
}

// IsEmpty returns true if traversing the set yields no elements.
func (s NestedSet[T]) IsEmpty() bool {
	return s.children == nil
}

// All returns an iterator yielding the elements of the set in stable
// insertion order. Elements reachable through multiple paths are
// yielded once, at the position of their first occurrence. The iterator
// is restartable: ranging over it multiple times produces the same
// sequence.
func (s NestedSet[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		w := walker[T]{
			elementsSeen: map[T]struct{}{},
			childrenSeen: map[*any]struct{}{},
			yield:        yield,
		}
		w.walk(s.children)
	}
}

// ToList flattens the set into a slice, deduplicating elements by
// identity in first-seen order.
func (s NestedSet[T]) ToList() []T {
	var list []T
	for element := range s.All() {
		list = append(list, element)
	}
	return list
}

type walker[T comparable] struct {
	elementsSeen map[T]struct{}
	childrenSeen map[*any]struct{}
	yield        func(T) bool
	stopped      bool
}

func (w *walker[T]) walk(children any) {
	switch v := children.(type) {
	case nil:
	case T:
		if _, ok := w.elementsSeen[v]; !ok {
			w.elementsSeen[v] = struct{}{}
			if !w.yield(v) {
				w.stopped = true
			}
		}
	case []any:
		// Multiple children coming from another set. The
		// address of the first entry identifies the slice, as
		// sealed slices are never resized.
		if _, ok := w.childrenSeen[&v[0]]; !ok {
			w.childrenSeen[&v[0]] = struct{}{}
			for _, child := range v {
				w.walk(child)
				if w.stopped {
					return
				}
			}
		}
	default:
		panic("unexpected child type")
	}
}

// Builder accumulates direct elements and transitive sets, in insertion
// order, into a new NestedSet.
type Builder[T comparable] struct {
	children     []any
	elementsSeen map[T]struct{}
	childrenSeen map[*any]struct{}
}

// NewBuilder creates a Builder that contains no elements.
func NewBuilder[T comparable]() *Builder[T] {
	return &Builder[T]{
		elementsSeen: map[T]struct{}{},
		childrenSeen: map[*any]struct{}{},
	}
}

// Add inserts a single element. Elements that were already inserted
// directly into this builder are skipped.
func (b *Builder[T]) Add(element T) *Builder[T] {
	if _, ok := b.elementsSeen[element]; !ok {
		b.elementsSeen[element] = struct{}{}
		b.children = append(b.children, element)
	}
	return b
}

// AddTransitive inserts all elements of an existing set, by reference.
// The set is not traversed. Inserting the same set (or one sharing its
// children) multiple times only retains the first occurrence.
func (b *Builder[T]) AddTransitive(s NestedSet[T]) *Builder[T] {
	switch v := s.children.(type) {
	case nil:
		// Empty child. Ignore it.
	case T:
		b.Add(v)
	case []any:
		if _, ok := b.childrenSeen[&v[0]]; !ok {
			b.childrenSeen[&v[0]] = struct{}{}
			b.children = append(b.children, v)
		}
	default:
		panic("unexpected child type")
	}
	return b
}

// IsEmpty returns true if nothing was inserted into the builder.
func (b *Builder[T]) IsEmpty() bool {
	return len(b.children) == 0
}

// Build seals the accumulated contents into an immutable NestedSet.
// Sets holding zero or one children are collapsed, so that empty and
// singleton sets do not allocate a slice.
func (b *Builder[T]) Build() NestedSet[T] {
	switch len(b.children) {
	case 0:
		return NestedSet[T]{}
	case 1:
		return NestedSet[T]{children: b.children[0]}
	default:
		return NestedSet[T]{children: slices.Clip(b.children)}
	}
}
