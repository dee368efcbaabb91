package nestedset

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Flattener memoizes calls to NestedSet.ToList. Flattening a large set
// is linear in its transitive size, and callers that repeatedly inspect
// the same sets (e.g., when requesting the outputs of many targets that
// share dependencies) would otherwise pay that cost every time. Sealed
// sets are immutable, so cached results never go stale.
//
// A Flattener may be shared between goroutines; the underlying cache
// serializes access and evicts least recently used entries once the
// configured size is exceeded.
type Flattener[T comparable] struct {
	cache *lru.Cache[*any, []T]
}

// NewFlattener creates a Flattener that retains the flattened form of
// up to maximumSetCount sets.
func NewFlattener[T comparable](maximumSetCount int) *Flattener[T] {
	cache, err := lru.New[*any, []T](maximumSetCount)
	if err != nil {
		panic(err)
	}
	return &Flattener[T]{cache: cache}
}

// ToList returns the same result as NestedSet.ToList, consulting the
// cache first. Only sets holding multiple children are cached, as
// flattening empty and singleton sets is trivial.
func (f *Flattener[T]) ToList(s NestedSet[T]) []T {
	children, ok := s.children.([]any)
	if !ok {
		return s.ToList()
	}
	if list, ok := f.cache.Get(&children[0]); ok {
		return list
	}
	list := s.ToList()
	f.cache.Add(&children[0], list)
	return list
}
