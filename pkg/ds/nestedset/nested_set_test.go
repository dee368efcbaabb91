package nestedset_test

import (
	"testing"

	"veranda.build/pkg/ds/nestedset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNestedSet(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		s := nestedset.Empty[string]()
		assert.True(t, s.IsEmpty())
		assert.Empty(t, s.ToList())
	})

	t.Run("StableInsertionOrder", func(t *testing.T) {
		s := nestedset.NewBuilder[string]().
			Add("c").
			Add("a").
			Add("b").
			Build()
		assert.Equal(t, []string{"c", "a", "b"}, s.ToList())
	})

	t.Run("DirectDeduplication", func(t *testing.T) {
		s := nestedset.NewBuilder[string]().
			Add("a").
			Add("b").
			Add("a").
			Build()
		assert.Equal(t, []string{"a", "b"}, s.ToList())
	})

	t.Run("UnionWithSelfIsIdempotent", func(t *testing.T) {
		x := nestedset.FromList([]string{"a", "b", "c"})
		assert.Equal(t, x.ToList(), nestedset.Union(x, x).ToList())
	})

	t.Run("UnionDoesNotMutateOperands", func(t *testing.T) {
		a := nestedset.FromList([]string{"a1", "a2"})
		b := nestedset.FromList([]string{"b1"})
		u := nestedset.Union(a, b)
		assert.Equal(t, []string{"a1", "a2", "b1"}, u.ToList())
		assert.Equal(t, []string{"a1", "a2"}, a.ToList())
		assert.Equal(t, []string{"b1"}, b.ToList())
	})

	t.Run("UnionAssociativityYieldsSameElements", func(t *testing.T) {
		a := nestedset.FromList([]string{"a", "shared"})
		b := nestedset.FromList([]string{"b", "shared"})
		c := nestedset.FromList([]string{"c"})
		left := nestedset.Union(nestedset.Union(a, b), c)
		right := nestedset.Union(a, nestedset.Union(b, c))
		assert.ElementsMatch(t, left.ToList(), right.ToList())
		// First-seen precedence: "shared" is retained at the
		// position of its first occurrence in both shapes.
		assert.Equal(t, []string{"a", "shared", "b", "c"}, left.ToList())
		assert.Equal(t, []string{"a", "shared", "b", "c"}, right.ToList())
	})

	t.Run("DiamondDeduplication", func(t *testing.T) {
		base := nestedset.FromList([]string{"base1", "base2"})
		left := nestedset.NewBuilder[string]().
			Add("left").
			AddTransitive(base).
			Build()
		right := nestedset.NewBuilder[string]().
			Add("right").
			AddTransitive(base).
			Build()
		top := nestedset.Union(left, right)
		assert.Equal(t, []string{"left", "base1", "base2", "right"}, top.ToList())
	})

	t.Run("RestartableTraversal", func(t *testing.T) {
		s := nestedset.Union(
			nestedset.FromList([]string{"a", "b"}),
			nestedset.FromList([]string{"b", "c"}),
		)
		first := s.ToList()
		second := s.ToList()
		assert.Equal(t, first, second)
		assert.Equal(t, []string{"a", "b", "c"}, first)
	})

	t.Run("EarlyTermination", func(t *testing.T) {
		s := nestedset.Union(
			nestedset.FromList([]string{"a", "b"}),
			nestedset.FromList([]string{"c", "d"}),
		)
		var got []string
		for element := range s.All() {
			got = append(got, element)
			if len(got) == 3 {
				break
			}
		}
		assert.Equal(t, []string{"a", "b", "c"}, got)
	})

	t.Run("SingletonCollapse", func(t *testing.T) {
		s := nestedset.NewBuilder[string]().Add("only").Build()
		assert.Equal(t, []string{"only"}, s.ToList())
		// A union with the empty set yields the same contents.
		assert.Equal(t, []string{"only"}, nestedset.Union(s, nestedset.Empty[string]()).ToList())
	})

	t.Run("TransitiveSelfDeduplication", func(t *testing.T) {
		base := nestedset.FromList([]string{"x", "y"})
		s := nestedset.NewBuilder[string]().
			AddTransitive(base).
			AddTransitive(base).
			Build()
		assert.Equal(t, []string{"x", "y"}, s.ToList())
	})
}

func TestFlattener(t *testing.T) {
	flattener := nestedset.NewFlattener[string](10)

	t.Run("EmptyAndSingleton", func(t *testing.T) {
		assert.Empty(t, flattener.ToList(nestedset.Empty[string]()))
		assert.Equal(
			t,
			[]string{"only"},
			flattener.ToList(nestedset.FromList([]string{"only"})),
		)
	})

	t.Run("CachedResultIsStable", func(t *testing.T) {
		s := nestedset.Union(
			nestedset.FromList([]string{"a", "b"}),
			nestedset.FromList([]string{"b", "c"}),
		)
		first := flattener.ToList(s)
		require.Equal(t, []string{"a", "b", "c"}, first)
		second := flattener.ToList(s)
		assert.Equal(t, first, second)
	})
}
