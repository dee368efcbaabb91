package constraints_test

import (
	"testing"

	"veranda.build/pkg/analysis/constraints"
	"veranda.build/pkg/label"

	"github.com/buildbarn/bb-storage/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	linux   = label.MustNewLabel("//buildenv/os:linux")
	macos   = label.MustNewLabel("//buildenv/os:macos")
	windows = label.MustNewLabel("//buildenv/os:windows")
)

func TestCollection(t *testing.T) {
	t.Run("Deduplication", func(t *testing.T) {
		c := constraints.NewCollection([]label.Label{linux, macos, linux})
		assert.Equal(t, []label.Label{linux, macos}, c.ToList())
	})

	t.Run("Membership", func(t *testing.T) {
		c := constraints.NewCollection([]label.Label{linux})
		assert.True(t, c.Contains(linux))
		assert.False(t, c.Contains(windows))
		assert.False(t, c.IsEmpty())
		assert.True(t, constraints.NewCollection(nil).IsEmpty())
	})

	t.Run("Subset", func(t *testing.T) {
		declared := constraints.NewCollection([]label.Label{linux, macos})
		assert.True(t, constraints.NewCollection([]label.Label{linux}).IsSubsetOf(declared))
		assert.True(t, constraints.NewCollection(nil).IsSubsetOf(declared))
		assert.False(t, constraints.NewCollection([]label.Label{windows}).IsSubsetOf(declared))
	})
}

func TestSupportedEnvironmentsInfo(t *testing.T) {
	t.Run("RefinementNarrows", func(t *testing.T) {
		declared := constraints.NewCollection([]label.Label{linux, macos})
		refined := constraints.NewCollectionBuilder().Add(linux).Build()
		dependency := label.MustNewLabel("//lib:macos_incompatible")
		info, err := constraints.NewSupportedEnvironmentsInfo(declared, refined, map[label.Label]constraints.RemovedCulprit{
			macos: {Dependency: dependency},
		})
		require.NoError(t, err)

		assert.Equal(t, []label.Label{linux, macos}, info.GetDeclared().ToList())
		assert.Equal(t, []label.Label{linux}, info.GetRefined().ToList())
		culprit, ok := info.GetRemovedCulprit(macos)
		require.True(t, ok)
		assert.Equal(t, dependency, culprit.Dependency)
		_, ok = info.GetRemovedCulprit(linux)
		assert.False(t, ok)
	})

	t.Run("RefinementMayNotWiden", func(t *testing.T) {
		declared := constraints.NewCollection([]label.Label{linux})
		refined := constraints.NewCollectionBuilder().Add(linux).Add(windows).Build()
		_, err := constraints.NewSupportedEnvironmentsInfo(declared, refined, nil)
		testutil.RequireEqualStatus(
			t,
			status.Error(codes.Internal, "Refined environment set is not a subset of the declared set"),
			err,
		)
	})
}
