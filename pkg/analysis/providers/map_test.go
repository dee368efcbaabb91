package providers_test

import (
	"testing"

	"veranda.build/pkg/analysis/providers"
	"veranda.build/pkg/label"
	"veranda.build/pkg/starlark/variant"

	"github.com/buildbarn/bb-storage/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.starlark.net/starlark"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestMapBuilder(t *testing.T) {
	t.Run("DuplicateStaticKey", func(t *testing.T) {
		b := providers.NewMapBuilder()
		require.NoError(t, b.Put(providers.FileKey, "first"))
		testutil.RequireEqualStatus(
			t,
			status.Error(codes.Internal, "Provider \"File\" has already been added"),
			b.Put(providers.FileKey, "second"),
		)
	})

	t.Run("AbsentValue", func(t *testing.T) {
		b := providers.NewMapBuilder()
		testutil.RequireEqualStatus(
			t,
			status.Error(codes.Internal, "Provider \"File\" has no value"),
			b.Put(providers.FileKey, nil),
		)
	})

	t.Run("DistinctStaticKeysCoexist", func(t *testing.T) {
		b := providers.NewMapBuilder()
		require.NoError(t, b.Put(providers.FileKey, "files"))
		require.NoError(t, b.Put(providers.TestKey, "test"))
		m := b.Build()

		value, ok := m.Get(providers.FileKey)
		require.True(t, ok)
		assert.Equal(t, "files", value)
		value, ok = m.Get(providers.TestKey)
		require.True(t, ok)
		assert.Equal(t, "test", value)
	})

	t.Run("DuplicateDynamicName", func(t *testing.T) {
		b := providers.NewMapBuilder()
		require.NoError(t, b.PutDynamic("my_info", variant.MustNew(starlark.String("a"))))
		testutil.RequireEqualStatus(
			t,
			status.Error(codes.Internal, "Provider \"my_info\" has already been added"),
			b.PutDynamic("my_info", variant.MustNew(starlark.String("b"))),
		)
	})

	t.Run("UnexportedDeclaredProvider", func(t *testing.T) {
		b := providers.NewMapBuilder()
		definition := providers.NewDefinition("")
		testutil.RequireEqualStatus(
			t,
			status.Error(codes.InvalidArgument, "Provider has not been exported"),
			b.PutDeclared(providers.NewInstance(definition, variant.MustNew(starlark.String("v")))),
		)
	})

	t.Run("DeclaredProviderWithLegacyAlias", func(t *testing.T) {
		b := providers.NewMapBuilder()
		definition := providers.NewDefinition("legacy_info")
		definition.Export(label.MustNewStarlarkIdentifier("MyInfo"))
		value := variant.MustNew(starlark.String("payload"))
		require.NoError(t, b.PutDeclared(providers.NewInstance(definition, value)))
		m := b.Build()

		instance, ok := m.GetDeclared("MyInfo")
		require.True(t, ok)
		assert.Equal(t, value, instance.GetValue())

		aliased, ok := m.GetDynamic("legacy_info")
		require.True(t, ok)
		assert.Equal(t, value, aliased)
	})

	t.Run("LegacyAliasIsBestEffort", func(t *testing.T) {
		// The alias registration is secondary. When the dynamic
		// name is already taken, the declared entry must still
		// be inserted and the existing dynamic entry retained.
		b := providers.NewMapBuilder()
		existing := variant.MustNew(starlark.String("existing"))
		require.NoError(t, b.PutDynamic("legacy_info", existing))

		definition := providers.NewDefinition("legacy_info")
		definition.Export(label.MustNewStarlarkIdentifier("MyInfo"))
		require.NoError(t, b.PutDeclared(providers.NewInstance(definition, variant.MustNew(starlark.String("new")))))
		m := b.Build()

		_, ok := m.GetDeclared("MyInfo")
		assert.True(t, ok)
		aliased, ok := m.GetDynamic("legacy_info")
		require.True(t, ok)
		assert.Equal(t, existing, aliased)
	})

	t.Run("GetBeforeBuild", func(t *testing.T) {
		b := providers.NewMapBuilder()
		require.NoError(t, b.Put(providers.RunfilesKey, "runfiles"))
		value, ok := b.Get(providers.RunfilesKey)
		require.True(t, ok)
		assert.Equal(t, "runfiles", value)
		assert.True(t, b.Has(providers.RunfilesKey))
		assert.False(t, b.Has(providers.TestKey))
	})

	t.Run("IterationOrder", func(t *testing.T) {
		b := providers.NewMapBuilder()
		require.NoError(t, b.PutDynamic("b_info", variant.MustNew(starlark.String("1"))))
		require.NoError(t, b.PutDynamic("a_info", variant.MustNew(starlark.String("2"))))
		m := b.Build()

		var names []string
		for name := range m.AllDynamic() {
			names = append(names, name)
		}
		assert.Equal(t, []string{"b_info", "a_info"}, names)
	})
}
