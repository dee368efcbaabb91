package label_test

import (
	"testing"

	"veranda.build/pkg/label"

	"github.com/buildbarn/bb-storage/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		for _, value := range []string{
			"//tools/compiler:driver",
			"//:root_target",
			"//pkg:a/b/c.txt",
			"//buildenv/cpu:k8",
		} {
			l, err := label.NewLabel(value)
			require.NoError(t, err, value)
			assert.Equal(t, value, l.String())
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, value := range []string{
			"",
			"driver",
			"//tools/compiler",
			"//tools//compiler:driver",
			"//tools/compiler/:driver",
			"//tools/compiler:",
			"//tools/compiler:dir/",
			":driver",
		} {
			_, err := label.NewLabel(value)
			assert.Error(t, err, value)
		}
	})

	t.Run("GetPackagePath", func(t *testing.T) {
		assert.Equal(
			t,
			"tools/compiler",
			util.Must(label.NewLabel("//tools/compiler:driver")).GetPackagePath(),
		)
		assert.Equal(
			t,
			"",
			util.Must(label.NewLabel("//:root_target")).GetPackagePath(),
		)
	})

	t.Run("GetTargetName", func(t *testing.T) {
		assert.Equal(
			t,
			"driver",
			util.Must(label.NewLabel("//tools/compiler:driver")).GetTargetName().String(),
		)
	})
}

func TestTargetName(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		for _, value := range []string{
			"driver",
			"a/b/c.txt",
			"lib+extra",
		} {
			tn, err := label.NewTargetName(value)
			require.NoError(t, err, value)
			assert.Equal(t, value, tn.String())
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, value := range []string{
			"",
			"a//b",
			"a/",
			"a b",
		} {
			_, err := label.NewTargetName(value)
			assert.Error(t, err, value)
		}
	})
}
