package actionregistry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"veranda.build/pkg/analysis/actionregistry"
	"veranda.build/pkg/analysis/artifact"
	"veranda.build/pkg/label"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/sync/errgroup"
)

type fakeAction struct {
	key     string
	owner   label.Label
	outputs []artifact.Artifact
}

func (a *fakeAction) GetKey() string                  { return a.key }
func (a *fakeAction) GetOwner() label.Label           { return a.owner }
func (a *fakeAction) GetOutputs() []artifact.Artifact { return a.outputs }

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	owner := label.MustNewLabel("//pkg:target")

	t.Run("DistinctActionsOnDistinctOutputs", func(t *testing.T) {
		registry := actionregistry.NewRegistry()
		a := &fakeAction{key: "compile", owner: owner, outputs: []artifact.Artifact{artifact.MustNew(owner, "out/a.o")}}
		b := &fakeAction{key: "link", owner: owner, outputs: []artifact.Artifact{artifact.MustNew(owner, "out/a")}}
		filtered, index, err := registry.FilterAndIndex(ctx, []actionregistry.Action{a, b})
		require.NoError(t, err)
		assert.Equal(t, []actionregistry.Action{a, b}, filtered)
		assert.Equal(t, map[artifact.Artifact]int{
			a.outputs[0]: 0,
			b.outputs[0]: 1,
		}, index)
	})

	t.Run("SharedActionCollapses", func(t *testing.T) {
		registry := actionregistry.NewRegistry()
		out := artifact.MustNew(owner, "out/shared.txt")
		a1 := &fakeAction{key: "write", owner: owner, outputs: []artifact.Artifact{out}}
		a2 := &fakeAction{key: "write", owner: owner, outputs: []artifact.Artifact{out}}
		filtered, index, err := registry.FilterAndIndex(ctx, []actionregistry.Action{a1, a2})
		require.NoError(t, err)
		assert.Equal(t, []actionregistry.Action{a1}, filtered)
		assert.Equal(t, map[artifact.Artifact]int{out: 0}, index)
	})

	t.Run("SharedActionAcrossTargets", func(t *testing.T) {
		registry := actionregistry.NewRegistry()
		out := artifact.MustNew(owner, "out/shared.txt")
		a1 := &fakeAction{key: "write", owner: owner, outputs: []artifact.Artifact{out}}
		_, _, err := registry.FilterAndIndex(ctx, []actionregistry.Action{a1})
		require.NoError(t, err)

		// A second evaluation registering a logically identical
		// action adopts the instance that is already present.
		a2 := &fakeAction{key: "write", owner: owner, outputs: []artifact.Artifact{out}}
		filtered, index, err := registry.FilterAndIndex(ctx, []actionregistry.Action{a2})
		require.NoError(t, err)
		assert.Equal(t, []actionregistry.Action{a1}, filtered)
		assert.Equal(t, map[artifact.Artifact]int{out: 0}, index)
	})

	t.Run("Conflict", func(t *testing.T) {
		registry := actionregistry.NewRegistry()
		out := artifact.MustNew(owner, "out/x")
		a := &fakeAction{key: "compile A", owner: owner, outputs: []artifact.Artifact{out}}
		b := &fakeAction{key: "compile B", owner: owner, outputs: []artifact.Artifact{out}}
		_, _, err := registry.FilterAndIndex(ctx, []actionregistry.Action{a, b})

		var conflictErr *actionregistry.ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Equal(t, out, conflictErr.Output)
		assert.Same(t, a, conflictErr.First)
		assert.Same(t, b, conflictErr.Second)
		assert.Equal(
			t,
			"file out/x is generated by two distinct actions: compile A (owned by //pkg:target) and compile B (owned by //pkg:target)",
			err.Error(),
		)
	})

	t.Run("ConflictNamingIsDeterministic", func(t *testing.T) {
		// Regardless of which evaluation wins the race into the
		// registry, the conflict error must name both actions in
		// the same order.
		for round := 0; round < 10; round++ {
			registry := actionregistry.NewRegistry()
			out := artifact.MustNew(owner, fmt.Sprintf("out/contended-%d", round))
			group, groupCtx := errgroup.WithContext(ctx)
			errs := make([]error, 2)
			for i := 0; i < 2; i++ {
				a := &fakeAction{
					key:     fmt.Sprintf("action %d", i),
					owner:   owner,
					outputs: []artifact.Artifact{out},
				}
				group.Go(func() error {
					_, _, errs[i] = registry.FilterAndIndex(groupCtx, []actionregistry.Action{a})
					return nil
				})
			}
			require.NoError(t, group.Wait())

			var conflicts []*actionregistry.ConflictError
			for _, err := range errs {
				var conflictErr *actionregistry.ConflictError
				if errors.As(err, &conflictErr) {
					conflicts = append(conflicts, conflictErr)
				}
			}
			require.Len(t, conflicts, 1, "exactly one evaluation must lose the race")
			assert.Equal(t, "action 0", conflicts[0].First.GetKey())
			assert.Equal(t, "action 1", conflicts[0].Second.GetKey())
		}
	})
}
