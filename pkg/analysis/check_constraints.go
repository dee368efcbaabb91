package analysis

import (
	"context"

	"veranda.build/pkg/analysis/constraints"
	"veranda.build/pkg/analysis/providers"
	"veranda.build/pkg/label"

	"github.com/buildbarn/bb-storage/pkg/util"
)

// checkConstraints invokes the build's constraint enforcement system:
// it checks that the target's dependencies support its declared
// environments and publishes the refinement results for dependents to
// consume. Violations are reported by the checking algorithm through
// the shared diagnostic collector; this integration does not interpret
// them.
func (b *TargetBuilder) checkConstraints(ctx context.Context) error {
	tc := b.targetContext
	if !tc.GetRuleKind().SupportsConstraintChecking {
		return nil
	}
	checker := tc.constraintChecker
	declared, err := checker.GetSupportedEnvironments(ctx, tc)
	if err != nil {
		return util.StatusWrap(err, "Failed to obtain supported environments")
	}
	if declared == nil {
		// Not every rule kind declares environments.
		return nil
	}

	refined := constraints.NewCollectionBuilder()
	removedCulprits := map[label.Label]constraints.RemovedCulprit{}
	if err := checker.CheckConstraints(ctx, tc, declared, refined, removedCulprits); err != nil {
		return util.StatusWrap(err, "Failed to check constraints")
	}
	info, err := constraints.NewSupportedEnvironmentsInfo(declared, refined.Build(), removedCulprits)
	if err != nil {
		return err
	}
	return b.providers.Put(providers.SupportedEnvironmentsKey, info)
}
