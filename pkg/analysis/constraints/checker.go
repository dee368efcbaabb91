package constraints

import (
	"context"

	"veranda.build/pkg/label"
)

// Target is the view of a configured target that the constraint
// checking algorithm receives.
type Target interface {
	GetLabel() label.Label
}

// RemovedCulprit records why an environment was removed from a
// target's supported set: the direct dependency whose incompatibility
// caused the removal.
type RemovedCulprit struct {
	Dependency label.Label
}

// Checker is the external constraint checking algorithm. Target result
// assembly treats it as a black box: it only forwards the returned
// refined environment set and removal culprits to dependents, without
// interpreting them.
type Checker interface {
	// GetSupportedEnvironments returns the environment set the
	// target declares to support. A nil result means the target's
	// rule kind does not declare environments, which is not an
	// error.
	GetSupportedEnvironments(ctx context.Context, target Target) (*Collection, error)

	// CheckConstraints verifies that the target's dependencies
	// support its declared environments. The refined set and the
	// removal culprits are returned through the provided output
	// parameters. User visible violations are reported through the
	// build's shared diagnostic collector, not through the returned
	// error, which is reserved for infrastructure failures.
	CheckConstraints(ctx context.Context, target Target, declared *Collection, refined *CollectionBuilder, removedCulprits map[label.Label]RemovedCulprit) error
}
