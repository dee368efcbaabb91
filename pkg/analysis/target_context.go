package analysis

import (
	"veranda.build/pkg/analysis/actionregistry"
	"veranda.build/pkg/analysis/constraints"
	"veranda.build/pkg/label"
)

// Configuration holds the build wide flags that influence how a
// target's result is assembled.
type Configuration struct {
	// EnforceConstraints enables environment compatibility checking
	// across dependencies for this build.
	EnforceConstraints bool
}

// RuleKind describes the capabilities of the rule from which a target
// was instantiated.
type RuleKind struct {
	// Name of the rule kind (e.g., "go_test"), used for
	// diagnostics.
	Name string
	// IsTest is true if targets of this kind can be executed by the
	// test runner.
	IsTest bool
	// SupportsConstraintChecking is true if targets of this kind
	// participate in environment compatibility checking.
	SupportsConstraintChecking bool
}

// Attributes holds the already parsed rule attribute values that target
// result assembly consumes.
type Attributes struct {
	// ShardCount is the value of the "shard_count" attribute of
	// test rules.
	ShardCount int
	// ShardCountExplicit is true if "shard_count" was specified
	// explicitly, as opposed to assuming its default value.
	ShardCountExplicit bool
	// Tags attached to the rule, copied verbatim into the test
	// provider.
	Tags []string
}

// TargetContext carries the per target inputs that the upstream rule
// evaluation step provides to result assembly. It also collects the
// actions registered while the target's rule logic runs. A
// TargetContext is owned by the single goroutine evaluating its
// target.
type TargetContext struct {
	label             label.Label
	configuration     Configuration
	ruleKind          RuleKind
	attributes        Attributes
	diagnostics       DiagnosticSink
	constraintChecker constraints.Checker

	registeredActions []actionregistry.Action
}

var _ constraints.Target = (*TargetContext)(nil)

// NewTargetContext creates a TargetContext for a single target
// evaluation. constraintChecker may be nil if constraint enforcement is
// disabled for this build.
func NewTargetContext(
	targetLabel label.Label,
	configuration Configuration,
	ruleKind RuleKind,
	attributes Attributes,
	diagnostics DiagnosticSink,
	constraintChecker constraints.Checker,
) *TargetContext {
	return &TargetContext{
		label:             targetLabel,
		configuration:     configuration,
		ruleKind:          ruleKind,
		attributes:        attributes,
		diagnostics:       diagnostics,
		constraintChecker: constraintChecker,
	}
}

// GetLabel returns the label of the target being evaluated.
func (tc *TargetContext) GetLabel() label.Label {
	return tc.label
}

// GetConfiguration returns the build wide configuration flags.
func (tc *TargetContext) GetConfiguration() Configuration {
	return tc.configuration
}

// GetRuleKind returns the capabilities of the target's rule kind.
func (tc *TargetContext) GetRuleKind() RuleKind {
	return tc.ruleKind
}

// GetAttributes returns the parsed attribute values of the target.
func (tc *TargetContext) GetAttributes() Attributes {
	return tc.attributes
}

// GetDiagnostics returns the sink through which user visible problems
// are reported.
func (tc *TargetContext) GetDiagnostics() DiagnosticSink {
	return tc.diagnostics
}

// RegisterAction records an action created while the target's rule
// logic runs, to be validated against the shared action registry when
// the result is sealed.
func (tc *TargetContext) RegisterAction(a actionregistry.Action) {
	tc.registeredActions = append(tc.registeredActions, a)
}

// GetRegisteredActions returns the actions recorded so far, in
// registration order.
func (tc *TargetContext) GetRegisteredActions() []actionregistry.Action {
	return tc.registeredActions
}
