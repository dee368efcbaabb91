package analysis

import (
	"maps"
	"slices"

	"veranda.build/pkg/analysis/artifact"
	"veranda.build/pkg/analysis/providers"
	"veranda.build/pkg/ds/nestedset"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MaximumShardCount is the largest number of shards a test may declare.
// Values above it are reported as a diagnostic, as needing that many
// shards indicates the test itself should be split up.
const MaximumShardCount = 50

// InstrumentedFilesInfo is the provider entry carrying the source files
// that coverage instrumentation applies to.
type InstrumentedFilesInfo struct {
	// InstrumentedFiles are the files whose coverage is measured
	// when the target is tested with coverage collection enabled.
	InstrumentedFiles nestedset.NestedSet[artifact.Artifact]
}

// TestEnvironmentInfo is the provider entry carrying extra environment
// variables that a rule requests to be set when its tests run.
type TestEnvironmentInfo struct {
	Environment map[string]string
}

// ExecutionRequirementsInfo is the provider entry carrying opaque
// key-value requirements on the machine executing the target's tests.
type ExecutionRequirementsInfo struct {
	Requirements map[string]string
}

// TestParams holds the derived parameters controlling how a test target
// is executed.
type TestParams struct {
	shardCount            int
	executionRequirements map[string]string
	environment           map[string]string
	instrumentedFiles     nestedset.NestedSet[artifact.Artifact]
	filesToRun            *FilesToRunProvider
}

// GetShardCount returns the number of partitions the test's executions
// are split into. Zero means no explicit sharding.
func (p *TestParams) GetShardCount() int {
	return p.shardCount
}

// GetExecutionRequirements returns the requirements on the machine
// executing the test.
func (p *TestParams) GetExecutionRequirements() map[string]string {
	return p.executionRequirements
}

// GetEnvironment returns the extra environment variables set when the
// test runs.
func (p *TestParams) GetEnvironment() map[string]string {
	return p.environment
}

// GetEnvironmentNames returns the names of the extra environment
// variables in sorted order, which gives downstream consumers a
// deterministic iteration order.
func (p *TestParams) GetEnvironmentNames() []string {
	return slices.Sorted(maps.Keys(p.environment))
}

// GetInstrumentedFiles returns the files whose coverage is measured.
func (p *TestParams) GetInstrumentedFiles() nestedset.NestedSet[artifact.Artifact] {
	return p.instrumentedFiles
}

// GetFilesToRun returns the files to run bundle of the test executable.
func (p *TestParams) GetFilesToRun() *FilesToRunProvider {
	return p.filesToRun
}

// TestProvider is the provider entry attached to test targets, carrying
// the derived execution parameters and the rule's tags.
type TestProvider struct {
	params TestParams
	tags   []string
}

// GetParams returns the derived test execution parameters.
func (tp *TestProvider) GetParams() *TestParams {
	return &tp.params
}

// GetTags returns the tags of the rule, which the test runner consults
// for filtering and for implicit execution requirements.
func (tp *TestProvider) GetTags() []string {
	return tp.tags
}

// buildTestProvider derives the test provider for a test target. Shard
// count violations are reported as diagnostics and evaluation continues
// with the invalid value retained, as downstream test count reporting
// still needs a stable value.
func (b *TargetBuilder) buildTestProvider(filesToRun *FilesToRunProvider) (*TestProvider, error) {
	tc := b.targetContext
	attributes := tc.GetAttributes()
	shardCount := attributes.ShardCount
	if shardCount < 0 && attributes.ShardCountExplicit {
		tc.GetDiagnostics().AttributeError("shard_count", "Must not be negative.")
	}
	if shardCount > MaximumShardCount {
		tc.GetDiagnostics().AttributeError(
			"shard_count",
			"Having more than 50 shards is indicative of poor test organization. Please reduce the number of shards.")
	}

	params := TestParams{
		shardCount: shardCount,
		filesToRun: filesToRun,
	}
	if value, ok := b.providers.Get(providers.InstrumentedFilesKey); ok {
		info, ok := value.(*InstrumentedFilesInfo)
		if !ok {
			return nil, status.Error(codes.Internal, "Instrumented files provider has the wrong type")
		}
		params.instrumentedFiles = info.InstrumentedFiles
	}
	if value, ok := b.providers.Get(providers.TestEnvironmentKey); ok {
		info, ok := value.(*TestEnvironmentInfo)
		if !ok {
			return nil, status.Error(codes.Internal, "Test environment provider has the wrong type")
		}
		params.environment = maps.Clone(info.Environment)
	}
	if value, ok := b.providers.Get(providers.ExecutionRequirementsKey); ok {
		info, ok := value.(*ExecutionRequirementsInfo)
		if !ok {
			return nil, status.Error(codes.Internal, "Execution requirements provider has the wrong type")
		}
		params.executionRequirements = maps.Clone(info.Requirements)
	}

	return &TestProvider{
		params: params,
		tags:   slices.Clone(attributes.Tags),
	}, nil
}
