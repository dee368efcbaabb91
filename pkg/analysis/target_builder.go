// Package analysis assembles the final, immutable analysis result of a
// single target in the build graph: it merges the providers
// contributed by the target's rule logic, derives the files to build
// and run, enforces environment compatibility constraints, and
// validates the registered actions against the build wide action
// registry before sealing the result.
package analysis

import (
	"context"

	"veranda.build/pkg/analysis/actionregistry"
	"veranda.build/pkg/analysis/artifact"
	"veranda.build/pkg/analysis/outputgroups"
	"veranda.build/pkg/analysis/providers"
	"veranda.build/pkg/ds/nestedset"
	"veranda.build/pkg/starlark/variant"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// OutputGroupsProviderName is the identifier under which the well known
// declared provider carrying output groups is exported. Instances of
// it are not stored as opaque entries; their groups are merged into
// the target's output group mapping instead.
const OutputGroupsProviderName = "OutputGroupInfo"

// TargetBuilder accumulates the analysis results produced by one
// target's rule logic and seals them into a ConfiguredTarget. It is
// owned by the single goroutine evaluating the target.
type TargetBuilder struct {
	targetContext *TargetContext

	providers       *providers.MapBuilder
	outputGroups    *outputgroups.Aggregator
	filesToBuild    nestedset.NestedSet[artifact.Artifact]
	filesToRun      *nestedset.Builder[artifact.Artifact]
	runfilesSupport *RunfilesSupport
	executable      *artifact.Artifact
}

// NewTargetBuilder creates a TargetBuilder holding no providers or
// artifacts.
func NewTargetBuilder(targetContext *TargetContext) *TargetBuilder {
	return &TargetBuilder{
		targetContext: targetContext,
		providers:     providers.NewMapBuilder(),
		outputGroups:  outputgroups.NewAggregator(),
		filesToRun:    nestedset.NewBuilder[artifact.Artifact](),
	}
}

// SetFilesToBuild sets the target's default output set.
func (b *TargetBuilder) SetFilesToBuild(filesToBuild nestedset.NestedSet[artifact.Artifact]) *TargetBuilder {
	b.filesToBuild = filesToBuild
	return b
}

// AddFilesToRun adds artifacts that must be present before the target
// can be run. The files to build and the runfiles middleman are added
// automatically at seal time.
func (b *TargetBuilder) AddFilesToRun(files nestedset.NestedSet[artifact.Artifact]) *TargetBuilder {
	b.filesToRun.AddTransitive(files)
	return b
}

// SetRunfilesSupport attaches the run time support data for executable
// targets, along with the artifact to invoke when the target is run.
func (b *TargetBuilder) SetRunfilesSupport(runfilesSupport *RunfilesSupport, executable artifact.Artifact) *TargetBuilder {
	b.runfilesSupport = runfilesSupport
	b.executable = &executable
	return b
}

// AddProvider inserts an entry for a statically known provider kind.
func (b *TargetBuilder) AddProvider(key providers.Key, value any) error {
	return b.providers.Put(key, value)
}

// AddDynamicProvider inserts an entry under a dynamic string name. The
// value must consist only of safe kinds, which its construction through
// the variant package guarantees.
func (b *TargetBuilder) AddDynamicProvider(name string, value variant.Value) error {
	return b.providers.PutDynamic(name, value)
}

// AddDeclaredProvider inserts an instance of a provider kind declared
// in the extension language. The instance's definition must have been
// exported; anonymous definitions are local to their extension file
// and may not leak into the target's public surface.
//
// Instances of the well known output groups provider are special: their
// groups are merged into the target's output group mapping instead of
// being stored as an opaque entry.
func (b *TargetBuilder) AddDeclaredProvider(instance providers.Instance) error {
	identifier, err := instance.GetDefinition().GetIdentifier()
	if err != nil {
		return err
	}
	if identifier.String() == OutputGroupsProviderName {
		return b.mergeDeclaredOutputGroups(instance)
	}
	return b.providers.PutDeclared(instance)
}

// AddNativeDeclaredProvider is the same as AddDeclaredProvider, except
// that it is meant for instances constructed by rule logic implemented
// natively. An anonymous definition is therefore an infrastructure bug
// rather than a user error.
func (b *TargetBuilder) AddNativeDeclaredProvider(instance providers.Instance) error {
	if !instance.GetDefinition().IsExported() {
		return status.Error(codes.Internal, "Natively declared provider has not been exported")
	}
	return b.AddDeclaredProvider(instance)
}

func (b *TargetBuilder) mergeDeclaredOutputGroups(instance providers.Instance) error {
	groups, ok := instance.GetValue().Unwrap().(*starlarkstruct.Struct)
	if !ok {
		return status.Error(codes.InvalidArgument, "Output groups provider value is not a struct")
	}
	for _, name := range groups.AttrNames() {
		value, err := groups.Attr(name)
		if err != nil {
			return err
		}
		switch files := value.(type) {
		case *variant.ArtifactSet:
			b.outputGroups.AddSet(name, files.Set())
		case *starlark.List:
			for i := 0; i < files.Len(); i++ {
				file, ok := files.Index(i).(variant.File)
				if !ok {
					return status.Errorf(codes.InvalidArgument, "Output group %#v contains an element that is not a file", name)
				}
				b.outputGroups.Add(name, file.Artifact())
			}
		default:
			return status.Errorf(codes.InvalidArgument, "Output group %#v is neither a set nor a list of files", name)
		}
	}
	return nil
}

// AddOutputGroup adds a single artifact to the named output group.
func (b *TargetBuilder) AddOutputGroup(name string, file artifact.Artifact) *TargetBuilder {
	b.outputGroups.Add(name, file)
	return b
}

// AddOutputGroupSet unions a set of artifacts into the named output
// group.
func (b *TargetBuilder) AddOutputGroupSet(name string, files nestedset.NestedSet[artifact.Artifact]) *TargetBuilder {
	b.outputGroups.AddSet(name, files)
	return b
}

// AddOutputGroups unions all groups of an existing mapping into the
// target's output groups.
func (b *TargetBuilder) AddOutputGroups(info *outputgroups.Info) *TargetBuilder {
	b.outputGroups.AddInfo(info)
	return b
}

// Build seals the accumulated state into a ConfiguredTarget.
//
// If user visible diagnostics were already recorded by the time the
// constraint check completes, it returns a nil target without error;
// the caller treats the evaluation as failed based on the recorded
// diagnostics. Diagnostics recorded later (e.g., shard count
// violations) still yield a best effort target, so that one evaluation
// pass surfaces as many problems as possible.
//
// Action conflict validation runs last, as provider construction may
// register further actions (notably for freshly synthesized middleman
// artifacts).
func (b *TargetBuilder) Build(ctx context.Context, registry *actionregistry.Registry) (*ConfiguredTarget, error) {
	tc := b.targetContext
	if tc.GetConfiguration().EnforceConstraints {
		if err := b.checkConstraints(ctx); err != nil {
			return nil, err
		}
	}
	if tc.GetDiagnostics().HasErrors() {
		return nil, nil
	}

	runfilesMiddlemen := nestedset.NewBuilder[artifact.Artifact]()
	if b.runfilesSupport != nil {
		runfilesMiddlemen.Add(b.runfilesSupport.GetRunfilesMiddleman())
		runfilesMiddlemen.AddTransitive(b.runfilesSupport.GetRunfiles().GetExtraMiddlemen())
	}
	middlemen := runfilesMiddlemen.Build()

	filesToRunProvider := &FilesToRunProvider{
		filesToRun:      b.filesToRun.AddTransitive(b.filesToBuild).AddTransitive(middlemen).Build(),
		runfilesSupport: b.runfilesSupport,
		executable:      b.executable,
	}
	if err := b.providers.Put(providers.FileKey, &FileProvider{filesToBuild: b.filesToBuild}); err != nil {
		return nil, err
	}
	if err := b.providers.Put(providers.FilesToRunKey, filesToRunProvider); err != nil {
		return nil, err
	}

	if b.runfilesSupport != nil {
		// If a binary is built, build its runfiles too.
		b.outputGroups.AddSet(outputgroups.HiddenTopLevel, middlemen)
	} else if value, ok := b.providers.Get(providers.RunfilesKey); ok {
		// Without runfiles support this is likely not a binary
		// rule, but the files it contributes to the runfiles of
		// dependents should still be built, so that breakage is
		// reported against this target. Only the default
		// runfiles take part in this; contributions through
		// rule specific runfiles providers historically do not.
		runfilesProvider, ok := value.(*RunfilesProvider)
		if !ok {
			return nil, status.Error(codes.Internal, "Runfiles provider has the wrong type")
		}
		b.outputGroups.AddSet(
			outputgroups.HiddenTopLevel,
			runfilesProvider.GetDefaultRunfiles().GetAllArtifacts())
	}

	if tc.GetRuleKind().IsTest {
		if b.runfilesSupport == nil {
			return nil, status.Errorf(codes.Internal, "Test target %#v has no runfiles support", tc.GetLabel().String())
		}
		testProvider, err := b.buildTestProvider(filesToRunProvider)
		if err != nil {
			return nil, err
		}
		if err := b.providers.Put(providers.TestKey, testProvider); err != nil {
			return nil, err
		}
	}

	var outputGroupsInfo *outputgroups.Info
	if !b.outputGroups.IsEmpty() {
		outputGroupsInfo = b.outputGroups.Build()
		if err := b.providers.Put(providers.OutputGroupsKey, outputGroupsInfo); err != nil {
			return nil, err
		}
	}

	providerMap := b.providers.Build()

	// This must remain the last step: everything above may have
	// registered additional actions through the target context.
	actions, generatingActionIndex, err := registry.FilterAndIndex(ctx, tc.GetRegisteredActions())
	if err != nil {
		return nil, err
	}

	return &ConfiguredTarget{
		label:                 tc.GetLabel(),
		providers:             providerMap,
		filesToBuild:          b.filesToBuild,
		outputGroups:          outputGroupsInfo,
		actions:               actions,
		generatingActionIndex: generatingActionIndex,
	}, nil
}
