package analysis

import (
	"veranda.build/pkg/analysis/actionregistry"
	"veranda.build/pkg/analysis/artifact"
	"veranda.build/pkg/analysis/outputgroups"
	"veranda.build/pkg/analysis/providers"
	"veranda.build/pkg/ds/nestedset"
	"veranda.build/pkg/label"
)

// ConfiguredTarget is the sealed analysis result of a single target.
// It is created once per target evaluation, never mutated afterwards,
// and lives for the remainder of the build graph's in-memory lifetime.
type ConfiguredTarget struct {
	label                 label.Label
	providers             *providers.Map
	filesToBuild          nestedset.NestedSet[artifact.Artifact]
	outputGroups          *outputgroups.Info
	actions               []actionregistry.Action
	generatingActionIndex map[artifact.Artifact]int
}

// GetLabel returns the label of the target.
func (ct *ConfiguredTarget) GetLabel() label.Label {
	return ct.label
}

// GetProviders returns the sealed provider map, queryable by static
// kind, declared provider identifier, or dynamic name.
func (ct *ConfiguredTarget) GetProviders() *providers.Map {
	return ct.providers
}

// GetFilesToBuild returns the target's default output set.
func (ct *ConfiguredTarget) GetFilesToBuild() nestedset.NestedSet[artifact.Artifact] {
	return ct.filesToBuild
}

// GetOutputGroup returns the artifacts of the named output group.
// Unknown names yield the empty set.
func (ct *ConfiguredTarget) GetOutputGroup(name string) nestedset.NestedSet[artifact.Artifact] {
	if ct.outputGroups == nil {
		return nestedset.Empty[artifact.Artifact]()
	}
	return ct.outputGroups.Get(name)
}

// GetActions returns the filtered list of actions generating this
// target's outputs.
func (ct *ConfiguredTarget) GetActions() []actionregistry.Action {
	return ct.actions
}

// GetGeneratingAction returns the action generating the given output
// artifact of this target.
func (ct *ConfiguredTarget) GetGeneratingAction(output artifact.Artifact) (actionregistry.Action, bool) {
	index, ok := ct.generatingActionIndex[output]
	if !ok {
		return nil, false
	}
	return ct.actions[index], true
}
