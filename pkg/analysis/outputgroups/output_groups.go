// Package outputgroups implements named subsets of a target's output
// artifacts that are only built when explicitly requested, separate
// from the default output set.
package outputgroups

import (
	"iter"
	"maps"
	"slices"

	"veranda.build/pkg/analysis/artifact"
	"veranda.build/pkg/ds/nestedset"
)

// HiddenTopLevel is the reserved name of the output group that is built
// whenever its target is requested at the top level, but whose
// artifacts are not part of the default output set. It is used to force
// building the runfiles of binaries and of targets that merely
// contribute files to the runfiles of their dependents.
const HiddenTopLevel = "_hidden_top_level_INTERNAL_"

// Aggregator accumulates artifacts into named output groups. Group
// builders are created lazily; a name that is never added to does not
// appear in the sealed result.
type Aggregator struct {
	builders map[string]*nestedset.Builder[artifact.Artifact]
}

// NewAggregator creates an Aggregator containing no output groups.
func NewAggregator() *Aggregator {
	return &Aggregator{
		builders: map[string]*nestedset.Builder[artifact.Artifact]{},
	}
}

func (a *Aggregator) getBuilder(name string) *nestedset.Builder[artifact.Artifact] {
	b, ok := a.builders[name]
	if !ok {
		b = nestedset.NewBuilder[artifact.Artifact]()
		a.builders[name] = b
	}
	return b
}

// Add inserts a single artifact into the named group.
func (a *Aggregator) Add(name string, file artifact.Artifact) {
	a.getBuilder(name).Add(file)
}

// AddSet unions a set of artifacts into the named group. Repeated
// additions to the same name accumulate; they never overwrite.
func (a *Aggregator) AddSet(name string, files nestedset.NestedSet[artifact.Artifact]) {
	a.getBuilder(name).AddTransitive(files)
}

// AddInfo unions all groups of an existing sealed mapping into this
// aggregator, which happens when a dependency's output groups are
// forwarded wholesale.
func (a *Aggregator) AddInfo(info *Info) {
	for name, files := range info.All() {
		a.AddSet(name, files)
	}
}

// IsEmpty returns true if no group was ever added to.
func (a *Aggregator) IsEmpty() bool {
	return len(a.builders) == 0
}

// Build seals every group's accumulated artifacts into an immutable
// name to set mapping.
func (a *Aggregator) Build() *Info {
	groups := make(map[string]nestedset.NestedSet[artifact.Artifact], len(a.builders))
	for name, b := range a.builders {
		groups[name] = b.Build()
	}
	return &Info{groups: groups}
}

// Info is an immutable mapping of output group names to artifact sets.
type Info struct {
	groups map[string]nestedset.NestedSet[artifact.Artifact]
}

// Get returns the artifacts of the named group. Unknown names yield the
// empty set.
func (i *Info) Get(name string) nestedset.NestedSet[artifact.Artifact] {
	return i.groups[name]
}

// Has returns true if the named group is present in the mapping.
func (i *Info) Has(name string) bool {
	_, ok := i.groups[name]
	return ok
}

// All iterates over the groups, sorted by name.
func (i *Info) All() iter.Seq2[string, nestedset.NestedSet[artifact.Artifact]] {
	names := slices.Sorted(maps.Keys(i.groups))
	return func(yield func(string, nestedset.NestedSet[artifact.Artifact]) bool) {
		for _, name := range names {
			if !yield(name, i.groups[name]) {
				return
			}
		}
	}
}
