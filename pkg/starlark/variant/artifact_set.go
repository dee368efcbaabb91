package variant

import (
	"fmt"

	"veranda.build/pkg/analysis/artifact"
	"veranda.build/pkg/ds/nestedset"

	"go.starlark.net/starlark"
)

// ArtifactSet is the Starlark value corresponding to a structurally
// shared set of artifacts. It is the shape in which transitive file
// collections are stored in dynamically named provider entries.
type ArtifactSet struct {
	set nestedset.NestedSet[artifact.Artifact]
}

var (
	_ starlark.Value    = &ArtifactSet{}
	_ starlark.HasAttrs = &ArtifactSet{}
)

// NewArtifactSet wraps a nested set of artifacts, so that it can be
// stored in dynamically named provider entries.
func NewArtifactSet(set nestedset.NestedSet[artifact.Artifact]) *ArtifactSet {
	return &ArtifactSet{set: set}
}

// Set returns the nested set wrapped by the Starlark value.
func (as *ArtifactSet) Set() nestedset.NestedSet[artifact.Artifact] {
	return as.set
}

func (*ArtifactSet) String() string {
	return "<artifact set>"
}

// Type returns the name of the type of an artifact set value.
func (*ArtifactSet) Type() string {
	return "ArtifactSet"
}

// Freeze the contents of the artifact set. Sealed nested sets are
// immutable, so this method does nothing.
func (*ArtifactSet) Freeze() {}

// Truth returns whether the artifact set evaluates to true or false if
// implicitly converted to a Boolean value. Only non-empty sets evaluate
// to true.
func (as *ArtifactSet) Truth() starlark.Bool {
	return starlark.Bool(!as.set.IsEmpty())
}

// Hash an artifact set value. Artifact sets only offer reference
// equality and cannot be used as dictionary keys.
func (as *ArtifactSet) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: %s", as.Type())
}

// Attr can be used to access attributes of the artifact set. Artifact
// sets only provide a single method named to_list(), which can be used
// to convert the set to a deduplicated list of files.
func (as *ArtifactSet) Attr(name string) (starlark.Value, error) {
	switch name {
	case "to_list":
		return starlark.NewBuiltin("ArtifactSet.to_list", as.doToList), nil
	default:
		return nil, nil
	}
}

var artifactSetAttrNames = []string{
	"to_list",
}

// AttrNames returns the names of the attributes of an artifact set
// value.
func (*ArtifactSet) AttrNames() []string {
	return artifactSetAttrNames
}

func (as *ArtifactSet) doToList(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}
	var elements []starlark.Value
	for a := range as.set.All() {
		elements = append(elements, NewFile(a))
	}
	return starlark.NewList(elements), nil
}
