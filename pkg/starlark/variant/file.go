package variant

import (
	"fmt"

	"veranda.build/pkg/analysis/artifact"

	"go.starlark.net/starlark"
)

// File is the Starlark value corresponding to an artifact tracked by
// the build graph.
type File struct {
	artifact artifact.Artifact
}

var (
	_ starlark.Value    = File{}
	_ starlark.HasAttrs = File{}
)

// NewFile wraps an artifact, so that it can be stored in dynamically
// named provider entries.
func NewFile(a artifact.Artifact) File {
	return File{artifact: a}
}

// Artifact returns the artifact wrapped by the Starlark value.
func (f File) Artifact() artifact.Artifact {
	return f.artifact
}

func (f File) String() string {
	return fmt.Sprintf("<file %s>", f.artifact.GetExecPath())
}

// Type returns the name of the type of a file value.
func (File) Type() string {
	return "File"
}

// Freeze the contents of the file value. Artifacts are immutable, so
// this method does nothing.
func (File) Freeze() {}

// Truth returns whether the file value evaluates to true if implicitly
// converted to a Boolean value. File values are always true.
func (File) Truth() starlark.Bool {
	return starlark.True
}

// Hash a file value, so that it can be used as the key of a dictionary.
func (f File) Hash() (uint32, error) {
	return starlark.String(f.artifact.GetExecPath()).Hash()
}

// Attr can be used to access the path and owner of the file.
func (f File) Attr(name string) (starlark.Value, error) {
	switch name {
	case "path":
		return starlark.String(f.artifact.GetExecPath()), nil
	case "owner":
		return Label{value: f.artifact.GetOwner()}, nil
	default:
		return nil, nil
	}
}

var fileAttrNames = []string{
	"owner",
	"path",
}

// AttrNames returns the names of the attributes of a file value.
func (File) AttrNames() []string {
	return fileAttrNames
}
