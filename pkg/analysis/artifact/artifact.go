// Package artifact provides the identity type for files that are
// tracked by the build graph, either as source files or as outputs of
// actions.
package artifact

import (
	"strings"

	"veranda.build/pkg/label"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Artifact identifies a single file tracked by the build graph. Two
// Artifact values are the same file if and only if they are equal,
// which allows Artifact to be used as a map key and as an element of a
// nested set.
type Artifact struct {
	execPath string
	owner    label.Label
}

// New creates an artifact identified by a root relative execution path,
// owned by the target whose evaluation creates it.
func New(owner label.Label, execPath string) (Artifact, error) {
	if execPath == "" || strings.HasPrefix(execPath, "/") {
		return Artifact{}, status.Errorf(codes.InvalidArgument, "Execution path %#v is not root relative", execPath)
	}
	return Artifact{
		execPath: execPath,
		owner:    owner,
	}, nil
}

// MustNew is the same as New, except that it panics if the provided
// execution path is invalid.
func MustNew(owner label.Label, execPath string) Artifact {
	a, err := New(owner, execPath)
	if err != nil {
		panic(err)
	}
	return a
}

// NewMiddleman synthesizes an artifact that stands in for an aggregate
// of other artifacts (e.g., the runfiles of an executable) in the
// action graph. Middlemen never correspond to a file on disk, so their
// execution paths only need to be unique within the build.
func NewMiddleman(owner label.Label, purpose string) Artifact {
	return Artifact{
		execPath: "_middlemen/" + strings.ReplaceAll(owner.GetTargetName().String(), "/", "_") +
			"-" + purpose + "-" + uuid.Must(uuid.NewRandom()).String(),
		owner: owner,
	}
}

// GetExecPath returns the path at which the artifact is placed in the
// execution root.
func (a Artifact) GetExecPath() string {
	return a.execPath
}

// GetOwner returns the label of the target whose evaluation created the
// artifact.
func (a Artifact) GetOwner() label.Label {
	return a.owner
}

// IsMiddleman returns true if the artifact was created by NewMiddleman
// and does not correspond to a file on disk.
func (a Artifact) IsMiddleman() bool {
	return strings.HasPrefix(a.execPath, "_middlemen/")
}

func (a Artifact) String() string {
	return a.execPath
}
