package variant

import (
	"fmt"

	pg_label "veranda.build/pkg/label"

	"go.starlark.net/starlark"
)

// Label is the Starlark value corresponding to the address of a target
// within the build graph.
type Label struct {
	value pg_label.Label
}

var (
	_ starlark.Value    = Label{}
	_ starlark.HasAttrs = Label{}
)

// NewLabel wraps a label, so that it can be stored in dynamically named
// provider entries.
func NewLabel(l pg_label.Label) Label {
	return Label{value: l}
}

// Label returns the label wrapped by the Starlark value.
func (l Label) Label() pg_label.Label {
	return l.value
}

func (l Label) String() string {
	return fmt.Sprintf("<label %s>", l.value)
}

// Type returns the name of the type of a label value.
func (Label) Type() string {
	return "Label"
}

// Freeze the contents of the label value. Labels are immutable, so this
// method does nothing.
func (Label) Freeze() {}

// Truth returns whether the label value evaluates to true if implicitly
// converted to a Boolean value. Label values are always true.
func (Label) Truth() starlark.Bool {
	return starlark.True
}

// Hash a label value, so that it can be used as the key of a
// dictionary.
func (l Label) Hash() (uint32, error) {
	return starlark.String(l.value.String()).Hash()
}

// Attr can be used to access the package and name of the label.
func (l Label) Attr(name string) (starlark.Value, error) {
	switch name {
	case "name":
		return starlark.String(l.value.GetTargetName().String()), nil
	case "package":
		return starlark.String(l.value.GetPackagePath()), nil
	default:
		return nil, nil
	}
}

var labelAttrNames = []string{
	"name",
	"package",
}

// AttrNames returns the names of the attributes of a label value.
func (Label) AttrNames() []string {
	return labelAttrNames
}
