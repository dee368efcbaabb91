package label

import (
	"errors"
	"regexp"
	"strings"
)

// Label is the address of a single target within the build graph (e.g.,
// "//tools/compiler:driver"). Labels are also used to name constraint
// environments, as those are declared as ordinary targets.
//
// Label is a comparable value type, which allows it to be used as a map
// key.
type Label struct {
	value string
}

const validLabelPattern = `//(` + validPackagePattern + `)?:` + validTargetNamePattern

var validLabelRegexp = regexp.MustCompile("^" + validLabelPattern + "$")

var errInvalidLabel = errors.New("label must match " + validLabelPattern)

const validPackagePattern = `[\w+\-.=,@~][\w+\-.=,@~/]*`

// NewLabel validates that a string contains a canonical label,
// consisting of a package path and a target name separated by a colon.
// If so, an instance of Label that wraps the value is returned.
func NewLabel(value string) (Label, error) {
	if !validLabelRegexp.MatchString(value) {
		return Label{}, errInvalidLabel
	}
	packagePath, _, _ := strings.Cut(strings.TrimPrefix(value, "//"), ":")
	if strings.HasSuffix(packagePath, "/") || strings.Contains(packagePath, "//") {
		return Label{}, errInvalidLabel
	}
	return Label{value: value}, nil
}

// MustNewLabel is the same as NewLabel, except that it panics if the
// provided value is not a valid label.
func MustNewLabel(value string) Label {
	l, err := NewLabel(value)
	if err != nil {
		panic(err)
	}
	return l
}

func (l Label) String() string {
	return l.value
}

// GetPackagePath returns the path of the package containing the target
// named by this label ("tools/compiler" for "//tools/compiler:driver").
func (l Label) GetPackagePath() string {
	packagePath, _, _ := strings.Cut(strings.TrimPrefix(l.value, "//"), ":")
	return packagePath
}

// GetTargetName returns the name of the target within its package
// ("driver" for "//tools/compiler:driver").
func (l Label) GetTargetName() TargetName {
	_, targetName, _ := strings.Cut(l.value, ":")
	return TargetName{value: targetName}
}

// IsEmpty returns true if the label is the zero value, i.e. it does not
// name any target.
func (l Label) IsEmpty() bool {
	return l.value == ""
}
