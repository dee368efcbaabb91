// Package variant provides the closed set of Starlark value kinds that
// may be stored in dynamically named provider entries of a target's
// analysis result. Permitted kinds are strings, Booleans, integers,
// None, files, labels, artifact sets, and lists, tuples, dictionaries
// and structs composed of these.
//
// Validity of a value is established once, when it is wrapped, instead
// of being rechecked at every place a dynamic provider entry is
// consumed.
package variant

import (
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Value holds a Starlark value that has been validated to consist only
// of safe kinds. The zero value is not valid; instances must be created
// through New.
type Value struct {
	wrapped starlark.Value
}

// New validates that a Starlark value consists only of safe kinds and
// wraps it. The value is frozen, so that later mutation cannot
// invalidate the check.
func New(v starlark.Value) (Value, error) {
	if v == nil {
		return Value{}, status.Error(codes.InvalidArgument, "Value must not be nil")
	}
	if err := check(v); err != nil {
		return Value{}, err
	}
	v.Freeze()
	return Value{wrapped: v}, nil
}

// MustNew is the same as New, except that it panics if the provided
// value contains an unsafe kind.
func MustNew(v starlark.Value) Value {
	value, err := New(v)
	if err != nil {
		panic(err)
	}
	return value
}

// IsSet returns true if the instance was created through New, as
// opposed to being a zero value.
func (v Value) IsSet() bool {
	return v.wrapped != nil
}

// Unwrap returns the validated Starlark value.
func (v Value) Unwrap() starlark.Value {
	return v.wrapped
}

func check(v starlark.Value) error {
	switch typedV := v.(type) {
	case starlark.String, starlark.Bool, starlark.Int, starlark.NoneType:
		return nil
	case File, Label, *ArtifactSet:
		return nil
	case *starlark.List:
		for i := 0; i < typedV.Len(); i++ {
			if err := check(typedV.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case starlark.Tuple:
		for _, element := range typedV {
			if err := check(element); err != nil {
				return err
			}
		}
		return nil
	case *starlark.Dict:
		for _, item := range typedV.Items() {
			if err := check(item[0]); err != nil {
				return err
			}
			if err := check(item[1]); err != nil {
				return err
			}
		}
		return nil
	case *starlarkstruct.Struct:
		for _, name := range typedV.AttrNames() {
			fieldValue, err := typedV.Attr(name)
			if err != nil {
				return err
			}
			if err := check(fieldValue); err != nil {
				return err
			}
		}
		return nil
	default:
		return status.Errorf(codes.InvalidArgument, "Value of type %#v cannot be stored in a provider entry", v.Type())
	}
}
