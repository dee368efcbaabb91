package providers

import (
	"veranda.build/pkg/label"
	"veranda.build/pkg/starlark/variant"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Definition describes a provider kind that was declared in the
// extension language. A definition starts out anonymous; it only
// becomes usable as a provider map key once the enclosing extension
// file finishes loading and the definition is exported under the name
// of the global variable to which it was assigned.
type Definition struct {
	identifier *label.StarlarkIdentifier
	legacyName string
}

// NewDefinition creates a provider definition that has not been
// exported yet. legacyName may optionally hold a dynamic entry name
// under which instances of this provider are additionally published for
// consumers that predate declared providers; it may be left empty.
func NewDefinition(legacyName string) *Definition {
	return &Definition{legacyName: legacyName}
}

// Export assigns the name under which the definition became visible as
// a top level value of its extension file.
func (d *Definition) Export(identifier label.StarlarkIdentifier) {
	d.identifier = &identifier
}

// IsExported returns true if the definition has become visible as a top
// level value of its extension file.
func (d *Definition) IsExported() bool {
	return d.identifier != nil
}

// GetIdentifier returns the name under which the definition was
// exported. It fails if the definition is still anonymous.
func (d *Definition) GetIdentifier() (label.StarlarkIdentifier, error) {
	if d.identifier == nil {
		return label.StarlarkIdentifier{}, status.Error(codes.InvalidArgument, "Provider has not been exported")
	}
	return *d.identifier, nil
}

// GetLegacyName returns the dynamic entry name under which instances of
// this provider are additionally published, if any.
func (d *Definition) GetLegacyName() (string, bool) {
	return d.legacyName, d.legacyName != ""
}

// Instance is a single fact constructed from a provider definition,
// ready to be attached to a target's analysis result.
type Instance struct {
	definition *Definition
	value      variant.Value
}

// NewInstance pairs a provider definition with a validated value.
func NewInstance(definition *Definition, value variant.Value) Instance {
	return Instance{
		definition: definition,
		value:      value,
	}
}

// GetDefinition returns the definition from which the instance was
// constructed.
func (i Instance) GetDefinition() *Definition {
	return i.definition
}

// GetValue returns the validated value carried by the instance.
func (i Instance) GetValue() variant.Value {
	return i.value
}
