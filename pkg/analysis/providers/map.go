// Package providers implements the capability map that is attached to
// every target's analysis result. Entries are keyed either by a
// statically known provider kind or by a dynamic string name, and are
// unique within one sealed map.
package providers

import (
	"iter"

	"veranda.build/pkg/starlark/variant"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Key identifies a statically known provider kind. The set of keys is
// closed; rule logic cannot invent new static kinds at runtime.
type Key string

// Statically known provider kinds produced during target result
// assembly.
const (
	ExecutionRequirementsKey Key = "ExecutionRequirements"
	FileKey                  Key = "File"
	FilesToRunKey            Key = "FilesToRun"
	InstrumentedFilesKey     Key = "InstrumentedFiles"
	OutputGroupsKey          Key = "OutputGroups"
	RunfilesKey              Key = "Runfiles"
	SupportedEnvironmentsKey Key = "SupportedEnvironments"
	TestKey                  Key = "Test"
	TestEnvironmentKey       Key = "TestEnvironment"
)

// MapBuilder accumulates provider entries for a single target. All
// fallible operations return errors with code INTERNAL, as a duplicate
// or absent entry indicates a bug in the rule logic driving the
// builder, not bad user input.
type MapBuilder struct {
	staticEntries   map[Key]any
	staticOrder     []Key
	declaredEntries map[string]Instance
	declaredOrder   []string
	dynamicEntries  map[string]variant.Value
	dynamicOrder    []string
}

// NewMapBuilder creates a MapBuilder that contains no entries.
func NewMapBuilder() *MapBuilder {
	return &MapBuilder{
		staticEntries:   map[Key]any{},
		declaredEntries: map[string]Instance{},
		dynamicEntries:  map[string]variant.Value{},
	}
}

// Put inserts an entry for a statically known provider kind. The value
// must be present and the kind must not have been inserted before.
func (b *MapBuilder) Put(key Key, value any) error {
	if value == nil {
		return status.Errorf(codes.Internal, "Provider %#v has no value", string(key))
	}
	if _, ok := b.staticEntries[key]; ok {
		return status.Errorf(codes.Internal, "Provider %#v has already been added", string(key))
	}
	b.staticEntries[key] = value
	b.staticOrder = append(b.staticOrder, key)
	return nil
}

// PutDynamic inserts an entry under a dynamic string name. The name
// must not have been inserted before.
func (b *MapBuilder) PutDynamic(name string, value variant.Value) error {
	if !value.IsSet() {
		return status.Errorf(codes.Internal, "Provider %#v has no value", name)
	}
	if _, ok := b.dynamicEntries[name]; ok {
		return status.Errorf(codes.Internal, "Provider %#v has already been added", name)
	}
	b.putDynamic(name, value)
	return nil
}

// PutAllDynamic inserts a sequence of dynamically named entries,
// stopping at the first name that was already present.
func (b *MapBuilder) PutAllDynamic(entries iter.Seq2[string, variant.Value]) error {
	for name, value := range entries {
		if err := b.PutDynamic(name, value); err != nil {
			return err
		}
	}
	return nil
}

// PutDeclared inserts an instance of a provider kind declared in the
// extension language, keyed by the identifier under which the
// definition was exported. Inserting an instance of an anonymous
// definition fails, as that would leak a value that is local to an
// extension file into the target's public surface.
//
// If the definition carries a legacy name, the instance is additionally
// published as a dynamic entry under that name. This registration is
// best-effort: a provider may be reachable both through its definition
// and through a legacy alias, so an alias colliding with an existing
// dynamic entry is skipped rather than treated as a duplicate.
func (b *MapBuilder) PutDeclared(instance Instance) error {
	identifier, err := instance.GetDefinition().GetIdentifier()
	if err != nil {
		return err
	}
	name := identifier.String()
	if _, ok := b.declaredEntries[name]; ok {
		return status.Errorf(codes.Internal, "Provider %#v has already been added", name)
	}
	b.declaredEntries[name] = instance
	b.declaredOrder = append(b.declaredOrder, name)

	if legacyName, ok := instance.GetDefinition().GetLegacyName(); ok {
		if _, ok := b.dynamicEntries[legacyName]; !ok {
			b.putDynamic(legacyName, instance.GetValue())
		}
	}
	return nil
}

func (b *MapBuilder) putDynamic(name string, value variant.Value) {
	b.dynamicEntries[name] = value
	b.dynamicOrder = append(b.dynamicOrder, name)
}

// Get returns the previously inserted entry for a statically known
// provider kind. Unlike lookups on the sealed map, this may be called
// while the builder is still being populated, which target result
// assembly relies on when deriving one provider from another.
func (b *MapBuilder) Get(key Key) (any, bool) {
	value, ok := b.staticEntries[key]
	return value, ok
}

// Has returns true if an entry for the given statically known provider
// kind was inserted.
func (b *MapBuilder) Has(key Key) bool {
	_, ok := b.staticEntries[key]
	return ok
}

// Build seals the accumulated entries into an immutable Map. The
// builder must not be used afterwards.
func (b *MapBuilder) Build() *Map {
	m := &Map{
		staticEntries:   b.staticEntries,
		staticOrder:     b.staticOrder,
		declaredEntries: b.declaredEntries,
		declaredOrder:   b.declaredOrder,
		dynamicEntries:  b.dynamicEntries,
		dynamicOrder:    b.dynamicOrder,
	}
	b.staticEntries = nil
	b.staticOrder = nil
	b.declaredEntries = nil
	b.declaredOrder = nil
	b.dynamicEntries = nil
	b.dynamicOrder = nil
	return m
}

// Map is an immutable collection of provider entries, queryable by
// static kind, declared provider identifier, or dynamic name. Lookups
// are O(1); iteration follows insertion order.
type Map struct {
	staticEntries   map[Key]any
	staticOrder     []Key
	declaredEntries map[string]Instance
	declaredOrder   []string
	dynamicEntries  map[string]variant.Value
	dynamicOrder    []string
}

// Get returns the entry for a statically known provider kind.
func (m *Map) Get(key Key) (any, bool) {
	value, ok := m.staticEntries[key]
	return value, ok
}

// GetDeclared returns the instance of the provider definition exported
// under the given identifier.
func (m *Map) GetDeclared(identifier string) (Instance, bool) {
	instance, ok := m.declaredEntries[identifier]
	return instance, ok
}

// GetDynamic returns the entry registered under a dynamic string name.
func (m *Map) GetDynamic(name string) (variant.Value, bool) {
	value, ok := m.dynamicEntries[name]
	return value, ok
}

// AllStatic iterates over entries of statically known provider kinds in
// insertion order.
func (m *Map) AllStatic() iter.Seq2[Key, any] {
	return func(yield func(Key, any) bool) {
		for _, key := range m.staticOrder {
			if !yield(key, m.staticEntries[key]) {
				return
			}
		}
	}
}

// AllDeclared iterates over declared provider instances in insertion
// order.
func (m *Map) AllDeclared() iter.Seq2[string, Instance] {
	return func(yield func(string, Instance) bool) {
		for _, name := range m.declaredOrder {
			if !yield(name, m.declaredEntries[name]) {
				return
			}
		}
	}
}

// AllDynamic iterates over dynamically named entries in insertion
// order.
func (m *Map) AllDynamic() iter.Seq2[string, variant.Value] {
	return func(yield func(string, variant.Value) bool) {
		for _, name := range m.dynamicOrder {
			if !yield(name, m.dynamicEntries[name]) {
				return
			}
		}
	}
}
