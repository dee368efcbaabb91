// Package constraints provides the environment compatibility data that
// is exchanged between a target's result assembly and the build wide
// constraint checking algorithm. The algorithm itself is an external
// collaborator; this package only defines its integration contract.
package constraints

import (
	"iter"

	"veranda.build/pkg/label"
)

// Collection is an immutable ordered set of constraint environment
// labels that a target claims to support.
type Collection struct {
	environments []label.Label
	membership   map[label.Label]struct{}
}

// NewCollection creates a Collection holding the provided environment
// labels. Duplicates are discarded, retaining first occurrences.
func NewCollection(environments []label.Label) *Collection {
	c := &Collection{
		membership: make(map[label.Label]struct{}, len(environments)),
	}
	for _, environment := range environments {
		if _, ok := c.membership[environment]; !ok {
			c.membership[environment] = struct{}{}
			c.environments = append(c.environments, environment)
		}
	}
	return c
}

// Contains returns true if the collection holds the given environment.
func (c *Collection) Contains(environment label.Label) bool {
	_, ok := c.membership[environment]
	return ok
}

// IsEmpty returns true if the collection holds no environments.
func (c *Collection) IsEmpty() bool {
	return len(c.environments) == 0
}

// IsSubsetOf returns true if every environment in this collection is
// also contained in the other collection.
func (c *Collection) IsSubsetOf(other *Collection) bool {
	for _, environment := range c.environments {
		if !other.Contains(environment) {
			return false
		}
	}
	return true
}

// All iterates over the environments in insertion order.
func (c *Collection) All() iter.Seq[label.Label] {
	return func(yield func(label.Label) bool) {
		for _, environment := range c.environments {
			if !yield(environment) {
				return
			}
		}
	}
}

// ToList returns the environments as a slice, in insertion order.
func (c *Collection) ToList() []label.Label {
	return append([]label.Label(nil), c.environments...)
}

// CollectionBuilder accumulates environment labels into a Collection.
// It is handed to the constraint checking algorithm as an output
// parameter for the refined environment set.
type CollectionBuilder struct {
	environments []label.Label
	membership   map[label.Label]struct{}
}

// NewCollectionBuilder creates a CollectionBuilder holding no
// environments.
func NewCollectionBuilder() *CollectionBuilder {
	return &CollectionBuilder{
		membership: map[label.Label]struct{}{},
	}
}

// Add inserts an environment label, discarding duplicates.
func (b *CollectionBuilder) Add(environment label.Label) *CollectionBuilder {
	if _, ok := b.membership[environment]; !ok {
		b.membership[environment] = struct{}{}
		b.environments = append(b.environments, environment)
	}
	return b
}

// Build seals the accumulated environments into a Collection.
func (b *CollectionBuilder) Build() *Collection {
	return &Collection{
		environments: b.environments,
		membership:   b.membership,
	}
}
