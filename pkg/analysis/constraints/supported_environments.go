package constraints

import (
	"veranda.build/pkg/label"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SupportedEnvironmentsInfo is the provider entry through which a
// target publishes its constraint checking results to dependents.
type SupportedEnvironmentsInfo struct {
	declared        *Collection
	refined         *Collection
	removedCulprits map[label.Label]RemovedCulprit
}

// NewSupportedEnvironmentsInfo pairs a target's declared environment
// set with the refined set computed by the constraint checking
// algorithm. Refinement may only narrow: a refined set containing an
// environment that was never declared indicates a bug in the checking
// algorithm.
func NewSupportedEnvironmentsInfo(declared, refined *Collection, removedCulprits map[label.Label]RemovedCulprit) (*SupportedEnvironmentsInfo, error) {
	if !refined.IsSubsetOf(declared) {
		return nil, status.Error(codes.Internal, "Refined environment set is not a subset of the declared set")
	}
	return &SupportedEnvironmentsInfo{
		declared:        declared,
		refined:         refined,
		removedCulprits: removedCulprits,
	}, nil
}

// GetDeclared returns the environment set the target declared to
// support.
func (i *SupportedEnvironmentsInfo) GetDeclared() *Collection {
	return i.declared
}

// GetRefined returns the environment set that remains after removing
// environments that some dependency does not support.
func (i *SupportedEnvironmentsInfo) GetRefined() *Collection {
	return i.refined
}

// GetRemovedCulprit returns the dependency that caused the given
// environment to be removed during refinement.
func (i *SupportedEnvironmentsInfo) GetRemovedCulprit(environment label.Label) (RemovedCulprit, bool) {
	culprit, ok := i.removedCulprits[environment]
	return culprit, ok
}
