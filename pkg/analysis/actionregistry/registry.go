// Package actionregistry implements the build wide registry that maps
// output artifacts to the actions generating them. It is the only
// piece of mutable state shared between concurrently evaluated
// targets, and is responsible for detecting two distinct actions
// claiming the same output.
package actionregistry

import (
	"context"
	"strings"
	"sync"

	"veranda.build/pkg/analysis/artifact"
	"veranda.build/pkg/ctxslog"
	"veranda.build/pkg/label"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registryPrometheusMetrics sync.Once

	registryOutputsRegistered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "veranda",
			Subsystem: "actionregistry",
			Name:      "outputs_registered_total",
			Help:      "Number of output artifacts inserted into the shared registry",
		})
	registrySharedActionsFiltered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "veranda",
			Subsystem: "actionregistry",
			Name:      "shared_actions_filtered_total",
			Help:      "Number of action registrations that were collapsed into a previously registered instance with the same key",
		})
	registryConflictsDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "veranda",
			Subsystem: "actionregistry",
			Name:      "conflicts_detected_total",
			Help:      "Number of times two distinct actions claimed the same output artifact",
		})
)

// Action is an opaque node in the action graph. Actions are identified
// by the outputs they generate and by a key: two actions with the same
// key are logically the same action, regardless of which target's
// evaluation registered them.
type Action interface {
	GetKey() string
	GetOwner() label.Label
	GetOutputs() []artifact.Artifact
}

// Registry is the shared mapping of output artifacts to generating
// actions. It may be accessed by many concurrent target evaluations;
// insertions are atomic check-and-set operations, so that two
// evaluations can never both believe they own the same output.
type Registry struct {
	outputs sync.Map
}

// NewRegistry creates a Registry containing no actions.
func NewRegistry() *Registry {
	registryPrometheusMetrics.Do(func() {
		prometheus.MustRegister(registryOutputsRegistered)
		prometheus.MustRegister(registrySharedActionsFiltered)
		prometheus.MustRegister(registryConflictsDetected)
	})
	return &Registry{}
}

// FilterAndIndex validates the actions registered during one target's
// evaluation against the shared registry. Registrations carrying a key
// that was observed before collapse to the previously registered
// instance. Two distinct actions claiming the same output cause a
// *ConflictError.
//
// On success, it returns the filtered action list and an index mapping
// every output artifact of this target to the position of its
// generating action within that list.
func (r *Registry) FilterAndIndex(ctx context.Context, registered []Action) ([]Action, map[artifact.Artifact]int, error) {
	var filtered []Action
	generatingActionIndex := map[artifact.Artifact]int{}
	indicesByKey := map[string]int{}
	for _, action := range registered {
		if index, ok := indicesByKey[action.GetKey()]; ok {
			// Logically duplicate registration observed
			// earlier during this evaluation.
			registrySharedActionsFiltered.Inc()
			mapOutputs(generatingActionIndex, action, index)
			continue
		}

		canonical := action
		for _, output := range action.GetOutputs() {
			existing, loaded := r.outputs.LoadOrStore(output, action)
			if !loaded {
				registryOutputsRegistered.Inc()
				continue
			}
			existingAction := existing.(Action)
			if existingAction.GetKey() != action.GetKey() {
				registryConflictsDetected.Inc()
				err := newConflictError(output, existingAction, action)
				ctxslog.FromContext(ctx).Error(
					"Action conflict detected",
					"output", output.GetExecPath(),
					"actions", []string{describeAction(err.First), describeAction(err.Second)},
				)
				return nil, nil, err
			}
			// Another evaluation already registered this
			// action. Adopt its instance, so that the
			// action graph holds a single copy.
			registrySharedActionsFiltered.Inc()
			canonical = existingAction
		}

		index := len(filtered)
		filtered = append(filtered, canonical)
		indicesByKey[action.GetKey()] = index
		mapOutputs(generatingActionIndex, action, index)
	}
	return filtered, generatingActionIndex, nil
}

func mapOutputs(generatingActionIndex map[artifact.Artifact]int, action Action, index int) {
	for _, output := range action.GetOutputs() {
		if _, ok := generatingActionIndex[output]; !ok {
			generatingActionIndex[output] = index
		}
	}
}

// ConflictError indicates that two distinct actions claimed the same
// output artifact. First and Second are ordered by their keys, so that
// the error is identical regardless of which target's evaluation won
// the race into the registry.
type ConflictError struct {
	Output        artifact.Artifact
	First, Second Action
}

func newConflictError(output artifact.Artifact, a, b Action) *ConflictError {
	if a.GetKey() > b.GetKey() {
		a, b = b, a
	}
	return &ConflictError{
		Output: output,
		First:  a,
		Second: b,
	}
}

func describeAction(a Action) string {
	return a.GetKey() + " (owned by " + a.GetOwner().String() + ")"
}

func (e *ConflictError) Error() string {
	var sb strings.Builder
	sb.WriteString("file ")
	sb.WriteString(e.Output.GetExecPath())
	sb.WriteString(" is generated by two distinct actions: ")
	sb.WriteString(describeAction(e.First))
	sb.WriteString(" and ")
	sb.WriteString(describeAction(e.Second))
	return sb.String()
}
