// Package graphexec evaluates a batch of configured targets
// concurrently against a single shared action registry, so that action
// conflicts between targets are detected while their results are
// assembled.
package graphexec

import (
	"context"
	"sync"

	"veranda.build/pkg/analysis"
	"veranda.build/pkg/analysis/actionregistry"
	"veranda.build/pkg/analysis/artifact"
	"veranda.build/pkg/analysis/constraints"
	"veranda.build/pkg/ctxslog"
	"veranda.build/pkg/ds/nestedset"
	"veranda.build/pkg/label"

	"github.com/buildbarn/bb-storage/pkg/util"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	executorPrometheusMetrics sync.Once

	executorTargetsEvaluated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "veranda",
			Subsystem: "graphexec",
			Name:      "targets_evaluated_total",
			Help:      "Number of targets whose analysis was attempted, partitioned by outcome.",
		},
		[]string{"outcome"})
)

// Evaluator runs the rule logic of a single target, populating a
// TargetBuilder with the providers, artifacts and actions the rule
// produces.
type Evaluator interface {
	EvaluateTarget(ctx context.Context, tc *analysis.TargetContext) (*analysis.TargetBuilder, error)
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, tc *analysis.TargetContext) (*analysis.TargetBuilder, error)

// EvaluateTarget calls f.
func (f EvaluatorFunc) EvaluateTarget(ctx context.Context, tc *analysis.TargetContext) (*analysis.TargetBuilder, error) {
	return f(ctx, tc)
}

// Request identifies one target to evaluate and the static information
// its evaluation depends on.
type Request struct {
	Label         label.Label
	Configuration analysis.Configuration
	RuleKind      analysis.RuleKind
	Attributes    analysis.Attributes
}

// Result is the outcome of evaluating one target. Target is nil when
// user visible diagnostics were recorded; the diagnostics explain the
// failure.
type Result struct {
	Target      *analysis.ConfiguredTarget
	Diagnostics []analysis.Diagnostic
}

// Executor evaluates targets concurrently. All targets of a batch share
// one action registry, which detects conflicting actions regardless of
// which target registered them.
type Executor struct {
	evaluator         Evaluator
	constraintChecker constraints.Checker
	registry          *actionregistry.Registry
	concurrency       *semaphore.Weighted
	flattener         *nestedset.Flattener[artifact.Artifact]
}

// NewExecutor creates an Executor running at most concurrency target
// evaluations at once.
func NewExecutor(
	evaluator Evaluator,
	constraintChecker constraints.Checker,
	registry *actionregistry.Registry,
	concurrency int64,
	maximumFlattenedSetCount int,
) *Executor {
	executorPrometheusMetrics.Do(func() {
		prometheus.MustRegister(executorTargetsEvaluated)
	})

	return &Executor{
		evaluator:         evaluator,
		constraintChecker: constraintChecker,
		registry:          registry,
		concurrency:       semaphore.NewWeighted(concurrency),
		flattener:         nestedset.NewFlattener[artifact.Artifact](maximumFlattenedSetCount),
	}
}

// Execute evaluates all requested targets and returns their results by
// label. Evaluation and assembly errors cancel the remaining
// evaluations and are returned; diagnostics do not, as they are part of
// the per-target result.
func (e *Executor) Execute(ctx context.Context, requests []Request) (map[label.Label]*Result, error) {
	results := make(map[label.Label]*Result, len(requests))
	for _, request := range requests {
		if _, ok := results[request.Label]; ok {
			return nil, status.Errorf(codes.InvalidArgument, "Target %#v is requested multiple times", request.Label.String())
		}
		results[request.Label] = nil
	}

	resultsList := make([]*Result, len(requests))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, request := range requests {
		if err := e.concurrency.Acquire(groupCtx, 1); err != nil {
			break
		}
		group.Go(func() error {
			defer e.concurrency.Release(1)
			result, err := e.evaluateTarget(groupCtx, request)
			if err != nil {
				executorTargetsEvaluated.WithLabelValues("error").Inc()
				// Not wrapped: conflict errors must remain
				// matchable by type, and they already name
				// the targets involved.
				return err
			}
			if result.Target == nil {
				executorTargetsEvaluated.WithLabelValues("diagnostics").Inc()
			} else {
				executorTargetsEvaluated.WithLabelValues("success").Inc()
			}
			resultsList[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	for i, request := range requests {
		results[request.Label] = resultsList[i]
	}
	return results, nil
}

func (e *Executor) evaluateTarget(ctx context.Context, request Request) (*Result, error) {
	logger := ctxslog.FromContext(ctx).With(
		"evaluation_id", uuid.Must(uuid.NewRandom()).String(),
		"target", request.Label.String())
	ctx = ctxslog.WithLogger(ctx, logger)

	diagnostics := &analysis.DiagnosticCollector{}
	tc := analysis.NewTargetContext(
		request.Label,
		request.Configuration,
		request.RuleKind,
		request.Attributes,
		diagnostics,
		e.constraintChecker,
	)
	builder, err := e.evaluator.EvaluateTarget(ctx, tc)
	if err != nil {
		return nil, util.StatusWrapf(err, "Failed to evaluate target %#v", request.Label.String())
	}
	configuredTarget, err := builder.Build(ctx, e.registry)
	if err != nil {
		return nil, err
	}

	if configuredTarget == nil {
		logger.Warn("Evaluation recorded diagnostics", "diagnostics", len(diagnostics.GetDiagnostics()))
	} else {
		// Nested sets of files to build are commonly shared
		// between targets, so flattening them through the
		// memoizing flattener keeps this cheap.
		logger.Debug(
			"Evaluation completed",
			"files_to_build", len(e.flattener.ToList(configuredTarget.GetFilesToBuild())),
			"actions", len(configuredTarget.GetActions()))
	}
	return &Result{
		Target:      configuredTarget,
		Diagnostics: diagnostics.GetDiagnostics(),
	}, nil
}
