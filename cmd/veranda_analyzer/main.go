package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"runtime"
	"slices"

	"veranda.build/pkg/analysis"
	"veranda.build/pkg/analysis/actionregistry"
	"veranda.build/pkg/analysis/artifact"
	"veranda.build/pkg/analysis/graphexec"
	"veranda.build/pkg/ctxslog"
	"veranda.build/pkg/ds/nestedset"
	"veranda.build/pkg/label"

	"github.com/buildbarn/bb-storage/pkg/program"
	"github.com/buildbarn/bb-storage/pkg/util"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type targetManifest struct {
	Label              string   `json:"label"`
	RuleKind           string   `json:"rule_kind"`
	IsTest             bool     `json:"is_test"`
	ShardCount         int      `json:"shard_count"`
	ShardCountExplicit bool     `json:"shard_count_explicit"`
	Tags               []string `json:"tags"`
	FilesToBuild       []string `json:"files_to_build"`
}

type manifest struct {
	EnforceConstraints bool             `json:"enforce_constraints"`
	Targets            []targetManifest `json:"targets"`
}

type targetReport struct {
	Label        string                `json:"label"`
	FilesToBuild []string              `json:"files_to_build,omitempty"`
	Actions      int                   `json:"actions,omitempty"`
	Diagnostics  []analysis.Diagnostic `json:"diagnostics,omitempty"`
}

type manifestAction struct {
	key     string
	owner   label.Label
	outputs []artifact.Artifact
}

func (a *manifestAction) GetKey() string                  { return a.key }
func (a *manifestAction) GetOwner() label.Label           { return a.owner }
func (a *manifestAction) GetOutputs() []artifact.Artifact { return a.outputs }

func main() {
	program.RunMain(func(ctx context.Context, siblingsGroup, dependenciesGroup program.Group) error {
		if len(os.Args) != 2 {
			return status.Error(codes.InvalidArgument, "Usage: veranda_analyzer manifest.json")
		}
		manifestData, err := os.ReadFile(os.Args[1])
		if err != nil {
			return util.StatusWrapf(err, "Failed to read %#v", os.Args[1])
		}
		var m manifest
		if err := json.Unmarshal(manifestData, &m); err != nil {
			return util.StatusWrapf(err, "Failed to parse %#v", os.Args[1])
		}

		ctx = ctxslog.WithLogger(ctx, slog.New(slog.NewJSONHandler(os.Stderr, nil)))

		targetsByLabel := map[label.Label]targetManifest{}
		requests := make([]graphexec.Request, 0, len(m.Targets))
		for _, target := range m.Targets {
			targetLabel, err := label.NewLabel(target.Label)
			if err != nil {
				return util.StatusWrapf(err, "Invalid target label %#v", target.Label)
			}
			targetsByLabel[targetLabel] = target
			requests = append(requests, graphexec.Request{
				Label: targetLabel,
				Configuration: analysis.Configuration{
					EnforceConstraints: m.EnforceConstraints,
				},
				RuleKind: analysis.RuleKind{
					Name:   target.RuleKind,
					IsTest: target.IsTest,
				},
				Attributes: analysis.Attributes{
					ShardCount:         target.ShardCount,
					ShardCountExplicit: target.ShardCountExplicit,
					Tags:               target.Tags,
				},
			})
		}

		executor := graphexec.NewExecutor(
			graphexec.EvaluatorFunc(func(ctx context.Context, tc *analysis.TargetContext) (*analysis.TargetBuilder, error) {
				return evaluateManifestTarget(tc, targetsByLabel[tc.GetLabel()])
			}),
			nil,
			actionregistry.NewRegistry(),
			int64(runtime.NumCPU()),
			/* maximumFlattenedSetCount = */ 10000,
		)
		results, err := executor.Execute(ctx, requests)
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(os.Stdout)
		for _, request := range requests {
			result := results[request.Label]
			report := targetReport{
				Label:       request.Label.String(),
				Diagnostics: result.Diagnostics,
			}
			if result.Target != nil {
				for file := range result.Target.GetFilesToBuild().All() {
					report.FilesToBuild = append(report.FilesToBuild, file.GetExecPath())
				}
				slices.Sort(report.FilesToBuild)
				report.Actions = len(result.Target.GetActions())
			}
			if err := encoder.Encode(report); err != nil {
				return util.StatusWrap(err, "Failed to write report")
			}
		}
		return nil
	})
}

// evaluateManifestTarget stands in for real rule logic: every file
// listed in the manifest becomes an output of a single action owned by
// the target.
func evaluateManifestTarget(tc *analysis.TargetContext, target targetManifest) (*analysis.TargetBuilder, error) {
	outputs := make([]artifact.Artifact, 0, len(target.FilesToBuild))
	for _, execPath := range target.FilesToBuild {
		output, err := artifact.New(tc.GetLabel(), execPath)
		if err != nil {
			tc.GetDiagnostics().AttributeError("files_to_build", err.Error())
			continue
		}
		outputs = append(outputs, output)
	}

	b := analysis.NewTargetBuilder(tc)
	if len(outputs) > 0 {
		tc.RegisterAction(&manifestAction{
			key:     "produce outputs of " + tc.GetLabel().String(),
			owner:   tc.GetLabel(),
			outputs: outputs,
		})
		b.SetFilesToBuild(nestedset.FromList(outputs))
	}
	if target.IsTest && len(outputs) > 0 {
		runfiles := analysis.NewRunfiles(
			nestedset.FromList(outputs),
			nestedset.Empty[artifact.Artifact]())
		b.SetRunfilesSupport(
			analysis.NewRunfilesSupport(runfiles, artifact.NewMiddleman(tc.GetLabel(), "runfiles")),
			outputs[0])
	}
	return b, nil
}
