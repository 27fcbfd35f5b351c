package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/specialistvlad/stepproxy/internal/buildstore"
	"github.com/specialistvlad/stepproxy/internal/ctxlog"
	"github.com/specialistvlad/stepproxy/internal/model"
	"github.com/specialistvlad/stepproxy/internal/proxy"
)

// ErrProjectDisabled means the project refuses new builds.
var ErrProjectDisabled = errors.New("project is disabled")

type disableable interface {
	IsDisabled() bool
}

type matrix interface {
	Combinations() []map[string]string
}

// Run builds the named project with the given parameter values and records
// the outcome. The returned error covers problems that prevent the build
// from starting at all; a build that starts always yields a record, whose
// Result says how it ended.
func (a *App) Run(ctx context.Context, projectName string, values []build.ParameterValue) (*buildstore.Record, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	project, err := a.resolver.ResolveProject(projectName)
	if err != nil {
		return nil, err
	}
	if d, ok := project.(disableable); ok && d.IsDisabled() {
		return nil, fmt.Errorf("%w: %s", ErrProjectDisabled, project.FullName())
	}

	params, err := proxy.Reconcile(a.resolver.ParameterDefinitions(project.FullName()), values)
	if err != nil {
		return nil, err
	}

	number, err := a.store.NextNumber(ctx, project.FullName())
	if err != nil {
		return nil, err
	}

	rec := &buildstore.Record{
		ID:         uuid.New(),
		Project:    project.FullName(),
		Number:     number,
		Parameters: parameterStrings(params),
		StartedAt:  time.Now().UTC(),
	}
	ctx, logger := ctxlog.With(ctx, "build", fmt.Sprintf("%s #%d", rec.Project, rec.Number))
	logger.Info("🚀 Build started.", "parameters", build.NewParametersAction(params).DisplayName())

	combos := []map[string]string{{}}
	if m, ok := project.(matrix); ok {
		combos = m.Combinations()
	}

	rec.Result = build.ResultSuccess
	var errs []error
	for _, combo := range combos {
		b := a.newBuild(rec, params, combo)
		if len(combo) > 0 {
			b.Printf("=== %s", describeCombination(combo))
		}

		result, err := a.perform(ctx, b, project)
		if err != nil {
			errs = append(errs, err)
		}
		rec.Result = worse(rec.Result, result)
		if result == build.ResultAborted {
			break
		}
	}
	if len(errs) > 0 {
		rec.Error = errors.Join(errs...).Error()
	}
	rec.Duration = time.Since(rec.StartedAt)

	fmt.Fprintf(a.outW, "Finished: %s\n", rec.Result)
	logger.Info("🏁 Build finished.", "result", rec.Result, "duration", rec.Duration)

	// Record even when ctx was cancelled.
	if err := a.store.Save(context.WithoutCancel(ctx), *rec); err != nil {
		return rec, fmt.Errorf("failed to record build: %w", err)
	}
	return rec, nil
}

func (a *App) newBuild(rec *buildstore.Record, params []build.ParameterValue, combo map[string]string) *build.Build {
	b := build.New(rec.Project, rec.Number, a.outW)
	b.ID = rec.ID
	b.Dir = a.config.BuildDir
	b.AddAction(build.NewParametersAction(params))
	if len(combo) > 0 {
		b.AddAction(build.NewParametersAction(combinationParameters(combo)))
	}
	return b
}

// perform runs every step's Prebuild, then performs the steps in order.
func (a *App) perform(ctx context.Context, b *build.Build, project model.Buildable) (build.Result, error) {
	leave, _ := b.EnterProject(project.FullName())
	defer leave()

	steps := project.Builders()
	if !proxy.PrebuildAll(ctx, b, steps) {
		b.Printf("Build aborted before any step ran")
		return build.ResultFailure, nil
	}

	ok, err := proxy.PerformAll(ctx, b, steps)
	switch {
	case ctx.Err() != nil:
		b.Printf("Build was aborted")
		return build.ResultAborted, nil
	case err != nil:
		return build.ResultFailure, err
	case !ok:
		return build.ResultFailure, nil
	default:
		return build.ResultSuccess, nil
	}
}

func worse(a, b build.Result) build.Result {
	rank := map[build.Result]int{build.ResultSuccess: 0, build.ResultFailure: 1, build.ResultAborted: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

func parameterStrings(values []build.ParameterValue) map[string]string {
	out := make(map[string]string, len(values))
	for _, v := range values {
		out[v.Name] = build.FormatValue(v.Value)
	}
	return out
}

func sortedKeys(combo map[string]string) []string {
	keys := make([]string, 0, len(combo))
	for k := range combo {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func combinationParameters(combo map[string]string) []build.ParameterValue {
	out := make([]build.ParameterValue, 0, len(combo))
	for _, k := range sortedKeys(combo) {
		out = append(out, build.StringValue(k, combo[k]))
	}
	return out
}

func describeCombination(combo map[string]string) string {
	parts := make([]string, 0, len(combo))
	for _, k := range sortedKeys(combo) {
		parts = append(parts, k+"="+combo[k])
	}
	return strings.Join(parts, ", ")
}
