package proxy

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/specialistvlad/stepproxy/internal/ctxlog"
)

// ConfiguredValue is a parameter value as written in the proxy configuration.
// The expression may refer to `param.*` and `env.*`. It is evaluated in
// Prebuild, before any step has run, and again when the proxy performs, so
// it also sees variables set by `env_vars` steps that ran before it.
type ConfiguredValue struct {
	Name  string
	Value hcl.Expression
}

// Proxy is a build step that replays the steps of another project.
type Proxy struct {
	resolver    *Resolver
	replayer    *Replayer
	projectName string
	values      []ConfiguredValue
}

// New configures a proxy for projectName. Every supplied value must name a
// parameter the target currently declares; the first one that does not
// aborts with ErrNoSuchParameterDefinition.
func New(resolver *Resolver, projectName string, values []ConfiguredValue) (*Proxy, error) {
	defs := resolver.ParameterDefinitions(projectName)
	for _, v := range values {
		if _, ok := MatchParameterDefinition(defs, v.Name); !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoSuchParameterDefinition, v.Name)
		}
	}
	return &Proxy{
		resolver:    resolver,
		replayer:    NewReplayer(resolver),
		projectName: projectName,
		values:      append([]ConfiguredValue(nil), values...),
	}, nil
}

// ProjectName is the configured target.
func (p *Proxy) ProjectName() string {
	return p.projectName
}

// ParameterValues returns the configured values.
func (p *Proxy) ParameterValues() []ConfiguredValue {
	return append([]ConfiguredValue(nil), p.values...)
}

// MaterializeParameterValues evaluates the configured values against b and
// converts them to the types the target currently declares. A declared
// default is added only when b does not carry that parameter already, so the
// parameters the build was started with are never replaced by defaults.
// The values this proxy attached to b itself are ignored, which makes the
// call idempotent for a given build and target.
func (p *Proxy) MaterializeParameterValues(ctx context.Context, b *build.Build) ([]build.ParameterValue, error) {
	values, _, err := p.materialize(b, false)
	return values, err
}

// materialize is MaterializeParameterValues. With partial set, values whose
// expression cannot be evaluated yet are left out and named in pending.
func (p *Proxy) materialize(b *build.Build, partial bool) (values []build.ParameterValue, pending []string, err error) {
	evalCtx := b.EvalContextExcluding(p)
	supplied := make([]build.ParameterValue, 0, len(p.values))
	for _, v := range p.values {
		val, diags := v.Value.Value(evalCtx)
		if diags.HasErrors() {
			if partial {
				pending = append(pending, v.Name)
				continue
			}
			return nil, nil, fmt.Errorf("parameter %s: %w", v.Name, diags)
		}
		supplied = append(supplied, build.ParameterValue{Name: v.Name, Value: val})
	}

	defs := p.resolver.ParameterDefinitions(p.projectName)
	values, err = ConvertValues(defs, supplied)
	if err != nil {
		return nil, nil, err
	}

	set := map[string]bool{}
	for name := range b.ParametersExcluding(p) {
		set[name] = true
	}
	for _, name := range pending {
		set[name] = true
	}
	return appendDefaults(defs, values, set), pending, nil
}

// Prebuild attaches the parameter values to the build and runs the target
// steps' Prebuild. Nothing is attached when the target has no steps. Values
// that depend on what earlier steps do are attached when the proxy performs.
func (p *Proxy) Prebuild(ctx context.Context, b *build.Build) bool {
	ctx, logger := ctxlog.With(ctx, "proxy", p.projectName)

	leave, ok := b.EnterProject(p.projectName)
	if !ok {
		b.Printf("%s: %s", ErrProxyCycle, p.chain(b))
		return false
	}
	defer leave()

	steps := p.resolver.BuildSteps(p.projectName)
	if len(steps) == 0 {
		logger.Debug("Proxy target has no build steps.")
		return true
	}

	values, pending, err := p.materialize(b, true)
	if err != nil {
		b.Printf("Proxy of '%s' is misconfigured: %v", p.projectName, err)
		return false
	}
	if len(pending) > 0 {
		logger.Debug("Parameters will be evaluated when the proxy performs.", "pending", pending)
	}
	action := b.SetParameters(p, values)
	logger.Debug("Attached parameters.", "parameters", action.DisplayName())

	return PrebuildAll(ctx, b, steps)
}

// Perform re-attaches the parameter values, now evaluated against the build
// as earlier steps left it, and replays the target's steps.
func (p *Proxy) Perform(ctx context.Context, b *build.Build) (bool, error) {
	ctx, logger := ctxlog.With(ctx, "proxy", p.projectName)

	leave, ok := b.EnterProject(p.projectName)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrProxyCycle, p.chain(b))
	}
	defer leave()

	if len(p.resolver.BuildSteps(p.projectName)) > 0 {
		values, err := p.MaterializeParameterValues(ctx, b)
		if err != nil {
			b.Printf("Proxy of '%s' is misconfigured: %v", p.projectName, err)
			return false, nil
		}
		action := b.SetParameters(p, values)
		logger.Debug("Attached parameters.", "parameters", action.DisplayName())
	}

	logger.Info("Using build steps from another project.")
	return p.replayer.Replay(ctx, b, p.projectName)
}

// String identifies the step in build logs.
func (p *Proxy) String() string {
	return "proxy " + p.projectName
}

func (p *Proxy) chain(b *build.Build) string {
	return strings.Join(append(b.ProjectChain(), p.projectName), " -> ")
}
