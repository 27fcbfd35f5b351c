package proxy

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/specialistvlad/stepproxy/internal/ctxlog"
	"github.com/specialistvlad/stepproxy/internal/handlers"
	"github.com/specialistvlad/stepproxy/internal/model"
	"github.com/specialistvlad/stepproxy/internal/security"
)

// Kind is the step kind the proxy is registered under.
const Kind = "proxy"

// Input is the body of a proxy step:
//
//	step "proxy" "shared" {
//	  project = "team/library"
//	  parameter "BRANCH" { value = param.BRANCH }
//	}
type Input struct {
	Project    string           `hcl:"project"`
	Parameters []ParameterInput `hcl:"parameter,block"`
}

// ParameterInput is one `parameter` block of a proxy step.
type ParameterInput struct {
	Name  string         `hcl:"name,label"`
	Value hcl.Expression `hcl:"value"`
}

// configurer is the principal used for load-time checks; loading a workspace
// is a configuration change.
var configurer = security.NewPrincipal("workspace-loader", security.Configure)

// RegisterHandler registers the proxy step kind.
func RegisterHandler(h *handlers.Handlers, resolver *Resolver) {
	h.RegisterHandler(Kind, &handlers.RegisteredHandler{
		New: func(ctx context.Context, step *model.BuildStep) (build.Builder, error) {
			return configure(ctx, resolver, step)
		},
	})
}

func configure(ctx context.Context, resolver *Resolver, step *model.BuildStep) (*Proxy, error) {
	var in Input
	if diags := gohcl.DecodeBody(step.Body, nil, &in); diags.HasErrors() {
		return nil, diags
	}

	if v := resolver.CheckProjectName(configurer, in.Project); !v.OK() {
		ctxlog.FromContext(ctx).Warn(v.Message, "step", step.ID(), "source", step.Source.String())
	}

	values := make([]ConfiguredValue, 0, len(in.Parameters))
	for _, p := range in.Parameters {
		values = append(values, ConfiguredValue{Name: p.Name, Value: p.Value})
	}
	px, err := New(resolver, in.Project, values)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Configured proxy.",
		"step", step.ID(), "project", px.ProjectName(), "parameters", configuredNames(px.ParameterValues()))
	return px, nil
}

func configuredNames(values []ConfiguredValue) []string {
	names := make([]string, 0, len(values))
	for _, v := range values {
		names = append(names, v.Name)
	}
	return names
}
