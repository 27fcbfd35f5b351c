package proxy

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/specialistvlad/stepproxy/internal/handlers"
	"github.com/specialistvlad/stepproxy/internal/model"
	"github.com/specialistvlad/stepproxy/internal/registry"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// recordingStep is a build step that appends its lifecycle calls to a shared log.
type recordingStep struct {
	name         string
	log          *[]string
	failPrebuild bool
	fail         bool
	err          error
	seen         map[string]cty.Value
}

func (s *recordingStep) Prebuild(ctx context.Context, b *build.Build) bool {
	*s.log = append(*s.log, "prebuild:"+s.name)
	return !s.failPrebuild
}

func (s *recordingStep) Perform(ctx context.Context, b *build.Build) (bool, error) {
	*s.log = append(*s.log, "perform:"+s.name)
	s.seen = b.Parameters()
	return !s.fail, s.err
}

func (s *recordingStep) String() string { return s.name }

func newTestRegistry() *registry.Registry {
	return registry.New(handlers.New())
}

func putProject(t *testing.T, reg *registry.Registry, name string, defs []model.ParameterDefinition, steps ...build.Builder) *model.Project {
	t.Helper()
	p := model.NewProject(name, "", nil)
	if defs != nil {
		p.Parameters = &model.ParametersProperty{Definitions: defs}
	}
	p.SetBuilders(steps)
	require.NoError(t, reg.Put(p))
	return p
}

func stringDef(name string, def *string) model.ParameterDefinition {
	d := model.ParameterDefinition{Name: name, Type: cty.String}
	if def != nil {
		v := cty.StringVal(*def)
		d.Default = &v
	}
	return d
}

func ptr[T any](v T) *T { return &v }

func expr(t *testing.T, src string) hcl.Expression {
	t.Helper()
	e, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return e
}
