package build

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Build is the state of one execution of a project. It is owned by the
// goroutine running the build and is not safe for concurrent use.
type Build struct {
	ID      uuid.UUID
	Project string
	Number  int
	Dir     string

	console io.Writer
	actions []Action
	env     map[string]string
	chain   []string
}

// New creates a build for the project with the given full name.
func New(project string, number int, console io.Writer) *Build {
	if console == nil {
		console = io.Discard
	}
	return &Build{
		ID:      uuid.New(),
		Project: project,
		Number:  number,
		console: console,
		env:     map[string]string{},
	}
}

// DisplayName is the "project #number" label used in logs.
func (b *Build) DisplayName() string {
	return fmt.Sprintf("%s #%d", b.Project, b.Number)
}

// Console is where steps write their output.
func (b *Build) Console() io.Writer {
	return b.console
}

// Printf writes a line to the build console.
func (b *Build) Printf(format string, args ...any) {
	fmt.Fprintf(b.console, format+"\n", args...)
}

// AddAction attaches an action to the build.
func (b *Build) AddAction(a Action) {
	b.actions = append(b.actions, a)
}

// ParametersActions returns every attached ParametersAction.
func (b *Build) ParametersActions() []*ParametersAction {
	var out []*ParametersAction
	for _, a := range b.actions {
		if pa, ok := a.(*ParametersAction); ok {
			out = append(out, pa)
		}
	}
	return out
}

// SetParameters attaches values on behalf of owner. When owner already
// attached an action its values are replaced in place, so the action keeps its
// position among the others. owner must be a comparable, non-nil value.
func (b *Build) SetParameters(owner any, values []ParameterValue) *ParametersAction {
	for i := len(b.actions) - 1; i >= 0; i-- {
		if pa, ok := b.actions[i].(*ParametersAction); ok && pa.owner == owner {
			pa.Values = append([]ParameterValue(nil), values...)
			return pa
		}
	}
	pa := NewParametersAction(values)
	pa.owner = owner
	b.actions = append(b.actions, pa)
	return pa
}

// Parameters merges all parameter actions. Within one action the first value
// for a name wins; a later action overrides an earlier one.
func (b *Build) Parameters() map[string]cty.Value {
	return b.ParametersExcluding(nil)
}

// ParametersExcluding is Parameters without the actions attached by owner.
func (b *Build) ParametersExcluding(owner any) map[string]cty.Value {
	params := map[string]cty.Value{}
	for _, pa := range b.ParametersActions() {
		if owner != nil && pa.owner == owner {
			continue
		}
		seen := map[string]struct{}{}
		for _, v := range pa.Values {
			if _, dup := seen[v.Name]; dup {
				continue
			}
			seen[v.Name] = struct{}{}
			params[v.Name] = v.Value
		}
	}
	return params
}

// SetEnv sets a build-scoped environment variable.
func (b *Build) SetEnv(name, value string) {
	b.env[name] = value
}

// Environ returns the process environment overlaid with build variables.
func (b *Build) Environ() map[string]string {
	out := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	for k, v := range b.env {
		out[k] = v
	}
	return out
}

// BuildEnv returns only the variables set on the build.
func (b *Build) BuildEnv() map[string]string {
	out := make(map[string]string, len(b.env))
	for k, v := range b.env {
		out[k] = v
	}
	return out
}

// EvalContext exposes `param.*`, `env.*` and `build.*` to step bodies.
func (b *Build) EvalContext() *hcl.EvalContext {
	return b.EvalContextExcluding(nil)
}

// EvalContextExcluding is EvalContext with `param.*` built from
// ParametersExcluding(owner).
func (b *Build) EvalContextExcluding(owner any) *hcl.EvalContext {
	params := b.ParametersExcluding(owner)
	env := map[string]cty.Value{}
	for k, v := range b.Environ() {
		env[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"param": cty.ObjectVal(params),
			"env":   cty.ObjectVal(env),
			"build": cty.ObjectVal(map[string]cty.Value{
				"id":      cty.StringVal(b.ID.String()),
				"project": cty.StringVal(b.Project),
				"number":  cty.NumberIntVal(int64(b.Number)),
			}),
		},
	}
}

// EnterProject records that the steps of the named project are running. It
// reports false when that project is already on the chain; otherwise the
// returned func must be called once its steps are done.
func (b *Build) EnterProject(project string) (func(), bool) {
	for _, p := range b.chain {
		if p == project {
			return nil, false
		}
	}
	b.chain = append(b.chain, project)
	depth := len(b.chain)
	return func() { b.chain = b.chain[:depth-1] }, true
}

// ProjectChain returns the projects whose steps are running, outermost first.
func (b *Build) ProjectChain() []string {
	return append([]string(nil), b.chain...)
}
