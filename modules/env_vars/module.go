// Package env_vars implements the `env_vars` step kind. It sets build-scoped
// environment variables that later steps see through `env.*` and that shell
// steps inherit.
package env_vars

import (
	"context"
	"sort"

	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/specialistvlad/stepproxy/internal/ctxlog"
	"github.com/specialistvlad/stepproxy/internal/handlers"
)

const Kind = "env_vars"

// Input defines the body of an env_vars step.
type Input struct {
	Variables map[string]string `hcl:"variables"`
}

// OnPerform sets every variable on the build.
func OnPerform(ctx context.Context, b *build.Build, input *Input) (bool, error) {
	names := make([]string, 0, len(input.Variables))
	for name := range input.Variables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		b.SetEnv(name, input.Variables[name])
	}
	ctxlog.FromContext(ctx).Debug("Set build environment.", "variables", names)
	return true, nil
}

// RegisterHandler registers the env_vars step kind.
func RegisterHandler(h *handlers.Handlers) {
	h.RegisterHandler(Kind, &handlers.RegisteredHandler{
		Input: func() any { return new(Input) },
		Fn: func(ctx context.Context, b *build.Build, input any) (bool, error) {
			return OnPerform(ctx, b, input.(*Input))
		},
	})
}
