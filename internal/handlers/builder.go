package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/specialistvlad/stepproxy/internal/ctxlog"
	"github.com/specialistvlad/stepproxy/internal/model"
)

// NewBuilder turns a declared step into a build.Builder. Unknown kinds and
// bodies that do not match the kind's schema are load errors.
func (r *Handlers) NewBuilder(ctx context.Context, step *model.BuildStep) (build.Builder, error) {
	h, ok := r.Get(step.Kind)
	if !ok {
		return nil, fmt.Errorf("%s: unknown step kind '%s' (registered: %s)",
			step.Source, step.Kind, strings.Join(r.Kinds(), ", "))
	}

	if h.New != nil {
		b, err := h.New(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("%s: step %s: %w", step.Source, step.ID(), err)
		}
		return b, nil
	}

	schema, _ := gohcl.ImpliedBodySchema(h.Input())
	if _, diags := step.Body.Content(schema); diags.HasErrors() {
		return nil, fmt.Errorf("step %s: %w", step.ID(), diags)
	}
	return &hclBuilder{step: step, handler: h}, nil
}

// hclBuilder runs a step kind whose input is decoded from the step body.
type hclBuilder struct {
	step    *model.BuildStep
	handler *RegisteredHandler
}

// Prebuild implements build.Builder.
func (s *hclBuilder) Prebuild(ctx context.Context, b *build.Build) bool {
	return true
}

// Perform implements build.Builder.
func (s *hclBuilder) Perform(ctx context.Context, b *build.Build) (bool, error) {
	ctx, logger := ctxlog.With(ctx, "step", s.step.ID())
	logger.Debug("Decoding step input.")

	input := s.handler.Input()
	if diags := gohcl.DecodeBody(s.step.Body, b.EvalContext(), input); diags.HasErrors() {
		b.Printf("[%s] invalid step configuration: %s", s.step.ID(), diags.Error())
		return false, nil
	}

	logger.Debug("Calling step handler.")
	ok, err := s.handler.Fn(ctx, b, input)
	if err != nil {
		return false, fmt.Errorf("step %s: %w", s.step.ID(), err)
	}
	return ok, nil
}

// String identifies the step in logs.
func (s *hclBuilder) String() string {
	return s.step.ID()
}
