package proxy

import (
	"context"
	"fmt"

	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/specialistvlad/stepproxy/internal/ctxlog"
)

// Replayer performs the build steps of a target project.
type Replayer struct {
	resolver *Resolver
}

// NewReplayer creates a replayer that resolves targets with resolver.
func NewReplayer(resolver *Resolver) *Replayer {
	return &Replayer{resolver: resolver}
}

// Replay performs the steps of the named project in order and reports whether
// all of them succeeded. A missing target has no steps, so the replay
// trivially succeeds.
func (r *Replayer) Replay(ctx context.Context, b *build.Build, name string) (bool, error) {
	logger := ctxlog.FromContext(ctx)

	steps := r.resolver.BuildSteps(name)
	if len(steps) == 0 {
		if _, err := r.resolver.ResolveProject(name); err != nil {
			logger.Warn("Proxy target unavailable, nothing to replay.", "target", name, "error", err)
		}
	}

	logger.Debug("Replaying build steps.", "target", name, "steps", len(steps))
	return PerformAll(ctx, b, steps)
}

// PerformAll performs steps in order, stopping at the first failure. Steps
// after a failing one are never performed.
func PerformAll(ctx context.Context, b *build.Build, steps []build.Builder) (bool, error) {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		ok, err := step.Perform(ctx, b)
		if err != nil {
			b.Printf("Build step '%s' failed: %v", describe(step), err)
			return false, err
		}
		if !ok {
			b.Printf("Build step '%s' failed", describe(step))
			return false, nil
		}
	}
	return true, nil
}

// PrebuildAll runs Prebuild on every step, stopping at the first false.
func PrebuildAll(ctx context.Context, b *build.Build, steps []build.Builder) bool {
	for _, step := range steps {
		if !step.Prebuild(ctx, b) {
			return false
		}
	}
	return true
}

func describe(step build.Builder) string {
	if s, ok := step.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", step)
}
