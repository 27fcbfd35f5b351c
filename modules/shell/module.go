// Package shell implements the `shell` step kind, which runs a command
// through `sh -c` in the build directory.
package shell

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/specialistvlad/stepproxy/internal/ctxlog"
	"github.com/specialistvlad/stepproxy/internal/handlers"
)

const Kind = "shell"

// Input defines the body of a shell step.
type Input struct {
	Command string            `hcl:"command"`
	Dir     string            `hcl:"dir,optional"`
	Env     map[string]string `hcl:"env,optional"`
}

// OnPerform runs the command. A non-zero exit status fails the step; failing
// to start the command at all is an error.
func OnPerform(ctx context.Context, b *build.Build, input *Input) (bool, error) {
	logger := ctxlog.FromContext(ctx)

	cmd := exec.CommandContext(ctx, "sh", "-c", input.Command)
	cmd.Dir = workDir(b.Dir, input.Dir)
	cmd.Env = environ(b.Environ(), input.Env)
	cmd.Stdout = b.Console()
	cmd.Stderr = b.Console()

	b.Printf("+ %s", input.Command)
	logger.Debug("Running shell command.", "command", input.Command, "dir", cmd.Dir)

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &exitErr):
		b.Printf("Command exited with status %d", exitErr.ExitCode())
		return false, nil
	default:
		return false, fmt.Errorf("failed to run command: %w", err)
	}
}

func workDir(buildDir, dir string) string {
	switch {
	case dir == "":
		return buildDir
	case filepath.IsAbs(dir) || buildDir == "":
		return dir
	default:
		return filepath.Join(buildDir, dir)
	}
}

func environ(base, extra map[string]string) []string {
	merged := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}

	out := make([]string, 0, len(merged))
	for k, v := range merged {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// RegisterHandler registers the shell step kind.
func RegisterHandler(h *handlers.Handlers) {
	h.RegisterHandler(Kind, &handlers.RegisteredHandler{
		Input: func() any { return new(Input) },
		Fn: func(ctx context.Context, b *build.Build, input any) (bool, error) {
			return OnPerform(ctx, b, input.(*Input))
		},
	})
}
