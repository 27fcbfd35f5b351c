// Package print implements the `print` step kind, which writes a message to
// the build console.
package print

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/specialistvlad/stepproxy/internal/ctxlog"
	"github.com/specialistvlad/stepproxy/internal/handlers"
)

// Kind is the step kind this package registers.
const Kind = "print"

// Input defines the body of a print step.
type Input struct {
	Message string            `hcl:"message,optional"`
	Values  map[string]string `hcl:"values,optional"`
}

// OnPerform writes the message, then any values sorted by key.
func OnPerform(ctx context.Context, b *build.Build, input *Input) (bool, error) {
	ctxlog.FromContext(ctx).Debug("Printing message.", "build", b.DisplayName())

	if input.Message != "" {
		b.Printf("%s", input.Message)
	}

	// Sort keys for consistent output
	keys := make([]string, 0, len(input.Values))
	for k := range input.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(b.Console(), "  %s = %q\n", k, input.Values[k])
	}
	return true, nil
}

// RegisterHandler registers the print step kind.
func RegisterHandler(h *handlers.Handlers) {
	h.RegisterHandler(Kind, &handlers.RegisteredHandler{
		Input: func() any { return new(Input) },
		Fn: func(ctx context.Context, b *build.Build, input any) (bool, error) {
			return OnPerform(ctx, b, input.(*Input))
		},
	})
}
