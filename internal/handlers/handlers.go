// Package handlers is the registry of step kinds. Each kind maps the first
// label of a `step "KIND" "NAME"` block to the Go code that implements it.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/specialistvlad/stepproxy/internal/model"
)

// Handlers holds all the registered step kinds.
type Handlers struct {
	all map[string]*RegisteredHandler
}

// New creates and initializes a new Handlers instance.
func New() *Handlers {
	return &Handlers{
		all: make(map[string]*RegisteredHandler),
	}
}

// RegisteredHandler holds the compiled Go parts of a step kind.
//
// Most kinds set Input and Fn: the step body is decoded into a fresh
// Input value with gohcl each time the step performs, and Fn is called with it.
// Kinds that must configure themselves against the loaded workspace set New
// instead, which is called once per declared step at load time.
type RegisteredHandler struct {
	Input func() any
	Fn    func(ctx context.Context, b *build.Build, input any) (bool, error)

	New func(ctx context.Context, step *model.BuildStep) (build.Builder, error)
}

// RegisterHandler registers a step kind.
func (r *Handlers) RegisterHandler(kind string, handler *RegisteredHandler) {
	if _, exists := r.all[kind]; exists {
		panic(fmt.Sprintf("step kind '%s' already registered", kind))
	}
	if handler.New == nil && (handler.Input == nil || handler.Fn == nil) {
		panic(fmt.Sprintf("step kind '%s' needs either New or both Input and Fn", kind))
	}
	slog.Debug("Registering step kind.", "kind", kind)
	r.all[kind] = handler
}

// Get returns the handler for a step kind.
func (r *Handlers) Get(kind string) (*RegisteredHandler, bool) {
	h, ok := r.all[kind]
	return h, ok
}

// Kinds returns the registered step kinds, sorted.
func (r *Handlers) Kinds() []string {
	kinds := make([]string, 0, len(r.all))
	for k := range r.all {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
