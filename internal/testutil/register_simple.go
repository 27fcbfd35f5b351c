package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/stepproxy/internal/app"
	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/specialistvlad/stepproxy/internal/handlers"
)

// RecordInput is the body of a `record` step.
type RecordInput struct {
	ID     string `hcl:"id"`
	Fail   bool   `hcl:"fail,optional"`
	Cancel bool   `hcl:"cancel,optional"`
}

// RecordingModule registers the `record` step kind, which remembers the
// order in which steps performed. A step with `fail = true` fails; one with
// `cancel = true` calls CancelFunc before succeeding.
type RecordingModule struct {
	CancelFunc context.CancelFunc

	mu    sync.Mutex
	calls []string
}

// Module returns the registration function for app.NewApp.
func (m *RecordingModule) Module() app.Module {
	return func(h *handlers.Handlers) {
		h.RegisterHandler("record", &handlers.RegisteredHandler{
			Input: func() any { return new(RecordInput) },
			Fn: func(ctx context.Context, b *build.Build, raw any) (bool, error) {
				in := raw.(*RecordInput)
				m.mu.Lock()
				m.calls = append(m.calls, in.ID)
				m.mu.Unlock()

				if in.Cancel && m.CancelFunc != nil {
					m.CancelFunc()
				}
				return !in.Fail, nil
			},
		})
	}
}

// Calls returns the ids of the steps that performed, in order.
func (m *RecordingModule) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
