// Package testutil provides the harness the host's integration tests share:
// a workspace written into a temp dir, an App loaded from it and
// instrumented step kinds.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/stepproxy/internal/app"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcome of loading a test workspace.
type HarnessResult struct {
	Output *SafeBuffer
	Err    error
	App    *app.App
	Dir    string
}

// Options tweak the App the harness builds.
type Options struct {
	HistoryDB string
	Modules   []app.Module

	APIPermissions         string
	TrustPermissionsHeader bool
}

// RunIntegrationTest writes files (paths relative to the workspace root)
// into a temp dir, then creates and loads an App over it.
func RunIntegrationTest(t *testing.T, files map[string]string, modules ...app.Module) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithOptions(context.Background(), t, files, Options{Modules: modules})
}

// RunIntegrationTestWithOptions is RunIntegrationTest with a caller context
// and options.
func RunIntegrationTestWithOptions(ctx context.Context, t *testing.T, files map[string]string, opts Options) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	workspaceDir := filepath.Join(tmpDir, "workspace")
	buildDir := filepath.Join(tmpDir, "build")
	require.NoError(t, os.Mkdir(workspaceDir, 0o755))
	require.NoError(t, os.Mkdir(buildDir, 0o755))

	for name, content := range files {
		filePath := filepath.Join(workspaceDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	cfg, err := app.NewConfig(app.Config{
		WorkspacePath: workspaceDir,
		BuildDir:      buildDir,
		HistoryDB:     opts.HistoryDB,
		LogLevel:      "debug",
		LogFormat:     "text",

		APIPermissions:         opts.APIPermissions,
		TrustPermissionsHeader: opts.TrustPermissionsHeader,
	})
	require.NoError(t, err)

	out := &SafeBuffer{}
	testApp, err := app.NewApp(ctx, out, cfg, opts.Modules...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testApp.Close() })

	loadErr := testApp.LoadWorkspace()

	t.Cleanup(func() {
		if os.Getenv("STEPPROXY_TEST_LOGS") == "true" {
			t.Logf("--- Full Output for %s ---\n%s", t.Name(), out.String())
		}
	})

	return &HarnessResult{Output: out, Err: loadErr, App: testApp, Dir: buildDir}
}
