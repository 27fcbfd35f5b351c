package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workspaceHCL = `
project "library" {
  parameters {
    parameter "GREETING" {
      type    = string
      default = "hello"
    }
    parameter "TIMES" {
      type    = number
      default = 1
    }
  }
  step "print" "greet" {
    message = "${param.GREETING} x${param.TIMES}"
  }
}

project "app" {
  step "proxy" "library" {
    project = "library"
  }
}

project "broken" {
  step "shell" "fail" {
    command = "exit 1"
  }
}

folder "team" {
  external_job "nightly" {}
}
`

func writeWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.hcl"), []byte(workspaceHCL), 0o644))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := Execute(context.Background(), &out, args)
	return out.String(), err
}

func requireExitCode(t *testing.T, err error, code int) *ExitError {
	t.Helper()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected ExitError, got %v", err)
	assert.Equal(t, code, exitErr.Code)
	return exitErr
}

func TestRun(t *testing.T) {
	ws := writeWorkspace(t)

	out, err := execute(t, "run", "app", "-w", ws, "--log-level", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, "hello x1\n")
	assert.Contains(t, out, "Finished: SUCCESS")
}

func TestRun_Parameters(t *testing.T) {
	ws := writeWorkspace(t)
	paramsFile := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(paramsFile, []byte("GREETING: hi\nTIMES: 3\n"), 0o644))

	out, err := execute(t, "run", "library", "-w", ws, "--params-file", paramsFile)
	require.NoError(t, err)
	assert.Contains(t, out, "hi x3\n")

	out, err = execute(t, "run", "library", "-w", ws, "--params-file", paramsFile, "-p", "GREETING=hey")
	require.NoError(t, err)
	assert.Contains(t, out, "hey x3\n")
}

func TestRun_Failures(t *testing.T) {
	ws := writeWorkspace(t)

	testCases := []struct {
		name    string
		args    []string
		code    int
		message string
	}{
		{name: "failing build", args: []string{"run", "broken"}, code: ExitFailure, message: "broken #1 failed"},
		{name: "unknown parameter", args: []string{"run", "library", "-p", "NOPE=1"}, code: ExitUsage, message: "no such parameter definition: NOPE"},
		{name: "malformed parameter", args: []string{"run", "library", "-p", "NOPE"}, code: ExitUsage, message: "expected NAME=VALUE"},
		{name: "bad number", args: []string{"run", "library", "-p", "TIMES=lots"}, code: ExitFailure, message: "is not a valid number"},
		{name: "missing project", args: []string{"run", "nope"}, code: ExitFailure, message: "no such project: nope"},
		{name: "not buildable", args: []string{"run", "team/nightly"}, code: ExitFailure, message: "not a buildable project"},
		{name: "missing argument", args: []string{"run"}, code: ExitUsage, message: "accepts 1 arg(s)"},
		{name: "unknown flag", args: []string{"run", "app", "--nope"}, code: ExitUsage, message: "unknown flag: --nope"},
		{name: "bad log level", args: []string{"run", "app", "--log-level", "loud"}, code: ExitUsage, message: "invalid log level 'loud'"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, append(tc.args, "-w", ws)...)
			exitErr := requireExitCode(t, err, tc.code)
			assert.Contains(t, exitErr.Message, tc.message)
		})
	}
}

func TestRun_WorkspaceErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.hcl"), []byte(`
project "app" {
  step "teleport" "x" {}
}
`), 0o644))

	_, err := execute(t, "run", "app", "-w", dir)
	exitErr := requireExitCode(t, err, ExitFailure)
	assert.Contains(t, exitErr.Message, "unknown step kind 'teleport'")
}

func TestValidate(t *testing.T) {
	ws := writeWorkspace(t)

	out, err := execute(t, "validate", "library", "-w", ws, "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)

	_, err = execute(t, "validate", "libary", "-w", ws)
	exitErr := requireExitCode(t, err, ExitFailure)
	assert.Equal(t, "No such project ‘libary’. Did you mean ‘library’?", exitErr.Message)

	_, err = execute(t, "validate", "libary", "-w", ws, "--permissions", "read")
	require.NoError(t, err)
}

func TestList(t *testing.T) {
	ws := writeWorkspace(t)

	out, err := execute(t, "list", "-w", ws, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "PROJECT")
	assert.Regexp(t, `library\s+project\s+1\s+GREETING, TIMES`, out)
	assert.Regexp(t, `app\s+project\s+1\s+-`, out)
	assert.NotContains(t, out, "nightly")
}

func TestHistory(t *testing.T) {
	ws := writeWorkspace(t)
	db := filepath.Join(t.TempDir(), "history.db")

	_, err := execute(t, "run", "library", "-w", ws, "--history-db", db)
	require.NoError(t, err)
	_, err = execute(t, "run", "broken", "-w", ws, "--history-db", db)
	requireExitCode(t, err, ExitFailure)

	out, err := execute(t, "history", "--history-db", db, "--log-level", "error")
	require.NoError(t, err)
	assert.Regexp(t, `library #1\s+SUCCESS`, out)
	assert.Regexp(t, `broken #1\s+FAILURE`, out)
	assert.Contains(t, out, "GREETING=hello, TIMES=1")

	out, err = execute(t, "history", "library", "--history-db", db, "--log-level", "error")
	require.NoError(t, err)
	assert.NotContains(t, out, "broken")

	_, err = execute(t, "history")
	requireExitCode(t, err, ExitUsage)
}

func TestEnvironmentOverridesDefaultsButNotFlags(t *testing.T) {
	ws := writeWorkspace(t)
	t.Setenv("STEPPROXY_WORKSPACE", ws)
	t.Setenv("STEPPROXY_LOG_LEVEL", "error")

	out, err := execute(t, "validate", "library")
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)

	_, err = execute(t, "validate", "library", "-w", t.TempDir())
	requireExitCode(t, err, ExitFailure)
}

func TestParseParameters(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("LIST: [1, 2]\n"), 0o644))

	_, err := parseParameters(nil, bad)
	assert.ErrorContains(t, err, "value of 'LIST' must be a string, number or bool")

	_, err = parseParameters(nil, filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read parameters file")

	got, err := parseParameters([]string{"B=2", "A=x=y"}, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, "x=y", got[0].Value.AsString())
}
