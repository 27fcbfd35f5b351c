package shell

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnPerform(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	testCases := []struct {
		name    string
		input   Input
		wantOK  bool
		wantOut string
	}{
		{
			name:    "success writes output",
			input:   Input{Command: "echo hi"},
			wantOK:  true,
			wantOut: "+ echo hi\nhi\n",
		},
		{
			name:    "non-zero exit fails the step",
			input:   Input{Command: "exit 3"},
			wantOK:  false,
			wantOut: "+ exit 3\nCommand exited with status 3\n",
		},
		{
			name:    "step env overrides build env",
			input:   Input{Command: "echo $GREETING-$TARGET", Env: map[string]string{"TARGET": "step"}},
			wantOK:  true,
			wantOut: "+ echo $GREETING-$TARGET\nhello-step\n",
		},
		{
			name:    "relative dir is under the build dir",
			input:   Input{Command: "basename \"$(pwd)\"", Dir: "sub"},
			wantOK:  true,
			wantOut: "+ basename \"$(pwd)\"\nsub\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			b := build.New("app", 1, &out)
			b.Dir = dir
			b.SetEnv("GREETING", "hello")
			b.SetEnv("TARGET", "build")

			ok, err := OnPerform(context.Background(), b, &tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantOut, out.String())
		})
	}
}

func TestOnPerform_MissingDirIsAnError(t *testing.T) {
	b := build.New("app", 1, nil)
	b.Dir = t.TempDir()

	ok, err := OnPerform(context.Background(), b, &Input{Command: "true", Dir: "missing"})
	assert.False(t, ok)
	assert.ErrorContains(t, err, "failed to run command")
}

func TestWorkDir(t *testing.T) {
	assert.Equal(t, "/ws", workDir("/ws", ""))
	assert.Equal(t, "/ws/a", workDir("/ws", "a"))
	assert.Equal(t, "/abs", workDir("/ws", "/abs"))
	assert.Equal(t, "a", workDir("", "a"))
}
