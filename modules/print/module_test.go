package print

import (
	"bytes"
	"context"
	"testing"

	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnPerform(t *testing.T) {
	var out bytes.Buffer
	b := build.New("app", 1, &out)

	ok, err := OnPerform(context.Background(), b, &Input{
		Message: "hello",
		Values:  map[string]string{"b": "2", "a": "1"},
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello\n  a = \"1\"\n  b = \"2\"\n", out.String())
}

func TestOnPerform_Empty(t *testing.T) {
	var out bytes.Buffer
	ok, err := OnPerform(context.Background(), build.New("app", 1, &out), &Input{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, out.String())
}
