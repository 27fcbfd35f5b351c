package env_vars

import (
	"context"
	"testing"

	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnPerform_SetsBuildEnv(t *testing.T) {
	b := build.New("app", 1, nil)
	b.SetEnv("KEEP", "yes")

	ok, err := OnPerform(context.Background(), b, &Input{Variables: map[string]string{"GOOS": "linux", "KEEP": "overridden"}})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"GOOS": "linux", "KEEP": "overridden"}, b.BuildEnv())

	env := b.EvalContext().Variables["env"]
	assert.Equal(t, "linux", env.GetAttr("GOOS").AsString())
}
