package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertStepRan checks the log output for the debug line every
// schema-decoded step writes when it performs.
func AssertStepRan(t *testing.T, result *HarnessResult, kind, name string) {
	t.Helper()

	expected := fmt.Sprintf("step=%s.%s", kind, name)
	require.True(t,
		strings.Contains(result.Output.String(), expected),
		"expected log output for step '%s.%s' was not found", kind, name,
	)
}
