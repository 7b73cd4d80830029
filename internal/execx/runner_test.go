package execx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealRunner_CombinedOutput(t *testing.T) {
	runner := NewRealRunner()

	output, err := runner.CombinedOutput(context.Background(), "echo", "syntax is ok")
	require.NoError(t, err)
	assert.Contains(t, string(output), "syntax is ok")
}

// TestRealRunner_CombinesStderr verifies diagnostics written to stderr come
// back with the error.
func TestRealRunner_CombinesStderr(t *testing.T) {
	runner := NewRealRunner()

	output, err := runner.CombinedOutput(context.Background(), "sh", "-c", "echo oops >&2; exit 1")
	assert.Error(t, err)
	assert.Contains(t, string(output), "oops")
}

func TestRealRunner_MissingBinary(t *testing.T) {
	runner := NewRealRunner()

	_, err := runner.CombinedOutput(context.Background(), "host-ops-no-such-binary")
	assert.Error(t, err)
}
