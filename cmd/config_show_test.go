package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfigShowCommand prints the active settings as YAML.
func TestConfigShowCommand(t *testing.T) {
	f := newTestApp(t)

	cmd := NewConfigShowCommand().GetCobraCommand()
	SetupCommandContext(cmd, f.app)

	output, err := ExecuteCommandWithCapture(t, cmd, []string{})
	require.NoError(t, err)
	assert.Contains(t, output, "sitesDir: "+f.cfg.SitesDir)
	assert.Contains(t, output, "unitDir: "+f.cfg.UnitDir)
	assert.Contains(t, output, "validateCommand: nginx -t")
	assert.Contains(t, output, "listenAddr:")
}

// TestConfigShowCommand_Help prints usage.
func TestConfigShowCommand_Help(t *testing.T) {
	cmd := NewConfigShowCommand().GetCobraCommand()
	output, err := ExecuteCommandWithCapture(t, cmd, []string{"--help"})

	require.NoError(t, err)
	assert.Contains(t, output, "Display current configuration")
}

// TestConfigCommand_Structure verifies the parent command wiring.
func TestConfigCommand_Structure(t *testing.T) {
	cmd := NewConfigCommand().GetCobraCommand()
	assert.Equal(t, "config", cmd.Use)

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "show")
}
