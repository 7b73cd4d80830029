package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRootCommandFlags verifies flag parsing.
func TestRootCommandFlags(t *testing.T) {
	rootCmd := &RootCommand{}
	cmd := rootCmd.GetCobraCommand()

	// Test flag defaults
	userFlag := cmd.PersistentFlags().Lookup("user")
	require.NotNil(t, userFlag)
	assert.Equal(t, "false", userFlag.DefValue)

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "false", verboseFlag.DefValue)

	outputFlag := cmd.PersistentFlags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "text", outputFlag.DefValue)

	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("db-path"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("sites-dir"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("unit-dir"))
}

// TestRootCommandSubcommands verifies the command tree wiring.
func TestRootCommandSubcommands(t *testing.T) {
	cmd := NewRootCommand().GetCobraCommand()
	assert.Equal(t, "host-ops", cmd.Use)

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	for _, want := range []string{"serve", "scan", "site", "unit", "config", "doctor", "version", "update"} {
		assert.Contains(t, names, want)
	}
}
