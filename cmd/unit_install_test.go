package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUnitInstallCommand_WritesUnitPair writes the service and timer files and
// reloads the daemon.
func TestUnitInstallCommand_WritesUnitPair(t *testing.T) {
	f := newTestApp(t)
	reloads := 0
	f.manager.DaemonReloadFunc = func(context.Context) error {
		reloads++
		return nil
	}

	cmd := NewUnitInstallCommand().GetCobraCommand()
	SetupCommandContext(cmd, f.app)

	output, err := ExecuteCommandWithCapture(t, cmd, []string{
		"reports",
		"--working-dir", "/srv/reports",
		"--exec-start", "/usr/bin/node generate.js",
		"--on-calendar", "daily",
	})
	require.NoError(t, err)
	assert.Contains(t, output, "✓ Wrote "+filepath.Join(f.cfg.UnitDir, "reports.service"))
	assert.Contains(t, output, "✓ Wrote "+filepath.Join(f.cfg.UnitDir, "reports.timer"))
	assert.Contains(t, output, "Systemd configuration reloaded")
	assert.Equal(t, 1, reloads)

	service, err := os.ReadFile(filepath.Join(f.cfg.UnitDir, "reports.service"))
	require.NoError(t, err)
	assert.Contains(t, string(service), "/srv/reports")
	assert.Contains(t, string(service), "[Service]")

	timer, err := os.ReadFile(filepath.Join(f.cfg.UnitDir, "reports.timer"))
	require.NoError(t, err)
	assert.Contains(t, string(timer), "daily")
	assert.Contains(t, string(timer), "[Timer]")
}

// TestUnitInstallCommand_UnchangedReinstall leaves identical files alone and
// skips the daemon reload.
func TestUnitInstallCommand_UnchangedReinstall(t *testing.T) {
	f := newTestApp(t)
	reloads := 0
	f.manager.DaemonReloadFunc = func(context.Context) error {
		reloads++
		return nil
	}

	args := []string{"shop", "--working-dir", "/srv/shop", "--exec-start", "/usr/bin/node server.js", "--port", "3000"}

	first := NewUnitInstallCommand().GetCobraCommand()
	SetupCommandContext(first, f.app)
	_, err := ExecuteCommandWithCapture(t, first, args)
	require.NoError(t, err)
	require.Equal(t, 1, reloads)

	second := NewUnitInstallCommand().GetCobraCommand()
	SetupCommandContext(second, f.app)
	output, err := ExecuteCommandWithCapture(t, second, args)
	require.NoError(t, err)
	assert.Contains(t, output, "Unit files already up to date, nothing written")
	assert.Equal(t, 1, reloads)
}

// TestUnitInstallCommand_StartsService starts the service when requested.
func TestUnitInstallCommand_StartsService(t *testing.T) {
	f := newTestApp(t)
	var started []string
	f.manager.StartFunc = func(_ context.Context, name string) error {
		started = append(started, name)
		return nil
	}

	cmd := NewUnitInstallCommand().GetCobraCommand()
	SetupCommandContext(cmd, f.app)

	output, err := ExecuteCommandWithCapture(t, cmd, []string{
		"shop", "--working-dir", "/srv/shop", "--exec-start", "/usr/bin/node server.js", "--start",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"shop.service"}, started)
	assert.Contains(t, output, "Started shop.service")
}

// TestUnitInstallCommand_StartFailure surfaces the failure details.
func TestUnitInstallCommand_StartFailure(t *testing.T) {
	f := newTestApp(t)
	f.manager.StartFunc = func(_ context.Context, _ string) error {
		return errors.New("unit entered failed state")
	}

	cmd := NewUnitInstallCommand().GetCobraCommand()
	SetupCommandContext(cmd, f.app)

	output, err := ExecuteCommandWithCapture(t, cmd, []string{
		"shop", "--working-dir", "/srv/shop", "--exec-start", "/usr/bin/node server.js", "--start",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unit entered failed state")
	assert.Contains(t, output, "mock failure details")
}

// TestUnitInstallCommand_RelativeWorkingDir rejects a relative path.
func TestUnitInstallCommand_RelativeWorkingDir(t *testing.T) {
	f := newTestApp(t)

	cmd := NewUnitInstallCommand().GetCobraCommand()
	SetupCommandContext(cmd, f.app)

	_, err := ExecuteCommandWithCapture(t, cmd, []string{
		"shop", "--working-dir", "srv/shop", "--exec-start", "/usr/bin/node server.js",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "working directory must be an absolute path")
}

// TestUnitInstallCommand_JSONOutput reports the written paths.
func TestUnitInstallCommand_JSONOutput(t *testing.T) {
	f := newTestApp(t)
	f.app.OutputFormat = "json"

	cmd := NewUnitInstallCommand().GetCobraCommand()
	SetupCommandContext(cmd, f.app)

	output, err := ExecuteCommandWithCapture(t, cmd, []string{
		"shop", "--working-dir", "/srv/shop", "--exec-start", "/usr/bin/node server.js",
	})
	require.NoError(t, err)
	assert.Contains(t, output, `"success": true`)
	assert.Contains(t, output, "shop.service")
	assert.Contains(t, output, `"daemonReloaded": "true"`)
}

// TestUnitInstallCommand_Help prints usage.
func TestUnitInstallCommand_Help(t *testing.T) {
	cmd := NewUnitInstallCommand().GetCobraCommand()
	output, err := ExecuteCommandWithCapture(t, cmd, []string{"--help"})

	require.NoError(t, err)
	assert.Contains(t, output, "Render and install a service unit")
	assert.Contains(t, output, "--on-calendar")
	assert.Contains(t, output, "--start")
}
