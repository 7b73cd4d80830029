package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trly/host-ops/internal/store"
)

// syncFixture seeds a machine and a two-service inventory with one timer.
func syncFixture(t *testing.T) *appFixture {
	t.Helper()
	f := newTestApp(t)
	f.seedMachine(t, store.Machine{PublicID: "m-1", Name: "app-01", IP: "10.0.0.5"})

	shopDir := writeAppDir(t, "shop")
	reportsDir := writeAppDir(t, "reports")
	writeUnit(t, f, "shop.service", shopDir, "3000")
	writeUnit(t, f, "reports.service", reportsDir, "")
	writeUnitList(t, f, "shop.service", "reports.service", "reports.timer")
	return f
}

// TestUnitSyncCommand_SyncsInventory validates the inventory and persists it
// on the machine record.
func TestUnitSyncCommand_SyncsInventory(t *testing.T) {
	f := syncFixture(t)

	cmd := NewUnitSyncCommand().GetCobraCommand()
	SetupCommandContext(cmd, f.app)

	output, err := ExecuteCommandWithCapture(t, cmd, []string{"--machine", "m-1"})
	require.NoError(t, err)
	assert.Contains(t, output, "Synced 2 units onto app-01")
	assert.Contains(t, output, "✓ shop.service (app shop, port 3000)")
	assert.Contains(t, output, "✓ reports.service (app reports, timer reports.timer)")

	machine, err := f.machines.FindByPublicID("m-1")
	require.NoError(t, err)
	require.Len(t, machine.Units, 2)
	assert.Equal(t, "shop.service", machine.Units[0].Filename)
	assert.Equal(t, "3000", machine.Units[0].Port)
	assert.Equal(t, "reports.timer", machine.Units[1].TimerFilename)
}

// TestUnitSyncCommand_ReportsFailures keeps failing units out of the record
// without aborting the sync.
func TestUnitSyncCommand_ReportsFailures(t *testing.T) {
	f := syncFixture(t)
	writeUnit(t, f, "broken.service", "", "")
	writeUnitList(t, f, "shop.service", "reports.service", "reports.timer", "broken.service")

	cmd := NewUnitSyncCommand().GetCobraCommand()
	SetupCommandContext(cmd, f.app)

	output, err := ExecuteCommandWithCapture(t, cmd, []string{"--machine", "m-1"})
	require.NoError(t, err)
	assert.Contains(t, output, "Synced 2 units onto app-01")
	assert.Contains(t, output, "✗ broken.service: no WorkingDirectory directive in broken.service (WORKING_DIRECTORY_NOT_FOUND)")

	machine, err := f.machines.FindByPublicID("m-1")
	require.NoError(t, err)
	assert.Len(t, machine.Units, 2)
}

// TestUnitSyncCommand_RestartOrder restarts services in inventory order with
// timers after their services.
func TestUnitSyncCommand_RestartOrder(t *testing.T) {
	f := syncFixture(t)

	var restarted []string
	f.manager.RestartFunc = func(_ context.Context, name string) error {
		restarted = append(restarted, name)
		return nil
	}

	cmd := NewUnitSyncCommand().GetCobraCommand()
	SetupCommandContext(cmd, f.app)

	output, err := ExecuteCommandWithCapture(t, cmd, []string{"--machine", "m-1", "--restart"})
	require.NoError(t, err)
	assert.Equal(t, []string{"shop.service", "reports.service", "reports.timer"}, restarted)
	assert.Contains(t, output, "Restarted shop.service")
}

// TestUnitSyncCommand_RestartFailure reports the failed restart and the
// failure details.
func TestUnitSyncCommand_RestartFailure(t *testing.T) {
	f := syncFixture(t)

	f.manager.RestartFunc = func(_ context.Context, name string) error {
		if name == "shop.service" {
			return errors.New("unit entered failed state")
		}
		return nil
	}

	cmd := NewUnitSyncCommand().GetCobraCommand()
	SetupCommandContext(cmd, f.app)

	output, err := ExecuteCommandWithCapture(t, cmd, []string{"--machine", "m-1", "--restart"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 unit restarts failed")
	assert.Contains(t, output, "mock failure details")
	assert.Contains(t, output, "Restarted reports.service")
}

// TestUnitSyncCommand_UnknownMachine rejects an unregistered machine id.
func TestUnitSyncCommand_UnknownMachine(t *testing.T) {
	f := newTestApp(t)

	cmd := NewUnitSyncCommand().GetCobraCommand()
	SetupCommandContext(cmd, f.app)

	_, err := ExecuteCommandWithCapture(t, cmd, []string{"--machine", "ghost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no machine with id ghost")
}

// TestUnitSyncCommand_JSONOutput emits the sync result.
func TestUnitSyncCommand_JSONOutput(t *testing.T) {
	f := syncFixture(t)
	f.app.OutputFormat = "json"

	cmd := NewUnitSyncCommand().GetCobraCommand()
	SetupCommandContext(cmd, f.app)

	output, err := ExecuteCommandWithCapture(t, cmd, []string{"--machine", "m-1"})
	require.NoError(t, err)
	assert.Contains(t, output, `"machine": "m-1"`)
	assert.Contains(t, output, `"filename": "shop.service"`)
}

// TestUnitSyncCommand_Help prints usage.
func TestUnitSyncCommand_Help(t *testing.T) {
	cmd := NewUnitSyncCommand().GetCobraCommand()
	output, err := ExecuteCommandWithCapture(t, cmd, []string{"--help"})

	require.NoError(t, err)
	assert.Contains(t, output, "Validate the unit inventory")
	assert.Contains(t, output, "--machine")
	assert.Contains(t, output, "--restart")
}
