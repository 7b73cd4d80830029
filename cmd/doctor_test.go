package cmd

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// doctorDeps builds doctor dependencies over the real file system with
// stubbed config file and OS lookups.
func doctorDeps(f *appFixture, configFile, goos string) DoctorDeps {
	return DoctorDeps{
		CommonDeps:      NewCommonDeps(f.app.Logger),
		ViperConfigFile: func() string { return configFile },
		GetOS:           func() string { return goos },
	}
}

// captureRun captures stdout produced by fn.
func captureRun(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	var err error
	output := captureStdio(t, func() { err = fn() })
	return output, err
}

// TestDoctorCommand_AllChecksPass runs the full check set against a healthy
// fixture.
func TestDoctorCommand_AllChecksPass(t *testing.T) {
	f := newTestApp(t)
	f.runner.SetOutput("systemctl", []string{"--version"}, []byte("systemd 252 (252.17-1)"))
	f.runner.SetOutput("nginx", []string{"-v"}, []byte("nginx version: nginx/1.24.0"))
	writeUnitList(t, f, "shop.service")

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("sitesDir: "+f.cfg.SitesDir+"\n"), 0600))

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	mock.ExpectPing()
	f.app.DB = db

	deps := doctorDeps(f, configFile, "linux")
	output, err := captureRun(t, func() error {
		return NewDoctorCommand().Run(context.Background(), f.app, DoctorOptions{}, deps)
	})
	require.NoError(t, err)
	assert.Contains(t, output, "✓ All checks passed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestDoctorCommand_ReportsFailures counts every failing check on a bare
// fixture.
func TestDoctorCommand_ReportsFailures(t *testing.T) {
	f := newTestApp(t)

	deps := doctorDeps(f, "", "linux")
	output, err := captureRun(t, func() error {
		return NewDoctorCommand().Run(context.Background(), f.app, DoctorOptions{}, deps)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doctor found 4 issues")
	assert.Contains(t, output, "✗ System Requirements")
	assert.Contains(t, output, "✗ Configuration File: No configuration file found")
	assert.Contains(t, output, "✗ Unit Inventory")
	assert.Contains(t, output, "✗ Database: Database handle is not open")
	assert.Contains(t, output, "✓ Sites Directory")
}

// TestDoctorCommand_DatabasePingFailure reports an unresponsive database.
func TestDoctorCommand_DatabasePingFailure(t *testing.T) {
	f := newTestApp(t)
	f.runner.SetOutput("systemctl", []string{"--version"}, []byte("systemd 252"))
	writeUnitList(t, f, "shop.service")

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("verbose: true\n"), 0600))

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	mock.ExpectPing().WillReturnError(errors.New("database is locked"))
	f.app.DB = db

	deps := doctorDeps(f, configFile, "linux")
	output, err := captureRun(t, func() error {
		return NewDoctorCommand().Run(context.Background(), f.app, DoctorOptions{}, deps)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doctor found 1 issues")
	assert.Contains(t, output, "Database not responding")
}

// TestDoctorCommand_NonLinuxPlatform suggests the supported platform.
func TestDoctorCommand_NonLinuxPlatform(t *testing.T) {
	f := newTestApp(t)

	deps := doctorDeps(f, "", "darwin")
	output, err := captureRun(t, func() error {
		return NewDoctorCommand().Run(context.Background(), f.app, DoctorOptions{}, deps)
	})
	require.Error(t, err)
	assert.Contains(t, output, "host-ops requires Linux with systemd for service management")
}

// TestDoctorCommand_UnwritableDirectory flags directories the process cannot
// write to.
func TestDoctorCommand_UnwritableDirectory(t *testing.T) {
	f := newTestApp(t)

	deps := doctorDeps(f, "", "linux")
	deps.CommonDeps.FileSystem = &FileSystemOps{
		WriteFileFunc: func(string, []byte, fs.FileMode) error {
			return errors.New("read-only file system")
		},
	}

	output, err := captureRun(t, func() error {
		return NewDoctorCommand().Run(context.Background(), f.app, DoctorOptions{}, deps)
	})
	require.Error(t, err)
	assert.Contains(t, output, "✗ Sites Directory: directory is not writable")
}

// TestDoctorCommand_StructuredOutput emits the health report as JSON.
func TestDoctorCommand_StructuredOutput(t *testing.T) {
	f := newTestApp(t)
	f.app.OutputFormat = "json"

	deps := doctorDeps(f, "", "linux")
	output, err := captureRun(t, func() error {
		return NewDoctorCommand().Run(context.Background(), f.app, DoctorOptions{}, deps)
	})
	require.Error(t, err)
	assert.Contains(t, output, `"overall": "failed"`)
	assert.Contains(t, output, `"name": "Sites Directory"`)
	assert.Contains(t, output, `"status": "passed"`)
}

// TestDoctorCommand_Help tests help output.
func TestDoctorCommand_Help(t *testing.T) {
	cmd := NewDoctorCommand().GetCobraCommand()
	output, err := ExecuteCommandWithCapture(t, cmd, []string{"--help"})

	require.NoError(t, err)
	assert.Contains(t, output, "Check system health and configuration")
	assert.Contains(t, output, "System requirements")
	assert.Contains(t, output, "Unit inventory availability")
}
