// Package testutil provides common test utilities and helpers to reduce boilerplate in test files.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trly/host-ops/internal/config"
	"github.com/trly/host-ops/internal/log"
)

// NewTestLogger creates a logger that writes to t.Logf for testing.
// This ensures test output is properly captured by the test framework.
func NewTestLogger(t testing.TB) log.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}

	// Create a custom handler that writes to t.Logf
	handler := &testHandler{t: t, opts: opts}
	slogLogger := slog.New(handler)

	return log.NewSlogAdapter(slogLogger)
}

// ConfigOption allows customization of test config settings.
type ConfigOption func(*config.Settings)

// WithSitesDir sets a custom nginx sites directory.
func WithSitesDir(dir string) ConfigOption {
	return func(cfg *config.Settings) {
		cfg.SitesDir = dir
	}
}

// WithUnitDir sets a custom systemd unit directory.
func WithUnitDir(dir string) ConfigOption {
	return func(cfg *config.Settings) {
		cfg.UnitDir = dir
	}
}

// WithReportDir sets a custom scan report directory.
func WithReportDir(dir string) ConfigOption {
	return func(cfg *config.Settings) {
		cfg.ReportDir = dir
	}
}

// WithUnitListPath sets a custom unit inventory file path.
func WithUnitListPath(path string) ConfigOption {
	return func(cfg *config.Settings) {
		cfg.UnitListPath = path
	}
}

// WithValidateCommand sets a custom external validation command.
func WithValidateCommand(command string) ConfigOption {
	return func(cfg *config.Settings) {
		cfg.ValidateCommand = command
	}
}

// WithAppNameVar sets a custom identity variable name.
func WithAppNameVar(name string) ConfigOption {
	return func(cfg *config.Settings) {
		cfg.AppNameVar = name
	}
}

// WithHistoryEnabled turns on change-history recording.
func WithHistoryEnabled(enabled bool) ConfigOption {
	return func(cfg *config.Settings) {
		cfg.HistoryEnabled = enabled
	}
}

// WithProduction sets the production flag.
func WithProduction(production bool) ConfigOption {
	return func(cfg *config.Settings) {
		cfg.Production = production
	}
}

// WithVerbose sets verbose logging.
func WithVerbose(verbose bool) ConfigOption {
	return func(cfg *config.Settings) {
		cfg.Verbose = verbose
	}
}

// WithUserMode sets user mode.
func WithUserMode(userMode bool) ConfigOption {
	return func(cfg *config.Settings) {
		cfg.UserMode = userMode
	}
}

// NewMockConfig creates a config provider for testing with optional customizations.
// The sites, unit, and report directories all point into a per-test temp tree.
func NewMockConfig(t testing.TB, opts ...ConfigOption) config.Provider {
	tmpDir, err := os.MkdirTemp("", "host-ops-test-*")
	require.NoError(t, err)

	// Cleanup temp directory when test finishes
	t.Cleanup(func() {
		_ = os.RemoveAll(tmpDir)
	})

	for _, sub := range []string{"sites", "units", "reports"} {
		require.NoError(t, os.MkdirAll(tmpDir+"/"+sub, 0750))
	}

	cfg := &config.Settings{
		SitesDir:        tmpDir + "/sites",
		UnitDir:         tmpDir + "/units",
		ReportDir:       tmpDir + "/reports",
		DBPath:          tmpDir + "/host-ops.db",
		HistoryDir:      tmpDir + "/history",
		UnitListPath:    tmpDir + "/units.csv",
		ValidateCommand: config.DefaultValidateCommand,
		ProxyUnit:       config.DefaultProxyUnit,
		ListenAddr:      config.DefaultListenAddr,
		SyncInterval:    config.DefaultSyncInterval,
		AppNameVar:      config.DefaultAppNameVar,
		Verbose:         true,
	}

	// Apply any custom options
	for _, opt := range opts {
		opt(cfg)
	}

	configProvider := config.NewDefaultConfigProvider()
	configProvider.SetConfig(cfg)
	return configProvider
}

// testHandler implements slog.Handler to write to testing.TB.
type testHandler struct {
	t    testing.TB
	opts *slog.HandlerOptions
}

func (h *testHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *testHandler) Handle(_ context.Context, record slog.Record) error {
	h.t.Logf("[%s] %s", record.Level.String(), record.Message)
	return nil
}

func (h *testHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return &testHandler{t: h.t, opts: h.opts}
}

func (h *testHandler) WithGroup(_ string) slog.Handler {
	return &testHandler{t: h.t, opts: h.opts}
}
