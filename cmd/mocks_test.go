package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trly/host-ops/internal/config"
	"github.com/trly/host-ops/internal/history"
	"github.com/trly/host-ops/internal/mailer"
	"github.com/trly/host-ops/internal/nginx"
	"github.com/trly/host-ops/internal/registrar"
	"github.com/trly/host-ops/internal/scan"
	"github.com/trly/host-ops/internal/store"
	"github.com/trly/host-ops/internal/systemd"
	"github.com/trly/host-ops/internal/testutil"
	"github.com/trly/host-ops/internal/testutil/fakerunner"
	"github.com/trly/host-ops/internal/testutil/fakestore"
	"github.com/trly/host-ops/internal/unit"
	"github.com/trly/host-ops/internal/validate"
)

// appFixture bundles an App over in-memory fakes with the pieces tests reach
// into directly.
type appFixture struct {
	app      *App
	cfg      *config.Settings
	sites    *fakestore.SiteRepo
	machines *fakestore.MachineRepo
	runner   *fakerunner.Runner
	manager  *systemd.MockManager
}

// newTestApp wires the full App dependency graph over in-memory fakes. The
// database handle stays nil; commands that need one inject their own.
func newTestApp(t *testing.T, opts ...testutil.ConfigOption) *appFixture {
	t.Helper()

	configProvider := testutil.NewMockConfig(t, opts...)
	logger := testutil.NewTestLogger(t)
	runner := fakerunner.New()
	sites := fakestore.NewSiteRepo()
	machines := fakestore.NewMachineRepo()
	manager := &systemd.MockManager{}

	validator := validate.NewValidator(configProvider, logger, runner)
	validator.WithOSGetter(func() string { return "linux" })

	app := &App{
		Logger:         logger,
		Config:         configProvider.GetConfig(),
		ConfigProvider: configProvider,
		OutputFormat:   "text",
		Sites:          sites,
		Machines:       machines,
		Scanner:        scan.NewScanner(configProvider, logger, sites, machines),
		Updater:        nginx.NewUpdater(configProvider, logger, runner),
		Renderer:       nginx.NewRenderer(configProvider),
		UnitValidator:  unit.NewValidator(configProvider, logger),
		Inventory:      unit.NewInventoryBuilder(configProvider, logger),
		Writer:         unit.NewWriter(configProvider, logger),
		Systemd:        manager,
		History:        history.NewRecorder(configProvider, logger),
		Registrar:      registrar.NewLoggingRegistrar(logger),
		Mailer:         mailer.NewLoggingMailer(logger),
		Validator:      validator,
	}

	return &appFixture{
		app:      app,
		cfg:      configProvider.GetConfig(),
		sites:    sites,
		machines: machines,
		runner:   runner,
		manager:  manager,
	}
}

func (f *appFixture) seedSite(t *testing.T, site store.Site) store.Site {
	t.Helper()
	require.NoError(t, f.sites.Create(&site))
	return site
}

func (f *appFixture) seedMachine(t *testing.T, machine store.Machine) store.Machine {
	t.Helper()
	require.NoError(t, f.machines.Create(&machine))
	return machine
}

func (f *appFixture) writeSiteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.cfg.SitesDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// siteConf renders a minimal proxied vhost for test fixtures.
func siteConf(serverName, upstream, port string) string {
	return "server {\n" +
		"    listen 80;\n" +
		"    server_name " + serverName + ";\n" +
		"    location / {\n" +
		"        proxy_pass http://" + upstream + ":" + port + ";\n" +
		"    }\n" +
		"}\n"
}

func writeAppDir(t *testing.T, name string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(dir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("NAME_APP="+name+"\n"), 0600))
	return dir
}

// writeUnit lays down a service unit file in the configured unit directory.
// Empty workDir or port leaves the matching directive out.
func writeUnit(t *testing.T, f *appFixture, filename, workDir, port string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("[Unit]\nDescription=" + filename + "\n\n[Service]\n")
	if workDir != "" {
		b.WriteString("WorkingDirectory=" + workDir + "\n")
	}
	if port != "" {
		b.WriteString("Environment=PORT=" + port + "\n")
	}
	b.WriteString("ExecStart=/usr/bin/node server.js\n")
	require.NoError(t, os.WriteFile(filepath.Join(f.cfg.UnitDir, filename), []byte(b.String()), 0600))
}

func writeUnitList(t *testing.T, f *appFixture, names ...string) {
	t.Helper()
	content := "unit_name,enabled\n"
	for _, name := range names {
		content += name + ",true\n"
	}
	require.NoError(t, os.WriteFile(f.cfg.UnitListPath, []byte(content), 0600))
}

// mockMailer captures scan report notifications.
type mockMailer struct {
	recipients []string
	reports    []string
}

func (m *mockMailer) SendScanReport(_ context.Context, recipient, reportPath string, _, _ int) error {
	m.recipients = append(m.recipients, recipient)
	m.reports = append(m.reports, reportPath)
	return nil
}
