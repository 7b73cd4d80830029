package scan

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trly/host-ops/internal/apperr"
	"github.com/trly/host-ops/internal/config"
	"github.com/trly/host-ops/internal/store"
	"github.com/trly/host-ops/internal/testutil"
	"github.com/trly/host-ops/internal/testutil/fakestore"
)

func vhost(serverName, upstream, port string) string {
	return fmt.Sprintf(`server {
    listen 80;
    server_name %s;
    location / {
        proxy_pass http://%s:%s;
    }
}
`, serverName, upstream, port)
}

type scannerFixture struct {
	scanner  *Scanner
	sites    *fakestore.SiteRepo
	machines *fakestore.MachineRepo
	cfg      *config.Settings
}

func newFixture(t *testing.T, seedSites []store.Site, seedMachines []store.Machine) *scannerFixture {
	t.Helper()
	configProvider := testutil.NewMockConfig(t)
	sites := fakestore.NewSiteRepo(seedSites...)
	machines := fakestore.NewMachineRepo(seedMachines...)

	scanner := NewScanner(configProvider, testutil.NewTestLogger(t), sites, machines)
	counter := 0
	scanner.newID = func() string {
		counter++
		return fmt.Sprintf("id-%d", counter)
	}
	scanner.now = func() time.Time {
		return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	}

	return &scannerFixture{scanner: scanner, sites: sites, machines: machines, cfg: configProvider.GetConfig()}
}

func (f *scannerFixture) writeSite(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.cfg.SitesDir, name), []byte(content), 0o644))
}

func TestRunDiscoversNewSites(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.writeSite(t, "a.example.com", vhost("a.example.com", "10.0.0.5", "3001"))
	f.writeSite(t, "b.example.com", vhost("b.example.com", "10.0.0.6", "3002"))

	result, err := f.scanner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.NewCount)
	assert.Zero(t, result.DuplicateCount)
	assert.Zero(t, result.ErrorCount)

	created := f.sites.Created()
	require.Len(t, created, 2)
	assert.Equal(t, "a.example.com", created[0].ServerName)
	assert.Equal(t, "id-1", created[0].PublicID)
	assert.Equal(t, filepath.Join(f.cfg.SitesDir, "a.example.com"), created[0].ConfigPath)
	assert.Equal(t, "3001", created[0].ListenPort)
	assert.Equal(t, "10.0.0.5", created[0].UpstreamIP)
	assert.Equal(t, "express", created[0].Framework)
}

func TestRunSkipsDefaultAndSubdirectories(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.writeSite(t, "default", vhost("default.example.com", "10.0.0.5", "3001"))
	f.writeSite(t, "a.example.com", vhost("a.example.com", "10.0.0.5", "3001"))
	require.NoError(t, os.MkdirAll(filepath.Join(f.cfg.SitesDir, "conf.d"), 0o750))

	result, err := f.scanner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.NewCount)
	assert.Zero(t, result.ErrorCount)
}

func TestRunNoServerNames(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.writeSite(t, "broken", "server {\n    listen 80;\n}\n")

	result, err := f.scanner.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "broken", result.Errors[0].FileName)
	assert.Equal(t, "No server names found", result.Errors[0].ErrorMessage)
	assert.Empty(t, f.sites.Created())
}

func TestRunDuplicateNeverOverwrites(t *testing.T) {
	existing := store.Site{ID: 1, PublicID: "existing", ServerName: "a.example.com",
		ConfigPath: "/etc/nginx/sites-enabled/a.example.com"}
	f := newFixture(t, []store.Site{existing}, nil)
	f.writeSite(t, "a.example.com", vhost("a.example.com", "10.0.0.9", "9999"))

	result, err := f.scanner.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Duplicates, 1)
	assert.Equal(t, "site already registered", result.Duplicates[0].ErrorMessage)
	assert.Empty(t, f.sites.Created())

	kept, err := f.sites.FindByServerName("a.example.com")
	require.NoError(t, err)
	assert.Equal(t, existing, kept)
}

func TestRunResolvesMachineByUpstream(t *testing.T) {
	machine := store.Machine{ID: 1, PublicID: "m-1", Name: "app-01", IP: "10.0.0.5"}
	f := newFixture(t, nil, []store.Machine{machine})
	f.writeSite(t, "a.example.com", vhost("a.example.com", "10.0.0.5", "3001"))
	f.writeSite(t, "b.example.com", vhost("b.example.com", "10.0.0.99", "3002"))

	_, err := f.scanner.Run(context.Background())
	require.NoError(t, err)

	created := f.sites.Created()
	require.Len(t, created, 2)
	assert.Equal(t, "m-1", created[0].MachinePublicID)
	assert.Equal(t, "", created[1].MachinePublicID)
}

func TestRunWritesReport(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.writeSite(t, "a.example.com", vhost("a.example.com", "10.0.0.5", "3001"))
	f.writeSite(t, "broken", "no directives here\n")

	result, err := f.scanner.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, result.ReportPath)
	assert.Equal(t, filepath.Join(f.cfg.ReportDir, "scan-20250314-092653.csv"), result.ReportPath)

	file, err := os.Open(result.ReportPath)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"id", "fileName", "status", "errorMessage", "serverName", "portNumber", "localIpAddress"}, rows[0])
	assert.Equal(t, []string{"1", "a.example.com", "new", "", "a.example.com", "3001", "10.0.0.5"}, rows[1])
	assert.Equal(t, []string{"2", "broken", "error", "No server names found", "", "", ""}, rows[2])
}

func TestRunReportFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.writeSite(t, "a.example.com", vhost("a.example.com", "10.0.0.5", "3001"))

	// Make report directory creation impossible by occupying the path with a
	// regular file.
	require.NoError(t, os.Remove(f.cfg.ReportDir))
	require.NoError(t, os.WriteFile(f.cfg.ReportDir, []byte("in the way"), 0o644))

	result, err := f.scanner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.NewCount)
	assert.Empty(t, result.ReportPath)
}

func TestRunSitesDirectoryMissing(t *testing.T) {
	f := newFixture(t, nil, nil)
	require.NoError(t, os.RemoveAll(f.cfg.SitesDir))

	_, err := f.scanner.Run(context.Background())
	assert.True(t, apperr.HasCode(err, apperr.CodeConfigFileNotFound), "got %v", err)
}

func TestRunCanceledContext(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.writeSite(t, "a.example.com", vhost("a.example.com", "10.0.0.5", "3001"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.scanner.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
