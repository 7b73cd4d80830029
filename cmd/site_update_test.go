package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trly/host-ops/internal/store"
)

// writeUpdateFile puts new vhost content in a temp file outside the sites
// directory, the way an operator would stage an edit.
func writeUpdateFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "new.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// TestSiteUpdateCommand_CommitsValidUpdate replaces the live file with
// validated content.
func TestSiteUpdateCommand_CommitsValidUpdate(t *testing.T) {
	f := newTestApp(t)
	livePath := f.writeSiteFile(t, "shop.example.com", siteConf("shop.example.com", "10.0.0.5", "3000"))
	f.seedSite(t, store.Site{PublicID: "id-1", ServerName: "shop.example.com", ConfigPath: livePath})

	updated := siteConf("shop.example.com", "10.0.0.5", "3100")
	updateFile := writeUpdateFile(t, updated)

	cmd := NewSiteUpdateCommand().GetCobraCommand()
	SetupCommandContext(cmd, f.app)

	output, err := ExecuteCommandWithCapture(t, cmd, []string{"id-1", "--file", updateFile})
	require.NoError(t, err)
	assert.Contains(t, output, "✓ Updated")
	assert.Contains(t, output, "committed")

	content, err := os.ReadFile(livePath)
	require.NoError(t, err)
	assert.Equal(t, updated, string(content))

	// The committed transaction leaves no backup behind.
	entries, err := os.ReadDir(f.cfg.SitesDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

// TestSiteUpdateCommand_RollsBackOnValidationFailure restores the original
// content when the validator rejects the update.
func TestSiteUpdateCommand_RollsBackOnValidationFailure(t *testing.T) {
	f := newTestApp(t)
	original := siteConf("shop.example.com", "10.0.0.5", "3000")
	livePath := f.writeSiteFile(t, "shop.example.com", original)
	f.seedSite(t, store.Site{PublicID: "id-1", ServerName: "shop.example.com", ConfigPath: livePath})

	f.runner.SetOutput("nginx", []string{"-t"}, []byte("nginx: [emerg] invalid directive"))
	f.runner.SetError("nginx", []string{"-t"}, errors.New("exit status 1"))

	updateFile := writeUpdateFile(t, "server { broken }\n")

	cmd := NewSiteUpdateCommand().GetCobraCommand()
	SetupCommandContext(cmd, f.app)

	_, err := ExecuteCommandWithCapture(t, cmd, []string{"id-1", "--file", updateFile})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")

	content, err := os.ReadFile(livePath)
	require.NoError(t, err)
	assert.Equal(t, original, string(content))
}

// TestSiteUpdateCommand_UnknownSite rejects an id with no record.
func TestSiteUpdateCommand_UnknownSite(t *testing.T) {
	f := newTestApp(t)
	updateFile := writeUpdateFile(t, siteConf("shop.example.com", "10.0.0.5", "3000"))

	cmd := NewSiteUpdateCommand().GetCobraCommand()
	SetupCommandContext(cmd, f.app)

	_, err := ExecuteCommandWithCapture(t, cmd, []string{"ghost", "--file", updateFile})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no site with id ghost")
}

// TestSiteUpdateCommand_MissingUpdateFile surfaces the read failure.
func TestSiteUpdateCommand_MissingUpdateFile(t *testing.T) {
	f := newTestApp(t)
	livePath := f.writeSiteFile(t, "shop.example.com", siteConf("shop.example.com", "10.0.0.5", "3000"))
	f.seedSite(t, store.Site{PublicID: "id-1", ServerName: "shop.example.com", ConfigPath: livePath})

	cmd := NewSiteUpdateCommand().GetCobraCommand()
	SetupCommandContext(cmd, f.app)

	_, err := ExecuteCommandWithCapture(t, cmd, []string{"id-1", "--file", "/nonexistent/new.conf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading /nonexistent/new.conf")
}

// TestSiteUpdateCommand_ReloadsProxy reloads the proxy after the commit.
func TestSiteUpdateCommand_ReloadsProxy(t *testing.T) {
	f := newTestApp(t)
	livePath := f.writeSiteFile(t, "shop.example.com", siteConf("shop.example.com", "10.0.0.5", "3000"))
	f.seedSite(t, store.Site{PublicID: "id-1", ServerName: "shop.example.com", ConfigPath: livePath})

	updateFile := writeUpdateFile(t, siteConf("shop.example.com", "10.0.0.5", "3100"))

	cmd := NewSiteUpdateCommand().GetCobraCommand()
	SetupCommandContext(cmd, f.app)

	output, err := ExecuteCommandWithCapture(t, cmd, []string{"id-1", "--file", updateFile, "--reload"})
	require.NoError(t, err)
	assert.Contains(t, output, "Proxy reloaded")
}

// TestSiteUpdateCommand_Help prints usage.
func TestSiteUpdateCommand_Help(t *testing.T) {
	cmd := NewSiteUpdateCommand().GetCobraCommand()
	output, err := ExecuteCommandWithCapture(t, cmd, []string{"--help"})

	require.NoError(t, err)
	assert.Contains(t, output, "Apply new vhost content to a recorded site")
	assert.Contains(t, output, "--file")
}
