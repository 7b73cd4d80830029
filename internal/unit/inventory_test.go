package unit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trly/host-ops/internal/apperr"
	"github.com/trly/host-ops/internal/config"
	"github.com/trly/host-ops/internal/testutil"
)

const unitListHeader = "UNIT FILE,STATE,PRESET\n"

func writeUnitList(t *testing.T, rows string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "units.csv")
	require.NoError(t, os.WriteFile(path, []byte(unitListHeader+rows), 0o644))
	return path
}

func writeUnitContent(t *testing.T, cfg *config.Settings, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.UnitDir, name), []byte(content), 0o644))
}

func TestBuildInventory(t *testing.T) {
	configProvider := testutil.NewMockConfig(t)
	cfg := configProvider.GetConfig()
	writeUnitContent(t, cfg, "shop.service", "[Service]\nEnvironment=PORT=3001\nExecStart=/usr/bin/node server.js\n")
	writeUnitContent(t, cfg, "billing.service", "[Service]\nExecStart=/usr/bin/node server.js --port 4080\n")
	writeUnitContent(t, cfg, "reports.service", "[Service]\nExecStart=/usr/bin/python3 generate.py\n")

	csvPath := writeUnitList(t, "shop.service,enabled,enabled\nbilling.service,enabled,enabled\nreports.service,static,-\nreports.timer,enabled,enabled\n")

	builder := NewInventoryBuilder(configProvider, testutil.NewTestLogger(t))
	units, err := builder.Build(csvPath)

	require.NoError(t, err)
	require.Len(t, units, 3)
	assert.Equal(t, ServiceUnit{Filename: "shop.service", Port: "3001"}, units[0])
	assert.Equal(t, ServiceUnit{Filename: "billing.service", Port: "4080"}, units[1])
	assert.Equal(t, ServiceUnit{Filename: "reports.service", TimerFilename: "reports.timer"}, units[2])
}

func TestBuildDeduplicatesAndSkipsBlanks(t *testing.T) {
	configProvider := testutil.NewMockConfig(t)
	writeUnitContent(t, configProvider.GetConfig(), "shop.service", "[Service]\nExecStart=/usr/bin/node\n")

	csvPath := writeUnitList(t, "shop.service,enabled,enabled\n  shop.service ,enabled,enabled\n,,\nshop.service,enabled,enabled\n")

	builder := NewInventoryBuilder(configProvider, testutil.NewTestLogger(t))
	units, err := builder.Build(csvPath)

	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "shop.service", units[0].Filename)
}

func TestBuildIgnoresOtherSuffixes(t *testing.T) {
	configProvider := testutil.NewMockConfig(t)
	writeUnitContent(t, configProvider.GetConfig(), "shop.service", "[Service]\nExecStart=/usr/bin/node\n")

	csvPath := writeUnitList(t, "shop.service,enabled,enabled\nshop.socket,enabled,enabled\ndbus.target,static,-\n")

	builder := NewInventoryBuilder(configProvider, testutil.NewTestLogger(t))
	units, err := builder.Build(csvPath)

	require.NoError(t, err)
	require.Len(t, units, 1)
}

func TestBuildOrphanedTimer(t *testing.T) {
	configProvider := testutil.NewMockConfig(t)
	writeUnitContent(t, configProvider.GetConfig(), "shop.service", "[Service]\nExecStart=/usr/bin/node\n")

	csvPath := writeUnitList(t, "shop.service,enabled,enabled\ncleanup.timer,enabled,enabled\n")

	builder := NewInventoryBuilder(configProvider, testutil.NewTestLogger(t))
	_, err := builder.Build(csvPath)

	assert.True(t, apperr.HasCode(err, apperr.CodeOrphanedTimer), "got %v", err)
	assert.ErrorContains(t, err, "cleanup.timer")
}

func TestBuildMissingUnitFile(t *testing.T) {
	configProvider := testutil.NewMockConfig(t)
	csvPath := writeUnitList(t, "ghost.service,enabled,enabled\n")

	builder := NewInventoryBuilder(configProvider, testutil.NewTestLogger(t))
	_, err := builder.Build(csvPath)

	assert.True(t, apperr.HasCode(err, apperr.CodeServiceFileNotFound), "got %v", err)
}

func TestBuildUnitListMissing(t *testing.T) {
	configProvider := testutil.NewMockConfig(t)
	builder := NewInventoryBuilder(configProvider, testutil.NewTestLogger(t))

	_, err := builder.Build(filepath.Join(t.TempDir(), "absent.csv"))
	assert.True(t, apperr.HasCode(err, apperr.CodeUnitListNotFound), "got %v", err)
}

func TestBuildRejectsShortPort(t *testing.T) {
	configProvider := testutil.NewMockConfig(t)
	writeUnitContent(t, configProvider.GetConfig(), "shop.service", "[Service]\nEnvironment=PORT=808\n")

	csvPath := writeUnitList(t, "shop.service,enabled,enabled\n")

	builder := NewInventoryBuilder(configProvider, testutil.NewTestLogger(t))
	_, err := builder.Build(csvPath)

	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidPortFormat), "got %v", err)
	assert.ErrorContains(t, err, "808")
}

func TestBuildHeaderOnly(t *testing.T) {
	configProvider := testutil.NewMockConfig(t)
	builder := NewInventoryBuilder(configProvider, testutil.NewTestLogger(t))

	units, err := builder.Build(writeUnitList(t, ""))
	require.NoError(t, err)
	assert.Empty(t, units)
}
