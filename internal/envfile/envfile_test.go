package envfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trly/host-ops/internal/apperr"
	"github.com/trly/host-ops/internal/testutil"
)

func writeEnvFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
}

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	return NewResolver("NAME_APP", testutil.NewTestLogger(t))
}

func TestResolvePrimaryFile(t *testing.T) {
	dir := t.TempDir()
	writeEnvFile(t, dir, ".env", "PORT=3000\nNAME_APP=storefront\n")

	res, err := newTestResolver(t).Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, "storefront", res.AppName)
	assert.Equal(t, ".env", res.SourceFile)
}

func TestResolveFallsBackWhenPrimaryAbsent(t *testing.T) {
	dir := t.TempDir()
	writeEnvFile(t, dir, ".env.local", "NAME_APP=storefront\n")

	res, err := newTestResolver(t).Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, "storefront", res.AppName)
	assert.Equal(t, ".env.local", res.SourceFile)
}

func TestResolvePrimaryWithoutVariableIsFatal(t *testing.T) {
	dir := t.TempDir()
	// The secondary file carries the variable, but the present primary file
	// must not fall through to it.
	writeEnvFile(t, dir, ".env", "PORT=3000\n")
	writeEnvFile(t, dir, ".env.local", "NAME_APP=storefront\n")

	_, err := newTestResolver(t).Resolve(dir)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeAppNameNotFound))
	assert.Equal(t, 404, apperr.From(err).Status)
}

func TestResolveSecondaryWithoutVariableIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeEnvFile(t, dir, ".env.local", "PORT=3000\n")

	_, err := newTestResolver(t).Resolve(dir)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeAppNameNotFound))
}

func TestResolveNoFiles(t *testing.T) {
	dir := t.TempDir()

	_, err := newTestResolver(t).Resolve(dir)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeEnvFileNotFound))
	assert.Equal(t, 404, apperr.From(err).Status)
}

func TestResolveEmptyValueIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeEnvFile(t, dir, ".env", "NAME_APP=\n")

	_, err := newTestResolver(t).Resolve(dir)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeAppNameNotFound))
}

func TestResolveCustomVariableName(t *testing.T) {
	dir := t.TempDir()
	writeEnvFile(t, dir, ".env", "APP_IDENT=billing\n")

	resolver := NewResolver("APP_IDENT", testutil.NewTestLogger(t))
	res, err := resolver.Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, "billing", res.AppName)
}
