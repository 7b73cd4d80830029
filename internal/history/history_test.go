package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trly/host-ops/internal/testutil"
)

func newTestRecorder(t *testing.T, enabled bool) *Recorder {
	t.Helper()
	configProvider := testutil.NewMockConfig(t, testutil.WithHistoryEnabled(enabled))
	recorder := NewRecorder(configProvider, testutil.NewTestLogger(t))
	recorder.now = func() time.Time {
		return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	}
	return recorder
}

func commitCount(t *testing.T, repo *git.Repository) int {
	t.Helper()
	head, err := repo.Head()
	require.NoError(t, err)
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	require.NoError(t, err)
	count := 0
	require.NoError(t, iter.ForEach(func(_ *object.Commit) error {
		count++
		return nil
	}))
	return count
}

func TestRecordChangeInitializesAndCommits(t *testing.T) {
	recorder := newTestRecorder(t, true)

	err := recorder.RecordChange("/etc/nginx/sites-enabled/shop", []byte("server {}\n"), "update shop vhost")
	require.NoError(t, err)

	repo, err := recorder.EnsureRepo()
	require.NoError(t, err)

	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "update shop vhost", commit.Message)
	assert.Equal(t, "host-ops", commit.Author.Name)

	mirrored := filepath.Join(recorder.configProvider.GetConfig().HistoryDir,
		"etc", "nginx", "sites-enabled", "shop")
	content, err := os.ReadFile(mirrored)
	require.NoError(t, err)
	assert.Equal(t, "server {}\n", string(content))
}

func TestRecordChangeAccumulatesCommits(t *testing.T) {
	recorder := newTestRecorder(t, true)

	require.NoError(t, recorder.RecordChange("/etc/nginx/sites-enabled/shop", []byte("v1\n"), "first"))
	require.NoError(t, recorder.RecordChange("/etc/nginx/sites-enabled/shop", []byte("v2\n"), "second"))

	repo, err := recorder.EnsureRepo()
	require.NoError(t, err)
	assert.Equal(t, 2, commitCount(t, repo))
}

func TestRecordChangeUnchangedContent(t *testing.T) {
	recorder := newTestRecorder(t, true)

	require.NoError(t, recorder.RecordChange("/etc/nginx/sites-enabled/shop", []byte("same\n"), "first"))
	require.NoError(t, recorder.RecordChange("/etc/nginx/sites-enabled/shop", []byte("same\n"), "second"))

	repo, err := recorder.EnsureRepo()
	require.NoError(t, err)
	assert.Equal(t, 1, commitCount(t, repo))
}

func TestRecordChangeDisabled(t *testing.T) {
	recorder := newTestRecorder(t, false)

	require.NoError(t, recorder.RecordChange("/etc/nginx/sites-enabled/shop", []byte("server {}\n"), "noop"))

	historyDir := recorder.configProvider.GetConfig().HistoryDir
	_, err := os.Stat(filepath.Join(historyDir, ".git"))
	assert.True(t, os.IsNotExist(err))
}

func TestMirrorPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "absolute path", path: "/etc/nginx/sites-enabled/shop", want: "etc/nginx/sites-enabled/shop"},
		{name: "relative path kept", path: "sites/shop", want: "sites/shop"},
		{name: "dot segments cleaned", path: "/etc/nginx/../nginx/shop", want: "etc/nginx/shop"},
		{name: "root collapses to fallback", path: "/", want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mirrorPath(tt.path))
		})
	}
}
