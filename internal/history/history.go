// Package history mirrors committed config updates into a local git
// repository. The trail is an audit aid only: recording failures are
// reported for logging but must never block the update that triggered them.
package history

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/trly/host-ops/internal/config"
	"github.com/trly/host-ops/internal/log"
)

const (
	authorName  = "host-ops"
	authorEmail = "host-ops@localhost"
)

// Recorder writes committed config contents into the history repository.
type Recorder struct {
	configProvider config.Provider
	logger         log.Logger
	now            func() time.Time
}

// NewRecorder creates a recorder with injected dependencies.
func NewRecorder(configProvider config.Provider, logger log.Logger) *Recorder {
	return &Recorder{
		configProvider: configProvider,
		logger:         logger,
		now:            time.Now,
	}
}

// Enabled reports whether history recording is turned on.
func (r *Recorder) Enabled() bool {
	return r.configProvider.GetConfig().HistoryEnabled
}

// EnsureRepo opens the history repository, initializing it on first use.
func (r *Recorder) EnsureRepo() (*git.Repository, error) {
	dir := r.configProvider.GetConfig().HistoryDir

	repo, err := git.PlainOpen(dir)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, err
	}

	r.logger.Debug("Initializing history repository", "dir", dir)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}
	return git.PlainInit(dir, false)
}

// RecordChange stores content under the live file's mirrored path inside the
// history repository and commits it with note as the message. Recording the
// same content twice is a no-op, not an error.
func (r *Recorder) RecordChange(path string, content []byte, note string) error {
	if !r.Enabled() {
		return nil
	}

	repo, err := r.EnsureRepo()
	if err != nil {
		return err
	}

	relPath := mirrorPath(path)
	target := filepath.Join(r.configProvider.GetConfig().HistoryDir, relPath)
	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return err
	}
	if err := os.WriteFile(target, content, 0600); err != nil {
		return err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return err
	}
	if _, err := worktree.Add(relPath); err != nil {
		return err
	}

	commit, err := worktree.Commit(note, &git.CommitOptions{
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  r.now(),
		},
	})
	if err != nil {
		if errors.Is(err, git.ErrEmptyCommit) {
			r.logger.Debug("Content unchanged, nothing recorded", "path", relPath)
			return nil
		}
		return err
	}

	r.logger.Debug("Recorded config change", "path", relPath, "commit", commit.String())
	return nil
}

// mirrorPath maps an absolute live path onto a repository-relative path, so
// /etc/nginx/sites-enabled/shop lands at etc/nginx/sites-enabled/shop.
func mirrorPath(path string) string {
	clean := filepath.Clean(path)
	clean = strings.TrimPrefix(clean, string(filepath.Separator))
	if clean == "" || clean == "." {
		return "unknown"
	}
	return clean
}
