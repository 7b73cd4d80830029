package nginx

import (
	"context"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/trly/host-ops/internal/apperr"
	"github.com/trly/host-ops/internal/config"
	"github.com/trly/host-ops/internal/execx"
	"github.com/trly/host-ops/internal/log"
	"github.com/trly/host-ops/internal/metrics"
)

// State names a phase of a config update transaction.
type State string

// Transaction states. Committed, RolledBack, and Failed are the only terminal
// states; a transaction never ends anywhere else.
const (
	StateInitial    State = "initial"
	StateBackedUp   State = "backed_up"
	StateWritten    State = "written"
	StateValidated  State = "validated"
	StateCommitted  State = "committed"
	StateRolledBack State = "rolled_back"
	StateFailed     State = "failed"
)

func (s State) terminal() bool {
	return s == StateCommitted || s == StateRolledBack || s == StateFailed
}

// UpdateResult reports the terminal state of a transaction. Warning carries a
// cleanup problem on an otherwise successful update (a backup that could not
// be deleted); it never accompanies an error.
type UpdateResult struct {
	State   State  `json:"state"`
	Warning string `json:"warning,omitempty"`
}

// Updater applies content changes to live configuration files. Every change
// runs as a backup, write, external validation, commit sequence, so the live
// path holds either the original or the new content at every observable
// point, never a partial write.
//
// All transactions on one host share a single mutex: the external validator
// checks the whole configuration tree, so two interleaved transactions could
// pass or fail each other's validation for unrelated reasons.
type Updater struct {
	configProvider config.Provider
	logger         log.Logger
	runner         execx.Runner

	mu sync.Mutex

	removeFile func(string) error
	renameFile func(string, string) error
}

// NewUpdater creates an Updater using the provided configuration, logger, and
// command runner.
func NewUpdater(configProvider config.Provider, logger log.Logger, runner execx.Runner) *Updater {
	return &Updater{
		configProvider: configProvider,
		logger:         logger,
		runner:         runner,
		removeFile:     os.Remove,
		renameFile:     os.Rename,
	}
}

// Apply replaces the content of an existing live configuration file.
func (u *Updater) Apply(ctx context.Context, path, content string) (UpdateResult, error) {
	if strings.TrimSpace(content) == "" {
		return UpdateResult{State: StateFailed}, apperr.New(apperr.CodeValidation, "refusing to write empty configuration")
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	t := &transaction{updater: u, path: path, content: content, state: StateInitial}
	result, err := t.run(ctx)
	metrics.ConfigUpdates.WithLabelValues(string(result.State)).Inc()
	return result, err
}

// Install writes a brand-new configuration file and validates it, removing
// the file again when validation rejects it. The target must not exist yet.
func (u *Updater) Install(ctx context.Context, path, content string) (UpdateResult, error) {
	if strings.TrimSpace(content) == "" {
		return UpdateResult{State: StateFailed}, apperr.New(apperr.CodeValidation, "refusing to write empty configuration")
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	result, err := u.install(ctx, path, content)
	metrics.ConfigUpdates.WithLabelValues(string(result.State)).Inc()
	return result, err
}

func (u *Updater) install(ctx context.Context, path, content string) (UpdateResult, error) {
	if _, err := os.Stat(path); err == nil {
		return UpdateResult{State: StateFailed},
			apperr.New(apperr.CodeSiteAlreadyExists, "config file already exists: "+path)
	} else if !os.IsNotExist(err) {
		return UpdateResult{State: StateFailed}, apperr.FromFS(err, "config file "+path,
			apperr.CodeConfigFileNotFound, apperr.CodeConfigFileDenied)
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil { //nolint:gosec // Vhost configs are world-readable by convention
		if removeErr := u.removeFile(path); removeErr != nil && !os.IsNotExist(removeErr) {
			u.logger.Error("Removing partial config file failed", "path", path, "error", removeErr)
		}
		return UpdateResult{State: StateFailed},
			apperr.New(apperr.CodeConfigWrite, "writing config file "+path).WithCause(err)
	}

	if output, err := u.runValidator(ctx); err != nil {
		metrics.ValidatorFailures.Inc()
		if removeErr := u.removeFile(path); removeErr != nil {
			u.logger.Error("Removing rejected config file failed", "path", path, "error", removeErr)
			return UpdateResult{State: StateFailed},
				apperr.New(apperr.CodeValidation, "configuration validation failed").
					WithDetails(output).WithCause(err)
		}
		return UpdateResult{State: StateRolledBack},
			apperr.New(apperr.CodeValidation, "configuration validation failed").
				WithDetails(output).WithCause(err)
	}

	u.logger.Info("Config file installed", "path", path)
	return UpdateResult{State: StateCommitted}, nil
}

// runValidator runs the configured syntax-validation command over the whole
// configuration and returns its combined output.
func (u *Updater) runValidator(ctx context.Context) (string, error) {
	fields := strings.Fields(u.configProvider.GetConfig().ValidateCommand)
	if len(fields) == 0 {
		return "", apperr.New(apperr.CodeInternal, "no validate command configured")
	}
	output, err := u.runner.CombinedOutput(ctx, fields[0], fields[1:]...)
	return string(output), err
}

// transaction is one run of the update state machine. Each transition method
// moves state forward on success and lands on a terminal state on failure,
// performing its own recovery; the deferred sweep in run is a safety net that
// restores the backup should any future edge forget to.
type transaction struct {
	updater *Updater
	path    string
	content string

	state      State
	backupPath string
	fileMode   fs.FileMode
	warning    string
}

func (t *transaction) run(ctx context.Context) (result UpdateResult, err error) {
	defer func() {
		if t.state.terminal() {
			return
		}
		t.recover()
		result.State = t.state
	}()

	for _, transition := range []func(context.Context) error{t.backup, t.write, t.validate, t.commit} {
		if err = transition(ctx); err != nil {
			return UpdateResult{State: t.state}, err
		}
	}
	return UpdateResult{State: t.state, Warning: t.warning}, nil
}

// backup copies the live file aside. Initial -> BackedUp; failure leaves no
// side effects behind.
func (t *transaction) backup(context.Context) error {
	info, err := os.Stat(t.path)
	if err != nil {
		t.state = StateFailed
		return apperr.FromFS(err, "config file "+t.path, apperr.CodeConfigFileNotFound, apperr.CodeConfigFileDenied)
	}
	t.fileMode = info.Mode().Perm()

	original, err := os.ReadFile(t.path) //nolint:gosec // Path was resolved by the caller from persisted site records
	if err != nil {
		t.state = StateFailed
		return apperr.FromFS(err, "config file "+t.path, apperr.CodeConfigFileNotFound, apperr.CodeConfigFileDenied)
	}

	backupPath := t.path + ".bak." + strconv.FormatInt(time.Now().UnixNano(), 10)
	if err := os.WriteFile(backupPath, original, 0600); err != nil {
		if removeErr := t.updater.removeFile(backupPath); removeErr != nil && !os.IsNotExist(removeErr) {
			t.updater.logger.Error("Removing partial backup failed", "path", backupPath, "error", removeErr)
		}
		t.state = StateFailed
		return apperr.New(apperr.CodeConfigWrite, "writing backup "+backupPath).WithCause(err)
	}

	t.backupPath = backupPath
	t.state = StateBackedUp
	t.updater.logger.Debug("Config backed up", "path", t.path, "backup", backupPath)
	return nil
}

// write overwrites the live file. BackedUp -> Written; failure restores the
// backup by rename.
func (t *transaction) write(context.Context) error {
	if err := os.WriteFile(t.path, []byte(t.content), t.fileMode); err != nil {
		t.restoreBackup()
		return apperr.New(apperr.CodeConfigWrite, "writing config file "+t.path).WithCause(err)
	}
	t.state = StateWritten
	return nil
}

// validate runs the external validator. Written -> Validated; rejection
// restores the backup and surfaces the validator diagnostic.
func (t *transaction) validate(ctx context.Context) error {
	output, err := t.updater.runValidator(ctx)
	if err != nil {
		metrics.ValidatorFailures.Inc()
		t.updater.logger.Warn("Configuration validation rejected update", "path", t.path, "output", output)
		t.restoreBackup()
		return apperr.New(apperr.CodeValidation, "configuration validation failed").
			WithDetails(output).WithCause(err)
	}
	t.state = StateValidated
	return nil
}

// commit deletes the backup. Validated -> Committed; a leftover backup is a
// warning, never a failure, because the live file already holds validated
// content.
func (t *transaction) commit(context.Context) error {
	if err := t.updater.removeFile(t.backupPath); err != nil {
		t.warning = "backup not removed: " + t.backupPath
		t.updater.logger.Warn("Removing backup failed after commit", "backup", t.backupPath, "error", err)
	}
	t.state = StateCommitted
	t.updater.logger.Info("Config update committed", "path", t.path)
	return nil
}

// restoreBackup renames the backup over the live path. When the rename fails
// the live file may hold rejected content, which is the one situation the
// machine cannot repair; it lands on Failed and the operator keeps the backup.
func (t *transaction) restoreBackup() {
	if err := t.updater.renameFile(t.backupPath, t.path); err != nil {
		t.updater.logger.Error("Restoring backup failed", "backup", t.backupPath, "path", t.path, "error", err)
		t.state = StateFailed
		return
	}
	t.state = StateRolledBack
}

// recover is the best-effort sweep for a transaction abandoned between
// BackedUp and Committed: it puts the backup back and reports Failed. The
// error that interrupted the transaction is the one the caller sees.
func (t *transaction) recover() {
	if t.backupPath != "" && t.state != StateInitial {
		if err := t.updater.renameFile(t.backupPath, t.path); err != nil && !os.IsNotExist(err) {
			t.updater.logger.Error("Recovery restore failed", "backup", t.backupPath, "error", err)
		}
	}
	t.state = StateFailed
}
