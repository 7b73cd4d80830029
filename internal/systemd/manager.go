package systemd

import (
	"context"
	"errors"
	"fmt"

	"github.com/trly/host-ops/internal/config"
	"github.com/trly/host-ops/internal/execx"
	"github.com/trly/host-ops/internal/log"
	"github.com/trly/host-ops/internal/validate"
)

const (
	// jobMode replaces any queued job for the same unit.
	jobMode = "replace"

	// jobDone is the only D-Bus job result that counts as success.
	jobDone = "done"
)

// DefaultManager implements Manager over a ConnectionFactory. Each operation
// opens its own connection; connections are not reused across calls.
type DefaultManager struct {
	connectionFactory ConnectionFactory
	configProvider    config.Provider
	logger            log.Logger
	runner            execx.Runner
}

// NewManager creates a manager with injected dependencies. The runner is used
// for journal reads only; unit operations go over D-Bus.
func NewManager(connectionFactory ConnectionFactory, configProvider config.Provider, logger log.Logger, runner execx.Runner) *DefaultManager {
	return &DefaultManager{
		connectionFactory: connectionFactory,
		configProvider:    configProvider,
		logger:            logger,
		runner:            runner,
	}
}

func (m *DefaultManager) connect(ctx context.Context) (Connection, error) {
	return m.connectionFactory.NewConnection(ctx, m.configProvider.GetConfig().UserMode)
}

// Status returns the current status of a unit.
func (m *DefaultManager) Status(ctx context.Context, unitName string) (UnitStatus, error) {
	conn, err := m.connect(ctx)
	if err != nil {
		return UnitStatus{}, err
	}
	defer func() { _ = conn.Close() }()

	props, err := conn.GetUnitProperties(ctx, unitName)
	if err != nil {
		return UnitStatus{}, NewError("status", unitName, err)
	}

	return UnitStatus{
		Name:         unitName,
		ActiveState:  propString(props, "ActiveState"),
		SubState:     propString(props, "SubState"),
		LoadState:    propString(props, "LoadState"),
		Description:  propString(props, "Description"),
		FragmentPath: propString(props, "FragmentPath"),
	}, nil
}

// Start starts a unit.
func (m *DefaultManager) Start(ctx context.Context, unitName string) error {
	return m.runJob(ctx, "start", unitName, func(conn Connection) (chan string, error) {
		return conn.StartUnit(ctx, unitName, jobMode)
	})
}

// Stop stops a unit.
func (m *DefaultManager) Stop(ctx context.Context, unitName string) error {
	return m.runJob(ctx, "stop", unitName, func(conn Connection) (chan string, error) {
		return conn.StopUnit(ctx, unitName, jobMode)
	})
}

// Restart restarts a unit. A unit left in the failed state has that state
// reset first so the restart starts clean.
func (m *DefaultManager) Restart(ctx context.Context, unitName string) error {
	return m.runJob(ctx, "restart", unitName, func(conn Connection) (chan string, error) {
		if prop, err := conn.GetUnitProperty(ctx, unitName, "ActiveState"); err == nil {
			if state, ok := prop.Value.Value().(string); ok && state == "failed" {
				m.logger.Debug("Resetting failed unit before restart", "name", unitName)
				if resetErr := conn.ResetFailedUnit(ctx, unitName); resetErr != nil {
					m.logger.Warn("Failed-state reset did not succeed", "name", unitName, "error", resetErr)
				}
			}
		}
		return conn.RestartUnit(ctx, unitName, jobMode)
	})
}

// DaemonReload reloads the systemd configuration.
func (m *DefaultManager) DaemonReload(ctx context.Context) error {
	conn, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	m.logger.Debug("Reloading systemd")
	return conn.Reload(ctx)
}

// ReloadProxy reloads or restarts the configured front proxy unit. Called
// after a committed config update so the proxy picks up the new file.
func (m *DefaultManager) ReloadProxy(ctx context.Context) error {
	proxyUnit := m.configProvider.GetConfig().ProxyUnit
	m.logger.Debug("Reloading front proxy", "unit", proxyUnit)
	return m.runJob(ctx, "reload-or-restart", proxyUnit, func(conn Connection) (chan string, error) {
		return conn.ReloadOrRestartUnit(ctx, proxyUnit, jobMode)
	})
}

// FailureDetails gets detailed failure information for a unit. Best effort;
// problems collecting details are reported in the returned text, never as an
// error.
func (m *DefaultManager) FailureDetails(ctx context.Context, unitName string) string {
	conn, err := m.connect(ctx)
	if err != nil {
		return fmt.Sprintf("Could not connect to systemd: %v", err)
	}
	defer func() { _ = conn.Close() }()

	return m.describeFailure(ctx, conn, unitName)
}

// runJob enqueues a unit job and waits for its result. Any result other than
// "done" fails with the unit's current state attached for diagnosis.
func (m *DefaultManager) runJob(ctx context.Context, operation, unitName string, enqueue func(Connection) (chan string, error)) error {
	conn, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	m.logger.Debug("Running unit job", "op", operation, "name", unitName)

	ch, err := enqueue(conn)
	if err != nil {
		return NewError(operation, unitName, err)
	}

	result := <-ch
	if result != jobDone {
		details := m.describeFailure(ctx, conn, unitName)
		return NewError(operation, unitName, errors.New("job result "+result+details))
	}

	m.logger.Debug("Unit job finished", "op", operation, "name", unitName)
	return nil
}

func (m *DefaultManager) describeFailure(ctx context.Context, conn Connection, unitName string) string {
	props, err := conn.GetUnitProperties(ctx, unitName)
	if err != nil {
		return fmt.Sprintf("\nCould not retrieve unit properties: %v", err)
	}

	statusInfo := fmt.Sprintf("Unit: %s\n", unitName)
	statusInfo += fmt.Sprintf("  Load State: %v\n", props["LoadState"])
	statusInfo += fmt.Sprintf("  Active State: %v\n", props["ActiveState"])
	statusInfo += fmt.Sprintf("  Sub State: %v\n", props["SubState"])

	if result, ok := props["Result"]; ok {
		statusInfo += fmt.Sprintf("  Result: %v\n", result)
	}

	if execMainStatus, ok := props["ExecMainStatus"]; ok {
		statusInfo += fmt.Sprintf("  Exit Status: %v\n", execMainStatus)
	}

	// The D-Bus API does not expose logs; journalctl is the one remaining
	// subprocess, so the unit name is vetted before it reaches argv.
	if err := validate.UnitName(unitName); err != nil {
		return fmt.Sprintf("\nUnit Status:\n%s\nRecent logs: (unavailable - invalid unit name)", statusInfo)
	}

	unitFlag := "--unit"
	if m.configProvider.GetConfig().UserMode {
		unitFlag = "--user-unit"
	}
	output, err := m.runner.CombinedOutput(ctx, "journalctl", unitFlag, unitName, "-n", "5", "--no-pager", "--output=short-precise")

	logInfo := "Recent logs: (unavailable)"
	if err == nil && len(output) > 0 {
		logInfo = "Recent logs:\n" + string(output)
	}

	return fmt.Sprintf("\nUnit Status:\n%s\n%s", statusInfo, logInfo)
}

func propString(props map[string]interface{}, key string) string {
	if value, ok := props[key].(string); ok {
		return value
	}
	return ""
}
