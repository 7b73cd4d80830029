package systemd

import (
	"context"
	"fmt"

	"github.com/coreos/go-systemd/v22/dbus"
)

// MockConnection implements Connection for testing.
type MockConnection struct {
	GetUnitPropertyFunc     func(ctx context.Context, unitName, propertyName string) (*dbus.Property, error)
	GetUnitPropertiesFunc   func(ctx context.Context, unitName string) (map[string]interface{}, error)
	StartUnitFunc           func(ctx context.Context, unitName, mode string) (chan string, error)
	StopUnitFunc            func(ctx context.Context, unitName, mode string) (chan string, error)
	RestartUnitFunc         func(ctx context.Context, unitName, mode string) (chan string, error)
	ReloadOrRestartUnitFunc func(ctx context.Context, unitName, mode string) (chan string, error)
	ResetFailedUnitFunc     func(ctx context.Context, unitName string) error
	ReloadFunc              func(ctx context.Context) error
	CloseFunc               func() error
}

// GetUnitProperty gets a single property of a systemd unit.
func (m *MockConnection) GetUnitProperty(ctx context.Context, unitName, propertyName string) (*dbus.Property, error) {
	if m.GetUnitPropertyFunc != nil {
		return m.GetUnitPropertyFunc(ctx, unitName, propertyName)
	}
	return nil, fmt.Errorf("mock not implemented")
}

// GetUnitProperties gets all properties of a systemd unit.
func (m *MockConnection) GetUnitProperties(ctx context.Context, unitName string) (map[string]interface{}, error) {
	if m.GetUnitPropertiesFunc != nil {
		return m.GetUnitPropertiesFunc(ctx, unitName)
	}
	return nil, fmt.Errorf("mock not implemented")
}

// StartUnit starts a systemd unit.
func (m *MockConnection) StartUnit(ctx context.Context, unitName, mode string) (chan string, error) {
	if m.StartUnitFunc != nil {
		return m.StartUnitFunc(ctx, unitName, mode)
	}
	return nil, fmt.Errorf("mock not implemented")
}

// StopUnit stops a systemd unit.
func (m *MockConnection) StopUnit(ctx context.Context, unitName, mode string) (chan string, error) {
	if m.StopUnitFunc != nil {
		return m.StopUnitFunc(ctx, unitName, mode)
	}
	return nil, fmt.Errorf("mock not implemented")
}

// RestartUnit restarts a systemd unit.
func (m *MockConnection) RestartUnit(ctx context.Context, unitName, mode string) (chan string, error) {
	if m.RestartUnitFunc != nil {
		return m.RestartUnitFunc(ctx, unitName, mode)
	}
	return nil, fmt.Errorf("mock not implemented")
}

// ReloadOrRestartUnit reloads or restarts a systemd unit.
func (m *MockConnection) ReloadOrRestartUnit(ctx context.Context, unitName, mode string) (chan string, error) {
	if m.ReloadOrRestartUnitFunc != nil {
		return m.ReloadOrRestartUnitFunc(ctx, unitName, mode)
	}
	return nil, fmt.Errorf("mock not implemented")
}

// ResetFailedUnit resets the failed state of a unit.
func (m *MockConnection) ResetFailedUnit(ctx context.Context, unitName string) error {
	if m.ResetFailedUnitFunc != nil {
		return m.ResetFailedUnitFunc(ctx, unitName)
	}
	return fmt.Errorf("mock not implemented")
}

// Reload reloads the systemd configuration.
func (m *MockConnection) Reload(ctx context.Context) error {
	if m.ReloadFunc != nil {
		return m.ReloadFunc(ctx)
	}
	return fmt.Errorf("mock not implemented")
}

// Close closes the connection.
func (m *MockConnection) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// MockConnectionFactory implements ConnectionFactory for testing.
type MockConnectionFactory struct {
	NewConnectionFunc func(ctx context.Context, userMode bool) (Connection, error)
	Connection        Connection
}

// NewConnection creates a new systemd connection based on configuration.
func (m *MockConnectionFactory) NewConnection(ctx context.Context, userMode bool) (Connection, error) {
	if m.NewConnectionFunc != nil {
		return m.NewConnectionFunc(ctx, userMode)
	}
	if m.Connection != nil {
		return m.Connection, nil
	}
	return nil, fmt.Errorf("mock not configured")
}

// MockManager implements Manager for testing.
type MockManager struct {
	StatusFunc         func(ctx context.Context, unitName string) (UnitStatus, error)
	StartFunc          func(ctx context.Context, unitName string) error
	StopFunc           func(ctx context.Context, unitName string) error
	RestartFunc        func(ctx context.Context, unitName string) error
	DaemonReloadFunc   func(ctx context.Context) error
	ReloadProxyFunc    func(ctx context.Context) error
	FailureDetailsFunc func(ctx context.Context, unitName string) string
}

// Status returns the current status of a unit.
func (m *MockManager) Status(ctx context.Context, unitName string) (UnitStatus, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, unitName)
	}
	return UnitStatus{Name: unitName, ActiveState: "inactive", LoadState: "loaded"}, nil
}

// Start starts a unit.
func (m *MockManager) Start(ctx context.Context, unitName string) error {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, unitName)
	}
	return nil
}

// Stop stops a unit.
func (m *MockManager) Stop(ctx context.Context, unitName string) error {
	if m.StopFunc != nil {
		return m.StopFunc(ctx, unitName)
	}
	return nil
}

// Restart restarts a unit.
func (m *MockManager) Restart(ctx context.Context, unitName string) error {
	if m.RestartFunc != nil {
		return m.RestartFunc(ctx, unitName)
	}
	return nil
}

// DaemonReload reloads the systemd configuration.
func (m *MockManager) DaemonReload(ctx context.Context) error {
	if m.DaemonReloadFunc != nil {
		return m.DaemonReloadFunc(ctx)
	}
	return nil
}

// ReloadProxy reloads or restarts the configured front proxy unit.
func (m *MockManager) ReloadProxy(ctx context.Context) error {
	if m.ReloadProxyFunc != nil {
		return m.ReloadProxyFunc(ctx)
	}
	return nil
}

// FailureDetails gets detailed failure information for a unit.
func (m *MockManager) FailureDetails(ctx context.Context, unitName string) string {
	if m.FailureDetailsFunc != nil {
		return m.FailureDetailsFunc(ctx, unitName)
	}
	return "Unit: " + unitName + "\n  Status: mock failure details"
}
