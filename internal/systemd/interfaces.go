// Package systemd wraps the D-Bus operations host-ops performs on service
// units: status queries, lifecycle jobs, daemon reloads, and the front-proxy
// reload that follows a committed config update.
package systemd

import (
	"context"

	"github.com/coreos/go-systemd/v22/dbus"
)

// Connection wraps systemd D-Bus operations for testability.
type Connection interface {
	// GetUnitProperty gets a single property of a systemd unit.
	GetUnitProperty(ctx context.Context, unitName, propertyName string) (*dbus.Property, error)

	// GetUnitProperties gets all properties of a systemd unit.
	GetUnitProperties(ctx context.Context, unitName string) (map[string]interface{}, error)

	// StartUnit starts a systemd unit.
	StartUnit(ctx context.Context, unitName, mode string) (chan string, error)

	// StopUnit stops a systemd unit.
	StopUnit(ctx context.Context, unitName, mode string) (chan string, error)

	// RestartUnit restarts a systemd unit.
	RestartUnit(ctx context.Context, unitName, mode string) (chan string, error)

	// ReloadOrRestartUnit reloads a unit if it supports reloading, otherwise
	// restarts it.
	ReloadOrRestartUnit(ctx context.Context, unitName, mode string) (chan string, error)

	// ResetFailedUnit resets the failed state of a unit.
	ResetFailedUnit(ctx context.Context, unitName string) error

	// Reload reloads the systemd configuration (daemon-reload).
	Reload(ctx context.Context) error

	// Close closes the connection.
	Close() error
}

// ConnectionFactory creates Connection instances.
type ConnectionFactory interface {
	// NewConnection creates a new systemd connection based on configuration.
	NewConnection(ctx context.Context, userMode bool) (Connection, error)
}

// TextCaser provides text casing operations for display output.
type TextCaser interface {
	// Title converts text to title case.
	Title(text string) string
}

// UnitStatus is a point-in-time snapshot of one systemd unit.
type UnitStatus struct {
	Name         string `json:"name"`
	ActiveState  string `json:"activeState"`
	SubState     string `json:"subState"`
	LoadState    string `json:"loadState"`
	Description  string `json:"description,omitempty"`
	FragmentPath string `json:"fragmentPath,omitempty"`
}

// Manager exposes the unit operations host-ops performs.
type Manager interface {
	// Status returns the current status of a unit.
	Status(ctx context.Context, unitName string) (UnitStatus, error)

	// Start starts a unit.
	Start(ctx context.Context, unitName string) error

	// Stop stops a unit.
	Stop(ctx context.Context, unitName string) error

	// Restart restarts a unit.
	Restart(ctx context.Context, unitName string) error

	// DaemonReload reloads the systemd configuration.
	DaemonReload(ctx context.Context) error

	// ReloadProxy reloads or restarts the configured front proxy unit.
	ReloadProxy(ctx context.Context) error

	// FailureDetails gets detailed failure information for a unit.
	FailureDetails(ctx context.Context, unitName string) string
}
