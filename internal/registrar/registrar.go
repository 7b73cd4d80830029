// Package registrar defines the DNS collaborator seam. Site create and
// delete call through it; the default implementation only logs, real DNS
// automation lives outside this system.
package registrar

import (
	"context"

	"github.com/trly/host-ops/internal/log"
)

// Registrar manages address records for site hostnames.
type Registrar interface {
	// EnsureAddressRecord makes sure serverName resolves to ip.
	EnsureAddressRecord(ctx context.Context, serverName, ip string) error

	// RemoveRecord removes the address record for serverName.
	RemoveRecord(ctx context.Context, serverName string) error
}

// LoggingRegistrar implements Registrar by recording the intent and doing
// nothing else.
type LoggingRegistrar struct {
	logger log.Logger
}

// NewLoggingRegistrar creates a logging no-op registrar.
func NewLoggingRegistrar(logger log.Logger) *LoggingRegistrar {
	return &LoggingRegistrar{logger: logger}
}

// EnsureAddressRecord logs the requested record and succeeds.
func (r *LoggingRegistrar) EnsureAddressRecord(_ context.Context, serverName, ip string) error {
	r.logger.Info("DNS record not managed here, ensure it exists", "serverName", serverName, "ip", ip)
	return nil
}

// RemoveRecord logs the requested removal and succeeds.
func (r *LoggingRegistrar) RemoveRecord(_ context.Context, serverName string) error {
	r.logger.Info("DNS record not managed here, remove it if present", "serverName", serverName)
	return nil
}
