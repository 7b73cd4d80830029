// Package validate provides environment and input validation for host-ops.
package validate

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/trly/host-ops/internal/config"
	"github.com/trly/host-ops/internal/execx"
	"github.com/trly/host-ops/internal/log"
)

// Validator checks that the host carries the tools host-ops depends on.
type Validator struct {
	configProvider config.Provider
	logger         log.Logger
	runner         execx.Runner
	osGetter       func() string // For testing, defaults to runtime.GOOS
}

// NewValidator creates a new Validator with injected dependencies.
func NewValidator(configProvider config.Provider, logger log.Logger, runner execx.Runner) *Validator {
	return &Validator{
		configProvider: configProvider,
		logger:         logger,
		runner:         runner,
		osGetter:       func() string { return runtime.GOOS },
	}
}

// WithOSGetter sets a custom OS getter for testing.
func (v *Validator) WithOSGetter(osGetter func() string) *Validator {
	v.osGetter = osGetter
	return v
}

// SystemRequirements checks that systemd and the configured validator tool
// are installed.
func (v *Validator) SystemRequirements(ctx context.Context) error {
	goos := v.osGetter()
	if goos != "linux" {
		return fmt.Errorf("unsupported platform: %s (host-ops requires Linux with systemd)", goos)
	}

	v.logger.Debug("Validating systemd availability")

	systemdVersion, err := v.runner.CombinedOutput(ctx, "systemctl", "--version")
	if err != nil {
		return fmt.Errorf("systemd not found: %w", err)
	}
	if !strings.Contains(string(systemdVersion), "systemd") {
		return fmt.Errorf("systemd not properly installed")
	}

	return v.validatorTool(ctx)
}

// validatorTool checks that the binary behind the configured validate
// command exists. The tool is probed with -v, which nginx and the usual
// proxies answer with a version line.
func (v *Validator) validatorTool(ctx context.Context) error {
	command := v.configProvider.GetConfig().ValidateCommand
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return fmt.Errorf("validate command is empty")
	}

	tool := fields[0]
	v.logger.Debug("Validating config checker availability", "tool", tool)

	if _, err := v.runner.CombinedOutput(ctx, tool, "-v"); err != nil {
		return fmt.Errorf("%s not found (required by the validate command %q): %w", tool, command, err)
	}
	return nil
}
