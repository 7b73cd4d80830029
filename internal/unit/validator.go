package unit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/trly/host-ops/internal/apperr"
	"github.com/trly/host-ops/internal/config"
	"github.com/trly/host-ops/internal/envfile"
	"github.com/trly/host-ops/internal/extract"
	"github.com/trly/host-ops/internal/log"
	"github.com/trly/host-ops/internal/metrics"
)

// Validator checks that a service unit exists on disk, points at a real
// application directory, and that the application declares its name.
type Validator struct {
	configProvider config.Provider
	logger         log.Logger
}

// NewValidator creates a Validator using the provided configuration and logger.
func NewValidator(configProvider config.Provider, logger log.Logger) *Validator {
	return &Validator{configProvider: configProvider, logger: logger}
}

// Validate runs the full check chain for a single unit filename and returns
// the enriched unit on success. Checks run in order and stop at the first
// failure; the filename checks never touch the file system.
func (v *Validator) Validate(filename string) (ServiceUnit, error) {
	u, err := v.validate(filename)
	metrics.ObserveUnitValidation(err)
	return u, err
}

func (v *Validator) validate(filename string) (ServiceUnit, error) {
	cfg := v.configProvider.GetConfig()

	trimmed := strings.TrimSpace(filename)
	if trimmed == "" {
		return ServiceUnit{}, apperr.New(apperr.CodeValidation, "unit filename is required")
	}
	if !strings.HasSuffix(trimmed, ServiceSuffix) {
		return ServiceUnit{}, apperr.New(apperr.CodeValidation,
			fmt.Sprintf("unit filename %q must end in %s", trimmed, ServiceSuffix))
	}

	unitPath := filepath.Join(cfg.UnitDir, trimmed)
	if _, err := os.Stat(unitPath); err != nil {
		return ServiceUnit{}, apperr.FromFS(err, "unit file "+unitPath, apperr.CodeServiceFileNotFound, apperr.CodeServiceFileDenied)
	}

	content, err := os.ReadFile(unitPath) //nolint:gosec // Path is rooted in the configured unit directory
	if err != nil {
		return ServiceUnit{}, apperr.New(apperr.CodeServiceFileRead, "reading unit file "+unitPath).WithCause(err)
	}

	workDir, ok := extract.DirectiveValue(string(content), "WorkingDirectory")
	if !ok {
		return ServiceUnit{}, apperr.New(apperr.CodeWorkingDirNotFound, "no WorkingDirectory directive in "+trimmed)
	}

	info, err := os.Stat(workDir)
	if err != nil {
		return ServiceUnit{}, apperr.FromFS(err, "application directory "+workDir, apperr.CodeAppDirNotFound, apperr.CodeAppDirDenied)
	}
	if !info.IsDir() {
		return ServiceUnit{}, apperr.New(apperr.CodeAppDirNotFound, "application directory "+workDir+" is not a directory")
	}

	resolver := envfile.NewResolver(cfg.AppNameVar, v.logger)
	res, err := resolver.Resolve(workDir)
	if err != nil {
		return ServiceUnit{}, err
	}

	v.logger.Debug("Unit validated", "unit", trimmed, "app", res.AppName, "workingDirectory", workDir)

	return ServiceUnit{
		Filename:         trimmed,
		Name:             res.AppName,
		WorkingDirectory: workDir,
	}, nil
}
