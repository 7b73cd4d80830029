package unit

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/trly/host-ops/internal/apperr"
	"github.com/trly/host-ops/internal/config"
	"github.com/trly/host-ops/internal/log"
)

// AppUnit describes the unit pair rendered for one application. A timer is
// rendered only when OnCalendar is set.
type AppUnit struct {
	Name             string
	Description      string
	WorkingDirectory string
	ExecStart        string
	Port             string
	User             string
	OnCalendar       string
}

// ServiceFilename returns the service unit filename for the application.
func (a AppUnit) ServiceFilename() string { return a.Name + ServiceSuffix }

// TimerFilename returns the timer unit filename for the application.
func (a AppUnit) TimerFilename() string { return a.Name + TimerSuffix }

func (a AppUnit) validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return apperr.New(apperr.CodeValidation, "application name is required")
	}
	if strings.ContainsAny(a.Name, "/ ") {
		return apperr.New(apperr.CodeValidation, "application name must not contain slashes or spaces")
	}
	if strings.TrimSpace(a.ExecStart) == "" {
		return apperr.New(apperr.CodeValidation, "ExecStart is required")
	}
	if !filepath.IsAbs(a.WorkingDirectory) {
		return apperr.New(apperr.CodeValidation, "working directory must be an absolute path")
	}
	return nil
}

// Writer renders and installs systemd unit files for applications.
type Writer struct {
	configProvider config.Provider
	logger         log.Logger
}

// NewWriter creates a Writer using the provided configuration and logger.
func NewWriter(configProvider config.Provider, logger log.Logger) *Writer {
	return &Writer{configProvider: configProvider, logger: logger}
}

// RenderService serializes the service unit for app.
func (w *Writer) RenderService(app AppUnit) (string, error) {
	if err := app.validate(); err != nil {
		return "", err
	}

	file := ini.Empty(ini.LoadOptions{AllowShadows: true})

	unitSection, _ := file.NewSection("Unit")
	description := app.Description
	if description == "" {
		description = app.Name + " application"
	}
	_, _ = unitSection.NewKey("Description", description)
	_, _ = unitSection.NewKey("After", "network-online.target")
	_, _ = unitSection.NewKey("Wants", "network-online.target")

	serviceSection, _ := file.NewSection("Service")
	_, _ = serviceSection.NewKey("Type", "simple")
	_, _ = serviceSection.NewKey("WorkingDirectory", app.WorkingDirectory)
	if app.Port != "" {
		_, _ = serviceSection.NewKey("Environment", "PORT="+app.Port)
	}
	_, _ = serviceSection.NewKey("ExecStart", app.ExecStart)
	if app.User != "" {
		_, _ = serviceSection.NewKey("User", app.User)
	}
	_, _ = serviceSection.NewKey("Restart", "on-failure")

	w.addInstallSection(file, "multi-user.target")

	return renderUnitFile(file)
}

// RenderTimer serializes the timer unit paired with the application service.
func (w *Writer) RenderTimer(app AppUnit) (string, error) {
	if err := app.validate(); err != nil {
		return "", err
	}
	if strings.TrimSpace(app.OnCalendar) == "" {
		return "", apperr.New(apperr.CodeValidation, "OnCalendar is required to render a timer")
	}

	file := ini.Empty(ini.LoadOptions{AllowShadows: true})

	unitSection, _ := file.NewSection("Unit")
	_, _ = unitSection.NewKey("Description", "Timer for "+app.Name)

	timerSection, _ := file.NewSection("Timer")
	_, _ = timerSection.NewKey("OnCalendar", app.OnCalendar)
	_, _ = timerSection.NewKey("Persistent", "true")
	_, _ = timerSection.NewKey("Unit", app.ServiceFilename())

	w.addInstallSection(file, "timers.target")

	return renderUnitFile(file)
}

func (w *Writer) addInstallSection(file *ini.File, systemTarget string) {
	target := systemTarget
	if w.configProvider.GetConfig().UserMode && systemTarget == "multi-user.target" {
		target = "default.target"
	}
	installSection, _ := file.NewSection("Install")
	_, _ = installSection.NewKey("WantedBy", target)
}

func renderUnitFile(file *ini.File) (string, error) {
	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return "", apperr.Internal(err)
	}
	return buf.String(), nil
}

// Install renders the units for app and writes the ones whose content
// differs from what is already on disk. It returns the paths it wrote.
func (w *Writer) Install(app AppUnit) ([]string, error) {
	rendered := make(map[string]string, 2)

	service, err := w.RenderService(app)
	if err != nil {
		return nil, err
	}
	rendered[app.ServiceFilename()] = service

	if app.OnCalendar != "" {
		timer, err := w.RenderTimer(app)
		if err != nil {
			return nil, err
		}
		rendered[app.TimerFilename()] = timer
	}

	unitDir := w.configProvider.GetConfig().UnitDir
	written := make([]string, 0, len(rendered))
	for _, name := range []string{app.ServiceFilename(), app.TimerFilename()} {
		content, ok := rendered[name]
		if !ok {
			continue
		}
		path := filepath.Join(unitDir, name)
		if !w.UnitChanged(path, content) {
			continue
		}
		if err := w.writeUnitFile(path, content); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// UnitChanged reports whether installing content at path would change the
// file. Unreadable or absent files count as changed.
func (w *Writer) UnitChanged(path, content string) bool {
	existing, err := os.ReadFile(path) //nolint:gosec // Path is rooted in the configured unit directory
	if err != nil {
		return true
	}
	if string(existing) == content {
		w.logger.Debug("Unit unchanged, skipping", "path", path)
		return false
	}
	return true
}

func (w *Writer) writeUnitFile(path, content string) error {
	w.logger.Debug("Writing unit file", "path", path)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return apperr.New(apperr.CodeConfigWrite, "creating unit directory for "+path).WithCause(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return apperr.New(apperr.CodeConfigWrite, "writing unit file "+path).WithCause(err)
	}
	return nil
}
