// Package scan discovers vhost configuration files, reconciles them with the
// persisted site inventory, and emits a CSV report per run.
package scan

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/trly/host-ops/internal/apperr"
	"github.com/trly/host-ops/internal/config"
	"github.com/trly/host-ops/internal/log"
	"github.com/trly/host-ops/internal/metrics"
	"github.com/trly/host-ops/internal/nginx"
	"github.com/trly/host-ops/internal/store"
)

// defaultEntryName is the distribution-shipped vhost skipped on every scan.
const defaultEntryName = "default"

// noServerNamesMessage is the recorded reason for files that parse to no
// server names.
const noServerNamesMessage = "No server names found"

// Status classifies one scanned file.
type Status string

// Scan statuses.
const (
	StatusNew       Status = "new"
	StatusDuplicate Status = "duplicate"
	StatusError     Status = "error"
)

// Entry is the scan outcome for a single file.
type Entry struct {
	FileName     string `json:"fileName"`
	Status       Status `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	ServerName   string `json:"serverName,omitempty"`
	PortNumber   string `json:"portNumber,omitempty"`
	LocalIP      string `json:"localIpAddress,omitempty"`
	PublicID     string `json:"publicId,omitempty"`
}

// Result aggregates one scan run. The report path is empty when report
// generation failed; the failure is logged, never fatal.
type Result struct {
	NewCount       int     `json:"newCount"`
	DuplicateCount int     `json:"duplicateCount"`
	ErrorCount     int     `json:"errorCount"`
	New            []Entry `json:"new"`
	Duplicates     []Entry `json:"duplicates"`
	Errors         []Entry `json:"errors"`
	ReportPath     string  `json:"reportPath,omitempty"`
}

// Scanner reconciles the sites directory with the persisted inventory.
type Scanner struct {
	configProvider config.Provider
	logger         log.Logger
	sites          store.SiteRepository
	machines       store.MachineRepository

	newID func() string
	now   func() time.Time
}

// NewScanner creates a Scanner over the given repositories.
func NewScanner(configProvider config.Provider, logger log.Logger, sites store.SiteRepository, machines store.MachineRepository) *Scanner {
	return &Scanner{
		configProvider: configProvider,
		logger:         logger,
		sites:          sites,
		machines:       machines,
		newID:          uuid.NewString,
		now:            time.Now,
	}
}

// Run scans the sites directory once. Files are processed in enumeration
// order and a single bad file never aborts the run; only an unreadable
// directory does.
func (s *Scanner) Run(ctx context.Context) (Result, error) {
	cfg := s.configProvider.GetConfig()

	dirEntries, err := os.ReadDir(cfg.SitesDir)
	if err != nil {
		return Result{}, apperr.FromFS(err, "sites directory "+cfg.SitesDir,
			apperr.CodeConfigFileNotFound, apperr.CodeConfigFileDenied)
	}

	metrics.ScansTotal.Inc()

	var all []Entry
	for _, dirEntry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if dirEntry.IsDir() || dirEntry.Name() == defaultEntryName {
			continue
		}
		entry := s.scanFile(cfg, dirEntry.Name())
		metrics.ScannedSites.WithLabelValues(string(entry.Status)).Inc()
		all = append(all, entry)
	}

	result := classify(all)
	result.NewCount = len(result.New)
	result.DuplicateCount = len(result.Duplicates)
	result.ErrorCount = len(result.Errors)

	reportPath, err := s.writeReport(all)
	if err != nil {
		s.logger.Warn("Scan report not written", "error", err)
	} else {
		result.ReportPath = reportPath
	}

	s.logger.Info("Scan finished",
		"new", result.NewCount, "duplicates", result.DuplicateCount, "errors", result.ErrorCount)
	return result, nil
}

func (s *Scanner) scanFile(cfg *config.Settings, name string) Entry {
	path := filepath.Join(cfg.SitesDir, name)

	content, err := os.ReadFile(path) //nolint:gosec // Path is rooted in the configured sites directory
	if err != nil {
		s.logger.Warn("Unreadable site file", "file", name, "error", err)
		return Entry{FileName: name, Status: StatusError, ErrorMessage: "unable to read file: " + err.Error()}
	}

	parsed := nginx.Parse(string(content))
	if parsed.Primary() == "" {
		return Entry{FileName: name, Status: StatusError, ErrorMessage: noServerNamesMessage}
	}

	entry := Entry{
		FileName:   name,
		ServerName: parsed.Primary(),
		PortNumber: parsed.ListenPort,
		LocalIP:    parsed.UpstreamIP,
	}

	// Machine lookup is best-effort: an unregistered upstream is recorded as
	// absence, not a failure.
	machinePublicID := ""
	if parsed.UpstreamIP != "" {
		machine, err := s.machines.FindByIP(parsed.UpstreamIP)
		if err != nil {
			s.logger.Debug("No machine registered for upstream", "file", name, "ip", parsed.UpstreamIP)
		} else {
			machinePublicID = machine.PublicID
		}
	}

	_, err = s.sites.FindByServerName(parsed.Primary())
	switch {
	case err == nil:
		entry.Status = StatusDuplicate
		entry.ErrorMessage = "site already registered"
		return entry
	case !apperr.HasCode(err, apperr.CodeSiteNotFound):
		entry.Status = StatusError
		entry.ErrorMessage = "inventory lookup failed: " + err.Error()
		return entry
	}

	site := store.Site{
		PublicID:        s.newID(),
		ServerName:      parsed.Primary(),
		Framework:       parsed.Framework,
		ConfigPath:      path,
		ListenPort:      parsed.ListenPort,
		UpstreamIP:      parsed.UpstreamIP,
		MachinePublicID: machinePublicID,
	}
	if err := s.sites.Create(&site); err != nil {
		entry.Status = StatusError
		entry.ErrorMessage = "insert failed: " + err.Error()
		return entry
	}

	entry.Status = StatusNew
	entry.PublicID = site.PublicID
	s.logger.Info("Site discovered", "serverName", site.ServerName, "file", name)
	return entry
}

func classify(entries []Entry) Result {
	var result Result
	for _, entry := range entries {
		switch entry.Status {
		case StatusNew:
			result.New = append(result.New, entry)
		case StatusDuplicate:
			result.Duplicates = append(result.Duplicates, entry)
		case StatusError:
			result.Errors = append(result.Errors, entry)
		}
	}
	return result
}
