package scan

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// reportHeader is the fixed column set of every scan report.
var reportHeader = []string{"id", "fileName", "status", "errorMessage", "serverName", "portNumber", "localIpAddress"}

// writeReport emits one CSV row per scanned file, in scan order, into the
// report directory. The directory is created on first use.
func (s *Scanner) writeReport(entries []Entry) (string, error) {
	cfg := s.configProvider.GetConfig()

	if err := os.MkdirAll(cfg.ReportDir, 0750); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	path := filepath.Join(cfg.ReportDir, "scan-"+s.now().Format("20060102-150405")+".csv")
	f, err := os.Create(path) //nolint:gosec // Path is rooted in the configured report directory
	if err != nil {
		return "", fmt.Errorf("creating report file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(reportHeader); err != nil {
		_ = f.Close()
		return "", err
	}
	for i, entry := range entries {
		row := []string{strconv.Itoa(i + 1), entry.FileName, string(entry.Status),
			entry.ErrorMessage, entry.ServerName, entry.PortNumber, entry.LocalIP}
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	s.logger.Debug("Scan report written", "path", path, "rows", len(entries))
	return path, nil
}
