// Package mailer defines the notification seam for scan reports. The default
// implementation only logs; real mail delivery lives outside this system.
package mailer

import (
	"context"

	"github.com/trly/host-ops/internal/log"
)

// Mailer sends scan result notifications.
type Mailer interface {
	// SendScanReport notifies recipient about a finished scan and its
	// report file.
	SendScanReport(ctx context.Context, recipient, reportPath string, newCount, errorCount int) error
}

// LoggingMailer implements Mailer by recording the intent and doing nothing
// else.
type LoggingMailer struct {
	logger log.Logger
}

// NewLoggingMailer creates a logging no-op mailer.
func NewLoggingMailer(logger log.Logger) *LoggingMailer {
	return &LoggingMailer{logger: logger}
}

// SendScanReport logs the notification and succeeds.
func (m *LoggingMailer) SendScanReport(_ context.Context, recipient, reportPath string, newCount, errorCount int) error {
	m.logger.Info("Scan report ready, mail delivery not managed here",
		"recipient", recipient, "report", reportPath, "new", newCount, "errors", errorCount)
	return nil
}
