// Package cmd provides the command line interface for host-ops
/*
Copyright © 2025 Travis Lyons travis.lyons@gmail.com

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/trly/host-ops/internal/scan"
)

// ScanOptions holds scan command options.
type ScanOptions struct {
	Notify bool
}

// ScanDeps holds scan dependencies.
type ScanDeps struct {
	CommonDeps
}

// ScanCommand represents the scan command for the host-ops CLI.
type ScanCommand struct{}

// NewScanCommand creates a new ScanCommand.
func NewScanCommand() *ScanCommand {
	return &ScanCommand{}
}

// getApp retrieves the App from the command context.
func (c *ScanCommand) getApp(cmd *cobra.Command) *App {
	return cmd.Context().Value(appContextKey).(*App)
}

// GetCobraCommand returns the cobra command for scan operations.
func (c *ScanCommand) GetCobraCommand() *cobra.Command {
	var opts ScanOptions

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the nginx sites directory and reconcile the site database",
		Long: `Scan the nginx sites directory and reconcile the site database.

Every vhost file is parsed for its server names, upstream address, and listen
port. Files not yet in the database are registered, known files are reported
as duplicates, and unparseable files are reported as errors. A CSV report of
newly discovered and failed files is written to the report directory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := c.getApp(cmd)
			deps := c.buildDeps(app)
			return c.Run(cmd.Context(), app, opts, deps)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	scanCmd.Flags().BoolVarP(&opts.Notify, "notify", "n", false, "Mail the scan report to the configured recipient")

	return scanCmd
}

// buildDeps creates production dependencies for the scan command.
func (c *ScanCommand) buildDeps(app *App) ScanDeps {
	return ScanDeps{
		CommonDeps: NewRootDeps(app),
	}
}

// Run executes the scan command with injected dependencies.
func (c *ScanCommand) Run(ctx context.Context, app *App, opts ScanOptions, _ ScanDeps) error {
	result, err := app.Scanner.Run(ctx)
	if err != nil {
		return err
	}

	if opts.Notify {
		notifyScanReport(ctx, app, result)
	}

	if app.OutputFormat != "text" {
		return PrintOutput(app.OutputFormat, result)
	}

	c.displayResult(result)
	return nil
}

// displayResult prints the scan outcome as a table plus a summary line.
func (c *ScanCommand) displayResult(result scan.Result) {
	entries := make([]scan.Entry, 0, len(result.New)+len(result.Duplicates)+len(result.Errors))
	entries = append(entries, result.New...)
	entries = append(entries, result.Duplicates...)
	entries = append(entries, result.Errors...)

	if len(entries) > 0 {
		headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
		columnFmt := color.New(color.FgYellow).SprintfFunc()
		tbl := table.New("File", "Status", "Server Name", "Port", "Detail")
		tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)

		for _, entry := range entries {
			tbl.AddRow(entry.FileName, string(entry.Status), entry.ServerName, entry.PortNumber, entry.ErrorMessage)
		}
		tbl.Print()
		fmt.Println()
	}

	fmt.Printf("%d new, %d duplicate, %d error\n", result.NewCount, result.DuplicateCount, result.ErrorCount)
	if result.ReportPath != "" {
		fmt.Printf("Report written to %s\n", result.ReportPath)
	}
}

// notifyScanReport mails the scan report when a recipient is configured and a
// report was written. Failures are logged, never fatal.
func notifyScanReport(ctx context.Context, app *App, result scan.Result) {
	recipient := app.Config.MailTo
	if recipient == "" || result.ReportPath == "" {
		return
	}
	if err := app.Mailer.SendScanReport(ctx, recipient, result.ReportPath, result.NewCount, result.ErrorCount); err != nil {
		app.Logger.Warn("Failed to send scan report", "recipient", recipient, "error", err)
	}
}
