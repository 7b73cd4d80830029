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

// Package cmd provides unit command functionality for the host-ops CLI
package cmd

import (
	"context"

	"github.com/fatih/color"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/trly/host-ops/internal/apperr"
	"github.com/trly/host-ops/internal/systemd"
)

// UnitListOptions holds unit list command options.
type UnitListOptions struct {
	NoStatus bool
}

// UnitListDeps holds unit list dependencies.
type UnitListDeps struct {
	CommonDeps
	Caser systemd.TextCaser
}

// UnitListCommand represents the unit list command.
type UnitListCommand struct{}

// NewUnitListCommand creates a new UnitListCommand.
func NewUnitListCommand() *UnitListCommand {
	return &UnitListCommand{}
}

// getApp retrieves the App from the command context.
func (c *UnitListCommand) getApp(cmd *cobra.Command) *App {
	return cmd.Context().Value(appContextKey).(*App)
}

// GetCobraCommand returns the cobra command for listing units.
func (c *UnitListCommand) GetCobraCommand() *cobra.Command {
	var opts UnitListOptions

	unitListCmd := &cobra.Command{
		Use:   "list",
		Short: "List application units from the unit inventory",
		Long: `List application units from the unit inventory.

Each unit listed in the configured inventory file is validated against its
unit file and application directory, and its current systemd state is shown.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := c.getApp(cmd)
			deps := c.buildDeps(app)
			return c.Run(cmd.Context(), app, opts, deps)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	unitListCmd.Flags().BoolVar(&opts.NoStatus, "no-status", false, "Skip querying systemd for unit state")

	return unitListCmd
}

// buildDeps creates production dependencies for the unit list command.
func (c *UnitListCommand) buildDeps(app *App) UnitListDeps {
	return UnitListDeps{
		CommonDeps: NewRootDeps(app),
		Caser:      systemd.NewDefaultTextCaser(),
	}
}

// unitRow is one rendered inventory entry.
type unitRow struct {
	Filename      string `json:"filename" yaml:"filename"`
	Name          string `json:"name,omitempty" yaml:"name,omitempty"`
	Port          string `json:"port,omitempty" yaml:"port,omitempty"`
	TimerFilename string `json:"timerFilename,omitempty" yaml:"timerFilename,omitempty"`
	ActiveState   string `json:"activeState,omitempty" yaml:"activeState,omitempty"`
	Check         string `json:"check" yaml:"check"`
}

// Run executes the unit list command with injected dependencies.
func (c *UnitListCommand) Run(ctx context.Context, app *App, opts UnitListOptions, deps UnitListDeps) error {
	inventory, err := app.Inventory.Build(app.Config.UnitListPath)
	if err != nil {
		return err
	}

	rows := make([]unitRow, 0, len(inventory))
	for _, u := range inventory {
		row := unitRow{
			Filename:      u.Filename,
			Port:          u.Port,
			TimerFilename: u.TimerFilename,
			Check:         "ok",
		}

		validated, err := app.UnitValidator.Validate(u.Filename)
		if err != nil {
			row.Check = string(apperr.From(err).Code)
		} else {
			row.Name = validated.Name
		}

		if !opts.NoStatus {
			status, err := app.Systemd.Status(ctx, u.Filename)
			if err != nil {
				deps.Logger.Debug("Error getting unit status", "unit", u.Filename, "error", err)
				row.ActiveState = "unknown"
			} else {
				row.ActiveState = deps.Caser.Title(status.ActiveState)
			}
		}

		rows = append(rows, row)
	}

	if app.OutputFormat != "text" {
		return PrintOutput(app.OutputFormat, rows)
	}

	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()
	tbl := table.New("Unit", "App", "Port", "Timer", "State", "Check")
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)

	for _, row := range rows {
		tbl.AddRow(row.Filename, row.Name, row.Port, row.TimerFilename, row.ActiveState, row.Check)
	}
	tbl.Print()
	return nil
}
