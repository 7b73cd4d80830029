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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trly/host-ops/internal/apperr"
	"github.com/trly/host-ops/internal/unit"
)

// UnitSyncOptions holds unit sync command options.
type UnitSyncOptions struct {
	Machine string
	Restart bool
}

// UnitSyncDeps holds unit sync dependencies.
type UnitSyncDeps struct {
	CommonDeps
}

// UnitSyncCommand represents the unit sync command.
type UnitSyncCommand struct{}

// NewUnitSyncCommand creates a new UnitSyncCommand.
func NewUnitSyncCommand() *UnitSyncCommand {
	return &UnitSyncCommand{}
}

// getApp retrieves the App from the command context.
func (c *UnitSyncCommand) getApp(cmd *cobra.Command) *App {
	return cmd.Context().Value(appContextKey).(*App)
}

// GetCobraCommand returns the cobra command for syncing units.
func (c *UnitSyncCommand) GetCobraCommand() *cobra.Command {
	var opts UnitSyncOptions

	unitSyncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Validate the unit inventory and persist it on a machine record",
		Long: `Validate the unit inventory and persist it on a machine record.

Every unit in the configured inventory file is validated; the units that pass
replace the machine's stored unit list wholesale. Validation failures are
reported but do not abort the sync. With --restart the synced services are
restarted in dependency order, timers after their services.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := c.getApp(cmd)
			deps := c.buildDeps(app)
			return c.Run(cmd.Context(), app, opts, deps)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	unitSyncCmd.Flags().StringVarP(&opts.Machine, "machine", "m", "", "Public id of the machine to sync onto")
	unitSyncCmd.Flags().BoolVarP(&opts.Restart, "restart", "r", false, "Restart synced services in dependency order")
	_ = unitSyncCmd.MarkFlagRequired("machine")

	return unitSyncCmd
}

// buildDeps creates production dependencies for the unit sync command.
func (c *UnitSyncCommand) buildDeps(app *App) UnitSyncDeps {
	return UnitSyncDeps{
		CommonDeps: NewRootDeps(app),
	}
}

// unitSyncFailure is one inventory entry that failed validation.
type unitSyncFailure struct {
	Filename string `json:"filename" yaml:"filename"`
	Code     string `json:"code" yaml:"code"`
	Error    string `json:"error" yaml:"error"`
}

// unitSyncResult is the structured output of one sync run.
type unitSyncResult struct {
	Machine   string             `json:"machine" yaml:"machine"`
	Units     []unit.ServiceUnit `json:"units" yaml:"units"`
	Failures  []unitSyncFailure  `json:"failures" yaml:"failures"`
	Restarted []string           `json:"restarted,omitempty" yaml:"restarted,omitempty"`
}

// Run executes the unit sync command with injected dependencies.
func (c *UnitSyncCommand) Run(ctx context.Context, app *App, opts UnitSyncOptions, deps UnitSyncDeps) error {
	machine, err := app.Machines.FindByPublicID(opts.Machine)
	if err != nil {
		return err
	}

	inventory, err := app.Inventory.Build(app.Config.UnitListPath)
	if err != nil {
		return err
	}

	valid := make([]unit.ServiceUnit, 0, len(inventory))
	failures := make([]unitSyncFailure, 0)
	for _, u := range inventory {
		validated, err := app.UnitValidator.Validate(u.Filename)
		if err != nil {
			e := apperr.From(err)
			failures = append(failures, unitSyncFailure{Filename: u.Filename, Code: string(e.Code), Error: e.Message})
			continue
		}
		validated.TimerFilename = u.TimerFilename
		validated.Port = u.Port
		valid = append(valid, validated)
	}

	if err := app.Machines.ReplaceUnits(machine.PublicID, valid); err != nil {
		return err
	}
	deps.Logger.Info("Machine units synced",
		"machine", machine.Name, "units", len(valid), "failures", len(failures))

	result := unitSyncResult{Machine: machine.PublicID, Units: valid, Failures: failures}

	var restartErrs int
	if opts.Restart {
		result.Restarted, restartErrs = c.restartUnits(ctx, app, deps, valid)
	}

	if app.OutputFormat != "text" {
		if err := PrintOutput(app.OutputFormat, result); err != nil {
			return err
		}
	} else {
		c.displayResult(machine.Name, result)
	}

	if restartErrs > 0 {
		return fmt.Errorf("%d unit restarts failed", restartErrs)
	}
	return nil
}

// restartUnits restarts the synced units in dependency order and returns the
// names restarted plus the failure count.
func (c *UnitSyncCommand) restartUnits(ctx context.Context, app *App, deps UnitSyncDeps, units []unit.ServiceUnit) ([]string, int) {
	plan, err := unit.RestartPlan(units)
	if err != nil {
		deps.Logger.Error("Failed to order unit restarts", "error", err)
		return nil, 1
	}

	restarted := make([]string, 0, len(plan))
	failed := 0
	for _, name := range plan {
		if err := app.Systemd.Restart(ctx, name); err != nil {
			deps.Logger.Error("Failed to restart unit", "unit", name, "error", err)
			if details := app.Systemd.FailureDetails(ctx, name); details != "" {
				fmt.Println(details)
			}
			failed++
			continue
		}
		restarted = append(restarted, name)
	}
	return restarted, failed
}

// displayResult prints the sync outcome in text form.
func (c *UnitSyncCommand) displayResult(machineName string, result unitSyncResult) {
	fmt.Printf("Synced %d units onto %s\n", len(result.Units), machineName)
	for _, u := range result.Units {
		line := fmt.Sprintf("✓ %s (app %s", u.Filename, u.Name)
		if u.Port != "" {
			line += ", port " + u.Port
		}
		if u.TimerFilename != "" {
			line += ", timer " + u.TimerFilename
		}
		fmt.Println(line + ")")
	}
	for _, f := range result.Failures {
		fmt.Printf("✗ %s: %s (%s)\n", f.Filename, f.Error, f.Code)
	}
	for _, name := range result.Restarted {
		fmt.Printf("Restarted %s\n", name)
	}
}
