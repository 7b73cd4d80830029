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

	"github.com/trly/host-ops/internal/unit"
)

// UnitInstallOptions holds unit install command options.
type UnitInstallOptions struct {
	Description      string
	WorkingDirectory string
	ExecStart        string
	Port             string
	User             string
	OnCalendar       string
	Start            bool
}

// UnitInstallDeps holds unit install dependencies.
type UnitInstallDeps struct {
	CommonDeps
}

// UnitInstallCommand represents the unit install command.
type UnitInstallCommand struct{}

// NewUnitInstallCommand creates a new UnitInstallCommand.
func NewUnitInstallCommand() *UnitInstallCommand {
	return &UnitInstallCommand{}
}

// getApp retrieves the App from the command context.
func (c *UnitInstallCommand) getApp(cmd *cobra.Command) *App {
	return cmd.Context().Value(appContextKey).(*App)
}

// GetCobraCommand returns the cobra command for installing units.
func (c *UnitInstallCommand) GetCobraCommand() *cobra.Command {
	var opts UnitInstallOptions

	unitInstallCmd := &cobra.Command{
		Use:   "install [name]",
		Short: "Render and install a service unit for an application",
		Long: `Render and install a service unit for an application.

A service unit is rendered into the unit directory, plus a matching timer
unit when --on-calendar is given. Files identical to what is already on disk
are left untouched; a daemon reload runs only when something was written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := c.getApp(cmd)
			deps := c.buildDeps(app)
			return c.Run(cmd.Context(), app, args[0], opts, deps)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	unitInstallCmd.Flags().StringVarP(&opts.Description, "description", "d", "", "Unit description")
	unitInstallCmd.Flags().StringVarP(&opts.WorkingDirectory, "working-dir", "w", "", "Absolute path to the application directory")
	unitInstallCmd.Flags().StringVarP(&opts.ExecStart, "exec-start", "e", "", "Command the service runs")
	unitInstallCmd.Flags().StringVarP(&opts.Port, "port", "p", "", "Port exposed to the service environment")
	unitInstallCmd.Flags().StringVar(&opts.User, "run-as", "", "User the service runs as")
	unitInstallCmd.Flags().StringVar(&opts.OnCalendar, "on-calendar", "", "Calendar expression for a companion timer unit")
	unitInstallCmd.Flags().BoolVar(&opts.Start, "start", false, "Start the service after installing")
	_ = unitInstallCmd.MarkFlagRequired("working-dir")
	_ = unitInstallCmd.MarkFlagRequired("exec-start")

	return unitInstallCmd
}

// buildDeps creates production dependencies for the unit install command.
func (c *UnitInstallCommand) buildDeps(app *App) UnitInstallDeps {
	return UnitInstallDeps{
		CommonDeps: NewRootDeps(app),
	}
}

// Run executes the unit install command with injected dependencies.
func (c *UnitInstallCommand) Run(ctx context.Context, app *App, name string, opts UnitInstallOptions, deps UnitInstallDeps) error {
	appUnit := unit.AppUnit{
		Name:             name,
		Description:      opts.Description,
		WorkingDirectory: opts.WorkingDirectory,
		ExecStart:        opts.ExecStart,
		Port:             opts.Port,
		User:             opts.User,
		OnCalendar:       opts.OnCalendar,
	}

	written, err := app.Writer.Install(appUnit)
	if err != nil {
		return err
	}

	daemonReloaded := false
	if len(written) > 0 {
		if err := app.Systemd.DaemonReload(ctx); err != nil {
			deps.Logger.Warn("Failed to reload systemd configuration", "error", err)
		} else {
			daemonReloaded = true
		}
	}

	started := false
	if opts.Start {
		service := appUnit.ServiceFilename()
		if err := app.Systemd.Start(ctx, service); err != nil {
			deps.Logger.Error("Failed to start unit", "unit", service, "error", err)
			if details := app.Systemd.FailureDetails(ctx, service); details != "" {
				fmt.Println(details)
			}
			return err
		}
		started = true
	}

	if app.OutputFormat != "text" {
		return PrintOutput(app.OutputFormat, OperationResult{
			Success: true,
			Message: fmt.Sprintf("installed unit %s", name),
			Items:   written,
			Details: map[string]string{
				"daemonReloaded": fmt.Sprintf("%t", daemonReloaded),
				"started":        fmt.Sprintf("%t", started),
			},
		})
	}

	if len(written) == 0 {
		fmt.Println("Unit files already up to date, nothing written")
	} else {
		for _, path := range written {
			fmt.Printf("✓ Wrote %s\n", path)
		}
		if daemonReloaded {
			fmt.Println("Systemd configuration reloaded")
		}
	}
	if started {
		fmt.Printf("Started %s\n", appUnit.ServiceFilename())
	}
	return nil
}
