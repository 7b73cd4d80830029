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
)

// UnitValidateDeps holds unit validate dependencies.
type UnitValidateDeps struct {
	CommonDeps
}

// UnitValidateCommand represents the unit validate command.
type UnitValidateCommand struct{}

// NewUnitValidateCommand creates a new UnitValidateCommand.
func NewUnitValidateCommand() *UnitValidateCommand {
	return &UnitValidateCommand{}
}

// getApp retrieves the App from the command context.
func (c *UnitValidateCommand) getApp(cmd *cobra.Command) *App {
	return cmd.Context().Value(appContextKey).(*App)
}

// GetCobraCommand returns the cobra command for validating a unit.
func (c *UnitValidateCommand) GetCobraCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [filename]",
		Short: "Validate one service unit against its application directory",
		Long: `Validate one service unit against its application directory.

The unit file must exist in the unit directory, declare a WorkingDirectory,
and that directory must hold an env file naming the application.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := c.getApp(cmd)
			deps := c.buildDeps(app)
			return c.Run(cmd.Context(), app, args[0], deps)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// buildDeps creates production dependencies for the unit validate command.
func (c *UnitValidateCommand) buildDeps(app *App) UnitValidateDeps {
	return UnitValidateDeps{
		CommonDeps: NewRootDeps(app),
	}
}

// Run executes the unit validate command with injected dependencies.
func (c *UnitValidateCommand) Run(_ context.Context, app *App, filename string, _ UnitValidateDeps) error {
	validated, err := app.UnitValidator.Validate(filename)
	if err != nil {
		return err
	}

	if app.OutputFormat != "text" {
		return PrintOutput(app.OutputFormat, validated)
	}

	fmt.Printf("✓ %s\n", validated.Filename)
	fmt.Printf("  app: %s\n", validated.Name)
	fmt.Printf("  working directory: %s\n", validated.WorkingDirectory)
	return nil
}
