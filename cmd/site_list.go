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

// Package cmd provides site command functionality for the host-ops CLI
package cmd

import (
	"context"
	"fmt"

	"github.com/SerhiiCho/timeago/v3"
	"github.com/fatih/color"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
)

// SiteListOptions holds site list command options.
type SiteListOptions struct {
	Framework string
}

// SiteListDeps holds site list dependencies.
type SiteListDeps struct {
	CommonDeps
}

// SiteListCommand represents the site list command.
type SiteListCommand struct{}

// NewSiteListCommand creates a new SiteListCommand.
func NewSiteListCommand() *SiteListCommand {
	return &SiteListCommand{}
}

// getApp retrieves the App from the command context.
func (c *SiteListCommand) getApp(cmd *cobra.Command) *App {
	return cmd.Context().Value(appContextKey).(*App)
}

// GetCobraCommand returns the cobra command for listing sites.
func (c *SiteListCommand) GetCobraCommand() *cobra.Command {
	var opts SiteListOptions

	siteListCmd := &cobra.Command{
		Use:   "list",
		Short: "List sites recorded in the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := c.getApp(cmd)
			deps := c.buildDeps(app)
			return c.Run(cmd.Context(), app, opts, deps)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	siteListCmd.Flags().StringVarP(&opts.Framework, "framework", "f", "", "Only show sites detected as this framework")

	return siteListCmd
}

// buildDeps creates production dependencies for the site list command.
func (c *SiteListCommand) buildDeps(app *App) SiteListDeps {
	return SiteListDeps{
		CommonDeps: NewRootDeps(app),
	}
}

// Run executes the site list command with injected dependencies.
func (c *SiteListCommand) Run(_ context.Context, app *App, opts SiteListOptions, deps SiteListDeps) error {
	sites, err := app.Sites.FindAll()
	if err != nil {
		return fmt.Errorf("error finding sites: %w", err)
	}

	if opts.Framework != "" {
		filtered := sites[:0]
		for _, site := range sites {
			if site.Framework == opts.Framework {
				filtered = append(filtered, site)
			}
		}
		sites = filtered
	}

	if app.OutputFormat != "text" {
		return PrintOutput(app.OutputFormat, sites)
	}

	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()
	tbl := table.New("ID", "Server Name", "Framework", "Port", "Upstream", "Updated")
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)

	for _, site := range sites {
		updatedAtString, err := timeago.Parse(site.UpdatedAt)
		if err != nil {
			deps.Logger.Debug("Error parsing updated at time", "error", err)
			updatedAtString = "UNKNOWN"
		}
		tbl.AddRow(site.PublicID, site.ServerName, site.Framework, site.ListenPort, site.UpstreamIP, updatedAtString)
	}
	tbl.Print()
	return nil
}
