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

	"github.com/spf13/cobra"
)

// SiteUpdateOptions holds site update command options.
type SiteUpdateOptions struct {
	File   string
	Reload bool
}

// SiteUpdateDeps holds site update dependencies.
type SiteUpdateDeps struct {
	CommonDeps
}

// SiteUpdateCommand represents the site update command.
type SiteUpdateCommand struct{}

// NewSiteUpdateCommand creates a new SiteUpdateCommand.
func NewSiteUpdateCommand() *SiteUpdateCommand {
	return &SiteUpdateCommand{}
}

// getApp retrieves the App from the command context.
func (c *SiteUpdateCommand) getApp(cmd *cobra.Command) *App {
	return cmd.Context().Value(appContextKey).(*App)
}

// GetCobraCommand returns the cobra command for updating a site's config.
func (c *SiteUpdateCommand) GetCobraCommand() *cobra.Command {
	var opts SiteUpdateOptions

	siteUpdateCmd := &cobra.Command{
		Use:   "update [public-id]",
		Short: "Apply new vhost content to a recorded site",
		Long: `Apply new vhost content to a recorded site.

The live config file is backed up, the new content written and validated, and
the change committed only when validation passes. On a validation failure the
backup is restored, so the live file never holds rejected content.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := c.getApp(cmd)
			deps := c.buildDeps(app)
			return c.Run(cmd.Context(), app, args[0], opts, deps)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	siteUpdateCmd.Flags().StringVarP(&opts.File, "file", "f", "", "Path to the file holding the new vhost content")
	siteUpdateCmd.Flags().BoolVarP(&opts.Reload, "reload", "r", false, "Reload the proxy after a committed update")
	_ = siteUpdateCmd.MarkFlagRequired("file")

	return siteUpdateCmd
}

// buildDeps creates production dependencies for the site update command.
func (c *SiteUpdateCommand) buildDeps(app *App) SiteUpdateDeps {
	return SiteUpdateDeps{
		CommonDeps: NewRootDeps(app),
	}
}

// Run executes the site update command with injected dependencies.
func (c *SiteUpdateCommand) Run(ctx context.Context, app *App, publicID string, opts SiteUpdateOptions, deps SiteUpdateDeps) error {
	site, err := app.Sites.FindByPublicID(publicID)
	if err != nil {
		return err
	}

	content, err := deps.FileSystem.ReadFile(opts.File)
	if err != nil {
		return fmt.Errorf("reading %s: %w", opts.File, err)
	}

	result, err := app.Updater.Apply(ctx, site.ConfigPath, string(content))
	if err != nil {
		return err
	}

	if err := app.History.RecordChange(site.ConfigPath, content, "update vhost "+site.ServerName); err != nil {
		deps.Logger.Warn("Failed to record config history", "path", site.ConfigPath, "error", err)
	}
	if err := app.Sites.Touch(site.PublicID); err != nil {
		deps.Logger.Warn("Failed to bump site timestamp", "publicId", site.PublicID, "error", err)
	}

	proxyReloaded := false
	if opts.Reload {
		if err := app.Systemd.ReloadProxy(ctx); err != nil {
			deps.Logger.Warn("Failed to reload proxy", "error", err)
		} else {
			proxyReloaded = true
		}
	}

	if app.OutputFormat != "text" {
		return PrintOutput(app.OutputFormat, OperationResult{
			Success: true,
			Message: fmt.Sprintf("updated vhost %s (%s)", site.ServerName, result.State),
			Items:   []string{site.ConfigPath},
			Details: map[string]string{
				"proxyReloaded": fmt.Sprintf("%t", proxyReloaded),
			},
		})
	}

	fmt.Printf("✓ Updated %s (%s)\n", site.ConfigPath, result.State)
	if opts.Reload {
		if proxyReloaded {
			fmt.Println("Proxy reloaded")
		} else {
			fmt.Println("Proxy reload failed, see log")
		}
	}
	return nil
}
