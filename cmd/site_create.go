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
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/trly/host-ops/internal/apperr"
	"github.com/trly/host-ops/internal/nginx"
	"github.com/trly/host-ops/internal/store"
)

// SiteCreateOptions holds site create command options.
type SiteCreateOptions struct {
	Upstream   string
	ListenPort string
	Machine    string
	Reload     bool
}

// SiteCreateDeps holds site create dependencies.
type SiteCreateDeps struct {
	CommonDeps
	NewID func() string
}

// SiteCreateCommand represents the site create command.
type SiteCreateCommand struct{}

// NewSiteCreateCommand creates a new SiteCreateCommand.
func NewSiteCreateCommand() *SiteCreateCommand {
	return &SiteCreateCommand{}
}

// getApp retrieves the App from the command context.
func (c *SiteCreateCommand) getApp(cmd *cobra.Command) *App {
	return cmd.Context().Value(appContextKey).(*App)
}

// GetCobraCommand returns the cobra command for creating sites.
func (c *SiteCreateCommand) GetCobraCommand() *cobra.Command {
	var opts SiteCreateOptions

	siteCreateCmd := &cobra.Command{
		Use:   "create [server-name]",
		Short: "Render, install, and register a new vhost",
		Long: `Render, install, and register a new vhost.

The vhost content is rendered from the site template, written to the sites
directory, and validated before it is committed. A validation failure removes
the file again and nothing is registered.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := c.getApp(cmd)
			deps := c.buildDeps(app)
			return c.Run(cmd.Context(), app, args[0], opts, deps)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	siteCreateCmd.Flags().StringVarP(&opts.Upstream, "upstream", "U", "", "Upstream address the vhost proxies to")
	siteCreateCmd.Flags().StringVarP(&opts.ListenPort, "port", "p", "", "Port the upstream application listens on")
	siteCreateCmd.Flags().StringVarP(&opts.Machine, "machine", "m", "", "Public id of the machine hosting the upstream")
	siteCreateCmd.Flags().BoolVarP(&opts.Reload, "reload", "r", false, "Reload the proxy after a committed install")
	_ = siteCreateCmd.MarkFlagRequired("upstream")
	_ = siteCreateCmd.MarkFlagRequired("port")

	return siteCreateCmd
}

// buildDeps creates production dependencies for the site create command.
func (c *SiteCreateCommand) buildDeps(app *App) SiteCreateDeps {
	return SiteCreateDeps{
		CommonDeps: NewRootDeps(app),
		NewID:      uuid.NewString,
	}
}

// Run executes the site create command with injected dependencies.
func (c *SiteCreateCommand) Run(ctx context.Context, app *App, serverName string, opts SiteCreateOptions, deps SiteCreateDeps) error {
	content, err := app.Renderer.RenderSite(nginx.SiteVars{
		ServerName: serverName,
		Upstream:   opts.Upstream,
		ListenPort: opts.ListenPort,
	})
	if err != nil {
		return err
	}

	if _, err := app.Sites.FindByServerName(serverName); err == nil {
		return apperr.New(apperr.CodeSiteAlreadyExists, "site already exists: "+serverName)
	} else if !apperr.HasCode(err, apperr.CodeSiteNotFound) {
		return err
	}

	if opts.Machine != "" {
		if _, err := app.Machines.FindByPublicID(opts.Machine); err != nil {
			return err
		}
	}

	path := filepath.Join(app.Config.SitesDir, serverName)
	result, err := app.Updater.Install(ctx, path, content)
	if err != nil {
		return err
	}

	if err := app.History.RecordChange(path, []byte(content), "install vhost "+serverName); err != nil {
		deps.Logger.Warn("Failed to record config history", "path", path, "error", err)
	}

	site := store.Site{
		PublicID:        deps.NewID(),
		ServerName:      serverName,
		Framework:       nginx.Parse(content).Framework,
		ConfigPath:      path,
		ListenPort:      opts.ListenPort,
		UpstreamIP:      opts.Upstream,
		MachinePublicID: opts.Machine,
	}
	if err := app.Sites.Create(&site); err != nil {
		return err
	}

	if err := app.Registrar.EnsureAddressRecord(ctx, serverName, opts.Upstream); err != nil {
		deps.Logger.Warn("Failed to ensure address record", "serverName", serverName, "error", err)
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
			Message: fmt.Sprintf("installed vhost %s (%s)", serverName, result.State),
			Items:   []string{path},
			Details: map[string]string{
				"publicId":      site.PublicID,
				"framework":     site.Framework,
				"proxyReloaded": fmt.Sprintf("%t", proxyReloaded),
			},
		})
	}

	fmt.Printf("✓ Installed %s (%s)\n", path, result.State)
	fmt.Printf("Site registered with id %s (framework %s)\n", site.PublicID, site.Framework)
	if opts.Reload {
		if proxyReloaded {
			fmt.Println("Proxy reloaded")
		} else {
			fmt.Println("Proxy reload failed, see log")
		}
	}
	return nil
}
