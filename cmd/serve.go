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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/trly/host-ops/internal/log"
	"github.com/trly/host-ops/internal/scan"
	"github.com/trly/host-ops/internal/server"
)

// watchdogInterval is how often the serve loop pets the systemd watchdog.
const watchdogInterval = 30 * time.Second

// ServeOptions holds serve command options.
type ServeOptions struct {
	ListenAddr   string
	Watch        bool
	SyncInterval time.Duration
}

// ServeDeps holds serve dependencies.
type ServeDeps struct {
	CommonDeps
	Notify     NotifyFunc
	RunServer  func(ctx context.Context) error
	NewWatcher func(dir string, debounce time.Duration, logger log.Logger, trigger func(context.Context)) (*scan.Watcher, error)
}

// ServeCommand represents the serve command for the host-ops CLI.
type ServeCommand struct{}

// NewServeCommand creates a new ServeCommand.
func NewServeCommand() *ServeCommand {
	return &ServeCommand{}
}

// getApp retrieves the App from the command context.
func (c *ServeCommand) getApp(cmd *cobra.Command) *App {
	return cmd.Context().Value(appContextKey).(*App)
}

// GetCobraCommand returns the cobra command for serve operations.
func (c *ServeCommand) GetCobraCommand() *cobra.Command {
	var opts ServeOptions

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the host-ops API server with periodic site reconciliation",
		Long: `Run the host-ops API server with periodic site reconciliation.

The server exposes the site, machine, and unit operations over HTTP and keeps
the site database reconciled with the nginx sites directory: a scan runs at
the configured interval, and with --watch an additional scan is triggered
whenever files in the sites directory change.

The server integrates with systemd, sending readiness and watchdog
notifications when running under systemd supervision.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := c.getApp(cmd)
			deps := c.buildDeps(app)
			return c.Run(cmd.Context(), app, opts, deps)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd.Flags().StringVarP(&opts.ListenAddr, "listen", "l", "", "Address to listen on (overrides configuration)")
	serveCmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Also trigger scans on sites directory changes")
	serveCmd.Flags().DurationVarP(&opts.SyncInterval, "sync-interval", "i", 0, "Interval between reconciliation scans (overrides configuration)")

	return serveCmd
}

// buildDeps creates production dependencies for the serve command.
func (c *ServeCommand) buildDeps(app *App) ServeDeps {
	return ServeDeps{
		CommonDeps: NewRootDeps(app),
		Notify:     daemon.SdNotify,
		RunServer: func(ctx context.Context) error {
			gin.SetMode(gin.ReleaseMode)
			return server.New(app.ServerDeps()).Run(ctx)
		},
		NewWatcher: scan.NewWatcher,
	}
}

// Run executes the serve command with injected dependencies.
func (c *ServeCommand) Run(ctx context.Context, app *App, opts ServeOptions, deps ServeDeps) error {
	cfg := app.Config
	if opts.ListenAddr != "" {
		cfg.ListenAddr = opts.ListenAddr
	}
	if opts.SyncInterval > 0 {
		cfg.SyncInterval = opts.SyncInterval
	}
	if opts.Watch {
		cfg.WatchSites = true
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runScan := func(ctx context.Context) {
		result, err := app.Scanner.Run(ctx)
		if err != nil {
			app.Logger.Warn("Background scan failed", "error", err)
			return
		}
		notifyScanReport(ctx, app, result)
	}

	if cfg.WatchSites {
		watcher, err := deps.NewWatcher(cfg.SitesDir, 0, app.Logger, runScan)
		if err != nil {
			return err
		}
		go watcher.Run(ctx)
	}

	go c.reconcileLoop(ctx, app, deps, runScan)

	app.Logger.Info("Starting server", "addr", cfg.ListenAddr, "syncInterval", cfg.SyncInterval)
	if sent, err := deps.Notify(false, daemon.SdNotifyReady); err != nil {
		app.Logger.Warn("Failed to notify systemd of readiness", "error", err)
	} else if sent {
		app.Logger.Info("Notified systemd that server is ready")
	}
	defer func() {
		_, _ = deps.Notify(false, daemon.SdNotifyStopping)
	}()

	return deps.RunServer(ctx)
}

// reconcileLoop runs the scheduled scan and watchdog tickers until the
// context is cancelled.
func (c *ServeCommand) reconcileLoop(ctx context.Context, app *App, deps ServeDeps, runScan func(context.Context)) {
	interval := app.Config.SyncInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	syncTicker := deps.Clock.Ticker(interval)
	defer syncTicker.Stop()

	watchdogTicker := deps.Clock.Ticker(watchdogInterval)
	defer watchdogTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-syncTicker.C:
			app.Logger.Debug("Starting scheduled scan")
			runScan(ctx)
		case <-watchdogTicker.C:
			if sent, err := deps.Notify(false, daemon.SdNotifyWatchdog); err != nil {
				app.Logger.Debug("Failed to send watchdog notification", "error", err)
			} else if sent {
				app.Logger.Debug("Sent watchdog notification to systemd")
			}
		}
	}
}

