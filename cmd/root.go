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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/trly/host-ops/internal/config"
	"github.com/trly/host-ops/internal/log"
	"github.com/trly/host-ops/internal/store"
)

// RootCommand represents the root command for the host-ops CLI.
type RootCommand struct{}

// NewRootCommand creates a new RootCommand.
func NewRootCommand() *RootCommand {
	return &RootCommand{}
}

// Execute builds the root command and runs it with a background context.
func Execute() error {
	return NewRootCommand().GetCobraCommand().ExecuteContext(context.Background())
}

// rootOptions holds the persistent flag values shared by all subcommands.
type rootOptions struct {
	userMode       bool
	verbose        bool
	configFilePath string
	dbPath         string
	sitesDir       string
	unitDir        string
	output         string
}

// GetCobraCommand returns the cobra root command for the host-ops CLI.
func (c *RootCommand) GetCobraCommand() *cobra.Command {
	var opts rootOptions

	rootCmd := &cobra.Command{
		Use:   "host-ops",
		Short: "Host-ops discovers nginx vhosts and systemd app units and applies validated configuration updates.",
		Long: `Host-ops discovers nginx vhost configurations and systemd application units
on the local host, records them in a site database, and applies configuration
updates transactionally so a failed validation never leaves a broken file in
place.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configProvider := config.NewDefaultConfigProvider()
			if opts.configFilePath != "" {
				configProvider.SetConfigFilePath(opts.configFilePath)
			}
			cfg := configProvider.InitConfig()

			log.Init(opts.verbose)
			logger := log.NewLogger(opts.verbose)
			if cmd.Name() == "serve" {
				// server logs go to journald or a shipper, not a terminal
				logger = log.NewJSONLogger(opts.verbose)
			}

			if opts.verbose {
				cfg.Verbose = true
				fmt.Printf("%s using config: %s\n\n", cmd.Root().Use, viper.GetViper().ConfigFileUsed())
			}

			if opts.userMode {
				cfg.UserMode = true
				cfg.ApplyUserMode()
			}
			if opts.sitesDir != "" {
				cfg.SitesDir = opts.sitesDir
			}
			if opts.unitDir != "" {
				cfg.UnitDir = opts.unitDir
			}
			if opts.dbPath != "" {
				cfg.DBPath = opts.dbPath
			}

			db, err := store.Connect(configProvider, logger)
			if err != nil {
				logger.Error("Failed to open database", "error", err)
				return err
			}
			if err := store.Up(configProvider, logger); err != nil {
				logger.Error("Failed to run database migrations", "error", err)
				return err
			}

			app := NewApp(logger, configProvider, db)
			app.OutputFormat = opts.output

			if err := app.Validator.SystemRequirements(cmd.Context()); err != nil {
				logger.Error("System requirements not met", "error", err)
			}

			cmd.SetContext(context.WithValue(cmd.Context(), appContextKey, app))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.userMode, "user", "u", false, "Run in user mode")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&opts.configFilePath, "config", "", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db-path", "", "Path to the database file")
	rootCmd.PersistentFlags().StringVar(&opts.sitesDir, "sites-dir", "", "Path to the nginx sites directory")
	rootCmd.PersistentFlags().StringVar(&opts.unitDir, "unit-dir", "", "Path to the systemd unit directory")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "Output format (text, json, yaml)")

	rootCmd.AddCommand(
		NewServeCommand().GetCobraCommand(),
		NewScanCommand().GetCobraCommand(),
		NewSiteCommand().GetCobraCommand(),
		NewUnitCommand().GetCobraCommand(),
		NewConfigCommand().GetCobraCommand(),
		NewDoctorCommand().GetCobraCommand(),
		NewVersionCommand().GetCobraCommand(),
		NewUpdateCommand().GetCobraCommand(),
	)

	return rootCmd
}
