// Package cmd provides the command line interface for host-ops
package cmd

import (
	"database/sql"

	"github.com/trly/host-ops/internal/config"
	"github.com/trly/host-ops/internal/execx"
	"github.com/trly/host-ops/internal/history"
	"github.com/trly/host-ops/internal/log"
	"github.com/trly/host-ops/internal/mailer"
	"github.com/trly/host-ops/internal/nginx"
	"github.com/trly/host-ops/internal/registrar"
	"github.com/trly/host-ops/internal/scan"
	"github.com/trly/host-ops/internal/server"
	"github.com/trly/host-ops/internal/store"
	"github.com/trly/host-ops/internal/systemd"
	"github.com/trly/host-ops/internal/unit"
	"github.com/trly/host-ops/internal/validate"
)

// contextKey is a private type for values the CLI stores on the command
// context.
type contextKey string

// appContextKey carries the *App from the root command to subcommands.
const appContextKey contextKey = "app"

// App holds the application dependencies for the command line interface.
type App struct {
	Logger         log.Logger
	Config         *config.Settings
	ConfigProvider config.Provider
	OutputFormat   string
	DB             *sql.DB
	Sites          store.SiteRepository
	Machines       store.MachineRepository
	Scanner        *scan.Scanner
	Updater        *nginx.Updater
	Renderer       *nginx.Renderer
	UnitValidator  *unit.Validator
	Inventory      *unit.InventoryBuilder
	Writer         *unit.Writer
	Systemd        systemd.Manager
	History        *history.Recorder
	Registrar      registrar.Registrar
	Mailer         mailer.Mailer
	Validator      *validate.Validator
}

// NewApp creates a new App with all dependencies initialized over the open
// database handle.
func NewApp(logger log.Logger, configProvider config.Provider, db *sql.DB) *App {
	runner := execx.NewRealRunner()
	sites := store.NewSiteRepository(db)
	machines := store.NewMachineRepository(db)
	factory := systemd.NewConnectionFactory(logger)

	return &App{
		Logger:         logger,
		Config:         configProvider.GetConfig(),
		ConfigProvider: configProvider,
		OutputFormat:   "text",
		DB:             db,
		Sites:          sites,
		Machines:       machines,
		Scanner:        scan.NewScanner(configProvider, logger, sites, machines),
		Updater:        nginx.NewUpdater(configProvider, logger, runner),
		Renderer:       nginx.NewRenderer(configProvider),
		UnitValidator:  unit.NewValidator(configProvider, logger),
		Inventory:      unit.NewInventoryBuilder(configProvider, logger),
		Writer:         unit.NewWriter(configProvider, logger),
		Systemd:        systemd.NewManager(factory, configProvider, logger, runner),
		History:        history.NewRecorder(configProvider, logger),
		Registrar:      registrar.NewLoggingRegistrar(logger),
		Mailer:         mailer.NewLoggingMailer(logger),
		Validator:      validate.NewValidator(configProvider, logger, runner),
	}
}

// ServerDeps maps the application container onto the HTTP server's dependency
// set.
func (a *App) ServerDeps() server.Deps {
	return server.Deps{
		ConfigProvider: a.ConfigProvider,
		Logger:         a.Logger,
		Sites:          a.Sites,
		Machines:       a.Machines,
		Scanner:        a.Scanner,
		Updater:        a.Updater,
		Renderer:       a.Renderer,
		Validator:      a.UnitValidator,
		Inventory:      a.Inventory,
		Writer:         a.Writer,
		Systemd:        a.Systemd,
		History:        a.History,
		Registrar:      a.Registrar,
		Mailer:         a.Mailer,
	}
}
