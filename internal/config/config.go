// Package config provides configuration management for host-ops
package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

// Provider defines the interface for configuration providers.
type Provider interface {
	// GetConfig returns the current application configuration.
	GetConfig() *Settings
	// SetConfig sets the application configuration.
	SetConfig(c *Settings)
	// InitConfig initializes the application configuration.
	InitConfig() *Settings
	// SetConfigFilePath sets the configuration file path.
	SetConfigFilePath(p string)
}

// defaultConfigProvider implements the Provider interface.
type defaultConfigProvider struct {
	cfg *Settings
}

// NewDefaultConfigProvider creates a new default config provider.
func NewDefaultConfigProvider() Provider {
	return &defaultConfigProvider{}
}

var defaultProvider = NewDefaultConfigProvider()

// Default configuration values for the host-ops system. These constants
// define the default values for the nginx sites directory, the systemd unit
// directory, the report and database locations, the external validation
// command, and the HTTP listen address.
const (
	DefaultSitesDir        = "/etc/nginx/sites-enabled"
	DefaultUnitDir         = "/etc/systemd/system"
	DefaultReportDir       = "/var/lib/host-ops/reports"
	DefaultDBPath          = "/var/lib/host-ops/host-ops.db"
	DefaultHistoryDir      = "/var/lib/host-ops/history"
	DefaultUnitListPath    = "/var/lib/host-ops/units.csv"
	DefaultValidateCommand = "nginx -t"
	DefaultProxyUnit       = "nginx.service"
	DefaultListenAddr      = ":8420"
	DefaultSyncInterval    = 5 * time.Minute
	DefaultAppNameVar      = "NAME_APP"
	DefaultUserUnitDir     = "$HOME/.config/systemd/user"
	DefaultUserDBPath      = "$HOME/.local/share/host-ops/host-ops.db"
	DefaultUserReportDir   = "$HOME/.local/share/host-ops/reports"
	DefaultUserHistoryDir  = "$HOME/.local/share/host-ops/history"
	DefaultUserMode        = false
	DefaultVerbose         = false
	DefaultProduction      = false
	DefaultWatchSites      = false
	DefaultHistoryEnabled  = false
)

// Settings represents the configuration for the host-ops system. It contains
// the paths the discovery and update pipelines operate on, the external
// validation command, the HTTP server settings, and mode flags.
type Settings struct {
	SitesDir         string        `yaml:"sitesDir"`
	UnitDir          string        `yaml:"unitDir"`
	ReportDir        string        `yaml:"reportDir"`
	DBPath           string        `yaml:"dbPath"`
	HistoryDir       string        `yaml:"historyDir"`
	HistoryEnabled   bool          `yaml:"historyEnabled"`
	UnitListPath     string        `yaml:"unitListPath"`
	ValidateCommand  string        `yaml:"validateCommand"`
	ProxyUnit        string        `yaml:"proxyUnit"`
	ListenAddr       string        `yaml:"listenAddr"`
	SyncInterval     time.Duration `yaml:"syncInterval"`
	AppNameVar       string        `yaml:"appNameVar"`
	SiteTemplatePath string        `yaml:"siteTemplatePath"`
	MailTo           string        `yaml:"mailTo"`
	UserMode         bool          `yaml:"userMode"`
	Verbose          bool          `yaml:"verbose"`
	Production       bool          `yaml:"production"`
	WatchSites       bool          `yaml:"watchSites"`
}

// Implementation of Provider methods for defaultConfigProvider

func (p *defaultConfigProvider) SetConfig(c *Settings) {
	p.cfg = c
}

func (p *defaultConfigProvider) GetConfig() *Settings {
	return p.cfg
}

func (p *defaultConfigProvider) SetConfigFilePath(path string) {
	viper.SetConfigFile(path)
}

func (p *defaultConfigProvider) InitConfig() *Settings {
	p.cfg = initConfigInternal()
	return p.cfg
}

// For backward compatibility - pass through to default provider

// SetConfig sets the application configuration.
func SetConfig(c *Settings) {
	defaultProvider.SetConfig(c)
}

// GetConfig returns the current application configuration.
func GetConfig() *Settings {
	return defaultProvider.GetConfig()
}

// SetConfigFilePath sets the configuration file path.
func SetConfigFilePath(p string) {
	defaultProvider.SetConfigFilePath(p)
}

// InitConfig initializes the application configuration.
func InitConfig() *Settings {
	return defaultProvider.InitConfig()
}

// ApplyUserMode rewrites the system paths to their per-user equivalents.
// Explicit overrides applied after this call still win.
func (s *Settings) ApplyUserMode() {
	s.UserMode = true
	s.UnitDir = os.ExpandEnv(DefaultUserUnitDir)
	s.DBPath = os.ExpandEnv(DefaultUserDBPath)
	s.ReportDir = os.ExpandEnv(DefaultUserReportDir)
	s.HistoryDir = os.ExpandEnv(DefaultUserHistoryDir)
}

// Internal function to initialize configuration.
func initConfigInternal() *Settings {
	cfg := &Settings{
		SitesDir:        DefaultSitesDir,
		UnitDir:         DefaultUnitDir,
		ReportDir:       DefaultReportDir,
		DBPath:          DefaultDBPath,
		HistoryDir:      DefaultHistoryDir,
		HistoryEnabled:  DefaultHistoryEnabled,
		UnitListPath:    DefaultUnitListPath,
		ValidateCommand: DefaultValidateCommand,
		ProxyUnit:       DefaultProxyUnit,
		ListenAddr:      DefaultListenAddr,
		SyncInterval:    DefaultSyncInterval,
		AppNameVar:      DefaultAppNameVar,
		UserMode:        DefaultUserMode,
		Verbose:         DefaultVerbose,
		Production:      DefaultProduction,
		WatchSites:      DefaultWatchSites,
	}

	viper.SetDefault("sitesDir", DefaultSitesDir)
	viper.SetDefault("unitDir", DefaultUnitDir)
	viper.SetDefault("reportDir", DefaultReportDir)
	viper.SetDefault("dbPath", DefaultDBPath)
	viper.SetDefault("historyDir", DefaultHistoryDir)
	viper.SetDefault("historyEnabled", DefaultHistoryEnabled)
	viper.SetDefault("unitListPath", DefaultUnitListPath)
	viper.SetDefault("validateCommand", DefaultValidateCommand)
	viper.SetDefault("proxyUnit", DefaultProxyUnit)
	viper.SetDefault("listenAddr", DefaultListenAddr)
	viper.SetDefault("syncInterval", DefaultSyncInterval)
	viper.SetDefault("appNameVar", DefaultAppNameVar)
	viper.SetDefault("userMode", DefaultUserMode)
	viper.SetDefault("verbose", DefaultVerbose)
	viper.SetDefault("production", DefaultProduction)
	viper.SetDefault("watchSites", DefaultWatchSites)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(os.ExpandEnv("$HOME/.config/host-ops"))
	viper.AddConfigPath("/etc/opt/host-ops")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		panic(err)
	}

	return cfg
}
