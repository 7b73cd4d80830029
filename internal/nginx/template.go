package nginx

import (
	_ "embed"
	"os"
	"strings"

	"github.com/trly/host-ops/internal/apperr"
	"github.com/trly/host-ops/internal/config"
)

//go:embed templates/site.conf
var defaultSiteTemplate string

// Placeholders substituted into the site template. Substitution is literal
// string replacement, not a template language: no conditionals, no loops, no
// escaping.
const (
	PlaceholderServerName = "{{SERVER_NAME}}"
	PlaceholderUpstream   = "{{UPSTREAM}}"
	PlaceholderListenPort = "{{LISTEN_PORT}}"
)

// SiteVars carries the values substituted into the site template.
type SiteVars struct {
	ServerName string
	Upstream   string
	ListenPort string
}

func (v SiteVars) validate() error {
	if strings.TrimSpace(v.ServerName) == "" {
		return apperr.New(apperr.CodeValidation, "server name is required")
	}
	if strings.TrimSpace(v.Upstream) == "" {
		return apperr.New(apperr.CodeValidation, "upstream address is required")
	}
	port := strings.TrimSpace(v.ListenPort)
	if port == "" {
		return apperr.New(apperr.CodeValidation, "listen port is required")
	}
	for _, r := range port {
		if r < '0' || r > '9' {
			return apperr.New(apperr.CodeValidation, "listen port must be numeric")
		}
	}
	return nil
}

// Renderer produces vhost configuration content from the embedded default
// template or the configured override file.
type Renderer struct {
	configProvider config.Provider
}

// NewRenderer creates a Renderer using the provided configuration.
func NewRenderer(configProvider config.Provider) *Renderer {
	return &Renderer{configProvider: configProvider}
}

// RenderSite substitutes vars into the site template.
func (r *Renderer) RenderSite(vars SiteVars) (string, error) {
	if err := vars.validate(); err != nil {
		return "", err
	}

	template := defaultSiteTemplate
	if override := r.configProvider.GetConfig().SiteTemplatePath; override != "" {
		content, err := os.ReadFile(override) //nolint:gosec // Path comes from configuration, not request input
		if err != nil {
			return "", apperr.FromFS(err, "site template "+override,
				apperr.CodeConfigFileNotFound, apperr.CodeConfigFileDenied)
		}
		template = string(content)
	}

	replacer := strings.NewReplacer(
		PlaceholderServerName, vars.ServerName,
		PlaceholderUpstream, vars.Upstream,
		PlaceholderListenPort, vars.ListenPort,
	)
	return replacer.Replace(template), nil
}
