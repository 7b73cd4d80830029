// Package nginx parses vhost configuration files, renders new ones from the
// site template, and applies changes to live files through a backed-up,
// validated transaction.
package nginx

import (
	"strings"

	"github.com/trly/host-ops/internal/extract"
)

// Framework classifications. The classification is a best-effort heuristic
// signal only: every site defaults to express, and the Next.js static-asset
// location block is the one marker that flips it. Do not lean on this for
// anything beyond display and reporting.
const (
	FrameworkExpress = "express"
	FrameworkNextJS  = "nextjs"
)

// nextAssetMarker is the location block Next.js deployments declare for
// hashed static assets.
const nextAssetMarker = "location /_next/"

// ParsedSite is the result of parsing one vhost configuration file.
type ParsedSite struct {
	ServerNames []string `json:"serverNames"`
	ListenPort  string   `json:"listenPort,omitempty"`
	UpstreamIP  string   `json:"upstreamIp,omitempty"`
	Framework   string   `json:"framework"`
}

// Primary returns the first server name, the identity a site is persisted
// and de-duplicated under.
func (p ParsedSite) Primary() string {
	if len(p.ServerNames) == 0 {
		return ""
	}
	return p.ServerNames[0]
}

// Parse extracts the server names, the first proxy target, and the framework
// classification from vhost configuration content. It is a pure function and
// never fails: missing directives leave the matching fields zero.
func Parse(content string) ParsedSite {
	site := ParsedSite{
		ServerNames: extract.DirectiveTokens(content, "server_name", ';'),
		Framework:   FrameworkExpress,
	}

	if ip, port, ok := extract.ProxyTarget(content); ok {
		site.UpstreamIP = ip
		site.ListenPort = port
	}

	if strings.Contains(content, nextAssetMarker) {
		site.Framework = FrameworkNextJS
	}

	return site
}
