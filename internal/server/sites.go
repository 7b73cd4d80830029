package server

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/trly/host-ops/internal/apperr"
	"github.com/trly/host-ops/internal/nginx"
	"github.com/trly/host-ops/internal/scan"
	"github.com/trly/host-ops/internal/store"
)

func (s *Server) listSites(c *gin.Context) {
	sites, err := s.deps.Sites.FindAll()
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sites": sites, "count": len(sites)})
}

func (s *Server) getSite(c *gin.Context) {
	site, err := s.deps.Sites.FindByPublicID(c.Param("publicId"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, site)
}

func (s *Server) deleteSite(c *gin.Context) {
	publicID := c.Param("publicId")

	site, err := s.deps.Sites.FindByPublicID(publicID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if err := s.deps.Sites.DeleteByPublicID(publicID); err != nil {
		s.renderError(c, err)
		return
	}
	// The config file stays on disk; deleting a record must never take a
	// running vhost down with it.
	if err := s.deps.Registrar.RemoveRecord(c.Request.Context(), site.ServerName); err != nil {
		s.logger.Warn("Address record removal failed", "serverName", site.ServerName, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted", "publicId": publicID})
}

func (s *Server) scanSites(c *gin.Context) {
	result, err := s.deps.Scanner.Run(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	s.notifyScan(c, result)
	c.JSON(http.StatusOK, result)
}

// notifyScan mails the scan report when a recipient is configured. Delivery
// problems never fail the scan.
func (s *Server) notifyScan(c *gin.Context, result scan.Result) {
	recipient := s.deps.ConfigProvider.GetConfig().MailTo
	if recipient == "" || result.ReportPath == "" {
		return
	}
	err := s.deps.Mailer.SendScanReport(c.Request.Context(), recipient, result.ReportPath, result.NewCount, result.ErrorCount)
	if err != nil {
		s.logger.Warn("Scan report mail failed", "recipient", recipient, "error", err)
	}
}

// createSiteRequest is the body for POST /api/v1/sites.
type createSiteRequest struct {
	ServerName      string `json:"serverName"`
	Upstream        string `json:"upstream"`
	ListenPort      string `json:"listenPort"`
	MachinePublicID string `json:"machinePublicId"`
	Reload          bool   `json:"reload"`
}

// createSite renders the vhost template for a new site, installs the config
// file through the validated transaction, and registers the site record.
func (s *Server) createSite(c *gin.Context) {
	var req createSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, apperr.New(apperr.CodeValidation, "invalid request body").WithCause(err))
		return
	}

	content, err := s.deps.Renderer.RenderSite(nginx.SiteVars{
		ServerName: req.ServerName,
		Upstream:   req.Upstream,
		ListenPort: req.ListenPort,
	})
	if err != nil {
		s.renderError(c, err)
		return
	}

	if _, err := s.deps.Sites.FindByServerName(req.ServerName); err == nil {
		s.renderError(c, apperr.New(apperr.CodeSiteAlreadyExists, "site already registered: "+req.ServerName))
		return
	} else if !apperr.HasCode(err, apperr.CodeSiteNotFound) {
		s.renderError(c, err)
		return
	}

	if req.MachinePublicID != "" {
		if _, err := s.deps.Machines.FindByPublicID(req.MachinePublicID); err != nil {
			s.renderError(c, err)
			return
		}
	}

	path := filepath.Join(s.deps.ConfigProvider.GetConfig().SitesDir, req.ServerName)
	result, err := s.deps.Updater.Install(c.Request.Context(), path, content)
	if err != nil {
		s.renderError(c, err)
		return
	}
	s.recordHistory(path, content, "install vhost "+req.ServerName)

	site := store.Site{
		PublicID:        s.newID(),
		ServerName:      req.ServerName,
		Framework:       nginx.Parse(content).Framework,
		ConfigPath:      path,
		ListenPort:      req.ListenPort,
		UpstreamIP:      req.Upstream,
		MachinePublicID: req.MachinePublicID,
	}
	if err := s.deps.Sites.Create(&site); err != nil {
		s.logger.Error("Site record insert failed after install", "serverName", req.ServerName, "path", path, "error", err)
		s.renderError(c, err)
		return
	}

	if err := s.deps.Registrar.EnsureAddressRecord(c.Request.Context(), req.ServerName, req.Upstream); err != nil {
		s.logger.Warn("Address record registration failed", "serverName", req.ServerName, "error", err)
	}

	resp := gin.H{"site": site, "state": result.State}
	if result.Warning != "" {
		resp["warning"] = result.Warning
	}
	if req.Reload {
		resp["proxyReloaded"] = s.reloadProxy(c)
	}
	c.JSON(http.StatusCreated, resp)
}

// updateConfigRequest is the body for PUT /api/v1/sites/:publicId/config.
type updateConfigRequest struct {
	Content string `json:"content"`
	Reload  bool   `json:"reload"`
}

// updateSiteConfig replaces the content of a site's live config file through
// the backed-up, validated transaction.
func (s *Server) updateSiteConfig(c *gin.Context) {
	site, err := s.deps.Sites.FindByPublicID(c.Param("publicId"))
	if err != nil {
		s.renderError(c, err)
		return
	}

	var req updateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, apperr.New(apperr.CodeValidation, "invalid request body").WithCause(err))
		return
	}

	result, err := s.deps.Updater.Apply(c.Request.Context(), site.ConfigPath, req.Content)
	if err != nil {
		s.renderError(c, err)
		return
	}
	s.recordHistory(site.ConfigPath, req.Content, "update vhost "+site.ServerName)
	if err := s.deps.Sites.Touch(site.PublicID); err != nil {
		s.logger.Warn("Site record not touched", "publicId", site.PublicID, "error", err)
	}

	resp := gin.H{"state": result.State}
	if result.Warning != "" {
		resp["warning"] = result.Warning
	}
	if req.Reload {
		resp["proxyReloaded"] = s.reloadProxy(c)
	}
	c.JSON(http.StatusOK, resp)
}
