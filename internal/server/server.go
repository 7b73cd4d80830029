// Package server exposes the host-ops operations over a JSON HTTP API. The
// server only routes; every collaborator is constructed by the caller and
// injected through Deps.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trly/host-ops/internal/apperr"
	"github.com/trly/host-ops/internal/config"
	"github.com/trly/host-ops/internal/history"
	"github.com/trly/host-ops/internal/log"
	"github.com/trly/host-ops/internal/mailer"
	"github.com/trly/host-ops/internal/nginx"
	"github.com/trly/host-ops/internal/registrar"
	"github.com/trly/host-ops/internal/scan"
	"github.com/trly/host-ops/internal/store"
	"github.com/trly/host-ops/internal/systemd"
	"github.com/trly/host-ops/internal/unit"
)

// shutdownTimeout bounds the drain of in-flight requests on shutdown.
const shutdownTimeout = 10 * time.Second

// Deps carries the collaborators the API exposes.
type Deps struct {
	ConfigProvider config.Provider
	Logger         log.Logger
	Sites          store.SiteRepository
	Machines       store.MachineRepository
	Scanner        *scan.Scanner
	Updater        *nginx.Updater
	Renderer       *nginx.Renderer
	Validator      *unit.Validator
	Inventory      *unit.InventoryBuilder
	Writer         *unit.Writer
	Systemd        systemd.Manager
	History        *history.Recorder
	Registrar      registrar.Registrar
	Mailer         mailer.Mailer
}

// Server is the host-ops HTTP API.
type Server struct {
	deps   Deps
	logger log.Logger

	newID func() string
}

// New creates a Server over deps.
func New(deps Deps) *Server {
	return &Server{
		deps:   deps,
		logger: deps.Logger,
		newID:  uuid.NewString,
	}
}

// Router builds the gin engine with middleware and every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(s.recovery(), s.requestLogger())

	router.GET("/healthz", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		sites := v1.Group("/sites")
		{
			sites.GET("", s.listSites)
			sites.POST("", s.createSite)
			sites.POST("/scan", s.scanSites)
			sites.GET("/:publicId", s.getSite)
			sites.DELETE("/:publicId", s.deleteSite)
			sites.PUT("/:publicId/config", s.updateSiteConfig)
		}

		machines := v1.Group("/machines")
		{
			machines.GET("", s.listMachines)
			machines.POST("", s.createMachine)
			machines.GET("/:publicId", s.getMachine)
			machines.DELETE("/:publicId", s.deleteMachine)
			machines.POST("/:publicId/units/sync", s.syncMachineUnits)
		}

		units := v1.Group("/units")
		{
			units.POST("", s.installUnit)
			units.POST("/validate", s.validateUnit)
			units.POST("/inventory", s.buildInventory)
		}

		v1.GET("/reports/:name", s.downloadReport)
	}

	return router
}

// Run serves the API until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.deps.ConfigProvider.GetConfig().ListenAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("API server listening", "addr", srv.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("API server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// renderError writes err as the taxonomy envelope. Internal failures are
// logged server-side; production responses drop the details field.
func (s *Server) renderError(c *gin.Context, err error) {
	e := apperr.From(err)
	if e.Code == apperr.CodeInternal {
		s.logger.Error("Request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	}
	if s.deps.ConfigProvider.GetConfig().Production {
		e = e.Redacted()
	}
	c.AbortWithStatusJSON(e.Status, e)
}

// recordHistory mirrors a committed config write into the audit trail.
// History problems are warnings, never request failures.
func (s *Server) recordHistory(path, content, note string) {
	if err := s.deps.History.RecordChange(path, []byte(content), note); err != nil {
		s.logger.Warn("Change history not recorded", "path", path, "error", err)
	}
}

// reloadProxy reloads the front proxy and reports whether it worked. The
// config on disk is already validated at this point, so a reload problem
// does not undo the update.
func (s *Server) reloadProxy(c *gin.Context) bool {
	if err := s.deps.Systemd.ReloadProxy(c.Request.Context()); err != nil {
		s.logger.Warn("Proxy reload failed", "error", err)
		return false
	}
	return true
}
