package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trly/host-ops/internal/apperr"
	"github.com/trly/host-ops/internal/unit"
)

// validateUnitRequest is the body for POST /api/v1/units/validate.
type validateUnitRequest struct {
	Filename string `json:"filename"`
}

func (s *Server) validateUnit(c *gin.Context) {
	var req validateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, apperr.New(apperr.CodeValidation, "invalid request body").WithCause(err))
		return
	}

	validated, err := s.deps.Validator.Validate(req.Filename)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, validated)
}

// buildInventory runs the inventory build against the configured unit list
// without persisting anything.
func (s *Server) buildInventory(c *gin.Context) {
	units, err := s.deps.Inventory.Build(s.deps.ConfigProvider.GetConfig().UnitListPath)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"units": units, "count": len(units)})
}

// installUnitRequest is the body for POST /api/v1/units.
type installUnitRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	WorkingDirectory string `json:"workingDirectory"`
	ExecStart        string `json:"execStart"`
	Port             string `json:"port"`
	User             string `json:"user"`
	OnCalendar       string `json:"onCalendar"`
}

// installUnit renders and installs the unit pair for an application, then
// reloads the systemd configuration when anything was written.
func (s *Server) installUnit(c *gin.Context) {
	var req installUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, apperr.New(apperr.CodeValidation, "invalid request body").WithCause(err))
		return
	}

	written, err := s.deps.Writer.Install(unit.AppUnit{
		Name:             req.Name,
		Description:      req.Description,
		WorkingDirectory: req.WorkingDirectory,
		ExecStart:        req.ExecStart,
		Port:             req.Port,
		User:             req.User,
		OnCalendar:       req.OnCalendar,
	})
	if err != nil {
		s.renderError(c, err)
		return
	}

	resp := gin.H{"written": written}
	if len(written) > 0 {
		if err := s.deps.Systemd.DaemonReload(c.Request.Context()); err != nil {
			s.logger.Warn("Daemon reload failed after unit install", "error", err)
			resp["daemonReloaded"] = false
		} else {
			resp["daemonReloaded"] = true
		}
	}
	c.JSON(http.StatusCreated, resp)
}
