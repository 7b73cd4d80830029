package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trly/host-ops/internal/apperr"
	"github.com/trly/host-ops/internal/store"
	"github.com/trly/host-ops/internal/unit"
)

func (s *Server) listMachines(c *gin.Context) {
	machines, err := s.deps.Machines.FindAll()
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"machines": machines, "count": len(machines)})
}

// createMachineRequest is the body for POST /api/v1/machines.
type createMachineRequest struct {
	Name string `json:"name"`
	IP   string `json:"ip"`
}

func (s *Server) createMachine(c *gin.Context) {
	var req createMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, apperr.New(apperr.CodeValidation, "invalid request body").WithCause(err))
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.IP) == "" {
		s.renderError(c, apperr.New(apperr.CodeValidation, "name and ip are required"))
		return
	}

	machine := store.Machine{PublicID: s.newID(), Name: req.Name, IP: req.IP}
	if err := s.deps.Machines.Create(&machine); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, machine)
}

func (s *Server) getMachine(c *gin.Context) {
	machine, err := s.deps.Machines.FindByPublicID(c.Param("publicId"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, machine)
}

func (s *Server) deleteMachine(c *gin.Context) {
	publicID := c.Param("publicId")
	if err := s.deps.Machines.DeleteByPublicID(publicID); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "publicId": publicID})
}

// unitFailure reports one unit that did not pass validation during a sync.
type unitFailure struct {
	Filename string      `json:"filename"`
	Code     apperr.Code `json:"code"`
	Error    string      `json:"error"`
}

// syncMachineUnits rebuilds the unit inventory, validates every unit in it,
// and replaces the machine's persisted unit list with the ones that passed.
// Per-unit validation failures are data in the response, not request
// failures; only a broken inventory fails the sync.
func (s *Server) syncMachineUnits(c *gin.Context) {
	machine, err := s.deps.Machines.FindByPublicID(c.Param("publicId"))
	if err != nil {
		s.renderError(c, err)
		return
	}

	inventory, err := s.deps.Inventory.Build(s.deps.ConfigProvider.GetConfig().UnitListPath)
	if err != nil {
		s.renderError(c, err)
		return
	}

	valid := make([]unit.ServiceUnit, 0, len(inventory))
	failures := make([]unitFailure, 0)
	for _, u := range inventory {
		validated, err := s.deps.Validator.Validate(u.Filename)
		if err != nil {
			e := apperr.From(err)
			failures = append(failures, unitFailure{Filename: u.Filename, Code: e.Code, Error: e.Message})
			continue
		}
		validated.TimerFilename = u.TimerFilename
		validated.Port = u.Port
		valid = append(valid, validated)
	}

	if err := s.deps.Machines.ReplaceUnits(machine.PublicID, valid); err != nil {
		s.renderError(c, err)
		return
	}

	s.logger.Info("Machine units synced",
		"machine", machine.Name, "units", len(valid), "failures", len(failures))
	c.JSON(http.StatusOK, gin.H{
		"machine":  machine.PublicID,
		"units":    valid,
		"failures": failures,
	})
}
