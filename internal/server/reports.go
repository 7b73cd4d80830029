package server

import (
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/trly/host-ops/internal/apperr"
	"github.com/trly/host-ops/internal/validate"
)

// downloadReport serves one scan report. The requested name resolves against
// the report directory and must stay inside it.
func (s *Server) downloadReport(c *gin.Context) {
	name := c.Param("name")

	path, err := validate.PathWithinBase(name, s.deps.ConfigProvider.GetConfig().ReportDir)
	if err != nil {
		s.renderError(c, apperr.New(apperr.CodeValidation, "invalid report name").WithCause(err))
		return
	}

	if _, err := os.Stat(path); err != nil {
		s.renderError(c, apperr.FromFS(err, "report "+name,
			apperr.CodeConfigFileNotFound, apperr.CodeConfigFileDenied))
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}
