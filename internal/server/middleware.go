package server

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trly/host-ops/internal/apperr"
	"github.com/trly/host-ops/internal/metrics"
)

// requestLogger logs one line per request and feeds the HTTP metrics. The
// route label carries the registered pattern rather than the raw path so
// path parameters do not explode the label cardinality.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, fmt.Sprintf("%dxx", status/100)).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())

		s.logger.Info("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", elapsed,
		)
	}
}

// recovery converts handler panics into the internal-error envelope instead
// of a dropped connection.
func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Handler panicked", "route", c.FullPath(), "panic", r)
				s.renderError(c, apperr.New(apperr.CodeInternal, "unexpected internal error"))
			}
		}()
		c.Next()
	}
}
