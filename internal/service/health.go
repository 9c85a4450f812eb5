package service

import (
	"context"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-gonic/gin"
	pubmodel "gitlab.com/dirk.krummacker/contacts-api/pkg/model"
)

// readinessTimeout bounds the database ping of a readiness probe.
const readinessTimeout = 2 * time.Second

// liveness answers as long as the process serves HTTP.
func (h *Handler) liveness(c *gin.Context) {
	c.Status(http.StatusOK)
}

// readiness answers OK only if the database can be reached.
//
// Example REST API call:
//
//	> curl http://localhost:5000/readiness
func (h *Handler) readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		h.log.WithError(err).Warn("database not reachable")
		c.JSON(http.StatusServiceUnavailable, pubmodel.Error{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeMetrics exposes the request metrics and the process metrics in the Prometheus text format.
func (h *Handler) writeMetrics(c *gin.Context) {
	c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	c.Status(http.StatusOK)
	h.metrics.WritePrometheus(c.Writer)
	metrics.WriteProcessMetrics(c.Writer)
}
