package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studytrack/studytrack-api/internal/service"
)

// MetricsHandler serves liveness and Prometheus scrape endpoints.
type MetricsHandler struct {
	prometheus gin.HandlerFunc
}

// NewMetricsHandler wires the Prometheus registry handler into gin.
func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{prometheus: gin.WrapH(metrics.Handler())}
}

// Prometheus serves the scrape endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	h.prometheus(c)
}

// Health reports process liveness.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
