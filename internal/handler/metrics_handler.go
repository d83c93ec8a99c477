package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maganghub/maganghub-api/internal/service"
)

type sessionCounter interface {
	SessionCount() int
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics  *service.MetricsService
	sessions sessionCounter
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, sessions sessionCounter) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, sessions: sessions}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with an OK payload for readiness/liveness usage, plus the
// count of live notification sessions.
func (h *MetricsHandler) Health(c *gin.Context) {
	payload := gin.H{"status": "ok"}
	if h.sessions != nil {
		payload["websocket_sessions"] = h.sessions.SessionCount()
	}
	c.JSON(http.StatusOK, payload)
}
