package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/board-result-api/internal/notifier"
	"github.com/noah-isme/board-result-api/internal/service"
)

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	db      *sqlx.DB
	redis   *redis.Client
	emitter *notifier.Emitter
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, db *sqlx.DB, redisClient *redis.Client, emitter *notifier.Emitter) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, db: db, redis: redisClient, emitter: emitter}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness usage.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready probes the database, cache and notification transport.
func (h *MetricsHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()
	checks := gin.H{}
	healthy := true

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			checks["database"] = err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}
	if h.emitter != nil {
		if h.emitter.Healthy(ctx) {
			checks["notifications"] = "ok"
		} else {
			// Notifications are fire and forget; a dead transport
			// degrades the service but does not block traffic.
			checks["notifications"] = "unavailable"
		}
	}

	status := http.StatusOK
	payload := gin.H{"status": "ready", "checks": checks}
	if !healthy {
		status = http.StatusServiceUnavailable
		payload["status"] = "degraded"
	}
	c.JSON(status, payload)
}
