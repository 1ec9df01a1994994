package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/vtu_api/internal/catalog"
	"github.com/GTDGit/vtu_api/internal/sse"
	"github.com/GTDGit/vtu_api/internal/utils"
)

var startTime = time.Now()

// Pinger is a dependency the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler provides health endpoint.
type HealthHandler struct {
	catalog *catalog.Store
	hub     *sse.Hub
	deps    map[string]Pinger
}

// NewHealthHandler creates a new HealthHandler. deps are optional named
// backends (database, redis); a failing one reports the service as degraded.
func NewHealthHandler(store *catalog.Store, hub *sse.Hub, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{catalog: store, hub: hub, deps: deps}
}

// GetHealth responds with service and backend status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	backends := gin.H{}
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			backends[name] = "disconnected"
			status = "degraded"
			continue
		}
		backends[name] = "connected"
	}

	source := h.catalog.Path()
	if source == "" {
		source = "embedded"
	}

	data := gin.H{
		"status":   status,
		"version":  "1.0.0",
		"uptime":   int(time.Since(startTime).Seconds()),
		"backends": backends,
		"catalog": gin.H{
			"source":   source,
			"services": len(h.catalog.Current().Services),
		},
		"sseClients": h.hub.ClientCount(),
	}
	if status != "healthy" {
		utils.ErrorWithData(c, 503, "SERVICE_DEGRADED", "Service is degraded", data)
		return
	}
	utils.Success(c, 200, "Service is healthy", data)
}
