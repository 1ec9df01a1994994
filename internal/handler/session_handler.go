package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/vtu_api/internal/models"
	"github.com/GTDGit/vtu_api/internal/service"
	"github.com/GTDGit/vtu_api/internal/sse"
	"github.com/GTDGit/vtu_api/internal/utils"
)

const ssePingInterval = 30 * time.Second

// SessionHandler manages form sessions and their submission.
type SessionHandler struct {
	orderService *service.OrderService
	hub          *sse.Hub
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(orderService *service.OrderService, hub *sse.Hub) *SessionHandler {
	return &SessionHandler{orderService: orderService, hub: hub}
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req models.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "MISSING_FIELD", "Invalid request body")
		return
	}

	sess, err := h.orderService.CreateSession(c.Request.Context(), req)
	if err != nil {
		handleError(c, err, nil)
		return
	}
	utils.Success(c, 201, "Session created", sess)
}

// Get handles GET /v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	sess, err := h.orderService.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err, nil)
		return
	}
	utils.Success(c, 200, "Session retrieved successfully", sess)
}

// Update handles PATCH /v1/sessions/:id
func (h *SessionHandler) Update(c *gin.Context) {
	var patch service.SessionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.Error(c, 400, "MISSING_FIELD", "Invalid request body")
		return
	}

	sess, err := h.orderService.UpdateSession(c.Request.Context(), c.Param("id"), &patch)
	if err != nil {
		handleError(c, err, nil)
		return
	}
	utils.Success(c, 200, "Session updated", sess)
}

// Submit handles POST /v1/sessions/:id/submit
func (h *SessionHandler) Submit(c *gin.Context) {
	var p credentialsPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		utils.Error(c, 400, "MISSING_FIELD", "Invalid request body")
		return
	}

	sess, err := h.orderService.Submit(c.Request.Context(), c.Param("id"), p.credentials())
	if err != nil {
		handleError(c, err, sess)
		return
	}
	utils.Success(c, 200, sess.Message, sess)
}

// Orders handles GET /v1/sessions/:id/orders
func (h *SessionHandler) Orders(c *gin.Context) {
	orders, err := h.orderService.SessionOrders(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err, nil)
		return
	}
	utils.Success(c, 200, "Orders retrieved successfully", gin.H{
		"orders": orders,
	})
}

// Events handles GET /v1/sessions/:id/events
// The stream opens with the current session state, then relays status changes.
func (h *SessionHandler) Events(c *gin.Context) {
	sess, err := h.orderService.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err, nil)
		return
	}

	clientID := uuid.New().String()

	// SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering

	client := h.hub.Register(clientID, sess.ID)
	defer h.hub.Unregister(clientID)

	c.SSEvent("connected", gin.H{
		"clientId":  clientID,
		"sessionId": sess.ID,
		"status":    sess.Status,
		"timestamp": time.Now().Format(time.RFC3339),
	})
	c.Writer.Flush()

	log.Info().Str("client_id", clientID).Str("session_id", sess.ID).Msg("Session SSE stream started")

	ping := time.NewTicker(ssePingInterval)
	defer ping.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case data, ok := <-client.Events:
			if !ok {
				return false
			}
			c.SSEvent("session", string(data))
			return true
		case <-ping.C:
			c.SSEvent("ping", gin.H{"timestamp": time.Now().Format(time.RFC3339)})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
