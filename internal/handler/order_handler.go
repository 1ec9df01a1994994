package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/vtu_api/internal/models"
	"github.com/GTDGit/vtu_api/internal/service"
	"github.com/GTDGit/vtu_api/internal/utils"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// OrderHandler exposes stateless validation, quotation and order history.
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Validate handles POST /v1/orders/validate
func (h *OrderHandler) Validate(c *gin.Context) {
	var p orderPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		utils.Error(c, 400, "MISSING_FIELD", "Invalid request body")
		return
	}
	req := p.request()
	defer req.ClearSecrets()

	result := h.orderService.Validate(req)
	if !result.Valid() {
		utils.ErrorWithData(c, 422, "VALIDATION_FAILED", "Please correct the highlighted fields", gin.H{
			"valid":  false,
			"errors": result,
		})
		return
	}
	utils.Success(c, 200, "Order is valid", gin.H{
		"valid":  true,
		"errors": result,
	})
}

// Quote handles POST /v1/orders/quote
func (h *OrderHandler) Quote(c *gin.Context) {
	var req models.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "MISSING_FIELD", "Invalid request body")
		return
	}

	q, err := h.orderService.Quote(&req)
	if err != nil {
		handleError(c, err, nil)
		return
	}
	utils.Success(c, 200, "Quotation ready", q)
}

// History handles GET /v1/orders?service=&limit=
func (h *OrderHandler) History(c *gin.Context) {
	limit := defaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, maxHistoryLimit)
		}
	}

	orders, err := h.orderService.History(c.Request.Context(), models.ServiceType(c.Query("service")), limit)
	if err != nil {
		handleError(c, err, nil)
		return
	}
	utils.Success(c, 200, "Orders retrieved successfully", gin.H{
		"orders": orders,
	})
}
