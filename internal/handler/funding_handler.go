package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/vtu_api/internal/models"
	"github.com/GTDGit/vtu_api/internal/service"
	"github.com/GTDGit/vtu_api/internal/utils"
)

// FundingHandler serves offline wallet funding instructions.
type FundingHandler struct {
	fundingService *service.FundingService
}

// NewFundingHandler constructs a FundingHandler.
func NewFundingHandler(fundingService *service.FundingService) *FundingHandler {
	return &FundingHandler{fundingService: fundingService}
}

// GetInstructions handles GET /v1/funding/instructions?method=&bank=&amount=
func (h *FundingHandler) GetInstructions(c *gin.Context) {
	method := models.PaymentMethod(c.Query("method"))
	if method == "" {
		utils.Error(c, 400, "MISSING_FIELD", "method is required")
		return
	}

	out, err := h.fundingService.Instructions(method, c.Query("bank"), c.Query("amount"))
	if err != nil {
		handleError(c, err, nil)
		return
	}
	utils.Success(c, 200, "Funding instructions ready", out)
}
