package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/vtu_api/internal/catalog"
	"github.com/GTDGit/vtu_api/internal/engine"
	"github.com/GTDGit/vtu_api/internal/models"
	"github.com/GTDGit/vtu_api/internal/utils"
)

// CatalogHandler serves the read-only product catalog.
type CatalogHandler struct {
	store *catalog.Store
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(store *catalog.Store) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// GetService handles GET /v1/catalog/:service
func (h *CatalogHandler) GetService(c *gin.Context) {
	svc, err := h.store.Current().Service(models.ServiceType(c.Param("service")))
	if err != nil {
		handleError(c, err, nil)
		return
	}
	utils.Success(c, 200, "Catalog retrieved successfully", svc)
}

// GetPlans handles GET /v1/catalog/:service/:provider/:category/plans
func (h *CatalogHandler) GetPlans(c *gin.Context) {
	service := models.ServiceType(c.Param("service"))
	plans, err := h.store.LookupPlans(service, c.Param("provider"), c.Param("category"))
	if err != nil {
		handleError(c, err, nil)
		return
	}

	type planView struct {
		models.Plan
		Display string `json:"display"`
	}
	out := make([]planView, 0, len(plans))
	for _, p := range plans {
		out = append(out, planView{Plan: p, Display: engine.FormatNaira(p.Amount)})
	}
	utils.Success(c, 200, "Plans retrieved successfully", gin.H{
		"plans": out,
	})
}

// GetDurations handles GET /v1/catalog/durations
func (h *CatalogHandler) GetDurations(c *gin.Context) {
	type durationView struct {
		models.Duration
		DiscountPercent int `json:"discountPercent"`
	}
	durations := h.store.Current().Durations
	out := make([]durationView, 0, len(durations))
	for _, d := range durations {
		out = append(out, durationView{Duration: d, DiscountPercent: engine.DefaultDiscounts.Percent(d.Months)})
	}
	utils.Success(c, 200, "Durations retrieved successfully", gin.H{
		"durations": out,
	})
}

// GetBanks handles GET /v1/catalog/banks
func (h *CatalogHandler) GetBanks(c *gin.Context) {
	utils.Success(c, 200, "Banks retrieved successfully", gin.H{
		"banks": h.store.Current().Banks,
	})
}
