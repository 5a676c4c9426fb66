package handlers

import (
	"net/http"

	"github.com/engagekit/crm-backend/internal/models"
	"github.com/engagekit/crm-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// AIHandler handles AI content-generation HTTP requests
type AIHandler struct {
	aiService *services.AIService
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(aiService *services.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

// GenerateCampaignContent handles POST /ai/campaign-content
func (h *AIHandler) GenerateCampaignContent(c *gin.Context) {
	var req struct {
		SegmentRules models.RuleSet `json:"segment_rules"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: err.Error()})
		return
	}
	if len(req.SegmentRules.Rules) == 0 {
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: "Segment rules are required"})
		return
	}

	text, err := h.aiService.GenerateCampaignContent(c.Request.Context(), req.SegmentRules)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.APIResponse{Success: false, Message: "AI content generation failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: text, Message: "Content generated successfully"})
}

// GenerateCustomerInsights handles POST /ai/customer-insights
func (h *AIHandler) GenerateCustomerInsights(c *gin.Context) {
	var req struct {
		CustomerData []*models.Customer `json:"customer_data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: err.Error()})
		return
	}
	if len(req.CustomerData) == 0 {
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: "Customer data array is required"})
		return
	}

	text, err := h.aiService.GenerateCustomerInsights(c.Request.Context(), req.CustomerData)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.APIResponse{Success: false, Message: "AI insights generation failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: text, Message: "Insights generated successfully"})
}
