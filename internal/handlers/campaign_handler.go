package handlers

import (
	"errors"
	"net/http"

	"github.com/engagekit/crm-backend/internal/models"
	"github.com/engagekit/crm-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CampaignHandler handles campaign-related HTTP requests
type CampaignHandler struct {
	campaignService *services.CampaignService
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(campaignService *services.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService}
}

// CreateCampaign handles POST /campaigns. The response returns as soon as
// the draft exists; delivery runs detached.
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: err.Error()})
		return
	}

	campaign, err := h.campaignService.CreateCampaign(c.Request.Context(), &req, userID)
	if err != nil {
		var unsupported *services.UnsupportedOperatorError
		switch {
		case errors.Is(err, services.ErrSegmentNotFound):
			c.JSON(http.StatusNotFound, models.APIResponse{Success: false, Message: err.Error()})
		case errors.Is(err, services.ErrZeroMatchSegment),
			errors.Is(err, services.ErrInvalidRuleSet),
			errors.As(err, &unsupported):
			c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, models.APIResponse{Success: false, Message: "Failed to create campaign"})
		}
		return
	}

	c.JSON(http.StatusCreated, models.APIResponse{Success: true, Data: campaign, Message: "Campaign created successfully"})
}

// GetCampaigns handles GET /campaigns
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	page, limit := pageParams(c, 10)

	campaigns, err := h.campaignService.GetCampaignsByCreator(c.Request.Context(), userID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.APIResponse{Success: false, Message: "Failed to fetch campaigns"})
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: campaigns, Message: "Campaigns fetched successfully"})
}

// GetCommunicationLogs handles GET /campaigns/:id/logs
func (h *CampaignHandler) GetCommunicationLogs(c *gin.Context) {
	campaignID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: "Invalid campaign ID"})
		return
	}
	page, limit := pageParams(c, 50)

	logs, total, err := h.campaignService.GetCommunicationLogs(c.Request.Context(), campaignID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.APIResponse{Success: false, Message: "Failed to fetch communication logs"})
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success:    true,
		Data:       logs,
		Pagination: models.NewPagination(page, limit, total),
		Message:    "Communication logs fetched successfully",
	})
}
