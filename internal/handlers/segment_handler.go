package handlers

import (
	"errors"
	"net/http"

	"github.com/engagekit/crm-backend/internal/models"
	"github.com/engagekit/crm-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SegmentHandler handles segment-related HTTP requests
type SegmentHandler struct {
	segmentService *services.SegmentService
}

// NewSegmentHandler creates a new SegmentHandler
func NewSegmentHandler(segmentService *services.SegmentService) *SegmentHandler {
	return &SegmentHandler{segmentService: segmentService}
}

// createSegmentRequest is the payload for segment creation
type createSegmentRequest struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Rules       models.RuleSet `json:"rules"`
}

// ruleSetRequest wraps a bare rule set payload
type ruleSetRequest struct {
	Rules models.RuleSet `json:"rules"`
}

// segmentError maps rule engine errors to client responses
func segmentError(c *gin.Context, err error) {
	var unsupported *services.UnsupportedOperatorError
	switch {
	case errors.Is(err, services.ErrInvalidRuleSet):
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: "At least one rule is required"})
	case errors.As(err, &unsupported):
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, models.APIResponse{Success: false, Message: "Segment operation failed"})
	}
}

// CreateSegment handles POST /segments
func (h *SegmentHandler) CreateSegment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req createSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: err.Error()})
		return
	}

	segment := &models.Segment{
		Name:        req.Name,
		Description: req.Description,
		Rules:       req.Rules,
		CreatedBy:   userID,
	}
	if err := h.segmentService.CreateSegment(c.Request.Context(), segment); err != nil {
		segmentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.APIResponse{Success: true, Data: segment, Message: "Segment created successfully"})
}

// EstimateSegment handles POST /segments/estimate
func (h *SegmentHandler) EstimateSegment(c *gin.Context) {
	var req ruleSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: err.Error()})
		return
	}

	count, err := h.segmentService.EstimateSegment(c.Request.Context(), req.Rules)
	if err != nil {
		segmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    gin.H{"count": count},
		Message: "Segment estimated successfully",
	})
}

// GetSegment handles GET /segments/:id
func (h *SegmentHandler) GetSegment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: "Invalid segment ID"})
		return
	}

	segment, err := h.segmentService.GetSegmentByID(c.Request.Context(), id, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.APIResponse{Success: false, Message: "Segment not found"})
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: segment})
}

// GetSegments handles GET /segments
func (h *SegmentHandler) GetSegments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	page, limit := pageParams(c, 10)

	segments, err := h.segmentService.GetSegmentsByCreator(c.Request.Context(), userID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.APIResponse{Success: false, Message: "Failed to fetch segments"})
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: segments})
}

// UpdateSegmentRules handles PUT /segments/:id/rules
func (h *SegmentHandler) UpdateSegmentRules(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: "Invalid segment ID"})
		return
	}

	var req ruleSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: err.Error()})
		return
	}

	segment, err := h.segmentService.UpdateSegmentRules(c.Request.Context(), id, userID, req.Rules)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, models.APIResponse{Success: false, Message: "Segment not found"})
			return
		}
		segmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: segment, Message: "Segment updated successfully"})
}
