package handlers

import (
	"net/http"
	"strconv"

	"github.com/engagekit/crm-backend/internal/models"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentUserID extracts the authenticated user's ID set by the JWT
// middleware. Aborts with 401 when the claim is missing or malformed.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	raw, exists := c.Get("userID")
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.APIResponse{Success: false, Message: "Authentication required"})
		return primitive.NilObjectID, false
	}
	hex, ok := raw.(string)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.APIResponse{Success: false, Message: "Authentication required"})
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.APIResponse{Success: false, Message: "Authentication required"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// pageParams parses page/limit query parameters with defaults
func pageParams(c *gin.Context, defaultLimit int) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}
