package routes

import (
	"github.com/engagekit/crm-backend/internal/config"
	"github.com/engagekit/crm-backend/internal/handlers"
	"github.com/engagekit/crm-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// HandlerDependencies carries the handlers the router wires up
type HandlerDependencies struct {
	AuthHandler     *handlers.AuthHandler
	CustomerHandler *handlers.CustomerHandler
	OrderHandler    *handlers.OrderHandler
	SegmentHandler  *handlers.SegmentHandler
	CampaignHandler *handlers.CampaignHandler
	AIHandler       *handlers.AIHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/register", deps.AuthHandler.Register)
			auth.POST("/login", deps.AuthHandler.Login)
		}
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		customers := protected.Group("/customers")
		{
			customers.GET("", deps.CustomerHandler.GetCustomers)
			customers.GET("/:id", deps.CustomerHandler.GetCustomer)
			customers.POST("", deps.CustomerHandler.CreateCustomer)
			customers.PUT("/:id", deps.CustomerHandler.UpdateCustomer)
			customers.DELETE("/:id", deps.CustomerHandler.DeleteCustomer)
		}

		orders := protected.Group("/orders")
		{
			orders.GET("", deps.OrderHandler.GetOrders)
			orders.GET("/:id", deps.OrderHandler.GetOrder)
			orders.POST("", deps.OrderHandler.CreateOrder)
			orders.PUT("/:id", deps.OrderHandler.UpdateOrder)
			orders.DELETE("/:id", deps.OrderHandler.DeleteOrder)
		}

		segments := protected.Group("/segments")
		{
			segments.GET("", deps.SegmentHandler.GetSegments)
			segments.GET("/:id", deps.SegmentHandler.GetSegment)
			segments.POST("", deps.SegmentHandler.CreateSegment)
			segments.POST("/estimate", deps.SegmentHandler.EstimateSegment)
			segments.PUT("/:id/rules", deps.SegmentHandler.UpdateSegmentRules)
		}

		campaigns := protected.Group("/campaigns")
		{
			campaigns.GET("", deps.CampaignHandler.GetCampaigns)
			campaigns.GET("/:id/logs", deps.CampaignHandler.GetCommunicationLogs)
			campaigns.POST("", deps.CampaignHandler.CreateCampaign)
		}

		ai := protected.Group("/ai")
		{
			ai.POST("/campaign-content", deps.AIHandler.GenerateCampaignContent)
			ai.POST("/customer-insights", deps.AIHandler.GenerateCustomerInsights)
		}
	}

	return router
}
