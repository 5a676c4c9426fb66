package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/engagekit/crm-backend/api/routes"
	"github.com/engagekit/crm-backend/internal/config"
	"github.com/engagekit/crm-backend/internal/handlers"
	"github.com/engagekit/crm-backend/internal/repositories"
	mongorepo "github.com/engagekit/crm-backend/internal/repositories/mongodb"
	"github.com/engagekit/crm-backend/internal/services"
	"github.com/engagekit/crm-backend/pkg/cohere"
	"github.com/engagekit/crm-backend/pkg/delivery"
	"github.com/engagekit/crm-backend/pkg/mongodb"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set variables directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	// Repositories
	var userRepo repositories.UserRepository = mongorepo.NewUserRepository(db)
	var customerRepo repositories.CustomerRepository = mongorepo.NewCustomerRepository(db)
	var orderRepo repositories.OrderRepository = mongorepo.NewOrderRepository(db)
	var segmentRepo repositories.SegmentRepository = mongorepo.NewSegmentRepository(db)
	var campaignRepo repositories.CampaignRepository = mongorepo.NewCampaignRepository(db)
	var logRepo repositories.CommunicationLogRepository = mongorepo.NewCommunicationLogRepository(db)

	// External collaborators
	gateway := &delivery.SimulatedGateway{SuccessRate: cfg.Delivery.SuccessRate}
	cohereClient := cohere.NewClient(cfg.Cohere.BaseURL, cfg.Cohere.APIKey, cfg.Cohere.MockAPI)

	// Services
	authService := services.NewAuthService(userRepo, cfg)
	customerService := services.NewCustomerService(customerRepo)
	orderService := services.NewOrderService(orderRepo, customerRepo)
	segmentService := services.NewSegmentService(segmentRepo, customerRepo)
	campaignService := services.NewCampaignService(campaignRepo, segmentRepo, customerRepo, logRepo, gateway, cfg.Delivery.BatchSize)
	aiService := services.NewAIService(cohereClient)

	// Campaigns stuck in processing from a previous run can never
	// finish; mark them failed before accepting new work.
	if err := campaignService.RecoverStuckCampaigns(context.Background()); err != nil {
		log.Printf("Failed to recover stuck campaigns: %v", err)
	}

	handlerDeps := routes.HandlerDependencies{
		AuthHandler:     handlers.NewAuthHandler(authService),
		CustomerHandler: handlers.NewCustomerHandler(customerService),
		OrderHandler:    handlers.NewOrderHandler(orderService),
		SegmentHandler:  handlers.NewSegmentHandler(segmentService),
		CampaignHandler: handlers.NewCampaignHandler(campaignService),
		AIHandler:       handlers.NewAIHandler(aiService),
	}

	router := routes.SetupRouter(cfg, handlerDeps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
