package main

import (
	"context"
	"log"
	"os"

	"github.com/engagekit/crm-backend/internal/config"
	mongorepo "github.com/engagekit/crm-backend/internal/repositories/mongodb"
	"github.com/engagekit/crm-backend/internal/utils"
	"github.com/engagekit/crm-backend/pkg/mongodb"
	"github.com/joho/godotenv"
)

// Imports customers or historical orders from a CSV file:
//
//	go run ./cmd/scripts customers ./customers.csv
//	go run ./cmd/scripts orders ./orders.csv
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if len(os.Args) < 3 {
		log.Fatal("Usage: import_csv <customers|orders> <file.csv>")
	}
	kind := os.Args[1]
	csvFilePath := os.Args[2]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	client, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDB.Database)

	customerRepo := mongorepo.NewCustomerRepository(db)
	orderRepo := mongorepo.NewOrderRepository(db)
	importer := utils.NewCSVImporter(customerRepo, orderRepo)

	ctx := context.Background()
	var result *utils.ImportResult
	switch kind {
	case "customers":
		result, err = importer.ImportCustomers(ctx, csvFilePath)
	case "orders":
		result, err = importer.ImportOrders(ctx, csvFilePath)
	default:
		log.Fatalf("Unknown import kind %q, expected customers or orders", kind)
	}
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("Import complete: %d processed, %d created, %d skipped", result.Processed, result.Created, result.Skipped)
	for _, msg := range result.Errors {
		log.Printf("  %s", msg)
	}
}
