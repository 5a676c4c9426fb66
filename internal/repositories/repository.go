package repositories

import (
	"context"
	"time"

	"github.com/engagekit/crm-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CustomerRepository defines the interface for customer data operations.
// Find and CountByQuery take the query produced by the segment rule engine;
// the repository performs no schema validation beyond what the query encodes.
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Customer, error)
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	FindAll(ctx context.Context, page, limit int, search, city, gender string) ([]*models.Customer, int64, error)
	Find(ctx context.Context, query bson.M) ([]*models.Customer, error)
	CountByQuery(ctx context.Context, query bson.M) (int64, error)
	Update(ctx context.Context, customer *models.Customer) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	// ApplyOrderStats adjusts the derived purchase stats when an order is
	// created (positive deltas, purchasedAt set) or deleted (negative
	// deltas, purchasedAt nil).
	ApplyOrderStats(ctx context.Context, id primitive.ObjectID, amountDelta float64, countDelta int, purchasedAt *time.Time) error
	Count(ctx context.Context) (int64, error)
}

// SegmentRepository defines the interface for segment data operations
type SegmentRepository interface {
	Create(ctx context.Context, segment *models.Segment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Segment, error)
	FindByIDAndCreator(ctx context.Context, id, createdBy primitive.ObjectID) (*models.Segment, error)
	FindByCreator(ctx context.Context, createdBy primitive.ObjectID, page, limit int) ([]*models.Segment, error)
	Update(ctx context.Context, segment *models.Segment) error
	Count(ctx context.Context) (int64, error)
}

// CampaignRepository defines the interface for campaign data operations
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error)
	FindByCreator(ctx context.Context, createdBy primitive.ObjectID, page, limit int) ([]*models.Campaign, error)
	FindByStatus(ctx context.Context, status string) ([]*models.Campaign, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	// UpdateStatus transitions a campaign without rewriting the whole
	// document; failureReason is recorded in stats when non-empty.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status, failureReason string) error
	Count(ctx context.Context) (int64, error)
}

// CommunicationLogRepository defines the interface for communication log
// data operations. Log rows are written once and never mutated.
type CommunicationLogRepository interface {
	Create(ctx context.Context, entry *models.CommunicationLog) error
	FindByCampaignID(ctx context.Context, campaignID primitive.ObjectID, page, limit int) ([]*models.CommunicationLog, error)
	CountByCampaignID(ctx context.Context, campaignID primitive.ObjectID) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	FindAll(ctx context.Context, page, limit int, customerID primitive.ObjectID, status string) ([]*models.Order, int64, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	FindAll(ctx context.Context) ([]*models.User, error)
}
