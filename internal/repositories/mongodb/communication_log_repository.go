package mongodb

import (
	"context"

	"github.com/engagekit/crm-backend/internal/models"
	"github.com/engagekit/crm-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommunicationLogRepository implements the
// repositories.CommunicationLogRepository interface
type CommunicationLogRepository struct {
	collection *mongo.Collection
}

// NewCommunicationLogRepository creates a new CommunicationLogRepository
func NewCommunicationLogRepository(db *mongo.Database) repositories.CommunicationLogRepository {
	return &CommunicationLogRepository{
		collection: db.Collection("communication_logs"),
	}
}

// Create creates a new communication log entry
func (r *CommunicationLogRepository) Create(ctx context.Context, entry *models.CommunicationLog) error {
	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid
	}
	return nil
}

// FindByCampaignID finds log entries for a campaign, newest first
func (r *CommunicationLogRepository) FindByCampaignID(ctx context.Context, campaignID primitive.ObjectID, page, limit int) ([]*models.CommunicationLog, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"sent_at": -1})

	cursor, err := r.collection.Find(ctx, bson.M{"campaign_id": campaignID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*models.CommunicationLog
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*models.CommunicationLog{}
	}
	return entries, nil
}

// CountByCampaignID counts log entries for a campaign
func (r *CommunicationLogRepository) CountByCampaignID(ctx context.Context, campaignID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"campaign_id": campaignID})
}

// Count counts all communication log entries
func (r *CommunicationLogRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
