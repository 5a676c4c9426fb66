package mongodb

import (
	"context"
	"time"

	"github.com/engagekit/crm-backend/internal/models"
	"github.com/engagekit/crm-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SegmentRepository implements the repositories.SegmentRepository interface
type SegmentRepository struct {
	collection *mongo.Collection
}

// NewSegmentRepository creates a new SegmentRepository
func NewSegmentRepository(db *mongo.Database) repositories.SegmentRepository {
	return &SegmentRepository{
		collection: db.Collection("segments"),
	}
}

// Create creates a new segment
func (r *SegmentRepository) Create(ctx context.Context, segment *models.Segment) error {
	segment.CreatedAt = time.Now()
	segment.UpdatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, segment)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		segment.ID = oid
	}
	return nil
}

// FindByID finds a segment by ID
func (r *SegmentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Segment, error) {
	var segment models.Segment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&segment)
	if err != nil {
		return nil, err
	}
	return &segment, nil
}

// FindByIDAndCreator finds a segment by ID scoped to its owner
func (r *SegmentRepository) FindByIDAndCreator(ctx context.Context, id, createdBy primitive.ObjectID) (*models.Segment, error) {
	var segment models.Segment
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "created_by": createdBy}).Decode(&segment)
	if err != nil {
		return nil, err
	}
	return &segment, nil
}

// FindByCreator finds segments owned by a user with pagination
func (r *SegmentRepository) FindByCreator(ctx context.Context, createdBy primitive.ObjectID, page, limit int) ([]*models.Segment, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"created_at": -1})

	cursor, err := r.collection.Find(ctx, bson.M{"created_by": createdBy}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var segments []*models.Segment
	if err := cursor.All(ctx, &segments); err != nil {
		return nil, err
	}
	if segments == nil {
		segments = []*models.Segment{}
	}
	return segments, nil
}

// Update updates a segment
func (r *SegmentRepository) Update(ctx context.Context, segment *models.Segment) error {
	segment.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": segment.ID}, segment)
	return err
}

// Count counts all segments
func (r *SegmentRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
