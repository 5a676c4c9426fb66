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

// CustomerRepository implements the repositories.CustomerRepository interface
type CustomerRepository struct {
	collection *mongo.Collection
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(db *mongo.Database) repositories.CustomerRepository {
	return &CustomerRepository{
		collection: db.Collection("customers"),
	}
}

// Create creates a new customer
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, customer)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		customer.ID = oid
	}
	return nil
}

// FindByID finds a customer by ID
func (r *CustomerRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Customer, error) {
	var customer models.Customer
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&customer)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByEmail finds a customer by email
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&customer)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindAll finds customers with pagination, name/email search and optional
// city and gender filters
func (r *CustomerRepository) FindAll(ctx context.Context, page, limit int, search, city, gender string) ([]*models.Customer, int64, error) {
	filter := bson.M{}
	if search != "" {
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": search, "$options": "i"}},
			{"email": bson.M{"$regex": search, "$options": "i"}},
		}
	}
	if city != "" {
		filter["address.city"] = bson.M{"$regex": city, "$options": "i"}
	}
	if gender != "" {
		filter["demographics.gender"] = gender
	}

	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"created_at": -1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var customers []*models.Customer
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, 0, err
	}
	if customers == nil {
		customers = []*models.Customer{}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// Find runs a segment query and returns the matching customers
func (r *CustomerRepository) Find(ctx context.Context, query bson.M) ([]*models.Customer, error) {
	cursor, err := r.collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var customers []*models.Customer
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []*models.Customer{}
	}
	return customers, nil
}

// CountByQuery runs a segment query as a count-only operation
func (r *CustomerRepository) CountByQuery(ctx context.Context, query bson.M) (int64, error) {
	return r.collection.CountDocuments(ctx, query)
}

// Update updates a customer
func (r *CustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	customer.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": customer.ID}, customer)
	return err
}

// Deactivate soft-deletes a customer by clearing its active flag
func (r *CustomerRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"is_active": false, "updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ApplyOrderStats adjusts the derived purchase stats for a customer and
// refreshes the average order value from the updated totals
func (r *CustomerRepository) ApplyOrderStats(ctx context.Context, id primitive.ObjectID, amountDelta float64, countDelta int, purchasedAt *time.Time) error {
	update := bson.M{
		"$inc": bson.M{
			"stats.total_spent": amountDelta,
			"stats.order_count": countDelta,
		},
		"$set": bson.M{"updated_at": time.Now()},
	}
	if purchasedAt != nil {
		update["$set"].(bson.M)["stats.last_purchase"] = *purchasedAt
		update["$min"] = bson.M{"stats.first_purchase": *purchasedAt}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Customer
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		return err
	}

	average := 0.0
	if updated.Stats.OrderCount > 0 {
		average = updated.Stats.TotalSpent / float64(updated.Stats.OrderCount)
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"stats.average_order_value": average},
	})
	return err
}

// Count counts all customers
func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
