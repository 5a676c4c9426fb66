package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address represents a customer's postal address
type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Zip     string `bson:"zip,omitempty" json:"zip,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

// Demographics holds optional demographic attributes of a customer
type Demographics struct {
	Age        int    `bson:"age,omitempty" json:"age,omitempty"`
	Gender     string `bson:"gender,omitempty" json:"gender,omitempty"`
	Occupation string `bson:"occupation,omitempty" json:"occupation,omitempty"`
}

// CustomerStats holds purchase statistics derived from orders.
// These fields are maintained exclusively by the order service and are the
// physical targets of the segment rule engine (stats.total_spent etc.).
type CustomerStats struct {
	TotalSpent        float64    `bson:"total_spent" json:"total_spent"`
	FirstPurchase     *time.Time `bson:"first_purchase,omitempty" json:"first_purchase,omitempty"`
	LastPurchase      *time.Time `bson:"last_purchase,omitempty" json:"last_purchase,omitempty"`
	OrderCount        int        `bson:"order_count" json:"order_count"`
	AverageOrderValue float64    `bson:"average_order_value,omitempty" json:"average_order_value,omitempty"`
}

// Customer represents a customer record
type Customer struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address      Address            `bson:"address,omitempty" json:"address,omitempty"`
	Demographics Demographics       `bson:"demographics,omitempty" json:"demographics,omitempty"`
	Stats        CustomerStats      `bson:"stats" json:"stats"`
	Tags         []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
