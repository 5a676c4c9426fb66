package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// OrderItem is a single line item within an order
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product_id,omitempty" json:"product_id,omitempty"`
	Name      string             `bson:"name,omitempty" json:"name,omitempty"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
	Discount  float64            `bson:"discount,omitempty" json:"discount,omitempty"`
}

// Order represents a customer order. Creating or deleting an order adjusts
// the owning customer's purchase stats.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrderID         string             `bson:"order_id" json:"order_id"`
	CustomerID      primitive.ObjectID `bson:"customer_id" json:"customer_id"`
	Items           []OrderItem        `bson:"items" json:"items"`
	Subtotal        float64            `bson:"subtotal" json:"subtotal"`
	Tax             float64            `bson:"tax,omitempty" json:"tax,omitempty"`
	Shipping        float64            `bson:"shipping,omitempty" json:"shipping,omitempty"`
	Total           float64            `bson:"total" json:"total"`
	Status          string             `bson:"status" json:"status"`
	PaymentMethod   string             `bson:"payment_method,omitempty" json:"payment_method,omitempty"`
	ShippingAddress Address            `bson:"shipping_address,omitempty" json:"shipping_address,omitempty"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}
