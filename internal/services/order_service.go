package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/engagekit/crm-backend/internal/models"
	"github.com/engagekit/crm-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderService handles order-related business logic. It is the only writer
// of customer purchase stats, which the segment rule engine filters on.
type OrderService struct {
	orderRepo    repositories.OrderRepository
	customerRepo repositories.CustomerRepository
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo repositories.OrderRepository, customerRepo repositories.CustomerRepository) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
	}
}

// CreateOrder persists an order and rolls its total into the owning
// customer's purchase stats
func (s *OrderService) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.CustomerID.IsZero() || len(order.Items) == 0 || order.Total == 0 {
		return errors.New("customer ID, items, and total are required fields")
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	if order.OrderID == "" {
		// Random suffix to avoid collisions between same-millisecond orders
		order.OrderID = fmt.Sprintf("ORD-%d-%d", time.Now().UnixMilli(), rand.Intn(1000))
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return err
	}

	purchasedAt := order.CreatedAt
	return s.customerRepo.ApplyOrderStats(ctx, order.CustomerID, order.Total, 1, &purchasedAt)
}

// GetOrderByID retrieves an order by ID
func (s *OrderService) GetOrderByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return s.orderRepo.FindByID(ctx, id)
}

// GetOrders retrieves orders with pagination and optional filters
func (s *OrderService) GetOrders(ctx context.Context, page, limit int, customerID primitive.ObjectID, status string) ([]*models.Order, int64, error) {
	return s.orderRepo.FindAll(ctx, page, limit, customerID, status)
}

// UpdateOrder updates an order's mutable fields. The owning customer,
// business order ID and creation time never change.
func (s *OrderService) UpdateOrder(ctx context.Context, id primitive.ObjectID, update *models.Order) (*models.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Status != "" {
		order.Status = update.Status
	}
	if update.PaymentMethod != "" {
		order.PaymentMethod = update.PaymentMethod
	}
	if update.ShippingAddress != (models.Address{}) {
		order.ShippingAddress = update.ShippingAddress
	}
	if update.Notes != "" {
		order.Notes = update.Notes
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// DeleteOrder removes an order and backs its total out of the owning
// customer's purchase stats
func (s *OrderService) DeleteOrder(ctx context.Context, id primitive.ObjectID) error {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return err
	}
	return s.customerRepo.ApplyOrderStats(ctx, order.CustomerID, -order.Total, -1, nil)
}
