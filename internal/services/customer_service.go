package services

import (
	"context"
	"errors"

	"github.com/engagekit/crm-backend/internal/models"
	"github.com/engagekit/crm-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrEmailExists is returned when creating a customer with a taken email
var ErrEmailExists = errors.New("email already exists")

// CustomerService handles customer-related business logic. The rule engine
// reads customers through the repository; this service never touches the
// derived stats fields (the order service owns those).
type CustomerService struct {
	customerRepo repositories.CustomerRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo repositories.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CreateCustomer creates a customer; email must be unique
func (s *CustomerService) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	if customer.Name == "" || customer.Email == "" {
		return errors.New("name and email are required fields")
	}

	if _, err := s.customerRepo.FindByEmail(ctx, customer.Email); err == nil {
		return ErrEmailExists
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	customer.IsActive = true
	return s.customerRepo.Create(ctx, customer)
}

// GetCustomerByID retrieves a customer by ID
func (s *CustomerService) GetCustomerByID(ctx context.Context, id primitive.ObjectID) (*models.Customer, error) {
	return s.customerRepo.FindByID(ctx, id)
}

// GetCustomers retrieves customers with pagination, search and filters
func (s *CustomerService) GetCustomers(ctx context.Context, page, limit int, search, city, gender string) ([]*models.Customer, int64, error) {
	return s.customerRepo.FindAll(ctx, page, limit, search, city, gender)
}

// UpdateCustomer updates a customer's profile fields. Email is immutable and
// derived stats are preserved from the stored record.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id primitive.ObjectID, update *models.Customer) (*models.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != "" {
		customer.Name = update.Name
	}
	if update.Phone != "" {
		customer.Phone = update.Phone
	}
	if update.Address != (models.Address{}) {
		customer.Address = update.Address
	}
	if update.Demographics != (models.Demographics{}) {
		customer.Demographics = update.Demographics
	}
	if update.Tags != nil {
		customer.Tags = update.Tags
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// DeactivateCustomer soft-deletes a customer
func (s *CustomerService) DeactivateCustomer(ctx context.Context, id primitive.ObjectID) error {
	return s.customerRepo.Deactivate(ctx, id)
}
