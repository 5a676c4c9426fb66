package handlers

import (
	"errors"
	"net/http"

	"github.com/engagekit/crm-backend/internal/models"
	"github.com/engagekit/crm-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CustomerHandler handles customer-related HTTP requests
type CustomerHandler struct {
	customerService *services.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// CreateCustomer handles POST /customers
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: err.Error()})
		return
	}

	if err := h.customerService.CreateCustomer(c.Request.Context(), &customer); err != nil {
		if errors.Is(err, services.ErrEmailExists) {
			c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: "Email already exists"})
			return
		}
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, models.APIResponse{Success: true, Data: customer, Message: "Customer created successfully"})
}

// GetCustomers handles GET /customers
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	page, limit := pageParams(c, 100)
	search := c.Query("search")
	city := c.Query("city")
	gender := c.Query("gender")

	customers, total, err := h.customerService.GetCustomers(c.Request.Context(), page, limit, search, city, gender)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.APIResponse{Success: false, Message: "Failed to fetch customers"})
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success:    true,
		Data:       customers,
		Pagination: models.NewPagination(page, limit, total),
	})
}

// GetCustomer handles GET /customers/:id
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: "Invalid customer ID"})
		return
	}

	customer, err := h.customerService.GetCustomerByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, models.APIResponse{Success: false, Message: "Customer not found"})
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: customer})
}

// UpdateCustomer handles PUT /customers/:id
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: "Invalid customer ID"})
		return
	}

	var update models.Customer
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: err.Error()})
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), id, &update)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, models.APIResponse{Success: false, Message: "Customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.APIResponse{Success: false, Message: "Failed to update customer"})
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: customer, Message: "Customer updated successfully"})
}

// DeleteCustomer handles DELETE /customers/:id (soft delete)
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: "Invalid customer ID"})
		return
	}

	if err := h.customerService.DeactivateCustomer(c.Request.Context(), id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, models.APIResponse{Success: false, Message: "Customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.APIResponse{Success: false, Message: "Failed to deactivate customer"})
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{Success: true, Message: "Customer deactivated successfully"})
}
