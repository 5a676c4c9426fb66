package utils

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/engagekit/crm-backend/internal/models"
	"github.com/engagekit/crm-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
)

// CSVImporter imports customers and their historical orders from CSV files.
// Customer stats are maintained through the repository so imported orders
// feed segment rules the same way live orders do.
type CSVImporter struct {
	customerRepo repositories.CustomerRepository
	orderRepo    repositories.OrderRepository
}

// NewCSVImporter creates a new CSVImporter
func NewCSVImporter(customerRepo repositories.CustomerRepository, orderRepo repositories.OrderRepository) *CSVImporter {
	return &CSVImporter{
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
	}
}

// ImportResult summarizes an import run
type ImportResult struct {
	Processed int
	Created   int
	Skipped   int
	Errors    []string
}

// ImportCustomers imports customers from a CSV file with the columns
// name, email, phone, city, country, gender, tags. Tags are separated by
// semicolons. Rows whose email already exists are skipped.
func (i *CSVImporter) ImportCustomers(ctx context.Context, filePath string) (*ImportResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	col := columnIndex(header)
	if _, ok := col["email"]; !ok {
		return nil, fmt.Errorf("missing required column: email")
	}
	if _, ok := col["name"]; !ok {
		return nil, fmt.Errorf("missing required column: name")
	}

	result := &ImportResult{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		result.Processed++

		email := strings.TrimSpace(field(record, col, "email"))
		name := strings.TrimSpace(field(record, col, "name"))
		if email == "" || name == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: name and email are required", line))
			continue
		}

		if _, err := i.customerRepo.FindByEmail(ctx, email); err == nil {
			result.Skipped++
			continue
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: lookup failed: %v", line, err))
			continue
		}

		customer := &models.Customer{
			Name:  name,
			Email: email,
			Phone: strings.TrimSpace(field(record, col, "phone")),
			Address: models.Address{
				City:    strings.TrimSpace(field(record, col, "city")),
				Country: strings.TrimSpace(field(record, col, "country")),
			},
			Demographics: models.Demographics{
				Gender: strings.TrimSpace(field(record, col, "gender")),
			},
			Tags:     splitTags(field(record, col, "tags")),
			IsActive: true,
		}
		if err := i.customerRepo.Create(ctx, customer); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: create failed: %v", line, err))
			continue
		}
		result.Created++
	}

	return result, nil
}

// ImportOrders imports historical orders from a CSV file with the columns
// email, total, status, date (2006-01-02). Each imported order also updates
// the owning customer's purchase stats.
func (i *CSVImporter) ImportOrders(ctx context.Context, filePath string) (*ImportResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	col := columnIndex(header)
	for _, required := range []string{"email", "total", "date"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing required column: %s", required)
		}
	}

	result := &ImportResult{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		result.Processed++

		email := strings.TrimSpace(field(record, col, "email"))
		customer, err := i.customerRepo.FindByEmail(ctx, email)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: unknown customer %q", line, email))
			continue
		}

		total, err := strconv.ParseFloat(strings.TrimSpace(field(record, col, "total")), 64)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: invalid total", line))
			continue
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(field(record, col, "date")))
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: invalid date", line))
			continue
		}

		status := strings.TrimSpace(field(record, col, "status"))
		if status == "" {
			status = models.OrderStatusDelivered
		}

		order := &models.Order{
			OrderID:    fmt.Sprintf("CSV-%s-%d", date.Format("20060102"), line),
			CustomerID: customer.ID,
			Subtotal:   total,
			Total:      total,
			Status:     status,
			CreatedAt:  date,
			UpdatedAt:  date,
		}
		if err := i.orderRepo.Create(ctx, order); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: create failed: %v", line, err))
			continue
		}
		if err := i.customerRepo.ApplyOrderStats(ctx, customer.ID, total, 1, &date); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: stats update failed: %v", line, err))
			continue
		}
		result.Created++
	}

	return result, nil
}

// columnIndex maps lowercased header names to their positions
func columnIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return col
}

// field returns the named column of a record, or "" when absent
func field(record []string, col map[string]int, name string) string {
	idx, ok := col[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// splitTags parses a semicolon-separated tag list
func splitTags(raw string) []string {
	var tags []string
	for _, tag := range strings.Split(raw, ";") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
