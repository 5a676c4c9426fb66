package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/engagekit/crm-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// The fakes below back the service tests with an in-memory store. The
// customer fake evaluates the operator subset the rule engine emits, so
// query-building and counting behave end to end without a live database.

func customerFieldValue(c *models.Customer, path string) (interface{}, bool) {
	switch path {
	case "_id":
		return c.ID, true
	case "name":
		return c.Name, true
	case "email":
		return c.Email, true
	case "stats.total_spent":
		return c.Stats.TotalSpent, true
	case "stats.order_count":
		return float64(c.Stats.OrderCount), true
	case "stats.last_purchase":
		if c.Stats.LastPurchase == nil {
			return nil, false
		}
		return *c.Stats.LastPurchase, true
	case "address.city":
		return c.Address.City, true
	case "tags":
		return c.Tags, true
	case "is_active":
		return c.IsActive, true
	default:
		return nil, false
	}
}

func compareValues(docVal, queryVal interface{}) (int, bool) {
	if dt, ok := docVal.(time.Time); ok {
		qt, ok := queryVal.(time.Time)
		if !ok {
			return 0, false
		}
		switch {
		case dt.Before(qt):
			return -1, true
		case dt.After(qt):
			return 1, true
		default:
			return 0, true
		}
	}

	if df, ok := asFloat(docVal); ok {
		qf, ok := asFloat(queryVal)
		if !ok {
			return 0, false
		}
		switch {
		case df < qf:
			return -1, true
		case df > qf:
			return 1, true
		default:
			return 0, true
		}
	}

	if ds, ok := docVal.(string); ok {
		qs, ok := queryVal.(string)
		if !ok {
			return 0, false
		}
		switch {
		case ds < qs:
			return -1, true
		case ds > qs:
			return 1, true
		default:
			return 0, true
		}
	}

	if db, ok := docVal.(bool); ok {
		qb, ok := queryVal.(bool)
		if !ok || db != qb {
			return 1, ok
		}
		return 0, true
	}

	return 0, false
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func evalOperator(op string, docVal interface{}, exists bool, queryVal interface{}) bool {
	switch op {
	case "$exists":
		want, _ := queryVal.(bool)
		return exists == want
	case "$eq":
		if !exists {
			return false
		}
		if tags, ok := docVal.([]string); ok {
			want := fmt.Sprintf("%v", queryVal)
			for _, tag := range tags {
				if tag == want {
					return true
				}
			}
			return false
		}
		cmp, ok := compareValues(docVal, queryVal)
		return ok && cmp == 0
	case "$ne":
		return !evalOperator("$eq", docVal, exists, queryVal)
	case "$gt", "$gte", "$lt", "$lte":
		if !exists {
			return false
		}
		cmp, ok := compareValues(docVal, queryVal)
		if !ok {
			return false
		}
		switch op {
		case "$gt":
			return cmp > 0
		case "$gte":
			return cmp >= 0
		case "$lt":
			return cmp < 0
		default:
			return cmp <= 0
		}
	case "$regex":
		if !exists {
			return false
		}
		pattern, _ := queryVal.(string)
		re := regexp.MustCompile("(?i)" + pattern)
		if tags, ok := docVal.([]string); ok {
			for _, tag := range tags {
				if re.MatchString(tag) {
					return true
				}
			}
			return false
		}
		s, ok := docVal.(string)
		return ok && re.MatchString(s)
	case "$options":
		return true
	default:
		return false
	}
}

func evalQuery(c *models.Customer, query bson.M) bool {
	for key, value := range query {
		switch key {
		case "$and":
			for _, sub := range value.([]bson.M) {
				if !evalQuery(c, sub) {
					return false
				}
			}
		case "$or":
			any := false
			for _, sub := range value.([]bson.M) {
				if evalQuery(c, sub) {
					any = true
					break
				}
			}
			if !any {
				return false
			}
		default:
			docVal, exists := customerFieldValue(c, key)
			ops, ok := value.(bson.M)
			if !ok {
				if !evalOperator("$eq", docVal, exists, value) {
					return false
				}
				continue
			}
			for op, queryVal := range ops {
				if !evalOperator(op, docVal, exists, queryVal) {
					return false
				}
			}
		}
	}
	return true
}

// fakeCustomerRepo is an in-memory CustomerRepository

type fakeCustomerRepo struct {
	mu        sync.Mutex
	customers []*models.Customer
}

func (r *fakeCustomerRepo) Create(ctx context.Context, customer *models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if customer.ID.IsZero() {
		customer.ID = primitive.NewObjectID()
	}
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = time.Now()
	r.customers = append(r.customers, customer)
	return nil
}

func (r *fakeCustomerRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeCustomerRepo) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeCustomerRepo) FindAll(ctx context.Context, page, limit int, search, city, gender string) ([]*models.Customer, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.Customer{}, r.customers...), int64(len(r.customers)), nil
}

func (r *fakeCustomerRepo) Find(ctx context.Context, query bson.M) ([]*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []*models.Customer{}
	for _, c := range r.customers {
		if evalQuery(c, query) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

func (r *fakeCustomerRepo) CountByQuery(ctx context.Context, query bson.M) (int64, error) {
	matched, err := r.Find(ctx, query)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (r *fakeCustomerRepo) Update(ctx context.Context, customer *models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.customers {
		if c.ID == customer.ID {
			r.customers[i] = customer
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (r *fakeCustomerRepo) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.ID == id {
			c.IsActive = false
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (r *fakeCustomerRepo) ApplyOrderStats(ctx context.Context, id primitive.ObjectID, amountDelta float64, countDelta int, purchasedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.ID != id {
			continue
		}
		c.Stats.TotalSpent += amountDelta
		c.Stats.OrderCount += countDelta
		if purchasedAt != nil {
			c.Stats.LastPurchase = purchasedAt
			if c.Stats.FirstPurchase == nil || purchasedAt.Before(*c.Stats.FirstPurchase) {
				c.Stats.FirstPurchase = purchasedAt
			}
		}
		if c.Stats.OrderCount > 0 {
			c.Stats.AverageOrderValue = c.Stats.TotalSpent / float64(c.Stats.OrderCount)
		} else {
			c.Stats.AverageOrderValue = 0
		}
		return nil
	}
	return mongo.ErrNoDocuments
}

func (r *fakeCustomerRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.customers)), nil
}

// fakeSegmentRepo is an in-memory SegmentRepository

type fakeSegmentRepo struct {
	mu       sync.Mutex
	segments map[primitive.ObjectID]*models.Segment
}

func newFakeSegmentRepo() *fakeSegmentRepo {
	return &fakeSegmentRepo{segments: map[primitive.ObjectID]*models.Segment{}}
}

func (r *fakeSegmentRepo) Create(ctx context.Context, segment *models.Segment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if segment.ID.IsZero() {
		segment.ID = primitive.NewObjectID()
	}
	segment.CreatedAt = time.Now()
	segment.UpdatedAt = time.Now()
	r.segments[segment.ID] = segment
	return nil
}

func (r *fakeSegmentRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Segment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	segment, ok := r.segments[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return segment, nil
}

func (r *fakeSegmentRepo) FindByIDAndCreator(ctx context.Context, id, createdBy primitive.ObjectID) (*models.Segment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	segment, ok := r.segments[id]
	if !ok || segment.CreatedBy != createdBy {
		return nil, mongo.ErrNoDocuments
	}
	return segment, nil
}

func (r *fakeSegmentRepo) FindByCreator(ctx context.Context, createdBy primitive.ObjectID, page, limit int) ([]*models.Segment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := []*models.Segment{}
	for _, segment := range r.segments {
		if segment.CreatedBy == createdBy {
			found = append(found, segment)
		}
	}
	return found, nil
}

func (r *fakeSegmentRepo) Update(ctx context.Context, segment *models.Segment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.segments[segment.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	segment.UpdatedAt = time.Now()
	r.segments[segment.ID] = segment
	return nil
}

func (r *fakeSegmentRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.segments)), nil
}

// fakeCampaignRepo is an in-memory CampaignRepository that records every
// status a campaign passes through

type fakeCampaignRepo struct {
	mu           sync.Mutex
	campaigns    map[primitive.ObjectID]*models.Campaign
	history      map[primitive.ObjectID][]string
	failOnStatus string
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{
		campaigns: map[primitive.ObjectID]*models.Campaign{},
		history:   map[primitive.ObjectID][]string{},
	}
}

func (r *fakeCampaignRepo) Create(ctx context.Context, campaign *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if campaign.ID.IsZero() {
		campaign.ID = primitive.NewObjectID()
	}
	campaign.CreatedAt = time.Now()
	campaign.UpdatedAt = time.Now()
	stored := *campaign
	r.campaigns[campaign.ID] = &stored
	r.history[campaign.ID] = append(r.history[campaign.ID], campaign.Status)
	return nil
}

func (r *fakeCampaignRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	campaign, ok := r.campaigns[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *campaign
	return &copied, nil
}

func (r *fakeCampaignRepo) FindByCreator(ctx context.Context, createdBy primitive.ObjectID, page, limit int) ([]*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := []*models.Campaign{}
	for _, campaign := range r.campaigns {
		if campaign.CreatedBy == createdBy {
			copied := *campaign
			found = append(found, &copied)
		}
	}
	return found, nil
}

func (r *fakeCampaignRepo) FindByStatus(ctx context.Context, status string) ([]*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := []*models.Campaign{}
	for _, campaign := range r.campaigns {
		if campaign.Status == status {
			copied := *campaign
			found = append(found, &copied)
		}
	}
	return found, nil
}

func (r *fakeCampaignRepo) Update(ctx context.Context, campaign *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOnStatus != "" && campaign.Status == r.failOnStatus {
		return errors.New("write rejected")
	}
	if _, ok := r.campaigns[campaign.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	campaign.UpdatedAt = time.Now()
	stored := *campaign
	r.campaigns[campaign.ID] = &stored
	r.history[campaign.ID] = append(r.history[campaign.ID], campaign.Status)
	return nil
}

func (r *fakeCampaignRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status, failureReason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	campaign, ok := r.campaigns[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	campaign.Status = status
	if failureReason != "" {
		campaign.Stats.FailureReason = failureReason
	}
	campaign.UpdatedAt = time.Now()
	r.history[id] = append(r.history[id], status)
	return nil
}

func (r *fakeCampaignRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.campaigns)), nil
}

func (r *fakeCampaignRepo) statusHistory(id primitive.ObjectID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.history[id]...)
}

// fakeLogRepo is an in-memory CommunicationLogRepository

type fakeLogRepo struct {
	mu      sync.Mutex
	entries []*models.CommunicationLog
	failFor map[primitive.ObjectID]bool
}

func (r *fakeLogRepo) Create(ctx context.Context, entry *models.CommunicationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor[entry.CustomerID] {
		return errors.New("log write rejected")
	}
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeLogRepo) FindByCampaignID(ctx context.Context, campaignID primitive.ObjectID, page, limit int) ([]*models.CommunicationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := []*models.CommunicationLog{}
	for _, entry := range r.entries {
		if entry.CampaignID == campaignID {
			found = append(found, entry)
		}
	}
	return found, nil
}

func (r *fakeLogRepo) CountByCampaignID(ctx context.Context, campaignID primitive.ObjectID) (int64, error) {
	logs, err := r.FindByCampaignID(ctx, campaignID, 1, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(logs)), nil
}

func (r *fakeLogRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.entries)), nil
}

// fakeOrderRepo is an in-memory OrderRepository

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders []*models.Order
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.UpdatedAt = time.Now()
	r.orders = append(r.orders, order)
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeOrderRepo) FindByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderID == orderID {
			return o, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeOrderRepo) FindAll(ctx context.Context, page, limit int, customerID primitive.ObjectID, status string) ([]*models.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := []*models.Order{}
	for _, o := range r.orders {
		if !customerID.IsZero() && o.CustomerID != customerID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		found = append(found, o)
	}
	return found, int64(len(found)), nil
}

func (r *fakeOrderRepo) Update(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, o := range r.orders {
		if o.ID == order.ID {
			r.orders[i] = order
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (r *fakeOrderRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, o := range r.orders {
		if o.ID == id {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (r *fakeOrderRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.orders)), nil
}

// scriptedGateway fails deterministically: every failEvery-th call when
// failEvery > 0, never otherwise. It also records arrival order and the
// maximum number of concurrently outstanding sends.

type scriptedGateway struct {
	mu          sync.Mutex
	failEvery   int
	calls       int
	recipients  []string
	inFlight    int
	maxInFlight int
}

func (g *scriptedGateway) Send(to, subject, body string) (string, error) {
	g.mu.Lock()
	g.calls++
	call := g.calls
	g.recipients = append(g.recipients, to)
	g.inFlight++
	if g.inFlight > g.maxInFlight {
		g.maxInFlight = g.inFlight
	}
	g.mu.Unlock()

	// Hold the slot briefly so overlapping sends are observable
	time.Sleep(time.Millisecond)

	g.mu.Lock()
	g.inFlight--
	g.mu.Unlock()

	if g.failEvery > 0 && call%g.failEvery == 0 {
		return "", errors.New("delivery rejected")
	}
	return fmt.Sprintf("MSG-%d", call), nil
}

func (g *scriptedGateway) snapshot() (calls, maxInFlight int, recipients []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls, g.maxInFlight, append([]string{}, g.recipients...)
}
