package services

import (
	"context"
	"time"

	"github.com/engagekit/crm-backend/internal/models"
	"github.com/engagekit/crm-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SegmentService handles segment-related business logic. Size estimation and
// the cached estimated_count always go through the same query build, so the
// preview number and the persisted number can never diverge.
type SegmentService struct {
	segmentRepo  repositories.SegmentRepository
	customerRepo repositories.CustomerRepository
}

// NewSegmentService creates a new SegmentService
func NewSegmentService(segmentRepo repositories.SegmentRepository, customerRepo repositories.CustomerRepository) *SegmentService {
	return &SegmentService{
		segmentRepo:  segmentRepo,
		customerRepo: customerRepo,
	}
}

// EstimateSegment counts the customers a rule set currently matches without
// materializing them
func (s *SegmentService) EstimateSegment(ctx context.Context, ruleSet models.RuleSet) (int64, error) {
	query, err := BuildSegmentQuery(ruleSet, time.Now())
	if err != nil {
		return 0, err
	}
	return s.customerRepo.CountByQuery(ctx, query)
}

// CreateSegment validates the rule set, computes a fresh size estimate and
// persists the segment for its creator
func (s *SegmentService) CreateSegment(ctx context.Context, segment *models.Segment) error {
	count, err := s.EstimateSegment(ctx, segment.Rules)
	if err != nil {
		return err
	}

	segment.EstimatedCount = count
	segment.IsDynamic = true
	return s.segmentRepo.Create(ctx, segment)
}

// UpdateSegmentRules replaces a segment's rule set. The cached estimate is
// recomputed before the save completes, so a persisted segment never carries
// a count derived from an older rule set.
func (s *SegmentService) UpdateSegmentRules(ctx context.Context, id, createdBy primitive.ObjectID, ruleSet models.RuleSet) (*models.Segment, error) {
	segment, err := s.segmentRepo.FindByIDAndCreator(ctx, id, createdBy)
	if err != nil {
		return nil, err
	}

	count, err := s.EstimateSegment(ctx, ruleSet)
	if err != nil {
		return nil, err
	}

	segment.Rules = ruleSet
	segment.EstimatedCount = count
	if err := s.segmentRepo.Update(ctx, segment); err != nil {
		return nil, err
	}
	return segment, nil
}

// GetSegmentByID retrieves a segment scoped to its owner
func (s *SegmentService) GetSegmentByID(ctx context.Context, id, createdBy primitive.ObjectID) (*models.Segment, error) {
	return s.segmentRepo.FindByIDAndCreator(ctx, id, createdBy)
}

// GetSegmentsByCreator retrieves a user's segments with pagination
func (s *SegmentService) GetSegmentsByCreator(ctx context.Context, createdBy primitive.ObjectID, page, limit int) ([]*models.Segment, error) {
	return s.segmentRepo.FindByCreator(ctx, createdBy, page, limit)
}
