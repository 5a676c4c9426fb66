package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/engagekit/crm-backend/internal/models"
	"github.com/engagekit/crm-backend/internal/repositories"
	"github.com/engagekit/crm-backend/pkg/delivery"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultBatchSize bounds the number of outstanding delivery/log writes
const DefaultBatchSize = 100

// ErrZeroMatchSegment rejects campaign creation against an audience of zero
var ErrZeroMatchSegment = errors.New("segment matches 0 customers - cannot create campaign")

// ErrSegmentNotFound is returned when the segment does not exist or is not
// owned by the caller
var ErrSegmentNotFound = errors.New("segment not found or access denied")

// CreateCampaignRequest is the input for campaign creation
type CreateCampaignRequest struct {
	Name      string                  `json:"name" binding:"required"`
	SegmentID string                  `json:"segment_id" binding:"required"`
	Template  models.CampaignTemplate `json:"template" binding:"required"`
}

// CampaignService handles campaign creation and the fan-out pipeline
type CampaignService struct {
	campaignRepo repositories.CampaignRepository
	segmentRepo  repositories.SegmentRepository
	customerRepo repositories.CustomerRepository
	logRepo      repositories.CommunicationLogRepository
	gateway      delivery.Gateway
	batchSize    int
}

// NewCampaignService creates a new CampaignService
func NewCampaignService(
	campaignRepo repositories.CampaignRepository,
	segmentRepo repositories.SegmentRepository,
	customerRepo repositories.CustomerRepository,
	logRepo repositories.CommunicationLogRepository,
	gateway delivery.Gateway,
	batchSize int,
) *CampaignService {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &CampaignService{
		campaignRepo: campaignRepo,
		segmentRepo:  segmentRepo,
		customerRepo: customerRepo,
		logRepo:      logRepo,
		gateway:      gateway,
		batchSize:    batchSize,
	}
}

// CreateCampaign validates the request, verifies segment ownership and a
// non-empty live audience, persists the draft campaign and detaches the
// fan-out pipeline. The caller gets the draft back immediately; delivery
// outcomes are only observable through the campaign's persisted status.
func (s *CampaignService) CreateCampaign(ctx context.Context, req *CreateCampaignRequest, createdBy primitive.ObjectID) (*models.Campaign, error) {
	if req.Template.Subject == "" || req.Template.Body == "" {
		return nil, errors.New("template subject and body are required")
	}

	segmentID, err := primitive.ObjectIDFromHex(req.SegmentID)
	if err != nil {
		return nil, ErrSegmentNotFound
	}

	segment, err := s.segmentRepo.FindByIDAndCreator(ctx, segmentID, createdBy)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSegmentNotFound
		}
		return nil, err
	}

	query, err := BuildSegmentQuery(segment.Rules, time.Now())
	if err != nil {
		return nil, err
	}
	count, err := s.customerRepo.CountByQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrZeroMatchSegment
	}

	campaign := &models.Campaign{
		Name:      req.Name,
		SegmentID: segment.ID,
		Template:  req.Template,
		Status:    models.CampaignStatusDraft,
		CreatedBy: createdBy,
		Stats:     models.CampaignStats{TotalRecipients: int(count)},
	}
	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		return nil, err
	}

	go s.ProcessCampaign(context.Background(), campaign.ID)

	return campaign, nil
}

// ProcessCampaign runs the fan-out pipeline for a campaign. It is detached
// from the request that created the campaign: errors are never surfaced to
// a caller, only recorded on the campaign itself.
func (s *CampaignService) ProcessCampaign(ctx context.Context, campaignID primitive.ObjectID) {
	campaign, err := s.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		// Campaign gone (or store unreachable before any state change):
		// nothing to transition, nobody to report to.
		log.Printf("[WARN] campaign %s: skipping fan-out: %v", campaignID.Hex(), err)
		return
	}

	if err := s.runPipeline(ctx, campaign); err != nil {
		log.Printf("[ERROR] campaign %s: fan-out failed: %v", campaignID.Hex(), err)
		// Best-effort failure transition; if this write also fails the
		// campaign is left in processing for the recovery sweep.
		if updErr := s.campaignRepo.UpdateStatus(ctx, campaignID, models.CampaignStatusFailed, err.Error()); updErr != nil {
			log.Printf("[ERROR] campaign %s: could not record failure: %v", campaignID.Hex(), updErr)
		}
	}
}

func (s *CampaignService) runPipeline(ctx context.Context, campaign *models.Campaign) error {
	segment, err := s.segmentRepo.FindByID(ctx, campaign.SegmentID)
	if err != nil {
		return fmt.Errorf("failed to load segment: %w", err)
	}

	// Resolve the live audience from the segment's current rules. The
	// count cached at creation time is only an estimate; execution targets
	// whoever matches now.
	query, err := BuildSegmentQuery(segment.Rules, time.Now())
	if err != nil {
		return fmt.Errorf("failed to build segment query: %w", err)
	}
	customers, err := s.customerRepo.Find(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to resolve recipients: %w", err)
	}

	now := time.Now()
	campaign.Status = models.CampaignStatusProcessing
	campaign.StartedAt = &now
	campaign.Stats.TotalRecipients = len(customers)
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return fmt.Errorf("failed to start campaign: %w", err)
	}

	var sent, failed int
	for start := 0; start < len(customers); start += s.batchSize {
		end := start + s.batchSize
		if end > len(customers) {
			end = len(customers)
		}
		batchSent, batchFailed := s.deliverBatch(ctx, campaign, customers[start:end])
		sent += batchSent
		failed += batchFailed
	}

	completedAt := time.Now()
	campaign.Status = models.CampaignStatusCompleted
	campaign.CompletedAt = &completedAt
	campaign.Stats.Sent = sent
	campaign.Stats.Failed = failed
	campaign.Stats.DeliveryRate = 0
	if len(customers) > 0 {
		campaign.Stats.DeliveryRate = float64(sent) / float64(len(customers)) * 100
	}
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return fmt.Errorf("failed to finalize campaign: %w", err)
	}

	log.Printf("[INFO] campaign %s: completed, %d sent, %d failed of %d recipients",
		campaign.ID.Hex(), sent, failed, len(customers))
	return nil
}

// deliverBatch attempts delivery for every customer in the batch
// concurrently and waits for all attempts to settle. One log row is written
// per attempt regardless of outcome; a failed attempt or log write only
// degrades that customer, never the batch.
func (s *CampaignService) deliverBatch(ctx context.Context, campaign *models.Campaign, batch []*models.Customer) (sent, failed int) {
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, customer := range batch {
		wg.Add(1)
		go func(customer *models.Customer) {
			defer wg.Done()

			entry := &models.CommunicationLog{
				CampaignID: campaign.ID,
				CustomerID: customer.ID,
				Channel:    models.ChannelEmail,
				Status:     models.LogStatusSent,
				SentAt:     time.Now(),
			}

			messageID, err := s.gateway.Send(customer.Email, campaign.Template.Subject, campaign.Template.Body)
			if err != nil {
				entry.Status = models.LogStatusFailed
				entry.FailureReason = err.Error()
			} else {
				entry.MessageID = messageID
			}

			if err := s.logRepo.Create(ctx, entry); err != nil {
				log.Printf("[WARN] campaign %s: failed to record log for customer %s: %v",
					campaign.ID.Hex(), customer.ID.Hex(), err)
				entry.Status = models.LogStatusFailed
			}

			mu.Lock()
			if entry.Status == models.LogStatusSent {
				sent++
			} else {
				failed++
			}
			mu.Unlock()
		}(customer)
	}

	wg.Wait()
	return sent, failed
}

// RecoverStuckCampaigns fails any campaign still marked processing. A crash
// mid-pipeline leaves no way to tell which recipients were attempted, so the
// sweep records the interruption instead of re-running deliveries.
func (s *CampaignService) RecoverStuckCampaigns(ctx context.Context) error {
	stuck, err := s.campaignRepo.FindByStatus(ctx, models.CampaignStatusProcessing)
	if err != nil {
		return err
	}
	for _, campaign := range stuck {
		if err := s.campaignRepo.UpdateStatus(ctx, campaign.ID, models.CampaignStatusFailed, "processing interrupted by restart"); err != nil {
			return err
		}
		log.Printf("[WARN] campaign %s: marked failed after interrupted processing", campaign.ID.Hex())
	}
	return nil
}

// GetCampaignsByCreator retrieves a user's campaigns with pagination
func (s *CampaignService) GetCampaignsByCreator(ctx context.Context, createdBy primitive.ObjectID, page, limit int) ([]*models.Campaign, error) {
	return s.campaignRepo.FindByCreator(ctx, createdBy, page, limit)
}

// GetCommunicationLogs retrieves the delivery log of a campaign, newest first
func (s *CampaignService) GetCommunicationLogs(ctx context.Context, campaignID primitive.ObjectID, page, limit int) ([]*models.CommunicationLog, int64, error) {
	logs, err := s.logRepo.FindByCampaignID(ctx, campaignID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.logRepo.CountByCampaignID(ctx, campaignID)
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
