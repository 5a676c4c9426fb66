package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Campaign statuses. The state machine is strictly forward:
// draft -> processing -> completed, with failed reachable from processing.
// No transition leaves completed or failed.
const (
	CampaignStatusDraft      = "draft"
	CampaignStatusProcessing = "processing"
	CampaignStatusCompleted  = "completed"
	CampaignStatusFailed     = "failed"
)

// CampaignTemplate is the message template a campaign renders per recipient
type CampaignTemplate struct {
	Subject   string   `bson:"subject" json:"subject"`
	Body      string   `bson:"body" json:"body"`
	Variables []string `bson:"variables,omitempty" json:"variables,omitempty"` // e.g. name, total_spent
}

// CampaignStats aggregates per-recipient outcomes for a campaign
type CampaignStats struct {
	TotalRecipients int     `bson:"total_recipients" json:"total_recipients"`
	Sent            int     `bson:"sent" json:"sent"`
	Failed          int     `bson:"failed" json:"failed"`
	DeliveryRate    float64 `bson:"delivery_rate" json:"delivery_rate"`
	FailureReason   string  `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`
}

// Campaign represents an email campaign executed against a segment
type Campaign struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	SegmentID   primitive.ObjectID `bson:"segment_id" json:"segment_id"`
	Template    CampaignTemplate   `bson:"template" json:"template"`
	Status      string             `bson:"status" json:"status"`
	StartedAt   *time.Time         `bson:"started_at,omitempty" json:"started_at,omitempty"`
	CompletedAt *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CreatedBy   primitive.ObjectID `bson:"created_by,omitempty" json:"created_by,omitempty"`
	Stats       CampaignStats      `bson:"stats" json:"stats"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
