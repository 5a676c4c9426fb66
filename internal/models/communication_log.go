package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Communication log statuses. The fan-out pipeline only writes the terminal
// sent/failed outcomes; delivered/opened/clicked progression belongs to a
// future tracking collaborator.
const (
	LogStatusQueued    = "queued"
	LogStatusSent      = "sent"
	LogStatusDelivered = "delivered"
	LogStatusOpened    = "opened"
	LogStatusClicked   = "clicked"
	LogStatusFailed    = "failed"
)

// Communication channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
	ChannelPush  = "push"
)

// CommunicationLog records one delivery attempt for one customer within a
// campaign. Exactly one row is written per (campaign, matched customer) pair
// and never mutated afterward.
type CommunicationLog struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CampaignID    primitive.ObjectID `bson:"campaign_id" json:"campaign_id"`
	CustomerID    primitive.ObjectID `bson:"customer_id" json:"customer_id"`
	Channel       string             `bson:"channel" json:"channel"`
	Status        string             `bson:"status" json:"status"`
	FailureReason string             `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`
	MessageID     string             `bson:"message_id,omitempty" json:"message_id,omitempty"`
	SentAt        time.Time          `bson:"sent_at" json:"sent_at"`
}
