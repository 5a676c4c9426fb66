package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/engagekit/crm-backend/internal/models"
	"github.com/engagekit/crm-backend/pkg/cohere"
)

// Prompt limits keep AI requests bounded
const (
	maxInsightCustomers = 50
	contentMaxTokens    = 300
	contentTemperature  = 0.7
	insightsMaxTokens   = 500
	insightsTemperature = 0.5
)

// AIService generates marketing copy and insights through the text-completion
// collaborator. The segmentation and campaign core never calls it.
type AIService struct {
	client *cohere.Client
}

// NewAIService creates a new AIService
func NewAIService(client *cohere.Client) *AIService {
	return &AIService{client: client}
}

// GenerateCampaignContent drafts an email subject and body for the audience
// a rule set describes
func (s *AIService) GenerateCampaignContent(ctx context.Context, ruleSet models.RuleSet) (string, error) {
	if len(ruleSet.Rules) == 0 {
		return "", ErrInvalidRuleSet
	}

	rules, err := json.Marshal(ruleSet.Rules)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf("Generate an email subject and body for customers matching: %s.\n"+
		"Include variables like {name} and {total_spent}.\n"+
		"Format as:\nSubject: [subject here]\nBody: [body here]", rules)

	return s.client.Generate(ctx, prompt, contentMaxTokens, contentTemperature)
}

// GenerateCustomerInsights summarizes marketing insights over a customer set
func (s *AIService) GenerateCustomerInsights(ctx context.Context, customers []*models.Customer) (string, error) {
	if len(customers) == 0 {
		return "", errors.New("customer data is required")
	}
	if len(customers) > maxInsightCustomers {
		customers = customers[:maxInsightCustomers]
	}

	data, err := json.Marshal(customers)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf("Analyze this customer data and provide marketing insights: %s.\n"+
		"Highlight:\n1. Top spending segments\n2. Purchase frequency trends\n3. Recommended campaign types", data)

	return s.client.Generate(ctx, prompt, insightsMaxTokens, insightsTemperature)
}
