package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RuleField identifies a logical customer attribute a rule filters on
type RuleField string

// Known rule fields. Fields outside this set are passed through to the
// storage layer unchanged.
const (
	RuleFieldTotalSpent   RuleField = "total_spent"
	RuleFieldOrderCount   RuleField = "order_count"
	RuleFieldLastPurchase RuleField = "last_purchase"
	RuleFieldTags         RuleField = "tags"
	RuleFieldCity         RuleField = "city"
	RuleFieldIsActive     RuleField = "is_active"
)

// RuleOperator identifies the comparison a rule applies
type RuleOperator string

const (
	OperatorGreaterThan    RuleOperator = ">"
	OperatorLessThan       RuleOperator = "<"
	OperatorGreaterOrEqual RuleOperator = ">="
	OperatorLessOrEqual    RuleOperator = "<="
	OperatorEqual          RuleOperator = "=="
	OperatorNotEqual       RuleOperator = "!="
	OperatorContains       RuleOperator = "contains"
	OperatorNotContains    RuleOperator = "not_contains"
	OperatorExists         RuleOperator = "exists"
	OperatorNotExists      RuleOperator = "not_exists"
)

// Rule is one atomic field/operator/value predicate authored by a user
type Rule struct {
	Field     RuleField    `bson:"field" json:"field"`
	Operator  RuleOperator `bson:"operator" json:"operator"`
	Value     interface{}  `bson:"value" json:"value"`
	ValueType string       `bson:"value_type,omitempty" json:"value_type,omitempty"` // number, string, date, boolean
}

// RuleSet is a flat boolean expression over rules: a single AND/OR level,
// no nested grouping
type RuleSet struct {
	Condition string `bson:"condition" json:"condition"` // AND or OR, defaults to AND
	Rules     []Rule `bson:"rules" json:"rules"`
}

// Segment represents a named, rule-defined audience filter over customers
type Segment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Rules       RuleSet            `bson:"rules" json:"rules"`
	// EstimatedCount caches the size of the matched audience. It is
	// recomputed on every create and rule edit, never on a live trigger.
	EstimatedCount int64              `bson:"estimated_count" json:"estimated_count"`
	CreatedBy      primitive.ObjectID `bson:"created_by,omitempty" json:"created_by,omitempty"`
	IsDynamic      bool               `bson:"is_dynamic" json:"is_dynamic"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}
