package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/engagekit/crm-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// ErrInvalidRuleSet is returned when a rule set has no rules to build from
var ErrInvalidRuleSet = errors.New("rule set must contain at least one rule")

// UnsupportedOperatorError is returned when a rule uses an operator with no
// compiled semantics. These rules used to fall through to a permissive
// fragment; they now fail loudly instead of silently widening the audience.
type UnsupportedOperatorError struct {
	Operator models.RuleOperator
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("unsupported rule operator %q", e.Operator)
}

// fieldPath maps a logical rule field to its physical storage path.
// Unmapped fields pass through unchanged.
func fieldPath(field models.RuleField) string {
	switch field {
	case models.RuleFieldTotalSpent:
		return "stats.total_spent"
	case models.RuleFieldOrderCount:
		return "stats.order_count"
	case models.RuleFieldLastPurchase:
		return "stats.last_purchase"
	case models.RuleFieldCity:
		return "address.city"
	case models.RuleFieldTags:
		return "tags"
	case models.RuleFieldIsActive:
		return "is_active"
	default:
		return string(field)
	}
}

// alwaysFalseQuery matches no customer. _id exists on every document.
func alwaysFalseQuery() bson.M {
	return bson.M{"_id": bson.M{"$exists": false}}
}

// ruleValueAsDays coerces a rule value into a whole number of days.
// JSON numbers decode as float64; persisted rules may carry int32/int64,
// and the authoring UI sometimes sends numeric strings.
func ruleValueAsDays(value interface{}) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), true
	case float32:
		return int(v), true
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// compileRule translates one atomic rule into a query fragment. It is a pure
// function of the rule and the supplied clock instant.
func compileRule(rule models.Rule, now time.Time) (bson.M, error) {
	path := fieldPath(rule.Field)
	value := rule.Value

	// last_purchase values mean "N days ago": convert to an absolute
	// cutoff at compile time. A value that is not a number makes the rule
	// match nothing rather than fail the whole query build.
	if rule.Field == models.RuleFieldLastPurchase {
		days, ok := ruleValueAsDays(value)
		if !ok {
			return alwaysFalseQuery(), nil
		}
		value = now.AddDate(0, 0, -days)
	}

	if rule.Field == models.RuleFieldIsActive {
		value = value == true || value == "true"
	}

	switch rule.Operator {
	case models.OperatorGreaterThan:
		return bson.M{path: bson.M{"$gt": value}}, nil
	case models.OperatorLessThan:
		return bson.M{path: bson.M{"$lt": value}}, nil
	case models.OperatorGreaterOrEqual:
		return bson.M{path: bson.M{"$gte": value}}, nil
	case models.OperatorLessOrEqual:
		return bson.M{path: bson.M{"$lte": value}}, nil
	case models.OperatorEqual:
		return bson.M{path: bson.M{"$eq": value}}, nil
	case models.OperatorNotEqual:
		return bson.M{path: bson.M{"$ne": value}}, nil
	case models.OperatorContains:
		return bson.M{path: bson.M{"$regex": fmt.Sprintf("%v", value), "$options": "i"}}, nil
	default:
		return nil, &UnsupportedOperatorError{Operator: rule.Operator}
	}
}

// BuildSegmentQuery compiles a rule set into a single customer query.
// The expression is flat: one AND/OR level over the compiled rules, matching
// what the authoring UI can express. The condition defaults to AND.
func BuildSegmentQuery(ruleSet models.RuleSet, now time.Time) (bson.M, error) {
	if len(ruleSet.Rules) == 0 {
		return nil, ErrInvalidRuleSet
	}

	conditions := make([]bson.M, 0, len(ruleSet.Rules))
	for _, rule := range ruleSet.Rules {
		fragment, err := compileRule(rule, now)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, fragment)
	}

	if strings.EqualFold(ruleSet.Condition, "or") {
		return bson.M{"$or": conditions}, nil
	}
	return bson.M{"$and": conditions}, nil
}
