package services

import (
	"errors"
	"testing"
	"time"

	"github.com/engagekit/crm-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func buildSingle(t *testing.T, rule models.Rule) bson.M {
	t.Helper()
	query, err := BuildSegmentQuery(models.RuleSet{Condition: "AND", Rules: []models.Rule{rule}}, testNow)
	require.NoError(t, err)
	fragments, ok := query["$and"].([]bson.M)
	require.True(t, ok)
	require.Len(t, fragments, 1)
	return fragments[0]
}

func TestBuildSegmentQueryComparisonOperators(t *testing.T) {
	tests := []struct {
		name     string
		operator models.RuleOperator
		mongoOp  string
	}{
		{"greater than", models.OperatorGreaterThan, "$gt"},
		{"less than", models.OperatorLessThan, "$lt"},
		{"greater or equal", models.OperatorGreaterOrEqual, "$gte"},
		{"less or equal", models.OperatorLessOrEqual, "$lte"},
		{"equal", models.OperatorEqual, "$eq"},
		{"not equal", models.OperatorNotEqual, "$ne"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fragment := buildSingle(t, models.Rule{
				Field:    models.RuleFieldTotalSpent,
				Operator: tt.operator,
				Value:    float64(100),
			})
			assert.Equal(t, bson.M{"stats.total_spent": bson.M{tt.mongoOp: float64(100)}}, fragment)
		})
	}
}

func TestBuildSegmentQueryFieldPaths(t *testing.T) {
	tests := []struct {
		field models.RuleField
		path  string
	}{
		{models.RuleFieldTotalSpent, "stats.total_spent"},
		{models.RuleFieldOrderCount, "stats.order_count"},
		{models.RuleFieldCity, "address.city"},
		{models.RuleFieldTags, "tags"},
		{models.RuleFieldIsActive, "is_active"},
		{models.RuleField("email"), "email"}, // unmapped fields pass through
	}

	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			fragment := buildSingle(t, models.Rule{
				Field:    tt.field,
				Operator: models.OperatorEqual,
				Value:    "x",
			})
			_, ok := fragment[tt.path]
			assert.True(t, ok, "expected fragment keyed by %q, got %v", tt.path, fragment)
		})
	}
}

func TestBuildSegmentQueryContains(t *testing.T) {
	fragment := buildSingle(t, models.Rule{
		Field:    models.RuleFieldTags,
		Operator: models.OperatorContains,
		Value:    "vip",
	})
	assert.Equal(t, bson.M{"tags": bson.M{"$regex": "vip", "$options": "i"}}, fragment)
}

func TestBuildSegmentQueryLastPurchaseCutoff(t *testing.T) {
	cutoff := testNow.AddDate(0, 0, -30)

	t.Run("numeric days", func(t *testing.T) {
		fragment := buildSingle(t, models.Rule{
			Field:    models.RuleFieldLastPurchase,
			Operator: models.OperatorGreaterThan,
			Value:    float64(30),
		})
		assert.Equal(t, bson.M{"stats.last_purchase": bson.M{"$gt": cutoff}}, fragment)
	})

	t.Run("numeric string days", func(t *testing.T) {
		fragment := buildSingle(t, models.Rule{
			Field:    models.RuleFieldLastPurchase,
			Operator: models.OperatorLessOrEqual,
			Value:    " 30 ",
		})
		assert.Equal(t, bson.M{"stats.last_purchase": bson.M{"$lte": cutoff}}, fragment)
	})

	t.Run("non-numeric value matches nothing", func(t *testing.T) {
		fragment := buildSingle(t, models.Rule{
			Field:    models.RuleFieldLastPurchase,
			Operator: models.OperatorGreaterThan,
			Value:    "last tuesday",
		})
		assert.Equal(t, bson.M{"_id": bson.M{"$exists": false}}, fragment)
	})
}

func TestBuildSegmentQueryIsActiveCoercion(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  bool
	}{
		{"boolean true", true, true},
		{"string true", "true", true},
		{"boolean false", false, false},
		{"string false", "false", false},
		{"arbitrary string", "yes", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fragment := buildSingle(t, models.Rule{
				Field:    models.RuleFieldIsActive,
				Operator: models.OperatorEqual,
				Value:    tt.value,
			})
			assert.Equal(t, bson.M{"is_active": bson.M{"$eq": tt.want}}, fragment)
		})
	}
}

func TestBuildSegmentQueryUnsupportedOperators(t *testing.T) {
	for _, op := range []models.RuleOperator{
		models.OperatorNotContains,
		models.OperatorExists,
		models.OperatorNotExists,
		models.RuleOperator("between"),
	} {
		t.Run(string(op), func(t *testing.T) {
			_, err := BuildSegmentQuery(models.RuleSet{
				Rules: []models.Rule{{Field: models.RuleFieldCity, Operator: op, Value: "Pune"}},
			}, testNow)
			var unsupported *UnsupportedOperatorError
			require.ErrorAs(t, err, &unsupported)
			assert.Equal(t, op, unsupported.Operator)
		})
	}
}

func TestBuildSegmentQueryEmptyRuleSet(t *testing.T) {
	_, err := BuildSegmentQuery(models.RuleSet{Condition: "AND"}, testNow)
	assert.True(t, errors.Is(err, ErrInvalidRuleSet))
}

func TestBuildSegmentQueryConditions(t *testing.T) {
	rules := []models.Rule{
		{Field: models.RuleFieldTotalSpent, Operator: models.OperatorGreaterThan, Value: float64(100)},
		{Field: models.RuleFieldCity, Operator: models.OperatorEqual, Value: "Pune"},
	}

	t.Run("AND is the default", func(t *testing.T) {
		query, err := BuildSegmentQuery(models.RuleSet{Rules: rules}, testNow)
		require.NoError(t, err)
		fragments, ok := query["$and"].([]bson.M)
		require.True(t, ok)
		assert.Len(t, fragments, 2)
	})

	t.Run("OR is case-insensitive", func(t *testing.T) {
		for _, condition := range []string{"OR", "or", "Or"} {
			query, err := BuildSegmentQuery(models.RuleSet{Condition: condition, Rules: rules}, testNow)
			require.NoError(t, err)
			fragments, ok := query["$or"].([]bson.M)
			require.True(t, ok, "condition %q", condition)
			assert.Len(t, fragments, 2)
		}
	})

	t.Run("one fragment per rule in order", func(t *testing.T) {
		query, err := BuildSegmentQuery(models.RuleSet{Condition: "AND", Rules: rules}, testNow)
		require.NoError(t, err)
		fragments := query["$and"].([]bson.M)
		assert.Equal(t, bson.M{"stats.total_spent": bson.M{"$gt": float64(100)}}, fragments[0])
		assert.Equal(t, bson.M{"address.city": bson.M{"$eq": "Pune"}}, fragments[1])
	})
}
