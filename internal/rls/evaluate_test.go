package rls

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakeboard/internal/domain"
)

func singleCondition(c domain.RLSCondition) domain.RLSRule {
	return domain.RLSRule{
		Combinator: domain.CombinatorAnd,
		Conditions: []domain.RLSCondition{c},
	}
}

func TestEvaluateOperators(t *testing.T) {
	row := domain.Row{
		"region":  "EMEA",
		"amount":  1500.0,
		"count":   int64(7),
		"name":    "Quarterly Revenue",
		"deleted": nil,
	}

	tests := []struct {
		name string
		cond domain.RLSCondition
		want bool
	}{
		{"eq string match", domain.RLSCondition{Field: "region", Operator: domain.OpEq, Value: "EMEA"}, true},
		{"eq string mismatch", domain.RLSCondition{Field: "region", Operator: domain.OpEq, Value: "APAC"}, false},
		{"eq numeric cross-type", domain.RLSCondition{Field: "count", Operator: domain.OpEq, Value: 7.0}, true},
		{"eq numeric vs string", domain.RLSCondition{Field: "count", Operator: domain.OpEq, Value: "7"}, false},
		{"neq", domain.RLSCondition{Field: "region", Operator: domain.OpNeq, Value: "APAC"}, true},
		{"in hit", domain.RLSCondition{Field: "region", Operator: domain.OpIn, Values: []interface{}{"APAC", "EMEA"}}, true},
		{"in miss", domain.RLSCondition{Field: "region", Operator: domain.OpIn, Values: []interface{}{"APAC", "AMER"}}, false},
		{"notIn hit", domain.RLSCondition{Field: "region", Operator: domain.OpNotIn, Values: []interface{}{"APAC", "AMER"}}, true},
		{"notIn miss", domain.RLSCondition{Field: "region", Operator: domain.OpNotIn, Values: []interface{}{"EMEA"}}, false},
		{"gt", domain.RLSCondition{Field: "amount", Operator: domain.OpGt, Value: 1000}, true},
		{"gt equal is false", domain.RLSCondition{Field: "amount", Operator: domain.OpGt, Value: 1500}, false},
		{"gte equal", domain.RLSCondition{Field: "amount", Operator: domain.OpGte, Value: 1500}, true},
		{"lt", domain.RLSCondition{Field: "amount", Operator: domain.OpLt, Value: 2000}, true},
		{"lte miss", domain.RLSCondition{Field: "amount", Operator: domain.OpLte, Value: 1000}, false},
		{"between inclusive low", domain.RLSCondition{Field: "amount", Operator: domain.OpBetween, Value: 1500, Value2: 2000}, true},
		{"between inclusive high", domain.RLSCondition{Field: "amount", Operator: domain.OpBetween, Value: 1000, Value2: 1500}, true},
		{"between outside", domain.RLSCondition{Field: "amount", Operator: domain.OpBetween, Value: 0, Value2: 100}, false},
		{"contains", domain.RLSCondition{Field: "name", Operator: domain.OpContains, Value: "Revenue"}, true},
		{"startsWith", domain.RLSCondition{Field: "name", Operator: domain.OpStartsWith, Value: "Quarterly"}, true},
		{"endsWith miss", domain.RLSCondition{Field: "name", Operator: domain.OpEndsWith, Value: "Quarterly"}, false},
		{"isNull on nil value", domain.RLSCondition{Field: "deleted", Operator: domain.OpIsNull}, true},
		{"isNull on missing field", domain.RLSCondition{Field: "ghost", Operator: domain.OpIsNull}, true},
		{"isNull on present value", domain.RLSCondition{Field: "region", Operator: domain.OpIsNull}, false},
		{"isNotNull on present value", domain.RLSCondition{Field: "region", Operator: domain.OpIsNotNull}, true},
		{"isNotNull on missing field", domain.RLSCondition{Field: "ghost", Operator: domain.OpIsNotNull}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(singleCondition(tt.cond), row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// A zero value is present, not null. isNull must distinguish the two.
func TestZeroValueIsNotNull(t *testing.T) {
	row := domain.Row{"amount": 0}

	got, err := Evaluate(singleCondition(domain.RLSCondition{Field: "amount", Operator: domain.OpIsNull}), row)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = Evaluate(singleCondition(domain.RLSCondition{Field: "amount", Operator: domain.OpEq, Value: 0}), row)
	require.NoError(t, err)
	assert.True(t, got)
}

// Null or missing fields fail every operator except the null checks.
func TestNullFailsClosed(t *testing.T) {
	row := domain.Row{"deleted": nil}

	for _, op := range []domain.Operator{
		domain.OpEq, domain.OpNeq, domain.OpIn, domain.OpNotIn,
		domain.OpGt, domain.OpContains,
	} {
		cond := domain.RLSCondition{Field: "deleted", Operator: op, Value: "x", Values: []interface{}{"x"}}
		got, err := Evaluate(singleCondition(cond), row)
		require.NoError(t, err, "operator %s", op)
		assert.False(t, got, "operator %s must fail on null", op)
	}
}

// Ordering operators on a non-comparable pairing exclude the row instead of
// guessing.
func TestNonComparableFailsClosed(t *testing.T) {
	row := domain.Row{"region": "EMEA"}

	got, err := Evaluate(singleCondition(domain.RLSCondition{Field: "region", Operator: domain.OpGt, Value: 100}), row)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestDateComparison(t *testing.T) {
	row := domain.Row{
		"created": "2026-03-15",
		"updated": time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC),
	}

	got, err := Evaluate(singleCondition(domain.RLSCondition{
		Field: "created", Operator: domain.OpGte, Value: "2026-01-01",
	}), row)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = Evaluate(singleCondition(domain.RLSCondition{
		Field: "updated", Operator: domain.OpBetween,
		Value: "2026-03-01T00:00:00Z", Value2: "2026-04-01T00:00:00Z",
	}), row)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestCombinators(t *testing.T) {
	row := domain.Row{"region": "EMEA", "amount": 50}

	regionHit := domain.RLSCondition{Field: "region", Operator: domain.OpEq, Value: "EMEA"}
	amountMiss := domain.RLSCondition{Field: "amount", Operator: domain.OpGt, Value: 100}

	and := domain.RLSRule{Combinator: domain.CombinatorAnd, Conditions: []domain.RLSCondition{regionHit, amountMiss}}
	got, err := Evaluate(and, row)
	require.NoError(t, err)
	assert.False(t, got, "AND requires every condition")

	or := domain.RLSRule{Combinator: domain.CombinatorOr, Conditions: []domain.RLSCondition{regionHit, amountMiss}}
	got, err = Evaluate(or, row)
	require.NoError(t, err)
	assert.True(t, got, "OR requires one condition")
}

func TestEmptyRuleMatchesEverything(t *testing.T) {
	got, err := Evaluate(domain.RLSRule{Combinator: domain.CombinatorAnd}, domain.Row{"x": 1})
	require.NoError(t, err)
	assert.True(t, got)
}

func TestMalformedRuleIsConfigError(t *testing.T) {
	tests := []struct {
		name string
		cond domain.RLSCondition
	}{
		{"unknown operator", domain.RLSCondition{Field: "x", Operator: "matches", Value: "y"}},
		{"in without values", domain.RLSCondition{Field: "x", Operator: domain.OpIn}},
		{"between without second operand", domain.RLSCondition{Field: "x", Operator: domain.OpBetween, Value: 1}},
		{"eq without operand", domain.RLSCondition{Field: "x", Operator: domain.OpEq}},
		{"missing field", domain.RLSCondition{Operator: domain.OpEq, Value: "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(singleCondition(tt.cond), domain.Row{"x": "y"})
			require.Error(t, err)
			var cfgErr *domain.ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestEvaluateConfig(t *testing.T) {
	cfg := &domain.RLSConfig{
		Rules: []domain.RLSRule{
			singleCondition(domain.RLSCondition{Field: "region", Operator: domain.OpEq, Value: "EMEA"}),
			singleCondition(domain.RLSCondition{Field: "amount", Operator: domain.OpLt, Value: 100}),
		},
	}

	got, err := EvaluateConfig(cfg, domain.Row{"region": "EMEA", "amount": 50})
	require.NoError(t, err)
	assert.True(t, got)

	got, err = EvaluateConfig(cfg, domain.Row{"region": "EMEA", "amount": 500})
	require.NoError(t, err)
	assert.False(t, got, "rules within a config are conjoined")

	got, err = EvaluateConfig(nil, domain.Row{})
	require.NoError(t, err)
	assert.True(t, got, "nil config means unrestricted")
}

func TestEvaluateAllConjoinsConfigs(t *testing.T) {
	emea := &domain.RLSConfig{Rules: []domain.RLSRule{
		singleCondition(domain.RLSCondition{Field: "region", Operator: domain.OpEq, Value: "EMEA"}),
	}}
	small := &domain.RLSConfig{Rules: []domain.RLSRule{
		singleCondition(domain.RLSCondition{Field: "amount", Operator: domain.OpLte, Value: 100}),
	}}

	got, err := EvaluateAll([]*domain.RLSConfig{emea, small}, domain.Row{"region": "EMEA", "amount": 100})
	require.NoError(t, err)
	assert.True(t, got)

	got, err = EvaluateAll([]*domain.RLSConfig{emea, small}, domain.Row{"region": "EMEA", "amount": 101})
	require.NoError(t, err)
	assert.False(t, got)

	got, err = EvaluateAll(nil, domain.Row{})
	require.NoError(t, err)
	assert.True(t, got)
}
