// Package rls evaluates row-level-security rule trees against data rows.
//
// Evaluation fails closed: a row is excluded, never included, on ambiguous
// data. A missing or null field fails every operator except isNull and
// isNotNull, and a non-comparable field fails every ordering operator.
// Malformed rule structure is the one case that raises ConfigError and
// aborts evaluation for the row set.
package rls

import (
	"fmt"
	"strings"
	"time"

	"lakeboard/internal/domain"
)

// Evaluate reports whether the rule holds for the row. The rule's
// conditions are joined by its combinator: AND requires all true, OR at
// least one.
func Evaluate(rule domain.RLSRule, row domain.Row) (bool, error) {
	if err := rule.Validate(); err != nil {
		return false, err
	}
	return evaluateRule(rule, row), nil
}

// EvaluateConfig reports whether every rule in the config holds for the
// row. An empty rule list evaluates to true — no restriction.
func EvaluateConfig(cfg *domain.RLSConfig, row domain.Row) (bool, error) {
	if cfg == nil {
		return true, nil
	}
	if err := cfg.Validate(); err != nil {
		return false, err
	}
	for i := range cfg.Rules {
		if !evaluateRule(cfg.Rules[i], row) {
			return false, nil
		}
	}
	return true, nil
}

// EvaluateAll reports whether the conjunction of all configs holds for the
// row. This is the effective RLS predicate across every matching share a
// viewer holds on a dashboard.
func EvaluateAll(cfgs []*domain.RLSConfig, row domain.Row) (bool, error) {
	for _, cfg := range cfgs {
		ok, err := EvaluateConfig(cfg, row)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// evaluateRule assumes the rule has already been validated.
func evaluateRule(rule domain.RLSRule, row domain.Row) bool {
	if len(rule.Conditions) == 0 {
		return true
	}
	for i := range rule.Conditions {
		hit := evaluateCondition(rule.Conditions[i], row)
		if rule.Combinator == domain.CombinatorOr {
			if hit {
				return true
			}
		} else if !hit {
			return false
		}
	}
	return rule.Combinator != domain.CombinatorOr
}

// evaluateCondition assumes the condition has already been validated.
func evaluateCondition(c domain.RLSCondition, row domain.Row) bool {
	field, present := row[c.Field]
	isNull := !present || field == nil

	switch c.Operator {
	case domain.OpIsNull:
		return isNull
	case domain.OpIsNotNull:
		return !isNull
	}
	if isNull {
		return false
	}

	switch c.Operator {
	case domain.OpEq:
		return valuesEqual(field, c.Value)
	case domain.OpNeq:
		return !valuesEqual(field, c.Value)
	case domain.OpIn:
		return valueIn(field, c.Values)
	case domain.OpNotIn:
		return !valueIn(field, c.Values)
	case domain.OpGt:
		cmp, ok := compareOrdered(field, c.Value)
		return ok && cmp > 0
	case domain.OpGte:
		cmp, ok := compareOrdered(field, c.Value)
		return ok && cmp >= 0
	case domain.OpLt:
		cmp, ok := compareOrdered(field, c.Value)
		return ok && cmp < 0
	case domain.OpLte:
		cmp, ok := compareOrdered(field, c.Value)
		return ok && cmp <= 0
	case domain.OpBetween:
		low, okLow := compareOrdered(field, c.Value)
		high, okHigh := compareOrdered(field, c.Value2)
		return okLow && okHigh && low >= 0 && high <= 0
	case domain.OpContains:
		return strings.Contains(stringify(field), stringify(c.Value))
	case domain.OpStartsWith:
		return strings.HasPrefix(stringify(field), stringify(c.Value))
	case domain.OpEndsWith:
		return strings.HasSuffix(stringify(field), stringify(c.Value))
	}
	return false
}

// valuesEqual performs type-aware equality: numeric operands compare
// numerically, everything else compares as strings.
func valuesEqual(a, b interface{}) bool {
	fa, aNum := asNumber(a)
	fb, bNum := asNumber(b)
	if aNum && bNum {
		return fa == fb
	}
	if aNum != bNum {
		return false
	}
	return stringify(a) == stringify(b)
}

// valueIn treats values as a set under valuesEqual semantics.
func valueIn(field interface{}, values []interface{}) bool {
	for _, v := range values {
		if valuesEqual(field, v) {
			return true
		}
	}
	return false
}

// compareOrdered compares a row field against a condition operand for the
// ordering operators. Numbers compare numerically and dates
// chronologically; a non-comparable pairing reports ok=false so the
// operator fails closed.
func compareOrdered(field, operand interface{}) (cmp int, ok bool) {
	if fa, aNum := asNumber(field); aNum {
		if fb, bNum := asNumber(operand); bNum {
			switch {
			case fa < fb:
				return -1, true
			case fa > fb:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}
	ta, aTime := asTime(field)
	tb, bTime := asTime(operand)
	if aTime && bTime {
		switch {
		case ta.Before(tb):
			return -1, true
		case ta.After(tb):
			return 1, true
		default:
			return 0, true
		}
	}
	return 0, false
}

func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

func asTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
