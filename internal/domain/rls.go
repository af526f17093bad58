package domain

// Row-level security configuration attached to a dashboard share. An empty
// AllowedPageIDs list means no page restriction — restriction is additive
// allow-listing, never deny-listing.
type RLSConfig struct {
	AllowedPageIDs []string  `json:"allowedPageIds,omitempty"`
	Rules          []RLSRule `json:"rules,omitempty"`
}

// Validate checks every rule in the config.
func (c *RLSConfig) Validate() error {
	for i := range c.Rules {
		if err := c.Rules[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Combinator joins the conditions of a rule.
type Combinator string

const (
	CombinatorAnd Combinator = "AND"
	CombinatorOr  Combinator = "OR"
)

// RLSRule is one boolean node: its conditions joined by the combinator.
type RLSRule struct {
	Combinator Combinator     `json:"combinator"`
	Conditions []RLSCondition `json:"conditions"`
}

// Validate checks the rule's combinator and every condition.
func (r *RLSRule) Validate() error {
	if r.Combinator != CombinatorAnd && r.Combinator != CombinatorOr {
		return ErrConfig("unknown combinator %q", r.Combinator)
	}
	for i := range r.Conditions {
		if err := r.Conditions[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Operator is a leaf predicate kind. Each operator carries a fixed operand
// shape: none, a single value, a value pair, or a value list.
type Operator string

const (
	OpEq         Operator = "eq"
	OpNeq        Operator = "neq"
	OpIn         Operator = "in"
	OpNotIn      Operator = "notIn"
	OpGt         Operator = "gt"
	OpGte        Operator = "gte"
	OpLt         Operator = "lt"
	OpLte        Operator = "lte"
	OpBetween    Operator = "between"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "startsWith"
	OpEndsWith   Operator = "endsWith"
	OpIsNull     Operator = "isNull"
	OpIsNotNull  Operator = "isNotNull"
)

// operandShape tags the operand arity an operator requires.
type operandShape int

const (
	operandNone operandShape = iota
	operandOne
	operandPair
	operandList
)

var operatorShapes = map[Operator]operandShape{
	OpEq:         operandOne,
	OpNeq:        operandOne,
	OpIn:         operandList,
	OpNotIn:      operandList,
	OpGt:         operandOne,
	OpGte:        operandOne,
	OpLt:         operandOne,
	OpLte:        operandOne,
	OpBetween:    operandPair,
	OpContains:   operandOne,
	OpStartsWith: operandOne,
	OpEndsWith:   operandOne,
	OpIsNull:     operandNone,
	OpIsNotNull:  operandNone,
}

// Known reports whether the operator is part of the evaluation language.
func (o Operator) Known() bool {
	_, ok := operatorShapes[o]
	return ok
}

// RLSCondition is one leaf predicate over a single row field. Value, Value2,
// and Values are populated per the operator's operand shape; Validate
// rejects conditions whose shape does not match their operator.
type RLSCondition struct {
	Field    string        `json:"field"`
	Operator Operator      `json:"operator"`
	Value    interface{}   `json:"value,omitempty"`
	Value2   interface{}   `json:"value2,omitempty"`
	Values   []interface{} `json:"values,omitempty"`
}

// Validate checks the condition's operator and required operands. A
// malformed condition is a ConfigError — evaluation never silently passes
// over rules it cannot interpret.
func (c *RLSCondition) Validate() error {
	if c.Field == "" {
		return ErrConfig("condition field is required")
	}
	shape, ok := operatorShapes[c.Operator]
	if !ok {
		return ErrConfig("unknown operator %q", c.Operator)
	}
	switch shape {
	case operandOne:
		if c.Value == nil {
			return ErrConfig("operator %q requires a value", c.Operator)
		}
	case operandPair:
		if c.Value == nil || c.Value2 == nil {
			return ErrConfig("operator %q requires both bounds", c.Operator)
		}
	case operandList:
		if len(c.Values) == 0 {
			return ErrConfig("operator %q requires a non-empty value list", c.Operator)
		}
	}
	return nil
}

// Row is one data row under RLS evaluation: field name to value. A field
// absent from the map is treated as null.
type Row map[string]interface{}
