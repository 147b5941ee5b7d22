// Package gri defines the General Rules for Interpretation catalog: the rule
// definitions, the condition DSL used to pick the next rule, and the
// evaluator that reduces a condition list against recorded decisions.
//
// The catalog is pure data. It is constructed once at process start and is
// safe for concurrent readers; nothing in this package mutates a Rule after
// construction.
package gri

import "errors"

// ErrRuleNotFound is returned when a rule id is not present in the catalog.
// Callers treat this as a programming error, not a data problem.
var ErrRuleNotFound = errors.New("gri: rule not found in catalog")

// Operator is the closed set of comparison operators usable in a Condition.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpIn          Operator = "in"
	OpNotIn       Operator = "not_in"
)

// Logic controls how a condition combines with its predecessors inside one
// NextStep. The zero value combines with AND.
type Logic string

const (
	LogicAND Logic = "AND"
	LogicOR  Logic = "OR"
)

// Condition is a single comparison against the decision history. Field names
// a decision criterion id; the comparison runs against the answer of the most
// recent decision recorded for that criterion.
type Condition struct {
	Field    string      `json:"field"`
	Operator Operator    `json:"operator"`
	Value    interface{} `json:"value"`
	Logic    Logic       `json:"logic,omitempty"`
}

// NextStep is one candidate transition out of a rule. An empty Target marks a
// terminal step: the classification workflow ends when it is taken. An empty
// Conditions list evaluates to true.
type NextStep struct {
	Conditions []Condition `json:"conditions"`
	Target     string      `json:"target,omitempty"`
}

// Terminal reports whether taking this step ends the workflow.
func (s NextStep) Terminal() bool { return s.Target == "" }

// ValidationKind is the closed set of builtin validation predicates a rule
// can declare over its input fields.
type ValidationKind string

const (
	// ValidationRequired fails when the field has no recorded answer.
	ValidationRequired ValidationKind = "required"
	// ValidationMinLength fails when the answer is shorter than Min runes.
	ValidationMinLength ValidationKind = "min_length"
	// ValidationNumericRange fails when the answer parses to a number outside [Min, Max].
	ValidationNumericRange ValidationKind = "numeric_range"
	// ValidationPercentageSum fails when the context's material percentages
	// do not sum to 100 within the configured tolerance.
	ValidationPercentageSum ValidationKind = "percentage_sum"
	// ValidationExpression evaluates a CEL expression against the answer and
	// context; fails when the expression does not return true.
	ValidationExpression ValidationKind = "expression"
)

// ValidationRule is a declared predicate over one input field of a rule.
// Violations are reported as human-readable messages, never as a hard stop.
type ValidationRule struct {
	Field      string         `json:"field"`
	Kind       ValidationKind `json:"kind"`
	Min        float64        `json:"min,omitempty"`
	Max        float64        `json:"max,omitempty"`
	Expression string         `json:"expression,omitempty"`
	Message    string         `json:"message"`
}

// AnswerType hints the form layer how to collect a criterion's answer. The
// engine itself only ever sees the answer as a string.
type AnswerType string

const (
	AnswerBoolean   AnswerType = "boolean"
	AnswerText      AnswerType = "text"
	AnswerSelect    AnswerType = "select"
	AnswerMaterials AnswerType = "materials"
)

// DecisionCriterion is one question a rule asks before it can be resolved.
type DecisionCriterion struct {
	ID       string     `json:"id"`
	Question string     `json:"question"`
	Type     AnswerType `json:"type"`
	Options  []string   `json:"options,omitempty"`
}

// Rule is a single GRI catalog entry. Order establishes the expected position
// in the workflow; fractional orders denote analysis steps inserted between
// the official rules. Rules sharing an integer order (3a/3b/3c) are mutually
// exclusive resolutions, not a sequence.
type Rule struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	LegalText       string              `json:"legal_text"`
	Order           float64             `json:"order"`
	RequiredInputs  []string            `json:"required_inputs,omitempty"`
	ValidationRules []ValidationRule    `json:"validation_rules,omitempty"`
	Criteria        []DecisionCriterion `json:"criteria,omitempty"`
	NextSteps       []NextStep          `json:"next_steps,omitempty"`
}

// Criterion returns the criterion with the given id, or nil.
func (r *Rule) Criterion(id string) *DecisionCriterion {
	for i := range r.Criteria {
		if r.Criteria[i].ID == id {
			return &r.Criteria[i]
		}
	}
	return nil
}
