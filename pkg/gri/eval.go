package gri

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldResolver resolves a condition field (a decision criterion id) to its
// current value, normally the answer of the most recent decision recorded for
// that criterion. ok is false when no decision references the field yet.
type FieldResolver func(field string) (value interface{}, ok bool)

// EvaluateConditions reduces a NextStep's condition list against the decision
// history. Conditions combine left-to-right under AND; the first condition
// tagged LogicOR flips the running reduction to OR for the remainder of the
// list. An empty list is vacuously true.
func EvaluateConditions(conds []Condition, resolve FieldResolver) bool {
	if len(conds) == 0 {
		return true
	}

	mode := LogicAND
	acc := evalCondition(conds[0], resolve)
	for _, c := range conds[1:] {
		if c.Logic == LogicOR {
			mode = LogicOR
		}
		hit := evalCondition(c, resolve)
		if mode == LogicOR {
			acc = acc || hit
		} else {
			acc = acc && hit
		}
	}
	return acc
}

func evalCondition(c Condition, resolve FieldResolver) bool {
	value, ok := resolve(c.Field)
	if !ok {
		// An unanswered criterion satisfies nothing, except that it is
		// trivially absent from any exclusion list.
		return c.Operator == OpNotIn
	}

	switch c.Operator {
	case OpEquals:
		return looseEquals(value, c.Value)
	case OpContains:
		return contains(value, c.Value)
	case OpGreaterThan:
		a, aok := toFloat(value)
		b, bok := toFloat(c.Value)
		return aok && bok && a > b
	case OpLessThan:
		a, aok := toFloat(value)
		b, bok := toFloat(c.Value)
		return aok && bok && a < b
	case OpIn:
		return inList(value, c.Value)
	case OpNotIn:
		return !inList(value, c.Value)
	default:
		return false
	}
}

// looseEquals compares numerically when both sides parse as numbers,
// otherwise as case-folded strings. Decision answers arrive as free-form
// text, so "Yes" must match "yes" and "60" must match 60.
func looseEquals(a, b interface{}) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	return strings.EqualFold(toString(a), toString(b))
}

func contains(haystack, needle interface{}) bool {
	switch h := haystack.(type) {
	case []string:
		for _, item := range h {
			if looseEquals(item, needle) {
				return true
			}
		}
		return false
	case []interface{}:
		for _, item := range h {
			if looseEquals(item, needle) {
				return true
			}
		}
		return false
	default:
		return strings.Contains(
			strings.ToLower(toString(haystack)),
			strings.ToLower(toString(needle)),
		)
	}
}

func inList(value, list interface{}) bool {
	switch l := list.(type) {
	case []string:
		for _, item := range l {
			if looseEquals(value, item) {
				return true
			}
		}
	case []interface{}:
		for _, item := range l {
			if looseEquals(value, item) {
				return true
			}
		}
	case []float64:
		for _, item := range l {
			if looseEquals(value, item) {
				return true
			}
		}
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
