package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/clearfreight/tariffcore/pkg/gri"
)

// ValidationResult collects rule-level validation findings. Violations are
// data for the operator, never a hard stop.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateRule runs each of the rule's declared validation predicates
// against the field's current value, resolved as the most recent decision
// whose criterion id matches. It does not mutate state.
func (e *Engine) ValidateRule(rule *gri.Rule) ValidationResult {
	var errs []string
	for _, vr := range rule.ValidationRules {
		if msg := e.checkValidationRule(vr); msg != "" {
			errs = append(errs, msg)
		}
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func (e *Engine) checkValidationRule(vr gri.ValidationRule) string {
	answer, answered := e.ctx.answerFor(vr.Field)

	switch vr.Kind {
	case gri.ValidationRequired:
		if !answered || strings.TrimSpace(answer) == "" {
			return vr.Message
		}

	case gri.ValidationMinLength:
		if !answered || utf8.RuneCountInString(answer) < int(vr.Min) {
			return vr.Message
		}

	case gri.ValidationNumericRange:
		f, err := strconv.ParseFloat(strings.TrimSpace(answer), 64)
		if !answered || err != nil || f < vr.Min || f > vr.Max {
			return vr.Message
		}

	case gri.ValidationPercentageSum:
		if len(e.ctx.Materials) == 0 {
			return vr.Message + ": no material breakdown recorded"
		}
		var sum float64
		for _, m := range e.ctx.Materials {
			sum += m.Percentage
		}
		if math.Abs(sum-100) > e.cfg.PercentageTolerance {
			return fmt.Sprintf("%s (got %.2f)", vr.Message, sum)
		}

	case gri.ValidationExpression:
		ok, err := e.cel.eval(vr.Expression, answer, e.expressionContext())
		if err != nil {
			return fmt.Sprintf("%s (expression error: %v)", vr.Message, err)
		}
		if !ok {
			return vr.Message
		}

	default:
		return fmt.Sprintf("unknown validation kind %q on field %q", vr.Kind, vr.Field)
	}
	return ""
}

// expressionContext exposes the decision history and materials to CEL
// validation expressions.
func (e *Engine) expressionContext() map[string]interface{} {
	answers := make(map[string]interface{})
	for _, d := range e.ctx.Decisions {
		answers[d.CriterionID] = d.Answer
	}
	materials := make([]map[string]interface{}, 0, len(e.ctx.Materials))
	for _, m := range e.ctx.Materials {
		materials = append(materials, map[string]interface{}{
			"name":       m.Name,
			"percentage": m.Percentage,
			"basis":      string(m.Basis),
		})
	}
	return map[string]interface{}{
		"answers":             answers,
		"materials":           materials,
		"product_description": e.ctx.ProductDescription,
		"current_rule":        e.ctx.CurrentRuleID,
	}
}
