// Package engine implements the classification state machine: it walks a
// single classification through the GRI rule catalog, records decisions into
// the ledger, and evaluates which rule applies next.
//
// The engine owns mechanism, not policy. MoveToNextRule accepts any catalog
// rule id regardless of the current state; whether a sequence of transitions
// was legally legitimate is judged after the fact by the compliance
// validator, so corrective or exploratory jumps stay possible while still
// being auditable.
package engine

import (
	"github.com/clearfreight/tariffcore/pkg/essential"
	"github.com/clearfreight/tariffcore/pkg/ledger"
)

// Context is the full state of one classification. It is owned exclusively
// by one Engine instance and never shared between classifications.
type Context struct {
	ClassificationID   string               `json:"classification_id"`
	ProductDescription string               `json:"product_description"`
	CurrentRuleID      string               `json:"current_rule_id"`
	Decisions          []ledger.Decision    `json:"decisions"`
	Materials          []essential.Material `json:"materials,omitempty"`
	SuggestedHeadings  []string             `json:"suggested_headings,omitempty"`
	ExcludedHeadings   []string             `json:"excluded_headings,omitempty"`
}

// clone returns a defensive deep copy.
func (c *Context) clone() *Context {
	out := &Context{
		ClassificationID:   c.ClassificationID,
		ProductDescription: c.ProductDescription,
		CurrentRuleID:      c.CurrentRuleID,
	}
	if len(c.Decisions) > 0 {
		out.Decisions = make([]ledger.Decision, len(c.Decisions))
		copy(out.Decisions, c.Decisions)
		for i := range out.Decisions {
			if len(c.Decisions[i].LegalBasis) > 0 {
				out.Decisions[i].LegalBasis = append([]string(nil), c.Decisions[i].LegalBasis...)
			}
		}
	}
	if len(c.Materials) > 0 {
		out.Materials = append([]essential.Material(nil), c.Materials...)
	}
	if len(c.SuggestedHeadings) > 0 {
		out.SuggestedHeadings = append([]string(nil), c.SuggestedHeadings...)
	}
	if len(c.ExcludedHeadings) > 0 {
		out.ExcludedHeadings = append([]string(nil), c.ExcludedHeadings...)
	}
	return out
}

// answerFor returns the answer of the most recent decision recorded for the
// given criterion id.
func (c *Context) answerFor(criterionID string) (string, bool) {
	for i := len(c.Decisions) - 1; i >= 0; i-- {
		if c.Decisions[i].CriterionID == criterionID {
			return c.Decisions[i].Answer, true
		}
	}
	return "", false
}
