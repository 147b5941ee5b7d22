package gri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalog_FifteenEntries(t *testing.T) {
	c := NewCatalog()
	assert.Equal(t, 15, c.Len())
}

func TestCatalog_Get(t *testing.T) {
	c := NewCatalog()

	r, err := c.Get(RuleGRI3B)
	require.NoError(t, err)
	assert.Equal(t, "GRI 3(b) — Essential Character", r.Name)
	assert.InDelta(t, 3.2, r.Order, 0.001)

	_, err = c.Get("gri_99")
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestCatalog_NextStepTargetsExist(t *testing.T) {
	c := NewCatalog()
	for _, r := range c.Rules() {
		for _, step := range r.NextSteps {
			if step.Terminal() {
				continue
			}
			assert.True(t, c.Has(step.Target),
				"rule %s references unknown target %s", r.ID, step.Target)
		}
	}
}

func TestCatalog_ConditionFieldsAreDeclaredCriteria(t *testing.T) {
	c := NewCatalog()
	declared := map[string]bool{}
	for _, r := range c.Rules() {
		for _, cr := range r.Criteria {
			declared[cr.ID] = true
		}
	}
	for _, r := range c.Rules() {
		for _, step := range r.NextSteps {
			for _, cond := range step.Conditions {
				assert.True(t, declared[cond.Field],
					"rule %s condition references undeclared criterion %s", r.ID, cond.Field)
			}
		}
	}
}

func TestCatalog_OrderedByWorkflowPosition(t *testing.T) {
	c := NewCatalog()
	rules := c.Rules()
	for i := 1; i < len(rules); i++ {
		assert.LessOrEqual(t, rules[i-1].Order, rules[i].Order)
	}
	assert.Equal(t, RulePreClassification, rules[0].ID)
	assert.Equal(t, RuleFinalCheck, rules[len(rules)-1].ID)
	assert.InDelta(t, 7.5, c.MaxOrder(), 0.001)
}

func TestCatalog_Rule3AlternativesShareIntegerOrder(t *testing.T) {
	c := NewCatalog()
	for _, id := range []string{RuleGRI3A, RuleGRI3B, RuleGRI3C} {
		r, err := c.Get(id)
		require.NoError(t, err)
		assert.Equal(t, 3, int(r.Order), "rule %s must sit inside GRI 3", id)
	}
}

func TestRule_Criterion(t *testing.T) {
	c := NewCatalog()
	r, err := c.Get(RuleGRI1)
	require.NoError(t, err)

	cr := r.Criterion("heading_match")
	require.NotNil(t, cr)
	assert.Equal(t, AnswerSelect, cr.Type)
	assert.Nil(t, r.Criterion("nonexistent"))
}

func TestCatalog_TerminalStepOnlyAtFinalCheck(t *testing.T) {
	c := NewCatalog()
	for _, r := range c.Rules() {
		for _, step := range r.NextSteps {
			if step.Terminal() {
				assert.Equal(t, RuleFinalCheck, r.ID)
			}
		}
	}
}
