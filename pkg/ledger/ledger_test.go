package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearfreight/tariffcore/pkg/ledger"
)

func fixedClock() func() time.Time {
	t := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func testDecision(confidence float64) ledger.Decision {
	return ledger.Decision{
		RuleID:      "gri_1",
		CriterionID: "heading_match",
		Question:    "Does a heading describe the product as presented?",
		Answer:      "yes",
		Reasoning:   "Heading 8471 covers automatic data processing machines and describes the product as presented.",
		Confidence:  confidence,
		LegalBasis:  []string{"GRI 1", "Chapter 84 Note 6(A)"},
	}
}

func TestLogDecision_AppendsWithHashAndCorrelatedAudit(t *testing.T) {
	l := ledger.New("cls-1", ledger.WithClock(fixedClock()))

	d, err := l.LogDecision(testDecision(0.9), "broker@example.com")
	require.NoError(t, err)

	assert.Regexp(t, `^sha256:[0-9a-f]{64}$`, d.Hash)
	assert.False(t, d.Timestamp.IsZero())

	decisions := l.Decisions()
	require.Len(t, decisions, 1)
	assert.Equal(t, d.Hash, decisions[0].Hash)

	trail := l.AuditTrail()
	require.Len(t, trail, 1)
	assert.Equal(t, ledger.ActionDecisionRecorded, trail[0].Action)
	assert.Equal(t, "broker@example.com", trail[0].Actor)
	assert.Equal(t, d.Hash, trail[0].Details["decision_hash"])
}

func TestLogDecision_RequiredFields(t *testing.T) {
	l := ledger.New("cls-1")

	d := testDecision(0.9)
	d.RuleID = ""
	_, err := l.LogDecision(d, "actor")
	assert.ErrorIs(t, err, ledger.ErrMissingRuleID)

	d = testDecision(0.9)
	d.CriterionID = ""
	_, err = l.LogDecision(d, "actor")
	assert.ErrorIs(t, err, ledger.ErrMissingCriterionID)

	d = testDecision(0.9)
	d.Reasoning = ""
	_, err = l.LogDecision(d, "actor")
	assert.ErrorIs(t, err, ledger.ErrMissingReasoning)

	d = testDecision(1.2)
	_, err = l.LogDecision(d, "actor")
	assert.ErrorIs(t, err, ledger.ErrConfidenceRange)

	assert.Empty(t, l.Decisions())
}

func TestDecisionHash_BoundToClassification(t *testing.T) {
	d := testDecision(0.9)
	h1, err := ledger.DecisionHash(d, "cls-1")
	require.NoError(t, err)
	h2, err := ledger.DecisionHash(d, "cls-2")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestOverallConfidence(t *testing.T) {
	l := ledger.New("cls-1")
	assert.Zero(t, l.OverallConfidence())

	_, err := l.LogDecision(testDecision(0.8), "actor")
	require.NoError(t, err)
	_, err = l.LogDecision(testDecision(0.6), "actor")
	require.NoError(t, err)

	assert.InDelta(t, 0.7, l.OverallConfidence(), 0.0001)
}

func TestGenerateLegalSummary(t *testing.T) {
	l := ledger.New("cls-1", ledger.WithClock(fixedClock()))

	_, err := l.LogDecision(testDecision(0.9), "actor")
	require.NoError(t, err)
	_, err = l.LogDecision(testDecision(0.55), "actor")
	require.NoError(t, err)
	_, err = l.LogAuditEvent("note_reviewed", "actor", map[string]interface{}{"note": "Section XVI Note 3"})
	require.NoError(t, err)

	s := l.GenerateLegalSummary()
	assert.Equal(t, "cls-1", s.ClassificationID)
	assert.Equal(t, 2, s.DecisionCount)
	assert.Equal(t, 3, s.AuditEntryCount)
	require.Len(t, s.LowConfidenceDecisions, 1)
	assert.InDelta(t, 0.55, s.LowConfidenceDecisions[0].Confidence, 0.0001)
	assert.True(t, s.EndTime.After(s.StartTime))
}

func TestGenerateLegalSummary_CustomThreshold(t *testing.T) {
	l := ledger.New("cls-1", ledger.WithExpertReviewThreshold(0.9))
	_, err := l.LogDecision(testDecision(0.85), "actor")
	require.NoError(t, err)

	s := l.GenerateLegalSummary()
	assert.Len(t, s.LowConfidenceDecisions, 1)
}

func TestVerifyIntegrity_FlipsOnTamper(t *testing.T) {
	l := ledger.New("cls-1")
	_, err := l.LogAuditEvent("rule_applied", "actor", map[string]interface{}{"rule_id": "gri_1"})
	require.NoError(t, err)
	_, err = l.LogDecision(testDecision(0.9), "actor")
	require.NoError(t, err)

	assert.True(t, l.VerifyIntegrity())

	trail := l.AuditTrail()
	trail[0].Details["rule_id"] = "gri_5a"
	assert.False(t, l.VerifyIntegrity(), "tampered details must break verification")
}

func TestVerifyIntegrity_EmptyLedger(t *testing.T) {
	assert.True(t, ledger.New("cls-1").VerifyIntegrity())
}

func TestCompleteClassification(t *testing.T) {
	l := ledger.New("cls-1")

	entry, err := l.CompleteClassification("8471.30.00", 0.62, "broker@example.com")
	require.NoError(t, err)
	assert.Equal(t, ledger.ActionClassificationCompleted, entry.Action)
	assert.Equal(t, "8471.30.00", entry.Details["final_code"])
	assert.Equal(t, true, entry.Details["needs_expert_review"], "confidence below threshold flags, never blocks")
	assert.True(t, l.Completed())

	_, err = l.CompleteClassification("8471.30.00", 0.62, "actor")
	assert.ErrorIs(t, err, ledger.ErrAlreadyCompleted)

	_, err = l.LogDecision(testDecision(0.9), "actor")
	assert.ErrorIs(t, err, ledger.ErrAlreadyCompleted)

	_, err = l.LogAuditEvent("rule_applied", "actor", map[string]interface{}{"rule_id": "gri_1"})
	assert.ErrorIs(t, err, ledger.ErrAlreadyCompleted, "completed record must reject audit appends")
}
