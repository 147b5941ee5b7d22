package compliance

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearfreight/tariffcore/pkg/config"
	"github.com/clearfreight/tariffcore/pkg/engine"
	"github.com/clearfreight/tariffcore/pkg/essential"
	"github.com/clearfreight/tariffcore/pkg/gri"
	"github.com/clearfreight/tariffcore/pkg/ledger"
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	}
}

func newTestValidator() *Validator {
	return NewValidator(gri.NewCatalog(), WithClock(fixedClock()))
}

func newTestEngine(t *testing.T, opts ...engine.Option) *engine.Engine {
	t.Helper()
	led := ledger.New("cls-compliance-1")
	eng, err := engine.New(gri.NewCatalog(), config.Default(), led,
		"industrial machine housing of steel with a decorative plastic trim panel", opts...)
	require.NoError(t, err)
	return eng
}

func decision(ruleID, criterionID, answer string) ledger.Decision {
	return ledger.Decision{
		RuleID:      ruleID,
		CriterionID: criterionID,
		Answer:      answer,
		Reasoning:   "The product description, composition and commercial presentation support this answer.",
		Confidence:  0.85,
		LegalBasis:  []string{"GRI 1"},
	}
}

func TestValidatePhaseCompletion_FlagsUnmetMandatorySteps(t *testing.T) {
	v := newTestValidator()
	eng := newTestEngine(t)

	res := v.ValidatePhaseCompletion(eng.ExportContext())
	assert.False(t, res.Valid)

	joined := strings.Join(res.Errors, "\n")
	assert.Contains(t, joined, "critical: mandatory step \"complete_description\"")
	assert.Contains(t, joined, "critical: mandatory step \"composition_analysis\"")
}

func TestValidatePhaseCompletion_SatisfiedByDecisions(t *testing.T) {
	v := newTestValidator()
	eng := newTestEngine(t, engine.WithMaterials([]essential.Material{
		{Name: "steel", Percentage: 60, Basis: essential.BasisWeight, Role: "functional"},
		{Name: "plastic", Percentage: 40, Basis: essential.BasisWeight, Role: "decorative"},
	}))

	_, err := eng.RecordDecision(decision(gri.RulePreClassification, "product_description_complete", "yes"))
	require.NoError(t, err)
	_, err = eng.RecordDecision(decision(gri.RuleProductAnalysis, "material_breakdown", "steel 60%, plastic 40%"))
	require.NoError(t, err)

	res := v.ValidatePhaseCompletion(eng.ExportContext())
	assert.True(t, res.Valid, "errors: %v", res.Errors)
}

func TestValidatePhaseCompletion_MaterialSumValidator(t *testing.T) {
	v := newTestValidator()
	eng := newTestEngine(t, engine.WithMaterials([]essential.Material{
		{Name: "steel", Percentage: 60, Basis: essential.BasisWeight},
		{Name: "plastic", Percentage: 30, Basis: essential.BasisWeight},
	}))
	_, err := eng.RecordDecision(decision(gri.RulePreClassification, "product_description_complete", "yes"))
	require.NoError(t, err)
	_, err = eng.RecordDecision(decision(gri.RuleProductAnalysis, "material_breakdown", "steel and plastic"))
	require.NoError(t, err)

	res := v.ValidatePhaseCompletion(eng.ExportContext())
	assert.False(t, res.Valid)
	assert.Contains(t, strings.Join(res.Errors, "\n"), "important: material percentages")
}

func TestMarkStepComplete(t *testing.T) {
	v := newTestValidator()
	eng := newTestEngine(t)

	require.NoError(t, v.MarkStepComplete("complete_description"))
	require.NoError(t, v.MarkStepComplete("composition_analysis"))
	assert.ErrorIs(t, v.MarkStepComplete("gri_1_applied"), ErrUnknownStep)

	res := v.ValidatePhaseCompletion(eng.ExportContext())
	assert.True(t, res.Valid, "errors: %v", res.Errors)
}

func TestMoveToNextPhase_ClearsCompletedSteps(t *testing.T) {
	v := newTestValidator()

	require.NoError(t, v.MarkStepComplete("complete_description"))
	require.NoError(t, v.MoveToNextPhase())
	assert.Equal(t, PhaseRuleApplication, v.CurrentPhase().ID)

	// Marked steps from the previous phase do not carry over.
	assert.Empty(t, v.completed)

	require.NoError(t, v.MoveToNextPhase())
	assert.Equal(t, PhaseValidation, v.CurrentPhase().ID)
	assert.ErrorIs(t, v.MoveToNextPhase(), ErrFinalPhase)
}

func TestRequiredDocumentation_TracksCurrentPhase(t *testing.T) {
	v := newTestValidator()

	docs := v.RequiredDocumentation()
	require.NotEmpty(t, docs)
	assert.Equal(t, "product specification sheet", docs[0].Name)
	assert.True(t, docs[0].Mandatory)

	require.NoError(t, v.MoveToNextPhase())
	docs = v.RequiredDocumentation()
	require.NotEmpty(t, docs)
	assert.Equal(t, "rule-by-rule decision record", docs[0].Name)
}

// The engine deliberately allows a jump from gri_1 straight to gri_5a; the
// compliance report must still surface the sequence violation afterwards.
func TestGenerateComplianceReport_FlagsSkippedRules(t *testing.T) {
	v := newTestValidator()
	eng := newTestEngine(t)

	_, err := eng.RecordDecision(decision(gri.RulePreClassification, "product_description_complete",
		"The description identifies the goods fully, including composition, function and presentation."))
	require.NoError(t, err)
	require.NoError(t, eng.MoveToNextRule(gri.RuleGRI1))
	require.NoError(t, eng.MoveToNextRule(gri.RuleGRI5A))

	rep := v.GenerateComplianceReport(eng.ExportContext())
	assert.False(t, rep.Compliant)

	joined := strings.Join(rep.SequenceFindings, "\n")
	assert.Contains(t, joined, GRI1FirstFinding)
	assert.Contains(t, joined, "sequence violation: reached gri_5a without a decision under mandatory rule gri_1")
	assert.Equal(t, fixedClock()(), rep.GeneratedAt)
}

func TestGenerateComplianceReport_GRI1BeforeOtherRules(t *testing.T) {
	v := newTestValidator()
	eng := newTestEngine(t)

	_, err := eng.RecordDecision(decision(gri.RuleGRI2A, "incomplete_has_character", "yes"))
	require.NoError(t, err)

	rep := v.GenerateComplianceReport(eng.ExportContext())
	assert.Contains(t, rep.SequenceFindings, GRI1FirstFinding)
}

func TestGenerateComplianceReport_OrderRegression(t *testing.T) {
	v := newTestValidator()
	eng := newTestEngine(t)

	_, err := eng.RecordDecision(decision(gri.RulePreClassification, "product_description_complete", "yes"))
	require.NoError(t, err)
	_, err = eng.RecordDecision(decision(gri.RuleGRI1, "heading_match", "yes"))
	require.NoError(t, err)
	_, err = eng.RecordDecision(decision(gri.RuleGRI4, "most_akin_heading", "8473"))
	require.NoError(t, err)
	_, err = eng.RecordDecision(decision(gri.RuleGRI2A, "incomplete_has_character", "yes"))
	require.NoError(t, err)

	rep := v.GenerateComplianceReport(eng.ExportContext())
	joined := strings.Join(rep.SequenceFindings, "\n")
	assert.Contains(t, joined, "gri_2a (order 2.0) applied after gri_4 (order 4.0)")
}

func TestGenerateComplianceReport_CompliantSequence(t *testing.T) {
	v := newTestValidator()
	eng := newTestEngine(t, engine.WithMaterials([]essential.Material{
		{Name: "steel", Percentage: 100, Basis: essential.BasisWeight, Role: "functional"},
	}))

	_, err := eng.RecordDecision(decision(gri.RulePreClassification, "product_description_complete",
		"The description is complete: a welded steel enclosure for industrial machinery."))
	require.NoError(t, err)
	_, err = eng.RecordDecision(decision(gri.RuleProductAnalysis, "material_breakdown", "steel 100%"))
	require.NoError(t, err)
	require.NoError(t, eng.MoveToNextRule(gri.RuleGRI1))
	_, err = eng.RecordDecision(decision(gri.RuleGRI1, "heading_match", "yes"))
	require.NoError(t, err)

	rep := v.GenerateComplianceReport(eng.ExportContext())
	assert.Empty(t, rep.SequenceFindings)

	require.Len(t, rep.Phases, 3)
	assert.Equal(t, "complete", rep.Phases[0].Status)
	assert.Equal(t, "incomplete", rep.Phases[1].Status)
	assert.Equal(t, "not_started", rep.Phases[2].Status)
	assert.False(t, rep.Compliant)
}

func TestChecklist_CoversStepsValidatorsAndSequencing(t *testing.T) {
	v := newTestValidator()
	eng := newTestEngine(t)
	_, err := eng.RecordDecision(decision(gri.RulePreClassification, "product_description_complete", "yes"))
	require.NoError(t, err)

	items := v.Checklist(eng.ExportContext())
	require.NotEmpty(t, items)

	byReq := make(map[string]ChecklistItem, len(items))
	for _, it := range items {
		byReq[it.Requirement] = it
	}

	desc := byReq["Complete product description"]
	assert.True(t, desc.Satisfied)
	assert.Equal(t, SeverityCritical, desc.Severity)

	gri6 := byReq["GRI 6 subheading determination"]
	assert.False(t, gri6.Satisfied)
	assert.Equal(t, SeverityCritical, gri6.Severity)

	gri5 := byReq["GRI 5 containers and packing"]
	assert.Equal(t, SeverityRecommended, gri5.Severity)

	seq := byReq["GRI rules applied in the legally required order"]
	assert.True(t, seq.Satisfied)
}
