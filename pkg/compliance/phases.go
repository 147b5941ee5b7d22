// Package compliance validates a classification's decision history against
// phase-level legal requirements: mandatory steps, GRI sequencing, and
// documentation completeness.
//
// The validator is a read-only auditor over the history the engine produced.
// It owns the "cannot skip rules" policy the engine deliberately does not
// enforce, so corrective jumps stay possible while an after-the-fact audit
// still flags an illegitimate sequence.
package compliance

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/clearfreight/tariffcore/pkg/engine"
	"github.com/clearfreight/tariffcore/pkg/gri"
)

// Severity ranks a compliance finding.
type Severity string

const (
	SeverityCritical    Severity = "critical"
	SeverityImportant   Severity = "important"
	SeverityRecommended Severity = "recommended"
)

// ChecklistItem is one derived compliance check. Always recomputed from the
// current context; never persisted as ground truth.
type ChecklistItem struct {
	Requirement string   `json:"requirement"`
	Satisfied   bool     `json:"satisfied"`
	Evidence    string   `json:"evidence,omitempty"`
	Severity    Severity `json:"severity"`
	Category    string   `json:"category"`
}

// Step is one unit of work inside a phase. A step is satisfied when a
// decision references one of its rule ids or when it is explicitly marked
// complete.
type Step struct {
	ID        string
	Name      string
	RuleIDs   []string
	Mandatory bool
}

// DocRequirement names a document the classification file must (or should)
// contain.
type DocRequirement struct {
	Name      string
	Mandatory bool
}

// PhaseValidator is a named predicate over the classification context.
type PhaseValidator struct {
	Name     string
	Severity Severity
	Check    func(*engine.Context) (ok bool, detail string)
}

// Phase groups steps, validators and documentation requirements.
type Phase struct {
	ID            string
	Name          string
	Steps         []Step
	Validators    []PhaseValidator
	Documentation []DocRequirement
}

// Phase ids in workflow order.
const (
	PhasePreClassification = "pre_classification_analysis"
	PhaseRuleApplication   = "gri_rule_application"
	PhaseValidation        = "classification_validation"
)

func defaultPhases() []Phase {
	return []Phase{
		{
			ID:   PhasePreClassification,
			Name: "Pre-Classification Analysis",
			Steps: []Step{
				{ID: "complete_description", Name: "Complete product description", RuleIDs: []string{gri.RulePreClassification}, Mandatory: true},
				{ID: "composition_analysis", Name: "Material composition analysis", RuleIDs: []string{gri.RuleProductAnalysis}, Mandatory: true},
			},
			Validators: []PhaseValidator{
				{
					Name:     "product description completeness",
					Severity: SeverityCritical,
					Check: func(ctx *engine.Context) (bool, string) {
						if utf8.RuneCountInString(ctx.ProductDescription) < 20 {
							return false, "product description is too short to identify the goods"
						}
						return true, fmt.Sprintf("description of %d characters on file", utf8.RuneCountInString(ctx.ProductDescription))
					},
				},
				{
					Name:     "material percentages",
					Severity: SeverityImportant,
					Check: func(ctx *engine.Context) (bool, string) {
						if len(ctx.Materials) == 0 {
							return true, "no composite breakdown supplied"
						}
						var sum float64
						for _, m := range ctx.Materials {
							sum += m.Percentage
						}
						if sum < 99.99 || sum > 100.01 {
							return false, fmt.Sprintf("material percentages sum to %.2f", sum)
						}
						return true, "material percentages sum to 100"
					},
				},
			},
			Documentation: []DocRequirement{
				{Name: "product specification sheet", Mandatory: true},
				{Name: "supplier declaration of composition", Mandatory: false},
			},
		},
		{
			ID:   PhaseRuleApplication,
			Name: "GRI Rule Application",
			Steps: []Step{
				{ID: "gri_1_applied", Name: "GRI 1 heading analysis", RuleIDs: []string{gri.RuleGRI1}, Mandatory: true},
				{ID: "gri_2_considered", Name: "GRI 2 incomplete goods and mixtures", RuleIDs: []string{gri.RuleGRI2A, gri.RuleGRI2B}},
				{ID: "gri_3_resolution", Name: "GRI 3 competing headings resolution", RuleIDs: []string{gri.RuleGRI3Intro, gri.RuleGRI3A, gri.RuleGRI3B, gri.RuleGRI3C}},
				{ID: "gri_4_kinship", Name: "GRI 4 most akin goods", RuleIDs: []string{gri.RuleGRI4}},
				{ID: "gri_5_packing", Name: "GRI 5 containers and packing", RuleIDs: []string{gri.RuleGRI5A, gri.RuleGRI5B}},
				{ID: "gri_6_subheading", Name: "GRI 6 subheading determination", RuleIDs: []string{gri.RuleGRI6}, Mandatory: true},
			},
			Validators: []PhaseValidator{
				{
					Name:     "decision reasoning",
					Severity: SeverityCritical,
					Check: func(ctx *engine.Context) (bool, string) {
						for _, d := range ctx.Decisions {
							if utf8.RuneCountInString(d.Reasoning) < 20 {
								return false, fmt.Sprintf("decision on %s/%s lacks substantive reasoning", d.RuleID, d.CriterionID)
							}
						}
						return true, "every decision carries substantive reasoning"
					},
				},
				{
					Name:     "legal basis citations",
					Severity: SeverityImportant,
					Check: func(ctx *engine.Context) (bool, string) {
						for _, d := range ctx.Decisions {
							if strings.HasPrefix(d.RuleID, "gri_") && len(d.LegalBasis) == 0 {
								return false, fmt.Sprintf("decision on %s cites no legal basis", d.RuleID)
							}
						}
						return true, "all GRI decisions cite a legal basis"
					},
				},
			},
			Documentation: []DocRequirement{
				{Name: "rule-by-rule decision record", Mandatory: true},
				{Name: "essential character analysis worksheet", Mandatory: false},
			},
		},
		{
			ID:   PhaseValidation,
			Name: "Classification Validation",
			Steps: []Step{
				{ID: "code_verified", Name: "Tariff code verification", RuleIDs: []string{gri.RuleValidation}, Mandatory: true},
				{ID: "final_documentation", Name: "Final documentation check", RuleIDs: []string{gri.RuleFinalCheck}, Mandatory: true},
			},
			Validators: []PhaseValidator{
				{
					Name:     "heading exclusions",
					Severity: SeverityCritical,
					Check: func(ctx *engine.Context) (bool, string) {
						for _, suggested := range ctx.SuggestedHeadings {
							for _, excluded := range ctx.ExcludedHeadings {
								if suggested == excluded {
									return false, fmt.Sprintf("suggested heading %s is excluded by a legal note", suggested)
								}
							}
						}
						return true, "no suggested heading conflicts with an exclusion note"
					},
				},
			},
			Documentation: []DocRequirement{
				{Name: "tariff schedule extract for the final code", Mandatory: true},
				{Name: "binding tariff information references", Mandatory: false},
			},
		},
	}
}
