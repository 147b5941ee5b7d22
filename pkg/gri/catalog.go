package gri

import "sort"

// Rule ids. Fractional orders denote analysis steps inserted between the
// official WCO rules; gri_3a/gri_3b/gri_3c share integer order 3 and are
// mutually exclusive resolutions of GRI Rule 3.
const (
	RulePreClassification = "pre_classification"
	RuleProductAnalysis   = "product_analysis"
	RuleGRI1              = "gri_1"
	RuleGRI2A             = "gri_2a"
	RuleGRI2B             = "gri_2b"
	RuleGRI3Intro         = "gri_3_intro"
	RuleGRI3A             = "gri_3a"
	RuleGRI3B             = "gri_3b"
	RuleGRI3C             = "gri_3c"
	RuleGRI4              = "gri_4"
	RuleGRI5A             = "gri_5a"
	RuleGRI5B             = "gri_5b"
	RuleGRI6              = "gri_6"
	RuleValidation        = "validation"
	RuleFinalCheck        = "final_check"
)

// Catalog is the immutable table of GRI rule definitions. Construct it once
// with NewCatalog and share it across sessions; lookups never copy.
type Catalog struct {
	byID     map[string]*Rule
	ordered  []*Rule
	maxOrder float64
}

// NewCatalog builds the standard 15-entry catalog.
func NewCatalog() *Catalog {
	rules := defaultRules()
	c := &Catalog{byID: make(map[string]*Rule, len(rules))}
	for i := range rules {
		r := &rules[i]
		c.byID[r.ID] = r
		c.ordered = append(c.ordered, r)
		if r.Order > c.maxOrder {
			c.maxOrder = r.Order
		}
	}
	sort.SliceStable(c.ordered, func(i, j int) bool {
		return c.ordered[i].Order < c.ordered[j].Order
	})
	return c
}

// Get returns the rule with the given id or ErrRuleNotFound.
func (c *Catalog) Get(id string) (*Rule, error) {
	r, ok := c.byID[id]
	if !ok {
		return nil, ErrRuleNotFound
	}
	return r, nil
}

// Has reports whether id exists in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Rules returns the rules ordered by workflow position.
func (c *Catalog) Rules() []*Rule {
	out := make([]*Rule, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// MaxOrder returns the highest order value in the catalog, used to compute
// workflow progress.
func (c *Catalog) MaxOrder() float64 { return c.maxOrder }

// Len returns the number of rules.
func (c *Catalog) Len() int { return len(c.ordered) }

func defaultRules() []Rule {
	return []Rule{
		{
			ID:        RulePreClassification,
			Name:      "Pre-Classification Analysis",
			Order:     0.5,
			LegalText: "Before any General Rule for Interpretation is applied, the product must be fully identified: its composition, function, intended use and commercial presentation. An incomplete product description cannot support a defensible classification.",
			RequiredInputs: []string{
				"product_description_complete", "intended_use",
			},
			ValidationRules: []ValidationRule{
				{
					Field:   "intended_use",
					Kind:    ValidationMinLength,
					Min:     50,
					Message: "intended use must describe the product in at least 50 characters",
				},
				{
					Field:   "product_description_complete",
					Kind:    ValidationRequired,
					Message: "confirm whether the product description is complete",
				},
			},
			Criteria: []DecisionCriterion{
				{ID: "product_description_complete", Question: "Is the product description complete enough to identify composition, function and use?", Type: AnswerBoolean},
				{ID: "intended_use", Question: "Describe the product's intended use and commercial presentation.", Type: AnswerText},
			},
			NextSteps: []NextStep{
				{
					Conditions: []Condition{{Field: "product_description_complete", Operator: OpEquals, Value: "yes"}},
					Target:     RuleProductAnalysis,
				},
			},
		},
		{
			ID:        RuleProductAnalysis,
			Name:      "Product Composition Analysis",
			Order:     0.7,
			LegalText: "Establish what the product is made of and whether it is a single article, a composite good, a mixture, or a set put up for retail sale. This analysis determines which General Rules can apply.",
			RequiredInputs: []string{
				"composition_known", "is_composite",
			},
			ValidationRules: []ValidationRule{
				{
					Field:   "composition_known",
					Kind:    ValidationRequired,
					Message: "record whether the material composition is known",
				},
			},
			Criteria: []DecisionCriterion{
				{ID: "composition_known", Question: "Is the material composition of the product known?", Type: AnswerBoolean},
				{ID: "is_composite", Question: "Is the product a composite good, mixture, or retail set?", Type: AnswerBoolean},
			},
			NextSteps: []NextStep{
				{
					Conditions: []Condition{{Field: "composition_known", Operator: OpEquals, Value: "yes"}},
					Target:     RuleGRI1,
				},
			},
		},
		{
			ID:        RuleGRI1,
			Name:      "GRI 1 — Classification by Heading Terms",
			Order:     1,
			LegalText: "The titles of Sections, Chapters and sub-Chapters are provided for ease of reference only; for legal purposes, classification shall be determined according to the terms of the headings and any relative Section or Chapter Notes and, provided such headings or Notes do not otherwise require, according to the following provisions.",
			RequiredInputs: []string{
				"heading_match", "notes_conflict",
			},
			ValidationRules: []ValidationRule{
				{
					Field:   "heading_match",
					Kind:    ValidationRequired,
					Message: "record whether a heading describes the product as presented",
				},
			},
			Criteria: []DecisionCriterion{
				{ID: "heading_match", Question: "Does a heading, read with the Section and Chapter Notes, describe the product as presented?", Type: AnswerSelect, Options: []string{"yes", "no", "multiple"}},
				{ID: "notes_conflict", Question: "Does any Section or Chapter Note exclude the product from the candidate heading?", Type: AnswerBoolean},
			},
			NextSteps: []NextStep{
				{
					Conditions: []Condition{
						{Field: "heading_match", Operator: OpEquals, Value: "yes"},
						{Field: "notes_conflict", Operator: OpEquals, Value: "no"},
					},
					Target: RuleGRI6,
				},
				{
					Conditions: []Condition{{Field: "heading_match", Operator: OpEquals, Value: "multiple"}},
					Target:     RuleGRI3Intro,
				},
				{
					Conditions: []Condition{
						{Field: "heading_match", Operator: OpEquals, Value: "no"},
						{Field: "notes_conflict", Operator: OpEquals, Value: "yes", Logic: LogicOR},
					},
					Target: RuleGRI2A,
				},
			},
		},
		{
			ID:        RuleGRI2A,
			Name:      "GRI 2(a) — Incomplete or Unassembled Articles",
			Order:     2,
			LegalText: "Any reference in a heading to an article shall be taken to include a reference to that article incomplete or unfinished, provided that, as presented, the incomplete or unfinished article has the essential character of the complete or finished article. It shall also include a reference to that article complete or finished presented unassembled or disassembled.",
			RequiredInputs: []string{
				"incomplete_has_character",
			},
			Criteria: []DecisionCriterion{
				{ID: "incomplete_has_character", Question: "Does the incomplete or unassembled article, as presented, have the essential character of the complete article?", Type: AnswerBoolean},
				{ID: "is_unassembled", Question: "Is the article presented unassembled or disassembled?", Type: AnswerBoolean},
			},
			NextSteps: []NextStep{
				{
					Conditions: []Condition{{Field: "incomplete_has_character", Operator: OpEquals, Value: "yes"}},
					Target:     RuleGRI1,
				},
				{
					Conditions: []Condition{{Field: "incomplete_has_character", Operator: OpEquals, Value: "no"}},
					Target:     RuleGRI2B,
				},
			},
		},
		{
			ID:        RuleGRI2B,
			Name:      "GRI 2(b) — Mixtures and Combinations",
			Order:     2.5,
			LegalText: "Any reference in a heading to a material or substance shall be taken to include a reference to mixtures or combinations of that material or substance with other materials or substances. The classification of goods consisting of more than one material or substance shall be according to the principles of Rule 3.",
			RequiredInputs: []string{
				"single_material", "material_breakdown",
			},
			ValidationRules: []ValidationRule{
				{
					Field:   "material_breakdown",
					Kind:    ValidationPercentageSum,
					Message: "material percentages must sum to 100",
				},
			},
			Criteria: []DecisionCriterion{
				{ID: "single_material", Question: "Does a single material or substance give the goods their character?", Type: AnswerBoolean},
				{ID: "material_breakdown", Question: "Record the material breakdown with percentages and measurement basis.", Type: AnswerMaterials},
			},
			NextSteps: []NextStep{
				{
					Conditions: []Condition{{Field: "single_material", Operator: OpEquals, Value: "no"}},
					Target:     RuleGRI3Intro,
				},
				{
					Conditions: []Condition{{Field: "single_material", Operator: OpEquals, Value: "yes"}},
					Target:     RuleGRI6,
				},
			},
		},
		{
			ID:        RuleGRI3Intro,
			Name:      "GRI 3 — Goods Classifiable Under Two or More Headings",
			Order:     2.8,
			LegalText: "When, by application of Rule 2(b) or for any other reason, goods are prima facie classifiable under two or more headings, classification shall be effected by Rules 3(a), 3(b) and 3(c), taken in order.",
			RequiredInputs: []string{
				"candidate_headings",
			},
			Criteria: []DecisionCriterion{
				{ID: "candidate_headings", Question: "How many headings are prima facie applicable?", Type: AnswerText},
				{ID: "specificity_differs", Question: "Does one candidate heading describe the goods more specifically than the others?", Type: AnswerBoolean},
			},
			NextSteps: []NextStep{
				{
					Conditions: []Condition{{Field: "candidate_headings", Operator: OpGreaterThan, Value: 1}},
					Target:     RuleGRI3A,
				},
			},
		},
		{
			ID:        RuleGRI3A,
			Name:      "GRI 3(a) — Most Specific Description",
			Order:     3,
			LegalText: "The heading which provides the most specific description shall be preferred to headings providing a more general description. However, when two or more headings each refer to part only of the materials or substances contained in mixed or composite goods, those headings are to be regarded as equally specific.",
			RequiredInputs: []string{
				"most_specific_heading",
			},
			Criteria: []DecisionCriterion{
				{ID: "most_specific_heading", Question: "Which heading provides the most specific description, or 'none' if the candidates are equally specific?", Type: AnswerText},
			},
			NextSteps: []NextStep{
				{
					Conditions: []Condition{{Field: "most_specific_heading", Operator: OpNotIn, Value: []string{"", "none", "equal"}}},
					Target:     RuleGRI6,
				},
				{
					Conditions: []Condition{{Field: "most_specific_heading", Operator: OpIn, Value: []string{"none", "equal"}}},
					Target:     RuleGRI3B,
				},
			},
		},
		{
			ID:        RuleGRI3B,
			Name:      "GRI 3(b) — Essential Character",
			Order:     3.2,
			LegalText: "Mixtures, composite goods consisting of different materials or made up of different components, and goods put up in sets for retail sale, which cannot be classified by reference to 3(a), shall be classified as if they consisted of the material or component which gives them their essential character, insofar as this criterion is applicable.",
			RequiredInputs: []string{
				"essential_character_component",
			},
			ValidationRules: []ValidationRule{
				{
					Field:   "material_breakdown",
					Kind:    ValidationPercentageSum,
					Message: "material percentages must sum to 100",
				},
			},
			Criteria: []DecisionCriterion{
				{ID: "essential_character_determinable", Question: "Can the material or component giving the goods their essential character be determined?", Type: AnswerBoolean},
				{ID: "essential_character_component", Question: "Which material or component gives the goods their essential character?", Type: AnswerText},
			},
			NextSteps: []NextStep{
				{
					Conditions: []Condition{{Field: "essential_character_determinable", Operator: OpEquals, Value: "yes"}},
					Target:     RuleGRI6,
				},
				{
					Conditions: []Condition{{Field: "essential_character_determinable", Operator: OpEquals, Value: "no"}},
					Target:     RuleGRI3C,
				},
			},
		},
		{
			ID:        RuleGRI3C,
			Name:      "GRI 3(c) — Heading Last in Numerical Order",
			Order:     3.5,
			LegalText: "When goods cannot be classified by reference to 3(a) or 3(b), they shall be classified under the heading which occurs last in numerical order among those which equally merit consideration.",
			RequiredInputs: []string{
				"last_heading",
			},
			Criteria: []DecisionCriterion{
				{ID: "last_heading", Question: "Which candidate heading occurs last in numerical order?", Type: AnswerText},
			},
			NextSteps: []NextStep{
				{
					Conditions: []Condition{{Field: "last_heading", Operator: OpNotIn, Value: []string{"", "none"}}},
					Target:     RuleGRI6,
				},
				{
					Conditions: []Condition{{Field: "last_heading", Operator: OpIn, Value: []string{"", "none"}}},
					Target:     RuleGRI4,
				},
			},
		},
		{
			ID:        RuleGRI4,
			Name:      "GRI 4 — Goods Most Akin",
			Order:     4,
			LegalText: "Goods which cannot be classified in accordance with the above Rules shall be classified under the heading appropriate to the goods to which they are most akin.",
			RequiredInputs: []string{
				"most_akin_heading",
			},
			Criteria: []DecisionCriterion{
				{ID: "most_akin_heading", Question: "Which heading covers the goods to which the product is most akin?", Type: AnswerText},
			},
			NextSteps: []NextStep{
				{Target: RuleGRI6},
			},
		},
		{
			ID:        RuleGRI5A,
			Name:      "GRI 5(a) — Cases and Containers",
			Order:     5,
			LegalText: "Camera cases, musical instrument cases, gun cases, drawing instrument cases, necklace cases and similar containers, specially shaped or fitted to contain a specific article or set of articles, suitable for long-term use and presented with the articles for which they are intended, shall be classified with such articles when of a kind normally sold therewith.",
			RequiredInputs: []string{
				"is_fitted_container",
			},
			Criteria: []DecisionCriterion{
				{ID: "is_fitted_container", Question: "Is the container specially shaped or fitted for the article, suitable for long-term use, and normally sold with it?", Type: AnswerBoolean},
			},
			NextSteps: []NextStep{
				{
					Conditions: []Condition{{Field: "is_fitted_container", Operator: OpEquals, Value: "yes"}},
					Target:     RuleGRI6,
				},
				{
					Conditions: []Condition{{Field: "is_fitted_container", Operator: OpEquals, Value: "no"}},
					Target:     RuleGRI5B,
				},
			},
		},
		{
			ID:        RuleGRI5B,
			Name:      "GRI 5(b) — Packing Materials and Containers",
			Order:     5.5,
			LegalText: "Subject to the provisions of Rule 5(a), packing materials and packing containers presented with the goods therein shall be classified with the goods if they are of a kind normally used for packing such goods. However, this provision is not binding when such packing materials or containers are clearly suitable for repetitive use.",
			RequiredInputs: []string{
				"packing_normal_kind",
			},
			Criteria: []DecisionCriterion{
				{ID: "packing_normal_kind", Question: "Is the packing of a kind normally used for these goods and not suitable for repetitive use?", Type: AnswerBoolean},
			},
			NextSteps: []NextStep{
				{Target: RuleGRI6},
			},
		},
		{
			ID:        RuleGRI6,
			Name:      "GRI 6 — Subheading Classification",
			Order:     6,
			LegalText: "For legal purposes, the classification of goods in the subheadings of a heading shall be determined according to the terms of those subheadings and any related Subheading Notes and, mutatis mutandis, to the above Rules, on the understanding that only subheadings at the same level are comparable.",
			RequiredInputs: []string{
				"subheading_determined",
			},
			ValidationRules: []ValidationRule{
				{
					Field:   "subheading_determined",
					Kind:    ValidationRequired,
					Message: "record the subheading determination",
				},
			},
			Criteria: []DecisionCriterion{
				{ID: "subheading_determined", Question: "Which subheading, at the comparable level, covers the goods?", Type: AnswerText},
			},
			NextSteps: []NextStep{
				{Target: RuleValidation},
			},
		},
		{
			ID:        RuleValidation,
			Name:      "Classification Validation",
			Order:     7,
			LegalText: "Before completion, the proposed tariff code must be verified against the tariff schedule: the code must exist, its legal notes must not exclude the product, and the national-level check digit must validate.",
			RequiredInputs: []string{
				"code_verified",
			},
			ValidationRules: []ValidationRule{
				{
					Field:   "code_verified",
					Kind:    ValidationRequired,
					Message: "record whether the proposed code was verified against the tariff schedule",
				},
			},
			Criteria: []DecisionCriterion{
				{ID: "code_verified", Question: "Does the proposed code exist in the tariff schedule with no excluding note?", Type: AnswerBoolean},
				{ID: "check_digit_valid", Question: "Does the national check digit validate?", Type: AnswerBoolean},
			},
			NextSteps: []NextStep{
				{
					Conditions: []Condition{
						{Field: "code_verified", Operator: OpEquals, Value: "yes"},
						{Field: "check_digit_valid", Operator: OpEquals, Value: "yes"},
					},
					Target: RuleFinalCheck,
				},
			},
		},
		{
			ID:        RuleFinalCheck,
			Name:      "Final Documentation Check",
			Order:     7.5,
			LegalText: "A defensible classification file records every rule applied, the reasoning for each decision, the legal basis cited, and the supporting documentation an auditor would require in a dispute.",
			RequiredInputs: []string{
				"documentation_complete",
			},
			Criteria: []DecisionCriterion{
				{ID: "documentation_complete", Question: "Is the classification file complete: reasoning, legal basis, and supporting documents?", Type: AnswerBoolean},
			},
			NextSteps: []NextStep{
				{
					Conditions: []Condition{{Field: "documentation_complete", Operator: OpEquals, Value: "yes"}},
				},
			},
		},
	}
}
