package report

import (
	"fmt"
	"strings"
	"time"
)

// Markdown renders the report for human review. The markdown form is a view
// over the hashed content, not the hashed content itself.
func (r *Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Tariff Classification Report\n\n")
	fmt.Fprintf(&b, "- **Classification:** %s\n", r.ClassificationID)
	fmt.Fprintf(&b, "- **Generated:** %s\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Format version:** %s\n", r.Version)
	if r.FinalCode != "" {
		fmt.Fprintf(&b, "- **Final code:** `%s`\n", r.FinalCode)
	}
	fmt.Fprintf(&b, "- **Confidence:** %.2f\n", r.Confidence)
	fmt.Fprintf(&b, "- **Compliance score:** %.0f%%\n", r.ComplianceScore)
	if r.NeedsExpertReview {
		fmt.Fprintf(&b, "- **Expert review required**\n")
	}
	fmt.Fprintf(&b, "- **Content hash:** `%s`\n", r.Hash)

	fmt.Fprintf(&b, "\n## Executive Summary\n\n%s\n", r.ExecutiveSummary)

	fmt.Fprintf(&b, "\n## Product\n\n%s\n", r.ProductDescription)

	if r.EssentialCharacter != nil {
		fmt.Fprintf(&b, "\n## Essential Character (GRI 3(b))\n\n")
		fmt.Fprintf(&b, "Component: **%s** (method: %s, confidence %.2f)\n\n%s\n",
			r.EssentialCharacter.Component, r.EssentialCharacter.DeterminedBy,
			r.EssentialCharacter.Confidence, r.EssentialCharacter.Reasoning)
	}

	fmt.Fprintf(&b, "\n## Decision Log\n\n")
	if len(r.DecisionLog) == 0 {
		b.WriteString("No decisions recorded.\n")
	} else {
		b.WriteString("| # | Rule | Criterion | Answer | Confidence |\n")
		b.WriteString("|---|------|-----------|--------|------------|\n")
		for i, d := range r.DecisionLog {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %.2f |\n",
				i+1, d.RuleID, d.CriterionID, mdEscape(d.Answer), d.Confidence)
		}
		b.WriteString("\n")
		for i, d := range r.DecisionLog {
			fmt.Fprintf(&b, "%d. **%s / %s** — %s\n", i+1, d.RuleID, d.CriterionID, d.Reasoning)
		}
	}

	if len(r.LegalBasis) > 0 {
		fmt.Fprintf(&b, "\n## Legal Basis\n\n")
		for _, lb := range r.LegalBasis {
			fmt.Fprintf(&b, "- %s\n", lb)
		}
	}

	fmt.Fprintf(&b, "\n## Compliance\n\n")
	for _, p := range r.Compliance.Phases {
		fmt.Fprintf(&b, "### %s — %s\n\n", p.Name, strings.ReplaceAll(p.Status, "_", " "))
		for _, e := range p.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
		if len(p.Errors) == 0 {
			b.WriteString("No open items.\n")
		}
		b.WriteString("\n")
	}

	if len(r.Findings) > 0 {
		fmt.Fprintf(&b, "## Open Findings\n\n")
		for _, f := range r.Findings {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	return b.String()
}

// ExportPDF always fails; kept so callers discover the capability gap through
// the error value instead of a missing method.
func (r *Report) ExportPDF() ([]byte, error) {
	return nil, ErrPDFUnsupported
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
