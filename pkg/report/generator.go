// Package report assembles classification reports: an executive summary, the
// full decision log, the compliance checklist with a weighted score, and a
// content hash that binds the report to a version and generation time. A
// report is the artifact handed to counsel or a customs authority, so its
// content is frozen at generation and never recomputed in place.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clearfreight/tariffcore/pkg/canonicalize"
	"github.com/clearfreight/tariffcore/pkg/compliance"
	"github.com/clearfreight/tariffcore/pkg/engine"
	"github.com/clearfreight/tariffcore/pkg/essential"
	"github.com/clearfreight/tariffcore/pkg/ledger"
)

// Version identifies the report format. Bump on any change to the hashed
// content layout.
const Version = "1.0.0"

// ErrPDFUnsupported is returned by ExportPDF. PDF rendering belongs to the
// presentation layer; the library only guarantees markdown.
var ErrPDFUnsupported = errors.New("report: pdf export is not supported, render the markdown export externally")

// Checklist severities weight the compliance score.
var severityWeights = map[compliance.Severity]int{
	compliance.SeverityCritical:    3,
	compliance.SeverityImportant:   2,
	compliance.SeverityRecommended: 1,
}

// Input collects everything a report is generated from.
type Input struct {
	Context       *engine.Context
	Compliance    *compliance.Report
	LegalBasis    []string
	FinalCode     string
	Confidence    float64
	Determination *essential.Determination
}

// Report is a frozen classification report.
type Report struct {
	ClassificationID   string                   `json:"classification_id"`
	Version            string                   `json:"version"`
	GeneratedAt        time.Time                `json:"generated_at"`
	ExecutiveSummary   string                   `json:"executive_summary"`
	ProductDescription string                   `json:"product_description"`
	FinalCode          string                   `json:"final_code,omitempty"`
	Confidence         float64                  `json:"confidence"`
	NeedsExpertReview  bool                     `json:"needs_expert_review"`
	DecisionLog        []ledger.Decision        `json:"decision_log"`
	LegalBasis         []string                 `json:"legal_basis,omitempty"`
	EssentialCharacter *essential.Determination `json:"essential_character,omitempty"`
	Compliance         *compliance.Report       `json:"compliance"`
	ComplianceScore    float64                  `json:"compliance_score"`
	Findings           []string                 `json:"findings,omitempty"`
	Hash               string                   `json:"hash"`
}

// Generator builds reports. Zero value is not usable; construct with New.
type Generator struct {
	expertReviewThreshold float64
	now                   func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New builds a Generator. expertReviewThreshold is the confidence below which
// the report is flagged for expert review.
func New(expertReviewThreshold float64, opts ...Option) *Generator {
	g := &Generator{
		expertReviewThreshold: expertReviewThreshold,
		now:                   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate assembles and hashes a report. The input context is not retained.
func (g *Generator) Generate(in Input) (*Report, error) {
	if in.Context == nil {
		return nil, errors.New("report: classification context is required")
	}
	if in.Compliance == nil {
		return nil, errors.New("report: compliance report is required")
	}

	r := &Report{
		ClassificationID:   in.Context.ClassificationID,
		Version:            Version,
		GeneratedAt:        g.now().UTC(),
		ProductDescription: in.Context.ProductDescription,
		FinalCode:          in.FinalCode,
		Confidence:         in.Confidence,
		NeedsExpertReview:  in.Confidence < g.expertReviewThreshold,
		DecisionLog:        append([]ledger.Decision(nil), in.Context.Decisions...),
		LegalBasis:         append([]string(nil), in.LegalBasis...),
		EssentialCharacter: in.Determination,
		Compliance:         in.Compliance,
		ComplianceScore:    complianceScore(in.Compliance.Checklist),
		Findings:           collectFindings(in.Compliance),
	}
	r.ExecutiveSummary = executiveSummary(r)

	hash, err := contentHash(r)
	if err != nil {
		return nil, err
	}
	r.Hash = hash
	return r, nil
}

// complianceScore is the weighted share of satisfied checklist items,
// critical items counting three times a recommended one.
func complianceScore(items []compliance.ChecklistItem) float64 {
	var total, earned int
	for _, it := range items {
		w := severityWeights[it.Severity]
		total += w
		if it.Satisfied {
			earned += w
		}
	}
	if total == 0 {
		return 0
	}
	return float64(earned) / float64(total) * 100
}

// collectFindings flattens sequence findings and phase errors into the
// report's findings list, in phase order.
func collectFindings(cr *compliance.Report) []string {
	var out []string
	out = append(out, cr.SequenceFindings...)
	for _, p := range cr.Phases {
		out = append(out, p.Errors...)
	}
	return out
}

func executiveSummary(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Classification %s covers: %s. ", r.ClassificationID, r.ProductDescription)
	if r.FinalCode != "" {
		fmt.Fprintf(&b, "The goods were classified under tariff code %s with %.0f%% confidence. ", r.FinalCode, r.Confidence*100)
	} else {
		b.WriteString("No final tariff code has been determined. ")
	}
	fmt.Fprintf(&b, "%d decisions were recorded. ", len(r.DecisionLog))
	if r.EssentialCharacter != nil {
		fmt.Fprintf(&b, "Essential character was attributed to %s (%s). ", r.EssentialCharacter.Component, r.EssentialCharacter.DeterminedBy)
	}
	fmt.Fprintf(&b, "Weighted compliance score: %.0f%%. ", r.ComplianceScore)
	switch {
	case r.NeedsExpertReview:
		b.WriteString("Confidence is below the review threshold: expert review is required before filing.")
	case len(r.Findings) > 0:
		fmt.Fprintf(&b, "%d compliance findings remain open and must be resolved before the classification is defensible.", len(r.Findings))
	default:
		b.WriteString("The classification is compliant and ready for filing.")
	}
	return b.String()
}

// contentHash binds content, format version and generation time:
// sha256(canonical(content) || version || timestamp).
func contentHash(r *Report) (string, error) {
	body := *r
	body.Hash = ""
	content, err := canonicalize.JCS(&body)
	if err != nil {
		return "", err
	}
	payload := append(content, []byte(r.Version)...)
	payload = append(payload, []byte(r.GeneratedAt.Format(time.RFC3339Nano))...)
	return "sha256:" + canonicalize.HashBytes(payload), nil
}

// VerifyHash recomputes the report's content hash and compares.
func VerifyHash(r *Report) (bool, error) {
	h, err := contentHash(r)
	if err != nil {
		return false, err
	}
	return h == r.Hash, nil
}
