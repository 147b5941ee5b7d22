// Package essential implements the GRI 3(b) essential-character analysis:
// which material or component of a composite good determines its
// classification.
//
// The algorithm scores each candidate material on six axes, combines the
// sub-scores with an industry-specific weight vector, and corroborates the
// winner with historical precedent. The output is a determination with a
// calibrated confidence, never a hard verdict; a broker can always override.
package essential

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/clearfreight/tariffcore/pkg/config"
)

// ErrNoMaterials is returned when Analyze is called without any material.
var ErrNoMaterials = errors.New("essential: at least one material is required")

// Basis is how a material percentage was measured.
type Basis string

const (
	BasisWeight Basis = "weight"
	BasisValue  Basis = "value"
	BasisVolume Basis = "volume"
)

// Role is the declared role of a material within the product. Optional.
type Role string

const (
	RoleFunctional Role = "functional"
	RoleStructural Role = "structural"
	RoleDecorative Role = "decorative"
)

// Material is one candidate component of a composite good.
type Material struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Basis      Basis   `json:"basis"`
	Role       Role    `json:"role,omitempty"`
}

// SubScores are the six 0-100 axis scores for one material.
type SubScores struct {
	Weight        float64 `json:"weight"`
	Value         float64 `json:"value"`
	Volume        float64 `json:"volume"`
	Function      float64 `json:"function"`
	Marketability float64 `json:"marketability"`
	VisualImpact  float64 `json:"visual_impact"`
}

// MaterialAnalysis is the score breakdown for one material. Derived; it is
// not persisted independently of the decision that records the result.
type MaterialAnalysis struct {
	Material string    `json:"material"`
	Scores   SubScores `json:"scores"`
	Overall  float64   `json:"overall"`
}

// Determination is the analyzer's output for one composite good.
type Determination struct {
	DeterminedBy      string             `json:"determined_by"`
	Component         string             `json:"component"`
	Reasoning         string             `json:"reasoning"`
	Confidence        float64            `json:"confidence"`
	SupportingFactors []string           `json:"supporting_factors"`
	IndustryMethod    string             `json:"industry_method,omitempty"`
	Precedents        []Precedent        `json:"precedents,omitempty"`
	Breakdown         []MaterialAnalysis `json:"breakdown"`
}

// Analyzer scores candidate materials. Safe for concurrent use; all state is
// read-only after construction.
type Analyzer struct {
	cfg        *config.Config
	industries []Industry
	precedents []Precedent
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithIndustryProfiles replaces or extends the builtin industry table with
// deployment-supplied profiles (matched by name).
func WithIndustryProfiles(profiles []config.IndustryProfile) AnalyzerOption {
	return func(a *Analyzer) {
		for _, p := range profiles {
			replaced := false
			for i := range a.industries {
				if a.industries[i].Name == p.Name {
					a.industries[i] = Industry{Name: p.Name, Keywords: p.Keywords, Method: p.Method, Weights: p.Weights}
					replaced = true
					break
				}
			}
			if !replaced {
				a.industries = append(a.industries, Industry{
					Name: p.Name, Keywords: p.Keywords, Method: p.Method, Weights: p.Weights,
				})
			}
		}
	}
}

// NewAnalyzer creates an Analyzer with the builtin industry and precedent
// tables.
func NewAnalyzer(cfg *config.Config, opts ...AnalyzerOption) *Analyzer {
	if cfg == nil {
		cfg = config.Default()
	}
	a := &Analyzer{
		cfg:        cfg,
		industries: builtinIndustries(),
		precedents: builtinPrecedents(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ValidatePercentages checks the GRI 2(b)/3(b) invariant that material
// percentages sum to 100 within the configured tolerance. Violations are
// returned as data, never as an error; corrected input is always acceptable.
func (a *Analyzer) ValidatePercentages(materials []Material) []string {
	var errs []string
	var sum float64
	for _, m := range materials {
		if m.Percentage < 0 {
			errs = append(errs, fmt.Sprintf("material %q has negative percentage %.2f", m.Name, m.Percentage))
		}
		sum += m.Percentage
	}
	if math.Abs(sum-100) > a.cfg.PercentageTolerance {
		errs = append(errs, fmt.Sprintf(
			"material percentages sum to %.2f, must sum to 100 within ±%.2f", sum, a.cfg.PercentageTolerance))
	}
	return errs
}

// DetectIndustry matches the product type against the industry keyword
// tables. Returns nil when no sector is detected.
func (a *Analyzer) DetectIndustry(productType string) *Industry {
	tokens := a.tokenize(productType)
	tokenSet := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		tokenSet[tok] = true
	}
	folded := foldString(productType)
	for i := range a.industries {
		for _, kw := range a.industries[i].Keywords {
			if tokenSet[kw] || strings.Contains(folded, kw) {
				return &a.industries[i]
			}
		}
	}
	return nil
}

// Analyze determines which material gives the product its essential
// character.
func (a *Analyzer) Analyze(productType string, materials []Material) (*Determination, error) {
	if len(materials) == 0 {
		return nil, ErrNoMaterials
	}

	industry := a.DetectIndustry(productType)
	weights := config.DefaultWeights()
	if industry != nil {
		weights = industry.Weights
	}

	breakdown := make([]MaterialAnalysis, 0, len(materials))
	for _, m := range materials {
		scores := a.scoreMaterial(m)
		breakdown = append(breakdown, MaterialAnalysis{
			Material: m.Name,
			Scores:   scores,
			Overall:  combine(scores, weights),
		})
	}

	ranked := make([]MaterialAnalysis, len(breakdown))
	copy(ranked, breakdown)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Overall > ranked[j].Overall })

	winner := ranked[0]
	gap := winner.Overall
	if len(ranked) > 1 {
		gap = winner.Overall - ranked[1].Overall
	}

	precedents := matchPrecedents(a.precedents, a.tokenize(productType), 3)

	confidence := a.cfg.BaseConfidence
	confidence += math.Min(0.3, gap/100)
	factors := []string{
		fmt.Sprintf("%s scored highest overall (%.1f)", winner.Material, winner.Overall),
		fmt.Sprintf("score gap to runner-up: %.1f points", gap),
	}

	method := ""
	if industry != nil {
		confidence += 0.1
		method = industry.Method
		factors = append(factors, fmt.Sprintf("industry method applied: %s (%s)", industry.Method, industry.Name))
	}
	if len(precedents) > 0 {
		confidence += math.Min(0.1, precedents[0].Relevance*0.1)
		factors = append(factors, fmt.Sprintf("supported by precedent %s", precedents[0].Reference))
	}
	confidence = math.Min(confidence, a.cfg.ConfidenceCap)

	reasoning := fmt.Sprintf(
		"%s gives the product its essential character with a weighted score of %.1f", winner.Material, winner.Overall)
	if len(ranked) > 1 {
		reasoning += fmt.Sprintf(" against %.1f for %s", ranked[1].Overall, ranked[1].Material)
	}
	if industry != nil {
		reasoning += fmt.Sprintf(", applying the %s sector's customary test (%s)", industry.Name, industry.Method)
	}
	reasoning += "."

	return &Determination{
		DeterminedBy:      "weighted_scoring",
		Component:         winner.Material,
		Reasoning:         reasoning,
		Confidence:        confidence,
		SupportingFactors: factors,
		IndustryMethod:    method,
		Precedents:        precedents,
		Breakdown:         breakdown,
	}, nil
}

// keyword heuristics applied to material names.
var (
	functionalKeywords = []string{"motor", "circuit", "engine", "processor", "mechanism", "pump", "chip", "drive", "blade", "bearing"}
	structuralKeywords = []string{"frame", "housing", "shell", "body", "chassis", "structural", "panel"}
	decorativeKeywords = []string{"trim", "decoration", "decorative", "ornament", "coating", "plating", "veneer", "applique"}
	premiumKeywords    = []string{"gold", "silver", "platinum", "leather", "silk", "cashmere", "titanium", "precious"}
	visibleKeywords    = []string{"exterior", "outer", "surface", "polished", "upper", "visible", "display"}
	hiddenKeywords     = []string{"internal", "inner", "hidden", "lining", "padding", "filler"}
)

func (a *Analyzer) scoreMaterial(m Material) SubScores {
	name := foldString(m.Name)
	pct := clamp(m.Percentage)

	s := SubScores{
		Weight:        pct * 0.8,
		Value:         pct * 0.7,
		Volume:        pct * 0.75,
		Function:      pct,
		Marketability: pct * 0.6,
		VisualImpact:  pct * 0.5,
	}
	switch m.Basis {
	case BasisWeight:
		s.Weight = pct
	case BasisValue:
		s.Value = pct
	case BasisVolume:
		s.Volume = pct
	}

	if hasAny(name, functionalKeywords) {
		s.Function += 30
	}
	if hasAny(name, structuralKeywords) {
		s.Function += 15
	}
	if hasAny(name, decorativeKeywords) {
		s.Function -= 25
		s.VisualImpact += 30
	}
	if hasAny(name, premiumKeywords) {
		s.Value += 20
		s.Marketability += 25
	}
	if hasAny(name, visibleKeywords) {
		s.VisualImpact += 25
	}
	if hasAny(name, hiddenKeywords) {
		s.VisualImpact -= 20
		s.Marketability -= 10
	}
	if strings.Contains(name, "plastic") {
		s.Marketability -= 10
	}

	switch m.Role {
	case RoleFunctional:
		s.Function += 30
	case RoleStructural:
		s.Function += 15
	case RoleDecorative:
		s.Function -= 20
		s.VisualImpact += 30
	}

	s.Weight = clamp(s.Weight)
	s.Value = clamp(s.Value)
	s.Volume = clamp(s.Volume)
	s.Function = clamp(s.Function)
	s.Marketability = clamp(s.Marketability)
	s.VisualImpact = clamp(s.VisualImpact)
	return s
}

func combine(s SubScores, w config.WeightVector) float64 {
	return s.Weight*w.Weight +
		s.Value*w.Value +
		s.Volume*w.Volume +
		s.Function*w.Function +
		s.Marketability*w.Marketability +
		s.VisualImpact*w.VisualImpact
}

// foldString applies Unicode case folding. Casers are stateful, so a fresh
// one is built per call rather than shared across goroutines.
func foldString(s string) string {
	return cases.Fold().String(s)
}

func (a *Analyzer) tokenize(s string) []string {
	folded := foldString(s)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func hasAny(name string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
