package engine

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/clearfreight/tariffcore/pkg/config"
	"github.com/clearfreight/tariffcore/pkg/essential"
	"github.com/clearfreight/tariffcore/pkg/gri"
	"github.com/clearfreight/tariffcore/pkg/ledger"
	"github.com/clearfreight/tariffcore/pkg/observability"
)

// Audit action names written by the engine.
const (
	ActionRuleTransition     = "rule_transition"
	ActionEssentialCharacter = "essential_character_analysis"
)

// Engine walks one classification through the GRI catalog. Not safe for
// concurrent use; serialize per classification id with a SessionManager when
// concurrent requests can arrive for the same classification.
type Engine struct {
	catalog  *gri.Catalog
	cfg      *config.Config
	ctx      *Context
	ledger   *ledger.Ledger
	analyzer *essential.Analyzer
	cel      *celValidator
	obs      *observability.Provider
	log      *slog.Logger
	actor    string
}

// Option configures an Engine.
type Option func(*Engine)

// WithAnalyzer overrides the essential-character analyzer.
func WithAnalyzer(a *essential.Analyzer) Option {
	return func(e *Engine) { e.analyzer = a }
}

// WithActor sets the actor recorded on engine-originated audit events.
// Default "system".
func WithActor(actor string) Option {
	return func(e *Engine) { e.actor = actor }
}

// WithLogger overrides the slog logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithObservability attaches a telemetry provider. Decision recording, rule
// transitions and essential-character analysis are then traced and counted;
// nil leaves the engine uninstrumented.
func WithObservability(p *observability.Provider) Option {
	return func(e *Engine) { e.obs = p }
}

// WithMaterials seeds the context's material breakdown.
func WithMaterials(materials []essential.Material) Option {
	return func(e *Engine) {
		e.ctx.Materials = append([]essential.Material(nil), materials...)
	}
}

// New creates an Engine for one classification, starting at the
// pre-classification rule. The ledger must be scoped to the same
// classification id.
func New(catalog *gri.Catalog, cfg *config.Config, led *ledger.Ledger, productDescription string, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	cel, err := newCELValidator()
	if err != nil {
		return nil, fmt.Errorf("engine: build expression validator: %w", err)
	}
	e := &Engine{
		catalog: catalog,
		cfg:     cfg,
		ledger:  led,
		cel:     cel,
		actor:   "system",
		log:     slog.Default().With("component", "engine", "classification_id", led.ClassificationID()),
		ctx: &Context{
			ClassificationID:   led.ClassificationID(),
			ProductDescription: productDescription,
			CurrentRuleID:      gri.RulePreClassification,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.analyzer == nil {
		e.analyzer = essential.NewAnalyzer(cfg)
	}
	return e, nil
}

// track opens a span and the RED instruments for one engine operation when a
// provider is attached. The returned func must be called exactly once.
func (e *Engine) track(name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	if e.obs == nil {
		return context.Background(), func(error) {}
	}
	return e.obs.TrackClassification(context.Background(), name, attrs...)
}

// CurrentRule returns the catalog entry for the context's current rule id.
func (e *Engine) CurrentRule() (*gri.Rule, error) {
	return e.catalog.Get(e.ctx.CurrentRuleID)
}

// RecordDecision appends a decision to the ledger and the context. Content
// is not validated here; ValidateRule is a separate, caller-invoked step.
func (e *Engine) RecordDecision(d ledger.Decision) (ledger.Decision, error) {
	_, finish := e.track("engine.record_decision",
		observability.DecisionOperation(e.ctx.ClassificationID, d.RuleID, d.CriterionID, d.Confidence)...)
	recorded, err := e.ledger.LogDecision(d, e.actor)
	if err != nil {
		finish(err)
		return ledger.Decision{}, err
	}
	e.ctx.Decisions = append(e.ctx.Decisions, recorded)
	e.log.Debug("decision recorded", "rule_id", recorded.RuleID, "criterion_id", recorded.CriterionID)
	finish(nil)
	return recorded, nil
}

// DetermineNextStep evaluates the current rule's next steps in declared
// order and returns the first whose conditions hold against the decision
// history. A nil result is not an error: it means no transition is eligible
// yet and the caller must gather more decisions or apply a rule manually.
func (e *Engine) DetermineNextStep() (*gri.NextStep, error) {
	rule, err := e.CurrentRule()
	if err != nil {
		return nil, err
	}
	resolve := func(field string) (interface{}, bool) {
		v, ok := e.ctx.answerFor(field)
		return v, ok
	}
	for i := range rule.NextSteps {
		if gri.EvaluateConditions(rule.NextSteps[i].Conditions, resolve) {
			step := rule.NextSteps[i]
			return &step, nil
		}
	}
	return nil, nil
}

// MoveToNextRule sets the current rule. The target must exist in the
// catalog; it intentionally need not be a declared next step of the current
// rule. Sequencing legality is policy, judged by the compliance validator.
func (e *Engine) MoveToNextRule(ruleID string) error {
	if !e.catalog.Has(ruleID) {
		return fmt.Errorf("%w: %q", gri.ErrRuleNotFound, ruleID)
	}
	from := e.ctx.CurrentRuleID
	_, finish := e.track("engine.rule_transition",
		observability.TransitionOperation(e.ctx.ClassificationID, from, ruleID)...)
	// Audit first: a failed append must leave the current rule untouched so
	// the reported error matches the engine state.
	_, err := e.ledger.LogAuditEvent(ActionRuleTransition, e.actor, map[string]interface{}{
		"from": from,
		"to":   ruleID,
	})
	if err != nil {
		finish(err)
		return err
	}
	e.ctx.CurrentRuleID = ruleID
	e.log.Info("rule transition", "from", from, "to", ruleID)
	finish(nil)
	return nil
}

// Progress returns the current rule's order as a percentage of the maximum
// order in the catalog.
func (e *Engine) Progress() float64 {
	rule, err := e.CurrentRule()
	if err != nil {
		return 0
	}
	return rule.Order / e.catalog.MaxOrder() * 100
}

// ExportContext returns a defensive copy of the full context for external
// consumption.
func (e *Engine) ExportContext() *Context {
	return e.ctx.clone()
}

// GenerateLegalBasis returns the deduplicated citations of every decision
// plus each applied rule's legal text, in decision order.
func (e *Engine) GenerateLegalBasis() []string {
	var basis []string
	seen := make(map[string]bool)
	appendOnce := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			basis = append(basis, s)
		}
	}
	for _, d := range e.ctx.Decisions {
		for _, cite := range d.LegalBasis {
			appendOnce(cite)
		}
		if rule, err := e.catalog.Get(d.RuleID); err == nil {
			appendOnce(fmt.Sprintf("%s: %s", rule.Name, rule.LegalText))
		}
	}
	return basis
}

// ApplyEssentialCharacter runs the GRI 3(b) analysis over the context's
// materials and records the determination as a decision. The engine must be
// positioned at the essential-character rule. Percentage violations come
// back as validation messages with nothing recorded.
func (e *Engine) ApplyEssentialCharacter() (*essential.Determination, []string, error) {
	if e.ctx.CurrentRuleID != gri.RuleGRI3B {
		return nil, nil, fmt.Errorf("engine: essential-character analysis requires rule %s, current is %s",
			gri.RuleGRI3B, e.ctx.CurrentRuleID)
	}
	if verrs := e.analyzer.ValidatePercentages(e.ctx.Materials); len(verrs) > 0 {
		return nil, verrs, nil
	}

	obsCtx, finish := e.track("engine.essential_character",
		observability.AttrClassificationID.String(e.ctx.ClassificationID))
	det, err := e.analyzer.Analyze(e.ctx.ProductDescription, e.ctx.Materials)
	if err != nil {
		finish(err)
		return nil, nil, err
	}

	legalBasis := []string{"GRI 3(b)"}
	for _, p := range det.Precedents {
		legalBasis = append(legalBasis, p.Reference)
	}
	if _, err := e.RecordDecision(ledger.Decision{
		RuleID:      gri.RuleGRI3B,
		CriterionID: "essential_character_component",
		Question:    "Which material or component gives the goods their essential character?",
		Answer:      det.Component,
		Reasoning:   det.Reasoning,
		Confidence:  det.Confidence,
		LegalBasis:  legalBasis,
	}); err != nil {
		finish(err)
		return nil, nil, err
	}

	_, err = e.ledger.LogAuditEvent(ActionEssentialCharacter, e.actor, map[string]interface{}{
		"component":       det.Component,
		"confidence":      det.Confidence,
		"industry_method": det.IndustryMethod,
	})
	if err != nil {
		finish(err)
		return nil, nil, err
	}
	observability.AddSpanEvent(obsCtx, "determination",
		observability.EssentialCharacterOperation(e.ctx.ClassificationID, det.IndustryMethod, det.Component, det.Confidence)...)
	finish(nil)
	return det, nil, nil
}

// NeedsExpertReview reports whether the ledger's overall confidence sits
// below the configured threshold. Review is flagged, never enforced.
func (e *Engine) NeedsExpertReview() bool {
	return e.ledger.OverallConfidence() < e.cfg.ExpertReviewThreshold
}
