package compliance

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/clearfreight/tariffcore/pkg/engine"
	"github.com/clearfreight/tariffcore/pkg/gri"
)

var (
	ErrUnknownStep = errors.New("compliance: step id not defined in the current phase")
	ErrFinalPhase  = errors.New("compliance: already in the final phase")
)

// GRI1FirstFinding is the fixed wording of the GRI sequencing finding. Tariff
// counsel quote it verbatim, so the text is part of the contract.
const GRI1FirstFinding = "GRI 1 must be applied before other rules"

// Result is the outcome of a phase-completion check. Errors are
// severity-prefixed human-readable strings, returned as data rather than a Go
// error so the caller can render them to an operator.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// PhaseStatus summarizes one phase inside a compliance report.
type PhaseStatus struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Status string   `json:"status"` // not_started, incomplete, complete
	Errors []string `json:"errors,omitempty"`
}

// Report is the full compliance assessment for a classification at a point in
// time. Compliant is false while any phase error or sequence finding exists;
// such a classification may continue but must not be presented as defensible.
type Report struct {
	ClassificationID string          `json:"classification_id"`
	GeneratedAt      time.Time       `json:"generated_at"`
	Phases           []PhaseStatus   `json:"phases"`
	SequenceFindings []string        `json:"sequence_findings,omitempty"`
	Checklist        []ChecklistItem `json:"checklist"`
	Compliant        bool            `json:"compliant"`
}

// Validator audits a classification context against the three-phase legal
// workflow. It holds per-classification progress (current phase, explicitly
// marked steps) and must not be shared across classifications.
type Validator struct {
	phases    []Phase
	catalog   *gri.Catalog
	phaseIdx  int
	completed map[string]bool
	now       func() time.Time
	log       *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(v *Validator) { v.log = log }
}

// NewValidator builds a validator over the standard phase definitions,
// starting in the pre-classification phase.
func NewValidator(catalog *gri.Catalog, opts ...Option) *Validator {
	v := &Validator{
		phases:    defaultPhases(),
		catalog:   catalog,
		completed: make(map[string]bool),
		now:       time.Now,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// CurrentPhase returns the phase the validator is currently auditing.
func (v *Validator) CurrentPhase() Phase {
	return v.phases[v.phaseIdx]
}

// MarkStepComplete records that a step of the current phase was performed
// outside the decision flow (e.g. documentation gathered manually).
func (v *Validator) MarkStepComplete(stepID string) error {
	for _, s := range v.phases[v.phaseIdx].Steps {
		if s.ID == stepID {
			v.completed[stepID] = true
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownStep, stepID)
}

// ValidatePhaseCompletion checks the current phase against the context:
// every unmet mandatory step and every failing validator predicate yields a
// severity-prefixed error string. Read-only.
func (v *Validator) ValidatePhaseCompletion(ctx *engine.Context) Result {
	return v.checkPhase(v.phases[v.phaseIdx], ctx)
}

func (v *Validator) checkPhase(p Phase, ctx *engine.Context) Result {
	var errs []string
	for _, s := range p.Steps {
		if !s.Mandatory {
			continue
		}
		if !v.stepSatisfied(s, ctx) {
			errs = append(errs, fmt.Sprintf("%s: mandatory step %q (%s) not completed", SeverityCritical, s.ID, s.Name))
		}
	}
	for _, pv := range p.Validators {
		if ok, detail := pv.Check(ctx); !ok {
			errs = append(errs, fmt.Sprintf("%s: %s: %s", pv.Severity, pv.Name, detail))
		}
	}
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// stepSatisfied reports whether a step was explicitly marked complete or is
// evidenced by a recorded decision under one of its rule ids.
func (v *Validator) stepSatisfied(s Step, ctx *engine.Context) bool {
	if v.completed[s.ID] {
		return true
	}
	for _, d := range ctx.Decisions {
		for _, id := range s.RuleIDs {
			if d.RuleID == id {
				return true
			}
		}
	}
	return false
}

// CanProceedToNextPhase reports whether the current phase is complete.
func (v *Validator) CanProceedToNextPhase(ctx *engine.Context) bool {
	return v.ValidatePhaseCompletion(ctx).Valid
}

// MoveToNextPhase advances to the next phase and clears the completed-step
// tracking. It does not gate on CanProceedToNextPhase: like the engine's rule
// transitions, phase movement is mechanism, and the compliance report will
// still surface an incomplete earlier phase.
func (v *Validator) MoveToNextPhase() error {
	if v.phaseIdx >= len(v.phases)-1 {
		return ErrFinalPhase
	}
	from := v.phases[v.phaseIdx].ID
	v.phaseIdx++
	v.completed = make(map[string]bool)
	v.log.Info("compliance phase advanced", "from", from, "to", v.phases[v.phaseIdx].ID)
	return nil
}

// RequiredDocumentation lists the current phase's documentation requirements.
func (v *Validator) RequiredDocumentation() []DocRequirement {
	return append([]DocRequirement(nil), v.phases[v.phaseIdx].Documentation...)
}

// sequenceFindings audits GRI ordering across the whole history, including
// the rule the engine currently sits on. Two checks:
//
//  1. GRI 1 first: no GRI rule other than gri_1 may be decided on, or be the
//     current rule, before a gri_1 decision exists. The analysis steps
//     (pre_classification, product_analysis) are exempt.
//  2. Monotonic order: catalog order must not decrease along the visited
//     sequence, and a mandatory GRI rule must not be bypassed without a
//     decision.
func (v *Validator) sequenceFindings(ctx *engine.Context) []string {
	var findings []string

	visited := make([]string, 0, len(ctx.Decisions)+1)
	for _, d := range ctx.Decisions {
		visited = append(visited, d.RuleID)
	}
	if ctx.CurrentRuleID != "" && (len(visited) == 0 || visited[len(visited)-1] != ctx.CurrentRuleID) {
		visited = append(visited, ctx.CurrentRuleID)
	}

	// GRI 1 first.
	for _, id := range visited {
		if id == gri.RuleGRI1 {
			break
		}
		if strings.HasPrefix(id, "gri_") {
			findings = append(findings, GRI1FirstFinding)
			break
		}
	}

	// Monotonic catalog order.
	prevOrder := -1.0
	prevID := ""
	for _, id := range visited {
		r, err := v.catalog.Get(id)
		if err != nil {
			continue
		}
		if r.Order < prevOrder {
			findings = append(findings, fmt.Sprintf("sequence violation: %s (order %.1f) applied after %s (order %.1f)", id, r.Order, prevID, prevOrder))
		}
		prevOrder = r.Order
		prevID = id
	}

	// Mandatory rules bypassed: the engine sits past a mandatory GRI step
	// that no decision covers.
	if cur, err := v.catalog.Get(ctx.CurrentRuleID); err == nil {
		decided := make(map[string]bool, len(ctx.Decisions))
		for _, d := range ctx.Decisions {
			decided[d.RuleID] = true
		}
		for _, p := range v.phases {
			for _, s := range p.Steps {
				if !s.Mandatory {
					continue
				}
				for _, id := range s.RuleIDs {
					r, err := v.catalog.Get(id)
					if err != nil || r.Order >= cur.Order || decided[id] {
						continue
					}
					findings = append(findings, fmt.Sprintf("sequence violation: reached %s without a decision under mandatory rule %s", ctx.CurrentRuleID, id))
				}
			}
		}
	}
	return findings
}

// Checklist derives the full compliance checklist from the context. Items are
// recomputed on every call and never persisted as ground truth.
func (v *Validator) Checklist(ctx *engine.Context) []ChecklistItem {
	var items []ChecklistItem
	for _, p := range v.phases {
		for _, s := range p.Steps {
			sev := SeverityRecommended
			if s.Mandatory {
				sev = SeverityCritical
			}
			item := ChecklistItem{
				Requirement: s.Name,
				Satisfied:   v.stepSatisfied(s, ctx),
				Severity:    sev,
				Category:    p.Name,
			}
			if item.Satisfied {
				item.Evidence = fmt.Sprintf("decision recorded under %s", strings.Join(s.RuleIDs, " or "))
			}
			items = append(items, item)
		}
		for _, pv := range p.Validators {
			ok, detail := pv.Check(ctx)
			items = append(items, ChecklistItem{
				Requirement: pv.Name,
				Satisfied:   ok,
				Evidence:    detail,
				Severity:    pv.Severity,
				Category:    p.Name,
			})
		}
	}
	seq := v.sequenceFindings(ctx)
	items = append(items, ChecklistItem{
		Requirement: "GRI rules applied in the legally required order",
		Satisfied:   len(seq) == 0,
		Evidence:    strings.Join(seq, "; "),
		Severity:    SeverityCritical,
		Category:    "GRI Sequencing",
	})
	return items
}

// GenerateComplianceReport audits the full history: per-phase status,
// sequence findings, and the derived checklist.
func (v *Validator) GenerateComplianceReport(ctx *engine.Context) *Report {
	rep := &Report{
		ClassificationID: ctx.ClassificationID,
		GeneratedAt:      v.now().UTC(),
		SequenceFindings: v.sequenceFindings(ctx),
		Checklist:        v.Checklist(ctx),
	}
	for _, p := range v.phases {
		res := v.checkPhase(p, ctx)
		st := PhaseStatus{ID: p.ID, Name: p.Name, Errors: res.Errors}
		switch {
		case res.Valid:
			st.Status = "complete"
		case v.phaseStarted(p, ctx):
			st.Status = "incomplete"
		default:
			st.Status = "not_started"
		}
		rep.Phases = append(rep.Phases, st)
	}
	rep.Compliant = len(rep.SequenceFindings) == 0
	for _, st := range rep.Phases {
		if len(st.Errors) > 0 {
			rep.Compliant = false
		}
	}
	if !rep.Compliant {
		v.log.Warn("compliance report generated with findings",
			"classification_id", ctx.ClassificationID,
			"sequence_findings", len(rep.SequenceFindings))
	}
	return rep
}

// phaseStarted reports whether any of the phase's steps show evidence of work.
func (v *Validator) phaseStarted(p Phase, ctx *engine.Context) bool {
	for _, s := range p.Steps {
		if v.stepSatisfied(s, ctx) {
			return true
		}
	}
	return false
}
