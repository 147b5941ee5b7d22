// Package ledger implements the append-only decision and audit record for a
// single classification.
//
// Every decision and audit entry is content-hashed at write time. Hashes are
// per-entry bindings, not chained to the previous entry: tampering with an
// entry's content is detectable, deletion or reordering of whole entries is
// not. That contract is inherited from the upstream legal-review process;
// strengthening it into a chain would change what existing exports attest to.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clearfreight/tariffcore/pkg/canonicalize"
)

var (
	// ErrMissingRuleID is returned when a decision has no rule id.
	ErrMissingRuleID = errors.New("ledger: decision rule id must not be empty")
	// ErrMissingCriterionID is returned when a decision has no criterion id.
	ErrMissingCriterionID = errors.New("ledger: decision criterion id must not be empty")
	// ErrMissingReasoning is returned when a decision carries no justification.
	ErrMissingReasoning = errors.New("ledger: decision reasoning must not be empty")
	// ErrConfidenceRange is returned when confidence falls outside [0, 1].
	ErrConfidenceRange = errors.New("ledger: confidence must be within [0, 1]")
	// ErrAlreadyCompleted is returned when a completed classification is appended to.
	ErrAlreadyCompleted = errors.New("ledger: classification already completed")
)

// Audit action names written by the ledger itself.
const (
	ActionDecisionRecorded        = "decision_recorded"
	ActionClassificationCompleted = "classification_completed"
)

// Decision is one recorded GRI decision. Immutable once appended.
type Decision struct {
	RuleID      string    `json:"rule_id"`
	CriterionID string    `json:"criterion_id"`
	Question    string    `json:"question,omitempty"`
	Answer      string    `json:"answer"`
	Reasoning   string    `json:"reasoning"`
	Confidence  float64   `json:"confidence"`
	LegalBasis  []string  `json:"legal_basis,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Hash        string    `json:"hash"`
}

// AuditEntry is one append-only audit event. Never mutated or deleted.
type AuditEntry struct {
	ID               string                 `json:"id"`
	ClassificationID string                 `json:"classification_id"`
	Action           string                 `json:"action"`
	Actor            string                 `json:"actor"`
	Details          map[string]interface{} `json:"details,omitempty"`
	Timestamp        time.Time              `json:"timestamp"`
	Hash             string                 `json:"hash"`
}

// LegalSummary condenses the ledger for counsel review.
type LegalSummary struct {
	ClassificationID       string     `json:"classification_id"`
	StartTime              time.Time  `json:"start_time"`
	EndTime                time.Time  `json:"end_time"`
	DecisionCount          int        `json:"decision_count"`
	LowConfidenceDecisions []Decision `json:"low_confidence_decisions,omitempty"`
	AuditEntryCount        int        `json:"audit_entry_count"`
}

// Ledger is the append-only store for one classification id. It is
// internally mutex-guarded so the engine's decision/audit fan-in is safe, but
// a Ledger must never be shared across classification ids.
type Ledger struct {
	mu               sync.RWMutex
	classificationID string
	decisions        []Decision
	audit            []*AuditEntry
	completed        bool
	threshold        float64
	clock            func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the clock for deterministic tests.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) { l.clock = clock }
}

// WithExpertReviewThreshold overrides the low-confidence threshold used by
// GenerateLegalSummary. Default 0.7.
func WithExpertReviewThreshold(threshold float64) Option {
	return func(l *Ledger) { l.threshold = threshold }
}

// New creates a Ledger scoped to one classification id.
func New(classificationID string, opts ...Option) *Ledger {
	l := &Ledger{
		classificationID: classificationID,
		threshold:        0.7,
		clock:            time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ClassificationID returns the id this ledger is scoped to.
func (l *Ledger) ClassificationID() string { return l.classificationID }

// decisionHashInput is the content binding of a decision hash.
type decisionHashInput struct {
	RuleID           string `json:"rule_id"`
	CriterionID      string `json:"criterion_id"`
	Answer           string `json:"answer"`
	Reasoning        string `json:"reasoning"`
	ClassificationID string `json:"classification_id"`
}

// auditHashInput is the content binding of an audit entry hash.
type auditHashInput struct {
	Action    string                 `json:"action"`
	Actor     string                 `json:"actor"`
	Details   map[string]interface{} `json:"details"`
	Timestamp string                 `json:"timestamp"`
}

// DecisionHash computes the content hash binding a decision to its
// classification.
func DecisionHash(d Decision, classificationID string) (string, error) {
	return canonicalize.PrefixedHash(decisionHashInput{
		RuleID:           d.RuleID,
		CriterionID:      d.CriterionID,
		Answer:           d.Answer,
		Reasoning:        d.Reasoning,
		ClassificationID: classificationID,
	})
}

func auditHash(e *AuditEntry) (string, error) {
	return canonicalize.PrefixedHash(auditHashInput{
		Action:    e.Action,
		Actor:     e.Actor,
		Details:   e.Details,
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
	})
}

// LogDecision appends a decision with a freshly computed hash and timestamp,
// plus a correlated audit entry. Content is not validated here beyond the
// non-empty rule id, criterion id and reasoning the record itself requires;
// rule-level validation is a separate, caller-invoked step.
func (l *Ledger) LogDecision(d Decision, actor string) (Decision, error) {
	if d.RuleID == "" {
		return Decision{}, ErrMissingRuleID
	}
	if d.CriterionID == "" {
		return Decision{}, ErrMissingCriterionID
	}
	if d.Reasoning == "" {
		return Decision{}, ErrMissingReasoning
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return Decision{}, ErrConfidenceRange
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.completed {
		return Decision{}, ErrAlreadyCompleted
	}

	d.Timestamp = l.clock().UTC()
	hash, err := DecisionHash(d, l.classificationID)
	if err != nil {
		return Decision{}, fmt.Errorf("ledger: hash decision: %w", err)
	}
	d.Hash = hash
	l.decisions = append(l.decisions, d)

	_, err = l.appendAuditLocked(ActionDecisionRecorded, actor, map[string]interface{}{
		"rule_id":       d.RuleID,
		"criterion_id":  d.CriterionID,
		"confidence":    d.Confidence,
		"decision_hash": d.Hash,
	})
	if err != nil {
		return Decision{}, err
	}
	return d, nil
}

// LogAuditEvent appends an audit entry for an arbitrary action. The record is
// frozen once the classification completes.
func (l *Ledger) LogAuditEvent(action, actor string, details map[string]interface{}) (*AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.completed {
		return nil, ErrAlreadyCompleted
	}
	return l.appendAuditLocked(action, actor, details)
}

func (l *Ledger) appendAuditLocked(action, actor string, details map[string]interface{}) (*AuditEntry, error) {
	entry := &AuditEntry{
		ID:               uuid.New().String(),
		ClassificationID: l.classificationID,
		Action:           action,
		Actor:            actor,
		Details:          details,
		Timestamp:        l.clock().UTC(),
	}
	hash, err := auditHash(entry)
	if err != nil {
		return nil, fmt.Errorf("ledger: hash audit entry: %w", err)
	}
	entry.Hash = hash
	l.audit = append(l.audit, entry)
	return entry, nil
}

// Decisions returns the decisions in append order.
func (l *Ledger) Decisions() []Decision {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Decision, len(l.decisions))
	copy(out, l.decisions)
	return out
}

// AuditTrail returns the audit entries in append order.
func (l *Ledger) AuditTrail() []*AuditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*AuditEntry, len(l.audit))
	copy(out, l.audit)
	return out
}

// OverallConfidence returns the arithmetic mean of decision confidences, 0
// when no decision is recorded.
func (l *Ledger) OverallConfidence() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.decisions) == 0 {
		return 0
	}
	var sum float64
	for _, d := range l.decisions {
		sum += d.Confidence
	}
	return sum / float64(len(l.decisions))
}

// GenerateLegalSummary condenses the ledger: session bounds from the first
// and last audit entries, the decision count, and the decisions below the
// expert-review threshold.
func (l *Ledger) GenerateLegalSummary() LegalSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	summary := LegalSummary{
		ClassificationID: l.classificationID,
		DecisionCount:    len(l.decisions),
		AuditEntryCount:  len(l.audit),
	}
	if len(l.audit) > 0 {
		summary.StartTime = l.audit[0].Timestamp
		summary.EndTime = l.audit[len(l.audit)-1].Timestamp
	}
	for _, d := range l.decisions {
		if d.Confidence < l.threshold {
			summary.LowConfidenceDecisions = append(summary.LowConfidenceDecisions, d)
		}
	}
	return summary
}

// VerifyIntegrity recomputes every audit entry's hash from its stored
// content. A false result means the ledger was tampered with or corrupted
// since writing; it is reported, never auto-corrected.
func (l *Ledger) VerifyIntegrity() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.audit {
		computed, err := auditHash(e)
		if err != nil || computed != e.Hash {
			return false
		}
	}
	return true
}

// Completed reports whether CompleteClassification has been called.
func (l *Ledger) Completed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.completed
}

// CompleteClassification appends the terminal audit event. Low confidence
// never blocks completion; it sets needs_expert_review on the event instead.
func (l *Ledger) CompleteClassification(finalCode string, confidence float64, actor string) (*AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.completed {
		return nil, ErrAlreadyCompleted
	}
	entry, err := l.appendAuditLocked(ActionClassificationCompleted, actor, map[string]interface{}{
		"final_code":          finalCode,
		"confidence":          confidence,
		"needs_expert_review": confidence < l.threshold,
	})
	if err != nil {
		return nil, err
	}
	l.completed = true
	return entry, nil
}
