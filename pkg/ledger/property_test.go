//go:build property
// +build property

// Property-based tests for the ledger's append-only and tamper-evidence
// contracts.
package ledger_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/clearfreight/tariffcore/pkg/ledger"
)

// TestAppendOnlyGrowth: recording N valid decisions grows the decision list
// by exactly N and never changes a prior entry's hash.
func TestAppendOnlyGrowth(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("decision list grows by one per append", prop.ForAll(
		func(answers []string) bool {
			l := ledger.New("cls-prop")
			var seenHashes []string
			for i, answer := range answers {
				d := ledger.Decision{
					RuleID:      "gri_1",
					CriterionID: "heading_match",
					Answer:      answer,
					Reasoning:   "property test reasoning",
					Confidence:  0.8,
				}
				before := len(l.Decisions())
				if _, err := l.LogDecision(d, "prop"); err != nil {
					return false
				}
				decisions := l.Decisions()
				if len(decisions) != before+1 || len(decisions) != i+1 {
					return false
				}
				// No prior entry's content changed.
				for j, h := range seenHashes {
					if decisions[j].Hash != h {
						return false
					}
				}
				seenHashes = append(seenHashes, decisions[len(decisions)-1].Hash)
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

// TestTamperFlipsIntegrity: mutating any audit entry's details always flips
// VerifyIntegrity to false.
func TestTamperFlipsIntegrity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("any detail mutation breaks verification", prop.ForAll(
		func(actions []string, victim uint8, poison string) bool {
			if len(actions) == 0 {
				return true
			}
			l := ledger.New("cls-prop")
			for _, action := range actions {
				if action == "" {
					action = "event"
				}
				if _, err := l.LogAuditEvent(action, "prop", map[string]interface{}{"k": action}); err != nil {
					return false
				}
			}
			if !l.VerifyIntegrity() {
				return false
			}

			trail := l.AuditTrail()
			target := trail[int(victim)%len(trail)]
			if poison == target.Details["k"] {
				return true // mutation is a no-op, nothing to detect
			}
			target.Details["k"] = poison
			return !l.VerifyIntegrity()
		},
		gen.SliceOf(gen.AlphaString()),
		gen.UInt8(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
