package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Semantic convention attributes for the classification domain.
var (
	AttrClassificationID = attribute.Key("tariffcore.classification.id")
	AttrRuleID           = attribute.Key("tariffcore.rule.id")
	AttrCriterionID      = attribute.Key("tariffcore.criterion.id")
	AttrRuleFrom         = attribute.Key("tariffcore.transition.from")
	AttrRuleTo           = attribute.Key("tariffcore.transition.to")
	AttrIndustry         = attribute.Key("tariffcore.industry")
	AttrComponent        = attribute.Key("tariffcore.essential.component")
	AttrConfidence       = attribute.Key("tariffcore.confidence")
	AttrFinalCode        = attribute.Key("tariffcore.final_code")
	AttrCompliant        = attribute.Key("tariffcore.compliant")
)

// DecisionOperation creates attributes for recording one decision.
func DecisionOperation(classificationID, ruleID, criterionID string, confidence float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrClassificationID.String(classificationID),
		AttrRuleID.String(ruleID),
		AttrCriterionID.String(criterionID),
		AttrConfidence.Float64(confidence),
	}
}

// TransitionOperation creates attributes for a rule transition.
func TransitionOperation(classificationID, from, to string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrClassificationID.String(classificationID),
		AttrRuleFrom.String(from),
		AttrRuleTo.String(to),
	}
}

// EssentialCharacterOperation creates attributes for a GRI 3(b) analysis.
func EssentialCharacterOperation(classificationID, industry, component string, confidence float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrClassificationID.String(classificationID),
		AttrIndustry.String(industry),
		AttrComponent.String(component),
		AttrConfidence.Float64(confidence),
	}
}

// CompletionOperation creates attributes for completing a classification.
func CompletionOperation(classificationID, finalCode string, compliant bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrClassificationID.String(classificationID),
		AttrFinalCode.String(finalCode),
		AttrCompliant.Bool(compliant),
	}
}

// SpanFromContext extracts the current span; returns a no-op span if none.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// AddSpanEvent adds an event to the current span.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// SetSpanStatus records err on the current span when non-nil.
func SetSpanStatus(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if err != nil {
		span.RecordError(err)
	}
}
