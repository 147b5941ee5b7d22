package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	require.Equal(t, "tariffcore", config.ServiceName)
	require.Equal(t, "localhost:4317", config.OTLPEndpoint)
	require.Equal(t, 1.0, config.SampleRate)
	require.True(t, config.Enabled)
	require.False(t, config.Insecure)
}

func TestNewProviderDisabled(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, p)

	require.NotNil(t, p.Tracer())
	require.NotNil(t, p.Meter())
}

func TestTrackClassification(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)

	ctx, finish := p.TrackClassification(context.Background(), "classification.record_decision",
		DecisionOperation("cls-1", "gri_1", "heading_match", 0.9)...)
	require.NotNil(t, ctx)

	time.Sleep(time.Millisecond)
	finish(nil)
}

func TestTrackClassificationWithError(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)

	_, finish := p.TrackClassification(context.Background(), "classification.move_to_next_rule")
	finish(errors.New("rule not found"))
}

func TestRecordMetricsDisabled(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()
	p.RecordClassification(ctx, attribute.String("test", "value"))
	p.RecordError(ctx, errors.New("test"), attribute.String("test", "value"))
	p.RecordDuration(ctx, 100*time.Millisecond)
}

func TestShutdownDisabled(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Shutdown(ctx))
}

func TestDecisionOperation(t *testing.T) {
	attrs := DecisionOperation("cls-1", "gri_3b", "essential_character_component", 0.93)
	require.Len(t, attrs, 4)
	require.Equal(t, "tariffcore.classification.id", string(attrs[0].Key))
	require.Equal(t, "cls-1", attrs[0].Value.AsString())
	require.Equal(t, 0.93, attrs[3].Value.AsFloat64())
}

func TestTransitionOperation(t *testing.T) {
	attrs := TransitionOperation("cls-1", "gri_1", "gri_2a")
	require.Len(t, attrs, 3)
	require.Equal(t, "gri_1", attrs[1].Value.AsString())
	require.Equal(t, "gri_2a", attrs[2].Value.AsString())
}

func TestCompletionOperation(t *testing.T) {
	attrs := CompletionOperation("cls-1", "84713000", true)
	require.Len(t, attrs, 3)
	require.Equal(t, "tariffcore.compliant", string(attrs[2].Key))
	require.True(t, attrs[2].Value.AsBool())
}

func TestSpanHelpers(t *testing.T) {
	ctx := context.Background()
	require.NotNil(t, SpanFromContext(ctx))
	AddSpanEvent(ctx, "test.event", attribute.String("key", "value"))
	SetSpanStatus(ctx, errors.New("test error"))
	SetSpanStatus(ctx, nil)
}
