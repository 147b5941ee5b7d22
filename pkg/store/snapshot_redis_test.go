package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearfreight/tariffcore/pkg/engine"
	"github.com/clearfreight/tariffcore/pkg/ledger"
)

// Requires a running Redis; skipped when none is reachable.
func TestRedisSnapshotStore_Integration(t *testing.T) {
	store := NewRedisSnapshotStore("localhost:6379", "", 0, time.Minute)
	ctx := context.Background()
	if err := store.Ping(ctx); err != nil {
		t.Skip("skipping Redis integration test: redis not available")
	}

	snapshot := &engine.Context{
		ClassificationID:   "cls-redis-1",
		ProductDescription: "portable automatic data processing machine",
		CurrentRuleID:      "gri_1",
		Decisions: []ledger.Decision{{
			RuleID:      "pre_classification",
			CriterionID: "product_description_complete",
			Answer:      "yes",
			Reasoning:   "The description covers composition, function and presentation.",
			Confidence:  0.9,
		}},
	}
	require.NoError(t, store.Save(ctx, snapshot))
	t.Cleanup(func() { _ = store.Delete(ctx, "cls-redis-1") })

	loaded, err := store.Load(ctx, "cls-redis-1")
	require.NoError(t, err)
	assert.Equal(t, snapshot.CurrentRuleID, loaded.CurrentRuleID)
	require.Len(t, loaded.Decisions, 1)
	assert.Equal(t, "pre_classification", loaded.Decisions[0].RuleID)

	require.NoError(t, store.Delete(ctx, "cls-redis-1"))
	_, err = store.Load(ctx, "cls-redis-1")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}
